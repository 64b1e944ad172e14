package dto

import (
	"time"

	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
)

type BetResponse struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"userId"`
	Content             string     `json:"content"`
	FalsifiableCriteria string     `json:"falsifiableCriteria"`
	Deadline            time.Time  `json:"deadline"`
	Quarter             string     `json:"quarter"`
	Status              string     `json:"status"`
	Outcome             *string    `json:"outcome"`
	Evidence            *string    `json:"evidence"`
	Reflection          *string    `json:"reflection"`
	CreatedAt           time.Time  `json:"createdAt"`
	ResolvedAt          *time.Time `json:"resolvedAt"`
}

// FromBet converte o modelo do ledger para a resposta JSON da API
func FromBet(b *ledger.Bet) BetResponse {
	resp := BetResponse{
		ID:                  b.ID,
		UserID:              b.UserID,
		Content:             b.Content,
		FalsifiableCriteria: b.FalsifiableCriteria,
		Deadline:            b.Deadline,
		Quarter:             b.Quarter,
		Status:              string(b.Status),
		Evidence:            b.Evidence,
		Reflection:          b.Reflection,
		CreatedAt:           b.CreatedAt,
		ResolvedAt:          b.ResolvedAt,
	}
	if b.Outcome != nil {
		o := string(*b.Outcome)
		resp.Outcome = &o
	}
	return resp
}

func FromBets(bets []ledger.Bet) []BetResponse {
	out := make([]BetResponse, 0, len(bets))
	for i := range bets {
		out = append(out, FromBet(&bets[i]))
	}
	return out
}
