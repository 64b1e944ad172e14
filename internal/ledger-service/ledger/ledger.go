package ledger

import (
	"context"
	"math"
	"strings"
	"time"
)

// Store define a persistência durável de apostas usada pelo Ledger
type Store interface {
	Insert(ctx context.Context, b *Bet) (*Bet, error)
	GetByID(ctx context.Context, betID string) (*Bet, error)

	// Resolve executa o check-then-act de forma atômica em relação a outras
	// resoluções concorrentes do mesmo betID: retorna ErrNotFound se a aposta
	// não existe e ErrAlreadyResolved se o status atual não é pending.
	Resolve(ctx context.Context, betID string, outcome Outcome, evidence, reflection *string, resolvedAt time.Time) (*Bet, error)

	ListByUser(ctx context.Context, userID string) ([]Bet, error)        // created_at desc
	ListPending(ctx context.Context, userID string) ([]Bet, error)       // deadline asc
	ListByQuarter(ctx context.Context, userID, quarter string) ([]Bet, error)
	ListResolved(ctx context.Context, userID, quarter string) ([]Bet, error) // quarter=="" => todos
}

// Ledger encapsula o ciclo de vida das apostas e o cálculo de acurácia.
// O store é injetado na construção; não há estado global nem cache em memória.
type Ledger struct {
	store Store
}

func New(store Store) *Ledger { return &Ledger{store: store} }

// NewBet é a entrada de criação. UserID já vem autenticado pela camada externa.
type NewBet struct {
	UserID              string
	Content             string
	FalsifiableCriteria string
	Deadline            time.Time
	Quarter             string
}

// CreateBet valida e persiste uma nova aposta em estado pending.
// Content não é re-checado aqui; a borda HTTP faz essa validação.
func (l *Ledger) CreateBet(ctx context.Context, in NewBet) (*Bet, error) {
	if in.Deadline.IsZero() {
		return nil, validationErr("deadline", "Deadline is required")
	}
	if strings.TrimSpace(in.FalsifiableCriteria) == "" {
		return nil, validationErr("falsifiableCriteria", "Falsifiable criteria is required")
	}

	b := &Bet{
		UserID:              in.UserID,
		Content:             in.Content,
		FalsifiableCriteria: in.FalsifiableCriteria,
		Deadline:            in.Deadline,
		Quarter:             in.Quarter,
		Status:              StatusPending,
		CreatedAt:           time.Now().UTC(),
	}
	return l.store.Insert(ctx, b)
}

// Resolution é a entrada de resolução. Outcome já chega como enum fechado;
// a borda rejeita valores desconhecidos antes de chamar aqui.
type Resolution struct {
	Outcome    Outcome
	Evidence   *string
	Reflection *string
}

// ResolveBet transiciona pending -> resolved exatamente uma vez.
// Dupla resolução é erro (ErrAlreadyResolved), nunca sobrescrita silenciosa.
func (l *Ledger) ResolveBet(ctx context.Context, betID string, res Resolution) (*Bet, error) {
	return l.store.Resolve(ctx, betID, res.Outcome, res.Evidence, res.Reflection, time.Now().UTC())
}

// Accuracy é o placar de um usuário sobre apostas resolvidas.
// Total reporta só apostas julgadas (hits+misses); excused fica de fora.
type Accuracy struct {
	Percentage int `json:"percentage"`
	Total      int `json:"total"`
	Hits       int `json:"hits"`
	Misses     int `json:"misses"`
	Excused    int `json:"excused"`
}

// CalculateAccuracy agrega os vereditos do usuário, opcionalmente filtrados por quarter.
// Excused não entra no denominador: só aposta julgada conta no histórico.
// Zero apostas julgadas => percentage 0, nunca divisão por zero.
func (l *Ledger) CalculateAccuracy(ctx context.Context, userID, quarter string) (Accuracy, error) {
	bets, err := l.store.ListResolved(ctx, userID, quarter)
	if err != nil {
		return Accuracy{}, err
	}

	var acc Accuracy
	for _, b := range bets {
		if b.Outcome == nil {
			continue
		}
		switch *b.Outcome {
		case OutcomeHit:
			acc.Hits++
		case OutcomeMiss:
			acc.Misses++
		case OutcomeExcused:
			acc.Excused++
		}
	}

	counted := acc.Hits + acc.Misses
	acc.Total = counted
	if counted > 0 {
		acc.Percentage = int(math.Round(float64(acc.Hits) / float64(counted) * 100))
	}
	return acc, nil
}

// GetUserBets lista todas as apostas do usuário, mais recente primeiro.
func (l *Ledger) GetUserBets(ctx context.Context, userID string) ([]Bet, error) {
	return l.store.ListByUser(ctx, userID)
}

// GetBetByID busca uma aposta pelo id.
func (l *Ledger) GetBetByID(ctx context.Context, betID string) (*Bet, error) {
	return l.store.GetByID(ctx, betID)
}

// GetPendingBets lista apostas pendentes, prazo mais urgente primeiro.
func (l *Ledger) GetPendingBets(ctx context.Context, userID string) ([]Bet, error) {
	return l.store.ListPending(ctx, userID)
}

// GetBetsByQuarter lista apostas do usuário num quarter (igualdade exata de string).
func (l *Ledger) GetBetsByQuarter(ctx context.Context, userID, quarter string) ([]Bet, error) {
	return l.store.ListByQuarter(ctx, userID, quarter)
}
