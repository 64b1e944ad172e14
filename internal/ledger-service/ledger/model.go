package ledger

import "time"

// Status do ciclo de vida: pending -> resolved, sem transição reversa.
type Status string

const (
	StatusPending  Status = "pending"
	StatusResolved Status = "resolved"
)

// Outcome é o veredito de uma aposta resolvida.
type Outcome string

const (
	OutcomeHit     Outcome = "hit"
	OutcomeMiss    Outcome = "miss"
	OutcomeExcused Outcome = "excused"
)

// ParseOutcome valida o enum vindo da borda externa.
// A borda deve rejeitar qualquer valor fora de {hit,miss,excused} antes de chamar o Ledger.
func ParseOutcome(s string) (Outcome, bool) {
	switch o := Outcome(s); o {
	case OutcomeHit, OutcomeMiss, OutcomeExcused:
		return o, true
	}
	return "", false
}

// Bet é uma previsão falseável, com prazo, julgada no máximo uma vez.
// Outcome/ResolvedAt são não-nulos se e somente se Status == resolved.
type Bet struct {
	ID                  string
	UserID              string
	Content             string
	FalsifiableCriteria string
	Deadline            time.Time
	Quarter             string // rótulo opaco de agrupamento, ex: "Q1-2025"
	Status              Status
	Outcome             *Outcome
	Evidence            *string
	Reflection          *string
	CreatedAt           time.Time
	ResolvedAt          *time.Time
}
