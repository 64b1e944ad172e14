package stats

import "github.com/radieske/accountability-ledger/internal/ledger-service/ledger"

// Streaks resume as sequências de acerto de um usuário.
type Streaks struct {
	Current int `json:"current"`
	Best    int `json:"best"`
}

// ComputeStreaks percorre os vereditos em ordem cronológica de resolução.
// Excused não quebra nem estende a sequência; miss zera.
func ComputeStreaks(outcomes []ledger.Outcome) Streaks {
	var s Streaks
	run := 0
	for _, o := range outcomes {
		switch o {
		case ledger.OutcomeHit:
			run++
			if run > s.Best {
				s.Best = run
			}
		case ledger.OutcomeMiss:
			run = 0
		}
	}
	s.Current = run
	return s
}
