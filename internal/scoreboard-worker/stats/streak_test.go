package stats_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
	"github.com/radieske/accountability-ledger/internal/scoreboard-worker/stats"
)

func TestComputeStreaks(t *testing.T) {
	hit, miss, exc := ledger.OutcomeHit, ledger.OutcomeMiss, ledger.OutcomeExcused

	cases := []struct {
		name     string
		outcomes []ledger.Outcome
		want     stats.Streaks
	}{
		{"vazio", nil, stats.Streaks{}},
		{"so hits", []ledger.Outcome{hit, hit, hit}, stats.Streaks{Current: 3, Best: 3}},
		{"miss zera a sequencia", []ledger.Outcome{hit, hit, miss, hit}, stats.Streaks{Current: 1, Best: 2}},
		{"excused nao quebra nem estende", []ledger.Outcome{hit, exc, hit, exc}, stats.Streaks{Current: 2, Best: 2}},
		{"termina em miss", []ledger.Outcome{hit, hit, hit, miss}, stats.Streaks{Current: 0, Best: 3}},
		{"so excused", []ledger.Outcome{exc, exc}, stats.Streaks{}},
		{"melhor sequencia no meio", []ledger.Outcome{hit, miss, hit, hit, hit, miss, hit}, stats.Streaks{Current: 1, Best: 3}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stats.ComputeStreaks(tc.outcomes))
		})
	}
}
