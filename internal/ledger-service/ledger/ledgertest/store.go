// Package ledgertest fornece um ledger.Store em memória para testes.
package ledgertest

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
)

// MemStore implementa ledger.Store sobre um map guardado por mutex.
// As mesmas regras de atomicidade do Postgres valem aqui: o check de
// pending e a escrita acontecem sob o mesmo lock.
type MemStore struct {
	mu   sync.Mutex
	bets map[string]*ledger.Bet
	seq  int
}

func New() *MemStore {
	return &MemStore{bets: map[string]*ledger.Bet{}}
}

func (m *MemStore) Insert(_ context.Context, b *ledger.Bet) (*ledger.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	cp := *b
	cp.ID = fmt.Sprintf("bet-%d", m.seq)
	m.bets[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (m *MemStore) GetByID(_ context.Context, betID string) (*ledger.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[betID]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	out := *b
	return &out, nil
}

func (m *MemStore) Resolve(_ context.Context, betID string, outcome ledger.Outcome, evidence, reflection *string, resolvedAt time.Time) (*ledger.Bet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bets[betID]
	if !ok {
		return nil, ledger.ErrNotFound
	}
	if b.Status != ledger.StatusPending {
		return nil, ledger.ErrAlreadyResolved
	}
	b.Status = ledger.StatusResolved
	b.Outcome = &outcome
	b.Evidence = evidence
	b.Reflection = reflection
	b.ResolvedAt = &resolvedAt
	out := *b
	return &out, nil
}

func (m *MemStore) ListByUser(_ context.Context, userID string) ([]ledger.Bet, error) {
	out := m.collect(func(b *ledger.Bet) bool { return b.UserID == userID })
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) ListPending(_ context.Context, userID string) ([]ledger.Bet, error) {
	out := m.collect(func(b *ledger.Bet) bool {
		return b.UserID == userID && b.Status == ledger.StatusPending
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Deadline.Before(out[j].Deadline) })
	return out, nil
}

func (m *MemStore) ListByQuarter(_ context.Context, userID, quarter string) ([]ledger.Bet, error) {
	out := m.collect(func(b *ledger.Bet) bool {
		return b.UserID == userID && b.Quarter == quarter
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemStore) ListResolved(_ context.Context, userID, quarter string) ([]ledger.Bet, error) {
	return m.collect(func(b *ledger.Bet) bool {
		if b.UserID != userID || b.Status != ledger.StatusResolved {
			return false
		}
		return quarter == "" || b.Quarter == quarter
	}), nil
}

func (m *MemStore) collect(keep func(*ledger.Bet) bool) []ledger.Bet {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ledger.Bet
	for _, b := range m.bets {
		if keep(b) {
			out = append(out, *b)
		}
	}
	return out
}
