package repo

import (
	"context"
	"database/sql"

	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
)

// Postgres é o lado de leitura do worker: só histórico de vereditos
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// OutcomeHistory retorna os vereditos do usuário em ordem de resolução
func (p *Postgres) OutcomeHistory(ctx context.Context, userID string) ([]ledger.Outcome, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT outcome FROM bets
		WHERE user_id=$1 AND status='resolved'
		ORDER BY resolved_at ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ledger.Outcome
	for rows.Next() {
		var o string
		if err := rows.Scan(&o); err != nil {
			return nil, err
		}
		out = append(out, ledger.Outcome(o))
	}
	return out, rows.Err()
}
