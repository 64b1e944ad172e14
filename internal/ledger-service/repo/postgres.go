package repo

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/radieske/accountability-ledger/internal/ledger-service/ledger"
)

// Postgres implementa ledger.Store sobre a tabela bets
type Postgres struct{ db *sql.DB }

// NewPostgres retorna uma instância do repositório de apostas
func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

const betColumns = `id, user_id, content, falsifiable_criteria, deadline, quarter, status, outcome, evidence, reflection, created_at, resolved_at`

type scanner interface {
	Scan(dest ...any) error
}

// scanBet converte uma linha da tabela bets para o modelo do ledger
func scanBet(s scanner) (*ledger.Bet, error) {
	var b ledger.Bet
	var outcome, evidence, reflection sql.NullString
	var resolvedAt sql.NullTime

	if err := s.Scan(
		&b.ID, &b.UserID, &b.Content, &b.FalsifiableCriteria, &b.Deadline, &b.Quarter,
		&b.Status, &outcome, &evidence, &reflection, &b.CreatedAt, &resolvedAt,
	); err != nil {
		return nil, err
	}

	if outcome.Valid {
		o := ledger.Outcome(outcome.String)
		b.Outcome = &o
	}
	if evidence.Valid {
		b.Evidence = &evidence.String
	}
	if reflection.Valid {
		b.Reflection = &reflection.String
	}
	if resolvedAt.Valid {
		t := resolvedAt.Time
		b.ResolvedAt = &t
	}
	return &b, nil
}

func collectBets(rows *sql.Rows) ([]ledger.Bet, error) {
	defer rows.Close()
	var out []ledger.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Insert grava uma nova aposta pending, atribuindo o id
func (p *Postgres) Insert(ctx context.Context, b *ledger.Bet) (*ledger.Bet, error) {
	id := uuid.NewString()
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id,user_id,content,falsifiable_criteria,deadline,quarter,status,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,'pending',$7)`,
		id, b.UserID, b.Content, b.FalsifiableCriteria, b.Deadline, b.Quarter, b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	out := *b
	out.ID = id
	out.Status = ledger.StatusPending
	return &out, nil
}

// GetByID retorna a aposta pelo id, ou ledger.ErrNotFound
func (p *Postgres) GetByID(ctx context.Context, betID string) (*ledger.Bet, error) {
	row := p.db.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, betID)
	b, err := scanBet(row)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	}
	return b, err
}

// Resolve transiciona pending -> resolved dentro de uma transação.
// Lock pessimista na linha evita que duas resoluções concorrentes passem
// ambas pela checagem de pending (lost update).
func (p *Postgres) Resolve(ctx context.Context, betID string, outcome ledger.Outcome, evidence, reflection *string, resolvedAt time.Time) (*ledger.Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM bets WHERE id=$1 FOR UPDATE`, betID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, ledger.ErrNotFound
	} else if err != nil {
		return nil, err
	}

	if ledger.Status(status) != ledger.StatusPending {
		return nil, ledger.ErrAlreadyResolved
	}

	if _, err = tx.ExecContext(ctx, `
		UPDATE bets SET status='resolved', outcome=$1, evidence=$2, reflection=$3, resolved_at=$4
		WHERE id=$5`,
		string(outcome), evidence, reflection, resolvedAt, betID,
	); err != nil {
		return nil, err
	}

	row := tx.QueryRowContext(ctx, `SELECT `+betColumns+` FROM bets WHERE id=$1`, betID)
	b, err := scanBet(row)
	if err != nil {
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		return nil, err
	}
	return b, nil
}

// ListByUser lista todas as apostas do usuário, mais recente primeiro
func (p *Postgres) ListByUser(ctx context.Context, userID string) ([]ledger.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE user_id=$1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}

// ListPending lista apostas pendentes, prazo mais urgente primeiro
func (p *Postgres) ListPending(ctx context.Context, userID string) ([]ledger.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE user_id=$1 AND status='pending' ORDER BY deadline ASC`, userID)
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}

// ListByQuarter lista apostas do usuário num quarter (igualdade exata)
func (p *Postgres) ListByQuarter(ctx context.Context, userID, quarter string) ([]ledger.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT `+betColumns+` FROM bets WHERE user_id=$1 AND quarter=$2 ORDER BY created_at DESC`, userID, quarter)
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}

// ListResolved lista apostas resolvidas, opcionalmente restritas a um quarter
func (p *Postgres) ListResolved(ctx context.Context, userID, quarter string) ([]ledger.Bet, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if quarter == "" {
		rows, err = p.db.QueryContext(ctx, `
			SELECT `+betColumns+` FROM bets WHERE user_id=$1 AND status='resolved' ORDER BY resolved_at DESC`, userID)
	} else {
		rows, err = p.db.QueryContext(ctx, `
			SELECT `+betColumns+` FROM bets WHERE user_id=$1 AND status='resolved' AND quarter=$2 ORDER BY resolved_at DESC`, userID, quarter)
	}
	if err != nil {
		return nil, err
	}
	return collectBets(rows)
}
