package payment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
)

type postgresRepo struct {
	db *sql.DB
}

// NewPostgresRepository returns a Repository backed by Postgres. The
// method-specific details live in a jsonb column keyed by the method.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

// details is the jsonb payload stored alongside each payment row.
type details struct {
	Cash    *CashDetails    `json:"cash,omitempty"`
	Card    *CardDetails    `json:"card,omitempty"`
	EWallet *EWalletDetails `json:"ewallet,omitempty"`
}

func (r *postgresRepo) CreatePayment(ctx context.Context, p *Payment) error {
	det, err := json.Marshal(details{Cash: p.Cash, Card: p.Card, EWallet: p.EWallet})
	if err != nil {
		return fmt.Errorf("marshal payment details: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO payments (id, order_id, user_id, method, amount, status, details, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.OrderID, p.UserID, p.Method, p.Amount, p.Status, det, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetPaymentByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	row := r.db.QueryRowContext(ctx, selectPaymentSQL+" WHERE id = $1", id)
	p, err := scanPayment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("payment %s not found", id)
	}
	return p, err
}

func (r *postgresRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*Payment, error) {
	return r.listWhere(ctx, "order_id = $1", orderID)
}

func (r *postgresRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*Payment, error) {
	return r.listWhere(ctx, "user_id = $1", userID)
}

func (r *postgresRepo) ListByStatus(ctx context.Context, status Status) ([]*Payment, error) {
	return r.listWhere(ctx, "status = $1", status)
}

func (r *postgresRepo) listWhere(ctx context.Context, where string, arg any) ([]*Payment, error) {
	rows, err := r.db.QueryContext(ctx, selectPaymentSQL+" WHERE "+where+" ORDER BY created_at", arg)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []*Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Payment) error {
	det, err := json.Marshal(details{Cash: p.Cash, Card: p.Card, EWallet: p.EWallet})
	if err != nil {
		return fmt.Errorf("marshal payment details: %w", err)
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $2, details = $3, updated_at = $4
		WHERE id = $1`,
		p.ID, p.Status, det, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update payment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("payment %s not found", p.ID)
	}
	return nil
}

func (r *postgresRepo) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to Status) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2`,
		id, from, to, time.Now(),
	)
	if err != nil {
		return false, fmt.Errorf("swap payment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

const selectPaymentSQL = `
	SELECT id, order_id, user_id, method, amount, status, details, created_at, updated_at
	FROM payments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPayment(row rowScanner) (*Payment, error) {
	var (
		p   Payment
		det []byte
	)
	err := row.Scan(&p.ID, &p.OrderID, &p.UserID, &p.Method, &p.Amount, &p.Status, &det, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(det) > 0 {
		var d details
		if err := json.Unmarshal(det, &d); err != nil {
			return nil, fmt.Errorf("unmarshal payment details: %w", err)
		}
		p.Cash, p.Card, p.EWallet = d.Cash, d.Card, d.EWallet
	}
	return &p, nil
}
