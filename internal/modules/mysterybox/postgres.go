package mysterybox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/martminds/martminds-backend/internal/apperr"
)

type postgresRepo struct {
	db *sql.DB
}

// NewPostgresRepository returns a Repository backed by Postgres. Candidate
// product ids are stored as a uuid array.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) CreateBox(ctx context.Context, b *Box) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mystery_boxes (id, store_id, name, description, category, price, stock, candidates, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		b.ID, b.StoreID, b.Name, b.Description, b.Category, b.Price, b.Stock,
		pq.Array(candidateStrings(b.Candidates)), b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert box: %w", err)
	}
	return nil
}

func (r *postgresRepo) GetBoxByID(ctx context.Context, id uuid.UUID) (*Box, error) {
	row := r.db.QueryRowContext(ctx, selectBoxSQL+" WHERE id = $1", id)
	b, err := scanBox(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("box %s not found", id)
	}
	return b, err
}

func (r *postgresRepo) ListBoxes(ctx context.Context, storeID uuid.UUID) ([]*Box, error) {
	query := selectBoxSQL + " ORDER BY created_at"
	args := []any{}
	if storeID != uuid.Nil {
		query = selectBoxSQL + " WHERE store_id = $1 ORDER BY created_at"
		args = append(args, storeID)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}
	defer rows.Close()

	var out []*Box
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *postgresRepo) DecrementStock(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE mystery_boxes
		SET stock = stock - 1, updated_at = NOW()
		WHERE id = $1 AND stock >= 1`,
		id,
	)
	if err != nil {
		return fmt.Errorf("decrement box stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetBoxByID(ctx, id); err != nil {
			return err
		}
		return apperr.Resourcef("box %s is out of stock", id)
	}
	return nil
}

func (r *postgresRepo) RecordPurchase(ctx context.Context, p *Purchase) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO mystery_box_purchases (id, box_id, customer_id, product_id, price_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.BoxID, p.CustomerID, p.ProductID, p.PricePaid, p.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert purchase: %w", err)
	}
	return nil
}

func (r *postgresRepo) ListPurchasesByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Purchase, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, box_id, customer_id, product_id, price_paid, created_at
		FROM mystery_box_purchases
		WHERE customer_id = $1
		ORDER BY created_at`,
		customerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()

	var out []*Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.BoxID, &p.CustomerID, &p.ProductID, &p.PricePaid, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

const selectBoxSQL = `
	SELECT id, store_id, name, description, category, price, stock, candidates, created_at, updated_at
	FROM mystery_boxes`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBox(row rowScanner) (*Box, error) {
	var (
		b   Box
		raw pq.StringArray
	)
	err := row.Scan(&b.ID, &b.StoreID, &b.Name, &b.Description, &b.Category, &b.Price, &b.Stock, &raw, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, fmt.Errorf("parse candidate id %q: %w", s, err)
		}
		b.Candidates = append(b.Candidates, id)
	}
	return &b, nil
}

func candidateStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
