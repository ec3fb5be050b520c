package catalog

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/martminds/martminds-backend/internal/apperr"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL product repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, p *Product) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO products (id, store_id, name, description, category, price, stock)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		p.ID, p.StoreID, p.Name, p.Description, p.Category, p.Price, p.Stock)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	return p, err
}

func (r *postgresRepo) List(ctx context.Context, storeID, category string) ([]*Product, error) {
	query := selectSQL + ` WHERE 1=1`
	var args []interface{}
	if storeID != "" {
		args = append(args, storeID)
		query += ` AND store_id=$1`
	}
	if category != "" {
		args = append(args, category)
		if len(args) == 1 {
			query += ` AND category=$1`
		} else {
			query += ` AND category=$2`
		}
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, p *Product) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE products SET name=$1, description=$2, category=$3, price=$4, updated_at=$5
		WHERE id=$6`,
		p.Name, p.Description, p.Category, p.Price, time.Now(), p.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("product %s not found", p.ID)
	}
	return nil
}

func (r *postgresRepo) AdjustStock(ctx context.Context, id string, delta int) (*Product, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	p, err := lockProduct(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if p.Stock+delta < 0 {
		return nil, apperr.Resourcef(
			"insufficient stock for %s: requested %d, available %d", p.Name, -delta, p.Stock)
	}

	p.Stock += delta
	_, err = tx.ExecContext(ctx,
		`UPDATE products SET stock=$1, updated_at=$2 WHERE id=$3`,
		p.Stock, time.Now(), id)
	if err != nil {
		return nil, err
	}
	return p, tx.Commit()
}

// Reserve locks every referenced row (in id order, to avoid deadlocks
// between competing orders), validates the whole set, and only then
// decrements. A single failed line aborts the transaction with no stock
// touched.
func (r *postgresRepo) Reserve(ctx context.Context, items []Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	ordered := make([]Reservation, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool {
		return ordered[i].ProductID.String() < ordered[j].ProductID.String()
	})

	locked := make([]*Product, len(ordered))
	for i, it := range ordered {
		p, err := lockProduct(ctx, tx, it.ProductID.String())
		if err != nil {
			return err
		}
		if p.Stock < it.Quantity {
			return apperr.Resourcef(
				"insufficient stock for %s: requested %d, available %d", p.Name, it.Quantity, p.Stock)
		}
		locked[i] = p
	}

	now := time.Now()
	for i, it := range ordered {
		_, err = tx.ExecContext(ctx,
			`UPDATE products SET stock=$1, updated_at=$2 WHERE id=$3`,
			locked[i].Stock-it.Quantity, now, it.ProductID)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *postgresRepo) Release(ctx context.Context, items []Reservation) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()
	for _, it := range items {
		res, err := tx.ExecContext(ctx,
			`UPDATE products SET stock=stock+$1, updated_at=$2 WHERE id=$3`,
			it.Quantity, now, it.ProductID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFoundf("product %s not found", it.ProductID)
		}
	}
	return tx.Commit()
}

// ── helpers ──────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, store_id, name, description, category, price, stock, created_at, updated_at
	FROM products`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanProduct(row rowScanner) (*Product, error) {
	p := &Product{}
	var desc sql.NullString
	err := row.Scan(&p.ID, &p.StoreID, &p.Name, &desc, &p.Category,
		&p.Price, &p.Stock, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if desc.Valid {
		p.Description = desc.String
	}
	return p, nil
}

func lockProduct(ctx context.Context, tx *sql.Tx, id string) (*Product, error) {
	p, err := scanProduct(tx.QueryRowContext(ctx, selectSQL+` WHERE id=$1 FOR UPDATE`, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("product %s not found", id)
	}
	return p, err
}
