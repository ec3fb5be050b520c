package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

type postgresRepo struct{ db *sql.DB }

// NewPostgresRepository creates a new PostgreSQL store repository.
func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) Create(ctx context.Context, s *Store) error {
	addr, err := json.Marshal(s.Address)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO stores (id, name, address, phone, is_active)
		VALUES ($1,$2,$3,$4,$5)`,
		s.ID, s.Name, addr, s.Phone, s.IsActive)
	return err
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*Store, error) {
	s, err := scanStore(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1`, id))
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("store %s not found", id)
	}
	return s, err
}

func (r *postgresRepo) List(ctx context.Context, activeOnly bool) ([]*Store, error) {
	query := selectSQL
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY created_at ASC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stores []*Store
	for rows.Next() {
		s, err := scanStore(rows)
		if err != nil {
			return nil, err
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *postgresRepo) Update(ctx context.Context, s *Store) error {
	addr, err := json.Marshal(s.Address)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE stores SET name=$1, address=$2, phone=$3, updated_at=$4 WHERE id=$5`,
		s.Name, addr, s.Phone, time.Now(), s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("store %s not found", s.ID)
	}
	return nil
}

func (r *postgresRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE stores SET is_active=$1, updated_at=$2 WHERE id=$3`,
		active, time.Now(), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("store %s not found", id)
	}
	return nil
}

const selectSQL = `SELECT id, name, address, phone, is_active, created_at, updated_at FROM stores`

type rowScanner interface{ Scan(dest ...interface{}) error }

func scanStore(row rowScanner) (*Store, error) {
	s := &Store{}
	var addr []byte
	var phone sql.NullString
	if err := row.Scan(&s.ID, &s.Name, &addr, &phone, &s.IsActive, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	if phone.Valid {
		s.Phone = phone.String
	}
	if len(addr) > 0 {
		var a common.Address
		if err := json.Unmarshal(addr, &a); err == nil {
			s.Address = a
		}
	}
	return s, nil
}
