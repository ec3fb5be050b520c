package user

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

type postgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository creates a new PostgreSQL user repository.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateUser(ctx context.Context, u *User) error {
	addr, err := marshalAddress(u.Address)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, password_hash, phone, role, balance, address, is_available)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		u.ID, u.Name, u.Email, u.PasswordHash, nilIfEmpty(u.Phone),
		u.Role, u.Balance, addr, u.IsAvailable)
	return err
}

func (r *postgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validationf("invalid user id: %s", id)
	}
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+` WHERE id=$1`, uid))
}

func (r *postgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.scan(r.db.QueryRowContext(ctx, selectSQL+` WHERE email=$1`, email))
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id string, name, phone string, addr *common.Address) error {
	addrJSON, err := marshalAddress(addr)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET name=$1, phone=$2, address=COALESCE($3, address), updated_at=$4 WHERE id=$5`,
		name, nilIfEmpty(phone), addrJSON, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

func (r *postgresRepository) ListByRole(ctx context.Context, role Role) ([]*User, error) {
	rows, err := r.db.QueryContext(ctx, selectSQL+` WHERE role=$1 ORDER BY created_at ASC`, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*User
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// AdjustBalance locks the user row so the check and the mutation are one
// unit of work.
func (r *postgresRepository) AdjustBalance(ctx context.Context, id string, delta float64) (float64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance float64
	err = tx.QueryRowContext(ctx,
		`SELECT balance FROM users WHERE id=$1 FOR UPDATE`, id).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, apperr.NotFoundf("user %s not found", id)
	}
	if err != nil {
		return 0, err
	}

	if balance+delta < 0 {
		return balance, apperr.Resourcef(
			"insufficient balance: required %.2f, available %.2f", -delta, balance)
	}

	newBalance := balance + delta
	_, err = tx.ExecContext(ctx,
		`UPDATE users SET balance=$1, updated_at=$2 WHERE id=$3`,
		newBalance, time.Now(), id)
	if err != nil {
		return 0, err
	}
	return newBalance, tx.Commit()
}

func (r *postgresRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET is_available=$1, updated_at=$2 WHERE id=$3`,
		available, time.Now(), id)
	if err != nil {
		return err
	}
	return requireRow(res, id)
}

// ── helpers ──────────────────────────────────────────────────────────────────

const selectSQL = `
	SELECT id, name, email, password_hash, phone, role, balance, address, is_available, created_at, updated_at
	FROM users`

type rowScanner interface{ Scan(dest ...interface{}) error }

func (r *postgresRepository) scan(row *sql.Row) (*User, error) {
	u, err := r.scanRow(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFoundf("user not found")
	}
	return u, err
}

func (r *postgresRepository) scanRow(row rowScanner) (*User, error) {
	u := &User{}
	var phone sql.NullString
	var addr []byte
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &phone,
		&u.Role, &u.Balance, &addr, &u.IsAvailable, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	if len(addr) > 0 {
		a := &common.Address{}
		if err := json.Unmarshal(addr, a); err == nil {
			u.Address = a
		}
	}
	return u, nil
}

func marshalAddress(a *common.Address) (interface{}, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("user %s not found", id)
	}
	return nil
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
