package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/martminds/martminds-backend/internal/apperr"
	"github.com/martminds/martminds-backend/internal/common"
)

type postgresRepo struct {
	db *sql.DB
}

// NewPostgresRepository returns a Repository backed by Postgres. Orders and
// their items are written in a single transaction.
func NewPostgresRepository(db *sql.DB) Repository {
	return &postgresRepo{db: db}
}

func (r *postgresRepo) CreateOrder(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	addr, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("marshal delivery address: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, order_number, customer_id, store_id, driver_id, delivery_address, total, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		o.ID, o.OrderNumber, o.CustomerID, o.StoreID, o.DriverID, addr, o.Total, o.Status, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("order number %s: %w", o.OrderNumber, errDuplicateNumber)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *postgresRepo) GetOrderByID(ctx context.Context, id uuid.UUID) (*Order, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *postgresRepo) GetOrderByNumber(ctx context.Context, number string) (*Order, error) {
	return r.getOne(ctx, "order_number = $1", number)
}

func (r *postgresRepo) getOne(ctx context.Context, where string, arg any) (*Order, error) {
	row := r.db.QueryRowContext(ctx, selectOrderSQL+" WHERE "+where, arg)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.NotFoundf("order %v not found", arg)
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *postgresRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]*Order, error) {
	return r.listWhere(ctx, "customer_id = $1", customerID)
}

func (r *postgresRepo) ListByStore(ctx context.Context, storeID uuid.UUID) ([]*Order, error) {
	return r.listWhere(ctx, "store_id = $1", storeID)
}

func (r *postgresRepo) ListByDriver(ctx context.Context, driverID uuid.UUID) ([]*Order, error) {
	return r.listWhere(ctx, "driver_id = $1", driverID)
}

func (r *postgresRepo) ListByStatus(ctx context.Context, status Status) ([]*Order, error) {
	return r.listWhere(ctx, "status = $1", status)
}

func (r *postgresRepo) listWhere(ctx context.Context, where string, arg any) ([]*Order, error) {
	rows, err := r.db.QueryContext(ctx, selectOrderSQL+" WHERE "+where+" ORDER BY created_at", arg)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, o := range out {
		if err := r.loadItems(ctx, o); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (r *postgresRepo) Update(ctx context.Context, o *Order) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	addr, err := json.Marshal(o.DeliveryAddress)
	if err != nil {
		return fmt.Errorf("marshal delivery address: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE orders
		SET driver_id = $2, delivery_address = $3, total = $4, status = $5, updated_at = $6
		WHERE id = $1`,
		o.ID, o.DriverID, addr, o.Total, o.Status, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update order: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperr.NotFoundf("order %s not found", o.ID)
	}

	// Items only change while PENDING, so rewriting them on every update
	// is cheap and keeps the rows authoritative.
	if _, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE order_id = $1`, o.ID); err != nil {
		return fmt.Errorf("delete order items: %w", err)
	}
	if err := insertItems(ctx, tx, o); err != nil {
		return err
	}
	return tx.Commit()
}

const selectOrderSQL = `
	SELECT id, order_number, customer_id, store_id, driver_id, delivery_address, total, status, created_at, updated_at
	FROM orders`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var (
		o    Order
		addr []byte
	)
	err := row.Scan(&o.ID, &o.OrderNumber, &o.CustomerID, &o.StoreID, &o.DriverID, &addr, &o.Total, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(addr) > 0 {
		var a common.Address
		if err := json.Unmarshal(addr, &a); err != nil {
			return nil, fmt.Errorf("unmarshal delivery address: %w", err)
		}
		o.DeliveryAddress = a
	}
	return &o, nil
}

func (r *postgresRepo) loadItems(ctx context.Context, o *Order) error {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, product_id, product_name, quantity, price_at_purchase
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`,
		o.ID,
	)
	if err != nil {
		return fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.ProductName, &item.Quantity, &item.PriceAtPurchase); err != nil {
			return err
		}
		o.Items = append(o.Items, &item)
	}
	return rows.Err()
}

func insertItems(ctx context.Context, tx *sql.Tx, o *Order) error {
	for _, item := range o.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price_at_purchase)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			item.ID, o.ID, item.ProductID, item.ProductName, item.Quantity, item.PriceAtPurchase,
		)
		if err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}
