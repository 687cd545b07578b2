package repository

import (
	"context"
	"database/sql"
)

// OrderRepo handles orders.
type OrderRepo struct {
	db *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo { return &OrderRepo{db: db} }

func (r *OrderRepo) Insert(ctx context.Context, o Order) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT OR IGNORE INTO orders(id, name, contract_id, status, created_at, updated_at)
	VALUES(?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP);
	`, o.ID, o.Name, o.ContractID, o.Status)
	return err
}

// Get returns the order with its contract status joined in, or nil when the
// order does not exist.
func (r *OrderRepo) Get(ctx context.Context, id string) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT o.id, o.name, o.contract_id, o.status, c.status, o.created_at, o.updated_at
	FROM orders o
	JOIN contracts c ON c.id = o.contract_id
	WHERE o.id = ?`, id)
	var o Order
	err := row.Scan(&o.ID, &o.Name, &o.ContractID, &o.Status, &o.ContractStatus, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	return err
}

// First returns the oldest order, used to pick a default editing target when
// none is configured.
func (r *OrderRepo) First(ctx context.Context) (*Order, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT o.id, o.name, o.contract_id, o.status, c.status, o.created_at, o.updated_at
	FROM orders o
	JOIN contracts c ON c.id = o.contract_id
	ORDER BY o.created_at, o.id LIMIT 1`)
	var o Order
	err := row.Scan(&o.ID, &o.Name, &o.ContractID, &o.Status, &o.ContractStatus, &o.CreatedAt, &o.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}
