package repository

import (
	"context"
	"database/sql"
)

// OrderItemRepo handles order lines.
type OrderItemRepo struct {
	db *sql.DB
}

func NewOrderItemRepo(db *sql.DB) *OrderItemRepo { return &OrderItemRepo{db: db} }

const orderItemColumns = `id, order_id, product_id, pricebook_entry_id, product_name, unit_price, quantity, total_price, created_at, updated_at`

func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID string) ([]OrderItem, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderItemColumns+` FROM order_items WHERE order_id = ? ORDER BY product_name, id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderItem
	for rows.Next() {
		var it OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.PricebookEntryID, &it.ProductName,
			&it.UnitPriceCents, &it.Quantity, &it.TotalCents, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// UpsertTx writes one line inside an existing transaction; the save worker
// applies a whole job atomically this way.
func (r *OrderItemRepo) UpsertTx(ctx context.Context, tx *sql.Tx, it OrderItem) error {
	_, err := tx.ExecContext(ctx, `
	INSERT INTO order_items(id, order_id, product_id, pricebook_entry_id, product_name, unit_price, quantity, total_price, created_at, updated_at)
	VALUES(?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	ON CONFLICT(id) DO UPDATE SET
	 quantity = excluded.quantity,
	 unit_price = excluded.unit_price,
	 total_price = excluded.total_price,
	 updated_at = CURRENT_TIMESTAMP;
	`, it.ID, it.OrderID, it.ProductID, it.PricebookEntryID, it.ProductName,
		it.UnitPriceCents, it.Quantity, it.TotalCents)
	return err
}

func (r *OrderItemRepo) Upsert(ctx context.Context, it OrderItem) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	if err := r.UpsertTx(ctx, tx, it); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (r *OrderItemRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM order_items WHERE id = ?`, id)
	return err
}
