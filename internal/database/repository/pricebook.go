package repository

import (
	"context"
	"database/sql"
)

// PricebookRepo handles products and their catalog entries.
type PricebookRepo struct {
	db *sql.DB
}

func NewPricebookRepo(db *sql.DB) *PricebookRepo { return &PricebookRepo{db: db} }

func (r *PricebookRepo) InsertProduct(ctx context.Context, p Product) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO products(id, name) VALUES(?, ?)`, p.ID, p.Name)
	return err
}

func (r *PricebookRepo) InsertEntry(ctx context.Context, e PricebookEntry) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO pricebook_entries(id, product_id, unit_price, active) VALUES(?, ?, ?, ?)`,
		e.ID, e.ProductID, e.UnitPriceCents, e.Active)
	return err
}

// ListActive returns purchasable entries with product names joined in,
// sorted by product name.
func (r *PricebookRepo) ListActive(ctx context.Context) ([]PricebookEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT e.id, e.product_id, p.name, e.unit_price, e.active
	FROM pricebook_entries e
	JOIN products p ON p.id = e.product_id
	WHERE e.active = 1
	ORDER BY p.name, e.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PricebookEntry
	for rows.Next() {
		var e PricebookEntry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.ProductName, &e.UnitPriceCents, &e.Active); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
