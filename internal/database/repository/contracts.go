package repository

import (
	"context"
	"database/sql"
)

// ContractRepo handles contracts.
type ContractRepo struct {
	db *sql.DB
}

func NewContractRepo(db *sql.DB) *ContractRepo { return &ContractRepo{db: db} }

func (r *ContractRepo) Insert(ctx context.Context, c Contract) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO contracts(id, name, status) VALUES(?, ?, ?)`,
		c.ID, c.Name, c.Status)
	return err
}

func (r *ContractRepo) UpdateStatus(ctx context.Context, id, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE contracts SET status = ? WHERE id = ?`, status, id)
	return err
}

func (r *ContractRepo) Get(ctx context.Context, id string) (*Contract, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, status, created_at FROM contracts WHERE id = ?`, id)
	var c Contract
	if err := row.Scan(&c.ID, &c.Name, &c.Status, &c.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}
