// Package service implements the backend the order editor talks to: the
// order read/confirm calls, the queued asynchronous save path with its status
// poll, and the worker that processes queued saves in the background.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"orderdesk/internal/database"
	"orderdesk/internal/database/repository"
	"orderdesk/internal/editor"
)

// SaveStatus is the poll result for a queued save.
type SaveStatus string

const (
	SaveProcessing SaveStatus = "Processing"
	SaveCompleted  SaveStatus = "Completed"
)

// savePayload is what a queued save job carries.
type savePayload struct {
	Upserts []repository.OrderItem `json:"upserts"`
	Deletes []repository.OrderItem `json:"deletes"`
}

// OrderEntryService is the order editor's backend.
type OrderEntryService struct {
	DB        *sql.DB
	Orders    *repository.OrderRepo
	Items     *repository.OrderItemRepo
	Pricebook *repository.PricebookRepo
	Jobs      *repository.SaveJobRepo
}

// GetOrder returns the order header and its current lines.
func (s *OrderEntryService) GetOrder(ctx context.Context, orderID string) (repository.Order, []repository.OrderItem, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return repository.Order{}, nil, err
	}
	if order == nil {
		return repository.Order{}, nil, editor.Remotef("Order not found")
	}
	items, err := s.Items.ListByOrder(ctx, orderID)
	if err != nil {
		return repository.Order{}, nil, err
	}
	return *order, items, nil
}

// QueueSave enqueues the upsert and delete lists for background processing
// and returns the job's start timestamp. It reports nothing about completion;
// callers poll SaveStatus with the returned timestamp.
func (s *OrderEntryService) QueueSave(ctx context.Context, orderID string, upserts, deletes []repository.OrderItem) (time.Time, error) {
	payload, err := json.Marshal(savePayload{Upserts: upserts, Deletes: deletes})
	if err != nil {
		return time.Time{}, fmt.Errorf("encode save payload: %w", err)
	}
	startedAt := database.Now()
	job := repository.SaveJob{
		ID:        uuid.NewString(),
		OrderID:   orderID,
		Payload:   payload,
		CreatedAt: startedAt,
	}
	if err := s.Jobs.Enqueue(ctx, job); err != nil {
		return time.Time{}, err
	}
	return startedAt, nil
}

// SaveStatus reports whether every save job enqueued at or after since has
// finished. A failed job surfaces as an error carrying its recorded message.
func (s *OrderEntryService) SaveStatus(ctx context.Context, orderID string, since time.Time) (SaveStatus, error) {
	failed, err := s.Jobs.FirstFailureSince(ctx, orderID, since)
	if err != nil {
		return "", err
	}
	if failed != nil {
		msg := "save job failed"
		if failed.Error != nil && *failed.Error != "" {
			msg = *failed.Error
		}
		return "", editor.Remotef(msg)
	}
	n, err := s.Jobs.CountUnfinished(ctx, orderID, since)
	if err != nil {
		return "", err
	}
	if n > 0 {
		return SaveProcessing, nil
	}
	return SaveCompleted, nil
}

// SaveSync applies the upsert and delete lists immediately and returns the
// order's lines afterwards. This is the synchronous alternative to
// QueueSave.
func (s *OrderEntryService) SaveSync(ctx context.Context, orderID string, upserts, deletes []repository.OrderItem) ([]repository.OrderItem, error) {
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		return applyChanges(ctx, s.Items, tx, upserts, deletes)
	})
	if err != nil {
		return nil, err
	}
	return s.Items.ListByOrder(ctx, orderID)
}

// Confirm activates the order, locking it against further edits. It returns
// false without error when the order cannot be confirmed: inactive contract
// or no lines.
func (s *OrderEntryService) Confirm(ctx context.Context, orderID string) (bool, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return false, err
	}
	if order == nil {
		return false, editor.Remotef("Order not found")
	}
	if order.Status == editor.StatusActivated {
		return true, nil
	}
	if order.ContractStatus != editor.StatusActivated {
		return false, nil
	}
	items, err := s.Items.ListByOrder(ctx, orderID)
	if err != nil {
		return false, err
	}
	if len(items) == 0 {
		return false, nil
	}
	if err := s.Orders.UpdateStatus(ctx, orderID, editor.StatusActivated); err != nil {
		return false, err
	}
	return true, nil
}

// CatalogEntries returns the purchasable entries shown in the catalog pane.
func (s *OrderEntryService) CatalogEntries(ctx context.Context, orderID string) ([]repository.PricebookEntry, error) {
	order, err := s.Orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, editor.Remotef("Order not found")
	}
	return s.Pricebook.ListActive(ctx)
}

func applyChanges(ctx context.Context, items *repository.OrderItemRepo, tx *sql.Tx, upserts, deletes []repository.OrderItem) error {
	for _, it := range upserts {
		if err := items.UpsertTx(ctx, tx, it); err != nil {
			return fmt.Errorf("upsert %s: %w", it.ProductName, err)
		}
	}
	for _, it := range deletes {
		if err := items.DeleteTx(ctx, tx, it.ID); err != nil {
			return fmt.Errorf("delete %s: %w", it.ProductName, err)
		}
	}
	return nil
}
