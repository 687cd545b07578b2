package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"orderdesk/internal/database"
	"orderdesk/internal/database/repository"
	"orderdesk/internal/editor"
)

type backendFixture struct {
	db      *sql.DB
	svc     *OrderEntryService
	worker  *SaveWorker
	orderID string
}

func newBackendFixture(t *testing.T) *backendFixture {
	t.Helper()
	ctx := context.Background()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, database.Migrate(dbPath))
	t.Log("migrations applied")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.SeedDemo(ctx, db, ""))
	t.Log("demo data seeded")

	orders := repository.NewOrderRepo(db)
	items := repository.NewOrderItemRepo(db)
	jobs := repository.NewSaveJobRepo(db)
	svc := &OrderEntryService{
		DB:        db,
		Orders:    orders,
		Items:     items,
		Pricebook: repository.NewPricebookRepo(db),
		Jobs:      jobs,
	}
	worker := &SaveWorker{DB: db, Jobs: jobs, Items: items}

	order, err := orders.First(ctx)
	require.NoError(t, err)
	require.NotNil(t, order)

	return &backendFixture{db: db, svc: svc, worker: worker, orderID: order.ID}
}

func (f *backendFixture) line(t *testing.T, name string, price int64, qty int) repository.OrderItem {
	t.Helper()
	ctx := context.Background()
	entries, err := f.svc.CatalogEntries(ctx, f.orderID)
	require.NoError(t, err)
	for _, e := range entries {
		if e.ProductName == name {
			return repository.OrderItem{
				ID:               uuid.NewString(),
				OrderID:          f.orderID,
				ProductID:        e.ProductID,
				PricebookEntryID: e.ID,
				ProductName:      e.ProductName,
				UnitPriceCents:   price,
				Quantity:         qty,
				TotalCents:       price * int64(qty),
			}
		}
	}
	t.Fatalf("no catalog entry named %s", name)
	return repository.OrderItem{}
}

func TestQueuedSaveLifecycle(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	ctx := context.Background()

	li := f.line(t, "GenWatt Diesel 1000kW", 10000000, 5)
	startedAt, err := f.svc.QueueSave(ctx, f.orderID, []repository.OrderItem{li}, nil)
	require.NoError(t, err)

	status, err := f.svc.SaveStatus(ctx, f.orderID, startedAt)
	require.NoError(t, err)
	require.Equal(t, SaveProcessing, status)
	t.Log("job queued, still processing")

	processed, err := f.worker.ProcessOnce(ctx)
	require.NoError(t, err)
	require.True(t, processed)

	status, err = f.svc.SaveStatus(ctx, f.orderID, startedAt)
	require.NoError(t, err)
	require.Equal(t, SaveCompleted, status)
	t.Log("job completed")

	_, items, err := f.svc.GetOrder(ctx, f.orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "GenWatt Diesel 1000kW", items[0].ProductName)
	require.Equal(t, 5, items[0].Quantity)
	require.Equal(t, int64(50000000), items[0].TotalCents)

	// queue empty now
	processed, err = f.worker.ProcessOnce(ctx)
	require.NoError(t, err)
	require.False(t, processed)
}

func TestQueuedSaveAppliesDeletes(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	ctx := context.Background()

	keep := f.line(t, "SLA: Gold", 6000000, 1)
	drop := f.line(t, "SLA: Bronze", 2000000, 2)
	startedAt, err := f.svc.QueueSave(ctx, f.orderID, []repository.OrderItem{keep, drop}, nil)
	require.NoError(t, err)
	_, err = f.worker.ProcessOnce(ctx)
	require.NoError(t, err)

	keep.Quantity = 3
	keep.TotalCents = keep.UnitPriceCents * 3
	startedAt, err = f.svc.QueueSave(ctx, f.orderID, []repository.OrderItem{keep}, []repository.OrderItem{drop})
	require.NoError(t, err)
	_, err = f.worker.ProcessOnce(ctx)
	require.NoError(t, err)

	status, err := f.svc.SaveStatus(ctx, f.orderID, startedAt)
	require.NoError(t, err)
	require.Equal(t, SaveCompleted, status)

	_, items, err := f.svc.GetOrder(ctx, f.orderID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "SLA: Gold", items[0].ProductName)
	require.Equal(t, 3, items[0].Quantity)
	require.Equal(t, int64(18000000), items[0].TotalCents)
}

func TestFailedJobSurfacesThroughSaveStatus(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	ctx := context.Background()

	startedAt := database.Now()
	job := repository.SaveJob{
		ID:        uuid.NewString(),
		OrderID:   f.orderID,
		Payload:   []byte("{not json"),
		CreatedAt: startedAt,
	}
	require.NoError(t, f.svc.Jobs.Enqueue(ctx, job))

	processed, err := f.worker.ProcessOnce(ctx)
	require.NoError(t, err)
	require.True(t, processed)
	t.Log("bad job consumed and marked failed")

	_, err = f.svc.SaveStatus(ctx, f.orderID, startedAt)
	require.Error(t, err)
	var re *editor.RemoteError
	require.ErrorAs(t, err, &re)
	require.NotEmpty(t, re.Messages)
}

func TestSaveSyncAppliesImmediately(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	ctx := context.Background()

	li := f.line(t, "GenWatt Propane 100kW", 1500000, 2)
	items, err := f.svc.SaveSync(ctx, f.orderID, []repository.OrderItem{li}, nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity)

	items, err = f.svc.SaveSync(ctx, f.orderID, nil, []repository.OrderItem{li})
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestConfirmRequiresItemsAndActiveContract(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	ctx := context.Background()

	ok, err := f.svc.Confirm(ctx, f.orderID)
	require.NoError(t, err)
	require.False(t, ok, "empty order must not confirm")

	li := f.line(t, "GenWatt Diesel 10kW", 500000, 1)
	_, err = f.svc.SaveSync(ctx, f.orderID, []repository.OrderItem{li}, nil)
	require.NoError(t, err)

	ok, err = f.svc.Confirm(ctx, f.orderID)
	require.NoError(t, err)
	require.True(t, ok)

	order, _, err := f.svc.GetOrder(ctx, f.orderID)
	require.NoError(t, err)
	require.Equal(t, editor.StatusActivated, order.Status)

	// confirming an activated order stays true
	ok, err = f.svc.Confirm(ctx, f.orderID)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestConfirmRejectsInactiveContract(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	ctx := context.Background()

	order, _, err := f.svc.GetOrder(ctx, f.orderID)
	require.NoError(t, err)
	require.NoError(t, repository.NewContractRepo(f.db).UpdateStatus(ctx, order.ContractID, "Draft"))

	li := f.line(t, "GenWatt Diesel 10kW", 500000, 1)
	_, err = f.svc.SaveSync(ctx, f.orderID, []repository.OrderItem{li}, nil)
	require.NoError(t, err)

	ok, err := f.svc.Confirm(ctx, f.orderID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestGetOrderUnknownID(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	_, _, err := f.svc.GetOrder(context.Background(), "nope")
	require.Error(t, err)
	require.Equal(t, "Order not found", editor.Normalize(err))
}

func TestCatalogEntriesSortedByName(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	entries, err := f.svc.CatalogEntries(context.Background(), f.orderID)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for i := 1; i < len(entries); i++ {
		require.LessOrEqual(t, entries[i-1].ProductName, entries[i].ProductName)
	}
}

func TestWorkerRunStopsOnCancel(t *testing.T) {
	t.Parallel()

	f := newBackendFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		f.worker.Run(ctx, 10*time.Millisecond)
		close(done)
	}()

	li := f.line(t, "Installation: Portable", 77000, 1)
	startedAt, err := f.svc.QueueSave(ctx, f.orderID, []repository.OrderItem{li}, nil)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		status, err := f.svc.SaveStatus(context.Background(), f.orderID, startedAt)
		return err == nil && status == SaveCompleted
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}
