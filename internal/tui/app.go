// Package tui is the order entry screen: a catalog pane that publishes
// product selections on the bus, and an order pane that edits the current
// order's lines and drives the save/confirm workflow.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"orderdesk/internal/bus"
	"orderdesk/internal/config"
	"orderdesk/internal/database/repository"
	"orderdesk/internal/editor"
	"orderdesk/internal/service"
)

// Backend is the remote boundary the editor talks to. OrderEntryService is
// the production implementation.
type Backend interface {
	GetOrder(ctx context.Context, orderID string) (repository.Order, []repository.OrderItem, error)
	QueueSave(ctx context.Context, orderID string, upserts, deletes []repository.OrderItem) (time.Time, error)
	SaveStatus(ctx context.Context, orderID string, since time.Time) (service.SaveStatus, error)
	Confirm(ctx context.Context, orderID string) (bool, error)
	CatalogEntries(ctx context.Context, orderID string) ([]repository.PricebookEntry, error)
}

type paneFocus int

const (
	focusCatalog paneFocus = iota
	focusOrder
)

type toast struct {
	Title   string
	Body    string
	Success bool
}

// App ties the two panes together.
type App struct {
	ctx     context.Context
	cfg     config.Config
	backend Backend
	bus     *bus.Bus
	sub     *bus.Subscription
	// selections carries bus messages into the update loop.
	selections chan bus.ProductSelected

	ed         *editor.Editor
	order      repository.Order
	catalog    list.Model
	catalogErr string
	table      table.Model
	rowKeys    []string // product id per table row
	focus      paneFocus
	toasts     []toast
	width      int
	height     int
}

func New(ctx context.Context, cfg config.Config, backend Backend, b *bus.Bus, orderID string) *App {
	a := &App{
		ctx:        ctx,
		cfg:        cfg,
		backend:    backend,
		bus:        b,
		selections: make(chan bus.ProductSelected, 16),
		ed:         editor.New(orderID),
		catalog:    newCatalogList(),
		table:      newOrderTable(),
		focus:      focusCatalog,
	}
	a.sub = b.Subscribe(func(m bus.ProductSelected) {
		a.selections <- m
	})
	return a
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadOrder(), a.loadCatalog(), a.waitForSelection())
}

// commands

func (a *App) loadOrder() tea.Cmd {
	return func() tea.Msg {
		order, items, err := a.backend.GetOrder(a.ctx, a.ed.OrderID())
		if err != nil {
			return orderLoadErrMsg{err}
		}
		return orderLoadedMsg{order: order, items: items}
	}
}

func (a *App) loadCatalog() tea.Cmd {
	return func() tea.Msg {
		entries, err := a.backend.CatalogEntries(a.ctx, a.ed.OrderID())
		if err != nil {
			return catalogErrMsg{err}
		}
		return catalogMsg(entries)
	}
}

func (a *App) waitForSelection() tea.Cmd {
	return func() tea.Msg {
		sel, ok := <-a.selections
		if !ok {
			return nil
		}
		return selectionMsg(sel)
	}
}

func (a *App) queueSaveCmd(upserts, deletes []repository.OrderItem) tea.Cmd {
	return func() tea.Msg {
		startedAt, err := a.backend.QueueSave(a.ctx, a.ed.OrderID(), upserts, deletes)
		return saveQueuedMsg{startedAt: startedAt, err: err}
	}
}

func (a *App) schedulePoll(startedAt time.Time) tea.Cmd {
	return tea.Tick(a.cfg.PollInterval(), func(time.Time) tea.Msg {
		return pollDueMsg{startedAt: startedAt}
	})
}

func (a *App) checkStatusCmd(startedAt time.Time) tea.Cmd {
	return func() tea.Msg {
		status, err := a.backend.SaveStatus(a.ctx, a.ed.OrderID(), startedAt)
		return saveStatusMsg{startedAt: startedAt, status: status, err: err}
	}
}

func (a *App) confirmCmd() tea.Cmd {
	return func() tea.Msg {
		ok, err := a.backend.Confirm(a.ctx, a.ed.OrderID())
		return confirmResultMsg{ok: ok, err: err}
	}
}

// update

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.resize()

	case tea.KeyMsg:
		return a.handleKey(m)

	case orderLoadedMsg:
		a.order = m.order
		a.ed.Load(m.order.Status, m.order.ContractStatus, toLineItems(m.items))
		a.refreshTable()

	case orderLoadErrMsg:
		a.ed.LoadFailed(m.err)
		a.refreshTable()

	case catalogMsg:
		a.catalogErr = ""
		items := make([]list.Item, 0, len(m))
		for _, e := range m {
			items = append(items, catalogItem{entry: e, currency: a.cfg.UI.CurrencySymbol})
		}
		a.catalog.SetItems(items)

	case catalogErrMsg:
		// the catalog's own failure stays local to its pane
		a.catalogErr = editor.Normalize(m.err)

	case selectionMsg:
		a.ed.AddSelection(bus.ProductSelected(m))
		a.refreshTable()
		return a, a.waitForSelection()

	case saveQueuedMsg:
		if m.err != nil {
			a.ed.SaveFailed(m.err)
			a.pushToast(toast{Title: "Records NOT saved", Body: "Order Items have NOT been saved", Success: false})
			return a, nil
		}
		a.ed.SaveQueued(m.startedAt)
		return a, a.schedulePoll(m.startedAt)

	case pollDueMsg:
		if !a.pollIsLive(m.startedAt) {
			return a, nil
		}
		return a, a.checkStatusCmd(m.startedAt)

	case saveStatusMsg:
		return a.handleSaveStatus(m)

	case confirmResultMsg:
		switch {
		case m.err != nil:
			a.ed.ConfirmFailed(m.err)
		case !m.ok:
			a.ed.ConfirmRejected()
		default:
			a.ed.ConfirmSucceeded()
			a.pushToast(toast{Title: "Order confirmed", Body: "Order has been confirmed", Success: true})
		}
		a.refreshTable()
	}
	return a, nil
}

func (a *App) handleSaveStatus(m saveStatusMsg) (tea.Model, tea.Cmd) {
	if !a.pollIsLive(m.startedAt) {
		return a, nil
	}
	if m.err != nil {
		a.ed.SaveFailed(m.err)
		a.pushToast(toast{Title: "Records NOT saved", Body: "Order Items have NOT been saved", Success: false})
		return a, nil
	}
	if m.status == service.SaveProcessing {
		return a, a.schedulePoll(m.startedAt)
	}
	confirmAfter := a.ed.ConfirmAfterSave()
	a.ed.SaveCompleted()
	a.pushToast(toast{Title: "Records saved", Body: "Order Items have been saved", Success: true})
	if confirmAfter {
		return a, a.confirmCmd()
	}
	return a, nil
}

// pollIsLive drops continuations belonging to a save that is no longer the
// session's live job.
func (a *App) pollIsLive(startedAt time.Time) bool {
	return a.ed.Phase() == editor.PhaseSaving && a.ed.SaveStartedAt().Equal(startedAt)
}

func (a *App) handleKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	// while the catalog filter is being typed, keys belong to it
	if a.focus == focusCatalog && a.catalog.FilterState() == list.Filtering {
		if m.String() == "ctrl+c" {
			a.sub.Cancel()
			close(a.selections)
			return a, tea.Quit
		}
		var cmd tea.Cmd
		a.catalog, cmd = a.catalog.Update(m)
		return a, cmd
	}

	switch m.String() {
	case "q", "ctrl+c":
		a.sub.Cancel()
		close(a.selections)
		return a, tea.Quit
	case "tab":
		if a.focus == focusCatalog {
			a.focus = focusOrder
			a.table.Focus()
		} else {
			a.focus = focusCatalog
			a.table.Blur()
		}
		return a, nil
	case "s":
		return a.startSave(false)
	case "c":
		if !a.ed.CanConfirm() {
			return a, nil
		}
		// save pending edits first, then confirm
		return a.startSave(true)
	case "u":
		a.ed.Undo()
		a.refreshTable()
		return a, nil
	}

	if a.focus == focusCatalog {
		if m.String() == "enter" {
			a.publishSelection()
			return a, nil
		}
		var cmd tea.Cmd
		a.catalog, cmd = a.catalog.Update(m)
		return a, cmd
	}

	switch m.String() {
	case "backspace", "x":
		if key := a.selectedRowKey(); key != "" {
			a.ed.Decrement(key)
			a.refreshTable()
		}
		return a, nil
	}
	var cmd tea.Cmd
	a.table, cmd = a.table.Update(m)
	return a, cmd
}

func (a *App) startSave(confirmAfter bool) (tea.Model, tea.Cmd) {
	upserts, deletes, ok := a.ed.BeginSave(time.Now().UTC(), confirmAfter)
	if !ok {
		return a, nil
	}
	return a, a.queueSaveCmd(toOrderItems(upserts), toOrderItems(deletes))
}

// publishSelection is the catalog broadcaster side: picking an entry puts a
// ProductSelected message on the bus.
func (a *App) publishSelection() {
	it, ok := a.catalog.SelectedItem().(catalogItem)
	if !ok {
		return
	}
	a.bus.Publish(bus.ProductSelected{
		ProductID:        it.entry.ProductID,
		ProductName:      it.entry.ProductName,
		UnitPriceCents:   it.entry.UnitPriceCents,
		PricebookEntryID: it.entry.ID,
	})
}

func (a *App) selectedRowKey() string {
	i := a.table.Cursor()
	if i < 0 || i >= len(a.rowKeys) {
		return ""
	}
	return a.rowKeys[i]
}

func (a *App) refreshTable() {
	items := a.ed.Items()
	rows := make([]table.Row, 0, len(items))
	keys := make([]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, table.Row{
			it.ProductName,
			formatCents(it.UnitPriceCents),
			formatQty(it.Quantity),
			formatCents(it.TotalCents),
		})
		keys = append(keys, it.ProductID)
	}
	a.table.SetRows(rows)
	a.rowKeys = keys
	if a.table.Cursor() >= len(rows) {
		a.table.SetCursor(0)
	}
}

// orderRows exposes the rendered cell values of the order table.
func (a *App) orderRows() []table.Row {
	return a.table.Rows()
}

func (a *App) pushToast(tst toast) {
	a.toasts = append(a.toasts, tst)
}

func toLineItems(items []repository.OrderItem) []editor.LineItem {
	out := make([]editor.LineItem, 0, len(items))
	for _, it := range items {
		out = append(out, editor.LineItem{
			ID:               it.ID,
			OrderID:          it.OrderID,
			ProductID:        it.ProductID,
			ProductName:      it.ProductName,
			PricebookEntryID: it.PricebookEntryID,
			UnitPriceCents:   it.UnitPriceCents,
			Quantity:         it.Quantity,
			TotalCents:       it.TotalCents,
		})
	}
	return out
}

func toOrderItems(items []editor.LineItem) []repository.OrderItem {
	out := make([]repository.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, repository.OrderItem{
			ID:               it.ID,
			OrderID:          it.OrderID,
			ProductID:        it.ProductID,
			PricebookEntryID: it.PricebookEntryID,
			ProductName:      it.ProductName,
			UnitPriceCents:   it.UnitPriceCents,
			Quantity:         it.Quantity,
			TotalCents:       it.TotalCents,
		})
	}
	return out
}

// messages

type orderLoadedMsg struct {
	order repository.Order
	items []repository.OrderItem
}

type orderLoadErrMsg struct{ err error }

type catalogMsg []repository.PricebookEntry

type catalogErrMsg struct{ err error }

type selectionMsg bus.ProductSelected

type saveQueuedMsg struct {
	startedAt time.Time
	err       error
}

type pollDueMsg struct{ startedAt time.Time }

type saveStatusMsg struct {
	startedAt time.Time
	status    service.SaveStatus
	err       error
}

type confirmResultMsg struct {
	ok  bool
	err error
}
