// Package editor holds the order editing model: the working set of line
// items, the undo baseline, and the save/confirm lifecycle. It performs no
// I/O; the TUI feeds it user actions, bus messages and backend results.
package editor

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"orderdesk/internal/bus"
)

// StatusActivated is the order and contract status that locks an order.
const StatusActivated = "Activated"

// Phase is where the editing session currently is.
type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseReady      Phase = "ready"
	PhaseSaving     Phase = "saving"
	PhaseConfirming Phase = "confirming"
)

// LineItem is one order line. TotalCents is recomputed on every quantity or
// price change; it is never read from stale state.
type LineItem struct {
	ID               string
	OrderID          string
	ProductID        string
	ProductName      string
	PricebookEntryID string
	UnitPriceCents   int64
	Quantity         int
	TotalCents       int64
}

// Editor owns one order's editing session.
type Editor struct {
	orderID          string
	phase            Phase
	working          map[string]LineItem // keyed by product id
	baseline         map[string]LineItem
	activated        bool
	contractInactive bool
	errText          string
	saveStartedAt    time.Time
	confirmAfter     bool
}

func New(orderID string) *Editor {
	return &Editor{
		orderID:  orderID,
		phase:    PhaseLoading,
		working:  map[string]LineItem{},
		baseline: map[string]LineItem{},
	}
}

// Load installs the fetched order. Both working set and baseline become the
// fetched items.
func (e *Editor) Load(orderStatus, contractStatus string, items []LineItem) {
	e.errText = ""
	e.activated = orderStatus == StatusActivated
	e.contractInactive = contractStatus != StatusActivated
	e.working = map[string]LineItem{}
	for _, it := range items {
		e.working[it.ProductID] = it
	}
	e.baseline = copyItems(e.working)
	e.phase = PhaseReady
}

// LoadFailed records the fetch error and leaves the session empty.
func (e *Editor) LoadFailed(err error) {
	e.working = map[string]LineItem{}
	e.baseline = map[string]LineItem{}
	e.errText = Normalize(err)
	e.phase = PhaseReady
}

// AddSelection merges a catalog selection into the working set: a new line at
// quantity 1, or one more of an existing line. Returns false when the session
// does not accept edits.
func (e *Editor) AddSelection(sel bus.ProductSelected) bool {
	if !e.CanEdit() {
		return false
	}
	e.errText = ""
	if it, ok := e.working[sel.ProductID]; ok {
		it.Quantity++
		it.TotalCents = it.UnitPriceCents * int64(it.Quantity)
		e.working[sel.ProductID] = it
		return true
	}
	e.working[sel.ProductID] = LineItem{
		ID:               uuid.NewString(),
		OrderID:          e.orderID,
		ProductID:        sel.ProductID,
		ProductName:      sel.ProductName,
		PricebookEntryID: sel.PricebookEntryID,
		UnitPriceCents:   sel.UnitPriceCents,
		Quantity:         1,
		TotalCents:       sel.UnitPriceCents,
	}
	return true
}

// Decrement lowers a line's quantity by one; at quantity 1 the line is
// removed from the working set entirely.
func (e *Editor) Decrement(productID string) {
	if !e.CanEdit() {
		return
	}
	it, ok := e.working[productID]
	if !ok {
		return
	}
	e.errText = ""
	if it.Quantity > 1 {
		it.Quantity--
		it.TotalCents = it.UnitPriceCents * int64(it.Quantity)
		e.working[productID] = it
		return
	}
	delete(e.working, productID)
}

// Items returns the working set sorted ascending by product name.
func (e *Editor) Items() []LineItem {
	out := make([]LineItem, 0, len(e.working))
	for _, it := range e.working {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out
}

// Deletions returns every baseline line whose product is gone from the
// working set. This is the delete list sent with a save.
func (e *Editor) Deletions() []LineItem {
	var out []LineItem
	for key, it := range e.baseline {
		if _, ok := e.working[key]; !ok {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductName < out[j].ProductName })
	return out
}

// Undo discards all pending edits, restoring the baseline. Calling it with no
// pending edits is a no-op.
func (e *Editor) Undo() {
	if e.activated || e.phase != PhaseReady {
		return
	}
	e.errText = ""
	e.working = copyItems(e.baseline)
}

// BeginSave starts the save workflow, returning the upsert and delete lists
// for the backend. It refuses when the session is locked or mid-save.
func (e *Editor) BeginSave(now time.Time, confirmAfter bool) (upserts, deletions []LineItem, ok bool) {
	if e.activated || e.phase != PhaseReady {
		return nil, nil, false
	}
	e.errText = ""
	e.phase = PhaseSaving
	e.saveStartedAt = now
	e.confirmAfter = confirmAfter
	return e.Items(), e.Deletions(), true
}

// SaveQueued replaces the provisional start timestamp with the backend's
// authoritative one once the job is enqueued.
func (e *Editor) SaveQueued(startedAt time.Time) {
	if e.phase == PhaseSaving {
		e.saveStartedAt = startedAt
	}
}

// SaveStartedAt identifies the live save job. There is no job id; the backend
// is queried for jobs enqueued at or after this instant.
func (e *Editor) SaveStartedAt() time.Time { return e.saveStartedAt }

// ConfirmAfterSave reports whether the live save should chain into a confirm.
func (e *Editor) ConfirmAfterSave() bool { return e.confirmAfter }

// SaveCompleted promotes the working set to the new baseline. The session
// moves to confirming when the save was started with confirmAfter, otherwise
// back to ready.
func (e *Editor) SaveCompleted() {
	e.baseline = copyItems(e.working)
	if e.confirmAfter {
		e.phase = PhaseConfirming
		return
	}
	e.phase = PhaseReady
}

// SaveFailed aborts the workflow. The working set is left untouched.
func (e *Editor) SaveFailed(err error) {
	e.errText = Normalize(err)
	e.confirmAfter = false
	e.phase = PhaseReady
}

// ConfirmSucceeded locks the order against further edits.
func (e *Editor) ConfirmSucceeded() {
	e.activated = true
	e.baseline = copyItems(e.working)
	e.confirmAfter = false
	e.phase = PhaseReady
}

// ConfirmRejected records the backend declining the confirm without an error.
func (e *Editor) ConfirmRejected() {
	e.errText = "Unable to confirm order. Try again later"
	e.confirmAfter = false
	e.phase = PhaseReady
}

// ConfirmFailed records a confirm call failure.
func (e *Editor) ConfirmFailed(err error) {
	e.errText = Normalize(err)
	e.confirmAfter = false
	e.phase = PhaseReady
}

func (e *Editor) OrderID() string        { return e.orderID }
func (e *Editor) Phase() Phase           { return e.phase }
func (e *Editor) Activated() bool        { return e.activated }
func (e *Editor) ContractInactive() bool { return e.contractInactive }
func (e *Editor) Empty() bool            { return len(e.working) == 0 }
func (e *Editor) ErrorMessage() string   { return e.errText }

// Busy reports whether interactive controls should be disabled.
func (e *Editor) Busy() bool { return e.phase != PhaseReady }

// CanEdit reports whether add/remove/undo are allowed right now.
func (e *Editor) CanEdit() bool { return e.phase == PhaseReady && !e.activated }

// CanConfirm reports whether the confirm action is allowed right now.
func (e *Editor) CanConfirm() bool {
	return e.phase == PhaseReady && !e.activated && !e.contractInactive && !e.Empty()
}

// InfoMessages are the notices shown above the table.
func (e *Editor) InfoMessages() []string {
	var out []string
	if e.activated {
		out = append(out, "This order has been Activated. No changes are allowed")
	}
	if e.contractInactive {
		out = append(out, "Contract for this order is Inactive. This order can't be confirmed")
	}
	if e.Empty() {
		out = append(out, "No products in this Order")
	}
	return out
}

func copyItems(src map[string]LineItem) map[string]LineItem {
	dst := make(map[string]LineItem, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
