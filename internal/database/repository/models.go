package repository

import "time"

// Contract represents a contract row.
type Contract struct {
	ID        string
	Name      string
	Status    string
	CreatedAt time.Time
}

// Order represents an order row. ContractStatus is joined in from the
// contract on reads.
type Order struct {
	ID             string
	Name           string
	ContractID     string
	Status         string
	ContractStatus string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Product represents a product row.
type Product struct {
	ID   string
	Name string
}

// PricebookEntry represents a purchasable catalog entry. ProductName is
// joined in from the product on reads.
type PricebookEntry struct {
	ID             string
	ProductID      string
	ProductName    string
	UnitPriceCents int64
	Active         bool
}

// OrderItem represents an order line row.
type OrderItem struct {
	ID               string
	OrderID          string
	ProductID        string
	PricebookEntryID string
	ProductName      string
	UnitPriceCents   int64
	Quantity         int
	TotalCents       int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Save job statuses.
const (
	JobQueued     = "Queued"
	JobProcessing = "Processing"
	JobCompleted  = "Completed"
	JobFailed     = "Failed"
)

// SaveJob represents a queued save request. Payload is the JSON-encoded
// upsert and delete lists captured at enqueue time.
type SaveJob struct {
	ID        string
	OrderID   string
	Payload   []byte
	Status    string
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}
