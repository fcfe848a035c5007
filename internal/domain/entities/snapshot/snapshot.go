// Package snapshot defines the raw ingestion shapes for one account-metrics
// snapshot, before deduplication and normalization.
package snapshot

import "time"

// Record is the canonical raw row: every field is the untrimmed source
// string. Parsers adapt their source shape (positional sheet row, named
// webhook record) into this layout; nothing downstream ever touches column
// indices or wire field names.
type Record struct {
	CreatedAt         string
	ID                string
	Plan              string
	Status            string
	CompanyName       string
	AdministratorName string
	Phone             string
	Email             string

	NewTickets7d   string
	NewCustomers7d string
	NewItems7d     string

	TotalTickets   string
	TotalInvoices  string
	TotalQuotes    string
	TotalItems     string
	TotalCustomers string
	TotalSuppliers string

	LastSale        string
	LastInvoice     string
	LastQuote       string
	LastNewCustomer string
	LastNewSupplier string
	LastNewItem     string

	LastUpdate string
}

// Snapshot is one fetched batch of raw records.
type Snapshot struct {
	ID        string    `json:"id"`
	FetchedAt time.Time `json:"fetchedAt"`
	Source    string    `json:"source"`
	Records   []Record  `json:"-"`
	RowCount  int       `json:"rowCount"`
}
