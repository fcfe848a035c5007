// Package ingestion adapts raw upstream payloads into canonical snapshot
// records. The engine never sees column indices or wire field names; both
// legacy shapes are adapters behind the RowParser interface.
package ingestion

import (
	"encoding/json"
	"fmt"

	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
)

// RowParser turns one raw snapshot payload into canonical records.
type RowParser interface {
	Parse(payload []byte) ([]snapshot.Record, error)
}

// SheetRowParser reads the legacy spreadsheet export: a JSON 2-D string
// array whose first row is the header. Columns are positional, A through X.
type SheetRowParser struct{}

func NewSheetRowParser() *SheetRowParser { return &SheetRowParser{} }

// Sheet column positions. The legacy sheet layout is frozen; new columns
// only ever append.
const (
	colCreatedAt = iota
	colID
	colPlan
	colStatus
	colCompanyName
	colAdministratorName
	colPhone
	colEmail
	colNewTickets7d
	colNewCustomers7d
	colNewItems7d
	colTotalTickets
	colTotalInvoices
	colTotalQuotes
	colTotalItems
	colTotalCustomers
	colTotalSuppliers
	colLastSale
	colLastInvoice
	colLastQuote
	colLastNewCustomer
	colLastNewSupplier
	colLastNewItem
	colLastUpdate
	sheetColumnCount
)

func (p *SheetRowParser) Parse(payload []byte) ([]snapshot.Record, error) {
	var rows [][]string
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode sheet payload: %w", err)
	}

	if len(rows) <= 1 {
		return []snapshot.Record{}, nil
	}

	records := make([]snapshot.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, recordFromRow(row))
	}
	return records, nil
}

func recordFromRow(row []string) snapshot.Record {
	cell := func(idx int) string {
		if idx < len(row) {
			return row[idx]
		}
		return ""
	}

	return snapshot.Record{
		CreatedAt:         cell(colCreatedAt),
		ID:                cell(colID),
		Plan:              cell(colPlan),
		Status:            cell(colStatus),
		CompanyName:       cell(colCompanyName),
		AdministratorName: cell(colAdministratorName),
		Phone:             cell(colPhone),
		Email:             cell(colEmail),
		NewTickets7d:      cell(colNewTickets7d),
		NewCustomers7d:    cell(colNewCustomers7d),
		NewItems7d:        cell(colNewItems7d),
		TotalTickets:      cell(colTotalTickets),
		TotalInvoices:     cell(colTotalInvoices),
		TotalQuotes:       cell(colTotalQuotes),
		TotalItems:        cell(colTotalItems),
		TotalCustomers:    cell(colTotalCustomers),
		TotalSuppliers:    cell(colTotalSuppliers),
		LastSale:          cell(colLastSale),
		LastInvoice:       cell(colLastInvoice),
		LastQuote:         cell(colLastQuote),
		LastNewCustomer:   cell(colLastNewCustomer),
		LastNewSupplier:   cell(colLastNewSupplier),
		LastNewItem:       cell(colLastNewItem),
		LastUpdate:        cell(colLastUpdate),
	}
}

// wireRecord is one webhook record with the Spanish field names the
// upstream emits. Numeric fields arrive as numbers or strings depending on
// the sheet cell type, so everything decodes through flexString.
type wireRecord struct {
	CreatedAt         flexString `json:"fecha_creacion_empresa"`
	ID                flexString `json:"empresa_id"`
	Plan              flexString `json:"plan_suscripcion"`
	Status            flexString `json:"estatus_suscripcion"`
	CompanyName       flexString `json:"nombre_empresa"`
	AdministratorName flexString `json:"nombre_administrador"`
	Phone             flexString `json:"telefono"`
	Email             flexString `json:"correo"`
	NewTickets7d      flexString `json:"nuevos_tickets_7d"`
	NewCustomers7d    flexString `json:"nuevos_clientes_7d"`
	NewItems7d        flexString `json:"nuevos_articulos_7d"`
	TotalTickets      flexString `json:"total_tickets"`
	TotalInvoices     flexString `json:"total_facturas"`
	TotalQuotes       flexString `json:"total_cotizaciones"`
	TotalItems        flexString `json:"total_articulos"`
	TotalCustomers    flexString `json:"total_clientes"`
	TotalSuppliers    flexString `json:"total_proveedores"`
	LastSale          flexString `json:"ultima_venta"`
	LastInvoice       flexString `json:"ultima_factura"`
	LastQuote         flexString `json:"ultima_cotizacion"`
	LastNewCustomer   flexString `json:"ultimo_cliente_nuevo"`
	LastNewSupplier   flexString `json:"ultimo_proveedor_nuevo"`
	LastNewItem       flexString `json:"ultimo_articulo_nuevo"`
	LastUpdate        flexString `json:"ultima_actualizacion"`
}

// flexString accepts string, number, bool, or null JSON values and keeps
// the textual form. Malformed cells degrade to "" rather than failing the
// whole payload.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	// Non-string scalar: keep the raw token text.
	*f = flexString(data)
	return nil
}

// RecordParser reads the webhook shape: a JSON array of named-field objects.
type RecordParser struct{}

func NewRecordParser() *RecordParser { return &RecordParser{} }

func (p *RecordParser) Parse(payload []byte) ([]snapshot.Record, error) {
	var wire []wireRecord
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	records := make([]snapshot.Record, len(wire))
	for i, w := range wire {
		records[i] = snapshot.Record{
			CreatedAt:         string(w.CreatedAt),
			ID:                string(w.ID),
			Plan:              string(w.Plan),
			Status:            string(w.Status),
			CompanyName:       string(w.CompanyName),
			AdministratorName: string(w.AdministratorName),
			Phone:             string(w.Phone),
			Email:             string(w.Email),
			NewTickets7d:      string(w.NewTickets7d),
			NewCustomers7d:    string(w.NewCustomers7d),
			NewItems7d:        string(w.NewItems7d),
			TotalTickets:      string(w.TotalTickets),
			TotalInvoices:     string(w.TotalInvoices),
			TotalQuotes:       string(w.TotalQuotes),
			TotalItems:        string(w.TotalItems),
			TotalCustomers:    string(w.TotalCustomers),
			TotalSuppliers:    string(w.TotalSuppliers),
			LastSale:          string(w.LastSale),
			LastInvoice:       string(w.LastInvoice),
			LastQuote:         string(w.LastQuote),
			LastNewCustomer:   string(w.LastNewCustomer),
			LastNewSupplier:   string(w.LastNewSupplier),
			LastNewItem:       string(w.LastNewItem),
			LastUpdate:        string(w.LastUpdate),
		}
	}
	return records, nil
}
