package ingestion

import (
	"testing"
)

func TestSheetRowParserSkipsHeader(t *testing.T) {
	payload := []byte(`[
		["fecha_creacion_empresa","empresa_id","plan_suscripcion","estatus_suscripcion","nombre_empresa"],
		["2024-01-10","101","Gold","activa","Panaderia La Espiga"],
		["2024-06-05","102","","","Abarrotes El Centro"]
	]`)

	records, err := NewSheetRowParser().Parse(payload)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "101" || records[0].Plan != "Gold" {
		t.Errorf("first record wrong: %+v", records[0])
	}
	// Short rows pad with empty strings.
	if records[1].Email != "" || records[1].LastSale != "" {
		t.Errorf("missing columns should be empty: %+v", records[1])
	}
}

func TestSheetRowParserHeaderOnly(t *testing.T) {
	records, err := NewSheetRowParser().Parse([]byte(`[["fecha_creacion_empresa","empresa_id"]]`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("header-only payload should yield no records, got %d", len(records))
	}
}

func TestSheetRowParserRejectsMalformedJSON(t *testing.T) {
	if _, err := NewSheetRowParser().Parse([]byte(`{"not":"an array"}`)); err == nil {
		t.Error("expected an error for a non-array payload")
	}
}

func TestRecordParserNamedFields(t *testing.T) {
	payload := []byte(`[{
		"fecha_creacion_empresa": "2024-01-10",
		"empresa_id": 101,
		"plan_suscripcion": "Gold",
		"estatus_suscripcion": "activa",
		"nombre_empresa": "Panaderia La Espiga",
		"correo": "maria@espiga.mx",
		"total_tickets": 40,
		"nuevos_tickets_7d": "4",
		"ultima_venta": null
	}]`)

	records, err := NewRecordParser().Parse(payload)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.ID != "101" {
		t.Errorf("numeric id should keep its textual form, got %q", rec.ID)
	}
	if rec.TotalTickets != "40" {
		t.Errorf("numeric counter should keep its textual form, got %q", rec.TotalTickets)
	}
	if rec.NewTickets7d != "4" {
		t.Errorf("string counter wrong: %q", rec.NewTickets7d)
	}
	if rec.LastSale != "" {
		t.Errorf("null should decode to empty, got %q", rec.LastSale)
	}
	if rec.CompanyName != "Panaderia La Espiga" {
		t.Errorf("company name wrong: %q", rec.CompanyName)
	}
}

func TestRecordParserEmptyArray(t *testing.T) {
	records, err := NewRecordParser().Parse([]byte(`[]`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}
