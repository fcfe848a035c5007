package services

import (
	"testing"

	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
)

func TestDeduplicateGroupsByCompanyName(t *testing.T) {
	svc := NewDeduplicationService(newTestLogger(t), newTestTracker())

	records := []snapshot.Record{
		{ID: "1", CompanyName: "Acme Corp", TotalTickets: "10"},
		{ID: "2", CompanyName: "  acme   corp  ", TotalTickets: "0"},
		{ID: "3", CompanyName: "Other SA"},
	}

	out := svc.Deduplicate(records)
	if len(out) != 2 {
		t.Fatalf("expected 2 rows after dedup, got %d", len(out))
	}
	if out[0].ID != "1" {
		t.Errorf("expected the row with tickets to win, got id %s", out[0].ID)
	}
}

func TestDeduplicateFallsBackToEmail(t *testing.T) {
	svc := NewDeduplicationService(newTestLogger(t), newTestTracker())

	records := []snapshot.Record{
		{ID: "1", Email: "Dueno@Negocio.mx"},
		{ID: "2", Email: "dueno@negocio.mx", TotalItems: "4"},
	}

	out := svc.Deduplicate(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 row after email dedup, got %d", len(out))
	}
	if out[0].ID != "2" {
		t.Errorf("expected the more active row to win, got id %s", out[0].ID)
	}
}

func TestDeduplicateTieBreaksByCreationDate(t *testing.T) {
	svc := NewDeduplicationService(newTestLogger(t), newTestTracker())

	records := []snapshot.Record{
		{ID: "old", CompanyName: "Empresa", CreatedAt: "2024-02-01", TotalTickets: "5"},
		{ID: "new", CompanyName: "Empresa", CreatedAt: "2024-03-01", TotalTickets: "7"},
	}

	out := svc.Deduplicate(records)
	if len(out) != 1 {
		t.Fatalf("expected 1 row, got %d", len(out))
	}
	if out[0].ID != "new" {
		t.Errorf("expected the later creation date to win the tie, got id %s", out[0].ID)
	}
}

func TestDeduplicateKeylessRowsSurviveIndividually(t *testing.T) {
	svc := NewDeduplicationService(newTestLogger(t), newTestTracker())

	records := []snapshot.Record{
		{ID: "1"},
		{ID: "2"},
	}

	out := svc.Deduplicate(records)
	if len(out) != 2 {
		t.Fatalf("rows without name or email must each survive, got %d rows", len(out))
	}
}

func TestActivityScoreCountsRealValuesOnly(t *testing.T) {
	rec := snapshot.Record{
		TotalTickets:  "12",
		TotalInvoices: "0",
		TotalQuotes:   "  ",
		LastSale:      "2024-01-01",
		NewTickets7d:  "3",
	}
	if got := activityScore(rec); got != 3 {
		t.Errorf("activityScore = %d, want 3", got)
	}
}
