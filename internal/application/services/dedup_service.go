package services

import (
	"math/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/kladi/pulso-go/internal/domain/entities/snapshot"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/logging"
	"github.com/kladi/pulso-go/internal/infrastructure/observability/performance"
)

// DeduplicationService collapses duplicate raw rows that describe the same
// logical account, keeping the most-informative duplicate per group.
type DeduplicationService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewDeduplicationService(logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *DeduplicationService {
	return &DeduplicationService{
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Deduplicate groups rows by normalized company name, falling back to
// normalized email, falling back to a synthetic per-row key that makes the
// row its own group. Within a group the row with the highest activity score
// wins; ties go to the lexicographically greatest creation-date string.
// Row order in the output is not significant.
func (s *DeduplicationService) Deduplicate(records []snapshot.Record) []snapshot.Record {
	marker := s.perfTracker.StartOperation("ingest:dedup_rows")
	defer s.perfTracker.CompleteOperation(marker)

	entropy := ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)

	groups := make(map[string][]snapshot.Record)
	order := make([]string, 0, len(records))
	for _, rec := range records {
		key := groupKey(rec)
		if key == "" {
			// No name and no email: the row cannot be matched against
			// anything, so it survives under a synthetic key.
			key = "row_" + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
		}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], rec)
	}

	deduped := make([]snapshot.Record, 0, len(groups))
	duplicates := 0
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			deduped = append(deduped, group[0])
			continue
		}
		duplicates += len(group) - 1
		deduped = append(deduped, bestOfGroup(group))
	}

	marker.AddMetadata("inputRows", len(records))
	marker.AddMetadata("outputRows", len(deduped))
	marker.SetSuccess(true)
	s.logger.Ingest().Info("Deduplicated snapshot rows",
		"inputRows", len(records),
		"outputRows", len(deduped),
		"duplicatesDropped", duplicates,
	)

	return deduped
}

// groupKey returns the dedup grouping key, or "" when neither the company
// name nor the email carries information.
func groupKey(rec snapshot.Record) string {
	if name := normalizeKeyPart(rec.CompanyName); name != "" {
		return "name:" + name
	}
	if email := normalizeKeyPart(rec.Email); email != "" {
		return "email:" + email
	}
	return ""
}

func normalizeKeyPart(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	return strings.Join(strings.Fields(v), " ")
}

// bestOfGroup picks the duplicate with the highest activity score. On equal
// scores the most recent creation-date string wins; ISO dates compare
// chronologically under plain string comparison.
func bestOfGroup(group []snapshot.Record) snapshot.Record {
	best := group[0]
	bestScore := activityScore(best)
	for _, rec := range group[1:] {
		score := activityScore(rec)
		if score > bestScore || (score == bestScore && rec.CreatedAt > best.CreatedAt) {
			best = rec
			bestScore = score
		}
	}
	return best
}

// activityScore counts the designated activity columns that carry a real
// value. A column counts when it is non-empty and not the literal "0".
func activityScore(rec snapshot.Record) int {
	fields := []string{
		rec.TotalTickets, rec.TotalInvoices, rec.TotalQuotes,
		rec.TotalItems, rec.TotalCustomers, rec.TotalSuppliers,
		rec.LastSale, rec.LastInvoice, rec.LastQuote,
		rec.LastNewCustomer, rec.LastNewSupplier, rec.LastNewItem,
		rec.NewTickets7d, rec.NewItems7d,
	}

	score := 0
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" && f != "0" {
			score++
		}
	}
	return score
}
