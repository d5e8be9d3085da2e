// Package report holds the pure dashboard computations: entry filtering, summaries and chart
// series, date presets and the office expense equivalents. Nothing here performs I/O or caches
// results between calls.
package report

import (
	"slices"
	"strings"
	"time"

	"healthops-dashboard/internal/domain"
)

// Criteria is one filter application. A blank field places no constraint.
type Criteria struct {
	Start          *time.Time
	End            *time.Time
	ServiceTypeIDs []string
	PackageType    string
	HCPName        string
	CollectedBy    string
	ReferralStatus string
	// PaymentByUs is "Yes" or "No".
	PaymentByUs string
	// PaymentStatus matches the legacy single-payment status. Entries without one pass.
	PaymentStatus string
	NavigatorID   string
	SearchTerm    string
}

// IsEmpty reports whether no criterion is active.
func (c Criteria) IsEmpty() bool {
	return len(c.predicates(nil)) == 0
}

type predicate func(e domain.ServiceEntry) bool

// Filter returns the entries matching every active criterion, in input order.
// catalog resolves service type ids to names for the free-text search.
func Filter(entries []domain.ServiceEntry, c Criteria, catalog map[string]string) []domain.ServiceEntry {
	preds := c.predicates(catalog)

	out := make([]domain.ServiceEntry, 0, len(entries))
	for _, e := range entries {
		if matchesAll(e, preds) {
			out = append(out, e)
		}
	}
	return out
}

func matchesAll(e domain.ServiceEntry, preds []predicate) bool {
	for _, p := range preds {
		if !p(e) {
			return false
		}
	}
	return true
}

func (c Criteria) predicates(catalog map[string]string) []predicate {
	var preds []predicate

	if c.Start != nil && c.End != nil {
		start, end := domain.CalendarDate(*c.Start), domain.CalendarDate(*c.End)
		preds = append(preds, func(e domain.ServiceEntry) bool {
			d, ok, err := domain.ParseCalendarDate(e.Date)
			if err != nil || !ok {
				// undated entries are not excluded by a date range
				return true
			}
			return !d.Before(start) && !d.After(end)
		})
	}

	if ids := nonBlank(c.ServiceTypeIDs); len(ids) > 0 {
		preds = append(preds, func(e domain.ServiceEntry) bool {
			return slices.Contains(ids, e.ServiceTypeID)
		})
	}

	preds = appendEquals(preds, c.PackageType, func(e domain.ServiceEntry) string { return e.PackageType })
	preds = appendEquals(preds, c.HCPName, func(e domain.ServiceEntry) string { return e.HCPName })
	preds = appendEquals(preds, c.CollectedBy, domain.ServiceEntry.CollectedBy)
	preds = appendEquals(preds, c.ReferralStatus, func(e domain.ServiceEntry) string { return e.ReferralStatus })
	preds = appendEquals(preds, c.NavigatorID, func(e domain.ServiceEntry) string { return e.NavigatorID })

	switch strings.ToLower(strings.TrimSpace(c.PaymentByUs)) {
	case "yes":
		preds = append(preds, func(e domain.ServiceEntry) bool { return e.PaymentByUs.Enabled })
	case "no":
		preds = append(preds, func(e domain.ServiceEntry) bool { return !e.PaymentByUs.Enabled })
	}

	if status := strings.TrimSpace(c.PaymentStatus); status != "" {
		preds = append(preds, func(e domain.ServiceEntry) bool {
			return e.PaymentDetails == nil || e.PaymentDetails.PaymentStatus == status
		})
	}

	if term := strings.ToLower(strings.TrimSpace(c.SearchTerm)); term != "" {
		preds = append(preds, func(e domain.ServiceEntry) bool {
			for _, field := range searchFields(e, catalog) {
				if strings.Contains(strings.ToLower(field), term) {
					return true
				}
			}
			return false
		})
	}

	return preds
}

func appendEquals(preds []predicate, want string, field func(domain.ServiceEntry) string) []predicate {
	want = strings.TrimSpace(want)
	if want == "" {
		return preds
	}
	return append(preds, func(e domain.ServiceEntry) bool { return field(e) == want })
}

func searchFields(e domain.ServiceEntry, catalog map[string]string) []string {
	return []string{e.MemberName, e.AHID, e.HCPName, serviceName(e, catalog), e.TransactionID()}
}

// serviceName prefers the live catalog name and falls back to the name stored on the entry.
func serviceName(e domain.ServiceEntry, catalog map[string]string) string {
	if name, ok := catalog[e.ServiceTypeID]; ok && name != "" {
		return name
	}
	return e.ServiceTypeName
}

func nonBlank(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
