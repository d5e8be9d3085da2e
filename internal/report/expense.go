package report

import (
	"strings"
	"time"

	"healthops-dashboard/internal/domain"

	"github.com/shopspring/decimal"
)

// ExpenseCriteria filters office expenses. Start and End apply independently and both are
// inclusive; an expense without a readable date fails an active bound.
type ExpenseCriteria struct {
	Start      *time.Time
	End        *time.Time
	Category   string
	PaidBy     string
	Mode       string
	SearchTerm string
}

func FilterExpenses(expenses []domain.OfficeExpense, c ExpenseCriteria) []domain.OfficeExpense {
	term := strings.ToLower(strings.TrimSpace(c.SearchTerm))
	category := strings.TrimSpace(c.Category)
	paidBy := strings.TrimSpace(c.PaidBy)
	mode := strings.TrimSpace(c.Mode)

	out := make([]domain.OfficeExpense, 0, len(expenses))
	for _, e := range expenses {
		if c.Start != nil || c.End != nil {
			d, ok, err := domain.ParseCalendarDate(e.Date)
			if err != nil || !ok {
				continue
			}
			if c.Start != nil && d.Before(domain.CalendarDate(*c.Start)) {
				continue
			}
			if c.End != nil && d.After(domain.CalendarDate(*c.End)) {
				continue
			}
		}
		if category != "" && string(e.Category) != category {
			continue
		}
		if paidBy != "" && e.PaidBy != paidBy {
			continue
		}
		if mode != "" && e.ModeOfTransaction != mode {
			continue
		}
		if term != "" &&
			!strings.Contains(strings.ToLower(e.PaidTo), term) &&
			!strings.Contains(strings.ToLower(e.Details), term) &&
			!strings.Contains(strings.ToLower(e.TransactionID), term) {
			continue
		}
		out = append(out, e)
	}
	return out
}

type ExpenseSummary struct {
	Count       int                           `json:"count"`
	Total       decimal.Decimal               `json:"total"`
	Salary      decimal.Decimal               `json:"salary"`
	Operational decimal.Decimal               `json:"operational"`
	ThisMonth   decimal.Decimal               `json:"thisMonth"`
	Warnings    []domain.DataIntegrityWarning `json:"warnings,omitempty"`
}

// SummarizeExpenses totals expenses. ThisMonth covers expenses dated in ref's calendar month.
func SummarizeExpenses(expenses []domain.OfficeExpense, ref time.Time) ExpenseSummary {
	sum := ExpenseSummary{
		Total:       decimal.Zero,
		Salary:      decimal.Zero,
		Operational: decimal.Zero,
		ThisMonth:   decimal.Zero,
	}
	refYear, refMonth, _ := ref.Date()

	for _, e := range expenses {
		sum.Count++

		amount := e.Amount
		if amount.IsNegative() {
			sum.Warnings = append(sum.Warnings, domain.DataIntegrityWarning{
				EntryID: e.ID, Field: "amount", Detail: "negative amount " + amount.String() + " counted as 0",
			})
			amount = decimal.Zero
		}

		sum.Total = sum.Total.Add(amount)
		if e.Category == domain.ExpenseSalary {
			sum.Salary = sum.Salary.Add(amount)
		} else {
			sum.Operational = sum.Operational.Add(amount)
		}

		d, ok, err := domain.ParseCalendarDate(e.Date)
		if err != nil {
			sum.Warnings = append(sum.Warnings, domain.DataIntegrityWarning{EntryID: e.ID, Field: "date", Detail: err.Error()})
			continue
		}
		if ok && d.Year() == refYear && d.Month() == refMonth {
			sum.ThisMonth = sum.ThisMonth.Add(amount)
		}
	}
	return sum
}
