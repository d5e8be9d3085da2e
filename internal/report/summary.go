package report

import (
	"slices"

	"healthops-dashboard/internal/domain"

	"github.com/shopspring/decimal"
)

// UnknownKey buckets entries without a usable date or service name.
const UnknownKey = "Unknown"

type SeriesPoint struct {
	Key    string          `json:"key"`
	Amount decimal.Decimal `json:"amount"`
}

type ReferralDistribution struct {
	Pending  int `json:"pending"`
	Received int `json:"received"`
}

type PaymentDistribution struct {
	Pending   int `json:"pending"`
	Completed int `json:"completed"`
}

// Summary is the dashboard view of a set of entries: the summary cards, the two chart series and
// the two status distributions.
type Summary struct {
	EntryCount       int             `json:"entryCount"`
	TotalBillAmount  decimal.Decimal `json:"totalBillAmount"`
	TotalDiscount    decimal.Decimal `json:"totalDiscount"`
	ReferralReceived decimal.Decimal `json:"referralReceived"`
	TotalPaid        decimal.Decimal `json:"totalPaid"`
	PendingPayment   decimal.Decimal `json:"pendingPayment"`

	// Ledger totals over entries with Payment By Us enabled.
	LedgerTotal   decimal.Decimal `json:"ledgerTotal"`
	LedgerPaid    decimal.Decimal `json:"ledgerPaid"`
	LedgerBalance decimal.Decimal `json:"ledgerBalance"`

	DateSeries    []SeriesPoint        `json:"dateSeries"`
	ServiceSeries []SeriesPoint        `json:"serviceSeries"`
	Referrals     ReferralDistribution `json:"referralDistribution"`
	Payments      PaymentDistribution  `json:"paymentDistribution"`

	Warnings []domain.DataIntegrityWarning `json:"warnings,omitempty"`
}

type summarizer struct {
	sum        Summary
	byDate     map[string]decimal.Decimal
	byService  map[string]decimal.Decimal
	serviceSeq []string
}

// Summarize aggregates entries. catalog maps service type ids to names. Negative stored amounts
// count as zero and are reported in Summary.Warnings, as are malformed dates.
func Summarize(entries []domain.ServiceEntry, catalog map[string]string) Summary {
	s := &summarizer{
		sum: Summary{
			TotalBillAmount:  decimal.Zero,
			TotalDiscount:    decimal.Zero,
			ReferralReceived: decimal.Zero,
			TotalPaid:        decimal.Zero,
			PendingPayment:   decimal.Zero,
			LedgerTotal:      decimal.Zero,
			LedgerPaid:       decimal.Zero,
			LedgerBalance:    decimal.Zero,
		},
		byDate:    map[string]decimal.Decimal{},
		byService: map[string]decimal.Decimal{},
	}
	for _, e := range entries {
		s.add(e, catalog)
	}
	return s.result()
}

func (s *summarizer) add(e domain.ServiceEntry, catalog map[string]string) {
	sum := &s.sum
	sum.EntryCount++

	bill := s.amount(e.ID, "totalBillAmount", e.TotalBillAmount)
	sum.TotalBillAmount = sum.TotalBillAmount.Add(bill)
	sum.TotalDiscount = sum.TotalDiscount.Add(s.amount(e.ID, "discountGiven", e.DiscountGiven))

	if e.ReferralStatus == domain.ReferralReceived {
		sum.ReferralReceived = sum.ReferralReceived.Add(s.amount(e.ID, "referralAmount", e.ReferralAmount))
		sum.Referrals.Received++
	} else {
		sum.Referrals.Pending++
	}

	if e.PaymentByUs.Enabled {
		s.addPayment(e)
	}

	dateKey := UnknownKey
	if d, ok, err := domain.ParseCalendarDate(e.Date); err != nil {
		s.warn(e.ID, "date", err.Error())
	} else if ok {
		dateKey = d.Format(domain.DateLayout)
	}
	s.byDate[dateKey] = s.byDate[dateKey].Add(bill)

	name := serviceName(e, catalog)
	if name == "" {
		name = UnknownKey
	}
	if _, seen := s.byService[name]; !seen {
		s.serviceSeq = append(s.serviceSeq, name)
	}
	s.byService[name] = s.byService[name].Add(bill)
}

func (s *summarizer) addPayment(e domain.ServiceEntry) {
	sum := &s.sum

	if d := e.PaymentDetails; d != nil {
		paid := s.amount(e.ID, "paymentDetails.amountPaid", d.AmountPaid)
		sum.TotalPaid = sum.TotalPaid.Add(paid)
		if d.PaymentStatus == domain.PaymentPending {
			sum.PendingPayment = sum.PendingPayment.Add(paid)
		}
		if d.PaymentStatus == domain.PaymentCompleted {
			sum.Payments.Completed++
		} else {
			sum.Payments.Pending++
		}
	} else {
		if e.AmountPaid.Valid {
			sum.PendingPayment = sum.PendingPayment.Add(s.amount(e.ID, "amountPaid", e.AmountPaid.Decimal))
		}
		sum.Payments.Pending++
	}

	l := e.PaymentByUs
	sum.LedgerTotal = sum.LedgerTotal.Add(s.amount(e.ID, "paymentByUs.totalAmount", l.TotalAmount))
	sum.LedgerPaid = sum.LedgerPaid.Add(s.amount(e.ID, "paymentByUs.paidAmount", l.PaidAmount))
	sum.LedgerBalance = sum.LedgerBalance.Add(s.amount(e.ID, "paymentByUs.balanceAmount", l.BalanceAmount))
}

// amount returns v, or zero with a warning when v is negative.
func (s *summarizer) amount(entryID, field string, v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		s.warn(entryID, field, "negative amount "+v.String()+" counted as 0")
		return decimal.Zero
	}
	return v
}

func (s *summarizer) warn(entryID, field, detail string) {
	s.sum.Warnings = append(s.sum.Warnings, domain.DataIntegrityWarning{EntryID: entryID, Field: field, Detail: detail})
}

func (s *summarizer) result() Summary {
	out := s.sum
	out.DateSeries = sortedSeries(s.byDate)
	out.ServiceSeries = make([]SeriesPoint, 0, len(s.serviceSeq))
	for _, name := range s.serviceSeq {
		out.ServiceSeries = append(out.ServiceSeries, SeriesPoint{Key: name, Amount: s.byService[name]})
	}
	return out
}

// sortedSeries orders buckets by key. Date keys are YYYY-MM-DD, so the order is chronological
// and UnknownKey sorts last.
func sortedSeries(buckets map[string]decimal.Decimal) []SeriesPoint {
	keys := make([]string, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	out := make([]SeriesPoint, 0, len(keys))
	for _, k := range keys {
		out = append(out, SeriesPoint{Key: k, Amount: buckets[k]})
	}
	return out
}

// Merge combines summaries of disjoint entry sets. Series merge key-wise: dates stay sorted,
// services keep a's order followed by keys first seen in b.
func Merge(a, b Summary) Summary {
	out := Summary{
		EntryCount:       a.EntryCount + b.EntryCount,
		TotalBillAmount:  a.TotalBillAmount.Add(b.TotalBillAmount),
		TotalDiscount:    a.TotalDiscount.Add(b.TotalDiscount),
		ReferralReceived: a.ReferralReceived.Add(b.ReferralReceived),
		TotalPaid:        a.TotalPaid.Add(b.TotalPaid),
		PendingPayment:   a.PendingPayment.Add(b.PendingPayment),
		LedgerTotal:      a.LedgerTotal.Add(b.LedgerTotal),
		LedgerPaid:       a.LedgerPaid.Add(b.LedgerPaid),
		LedgerBalance:    a.LedgerBalance.Add(b.LedgerBalance),
		Referrals: ReferralDistribution{
			Pending:  a.Referrals.Pending + b.Referrals.Pending,
			Received: a.Referrals.Received + b.Referrals.Received,
		},
		Payments: PaymentDistribution{
			Pending:   a.Payments.Pending + b.Payments.Pending,
			Completed: a.Payments.Completed + b.Payments.Completed,
		},
	}
	out.Warnings = append(append(out.Warnings, a.Warnings...), b.Warnings...)

	byDate := map[string]decimal.Decimal{}
	for _, p := range append(slices.Clone(a.DateSeries), b.DateSeries...) {
		byDate[p.Key] = byDate[p.Key].Add(p.Amount)
	}
	out.DateSeries = sortedSeries(byDate)

	byService := map[string]decimal.Decimal{}
	var seq []string
	for _, p := range append(slices.Clone(a.ServiceSeries), b.ServiceSeries...) {
		if _, seen := byService[p.Key]; !seen {
			seq = append(seq, p.Key)
		}
		byService[p.Key] = byService[p.Key].Add(p.Amount)
	}
	out.ServiceSeries = make([]SeriesPoint, 0, len(seq))
	for _, k := range seq {
		out.ServiceSeries = append(out.ServiceSeries, SeriesPoint{Key: k, Amount: byService[k]})
	}
	return out
}
