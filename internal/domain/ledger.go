package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerStatus is the derived payment status of a Payment By Us ledger.
type LedgerStatus string

const (
	LedgerNotStarted    LedgerStatus = "Not Started"
	LedgerPartiallyPaid LedgerStatus = "Partially Paid"
	LedgerCompleted     LedgerStatus = "Completed"
)

func (s LedgerStatus) IsValid() bool {
	switch s {
	case LedgerNotStarted, LedgerPartiallyPaid, LedgerCompleted:
		return true
	}
	return false
}

func (s LedgerStatus) String() string {
	return string(s)
}

// LedgerState is the lifecycle position of a ledger.
type LedgerState int

const (
	LedgerDisabled LedgerState = iota
	LedgerOpen
	LedgerPartial
	LedgerSettled
)

func (s LedgerState) String() string {
	switch s {
	case LedgerOpen:
		return "Open"
	case LedgerPartial:
		return "PartiallyPaid"
	case LedgerSettled:
		return "Completed"
	default:
		return "Disabled"
	}
}

// Payment is one partial reimbursement recorded against a ledger.
type Payment struct {
	ID                string          `json:"paymentId"`
	PaymentDate       string          `json:"paymentDate"`
	ModeOfTransaction string          `json:"modeOfTransaction"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	TransactionID     string          `json:"transactionId,omitempty"`
	AddedAt           time.Time       `json:"addedAt"`
	AddedBy           string          `json:"addedBy"`
}

// PaymentDraft is the user input for a new payment.
type PaymentDraft struct {
	Date          string
	Mode          string
	Amount        decimal.Decimal
	TransactionID string
}

// PaymentByUs tracks what the business owes a third party for one entry.
// PaidAmount, BalanceAmount and PaymentStatus are derived from TotalAmount and Payments.
type PaymentByUs struct {
	Enabled       bool            `json:"enabled"`
	WhomToPay     string          `json:"whomToPay,omitempty"`
	TotalAmount   decimal.Decimal `json:"totalAmount"`
	PaidAmount    decimal.Decimal `json:"paidAmount"`
	BalanceAmount decimal.Decimal `json:"balanceAmount"`
	PaymentStatus LedgerStatus    `json:"paymentStatus,omitempty"`
	Payments      []Payment       `json:"payments,omitempty"`
}

// UnmarshalJSON also accepts the plain "Yes"/"No" value older entries were saved with. An
// enabled ledger with an unknown stored status gets the status its amounts imply.
func (p *PaymentByUs) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var flag string
		if err := json.Unmarshal(data, &flag); err != nil {
			return err
		}
		*p = PaymentByUs{Enabled: strings.EqualFold(flag, "Yes")}
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*p = PaymentByUs{}
		return nil
	}

	type plain PaymentByUs
	var v plain
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PaymentByUs(v)
	if p.Enabled && !p.PaymentStatus.IsValid() {
		p.PaymentStatus = LedgerStatusFor(p.PaidAmount, p.TotalAmount)
	}
	return nil
}

func (p PaymentByUs) State() LedgerState {
	if !p.Enabled {
		return LedgerDisabled
	}
	switch p.PaymentStatus {
	case LedgerCompleted:
		return LedgerSettled
	case LedgerPartiallyPaid:
		return LedgerPartial
	default:
		return LedgerOpen
	}
}

// Enable starts an empty ledger. Any previous payments are discarded.
func (p *PaymentByUs) Enable(total decimal.Decimal, payee string) error {
	if !total.IsPositive() {
		return NewValidationError("totalAmount", "Total Amount to Pay must be greater than 0")
	}
	payee = strings.TrimSpace(payee)
	if payee == "" {
		return NewValidationError("whomToPay", "Please enter whom to pay")
	}

	*p = PaymentByUs{
		Enabled:     true,
		WhomToPay:   payee,
		TotalAmount: total,
	}
	p.recompute()
	return nil
}

// Retarget changes the payee and total of an enabled ledger while keeping its payments.
func (p *PaymentByUs) Retarget(total decimal.Decimal, payee string) error {
	if !p.Enabled {
		return p.Enable(total, payee)
	}
	if !total.IsPositive() {
		return NewValidationError("totalAmount", "Total Amount to Pay must be greater than 0")
	}
	payee = strings.TrimSpace(payee)
	if payee == "" {
		return NewValidationError("whomToPay", "Please enter whom to pay")
	}
	if total.LessThan(sumPayments(p.Payments)) {
		return NewValidationError("totalAmount", "Total Amount to Pay cannot be less than the amount already paid")
	}

	p.WhomToPay = payee
	p.TotalAmount = total
	p.recompute()
	return nil
}

// Disable switches the ledger off, dropping the total and every payment.
func (p *PaymentByUs) Disable() {
	*p = PaymentByUs{}
}

// AddPayment appends a payment. On error the ledger is left untouched.
func (p *PaymentByUs) AddPayment(d PaymentDraft, addedBy string, at time.Time) (Payment, error) {
	if !p.Enabled {
		return Payment{}, NewValidationError("paymentByUs", "Payment By Us is not enabled for this entry.")
	}
	if !p.TotalAmount.IsPositive() {
		return Payment{}, NewValidationError("totalAmount", "Please enter the Total Amount to Pay first.")
	}

	balance := p.TotalAmount.Sub(sumPayments(p.Payments))
	if !balance.IsPositive() {
		return Payment{}, NewValidationError("amount", "Payment is already complete. No further payments can be added.")
	}

	if strings.TrimSpace(d.Date) == "" || d.Mode == "" || !d.Amount.IsPositive() {
		return Payment{}, NewValidationError("amount", "Please fill in all required fields with valid values.")
	}
	if _, _, err := ParseCalendarDate(d.Date); err != nil {
		return Payment{}, NewValidationError("paymentDate", "Please fill in all required fields with valid values.")
	}
	if d.Amount.GreaterThan(balance) {
		return Payment{}, NewValidationError("amount", fmt.Sprintf(
			"Payment amount (₹%s) cannot exceed remaining balance (₹%s).",
			d.Amount.StringFixed(2), balance.StringFixed(2),
		))
	}

	txn := strings.TrimSpace(d.TransactionID)
	if RequiresTransactionID(d.Mode) {
		if txn == "" {
			return Payment{}, NewValidationError("transactionId", "Transaction ID is required for UPI and Bank Transfer payments.")
		}
	} else {
		txn = ""
	}

	payment := Payment{
		ID:                uuid.NewString(),
		PaymentDate:       strings.TrimSpace(d.Date),
		ModeOfTransaction: d.Mode,
		AmountPaid:        d.Amount,
		TransactionID:     txn,
		AddedAt:           at,
		AddedBy:           addedBy,
	}

	p.Payments = append(slices.Clip(p.Payments), payment)
	p.recompute()
	return payment, nil
}

// RemovePayment deletes the payment with the given id.
func (p *PaymentByUs) RemovePayment(paymentID string) error {
	idx := slices.IndexFunc(p.Payments, func(pay Payment) bool { return pay.ID == paymentID })
	if idx < 0 {
		return ErrPaymentNotFound
	}

	p.Payments = slices.Delete(slices.Clone(p.Payments), idx, idx+1)
	p.recompute()
	return nil
}

// Validate checks a ledger coming from a submitted entry form.
func (p PaymentByUs) Validate() error {
	if !p.Enabled {
		return nil
	}
	if strings.TrimSpace(p.WhomToPay) == "" || !p.TotalAmount.IsPositive() {
		return NewValidationError("paymentByUs", "Please fill in all payment details: Whom to Pay and Total Amount.")
	}
	for _, pay := range p.Payments {
		if strings.TrimSpace(pay.PaymentDate) == "" || pay.ModeOfTransaction == "" || !pay.AmountPaid.IsPositive() {
			return NewValidationError("payments", "Invalid payment entry detected. Please check all payments.")
		}
		if RequiresTransactionID(pay.ModeOfTransaction) && strings.TrimSpace(pay.TransactionID) == "" {
			return NewValidationError("payments", "Transaction ID is required for UPI and Bank Transfer payments")
		}
	}
	if sumPayments(p.Payments).GreaterThan(p.TotalAmount) {
		return NewValidationError("payments", "Total payments cannot exceed Total Amount to Pay")
	}
	return nil
}

func (p *PaymentByUs) recompute() {
	p.PaidAmount = sumPayments(p.Payments)
	p.BalanceAmount = p.TotalAmount.Sub(p.PaidAmount)
	p.PaymentStatus = LedgerStatusFor(p.PaidAmount, p.TotalAmount)
}

// LedgerStatusFor derives the status from the paid and total amounts.
func LedgerStatusFor(paid, total decimal.Decimal) LedgerStatus {
	switch {
	case paid.IsZero():
		return LedgerNotStarted
	case total.IsPositive() && paid.Equal(total):
		return LedgerCompleted
	default:
		return LedgerPartiallyPaid
	}
}

func sumPayments(payments []Payment) decimal.Decimal {
	sum := decimal.Zero
	for _, pay := range payments {
		sum = sum.Add(pay.AmountPaid)
	}
	return sum
}
