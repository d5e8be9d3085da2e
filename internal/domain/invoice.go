package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BillTo struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
}

type InvoiceItem struct {
	No          int             `json:"no"`
	Description string          `json:"description"`
	Qty         decimal.Decimal `json:"qty"`
	Price       decimal.Decimal `json:"price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type Invoice struct {
	ID            string          `json:"id"`
	InvoiceNumber int64           `json:"invoiceNumber"`
	InvoiceDate   string          `json:"invoiceDate"`
	InvoiceTo     BillTo          `json:"invoiceTo"`
	Items         []InvoiceItem   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	GrandTotal    decimal.Decimal `json:"grandTotal"`
	ModeOfPayment string          `json:"modeOfPayment,omitempty"`
	CreatedBy     string          `json:"createdBy"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// Recalculate numbers the items and derives every subtotal and the grand total. No tax is applied.
func (inv *Invoice) Recalculate() {
	sum := decimal.Zero
	for i := range inv.Items {
		it := &inv.Items[i]
		it.No = i + 1
		it.Description = strings.TrimSpace(it.Description)
		it.Subtotal = it.Qty.Mul(it.Price)
		sum = sum.Add(it.Subtotal)
	}
	inv.Subtotal = sum
	inv.GrandTotal = sum
}

func (inv Invoice) Validate() error {
	if strings.TrimSpace(inv.InvoiceTo.Name) == "" {
		return NewValidationError("invoiceTo.name", "Please enter the customer name")
	}
	if _, _, err := ParseCalendarDate(inv.InvoiceDate); err != nil {
		return NewValidationError("invoiceDate", "Invoice date must be a valid date (YYYY-MM-DD)")
	}
	if len(inv.Items) == 0 {
		return NewValidationError("items", "Please add at least one item")
	}
	for _, it := range inv.Items {
		if strings.TrimSpace(it.Description) == "" {
			return NewValidationError("items", "Each item needs a description")
		}
		if it.Qty.IsNegative() || it.Price.IsNegative() {
			return NewValidationError("items", "Quantity and price cannot be negative")
		}
	}
	return nil
}
