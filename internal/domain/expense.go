package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory string

const (
	ExpenseSalary        ExpenseCategory = "Salary"
	ExpenseIncentives    ExpenseCategory = "Incentives"
	ExpenseOfficeRent    ExpenseCategory = "Office Rent"
	ExpenseUtilities     ExpenseCategory = "Utilities (Electricity, Water)"
	ExpenseInternet      ExpenseCategory = "Internet & Phone"
	ExpenseSupplies      ExpenseCategory = "Office Supplies"
	ExpenseTravel        ExpenseCategory = "Travel & Transport"
	ExpenseMarketing     ExpenseCategory = "Marketing & Advertising"
	ExpenseEquipment     ExpenseCategory = "Equipment & Maintenance"
	ExpenseProfessional  ExpenseCategory = "Professional Fees"
	ExpenseMiscellaneous ExpenseCategory = "Miscellaneous"
)

var expenseCategories = []ExpenseCategory{
	ExpenseSalary, ExpenseIncentives, ExpenseOfficeRent, ExpenseUtilities, ExpenseInternet, ExpenseSupplies,
	ExpenseTravel, ExpenseMarketing, ExpenseEquipment, ExpenseProfessional, ExpenseMiscellaneous,
}

func ExpenseCategories() []ExpenseCategory {
	out := make([]ExpenseCategory, len(expenseCategories))
	copy(out, expenseCategories)
	return out
}

func (c ExpenseCategory) IsValid() bool {
	for _, known := range expenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

var expenseModes = map[string]bool{
	ModeCash: true, ModeUPI: true, ModeBankTransfer: true, ModeCreditCard: true, ModeDebitCard: true,
}

type OfficeExpense struct {
	ID                string          `json:"id"`
	SlNo              int64           `json:"slNo"`
	Date              string          `json:"date"`
	Category          ExpenseCategory `json:"expenseCategory"`
	Details           string          `json:"details"`
	PaidBy            string          `json:"paidBy"`
	PaidTo            string          `json:"paidTo"`
	Amount            decimal.Decimal `json:"amount"`
	ModeOfTransaction string          `json:"modeOfTransaction"`
	TransactionID     string          `json:"transactionId,omitempty"`
	CreatedBy         string          `json:"createdBy"`
	CreatedAt         time.Time       `json:"createdAt"`
	UpdatedAt         time.Time       `json:"updatedAt"`
}

func (e *OfficeExpense) Normalize() {
	e.Details = strings.TrimSpace(e.Details)
	e.PaidBy = strings.TrimSpace(e.PaidBy)
	e.PaidTo = strings.TrimSpace(e.PaidTo)
	e.TransactionID = strings.TrimSpace(e.TransactionID)
	if !RequiresTransactionID(e.ModeOfTransaction) {
		e.TransactionID = ""
	}
}

func (e OfficeExpense) Validate() error {
	if _, ok, err := ParseCalendarDate(e.Date); err != nil || !ok {
		return NewValidationError("date", "Please select a valid date")
	}
	if !e.Category.IsValid() {
		return NewValidationError("expenseCategory", "Please select an expense category")
	}
	if len([]rune(strings.TrimSpace(e.Details))) < 10 {
		return NewValidationError("details", "Details must be at least 10 characters")
	}
	if strings.TrimSpace(e.PaidBy) == "" {
		return NewValidationError("paidBy", "Please enter who paid")
	}
	if len([]rune(strings.TrimSpace(e.PaidTo))) < 2 {
		return NewValidationError("paidTo", "Paid To must be at least 2 characters")
	}
	if !e.Amount.IsPositive() {
		return NewValidationError("amount", "Amount must be greater than 0")
	}
	if !expenseModes[e.ModeOfTransaction] {
		return NewValidationError("modeOfTransaction", "Please select the mode of transaction")
	}
	if RequiresTransactionID(e.ModeOfTransaction) && strings.TrimSpace(e.TransactionID) == "" {
		return NewValidationError("transactionId", "Transaction ID is required for UPI and Bank Transfer payments")
	}
	return nil
}
