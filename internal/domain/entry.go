package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	PackageBasic   = "Basic"
	PackagePremium = "Premium"
	PackageSpecial = "Special"
)

const (
	ReferralPending  = "Pending"
	ReferralReceived = "Received"
)

const (
	CollectedByUs       = "Collected by AssistHealth"
	CollectedByProvider = "Collected by Healthcare Provider"
)

const (
	ModeCash         = "Cash"
	ModeUPI          = "UPI"
	ModeBankTransfer = "Bank Transfer"
	ModeCreditCard   = "Credit Card"
	ModeDebitCard    = "Debit Card"
)

// Statuses of the single-payment record kept by older entries.
const (
	PaymentPending   = "Pending"
	PaymentCompleted = "Completed"
)

// RequiresTransactionID reports whether a transaction id is mandatory for the mode.
func RequiresTransactionID(mode string) bool {
	return mode == ModeUPI || mode == ModeBankTransfer
}

type CollectionDetails struct {
	CollectedBy       string `json:"collectedBy"`
	ModeOfTransaction string `json:"modeOfTransaction,omitempty"`
	TransactionID     string `json:"transactionId,omitempty"`
}

type ReferralPaymentDetails struct {
	PaymentMode   string     `json:"paymentMode"`
	TransactionID string     `json:"transactionId,omitempty"`
	PaidDate      *time.Time `json:"paidDate,omitempty"`
}

// PaymentDetails is the single payment record written by the first revision of the entry form,
// before the multi-payment ledger existed. Summaries still read it.
type PaymentDetails struct {
	ModeOfTransfer string          `json:"modeOfTransfer,omitempty"`
	PaidTo         string          `json:"paidTo,omitempty"`
	AmountPaid     decimal.Decimal `json:"amountPaid"`
	PaymentStatus  string          `json:"paymentStatus,omitempty"`
}

type ServiceEntry struct {
	ID   string `json:"id"`
	SlNo int64  `json:"slNo"`
	// Date is the service date as captured ("YYYY-MM-DD"). Blank when unknown.
	Date            string          `json:"date"`
	MemberName      string          `json:"memberName"`
	AHID            string          `json:"ahid"`
	ServiceTypeID   string          `json:"serviceTypeId"`
	ServiceTypeName string          `json:"serviceTypeName"`
	PackageType     string          `json:"packageType"`
	HCPName         string          `json:"hcpName"`
	TotalBillAmount decimal.Decimal `json:"totalBillAmount"`
	DiscountGiven   decimal.Decimal `json:"discountGiven"`
	ReferralAmount  decimal.Decimal `json:"referralAmount"`
	ReferralStatus  string          `json:"referralStatus"`

	CollectionDetails      *CollectionDetails      `json:"collectionDetails"`
	ReferralPaymentDetails *ReferralPaymentDetails `json:"referralPaymentDetails"`
	PaymentByUs            PaymentByUs             `json:"paymentByUs"`

	PaymentDetails *PaymentDetails     `json:"paymentDetails,omitempty"`
	AmountPaid     decimal.NullDecimal `json:"amountPaid"`

	NavigatorID   string    `json:"navigatorId"`
	NavigatorName string    `json:"navigatorName,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// CollectedBy returns the collected-by value, blank when no collection details were recorded.
func (e ServiceEntry) CollectedBy() string {
	if e.CollectionDetails == nil {
		return ""
	}
	return e.CollectionDetails.CollectedBy
}

// TransactionID returns the collection transaction id, blank when absent.
func (e ServiceEntry) TransactionID() string {
	if e.CollectionDetails == nil {
		return ""
	}
	return e.CollectionDetails.TransactionID
}

// Normalize trims the entry into its canonical stored shape: transaction ids only for modes that
// take one, referral payment details only for received referrals, a default referral status.
func (e *ServiceEntry) Normalize() {
	e.MemberName = strings.TrimSpace(e.MemberName)
	e.AHID = strings.TrimSpace(e.AHID)
	e.HCPName = strings.TrimSpace(e.HCPName)

	if e.ReferralStatus != ReferralReceived {
		e.ReferralStatus = ReferralPending
		e.ReferralPaymentDetails = nil
	}
	if rp := e.ReferralPaymentDetails; rp != nil && !RequiresTransactionID(rp.PaymentMode) {
		rp.TransactionID = ""
	}

	if cd := e.CollectionDetails; cd != nil {
		if cd.CollectedBy == "" {
			e.CollectionDetails = nil
		} else if cd.CollectedBy != CollectedByUs {
			cd.ModeOfTransaction = ""
			cd.TransactionID = ""
		} else if !RequiresTransactionID(cd.ModeOfTransaction) {
			cd.TransactionID = ""
		}
	}

	if !e.PaymentByUs.Enabled {
		e.PaymentByUs = PaymentByUs{}
	} else {
		e.PaymentByUs.recompute()
	}
}

// Validate checks the entry form rules. The first violation is returned.
func (e ServiceEntry) Validate() error {
	if e.ServiceTypeID == "" {
		return NewValidationError("serviceTypeId", "Please select a Service Type (*)")
	}
	if strings.TrimSpace(e.Date) == "" || strings.TrimSpace(e.MemberName) == "" ||
		e.PackageType == "" || strings.TrimSpace(e.HCPName) == "" {
		return NewValidationError("", "Please fill in all mandatory fields: Date, Member Name, Package Type, and HCP Name")
	}
	if _, _, err := ParseCalendarDate(e.Date); err != nil {
		return NewValidationError("date", "Date must be a valid date (YYYY-MM-DD)")
	}
	switch e.PackageType {
	case PackageBasic, PackagePremium, PackageSpecial:
	default:
		return NewValidationError("packageType", "Package Type must be Basic, Premium or Special")
	}

	if e.CollectionDetails == nil || e.CollectionDetails.CollectedBy == "" {
		return NewValidationError("collectedBy", "Please select how the payment was collected")
	}
	if cd := e.CollectionDetails; cd.CollectedBy == CollectedByUs {
		if cd.ModeOfTransaction == "" {
			return NewValidationError("modeOfTransaction", "Please select the mode of transaction")
		}
		if RequiresTransactionID(cd.ModeOfTransaction) && strings.TrimSpace(cd.TransactionID) == "" {
			return NewValidationError("transactionId", "Please enter the transaction ID for UPI or Bank Transfer")
		}
	}

	if e.ReferralStatus == ReferralReceived {
		rp := e.ReferralPaymentDetails
		if rp == nil || rp.PaymentMode == "" {
			return NewValidationError("referralPaymentMode", "Please select the referral payment mode")
		}
		if RequiresTransactionID(rp.PaymentMode) && strings.TrimSpace(rp.TransactionID) == "" {
			return NewValidationError("referralTransactionId", "Please enter the referral transaction ID for UPI or Bank Transfer")
		}
	}

	if e.TotalBillAmount.IsNegative() {
		return NewValidationError("totalBillAmount", "Total Bill Amount cannot be negative")
	}
	if e.DiscountGiven.IsNegative() {
		return NewValidationError("discountGiven", "Discount cannot be negative")
	}
	if e.ReferralAmount.IsNegative() {
		return NewValidationError("referralAmount", "Referral Amount cannot be negative")
	}

	if e.PaymentByUs.Enabled {
		return e.PaymentByUs.Validate()
	}
	return nil
}
