package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/report"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return domain.NewValidationError("", "invalid JSON")
	}
	return nil
}

// decodeAndValidate decodes dst and checks its validate tags.
func decodeAndValidate(r *http.Request, dst any) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return validateStruct(dst)
}

func validateStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return domain.NewValidationError(fe.Field(), fieldMessage(fe))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "datetime":
		return fmt.Sprintf("%s must be YYYY-MM-DD or empty", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

// CriteriaRequest is the dashboard and entry export filter.
type CriteriaRequest struct {
	StartDate      string   `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate        string   `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Preset         string   `json:"preset" validate:"omitempty,oneof=today 7days 30days"`
	ServiceTypeIDs []string `json:"serviceTypeIds" validate:"omitempty,dive,max=128"`
	PackageType    string   `json:"packageType" validate:"omitempty,oneof=Basic Premium Special"`
	HCPName        string   `json:"hcpName" validate:"max=200"`
	CollectedBy    string   `json:"collectedBy" validate:"max=100"`
	ReferralStatus string   `json:"referralStatus" validate:"omitempty,oneof=Pending Received"`
	PaymentByUs    string   `json:"paymentByUs" validate:"omitempty,oneof=Yes No yes no"`
	PaymentStatus  string   `json:"paymentStatus" validate:"max=50"`
	NavigatorID    string   `json:"navigatorId" validate:"max=128"`
	SearchTerm     string   `json:"searchTerm" validate:"max=200"`
}

// ToCriteria converts the request. A preset fills the date bounds only when no explicit dates
// were sent.
func (req CriteriaRequest) ToCriteria(resolve func(preset string) report.DateRange) report.Criteria {
	c := report.Criteria{
		Start:          toDatePtr(req.StartDate),
		End:            toDatePtr(req.EndDate),
		ServiceTypeIDs: req.ServiceTypeIDs,
		PackageType:    req.PackageType,
		HCPName:        req.HCPName,
		CollectedBy:    req.CollectedBy,
		ReferralStatus: req.ReferralStatus,
		PaymentByUs:    req.PaymentByUs,
		PaymentStatus:  req.PaymentStatus,
		NavigatorID:    req.NavigatorID,
		SearchTerm:     req.SearchTerm,
	}
	if req.Preset != "" && c.Start == nil && c.End == nil && resolve != nil {
		c = resolve(req.Preset).Apply(c)
	}
	return c
}

type ExpenseCriteriaRequest struct {
	StartDate  string `json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Category   string `json:"category" validate:"max=100"`
	PaidBy     string `json:"paidBy" validate:"max=200"`
	Mode       string `json:"modeOfTransaction" validate:"omitempty,oneof=Cash UPI 'Bank Transfer' 'Credit Card' 'Debit Card'"`
	SearchTerm string `json:"searchTerm" validate:"max=200"`
}

func (req ExpenseCriteriaRequest) ToCriteria() report.ExpenseCriteria {
	return report.ExpenseCriteria{
		Start:      toDatePtr(req.StartDate),
		End:        toDatePtr(req.EndDate),
		Category:   req.Category,
		PaidBy:     req.PaidBy,
		Mode:       req.Mode,
		SearchTerm: req.SearchTerm,
	}
}

type PaymentByUsRequest struct {
	Enabled     *bool           `json:"enabled" validate:"required"`
	WhomToPay   string          `json:"whomToPay" validate:"max=200"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type PaymentRequest struct {
	PaymentDate       string          `json:"paymentDate" validate:"max=32"`
	ModeOfTransaction string          `json:"modeOfTransaction" validate:"max=50"`
	AmountPaid        decimal.Decimal `json:"amountPaid"`
	TransactionID     string          `json:"transactionId" validate:"max=100"`
}

func (req PaymentRequest) ToDraft() domain.PaymentDraft {
	return domain.PaymentDraft{
		Date:          req.PaymentDate,
		Mode:          req.ModeOfTransaction,
		Amount:        req.AmountPaid,
		TransactionID: req.TransactionID,
	}
}

type CatalogRequest struct {
	Name string `json:"name" validate:"max=200"`
}

func toDatePtr(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil
	}
	return &parsed
}
