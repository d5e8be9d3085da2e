package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/report"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ExportSink stores a finished workbook and returns its download URL.
type ExportSink interface {
	Store(ctx context.Context, fileName string, data []byte) (string, error)
}

type ExportNotifier interface {
	NotifyExportProgress(ctx context.Context, userID, exportID string, progress float64, stage string) error
	NotifyExportComplete(ctx context.Context, userID, exportID, url, filename string) error
	NotifyExportFailed(ctx context.Context, userID, exportID, errMsg string) error
}

const (
	exportTypeEntries  = "service_entries"
	exportTypeExpenses = "office_expenses"

	progressChunk = 500
)

// ReportExportService writes filtered entries or expenses to xlsx in the background, reporting
// progress over the status store and the notifier.
type ReportExportService struct {
	dashboard *DashboardService
	expenses  *ExpenseService
	statuses  StatusStore
	sink      ExportSink
	notifier  ExportNotifier
	clock     Clock
	logger    *zap.Logger

	spawn func(func())
}

func NewReportExportService(
	dashboard *DashboardService,
	expenses *ExpenseService,
	statuses StatusStore,
	sink ExportSink,
	notifier ExportNotifier,
	clock Clock,
	logger *zap.Logger,
) *ReportExportService {
	return &ReportExportService{
		dashboard: dashboard,
		expenses:  expenses,
		statuses:  statuses,
		sink:      sink,
		notifier:  notifier,
		clock:     clock,
		logger:    logger,
		spawn:     func(f func()) { go f() },
	}
}

// StartEntriesExport snapshots the entries matching c and exports them asynchronously.
func (s *ReportExportService) StartEntriesExport(ctx context.Context, actor domain.Actor, c report.Criteria) (string, error) {
	entries, names, err := s.dashboard.Entries(ctx, actor, c)
	if err != nil {
		return "", err
	}

	status := s.newStatus(exportTypeEntries, actor.UID, entryFiltersMap(c))
	fileName := fmt.Sprintf("Service_Entries_%s.xlsx", s.clock().Format("20060102_150405"))
	cols := s.entryColumns(names)

	return s.start(ctx, status, func(ctx context.Context) ([]byte, error) {
		return buildWorkbook(ctx, "Service_Entries", cols, entries, s.progress(status))
	}, fileName)
}

// StartExpensesExport snapshots the office expenses matching c and exports them asynchronously.
func (s *ReportExportService) StartExpensesExport(ctx context.Context, actor domain.Actor, c report.ExpenseCriteria) (string, error) {
	expenses, err := s.expenses.Filtered(ctx, actor, c)
	if err != nil {
		return "", err
	}

	status := s.newStatus(exportTypeExpenses, actor.UID, expenseFiltersMap(c))
	fileName := fmt.Sprintf("Office_Expenses_%s.xlsx", s.clock().Format("20060102_150405"))

	return s.start(ctx, status, func(ctx context.Context) ([]byte, error) {
		return buildWorkbook(ctx, "Office_Expenses", expenseColumns, expenses, s.progress(status))
	}, fileName)
}

func (s *ReportExportService) newStatus(kind, userID string, filters map[string]any) *ExportStatus {
	return &ExportStatus{
		Key:     fmt.Sprintf("exports:%s", uuid.NewString()),
		Type:    kind,
		UserID:  userID,
		Filters: filters,
		Created: s.clock(),
	}
}

func (s *ReportExportService) start(ctx context.Context, status *ExportStatus, build func(context.Context) ([]byte, error), fileName string) (string, error) {
	if err := saveExportStatus(ctx, s.statuses, status); err != nil {
		s.logger.Warn("save export status", zap.String("export_id", status.Key), zap.Error(err))
	}

	s.spawn(func() {
		s.run(context.Background(), status, build, fileName)
	})
	return status.Key, nil
}

func (s *ReportExportService) run(ctx context.Context, status *ExportStatus, build func(context.Context) ([]byte, error), fileName string) {
	data, err := build(ctx)
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("build workbook failed: %v", err))
		return
	}

	s.report(ctx, status, 95, "uploading")

	url, err := s.sink.Store(ctx, fileName, data)
	if err != nil {
		s.fail(ctx, status, fmt.Sprintf("save export failed: %v", err))
		return
	}

	status.FileURL = &url
	status.FileName = fileName
	s.report(ctx, status, 100, "ready")
	if s.notifier != nil {
		_ = s.notifier.NotifyExportComplete(ctx, status.UserID, status.Key, url, fileName)
	}
	s.logger.Info("export complete", zap.String("export_id", status.Key), zap.String("type", status.Type))
}

func (s *ReportExportService) fail(ctx context.Context, status *ExportStatus, msg string) {
	s.logger.Error("export failed", zap.String("export_id", status.Key), zap.String("error", msg))
	status.Error = &msg
	status.Progress = 100
	_ = saveExportStatus(ctx, s.statuses, status)
	if s.notifier != nil {
		_ = s.notifier.NotifyExportFailed(ctx, status.UserID, status.Key, msg)
	}
}

func (s *ReportExportService) report(ctx context.Context, status *ExportStatus, progress float64, stage string) {
	status.Progress = progress
	_ = saveExportStatus(ctx, s.statuses, status)
	if s.notifier != nil {
		_ = s.notifier.NotifyExportProgress(ctx, status.UserID, status.Key, progress, stage)
	}
}

// progress maps rows written to a percentage below the upload stage.
func (s *ReportExportService) progress(status *ExportStatus) func(ctx context.Context, done, total int) {
	return func(ctx context.Context, done, total int) {
		p := math.Round(float64(done) / float64(total) * 90)
		s.report(ctx, status, p, "generating")
	}
}

type column[T any] struct {
	Header string
	Value  func(T) any
}

// buildWorkbook writes one sheet with a styled, filterable header row and one row per record.
func buildWorkbook[T any](ctx context.Context, sheet string, cols []column[T], rows []T, progress func(ctx context.Context, done, total int)) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, err
	}

	widths := make([]int, len(cols))
	for i, col := range cols {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, col.Header); err != nil {
			return nil, err
		}
		widths[i] = len(col.Header)
	}

	total := len(rows)
	for r, row := range rows {
		for i, col := range cols {
			v := col.Value(row)
			cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
			if n := len(fmt.Sprint(v)); n > widths[i] {
				widths[i] = n
			}
		}
		if progress != nil && ((r+1)%progressChunk == 0 || r == total-1) {
			progress(ctx, r+1, total)
		}
	}

	lastHeader, _ := excelize.CoordinatesToCellName(len(cols), 1)
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", lastHeader, style); err != nil {
		return nil, err
	}
	if err := f.AutoFilter(sheet, "A1:"+lastHeader, nil); err != nil {
		return nil, err
	}
	for i, w := range widths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, name, name, float64(min(w+2, 50))); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// displayDate renders a stored "YYYY-MM-DD" as DD/MM/YYYY. Unreadable values are passed through.
func displayDate(s string) string {
	t, ok, err := domain.ParseCalendarDate(s)
	if err != nil || !ok {
		return s
	}
	return t.Format("02/01/2006")
}

func (s *ReportExportService) entryColumns(names map[string]string) []column[domain.ServiceEntry] {
	serial := 0
	return []column[domain.ServiceEntry]{
		{"SL No", func(domain.ServiceEntry) any { serial++; return serial }},
		{"Date", func(e domain.ServiceEntry) any { return displayDate(e.Date) }},
		{"Member Name", func(e domain.ServiceEntry) any { return e.MemberName }},
		{"AHID", func(e domain.ServiceEntry) any { return e.AHID }},
		{"Service Type", func(e domain.ServiceEntry) any {
			if name, ok := names[e.ServiceTypeID]; ok {
				return name
			}
			if e.ServiceTypeName != "" {
				return e.ServiceTypeName
			}
			return e.ServiceTypeID
		}},
		{"Package Type", func(e domain.ServiceEntry) any { return e.PackageType }},
		{"Healthcare Provider", func(e domain.ServiceEntry) any { return e.HCPName }},
		{"Total Bill Amount", func(e domain.ServiceEntry) any { return e.TotalBillAmount.InexactFloat64() }},
		{"Discount Given", func(e domain.ServiceEntry) any { return e.DiscountGiven.InexactFloat64() }},
		{"Collection Method", func(e domain.ServiceEntry) any { return e.CollectedBy() }},
		{"Transaction Mode", func(e domain.ServiceEntry) any {
			if e.CollectionDetails == nil {
				return ""
			}
			return e.CollectionDetails.ModeOfTransaction
		}},
		{"Transaction ID", func(e domain.ServiceEntry) any { return e.TransactionID() }},
		{"Referral Amount", func(e domain.ServiceEntry) any { return e.ReferralAmount.InexactFloat64() }},
		{"Referral Status", func(e domain.ServiceEntry) any { return e.ReferralStatus }},
		{"Referral Payment Mode", func(e domain.ServiceEntry) any {
			if e.ReferralPaymentDetails == nil {
				return ""
			}
			return e.ReferralPaymentDetails.PaymentMode
		}},
		{"Referral Transaction ID", func(e domain.ServiceEntry) any {
			if e.ReferralPaymentDetails == nil {
				return ""
			}
			return e.ReferralPaymentDetails.TransactionID
		}},
		{"Payment By Us", func(e domain.ServiceEntry) any {
			if e.PaymentByUs.Enabled {
				return "Yes"
			}
			return "No"
		}},
		{"Payee", func(e domain.ServiceEntry) any { return e.PaymentByUs.WhomToPay }},
		{"Total To Pay", func(e domain.ServiceEntry) any { return e.PaymentByUs.TotalAmount.InexactFloat64() }},
		{"Paid", func(e domain.ServiceEntry) any { return e.PaymentByUs.PaidAmount.InexactFloat64() }},
		{"Balance", func(e domain.ServiceEntry) any { return e.PaymentByUs.BalanceAmount.InexactFloat64() }},
		{"Payment Status", func(e domain.ServiceEntry) any {
			if e.PaymentByUs.Enabled {
				return string(e.PaymentByUs.PaymentStatus)
			}
			if e.PaymentDetails != nil {
				return e.PaymentDetails.PaymentStatus
			}
			return ""
		}},
		{"Navigator", func(e domain.ServiceEntry) any { return e.NavigatorName }},
		{"Created Date", func(e domain.ServiceEntry) any {
			if e.CreatedAt.IsZero() {
				return ""
			}
			return e.CreatedAt.In(s.clock().Location()).Format("02/01/2006")
		}},
	}
}

var expenseColumns = []column[domain.OfficeExpense]{
	{"SL No", func(e domain.OfficeExpense) any { return e.SlNo }},
	{"Date", func(e domain.OfficeExpense) any { return displayDate(e.Date) }},
	{"Category", func(e domain.OfficeExpense) any { return string(e.Category) }},
	{"Details", func(e domain.OfficeExpense) any { return e.Details }},
	{"Paid By", func(e domain.OfficeExpense) any { return e.PaidBy }},
	{"Paid To", func(e domain.OfficeExpense) any { return e.PaidTo }},
	{"Amount", func(e domain.OfficeExpense) any { return e.Amount.InexactFloat64() }},
	{"Mode", func(e domain.OfficeExpense) any { return e.ModeOfTransaction }},
	{"Transaction ID", func(e domain.OfficeExpense) any { return e.TransactionID }},
	{"Created By", func(e domain.OfficeExpense) any { return e.CreatedBy }},
	{"Created Date", func(e domain.OfficeExpense) any {
		if e.CreatedAt.IsZero() {
			return ""
		}
		return e.CreatedAt.Format("02/01/2006")
	}},
}

func dateOrNil(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(domain.DateLayout)
}

func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func entryFiltersMap(c report.Criteria) map[string]any {
	return map[string]any{
		"start_date":       dateOrNil(c.Start),
		"end_date":         dateOrNil(c.End),
		"service_type_ids": c.ServiceTypeIDs,
		"package_type":     stringOrNil(c.PackageType),
		"hcp_name":         stringOrNil(c.HCPName),
		"collected_by":     stringOrNil(c.CollectedBy),
		"referral_status":  stringOrNil(c.ReferralStatus),
		"payment_by_us":    stringOrNil(c.PaymentByUs),
		"payment_status":   stringOrNil(c.PaymentStatus),
		"navigator_id":     stringOrNil(c.NavigatorID),
		"search":           stringOrNil(c.SearchTerm),
	}
}

func expenseFiltersMap(c report.ExpenseCriteria) map[string]any {
	return map[string]any{
		"start_date": dateOrNil(c.Start),
		"end_date":   dateOrNil(c.End),
		"category":   stringOrNil(c.Category),
		"paid_by":    stringOrNil(c.PaidBy),
		"mode":       stringOrNil(c.Mode),
		"search":     stringOrNil(c.SearchTerm),
	}
}
