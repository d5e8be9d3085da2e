package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/report"
	"healthops-dashboard/internal/service"
	"healthops-dashboard/internal/transport/auth"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	adminActor = domain.Actor{UID: "admin-1", Role: domain.RoleAdmin, Name: "Asha"}
	navActor   = domain.Actor{UID: "nav-1", Role: domain.RoleNavigator, Name: "Ravi"}
)

type stubDashboard struct {
	got report.Criteria
}

func (s *stubDashboard) Dashboard(_ context.Context, _ domain.Actor, c report.Criteria) (service.DashboardResult, error) {
	s.got = c
	return service.DashboardResult{
		Entries: []domain.ServiceEntry{{ID: "e1"}},
		Summary: report.Summary{EntryCount: 1, TotalBillAmount: decimal.NewFromInt(1000)},
	}, nil
}

func (s *stubDashboard) DateRange(preset string) report.DateRange {
	end := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	if preset == report.PresetLast7Days {
		return report.DateRange{Start: end.AddDate(0, 0, -7), End: end}
	}
	return report.DateRange{Start: end, End: end}
}

type stubEntries struct {
	err     error
	created domain.ServiceEntry
	draft   domain.PaymentDraft
}

func (s *stubEntries) List(context.Context, domain.Actor) ([]domain.ServiceEntry, error) {
	return nil, s.err
}

func (s *stubEntries) Get(_ context.Context, _ domain.Actor, id string) (domain.ServiceEntry, error) {
	if s.err != nil {
		return domain.ServiceEntry{}, s.err
	}
	return domain.ServiceEntry{ID: id}, nil
}

func (s *stubEntries) Create(_ context.Context, a domain.Actor, d domain.ServiceEntry) (domain.ServiceEntry, error) {
	if s.err != nil {
		return domain.ServiceEntry{}, s.err
	}
	d.ID = "new"
	d.NavigatorID = a.UID
	s.created = d
	return d, nil
}

func (s *stubEntries) Update(_ context.Context, _ domain.Actor, id string, d domain.ServiceEntry) (domain.ServiceEntry, error) {
	d.ID = id
	return d, s.err
}

func (s *stubEntries) Delete(context.Context, domain.Actor, string) error {
	return s.err
}

func (s *stubEntries) SetPaymentByUs(_ context.Context, _ domain.Actor, id string, enabled bool, total decimal.Decimal, payee string) (domain.ServiceEntry, error) {
	return domain.ServiceEntry{ID: id, PaymentByUs: domain.PaymentByUs{Enabled: enabled, TotalAmount: total, WhomToPay: payee}}, s.err
}

func (s *stubEntries) AddPayment(_ context.Context, _ domain.Actor, id string, d domain.PaymentDraft) (domain.ServiceEntry, domain.Payment, error) {
	s.draft = d
	if s.err != nil {
		return domain.ServiceEntry{}, domain.Payment{}, s.err
	}
	return domain.ServiceEntry{ID: id}, domain.Payment{ID: "p1", AmountPaid: d.Amount}, nil
}

func (s *stubEntries) RemovePayment(_ context.Context, _ domain.Actor, id, _ string) (domain.ServiceEntry, error) {
	return domain.ServiceEntry{ID: id}, s.err
}

type stubExporter struct {
	criteria report.Criteria
	err      error
}

func (s *stubExporter) StartEntriesExport(_ context.Context, _ domain.Actor, c report.Criteria) (string, error) {
	s.criteria = c
	return "exports:abc", s.err
}

func (s *stubExporter) StartExpensesExport(context.Context, domain.Actor, report.ExpenseCriteria) (string, error) {
	return "", domain.ErrForbidden
}

type stubExportList struct {
	gotID string
}

func (s *stubExportList) GetExports(context.Context, string) ([]service.ExportView, error) {
	return nil, nil
}

func (s *stubExportList) GetExport(_ context.Context, id, userID string) (service.ExportView, error) {
	s.gotID = id
	if userID != navActor.UID {
		return service.ExportView{}, domain.ErrNotFound
	}
	return service.ExportView{ExportStatus: service.ExportStatus{Key: id, UserID: userID}}, nil
}

type stubUsers struct{}

func (stubUsers) Navigators(_ context.Context, a domain.Actor) ([]domain.User, error) {
	if !a.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return []domain.User{{UID: "nav-1", Name: "Ravi", Role: domain.RoleNavigator, Active: true}}, nil
}

type testServer struct {
	router    http.Handler
	dashboard *stubDashboard
	entries   *stubEntries
	exporter  *stubExporter
	list      *stubExportList
}

func newTestServer(actor *domain.Actor) *testServer {
	ts := &testServer{
		dashboard: &stubDashboard{},
		entries:   &stubEntries{},
		exporter:  &stubExporter{},
		list:      &stubExportList{},
	}
	h := NewHandler(Services{
		Dashboard:  ts.dashboard,
		Entries:    ts.entries,
		Users:      stubUsers{},
		Exports:    ts.exporter,
		ExportList: ts.list,
	}, nil)

	mw := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if actor != nil {
				r = r.WithContext(auth.WithActor(r.Context(), *actor))
			}
			next.ServeHTTP(w, r)
		})
	}
	ts.router = h.InitRouterWithAuth(mw)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, req)

	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec, resp
}

func TestHealthIsPublic(t *testing.T) {
	ts := newTestServer(nil)
	rec, resp := ts.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "success", resp.Status)
}

func TestRequiresActor(t *testing.T) {
	ts := newTestServer(nil)
	rec, resp := ts.do(t, http.MethodGet, "/entries", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, 401, resp.ErrorCode)
}

func TestDashboard_PresetFillsDates(t *testing.T) {
	ts := newTestServer(&navActor)
	rec, resp := ts.do(t, http.MethodPost, "/dashboard", `{"preset":"7days","serviceTypeIds":["S1"],"paymentByUs":"Yes"}`)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 0, resp.ErrorCode)
	require.NotNil(t, ts.dashboard.got.Start)
	assert.Equal(t, "2024-03-08", ts.dashboard.got.Start.Format("2006-01-02"))
	assert.Equal(t, []string{"S1"}, ts.dashboard.got.ServiceTypeIDs)
	assert.Equal(t, "Yes", ts.dashboard.got.PaymentByUs)

	data := resp.Data.(map[string]any)
	summary := data["summary"].(map[string]any)
	assert.Equal(t, float64(1), summary["entryCount"])
}

func TestDashboard_ExplicitDatesWinOverPreset(t *testing.T) {
	ts := newTestServer(&adminActor)
	rec, _ := ts.do(t, http.MethodPost, "/dashboard", `{"preset":"7days","startDate":"2024-01-01","endDate":"2024-01-31"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2024-01-01", ts.dashboard.got.Start.Format("2006-01-02"))
	assert.Equal(t, "2024-01-31", ts.dashboard.got.End.Format("2006-01-02"))
}

func TestDashboard_InvalidCriteria(t *testing.T) {
	ts := newTestServer(&adminActor)

	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"bad date", `{"startDate":"15/03/2024"}`, "startDate"},
		{"bad payment by us", `{"paymentByUs":"maybe"}`, "paymentByUs"},
		{"bad preset", `{"preset":"90days"}`, "preset"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, resp := ts.do(t, http.MethodPost, "/dashboard", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, 400, resp.ErrorCode)
			assert.Equal(t, map[string]any{"field": tc.field}, resp.Data)
		})
	}

	rec, resp := ts.do(t, http.MethodPost, "/dashboard", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid JSON", resp.Message)
}

func TestDateRangeEndpoint(t *testing.T) {
	ts := newTestServer(&navActor)
	rec, resp := ts.do(t, http.MethodGet, "/dashboard/date-range?preset=7days", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]any{"startDate": "2024-03-08", "endDate": "2024-03-15"}, resp.Data)
}

func TestEntries_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
		msg  string
	}{
		{"validation", domain.NewValidationError("memberName", "Please fill in all mandatory fields"), http.StatusBadRequest, "Please fill in all mandatory fields"},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden, "You do not have permission to perform this action"},
		{"not found", domain.ErrNotFound, http.StatusNotFound, "Not found"},
		{"wrapped not found", errors.Join(errors.New("load"), domain.ErrNotFound), http.StatusNotFound, "Not found"},
		{"payment", domain.ErrPaymentNotFound, http.StatusNotFound, "Payment not found"},
		{"internal", errors.New("connection reset"), http.StatusInternalServerError, "internal error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(&navActor)
			ts.entries.err = tc.err
			rec, resp := ts.do(t, http.MethodGet, "/entries/e1", "")
			assert.Equal(t, tc.code, rec.Code)
			assert.Equal(t, tc.msg, resp.Message)
			assert.Equal(t, "error", resp.Status)
		})
	}
}

func TestEntries_CreateAndList(t *testing.T) {
	ts := newTestServer(&navActor)

	rec, resp := ts.do(t, http.MethodPost, "/entries", `{"memberName":"John","totalBillAmount":"1000.50","paymentByUs":"No"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "John", ts.entries.created.MemberName)
	assert.True(t, ts.entries.created.TotalBillAmount.Equal(decimal.RequireFromString("1000.50")))
	assert.False(t, ts.entries.created.PaymentByUs.Enabled)
	assert.Equal(t, "new", resp.Data.(map[string]any)["id"])

	rec, resp = ts.do(t, http.MethodGet, "/entries", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, resp.Data)
}

func TestEntries_LedgerRoutes(t *testing.T) {
	ts := newTestServer(&navActor)

	rec, _ := ts.do(t, http.MethodPut, "/entries/e1/payment-by-us", `{"whomToPay":"Lab"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := ts.do(t, http.MethodPut, "/entries/e1/payment-by-us", `{"enabled":true,"whomToPay":"Lab","totalAmount":500}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ledger := resp.Data.(map[string]any)["paymentByUs"].(map[string]any)
	assert.Equal(t, "Lab", ledger["whomToPay"])

	rec, resp = ts.do(t, http.MethodPost, "/entries/e1/payments",
		`{"paymentDate":"2024-03-15","modeOfTransaction":"UPI","amountPaid":200,"transactionId":"T1"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "2024-03-15", ts.entries.draft.Date)
	assert.Equal(t, "UPI", ts.entries.draft.Mode)
	assert.Equal(t, "T1", ts.entries.draft.TransactionID)
	assert.True(t, ts.entries.draft.Amount.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "p1", resp.Data.(map[string]any)["payment"].(map[string]any)["paymentId"])

	rec, _ = ts.do(t, http.MethodDelete, "/entries/e1/payments/p1", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExports(t *testing.T) {
	ts := newTestServer(&navActor)

	rec, resp := ts.do(t, http.MethodPost, "/export/entries", `{"packageType":"Premium"}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, map[string]any{"export_id": "exports:abc"}, resp.Data)
	assert.Equal(t, "Premium", ts.exporter.criteria.PackageType)

	rec, _ = ts.do(t, http.MethodPost, "/export/expenses", `{}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, resp = ts.do(t, http.MethodGet, "/export/abc", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "exports:abc", ts.list.gotID)
	assert.Equal(t, "exports:abc", resp.Data.(map[string]any)["key"])

	rec, _ = ts.do(t, http.MethodGet, "/export", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestExports_OtherUsersExportIsNotFound(t *testing.T) {
	ts := newTestServer(&adminActor)
	rec, _ := ts.do(t, http.MethodGet, "/export/exports:abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "exports:abc", ts.list.gotID)
}

func TestNavigators_AdminOnly(t *testing.T) {
	rec, resp := newTestServer(&navActor).do(t, http.MethodGet, "/users/navigators", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 403, resp.ErrorCode)

	rec, resp = newTestServer(&adminActor).do(t, http.MethodGet, "/users/navigators", "")
	require.Equal(t, http.StatusOK, rec.Code)
	users, ok := resp.Data.([]any)
	require.True(t, ok)
	require.Len(t, users, 1)
	assert.Equal(t, "nav-1", users[0].(map[string]any)["uid"])
}
