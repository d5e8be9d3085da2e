package rest

import (
	"context"
	"net/http"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/report"
	"healthops-dashboard/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type DashboardService interface {
	Dashboard(ctx context.Context, actor domain.Actor, c report.Criteria) (service.DashboardResult, error)
	DateRange(preset string) report.DateRange
}

type EntryService interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.ServiceEntry, error)
	Get(ctx context.Context, actor domain.Actor, id string) (domain.ServiceEntry, error)
	Create(ctx context.Context, actor domain.Actor, draft domain.ServiceEntry) (domain.ServiceEntry, error)
	Update(ctx context.Context, actor domain.Actor, id string, draft domain.ServiceEntry) (domain.ServiceEntry, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
	SetPaymentByUs(ctx context.Context, actor domain.Actor, id string, enabled bool, total decimal.Decimal, payee string) (domain.ServiceEntry, error)
	AddPayment(ctx context.Context, actor domain.Actor, id string, d domain.PaymentDraft) (domain.ServiceEntry, domain.Payment, error)
	RemovePayment(ctx context.Context, actor domain.Actor, id, paymentID string) (domain.ServiceEntry, error)
}

type ReferenceService interface {
	Services(ctx context.Context) ([]domain.CatalogItem, error)
	CreateService(ctx context.Context, actor domain.Actor, name string) (domain.CatalogItem, error)
	DeactivateService(ctx context.Context, actor domain.Actor, id string) error
	Providers(ctx context.Context) ([]domain.CatalogItem, error)
	CreateProvider(ctx context.Context, actor domain.Actor, name string) (domain.CatalogItem, error)
	DeactivateProvider(ctx context.Context, actor domain.Actor, id string) error
}

type ExpenseService interface {
	List(ctx context.Context, actor domain.Actor) ([]domain.OfficeExpense, error)
	Search(ctx context.Context, actor domain.Actor, c report.ExpenseCriteria) (service.ExpenseSearchResult, error)
	Create(ctx context.Context, actor domain.Actor, draft domain.OfficeExpense) (domain.OfficeExpense, error)
	Update(ctx context.Context, actor domain.Actor, id string, draft domain.OfficeExpense) (domain.OfficeExpense, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type InvoiceService interface {
	List(ctx context.Context) ([]domain.Invoice, error)
	Get(ctx context.Context, id string) (domain.Invoice, error)
	Create(ctx context.Context, actor domain.Actor, draft domain.Invoice) (domain.Invoice, error)
	Update(ctx context.Context, actor domain.Actor, id string, draft domain.Invoice) (domain.Invoice, error)
	Delete(ctx context.Context, actor domain.Actor, id string) error
}

type UserService interface {
	Navigators(ctx context.Context, actor domain.Actor) ([]domain.User, error)
}

type ReportExporter interface {
	StartEntriesExport(ctx context.Context, actor domain.Actor, c report.Criteria) (string, error)
	StartExpensesExport(ctx context.Context, actor domain.Actor, c report.ExpenseCriteria) (string, error)
}

type WebSocketHandler interface {
	HandleWebSocket(w http.ResponseWriter, r *http.Request, userID string)
}

// Services groups the use cases served over HTTP.
type Services struct {
	Dashboard  DashboardService
	Entries    EntryService
	Reference  ReferenceService
	Expenses   ExpenseService
	Invoices   InvoiceService
	Users      UserService
	Exports    ReportExporter
	ExportList ExportListService
	WebSocket  WebSocketHandler
}

type Handler struct {
	dashboard  DashboardService
	entries    EntryService
	reference  ReferenceService
	expenses   ExpenseService
	invoices   InvoiceService
	users      UserService
	exports    ReportExporter
	exportList ExportListService
	ws         WebSocketHandler
	logger     *zap.Logger
}

func NewHandler(s Services, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		dashboard:  s.Dashboard,
		entries:    s.Entries,
		reference:  s.Reference,
		expenses:   s.Expenses,
		invoices:   s.Invoices,
		users:      s.Users,
		exports:    s.Exports,
		exportList: s.ExportList,
		ws:         s.WebSocket,
		logger:     logger,
	}
}

func (h *Handler) InitRouter() *chi.Mux {
	return h.InitRouterWithAuth(nil)
}

// InitRouterWithAuth builds the router. /health stays public; everything else passes through
// authMiddleware when it is set.
func (h *Handler) InitRouterWithAuth(authMiddleware func(http.Handler) http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		Success(w, "ok", nil)
	})

	r.Group(func(r chi.Router) {
		if authMiddleware != nil {
			r.Use(authMiddleware)
		}

		r.Get("/ws", h.serveWebSocket)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			r.Post("/dashboard", h.getDashboard)
			r.Get("/dashboard/date-range", h.getDateRange)

			r.Route("/entries", func(r chi.Router) {
				r.Get("/", h.listEntries)
				r.Post("/", h.createEntry)
				r.Get("/{id}", h.getEntry)
				r.Put("/{id}", h.updateEntry)
				r.Delete("/{id}", h.deleteEntry)
				r.Put("/{id}/payment-by-us", h.setPaymentByUs)
				r.Post("/{id}/payments", h.addPayment)
				r.Delete("/{id}/payments/{paymentID}", h.removePayment)
			})

			r.Route("/services", func(r chi.Router) {
				r.Get("/", h.listServices)
				r.Post("/", h.createService)
				r.Delete("/{id}", h.deactivateService)
			})

			r.Route("/providers", func(r chi.Router) {
				r.Get("/", h.listProviders)
				r.Post("/", h.createProvider)
				r.Delete("/{id}", h.deactivateProvider)
			})

			r.Route("/expenses", func(r chi.Router) {
				r.Get("/", h.listExpenses)
				r.Post("/", h.createExpense)
				r.Post("/search", h.searchExpenses)
				r.Put("/{id}", h.updateExpense)
				r.Delete("/{id}", h.deleteExpense)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Get("/", h.listInvoices)
				r.Post("/", h.createInvoice)
				r.Get("/{id}", h.getInvoice)
				r.Put("/{id}", h.updateInvoice)
				r.Delete("/{id}", h.deleteInvoice)
			})

			r.Get("/users/navigators", h.listNavigators)

			r.Route("/export", func(r chi.Router) {
				r.Get("/", h.listExports)
				r.Get("/{export_id}", h.getExport)
				r.Post("/entries", h.exportEntries)
				r.Post("/expenses", h.exportExpenses)
			})
		})
	})

	return r
}
