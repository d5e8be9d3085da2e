package service

import (
	"context"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/repository"
)

// Counter names. Each sequence is independent.
const (
	counterServiceEntry  = "serviceEntry"
	counterOfficeExpense = "officeExpense"
	counterInvoice       = "invoice"
)

type EntryStore interface {
	List(ctx context.Context, f repository.EntriesFilter) ([]domain.ServiceEntry, error)
	Get(ctx context.Context, id string) (domain.ServiceEntry, error)
	Create(ctx context.Context, e *domain.ServiceEntry) error
	// Modify applies fn to the stored entry and saves it atomically. Concurrent calls for the same
	// entry are serialized. Nothing is written when fn fails.
	Modify(ctx context.Context, id string, fn func(e *domain.ServiceEntry) error) (domain.ServiceEntry, error)
	Delete(ctx context.Context, id string) error
}

type CatalogStore interface {
	ListActive(ctx context.Context) ([]domain.CatalogItem, error)
	Names(ctx context.Context) (map[string]string, error)
	Create(ctx context.Context, name string) (domain.CatalogItem, error)
	Deactivate(ctx context.Context, id string) error
}

type CounterStore interface {
	Next(ctx context.Context, name string) (int64, error)
}

type ExpenseStore interface {
	List(ctx context.Context) ([]domain.OfficeExpense, error)
	Get(ctx context.Context, id string) (domain.OfficeExpense, error)
	Create(ctx context.Context, e *domain.OfficeExpense) error
	Update(ctx context.Context, e domain.OfficeExpense) error
	Delete(ctx context.Context, id string) error
}

type InvoiceStore interface {
	List(ctx context.Context) ([]domain.Invoice, error)
	Get(ctx context.Context, id string) (domain.Invoice, error)
	Create(ctx context.Context, inv *domain.Invoice) error
	Update(ctx context.Context, inv domain.Invoice) error
	Delete(ctx context.Context, id string) error
}

// Clock returns the current time in the business time zone. Calendar dates ("today", "this
// month") are taken from it.
type Clock func() time.Time

func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = time.UTC
	}
	return func() time.Time { return time.Now().In(loc) }
}

func (c Clock) today() string {
	return c().Format(domain.DateLayout)
}
