package service

import (
	"context"
	"fmt"
	"strings"

	"healthops-dashboard/internal/domain"
)

// InvoiceService numbers, totals and stores invoices. Only the author or an admin may change one.
type InvoiceService struct {
	store    InvoiceStore
	counters CounterStore
	clock    Clock
}

func NewInvoiceService(store InvoiceStore, counters CounterStore, clock Clock) *InvoiceService {
	return &InvoiceService{store: store, counters: counters, clock: clock}
}

func (s *InvoiceService) List(ctx context.Context) ([]domain.Invoice, error) {
	return s.store.List(ctx)
}

func (s *InvoiceService) Get(ctx context.Context, id string) (domain.Invoice, error) {
	return s.store.Get(ctx, id)
}

func (s *InvoiceService) Create(ctx context.Context, actor domain.Actor, draft domain.Invoice) (domain.Invoice, error) {
	inv := draft
	if strings.TrimSpace(inv.InvoiceDate) == "" {
		inv.InvoiceDate = s.clock.today()
	}
	inv.Recalculate()
	if err := inv.Validate(); err != nil {
		return domain.Invoice{}, err
	}

	number, err := s.counters.Next(ctx, counterInvoice)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("next invoice number: %w", err)
	}

	now := s.clock()
	inv.ID = ""
	inv.InvoiceNumber = number
	inv.CreatedBy = actor.UID
	inv.CreatedAt = now
	inv.UpdatedAt = now

	if err := s.store.Create(ctx, &inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (s *InvoiceService) Update(ctx context.Context, actor domain.Actor, id string, draft domain.Invoice) (domain.Invoice, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Invoice{}, err
	}
	if !actor.CanModify(existing.CreatedBy) {
		return domain.Invoice{}, domain.ErrForbidden
	}

	inv := draft
	if strings.TrimSpace(inv.InvoiceDate) == "" {
		inv.InvoiceDate = existing.InvoiceDate
	}
	inv.Recalculate()
	if err := inv.Validate(); err != nil {
		return domain.Invoice{}, err
	}

	inv.ID = existing.ID
	inv.InvoiceNumber = existing.InvoiceNumber
	inv.CreatedBy = existing.CreatedBy
	inv.CreatedAt = existing.CreatedAt
	inv.UpdatedAt = s.clock()

	if err := s.store.Update(ctx, inv); err != nil {
		return domain.Invoice{}, err
	}
	return inv, nil
}

func (s *InvoiceService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.CanModify(existing.CreatedBy) {
		return domain.ErrForbidden
	}
	return s.store.Delete(ctx, id)
}
