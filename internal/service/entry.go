package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/events"
	"healthops-dashboard/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// EntryService owns the service entry lifecycle and the Payment By Us ledger operations.
type EntryService struct {
	entries  EntryStore
	services CatalogStore
	counters CounterStore
	events   events.Publisher
	clock    Clock
	logger   *zap.Logger
}

func NewEntryService(
	entries EntryStore,
	services CatalogStore,
	counters CounterStore,
	publisher events.Publisher,
	clock Clock,
	logger *zap.Logger,
) *EntryService {
	return &EntryService{
		entries:  entries,
		services: services,
		counters: counters,
		events:   publisher,
		clock:    clock,
		logger:   logger,
	}
}

func (s *EntryService) List(ctx context.Context, actor domain.Actor) ([]domain.ServiceEntry, error) {
	f := repository.EntriesFilter{}
	if !actor.IsAdmin() {
		uid := actor.UID
		f.NavigatorID = &uid
	}
	return s.entries.List(ctx, f)
}

func (s *EntryService) Get(ctx context.Context, actor domain.Actor, id string) (domain.ServiceEntry, error) {
	e, err := s.entries.Get(ctx, id)
	if err != nil {
		return domain.ServiceEntry{}, err
	}
	if !actor.CanModify(e.NavigatorID) {
		return domain.ServiceEntry{}, domain.ErrForbidden
	}
	return e, nil
}

// Create stores a new entry owned by actor.
func (s *EntryService) Create(ctx context.Context, actor domain.Actor, draft domain.ServiceEntry) (domain.ServiceEntry, error) {
	e := draft
	if err := s.prepare(ctx, &e); err != nil {
		return domain.ServiceEntry{}, err
	}

	slNo, err := s.counters.Next(ctx, counterServiceEntry)
	if err != nil {
		return domain.ServiceEntry{}, fmt.Errorf("next serial number: %w", err)
	}

	now := s.clock()
	e.ID = ""
	e.SlNo = slNo
	e.NavigatorID = actor.UID
	e.NavigatorName = actor.Name
	e.CreatedAt = now
	e.UpdatedAt = now
	stampPayments(&e.PaymentByUs, nil, actor.UID, now)

	if err := s.entries.Create(ctx, &e); err != nil {
		return domain.ServiceEntry{}, err
	}
	s.publish(ctx, events.EntryCreated, e.ID, actor)
	return e, nil
}

// Update replaces the editable fields of an entry. Serial number, owner and creation time are kept.
func (s *EntryService) Update(ctx context.Context, actor domain.Actor, id string, draft domain.ServiceEntry) (domain.ServiceEntry, error) {
	e := draft
	if err := s.prepare(ctx, &e); err != nil {
		return domain.ServiceEntry{}, err
	}

	return s.mutate(ctx, actor, id, func(existing *domain.ServiceEntry) error {
		next := e
		next.ID = existing.ID
		next.SlNo = existing.SlNo
		next.NavigatorID = existing.NavigatorID
		next.NavigatorName = existing.NavigatorName
		next.CreatedAt = existing.CreatedAt
		next.PaymentDetails = existing.PaymentDetails
		next.AmountPaid = existing.AmountPaid
		next.PaymentByUs.Payments = slices.Clone(next.PaymentByUs.Payments)
		stampPayments(&next.PaymentByUs, existing.PaymentByUs.Payments, actor.UID, s.clock())
		*existing = next
		return nil
	})
}

func (s *EntryService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if _, err := s.Get(ctx, actor, id); err != nil {
		return err
	}
	if err := s.entries.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.EntryDeleted, id, actor)
	return nil
}

// SetPaymentByUs switches the ledger on or off, or changes payee and total of an enabled one.
func (s *EntryService) SetPaymentByUs(ctx context.Context, actor domain.Actor, id string, enabled bool, total decimal.Decimal, payee string) (domain.ServiceEntry, error) {
	return s.mutate(ctx, actor, id, func(e *domain.ServiceEntry) error {
		switch {
		case !enabled:
			e.PaymentByUs.Disable()
			return nil
		case e.PaymentByUs.Enabled:
			return e.PaymentByUs.Retarget(total, payee)
		default:
			return e.PaymentByUs.Enable(total, payee)
		}
	})
}

func (s *EntryService) AddPayment(ctx context.Context, actor domain.Actor, id string, d domain.PaymentDraft) (domain.ServiceEntry, domain.Payment, error) {
	var added domain.Payment
	e, err := s.mutate(ctx, actor, id, func(e *domain.ServiceEntry) error {
		p, err := e.PaymentByUs.AddPayment(d, actor.UID, s.clock())
		added = p
		return err
	})
	if err != nil {
		return domain.ServiceEntry{}, domain.Payment{}, err
	}
	return e, added, nil
}

func (s *EntryService) RemovePayment(ctx context.Context, actor domain.Actor, id, paymentID string) (domain.ServiceEntry, error) {
	return s.mutate(ctx, actor, id, func(e *domain.ServiceEntry) error {
		return e.PaymentByUs.RemovePayment(paymentID)
	})
}

// mutate applies fn to the stored entry under the store's write lock, so concurrent ledger
// operations on one entry never work from the same snapshot. Nothing is written when fn fails.
func (s *EntryService) mutate(ctx context.Context, actor domain.Actor, id string, fn func(e *domain.ServiceEntry) error) (domain.ServiceEntry, error) {
	e, err := s.entries.Modify(ctx, id, func(e *domain.ServiceEntry) error {
		if !actor.CanModify(e.NavigatorID) {
			return domain.ErrForbidden
		}
		if err := fn(e); err != nil {
			return err
		}
		e.UpdatedAt = s.clock()
		return nil
	})
	if err != nil {
		return domain.ServiceEntry{}, err
	}
	s.publish(ctx, events.EntryUpdated, e.ID, actor)
	return e, nil
}

// prepare normalizes and validates a submitted entry and resolves its service name.
func (s *EntryService) prepare(ctx context.Context, e *domain.ServiceEntry) error {
	e.Normalize()
	if err := e.Validate(); err != nil {
		return err
	}

	names, err := s.services.Names(ctx)
	if err != nil {
		return fmt.Errorf("load services: %w", err)
	}
	name, ok := names[e.ServiceTypeID]
	if !ok {
		return domain.NewValidationError("serviceTypeId", "Please select a Service Type (*)")
	}
	e.ServiceTypeName = name
	return nil
}

// stampPayments gives payments submitted with the entry form an id and author. Payments already
// on the stored ledger keep their recorded author and time. Any other payment is attributed to
// actorID at the given time, whatever the form sent.
func stampPayments(p *domain.PaymentByUs, stored []domain.Payment, actorID string, at time.Time) {
	for i := range p.Payments {
		pay := &p.Payments[i]
		if strings.TrimSpace(pay.ID) != "" {
			if idx := slices.IndexFunc(stored, func(sp domain.Payment) bool { return sp.ID == pay.ID }); idx >= 0 {
				pay.AddedBy = stored[idx].AddedBy
				pay.AddedAt = stored[idx].AddedAt
				continue
			}
		} else {
			pay.ID = uuid.NewString()
		}
		pay.AddedBy = actorID
		pay.AddedAt = at
	}
}

func (s *EntryService) publish(ctx context.Context, t events.Type, entryID string, actor domain.Actor) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(ctx, events.Event{Type: t, EntityID: entryID, ActorID: actor.UID, At: s.clock()})
	if err != nil {
		s.logger.Warn("publish entry event", zap.String("type", string(t)), zap.String("entry_id", entryID), zap.Error(err))
	}
}
