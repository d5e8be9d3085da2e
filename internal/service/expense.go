package service

import (
	"context"
	"fmt"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/report"

	"go.uber.org/zap"
)

type ExpenseSearchResult struct {
	Expenses []domain.OfficeExpense `json:"expenses"`
	Summary  report.ExpenseSummary  `json:"summary"`
}

// ExpenseService manages office expenses. Every operation is restricted to admins.
type ExpenseService struct {
	store    ExpenseStore
	counters CounterStore
	clock    Clock
	logger   *zap.Logger
}

func NewExpenseService(store ExpenseStore, counters CounterStore, clock Clock, logger *zap.Logger) *ExpenseService {
	return &ExpenseService{store: store, counters: counters, clock: clock, logger: logger}
}

func (s *ExpenseService) List(ctx context.Context, actor domain.Actor) ([]domain.OfficeExpense, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.store.List(ctx)
}

// Search filters the expenses and summarizes the matches. "This month" is today's month.
func (s *ExpenseService) Search(ctx context.Context, actor domain.Actor, c report.ExpenseCriteria) (ExpenseSearchResult, error) {
	expenses, err := s.Filtered(ctx, actor, c)
	if err != nil {
		return ExpenseSearchResult{}, err
	}

	summary := report.SummarizeExpenses(expenses, s.clock())
	for _, w := range summary.Warnings {
		s.logger.Warn("data integrity", zap.String("expense_id", w.EntryID), zap.String("field", w.Field), zap.String("detail", w.Detail))
	}
	return ExpenseSearchResult{Expenses: expenses, Summary: summary}, nil
}

func (s *ExpenseService) Filtered(ctx context.Context, actor domain.Actor, c report.ExpenseCriteria) ([]domain.OfficeExpense, error) {
	all, err := s.List(ctx, actor)
	if err != nil {
		return nil, err
	}
	return report.FilterExpenses(all, c), nil
}

func (s *ExpenseService) Create(ctx context.Context, actor domain.Actor, draft domain.OfficeExpense) (domain.OfficeExpense, error) {
	if !actor.IsAdmin() {
		return domain.OfficeExpense{}, domain.ErrForbidden
	}

	e := draft
	e.Normalize()
	if err := e.Validate(); err != nil {
		return domain.OfficeExpense{}, err
	}

	slNo, err := s.counters.Next(ctx, counterOfficeExpense)
	if err != nil {
		return domain.OfficeExpense{}, fmt.Errorf("next expense number: %w", err)
	}

	now := s.clock()
	e.ID = ""
	e.SlNo = slNo
	e.CreatedBy = actor.UID
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.store.Create(ctx, &e); err != nil {
		return domain.OfficeExpense{}, err
	}
	return e, nil
}

func (s *ExpenseService) Update(ctx context.Context, actor domain.Actor, id string, draft domain.OfficeExpense) (domain.OfficeExpense, error) {
	if !actor.IsAdmin() {
		return domain.OfficeExpense{}, domain.ErrForbidden
	}
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.OfficeExpense{}, err
	}

	e := draft
	e.Normalize()
	if err := e.Validate(); err != nil {
		return domain.OfficeExpense{}, err
	}

	e.ID = existing.ID
	e.SlNo = existing.SlNo
	e.CreatedBy = existing.CreatedBy
	e.CreatedAt = existing.CreatedAt
	e.UpdatedAt = s.clock()

	if err := s.store.Update(ctx, e); err != nil {
		return domain.OfficeExpense{}, err
	}
	return e, nil
}

func (s *ExpenseService) Delete(ctx context.Context, actor domain.Actor, id string) error {
	if !actor.IsAdmin() {
		return domain.ErrForbidden
	}
	return s.store.Delete(ctx, id)
}
