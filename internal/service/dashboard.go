package service

import (
	"context"
	"fmt"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/report"
	"healthops-dashboard/internal/repository"

	"go.uber.org/zap"
)

type DashboardResult struct {
	Entries []domain.ServiceEntry `json:"entries"`
	Summary report.Summary        `json:"summary"`
}

// DashboardService answers dashboard queries from a fresh snapshot of the entries on every call.
type DashboardService struct {
	entries  EntryStore
	services CatalogStore
	clock    Clock
	logger   *zap.Logger
}

func NewDashboardService(entries EntryStore, services CatalogStore, clock Clock, logger *zap.Logger) *DashboardService {
	return &DashboardService{entries: entries, services: services, clock: clock, logger: logger}
}

// Dashboard filters the entries visible to actor and summarizes the result. A navigator only
// ever sees their own entries and cannot filter by navigator.
func (s *DashboardService) Dashboard(ctx context.Context, actor domain.Actor, c report.Criteria) (DashboardResult, error) {
	entries, names, err := s.Entries(ctx, actor, c)
	if err != nil {
		return DashboardResult{}, err
	}

	summary := report.Summarize(entries, names)
	for _, w := range summary.Warnings {
		s.logger.Warn("data integrity",
			zap.String("entry_id", w.EntryID),
			zap.String("field", w.Field),
			zap.String("detail", w.Detail),
		)
	}

	return DashboardResult{Entries: entries, Summary: summary}, nil
}

// Entries returns the filtered entries visible to actor along with the service name catalog.
func (s *DashboardService) Entries(ctx context.Context, actor domain.Actor, c report.Criteria) ([]domain.ServiceEntry, map[string]string, error) {
	f := repository.EntriesFilter{}
	if !actor.IsAdmin() {
		uid := actor.UID
		f.NavigatorID = &uid
		c.NavigatorID = ""
	}

	snapshot, err := s.entries.List(ctx, f)
	if err != nil {
		return nil, nil, fmt.Errorf("load entries: %w", err)
	}
	names, err := s.services.Names(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load services: %w", err)
	}

	return report.Filter(snapshot, c, names), names, nil
}

// DateRange resolves a named preset against today.
func (s *DashboardService) DateRange(preset string) report.DateRange {
	return report.ResolvePreset(preset, s.clock())
}
