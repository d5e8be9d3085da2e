package service

import (
	"context"
	"testing"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/report"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func dashboardEntries() []domain.ServiceEntry {
	return []domain.ServiceEntry{
		{ID: "a", Date: "2024-03-14", MemberName: "Anil", ServiceTypeID: "S1", NavigatorID: navigator.UID,
			TotalBillAmount: decimal.NewFromInt(1000), ReferralStatus: domain.ReferralPending},
		{ID: "b", Date: "2024-03-01", MemberName: "Bina", ServiceTypeID: "S2", NavigatorID: otherNav.UID,
			TotalBillAmount: decimal.NewFromInt(500), ReferralStatus: domain.ReferralReceived},
		{ID: "c", Date: "2024-03-15", MemberName: "Chetan", ServiceTypeID: "S1", NavigatorID: navigator.UID,
			TotalBillAmount: decimal.NewFromInt(-20), ReferralStatus: domain.ReferralPending},
	}
}

func newDashboardService(logger *zap.Logger) *DashboardService {
	catalog := newFakeCatalog(map[string]string{"S1": "Lab Test", "S2": "Consultation"})
	return NewDashboardService(newFakeEntryStore(dashboardEntries()...), catalog, fixedClock(testNow), logger)
}

func TestDashboardService_NavigatorSeesOwnEntriesOnly(t *testing.T) {
	svc := newDashboardService(zap.NewNop())

	// a navigator filter naming someone else is ignored for navigators
	res, err := svc.Dashboard(context.Background(), navigator, report.Criteria{NavigatorID: otherNav.UID})
	require.NoError(t, err)

	ids := []string{}
	for _, e := range res.Entries {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
	assert.Equal(t, 2, res.Summary.EntryCount)
}

func TestDashboardService_AdminFiltersByNavigator(t *testing.T) {
	svc := newDashboardService(zap.NewNop())

	res, err := svc.Dashboard(context.Background(), admin, report.Criteria{NavigatorID: otherNav.UID})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "b", res.Entries[0].ID)

	res, err = svc.Dashboard(context.Background(), admin, report.Criteria{})
	require.NoError(t, err)
	assert.Len(t, res.Entries, 3)
}

func TestDashboardService_SearchUsesCatalogNames(t *testing.T) {
	svc := newDashboardService(zap.NewNop())

	res, err := svc.Dashboard(context.Background(), admin, report.Criteria{SearchTerm: "consult"})
	require.NoError(t, err)
	require.Len(t, res.Entries, 1)
	assert.Equal(t, "b", res.Entries[0].ID)
}

func TestDashboardService_LogsIntegrityWarnings(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	svc := newDashboardService(zap.New(core))

	res, err := svc.Dashboard(context.Background(), navigator, report.Criteria{})
	require.NoError(t, err)

	require.NotEmpty(t, res.Summary.Warnings)
	assert.True(t, res.Summary.TotalBillAmount.Equal(decimal.NewFromInt(1000)))

	warned := logs.FilterMessage("data integrity").All()
	require.NotEmpty(t, warned)
	assert.Equal(t, "c", warned[0].ContextMap()["entry_id"])
}

func TestDashboardService_DateRange(t *testing.T) {
	svc := newDashboardService(zap.NewNop())

	r := svc.DateRange(report.PresetLast7Days)
	assert.Equal(t, time.Date(2024, 3, 8, 0, 0, 0, 0, time.UTC), r.Start)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), r.End)

	res, err := svc.Dashboard(context.Background(), admin, r.Apply(report.Criteria{}))
	require.NoError(t, err)
	ids := []string{}
	for _, e := range res.Entries {
		ids = append(ids, e.ID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
}
