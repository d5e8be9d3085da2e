package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func validEntry() domain.ServiceEntry {
	return domain.ServiceEntry{
		Date:            "2024-03-14",
		MemberName:      "  John Doe ",
		AHID:            "AH-1",
		ServiceTypeID:   "S1",
		PackageType:     domain.PackageBasic,
		HCPName:         "City Hospital",
		TotalBillAmount: decimal.NewFromInt(1000),
		DiscountGiven:   decimal.NewFromInt(100),
		ReferralStatus:  domain.ReferralPending,
		CollectionDetails: &domain.CollectionDetails{
			CollectedBy:       domain.CollectedByUs,
			ModeOfTransaction: domain.ModeCash,
		},
	}
}

func newEntryService(store *fakeEntryStore, pub events.Publisher) *EntryService {
	catalog := newFakeCatalog(map[string]string{"S1": "Lab Test", "S2": "Consultation"})
	return NewEntryService(store, catalog, newFakeCounters(), pub, fixedClock(testNow), zap.NewNop())
}

func TestEntryService_CreateStampsOwnerAndSerial(t *testing.T) {
	store := newFakeEntryStore()
	pub := &fakePublisher{}
	svc := newEntryService(store, pub)

	e, err := svc.Create(context.Background(), navigator, validEntry())
	require.NoError(t, err)

	assert.Equal(t, "entry-1", e.ID)
	assert.Equal(t, int64(1), e.SlNo)
	assert.Equal(t, "John Doe", e.MemberName)
	assert.Equal(t, "Lab Test", e.ServiceTypeName)
	assert.Equal(t, navigator.UID, e.NavigatorID)
	assert.Equal(t, navigator.Name, e.NavigatorName)
	assert.Equal(t, testNow, e.CreatedAt)

	second, err := svc.Create(context.Background(), navigator, validEntry())
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.SlNo)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.EntryCreated, pub.events[0].Type)
	assert.Equal(t, "entry-1", pub.events[0].EntityID)
	assert.Equal(t, navigator.UID, pub.events[0].ActorID)
}

func TestEntryService_CreateRejectsUnknownService(t *testing.T) {
	svc := newEntryService(newFakeEntryStore(), nil)

	draft := validEntry()
	draft.ServiceTypeID = "missing"
	_, err := svc.Create(context.Background(), navigator, draft)

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Equal(t, "Please select a Service Type (*)", err.Error())
}

func TestEntryService_CreateValidationError(t *testing.T) {
	store := newFakeEntryStore()
	svc := newEntryService(store, nil)

	draft := validEntry()
	draft.MemberName = " "
	_, err := svc.Create(context.Background(), navigator, draft)

	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Empty(t, store.entries)
}

func TestEntryService_CreateStampsFormPayments(t *testing.T) {
	svc := newEntryService(newFakeEntryStore(), nil)

	draft := validEntry()
	draft.PaymentByUs = domain.PaymentByUs{
		Enabled:     true,
		WhomToPay:   "Lab",
		TotalAmount: decimal.NewFromInt(500),
		Payments: []domain.Payment{
			{PaymentDate: "2024-03-14", ModeOfTransaction: domain.ModeCash, AmountPaid: decimal.NewFromInt(200)},
		},
	}

	e, err := svc.Create(context.Background(), navigator, draft)
	require.NoError(t, err)

	require.Len(t, e.PaymentByUs.Payments, 1)
	p := e.PaymentByUs.Payments[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, navigator.UID, p.AddedBy)
	assert.Equal(t, testNow, p.AddedAt)
	assert.Equal(t, domain.LedgerPartiallyPaid, e.PaymentByUs.PaymentStatus)
	assert.True(t, e.PaymentByUs.BalanceAmount.Equal(decimal.NewFromInt(300)))
}

func TestEntryService_NavigatorScope(t *testing.T) {
	store := newFakeEntryStore(
		domain.ServiceEntry{ID: "a", NavigatorID: navigator.UID},
		domain.ServiceEntry{ID: "b", NavigatorID: otherNav.UID},
	)
	svc := newEntryService(store, nil)
	ctx := context.Background()

	mine, err := svc.List(ctx, navigator)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "a", mine[0].ID)

	all, err := svc.List(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.Get(ctx, navigator, "b")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Get(ctx, admin, "b")
	assert.NoError(t, err)

	assert.ErrorIs(t, svc.Delete(ctx, navigator, "b"), domain.ErrForbidden)
	assert.Len(t, store.entries, 2)
}

func TestEntryService_UpdateKeepsImmutableFields(t *testing.T) {
	created := testNow.Add(-48 * time.Hour)
	existing := validEntry()
	existing.ID = "e1"
	existing.SlNo = 42
	existing.NavigatorID = navigator.UID
	existing.NavigatorName = navigator.Name
	existing.CreatedAt = created
	existing.PaymentDetails = &domain.PaymentDetails{PaymentStatus: domain.PaymentPending}

	store := newFakeEntryStore(existing)
	pub := &fakePublisher{}
	svc := newEntryService(store, pub)

	draft := validEntry()
	draft.MemberName = "Jane Roe"
	draft.ServiceTypeID = "S2"
	draft.SlNo = 1

	updated, err := svc.Update(context.Background(), admin, "e1", draft)
	require.NoError(t, err)

	assert.Equal(t, "Jane Roe", updated.MemberName)
	assert.Equal(t, "Consultation", updated.ServiceTypeName)
	assert.Equal(t, int64(42), updated.SlNo)
	assert.Equal(t, navigator.UID, updated.NavigatorID)
	assert.Equal(t, created, updated.CreatedAt)
	assert.Equal(t, testNow, updated.UpdatedAt)
	require.NotNil(t, updated.PaymentDetails)
	assert.Equal(t, domain.PaymentPending, updated.PaymentDetails.PaymentStatus)

	assert.Equal(t, "Jane Roe", store.entries["e1"].MemberName)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.EntryUpdated, pub.events[0].Type)
}

func TestEntryService_DeletePublishes(t *testing.T) {
	store := newFakeEntryStore(domain.ServiceEntry{ID: "e1", NavigatorID: navigator.UID})
	pub := &fakePublisher{}
	svc := newEntryService(store, pub)

	require.NoError(t, svc.Delete(context.Background(), navigator, "e1"))
	assert.Empty(t, store.entries)
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.EntryDeleted, pub.events[0].Type)
	assert.Equal(t, "e1", pub.events[0].EntityID)
}

func TestEntryService_PublishFailureDoesNotFailWrite(t *testing.T) {
	store := newFakeEntryStore()
	svc := newEntryService(store, &fakePublisher{err: errBoom})

	_, err := svc.Create(context.Background(), navigator, validEntry())
	require.NoError(t, err)
	assert.Len(t, store.entries, 1)
}

func TestEntryService_LedgerLifecycle(t *testing.T) {
	store := newFakeEntryStore(domain.ServiceEntry{ID: "e1", NavigatorID: navigator.UID})
	svc := newEntryService(store, nil)
	ctx := context.Background()

	e, err := svc.SetPaymentByUs(ctx, navigator, "e1", true, decimal.NewFromInt(1000), "City Lab")
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerOpen, e.PaymentByUs.State())
	assert.Equal(t, domain.LedgerNotStarted, e.PaymentByUs.PaymentStatus)

	e, first, err := svc.AddPayment(ctx, navigator, "e1", domain.PaymentDraft{
		Date: "2024-03-15", Mode: domain.ModeUPI, Amount: decimal.NewFromInt(400), TransactionID: "TXN1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, navigator.UID, first.AddedBy)
	assert.Equal(t, testNow, first.AddedAt)
	assert.Equal(t, domain.LedgerPartiallyPaid, e.PaymentByUs.PaymentStatus)

	_, _, err = svc.AddPayment(ctx, navigator, "e1", domain.PaymentDraft{
		Date: "2024-03-15", Mode: domain.ModeCash, Amount: decimal.NewFromInt(700),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot exceed remaining balance")
	stored := store.entries["e1"]
	assert.Len(t, stored.PaymentByUs.Payments, 1)

	e, _, err = svc.AddPayment(ctx, navigator, "e1", domain.PaymentDraft{
		Date: "2024-03-15", Mode: domain.ModeCash, Amount: decimal.NewFromInt(600),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerCompleted, e.PaymentByUs.PaymentStatus)
	assert.True(t, e.PaymentByUs.BalanceAmount.IsZero())

	_, err = svc.SetPaymentByUs(ctx, navigator, "e1", true, decimal.NewFromInt(900), "City Lab")
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))

	e, err = svc.RemovePayment(ctx, navigator, "e1", first.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerPartiallyPaid, e.PaymentByUs.PaymentStatus)
	assert.True(t, e.PaymentByUs.PaidAmount.Equal(decimal.NewFromInt(600)))

	_, err = svc.RemovePayment(ctx, navigator, "e1", "nope")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	e, err = svc.SetPaymentByUs(ctx, navigator, "e1", false, decimal.Zero, "")
	require.NoError(t, err)
	assert.Equal(t, domain.LedgerDisabled, e.PaymentByUs.State())
	assert.Empty(t, e.PaymentByUs.Payments)
}

func TestEntryService_LedgerForbiddenForOtherNavigator(t *testing.T) {
	store := newFakeEntryStore(domain.ServiceEntry{ID: "e1", NavigatorID: navigator.UID})
	svc := newEntryService(store, nil)

	_, err := svc.SetPaymentByUs(context.Background(), otherNav, "e1", true, decimal.NewFromInt(10), "x")
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, 0, store.updates)
}

func TestEntryService_AddPaymentDisabledLedger(t *testing.T) {
	store := newFakeEntryStore(domain.ServiceEntry{ID: "e1", NavigatorID: navigator.UID})
	svc := newEntryService(store, nil)

	_, _, err := svc.AddPayment(context.Background(), navigator, "e1", domain.PaymentDraft{
		Date: "2024-03-15", Mode: domain.ModeCash, Amount: decimal.NewFromInt(10),
	})
	require.Error(t, err)
	assert.Equal(t, "Payment By Us is not enabled for this entry.", err.Error())
	assert.Equal(t, 0, store.updates)
}

func TestEntryService_ConcurrentPaymentsCannotOverpay(t *testing.T) {
	ledger := domain.PaymentByUs{}
	require.NoError(t, ledger.Enable(decimal.NewFromInt(5000), "City Lab"))
	store := newFakeEntryStore(domain.ServiceEntry{ID: "e1", NavigatorID: navigator.UID, PaymentByUs: ledger})

	// both calls reach the store before either of them writes
	var arrived sync.WaitGroup
	arrived.Add(2)
	store.beforeModify = func() {
		arrived.Done()
		arrived.Wait()
	}
	svc := newEntryService(store, nil)

	var (
		wg    sync.WaitGroup
		added [2]domain.Payment
		errs  [2]error
	)
	for i := 0; i < 2; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, added[i], errs[i] = svc.AddPayment(context.Background(), navigator, "e1", domain.PaymentDraft{
				Date: "2024-03-15", Mode: domain.ModeCash, Amount: decimal.NewFromInt(5000),
			})
		}()
	}
	wg.Wait()

	succeeded := 0
	var winner domain.Payment
	for i, err := range errs {
		if err == nil {
			succeeded++
			winner = added[i]
			continue
		}
		assert.True(t, domain.IsValidationError(err), err)
	}
	require.Equal(t, 1, succeeded)

	stored := store.entries["e1"].PaymentByUs
	require.Len(t, stored.Payments, 1)
	assert.Equal(t, winner.ID, stored.Payments[0].ID)
	assert.True(t, stored.PaidAmount.Equal(decimal.NewFromInt(5000)))
	assert.Equal(t, domain.LedgerCompleted, stored.PaymentStatus)
}

func TestEntryService_UpdateStampsPaymentAuthors(t *testing.T) {
	recorded := testNow.Add(-24 * time.Hour)
	existing := validEntry()
	existing.ID = "e1"
	existing.NavigatorID = navigator.UID
	existing.PaymentByUs = domain.PaymentByUs{
		Enabled:     true,
		WhomToPay:   "Lab",
		TotalAmount: decimal.NewFromInt(500),
		Payments: []domain.Payment{{
			ID: "p1", PaymentDate: "2024-03-14", ModeOfTransaction: domain.ModeCash,
			AmountPaid: decimal.NewFromInt(100), AddedBy: admin.UID, AddedAt: recorded,
		}},
	}
	store := newFakeEntryStore(existing)
	svc := newEntryService(store, nil)

	forged := testNow.Add(-365 * 24 * time.Hour)
	draft := validEntry()
	draft.PaymentByUs = domain.PaymentByUs{
		Enabled:     true,
		WhomToPay:   "Lab",
		TotalAmount: decimal.NewFromInt(500),
		Payments: []domain.Payment{
			{ID: "p1", PaymentDate: "2024-03-14", ModeOfTransaction: domain.ModeCash,
				AmountPaid: decimal.NewFromInt(100), AddedBy: "someone-else", AddedAt: forged},
			{ID: "client-made", PaymentDate: "2024-03-15", ModeOfTransaction: domain.ModeCash,
				AmountPaid: decimal.NewFromInt(50), AddedBy: admin.UID, AddedAt: forged},
		},
	}

	updated, err := svc.Update(context.Background(), navigator, "e1", draft)
	require.NoError(t, err)

	require.Len(t, updated.PaymentByUs.Payments, 2)
	kept, fresh := updated.PaymentByUs.Payments[0], updated.PaymentByUs.Payments[1]
	assert.Equal(t, admin.UID, kept.AddedBy)
	assert.Equal(t, recorded, kept.AddedAt)
	assert.Equal(t, navigator.UID, fresh.AddedBy)
	assert.Equal(t, testNow, fresh.AddedAt)

	assert.Equal(t, navigator.UID, store.entries["e1"].PaymentByUs.Payments[1].AddedBy)
}
