package firestoredb

import (
	"context"
	"time"

	"healthops-dashboard/internal/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

type expenseDoc struct {
	SlNo              int64     `firestore:"slNo"`
	Date              string    `firestore:"date"`
	Category          string    `firestore:"expenseCategory"`
	Details           string    `firestore:"details"`
	PaidBy            string    `firestore:"paidBy"`
	PaidTo            string    `firestore:"paidTo"`
	Amount            float64   `firestore:"amount"`
	ModeOfTransaction string    `firestore:"modeOfTransaction"`
	TransactionID     string    `firestore:"transactionId,omitempty"`
	CreatedBy         string    `firestore:"createdBy"`
	CreatedAt         time.Time `firestore:"createdAt"`
	UpdatedAt         time.Time `firestore:"updatedAt"`
}

func toExpenseDoc(e domain.OfficeExpense) expenseDoc {
	return expenseDoc{
		SlNo:              e.SlNo,
		Date:              e.Date,
		Category:          string(e.Category),
		Details:           e.Details,
		PaidBy:            e.PaidBy,
		PaidTo:            e.PaidTo,
		Amount:            money(e.Amount),
		ModeOfTransaction: e.ModeOfTransaction,
		TransactionID:     e.TransactionID,
		CreatedBy:         e.CreatedBy,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func fromExpenseDoc(id string, d expenseDoc) domain.OfficeExpense {
	return domain.OfficeExpense{
		ID:                id,
		SlNo:              d.SlNo,
		Date:              d.Date,
		Category:          domain.ExpenseCategory(d.Category),
		Details:           d.Details,
		PaidBy:            d.PaidBy,
		PaidTo:            d.PaidTo,
		Amount:            fromMoney(d.Amount),
		ModeOfTransaction: d.ModeOfTransaction,
		TransactionID:     d.TransactionID,
		CreatedBy:         d.CreatedBy,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

type ExpenseStore struct {
	client *firestore.Client
}

func NewExpenseStore(client *firestore.Client) *ExpenseStore {
	return &ExpenseStore{client: client}
}

func (s *ExpenseStore) List(ctx context.Context) ([]domain.OfficeExpense, error) {
	q := s.client.Collection(expensesCollection).OrderBy("date", firestore.Desc).OrderBy("slNo", firestore.Desc)
	return collect(ctx, q, decodeExpense)
}

func (s *ExpenseStore) Get(ctx context.Context, id string) (domain.OfficeExpense, error) {
	snap, err := s.client.Collection(expensesCollection).Doc(id).Get(ctx)
	if err != nil {
		return domain.OfficeExpense{}, notFound(err)
	}
	return decodeExpense(snap)
}

func (s *ExpenseStore) Create(ctx context.Context, e *domain.OfficeExpense) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.client.Collection(expensesCollection).Doc(e.ID).Create(ctx, toExpenseDoc(*e))
	return err
}

func (s *ExpenseStore) Update(ctx context.Context, e domain.OfficeExpense) error {
	return replace(ctx, s.client, s.client.Collection(expensesCollection).Doc(e.ID), toExpenseDoc(e))
}

func (s *ExpenseStore) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.client.Collection(expensesCollection).Doc(id))
}

func decodeExpense(snap *firestore.DocumentSnapshot) (domain.OfficeExpense, error) {
	var doc expenseDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.OfficeExpense{}, err
	}
	return fromExpenseDoc(snap.Ref.ID, doc), nil
}
