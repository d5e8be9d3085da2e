package firestoredb

import (
	"context"
	"strings"
	"time"

	"healthops-dashboard/internal/domain"
	"healthops-dashboard/internal/repository"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

type collectionDoc struct {
	CollectedBy       string `firestore:"collectedBy"`
	ModeOfTransaction string `firestore:"modeOfTransaction,omitempty"`
	TransactionID     string `firestore:"transactionId,omitempty"`
}

type referralPaymentDoc struct {
	PaymentMode   string     `firestore:"paymentMode"`
	TransactionID string     `firestore:"transactionId,omitempty"`
	PaidDate      *time.Time `firestore:"paidDate,omitempty"`
}

type paymentDoc struct {
	PaymentID         string    `firestore:"paymentId"`
	PaymentDate       string    `firestore:"paymentDate"`
	ModeOfTransaction string    `firestore:"modeOfTransaction"`
	AmountPaid        float64   `firestore:"amountPaid"`
	TransactionID     string    `firestore:"transactionId,omitempty"`
	AddedAt           time.Time `firestore:"addedAt"`
	AddedBy           string    `firestore:"addedBy"`
}

type paymentByUsDoc struct {
	Enabled       bool         `firestore:"enabled"`
	WhomToPay     string       `firestore:"whomToPay,omitempty"`
	TotalAmount   float64      `firestore:"totalAmount"`
	PaidAmount    float64      `firestore:"paidAmount"`
	BalanceAmount float64      `firestore:"balanceAmount"`
	PaymentStatus string       `firestore:"paymentStatus,omitempty"`
	Payments      []paymentDoc `firestore:"payments,omitempty"`
}

type legacyPaymentDoc struct {
	ModeOfTransfer string  `firestore:"modeOfTransfer,omitempty"`
	PaidTo         string  `firestore:"paidTo,omitempty"`
	AmountPaid     float64 `firestore:"amountPaid"`
	PaymentStatus  string  `firestore:"paymentStatus,omitempty"`
}

// entryDoc is the stored shape of a service entry. PaymentByUs is read loosely because older
// documents hold the string "Yes"/"No" there.
type entryDoc struct {
	SlNo                   int64               `firestore:"slNo"`
	Date                   string              `firestore:"date"`
	MemberName             string              `firestore:"memberName"`
	AHID                   string              `firestore:"ahid"`
	ServiceTypeID          string              `firestore:"serviceTypeId"`
	ServiceTypeName        string              `firestore:"serviceTypeName"`
	PackageType            string              `firestore:"packageType"`
	HCPName                string              `firestore:"hcpName"`
	TotalBillAmount        float64             `firestore:"totalBillAmount"`
	DiscountGiven          float64             `firestore:"discountGiven"`
	ReferralAmount         float64             `firestore:"referralAmount"`
	ReferralStatus         string              `firestore:"referralStatus"`
	CollectionDetails      *collectionDoc      `firestore:"collectionDetails"`
	ReferralPaymentDetails *referralPaymentDoc `firestore:"referralPaymentDetails"`
	PaymentByUs            any                 `firestore:"paymentByUs"`
	PaymentDetails         *legacyPaymentDoc   `firestore:"paymentDetails,omitempty"`
	AmountPaid             *float64            `firestore:"amountPaid,omitempty"`
	NavigatorID            string              `firestore:"navigatorId"`
	NavigatorName          string              `firestore:"navigatorName,omitempty"`
	CreatedAt              time.Time           `firestore:"createdAt"`
	UpdatedAt              time.Time           `firestore:"updatedAt"`
}

func toEntryDoc(e domain.ServiceEntry) entryDoc {
	doc := entryDoc{
		SlNo:            e.SlNo,
		Date:            e.Date,
		MemberName:      e.MemberName,
		AHID:            e.AHID,
		ServiceTypeID:   e.ServiceTypeID,
		ServiceTypeName: e.ServiceTypeName,
		PackageType:     e.PackageType,
		HCPName:         e.HCPName,
		TotalBillAmount: money(e.TotalBillAmount),
		DiscountGiven:   money(e.DiscountGiven),
		ReferralAmount:  money(e.ReferralAmount),
		ReferralStatus:  e.ReferralStatus,
		NavigatorID:     e.NavigatorID,
		NavigatorName:   e.NavigatorName,
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
	if cd := e.CollectionDetails; cd != nil {
		doc.CollectionDetails = &collectionDoc{
			CollectedBy:       cd.CollectedBy,
			ModeOfTransaction: cd.ModeOfTransaction,
			TransactionID:     cd.TransactionID,
		}
	}
	if rp := e.ReferralPaymentDetails; rp != nil {
		doc.ReferralPaymentDetails = &referralPaymentDoc{
			PaymentMode:   rp.PaymentMode,
			TransactionID: rp.TransactionID,
			PaidDate:      rp.PaidDate,
		}
	}

	p := e.PaymentByUs
	ledger := paymentByUsDoc{
		Enabled:       p.Enabled,
		WhomToPay:     p.WhomToPay,
		TotalAmount:   money(p.TotalAmount),
		PaidAmount:    money(p.PaidAmount),
		BalanceAmount: money(p.BalanceAmount),
		PaymentStatus: string(p.PaymentStatus),
	}
	for _, pay := range p.Payments {
		ledger.Payments = append(ledger.Payments, paymentDoc{
			PaymentID:         pay.ID,
			PaymentDate:       pay.PaymentDate,
			ModeOfTransaction: pay.ModeOfTransaction,
			AmountPaid:        money(pay.AmountPaid),
			TransactionID:     pay.TransactionID,
			AddedAt:           pay.AddedAt,
			AddedBy:           pay.AddedBy,
		})
	}
	doc.PaymentByUs = ledger

	if pd := e.PaymentDetails; pd != nil {
		doc.PaymentDetails = &legacyPaymentDoc{
			ModeOfTransfer: pd.ModeOfTransfer,
			PaidTo:         pd.PaidTo,
			AmountPaid:     money(pd.AmountPaid),
			PaymentStatus:  pd.PaymentStatus,
		}
	}
	if e.AmountPaid.Valid {
		v := money(e.AmountPaid.Decimal)
		doc.AmountPaid = &v
	}
	return doc
}

func fromEntryDoc(id string, doc entryDoc) domain.ServiceEntry {
	e := domain.ServiceEntry{
		ID:              id,
		SlNo:            doc.SlNo,
		Date:            doc.Date,
		MemberName:      doc.MemberName,
		AHID:            doc.AHID,
		ServiceTypeID:   doc.ServiceTypeID,
		ServiceTypeName: doc.ServiceTypeName,
		PackageType:     doc.PackageType,
		HCPName:         doc.HCPName,
		TotalBillAmount: fromMoney(doc.TotalBillAmount),
		DiscountGiven:   fromMoney(doc.DiscountGiven),
		ReferralAmount:  fromMoney(doc.ReferralAmount),
		ReferralStatus:  doc.ReferralStatus,
		PaymentByUs:     ledgerFromAny(doc.PaymentByUs),
		NavigatorID:     doc.NavigatorID,
		NavigatorName:   doc.NavigatorName,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
	if cd := doc.CollectionDetails; cd != nil {
		e.CollectionDetails = &domain.CollectionDetails{
			CollectedBy:       cd.CollectedBy,
			ModeOfTransaction: cd.ModeOfTransaction,
			TransactionID:     cd.TransactionID,
		}
	}
	if rp := doc.ReferralPaymentDetails; rp != nil {
		e.ReferralPaymentDetails = &domain.ReferralPaymentDetails{
			PaymentMode:   rp.PaymentMode,
			TransactionID: rp.TransactionID,
			PaidDate:      rp.PaidDate,
		}
	}
	if pd := doc.PaymentDetails; pd != nil {
		e.PaymentDetails = &domain.PaymentDetails{
			ModeOfTransfer: pd.ModeOfTransfer,
			PaidTo:         pd.PaidTo,
			AmountPaid:     fromMoney(pd.AmountPaid),
			PaymentStatus:  pd.PaymentStatus,
		}
	}
	if doc.AmountPaid != nil {
		e.AmountPaid.Decimal = fromMoney(*doc.AmountPaid)
		e.AmountPaid.Valid = true
	}
	return e
}

// ledgerFromAny decodes the paymentByUs field, which is a map in current documents, a
// paymentByUsDoc when built in memory, and "Yes"/"No" in documents from before the ledger.
func ledgerFromAny(v any) domain.PaymentByUs {
	switch t := v.(type) {
	case string:
		return domain.PaymentByUs{Enabled: strings.EqualFold(t, "Yes")}
	case paymentByUsDoc:
		return ledgerFromDoc(t)
	case map[string]any:
		return ledgerFromDoc(ledgerDocFromMap(t))
	}
	return domain.PaymentByUs{}
}

func ledgerFromDoc(d paymentByUsDoc) domain.PaymentByUs {
	p := domain.PaymentByUs{
		Enabled:       d.Enabled,
		WhomToPay:     d.WhomToPay,
		TotalAmount:   fromMoney(d.TotalAmount),
		PaidAmount:    fromMoney(d.PaidAmount),
		BalanceAmount: fromMoney(d.BalanceAmount),
		PaymentStatus: domain.LedgerStatus(d.PaymentStatus),
	}
	for _, pay := range d.Payments {
		p.Payments = append(p.Payments, domain.Payment{
			ID:                pay.PaymentID,
			PaymentDate:       pay.PaymentDate,
			ModeOfTransaction: pay.ModeOfTransaction,
			AmountPaid:        fromMoney(pay.AmountPaid),
			TransactionID:     pay.TransactionID,
			AddedAt:           pay.AddedAt,
			AddedBy:           pay.AddedBy,
		})
	}
	if p.Enabled && !p.PaymentStatus.IsValid() {
		p.PaymentStatus = domain.LedgerStatusFor(p.PaidAmount, p.TotalAmount)
	}
	return p
}

func ledgerDocFromMap(m map[string]any) paymentByUsDoc {
	d := paymentByUsDoc{
		Enabled:       asBool(m["enabled"]),
		WhomToPay:     asString(m["whomToPay"]),
		TotalAmount:   asFloat(m["totalAmount"]),
		PaidAmount:    asFloat(m["paidAmount"]),
		BalanceAmount: asFloat(m["balanceAmount"]),
		PaymentStatus: asString(m["paymentStatus"]),
	}
	payments, _ := m["payments"].([]any)
	for _, raw := range payments {
		pm, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		addedAt, _ := pm["addedAt"].(time.Time)
		d.Payments = append(d.Payments, paymentDoc{
			PaymentID:         asString(pm["paymentId"]),
			PaymentDate:       asString(pm["paymentDate"]),
			ModeOfTransaction: asString(pm["modeOfTransaction"]),
			AmountPaid:        asFloat(pm["amountPaid"]),
			TransactionID:     asString(pm["transactionId"]),
			AddedAt:           addedAt,
			AddedBy:           asString(pm["addedBy"]),
		})
	}
	return d
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}

// asFloat accepts both numeric kinds Firestore returns.
func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

type EntryStore struct {
	client *firestore.Client
}

func NewEntryStore(client *firestore.Client) *EntryStore {
	return &EntryStore{client: client}
}

func (s *EntryStore) List(ctx context.Context, f repository.EntriesFilter) ([]domain.ServiceEntry, error) {
	q := s.client.Collection(entriesCollection).Query
	if f.NavigatorID != nil && *f.NavigatorID != "" {
		q = q.Where("navigatorId", "==", *f.NavigatorID)
	}
	q = q.OrderBy("createdAt", firestore.Desc)
	return collect(ctx, q, decodeEntry)
}

func (s *EntryStore) Get(ctx context.Context, id string) (domain.ServiceEntry, error) {
	snap, err := s.client.Collection(entriesCollection).Doc(id).Get(ctx)
	if err != nil {
		return domain.ServiceEntry{}, notFound(err)
	}
	return decodeEntry(snap)
}

func (s *EntryStore) Create(ctx context.Context, e *domain.ServiceEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	_, err := s.client.Collection(entriesCollection).Doc(e.ID).Create(ctx, toEntryDoc(*e))
	return err
}

// Modify applies fn to the stored entry inside a transaction. Firestore retries the transaction
// when the document changes underneath it, so fn always sees the latest version.
func (s *EntryStore) Modify(ctx context.Context, id string, fn func(e *domain.ServiceEntry) error) (domain.ServiceEntry, error) {
	ref := s.client.Collection(entriesCollection).Doc(id)

	var out domain.ServiceEntry
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return notFound(err)
		}
		e, err := decodeEntry(snap)
		if err != nil {
			return err
		}
		if err := fn(&e); err != nil {
			return err
		}
		out = e
		return tx.Set(ref, toEntryDoc(e))
	})
	if err != nil {
		return domain.ServiceEntry{}, err
	}
	return out, nil
}

func (s *EntryStore) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.client.Collection(entriesCollection).Doc(id))
}

func decodeEntry(snap *firestore.DocumentSnapshot) (domain.ServiceEntry, error) {
	var doc entryDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.ServiceEntry{}, err
	}
	return fromEntryDoc(snap.Ref.ID, doc), nil
}
