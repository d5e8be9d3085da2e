package firestoredb

import (
	"context"
	"time"

	"healthops-dashboard/internal/domain"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

type billToDoc struct {
	Name    string `firestore:"name"`
	Address string `firestore:"address,omitempty"`
	Email   string `firestore:"email,omitempty"`
	Phone   string `firestore:"phone,omitempty"`
}

type invoiceItemDoc struct {
	No          int     `firestore:"no"`
	Description string  `firestore:"description"`
	Qty         float64 `firestore:"qty"`
	Price       float64 `firestore:"price"`
	Subtotal    float64 `firestore:"subtotal"`
}

type invoiceDoc struct {
	InvoiceNumber int64            `firestore:"invoiceNumber"`
	InvoiceDate   string           `firestore:"invoiceDate"`
	InvoiceTo     billToDoc        `firestore:"invoiceTo"`
	Items         []invoiceItemDoc `firestore:"items"`
	Subtotal      float64          `firestore:"subtotal"`
	GrandTotal    float64          `firestore:"grandTotal"`
	ModeOfPayment string           `firestore:"modeOfPayment,omitempty"`
	CreatedBy     string           `firestore:"createdBy"`
	CreatedAt     time.Time        `firestore:"createdAt"`
	UpdatedAt     time.Time        `firestore:"updatedAt"`
}

func toInvoiceDoc(inv domain.Invoice) invoiceDoc {
	doc := invoiceDoc{
		InvoiceNumber: inv.InvoiceNumber,
		InvoiceDate:   inv.InvoiceDate,
		InvoiceTo:     billToDoc(inv.InvoiceTo),
		Subtotal:      money(inv.Subtotal),
		GrandTotal:    money(inv.GrandTotal),
		ModeOfPayment: inv.ModeOfPayment,
		CreatedBy:     inv.CreatedBy,
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
	for _, it := range inv.Items {
		doc.Items = append(doc.Items, invoiceItemDoc{
			No:          it.No,
			Description: it.Description,
			Qty:         money(it.Qty),
			Price:       money(it.Price),
			Subtotal:    money(it.Subtotal),
		})
	}
	return doc
}

func fromInvoiceDoc(id string, d invoiceDoc) domain.Invoice {
	inv := domain.Invoice{
		ID:            id,
		InvoiceNumber: d.InvoiceNumber,
		InvoiceDate:   d.InvoiceDate,
		InvoiceTo:     domain.BillTo(d.InvoiceTo),
		Subtotal:      fromMoney(d.Subtotal),
		GrandTotal:    fromMoney(d.GrandTotal),
		ModeOfPayment: d.ModeOfPayment,
		CreatedBy:     d.CreatedBy,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
	for _, it := range d.Items {
		inv.Items = append(inv.Items, domain.InvoiceItem{
			No:          it.No,
			Description: it.Description,
			Qty:         fromMoney(it.Qty),
			Price:       fromMoney(it.Price),
			Subtotal:    fromMoney(it.Subtotal),
		})
	}
	return inv
}

type InvoiceStore struct {
	client *firestore.Client
}

func NewInvoiceStore(client *firestore.Client) *InvoiceStore {
	return &InvoiceStore{client: client}
}

func (s *InvoiceStore) List(ctx context.Context) ([]domain.Invoice, error) {
	q := s.client.Collection(invoicesCollection).OrderBy("invoiceNumber", firestore.Desc)
	return collect(ctx, q, decodeInvoice)
}

func (s *InvoiceStore) Get(ctx context.Context, id string) (domain.Invoice, error) {
	snap, err := s.client.Collection(invoicesCollection).Doc(id).Get(ctx)
	if err != nil {
		return domain.Invoice{}, notFound(err)
	}
	return decodeInvoice(snap)
}

func (s *InvoiceStore) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	_, err := s.client.Collection(invoicesCollection).Doc(inv.ID).Create(ctx, toInvoiceDoc(*inv))
	return err
}

func (s *InvoiceStore) Update(ctx context.Context, inv domain.Invoice) error {
	return replace(ctx, s.client, s.client.Collection(invoicesCollection).Doc(inv.ID), toInvoiceDoc(inv))
}

func (s *InvoiceStore) Delete(ctx context.Context, id string) error {
	return remove(ctx, s.client.Collection(invoicesCollection).Doc(id))
}

func decodeInvoice(snap *firestore.DocumentSnapshot) (domain.Invoice, error) {
	var doc invoiceDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.Invoice{}, err
	}
	return fromInvoiceDoc(snap.Ref.ID, doc), nil
}
