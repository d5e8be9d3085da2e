package repository

import (
	"context"
	"database/sql"
	"fmt"

	"healthops-dashboard/internal/domain"

	"github.com/google/uuid"
)

type InvoiceRepository struct {
	db *sql.DB
}

func NewInvoiceRepository(db *sql.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

const invoiceColumns = `id, invoice_number, invoice_date, invoice_to, items, subtotal, grand_total,
	mode_of_payment, created_by, created_at, updated_at`

func (r *InvoiceRepository) List(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+invoiceColumns+" FROM invoices ORDER BY invoice_number DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *InvoiceRepository) Get(ctx context.Context, id string) (domain.Invoice, error) {
	inv, err := scanInvoice(r.db.QueryRowContext(ctx, "SELECT "+invoiceColumns+" FROM invoices WHERE id = $1", id))
	if err != nil {
		return domain.Invoice{}, notFound(err)
	}
	return inv, nil
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *domain.Invoice) error {
	if inv.ID == "" {
		inv.ID = uuid.NewString()
	}
	billTo, items, err := invoiceJSON(*inv)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		inv.ID, inv.InvoiceNumber, inv.InvoiceDate, billTo, items, inv.Subtotal, inv.GrandTotal,
		inv.ModeOfPayment, inv.CreatedBy, inv.CreatedAt, inv.UpdatedAt)
	return err
}

func (r *InvoiceRepository) Update(ctx context.Context, inv domain.Invoice) error {
	billTo, items, err := invoiceJSON(inv)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `UPDATE invoices SET
			invoice_date = $2, invoice_to = $3, items = $4, subtotal = $5, grand_total = $6,
			mode_of_payment = $7, updated_at = $8
		WHERE id = $1`,
		inv.ID, inv.InvoiceDate, billTo, items, inv.Subtotal, inv.GrandTotal, inv.ModeOfPayment, inv.UpdatedAt)
	if err != nil {
		return err
	}
	return expectAffected(res, "invoice "+inv.ID)
}

func (r *InvoiceRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM invoices WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, "invoice "+id)
}

func invoiceJSON(inv domain.Invoice) (billTo, items any, err error) {
	if billTo, err = jsonArg(&inv.InvoiceTo); err != nil {
		return nil, nil, err
	}
	if items, err = jsonArg(&inv.Items); err != nil {
		return nil, nil, err
	}
	return billTo, items, nil
}

func scanInvoice(s rowScanner) (domain.Invoice, error) {
	var (
		inv              domain.Invoice
		billTo, itemsRaw []byte
		mode             sql.NullString
	)
	if err := s.Scan(
		&inv.ID,
		&inv.InvoiceNumber,
		&inv.InvoiceDate,
		&billTo,
		&itemsRaw,
		&inv.Subtotal,
		&inv.GrandTotal,
		&mode,
		&inv.CreatedBy,
		&inv.CreatedAt,
		&inv.UpdatedAt,
	); err != nil {
		return domain.Invoice{}, err
	}
	inv.ModeOfPayment = mode.String

	to, err := jsonValue[domain.BillTo](billTo)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("invoice %s invoice_to: %w", inv.ID, err)
	}
	if to != nil {
		inv.InvoiceTo = *to
	}
	items, err := jsonValue[[]domain.InvoiceItem](itemsRaw)
	if err != nil {
		return domain.Invoice{}, fmt.Errorf("invoice %s items: %w", inv.ID, err)
	}
	if items != nil {
		inv.Items = *items
	}
	return inv, nil
}
