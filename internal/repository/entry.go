package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"healthops-dashboard/internal/domain"

	"github.com/google/uuid"
)

type EntriesFilter struct {
	// NavigatorID limits the result to one navigator's entries.
	NavigatorID *string
}

type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, sl_no, service_date, member_name, ahid, service_type_id, service_type_name,
	package_type, hcp_name, total_bill_amount, discount_given, referral_amount, referral_status,
	collection_details, referral_payment_details, payment_by_us, payment_details, amount_paid,
	navigator_id, navigator_name, created_at, updated_at`

func (r *EntryRepository) List(ctx context.Context, f EntriesFilter) ([]domain.ServiceEntry, error) {
	where := []string{"1=1"}
	args := []any{}
	i := 1

	if f.NavigatorID != nil && *f.NavigatorID != "" {
		where = append(where, fmt.Sprintf("navigator_id = $%d", i))
		args = append(args, *f.NavigatorID)
		i++
	}

	query := "SELECT " + entryColumns + " FROM service_entries WHERE " + strings.Join(where, " AND ") +
		" ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ServiceEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *EntryRepository) Get(ctx context.Context, id string) (domain.ServiceEntry, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM service_entries WHERE id = $1", id)
	e, err := scanEntry(row)
	if err != nil {
		return domain.ServiceEntry{}, notFound(err)
	}
	return e, nil
}

func (r *EntryRepository) Create(ctx context.Context, e *domain.ServiceEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	args, err := entryArgs(*e)
	if err != nil {
		return err
	}

	query := `INSERT INTO service_entries (` + entryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)`
	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// Modify loads the entry with its row locked, applies fn and writes the result in the same
// transaction. Nothing is written when fn fails.
func (r *EntryRepository) Modify(ctx context.Context, id string, fn func(e *domain.ServiceEntry) error) (domain.ServiceEntry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.ServiceEntry{}, err
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM service_entries WHERE id = $1 FOR UPDATE", id)
	e, err := scanEntry(row)
	if err != nil {
		return domain.ServiceEntry{}, notFound(err)
	}
	if err := fn(&e); err != nil {
		return domain.ServiceEntry{}, err
	}
	if err := updateEntry(ctx, tx, e); err != nil {
		return domain.ServiceEntry{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.ServiceEntry{}, err
	}
	return e, nil
}

// updateEntry rewrites every mutable column. sl_no and created_at are kept.
func updateEntry(ctx context.Context, tx *sql.Tx, e domain.ServiceEntry) error {
	args, err := entryArgs(e)
	if err != nil {
		return err
	}
	// drop sl_no and created_at, keeping id as $1
	args = append(append([]any{args[0]}, args[2:20]...), args[21])

	query := `UPDATE service_entries SET
			service_date = $2, member_name = $3, ahid = $4, service_type_id = $5, service_type_name = $6,
			package_type = $7, hcp_name = $8, total_bill_amount = $9, discount_given = $10, referral_amount = $11,
			referral_status = $12, collection_details = $13, referral_payment_details = $14, payment_by_us = $15,
			payment_details = $16, amount_paid = $17, navigator_id = $18, navigator_name = $19, updated_at = $20
		WHERE id = $1`
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	return expectAffected(res, "entry "+e.ID)
}

func (r *EntryRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM service_entries WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, "entry "+id)
}

func entryArgs(e domain.ServiceEntry) ([]any, error) {
	collection, err := jsonArg(e.CollectionDetails)
	if err != nil {
		return nil, err
	}
	referral, err := jsonArg(e.ReferralPaymentDetails)
	if err != nil {
		return nil, err
	}
	ledger, err := jsonArg(&e.PaymentByUs)
	if err != nil {
		return nil, err
	}
	details, err := jsonArg(e.PaymentDetails)
	if err != nil {
		return nil, err
	}

	return []any{
		e.ID, e.SlNo, e.Date, e.MemberName, e.AHID, e.ServiceTypeID, e.ServiceTypeName,
		e.PackageType, e.HCPName, e.TotalBillAmount, e.DiscountGiven, e.ReferralAmount, e.ReferralStatus,
		collection, referral, ledger, details, e.AmountPaid,
		e.NavigatorID, e.NavigatorName, e.CreatedAt, e.UpdatedAt,
	}, nil
}

func scanEntry(s rowScanner) (domain.ServiceEntry, error) {
	var (
		e                                   domain.ServiceEntry
		navigatorName                       sql.NullString
		collection, referral, ledger, legacy []byte
	)

	if err := s.Scan(
		&e.ID,
		&e.SlNo,
		&e.Date,
		&e.MemberName,
		&e.AHID,
		&e.ServiceTypeID,
		&e.ServiceTypeName,
		&e.PackageType,
		&e.HCPName,
		&e.TotalBillAmount,
		&e.DiscountGiven,
		&e.ReferralAmount,
		&e.ReferralStatus,
		&collection,
		&referral,
		&ledger,
		&legacy,
		&e.AmountPaid,
		&e.NavigatorID,
		&navigatorName,
		&e.CreatedAt,
		&e.UpdatedAt,
	); err != nil {
		return domain.ServiceEntry{}, err
	}
	e.NavigatorName = navigatorName.String

	var err error
	if e.CollectionDetails, err = jsonValue[domain.CollectionDetails](collection); err != nil {
		return domain.ServiceEntry{}, fmt.Errorf("entry %s collection_details: %w", e.ID, err)
	}
	if e.ReferralPaymentDetails, err = jsonValue[domain.ReferralPaymentDetails](referral); err != nil {
		return domain.ServiceEntry{}, fmt.Errorf("entry %s referral_payment_details: %w", e.ID, err)
	}
	if e.PaymentDetails, err = jsonValue[domain.PaymentDetails](legacy); err != nil {
		return domain.ServiceEntry{}, fmt.Errorf("entry %s payment_details: %w", e.ID, err)
	}
	l, err := jsonValue[domain.PaymentByUs](ledger)
	if err != nil {
		return domain.ServiceEntry{}, fmt.Errorf("entry %s payment_by_us: %w", e.ID, err)
	}
	if l != nil {
		e.PaymentByUs = *l
	}
	return e, nil
}
