package repository

import (
	"context"
	"database/sql"
	"time"

	"healthops-dashboard/internal/domain"

	"github.com/google/uuid"
)

// CatalogRepository stores one kind of reference data. Services and healthcare providers share
// the same table shape.
type CatalogRepository struct {
	db    *sql.DB
	table string
}

func NewServiceRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db, table: "services_master"}
}

func NewProviderRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db, table: "healthcare_providers"}
}

func (r *CatalogRepository) ListActive(ctx context.Context) ([]domain.CatalogItem, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, active, created_at FROM "+r.table+" WHERE active = true ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.CatalogItem
	for rows.Next() {
		var it domain.CatalogItem
		if err := rows.Scan(&it.ID, &it.Name, &it.Active, &it.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Names returns id to name for every item, active or not, so old entries still resolve.
func (r *CatalogRepository) Names(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM "+r.table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := map[string]string{}
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return names, nil
}

func (r *CatalogRepository) Create(ctx context.Context, name string) (domain.CatalogItem, error) {
	it := domain.CatalogItem{
		ID:        uuid.NewString(),
		Name:      name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO "+r.table+" (id, name, active, created_at) VALUES ($1, $2, $3, $4)",
		it.ID, it.Name, it.Active, it.CreatedAt)
	if err != nil {
		return domain.CatalogItem{}, err
	}
	return it, nil
}

func (r *CatalogRepository) Deactivate(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE "+r.table+" SET active = false WHERE id = $1", id)
	if err != nil {
		return err
	}
	return expectAffected(res, r.table+" "+id)
}
