package repository

import (
	"context"
	"database/sql"

	"healthops-dashboard/internal/domain"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) Get(ctx context.Context, uid string) (domain.User, error) {
	var (
		u    domain.User
		role string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT uid, email, name, role, active, created_at FROM users WHERE uid = $1`, uid,
	).Scan(&u.UID, &u.Email, &u.Name, &role, &u.Active, &u.CreatedAt)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	u.Role = domain.Role(role)
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]domain.User, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT uid, email, name, role, active, created_at FROM users ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var (
			u    domain.User
			role string
		)
		if err := rows.Scan(&u.UID, &u.Email, &u.Name, &role, &u.Active, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = domain.Role(role)
		result = append(result, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *UserRepository) Upsert(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (uid, email, name, role, active, created_at) VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (uid) DO UPDATE SET email = EXCLUDED.email, name = EXCLUDED.name,
			role = EXCLUDED.role, active = EXCLUDED.active`,
		u.UID, u.Email, u.Name, string(u.Role), u.Active, u.CreatedAt)
	return err
}
