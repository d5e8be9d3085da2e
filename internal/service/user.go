package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"healthops-dashboard/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type UserStore interface {
	Get(ctx context.Context, uid string) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Upsert(ctx context.Context, u domain.User) error
}

// UserService manages the user profiles that carry roles.
type UserService struct {
	store UserStore
	clock Clock
}

func NewUserService(store UserStore, clock Clock) *UserService {
	return &UserService{store: store, clock: clock}
}

// Navigators lists active users for the admin navigator filter.
func (s *UserService) Navigators(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !actor.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

// Save creates or replaces a profile. The original creation time survives updates.
func (s *UserService) Save(ctx context.Context, u domain.User) (domain.User, error) {
	u.UID = strings.TrimSpace(u.UID)
	u.Email = strings.TrimSpace(u.Email)
	u.Name = strings.TrimSpace(u.Name)

	if u.UID == "" {
		return domain.User{}, domain.NewValidationError("uid", "uid is required")
	}
	if err := validate.Var(u.Email, "required,email"); err != nil {
		return domain.User{}, domain.NewValidationError("email", "Please enter a valid email")
	}
	if !u.Role.IsValid() {
		return domain.User{}, domain.NewValidationError("role", "role must be admin or navigator")
	}

	existing, err := s.store.Get(ctx, u.UID)
	switch {
	case err == nil:
		u.CreatedAt = existing.CreatedAt
	case errors.Is(err, domain.ErrNotFound):
		u.CreatedAt = s.clock()
	default:
		return domain.User{}, fmt.Errorf("load user %q: %w", u.UID, err)
	}

	if err := s.store.Upsert(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("save user %q: %w", u.UID, err)
	}
	return u, nil
}
