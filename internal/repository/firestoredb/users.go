package firestoredb

import (
	"context"
	"time"

	"healthops-dashboard/internal/domain"

	"cloud.google.com/go/firestore"
)

type userDoc struct {
	Email     string    `firestore:"email"`
	Name      string    `firestore:"name"`
	Role      string    `firestore:"role"`
	Active    bool      `firestore:"active"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// UserStore reads the users collection, keyed by Firebase uid.
type UserStore struct {
	client *firestore.Client
}

func NewUserStore(client *firestore.Client) *UserStore {
	return &UserStore{client: client}
}

func (s *UserStore) Get(ctx context.Context, uid string) (domain.User, error) {
	snap, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if err != nil {
		return domain.User{}, notFound(err)
	}
	return decodeUser(snap)
}

func (s *UserStore) List(ctx context.Context) ([]domain.User, error) {
	return collect(ctx, s.client.Collection(usersCollection).OrderBy("name", firestore.Asc), decodeUser)
}

func (s *UserStore) Upsert(ctx context.Context, u domain.User) error {
	_, err := s.client.Collection(usersCollection).Doc(u.UID).Set(ctx, userDoc{
		Email:     u.Email,
		Name:      u.Name,
		Role:      string(u.Role),
		Active:    u.Active,
		CreatedAt: u.CreatedAt,
	})
	return err
}

func decodeUser(snap *firestore.DocumentSnapshot) (domain.User, error) {
	var doc userDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.User{}, err
	}
	return domain.User{
		UID:       snap.Ref.ID,
		Email:     doc.Email,
		Name:      doc.Name,
		Role:      domain.Role(doc.Role),
		Active:    doc.Active,
		CreatedAt: doc.CreatedAt,
	}, nil
}
