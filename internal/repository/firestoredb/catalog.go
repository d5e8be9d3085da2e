package firestoredb

import (
	"context"
	"time"

	"healthops-dashboard/internal/domain"

	"cloud.google.com/go/firestore"
)

type catalogDoc struct {
	Name      string    `firestore:"name"`
	Active    bool      `firestore:"active"`
	CreatedAt time.Time `firestore:"createdAt"`
}

// CatalogStore keeps services or healthcare providers, one collection each.
type CatalogStore struct {
	client     *firestore.Client
	collection string
}

func NewServiceStore(client *firestore.Client) *CatalogStore {
	return &CatalogStore{client: client, collection: servicesCollection}
}

func NewProviderStore(client *firestore.Client) *CatalogStore {
	return &CatalogStore{client: client, collection: providersCollection}
}

func (s *CatalogStore) ListActive(ctx context.Context) ([]domain.CatalogItem, error) {
	q := s.client.Collection(s.collection).Where("active", "==", true).OrderBy("name", firestore.Asc)
	return collect(ctx, q, decodeCatalogItem)
}

func (s *CatalogStore) Names(ctx context.Context) (map[string]string, error) {
	items, err := collect(ctx, s.client.Collection(s.collection).Query, decodeCatalogItem)
	if err != nil {
		return nil, err
	}
	return domain.CatalogNames(items), nil
}

func (s *CatalogStore) Create(ctx context.Context, name string) (domain.CatalogItem, error) {
	ref := s.client.Collection(s.collection).NewDoc()
	doc := catalogDoc{Name: name, Active: true, CreatedAt: time.Now().UTC()}
	if _, err := ref.Create(ctx, doc); err != nil {
		return domain.CatalogItem{}, err
	}
	return domain.CatalogItem{ID: ref.ID, Name: doc.Name, Active: doc.Active, CreatedAt: doc.CreatedAt}, nil
}

func (s *CatalogStore) Deactivate(ctx context.Context, id string) error {
	_, err := s.client.Collection(s.collection).Doc(id).Update(ctx, []firestore.Update{
		{Path: "active", Value: false},
	})
	return notFound(err)
}

func decodeCatalogItem(snap *firestore.DocumentSnapshot) (domain.CatalogItem, error) {
	var doc catalogDoc
	if err := snap.DataTo(&doc); err != nil {
		return domain.CatalogItem{}, err
	}
	return domain.CatalogItem{ID: snap.Ref.ID, Name: doc.Name, Active: doc.Active, CreatedAt: doc.CreatedAt}, nil
}
