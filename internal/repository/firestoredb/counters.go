package firestoredb

import (
	"context"

	"cloud.google.com/go/firestore"
)

type counterDoc struct {
	LastNumber int64 `firestore:"lastNumber"`
}

// CounterStore hands out sequence numbers inside a transaction, so concurrent writers never
// observe the same value.
type CounterStore struct {
	client *firestore.Client
}

func NewCounterStore(client *firestore.Client) *CounterStore {
	return &CounterStore{client: client}
}

func (s *CounterStore) Next(ctx context.Context, name string) (int64, error) {
	ref := s.client.Collection(countersCollection).Doc(name)

	var next int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var doc counterDoc
		snap, err := tx.Get(ref)
		switch {
		case isNotFound(err):
		case err != nil:
			return err
		default:
			if err := snap.DataTo(&doc); err != nil {
				return err
			}
		}
		next = doc.LastNumber + 1
		return tx.Set(ref, counterDoc{LastNumber: next})
	})
	if err != nil {
		return 0, err
	}
	return next, nil
}
