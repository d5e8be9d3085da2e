// Package firestoredb keeps the same records as the PostgreSQL repositories in Cloud Firestore,
// using the collection names the first version of the dashboard wrote to.
package firestoredb

import (
	"context"
	"errors"
	"fmt"

	"healthops-dashboard/internal/domain"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/shopspring/decimal"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	entriesCollection   = "service_entries"
	servicesCollection  = "services_master"
	providersCollection = "healthcare_providers"
	expensesCollection  = "office_expenses"
	invoicesCollection  = "invoices"
	usersCollection     = "users"
	countersCollection  = "counters"
)

type Config struct {
	ProjectID       string
	CredentialsFile string
}

// NewApp initialises the Firebase app shared by the Firestore stores and the token verifier.
func NewApp(ctx context.Context, cfg Config) (*firebase.App, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}
	return app, nil
}

func NewClient(ctx context.Context, app *firebase.App) (*firestore.Client, error) {
	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}
	return client, nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

func notFound(err error) error {
	if isNotFound(err) {
		return domain.ErrNotFound
	}
	return err
}

// collect drains a query, decoding every document with decode.
func collect[T any](ctx context.Context, q firestore.Query, decode func(*firestore.DocumentSnapshot) (T, error)) ([]T, error) {
	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []T
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		v, err := decode(snap)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", snap.Ref.Path, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// replace overwrites an existing document and reports ErrNotFound when there is none.
func replace(ctx context.Context, client *firestore.Client, ref *firestore.DocumentRef, data any) error {
	return client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		if _, err := tx.Get(ref); err != nil {
			return notFound(err)
		}
		return tx.Set(ref, data)
	})
}

func remove(ctx context.Context, ref *firestore.DocumentRef) error {
	_, err := ref.Delete(ctx, firestore.Exists)
	return notFound(err)
}

// Firestore has no decimal type; amounts are stored as doubles.
func money(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func fromMoney(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}
