package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"healthops-dashboard/internal/domain"

	goredis "github.com/redis/go-redis/v9"
)

// StatusStore keeps export status records. Implemented by the redis client.
type StatusStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	SAdd(ctx context.Context, key string, members ...any) error
	SMembers(ctx context.Context, key string) ([]string, error)
	SRem(ctx context.Context, key string, members ...any) error
}

type ExportStatus struct {
	Key      string    `json:"key"`
	Type     string    `json:"type"`
	UserID   string    `json:"user_id"`
	Filters  any       `json:"filters"`
	Progress float64   `json:"progress"`
	FileURL  *string   `json:"file_url"`
	FileName string    `json:"file_name,omitempty"`
	Error    *string   `json:"error,omitempty"`
	Created  time.Time `json:"created_at"`
}

// ExportView is an export status as shown to its owner.
type ExportView struct {
	ExportStatus
	CreatedAgo string `json:"created_ago"`
}

const (
	exportSetKey = "export_ids"
	exportTTL    = 20 * time.Minute
)

func saveExportStatus(ctx context.Context, store StatusStore, st *ExportStatus) error {
	if store == nil {
		return nil
	}
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	if err := store.Set(ctx, st.Key, string(data), exportTTL); err != nil {
		return err
	}
	return store.SAdd(ctx, exportSetKey, st.Key)
}

type ExportService struct {
	store StatusStore
	clock Clock
}

func NewExportService(store StatusStore, clock Clock) *ExportService {
	return &ExportService{store: store, clock: clock}
}

// GetExports lists the live exports of userID, newest first.
func (s *ExportService) GetExports(ctx context.Context, userID string) ([]ExportView, error) {
	if s.store == nil {
		return nil, errors.New("redis client not configured")
	}

	keys, err := s.store.SMembers(ctx, exportSetKey)
	if err != nil {
		return nil, fmt.Errorf("failed to get export keys: %w", err)
	}

	var statuses []ExportStatus
	for _, key := range keys {
		data, err := s.store.Get(ctx, key)
		if err != nil {
			continue
		}

		var status ExportStatus
		if err := json.Unmarshal([]byte(data), &status); err != nil {
			continue
		}
		if status.UserID == userID {
			statuses = append(statuses, status)
		}
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Created.After(statuses[j].Created)
	})

	views := make([]ExportView, 0, len(statuses))
	for _, st := range statuses {
		views = append(views, ExportView{ExportStatus: st, CreatedAgo: humanizeAgo(st.Created, s.clock())})
	}
	return views, nil
}

// GetExport returns one export. Exports of other users are reported as not found.
func (s *ExportService) GetExport(ctx context.Context, exportID, userID string) (ExportView, error) {
	if s.store == nil {
		return ExportView{}, errors.New("redis client not configured")
	}

	data, err := s.store.Get(ctx, exportID)
	if err != nil {
		return ExportView{}, domain.ErrNotFound
	}

	var status ExportStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return ExportView{}, fmt.Errorf("failed to parse export status: %w", err)
	}
	if status.UserID != userID {
		return ExportView{}, domain.ErrNotFound
	}

	return ExportView{ExportStatus: status, CreatedAgo: humanizeAgo(status.Created, s.clock())}, nil
}

// PruneExpired drops ids from the export set whose status record has expired.
func (s *ExportService) PruneExpired(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, nil
	}

	keys, err := s.store.SMembers(ctx, exportSetKey)
	if err != nil {
		return 0, err
	}

	pruned := 0
	for _, key := range keys {
		_, err := s.store.Get(ctx, key)
		if errors.Is(err, goredis.Nil) {
			if err := s.store.SRem(ctx, exportSetKey, key); err != nil {
				return pruned, err
			}
			pruned++
			continue
		}
		if err != nil {
			return pruned, err
		}
	}
	return pruned, nil
}

func humanizeAgo(t, now time.Time) string {
	if t.After(now) {
		return "just now"
	}

	minutes := int(now.Sub(t).Minutes())
	if minutes < 1 {
		return "just now"
	}
	if minutes < 60 {
		return fmt.Sprintf("%d %s ago", minutes, plural(minutes, "minute", "minutes"))
	}
	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%d %s ago", hours, plural(hours, "hour", "hours"))
	}
	days := hours / 24
	if days < 30 {
		return fmt.Sprintf("%d %s ago", days, plural(days, "day", "days"))
	}
	return t.Format("02/01/2006 15:04")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
