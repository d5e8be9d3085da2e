package clients

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StorageClient keeps export workbooks on local disk. The files are served by the API process
// under PublicPrefix.
type StorageClient struct {
	BaseDir      string
	PublicPrefix string // e.g. "/files"
	BaseURL      string // optional scheme+host[:port] for absolute links
}

// NewLocalStorage creates baseDir if missing.
func NewLocalStorage(baseDir, publicPrefix, baseURL string) (*StorageClient, error) {
	if baseDir == "" {
		baseDir = "./exports"
	}
	if publicPrefix == "" {
		publicPrefix = "/files"
	}
	if !strings.HasPrefix(publicPrefix, "/") {
		publicPrefix = "/" + publicPrefix
	}

	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to ensure storage dir %q: %w", baseDir, err)
	}

	return &StorageClient{
		BaseDir:      baseDir,
		PublicPrefix: strings.TrimSuffix(publicPrefix, "/"),
		BaseURL:      strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// Save writes data under a collision-free name "<id>_<fileName>" and returns that name.
func (s *StorageClient) Save(ctx context.Context, fileName string, data []byte) (string, error) {
	stored := strings.ReplaceAll(uuid.NewString(), "-", "") + "_" + filepath.Base(fileName)
	path := filepath.Join(s.BaseDir, stored)

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize file: %w", err)
	}
	return stored, nil
}

// GetURL is BaseURL + PublicPrefix + "/" + file, or a root-relative path without BaseURL.
func (s *StorageClient) GetURL(stored string) string {
	return s.BaseURL + s.PublicPrefix + "/" + url.PathEscape(stored)
}

// Store saves an export and returns its download URL.
func (s *StorageClient) Store(ctx context.Context, fileName string, data []byte) (string, error) {
	stored, err := s.Save(ctx, fileName, data)
	if err != nil {
		return "", err
	}
	return s.GetURL(stored), nil
}

// OriginalName strips the id prefix Save adds to a stored file name.
func OriginalName(stored string) string {
	if _, name, ok := strings.Cut(stored, "_"); ok {
		return name
	}
	return stored
}

// CleanupOlderThan removes stored files last modified more than d ago.
func (s *StorageClient) CleanupOlderThan(d time.Duration) (int, error) {
	cutoff := time.Now().Add(-d)
	removed := 0
	err := filepath.WalkDir(s.BaseDir, func(path string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if de.IsDir() {
			return nil
		}
		info, err := de.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().Before(cutoff) && os.Remove(path) == nil {
			removed++
		}
		return nil
	})
	return removed, err
}
