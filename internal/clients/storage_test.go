package clients

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetURL_AbsoluteAndRelative(t *testing.T) {
	tmpDir := t.TempDir()

	c, err := NewLocalStorage(tmpDir, "/files", "http://example.com:8010/")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com:8010/files/a.xlsx", c.GetURL("a.xlsx"))

	c2, err := NewLocalStorage(tmpDir, "files", "")
	require.NoError(t, err)
	assert.Equal(t, "/files/b.xlsx", c2.GetURL("b.xlsx"))
}

func TestStoreAndServe(t *testing.T) {
	c, err := NewLocalStorage(t.TempDir(), "/files", "")
	require.NoError(t, err)

	content := []byte("hello world")
	url, err := c.Store(context.Background(), "../Service_Entries 1.xlsx", content)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, "/files/"))

	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file := strings.TrimPrefix(r.URL.Path, "/files/")
		path := filepath.Join(c.BaseDir, filepath.Base(file))
		if _, err := os.Stat(path); err != nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Disposition", "attachment; filename=\""+OriginalName(file)+"\"")
		http.ServeFile(w, r, path)
	})
	ts := httptest.NewServer(h)
	defer ts.Close()

	resp, err := http.Get(ts.URL + url)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "Service_Entries 1.xlsx")
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, content, body)
}

func TestCleanupOlderThan(t *testing.T) {
	dir := t.TempDir()
	c, err := NewLocalStorage(dir, "/files", "")
	require.NoError(t, err)

	oldName, err := c.Save(context.Background(), "old.xlsx", []byte("old"))
	require.NoError(t, err)
	freshName, err := c.Save(context.Background(), "fresh.xlsx", []byte("fresh"))
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, oldName), past, past))

	removed, err := c.CleanupOlderThan(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = os.Stat(filepath.Join(dir, oldName))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, freshName))
	assert.NoError(t, err)
}

func TestOriginalName(t *testing.T) {
	assert.Equal(t, "report.xlsx", OriginalName("0a1b2c3d4e5f6071_report.xlsx"))
	assert.Equal(t, "plain.xlsx", OriginalName("plain.xlsx"))
}
