package media

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatedPath(t *testing.T) {
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC)
	p := DatedPath("blog/post", now)
	assert.Regexp(t, regexp.MustCompile(`^blog/post/2026/03/07/[0-9a-f-]{36}\.jpg$`), p)
	assert.NotEqual(t, p, DatedPath("blog/post", now))
}

func TestLocalStorage_SaveAndRemove(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStorage(root, "/media/")
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "blog/post/2026/01/01/a.jpg", []byte("jpeg")))
	data, err := os.ReadFile(filepath.Join(root, "blog", "post", "2026", "01", "01", "a.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))

	assert.Equal(t, "/media/blog/post/2026/01/01/a.jpg", store.URL("blog/post/2026/01/01/a.jpg"))

	require.NoError(t, store.Remove(ctx, "blog/post/2026/01/01/a.jpg"))
	_, err = os.Stat(filepath.Join(root, "blog", "post", "2026", "01", "01", "a.jpg"))
	assert.True(t, os.IsNotExist(err))

	// removing twice is fine
	require.NoError(t, store.Remove(ctx, "blog/post/2026/01/01/a.jpg"))
}

func TestLocalStorage_StaysInsideRoot(t *testing.T) {
	root := t.TempDir()
	store := NewLocalStorage(filepath.Join(root, "media"), "/media/")

	require.NoError(t, store.Save(context.Background(), "../escape.jpg", []byte("x")))
	_, err := os.Stat(filepath.Join(root, "escape.jpg"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(root, "media", "escape.jpg"))
	assert.NoError(t, err)
}

func TestS3Storage_PutAndDelete(t *testing.T) {
	type call struct {
		method string
		path   string
		body   string
	}
	var (
		mu    sync.Mutex
		calls []call
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	ctx := context.Background()
	store, err := NewS3Storage(ctx, S3Options{
		Bucket:    "geoblog",
		Region:    "us-east-1",
		Endpoint:  srv.URL,
		AccessKey: "test",
		SecretKey: "test",
	})
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, "blog/emoji/x.jpg", []byte("jpegdata")))
	require.NoError(t, store.Remove(ctx, "blog/emoji/x.jpg"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 2)
	assert.Equal(t, http.MethodPut, calls[0].method)
	assert.Equal(t, "/geoblog/blog/emoji/x.jpg", calls[0].path)
	assert.Contains(t, calls[0].body, "jpegdata")
	assert.Equal(t, http.MethodDelete, calls[1].method)

	assert.Equal(t, srv.URL+"/geoblog/blog/emoji/x.jpg", store.URL("blog/emoji/x.jpg"))
}
