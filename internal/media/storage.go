package media

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage persists normalized media under slash-separated relative paths.
type Storage interface {
	Save(ctx context.Context, name string, data []byte) error
	Remove(ctx context.Context, name string) error
	URL(name string) string
}

// DatedPath returns prefix/YYYY/MM/DD/<uuid>.jpg.
func DatedPath(prefix string, now time.Time) string {
	return path.Join(prefix, now.Format("2006/01/02"), uuid.NewString()+".jpg")
}

// FlatPath returns prefix/<uuid>.jpg.
func FlatPath(prefix string) string {
	return path.Join(prefix, uuid.NewString()+".jpg")
}

// LocalStorage writes files below a root directory served at baseURL.
type LocalStorage struct {
	root    string
	baseURL string
}

func NewLocalStorage(root, baseURL string) *LocalStorage {
	return &LocalStorage{root: root, baseURL: baseURL}
}

// Root is the directory files are written to.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Save(_ context.Context, name string, data []byte) (err error) {
	defer func() { observeStorage("local", "save", err) }()

	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return fmt.Errorf("failed to write media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) Remove(_ context.Context, name string) (err error) {
	defer func() { observeStorage("local", "remove", err) }()

	full, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove media file: %w", err)
	}
	return nil
}

func (s *LocalStorage) URL(name string) string {
	return joinURL(s.baseURL, name)
}

func (s *LocalStorage) resolve(name string) (string, error) {
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", fmt.Errorf("invalid media path %q", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(clean)), nil
}

func joinURL(base, name string) string {
	if name == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(name, "/")
}
