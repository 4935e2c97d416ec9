package upload

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// PublicPrefix is the URL path local uploads are served under.
const PublicPrefix = "/uploads/"

// Store persists uploaded objects under keys such as "images/<uuid>.png".
type Store interface {
	Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	// Delete reports false when nothing is stored under key.
	Delete(ctx context.Context, key string) (bool, error)
	URL(key string) string
	// KeyFromURL maps a public URL back to its key. ok is false for URLs
	// this store did not issue.
	KeyFromURL(rawURL string) (key string, ok bool)
}

// LocalStore writes objects below a directory that is served statically at
// PublicPrefix.
type LocalStore struct {
	root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	for _, sub := range []string{"images", "videos"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o755); err != nil {
			return nil, err
		}
	}
	return &LocalStore{root: root}, nil
}

func (s *LocalStore) Root() string { return s.root }

func (s *LocalStore) Save(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(dst)
		return err
	}
	return f.Close()
}

func (s *LocalStore) Delete(_ context.Context, key string) (bool, error) {
	target := filepath.Join(s.root, filepath.FromSlash(key))
	info, err := os.Stat(target)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if !info.Mode().IsRegular() {
		return false, nil
	}
	return true, os.Remove(target)
}

func (s *LocalStore) URL(key string) string {
	return PublicPrefix + key
}

func (s *LocalStore) KeyFromURL(rawURL string) (string, bool) {
	if !strings.HasPrefix(rawURL, PublicPrefix) {
		return "", false
	}
	return cleanKey(strings.TrimPrefix(rawURL, PublicPrefix))
}

// cleanKey rejects keys that would escape the upload root.
func cleanKey(key string) (string, bool) {
	if key == "" || strings.Contains(key, `\`) {
		return "", false
	}
	cleaned := path.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "../") || cleaned == ".." || path.IsAbs(cleaned) {
		return "", false
	}
	return cleaned, true
}
