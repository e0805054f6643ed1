// Package storage keeps uploaded festival files on the local filesystem.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrInvalidPath is returned for relative paths escaping the storage root.
var ErrInvalidPath = errors.New("invalid storage path")

// Storage persists uploaded files and resolves them to public URLs.
type Storage interface {
	// Save copies src into <kind>/<yyyy>/<mm>/<dd>/<uuid><ext> and returns that relative path.
	Save(kind, ext string, src io.Reader) (string, error)
	Remove(relPath string) error
	URL(relPath string) string
}

// LocalStorage stores files under a root directory served at urlPrefix.
type LocalStorage struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStorage creates the root directory if needed.
func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{
		root:      abs,
		urlPrefix: strings.TrimRight(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// Root returns the absolute storage directory.
func (s *LocalStorage) Root() string {
	return s.root
}

func (s *LocalStorage) Save(kind, ext string, src io.Reader) (string, error) {
	now := s.now()
	rel := filepath.ToSlash(filepath.Join(
		kind, now.Format("2006"), now.Format("01"), now.Format("02"),
		uuid.New().String()+strings.ToLower(ext),
	))
	dst, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", fmt.Errorf("create storage dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(out, src); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close file: %w", err)
	}
	return rel, nil
}

// Remove deletes a stored file. Missing files and non-local paths are ignored.
func (s *LocalStorage) Remove(relPath string) error {
	if relPath == "" || strings.HasPrefix(relPath, "/") {
		return nil
	}
	full, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// URL maps a relative path to its public URL. Absolute paths such as the
// placeholder thumbnail are returned unchanged.
func (s *LocalStorage) URL(relPath string) string {
	if relPath == "" || strings.HasPrefix(relPath, "/") {
		return relPath
	}
	return s.urlPrefix + "/" + relPath
}

func (s *LocalStorage) resolve(relPath string) (string, error) {
	full := filepath.Join(s.root, filepath.FromSlash(relPath))
	rel, err := filepath.Rel(s.root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrInvalidPath
	}
	return full, nil
}
