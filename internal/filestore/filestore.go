package filestore

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Store handles local storage of uploaded export files.
type Store struct {
	basePath string
}

// New creates a file store rooted at basePath, creating the directory if
// needed.
func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("create filestore directory: %w", err)
	}
	return &Store{basePath: basePath}, nil
}

// Save stores an upload under a collision-free name
// ("<unix-ms>-<random>-<original>") and returns that name. The original base
// name is kept in the stored name so operators can tell uploads apart on
// disk.
func (s *Store) Save(filename string, r io.Reader) (string, error) {
	suffix, err := randomSuffix()
	if err != nil {
		return "", fmt.Errorf("generate file id: %w", err)
	}

	stored := fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), suffix, sanitizeName(filename))
	fullPath := filepath.Join(s.basePath, stored)

	f, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("write file: %w", err)
	}
	return stored, nil
}

// Get returns a reader for a stored file.
func (s *Store) Get(filename string) (*os.File, error) {
	f, err := os.Open(filepath.Join(s.basePath, filename))
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	return f, nil
}

// Delete removes a stored file; deleting a missing file is not an error.
func (s *Store) Delete(filename string) error {
	if filename == "" {
		return nil
	}
	fullPath := filepath.Join(s.basePath, filename)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete file: %w", err)
	}
	return nil
}

// FullPath returns the full filesystem path for a stored file.
func (s *Store) FullPath(filename string) string {
	return filepath.Join(s.basePath, filename)
}

// sanitizeName strips path separators and whitespace from an uploaded name
// so it is safe to embed in a stored filename.
func sanitizeName(name string) string {
	base := filepath.Base(name)
	base = strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ' ':
			return '_'
		default:
			return r
		}
	}, base)
	if base == "" || base == "." {
		return "upload.csv"
	}
	return base
}

func randomSuffix() (string, error) {
	bytes := make([]byte, 4)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
