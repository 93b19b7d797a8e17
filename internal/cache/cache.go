// Package cache keeps a local snapshot of each document's underlines so a
// reader who loses connectivity still sees their highlights. The cache is a
// fallback, never the source of truth; offline collections are read-only.
package cache

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterbourgon/diskv/v3"

	"github.com/logan676/bookpost/internal/underline"
)

// ErrNoSnapshot reports that no snapshot exists for a document.
var ErrNoSnapshot = errors.New("cache: no snapshot for document")

const snapshotFile = "snapshot"

// Snapshots is a diskv-backed store of per-document underline snapshots.
// It satisfies underline.Snapshotter.
type Snapshots struct {
	d *diskv.Diskv
}

// Open prepares the snapshot store under basePath, creating it if needed.
func Open(basePath string) (*Snapshots, error) {
	if strings.TrimSpace(basePath) == "" {
		return nil, errors.New("cache: base path required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("cache: ensure base path: %w", err)
	}
	return &Snapshots{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      1024 * 1024, // 1MB
	})}, nil
}

// Save replaces the snapshot for a document.
func (s *Snapshots) Save(documentID string, underlines []underline.Underline) error {
	data, err := json.Marshal(underlines)
	if err != nil {
		return err
	}
	return s.d.Write(toKey(documentID), data)
}

// Load returns the last saved snapshot for a document, in saved order.
func (s *Snapshots) Load(documentID string) ([]underline.Underline, error) {
	data, err := s.d.Read(toKey(documentID))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, documentID)
	}
	var underlines []underline.Underline
	if err := json.Unmarshal(data, &underlines); err != nil {
		return nil, err
	}
	return underlines, nil
}

// Drop removes a document's snapshot. Missing snapshots are not an error.
func (s *Snapshots) Drop(documentID string) error {
	err := s.d.Erase(toKey(documentID))
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// Document ids can hold characters that are unsafe in file names, so the
// directory segment is base64-encoded, the same way bujo-style stores encode
// collection names.
func toKey(documentID string) string {
	encoded := base64.URLEncoding.EncodeToString([]byte(documentID))
	return fmt.Sprintf("%s-%s", encoded, snapshotFile)
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}
