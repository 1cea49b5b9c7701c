// Package file implements store.Store on the local filesystem.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ha1tch/fa-toolkit/pkg/store"
)

// Store keeps one JSON file per record in BasePath.
type Store struct {
	BasePath string
}

// New creates a Store rooted at basePath.
// If basePath is empty, it defaults to ".fa/records".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".fa", "records")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(id int) string {
	return filepath.Join(s.BasePath, strconv.Itoa(id)+".json")
}

// writeTemp writes r to a synced and closed temp file in BasePath and
// returns its path. The caller removes the file.
func (s *Store) writeTemp(r *store.Record) (string, error) {
	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return "", fmt.Errorf("failed to ensure record directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal record: %w", err)
	}

	tmpFile, err := os.CreateTemp(s.BasePath, fmt.Sprintf("tmp-%d-*.json", r.ID))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return tmpPath, fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return tmpPath, fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return tmpPath, fmt.Errorf("failed to close temp file: %w", err)
	}
	return tmpPath, nil
}

// Create writes the record under the next free ID. The temp file is
// hard-linked into place, which fails when another writer has already
// taken the ID; Create then retries with a fresh ID.
func (s *Store) Create(ctx context.Context, r *store.Record) (int, error) {
	for attempt := 0; attempt < store.MaxCreateAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		id, err := s.NextID(ctx)
		if err != nil {
			return 0, err
		}
		c := store.WithID(r, id)
		if err := store.Validate(c); err != nil {
			return 0, err
		}
		taken, err := s.link(c)
		if err != nil {
			return 0, err
		}
		if !taken {
			return id, nil
		}
	}
	return 0, fmt.Errorf("failed to reserve a record id after %d attempts", store.MaxCreateAttempts)
}

// link writes r to its file unless the file already exists, in which case
// it reports the ID as taken.
func (s *Store) link(r *store.Record) (taken bool, err error) {
	tmpPath, err := s.writeTemp(r)
	if tmpPath != "" {
		defer os.Remove(tmpPath)
	}
	if err != nil {
		return false, err
	}
	if err := os.Link(tmpPath, s.path(r.ID)); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return true, nil
		}
		return false, fmt.Errorf("failed to link record file: %w", err)
	}
	return false, nil
}

// Save writes the record atomically: the data goes to a temp file in the
// same directory, is synced, then renamed over the destination.
func (s *Store) Save(ctx context.Context, r *store.Record) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	tmpPath, err := s.writeTemp(r)
	if tmpPath != "" {
		defer os.Remove(tmpPath)
	}
	if err != nil {
		return err
	}

	dest := s.path(r.ID)
	// On Windows, os.Rename fails if dest exists.
	if _, err := os.Stat(dest); err == nil {
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("failed to remove existing record file: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// Load reads the record with the given ID.
func (s *Store) Load(ctx context.Context, id int) (*store.Record, error) {
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to read record file: %w", err)
	}

	var r store.Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record %d: %w", id, err)
	}
	return &r, nil
}

// Delete removes the record file.
func (s *Store) Delete(ctx context.Context, id int) error {
	err := os.Remove(s.path(id))
	if err != nil {
		if os.IsNotExist(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("failed to delete record file: %w", err)
	}
	return nil
}

// ids returns the stored record IDs in ascending order.
func (s *Store) ids() ([]int, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	var ids []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(name, ".json"))
		if err != nil || id <= 0 {
			// temp files and foreign files
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// List loads every record in ID order.
func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	ids, err := s.ids()
	if err != nil {
		return nil, err
	}
	records := make([]*store.Record, 0, len(ids))
	for _, id := range ids {
		r, err := s.Load(ctx, id)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// NextID returns one more than the highest stored ID.
func (s *Store) NextID(ctx context.Context) (int, error) {
	ids, err := s.ids()
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 1, nil
	}
	return ids[len(ids)-1] + 1, nil
}
