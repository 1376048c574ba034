package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wonny/screener/internal/contracts"
)

// FileStore keeps one JSON file per screener (<dir>/<screener>.json)
type FileStore struct {
	dir string
}

// NewFileStore creates the directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) path(id contracts.ScreenerID) string {
	return filepath.Join(s.dir, string(id)+".json")
}

// Save writes the report atomically (temp file + rename)
func (s *FileStore) Save(ctx context.Context, report *contracts.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, string(report.Screener)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path(report.Screener)); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}

// Latest reads the screener's file, (nil, nil) if absent
func (s *FileStore) Latest(ctx context.Context, id contracts.ScreenerID) (*contracts.Report, error) {
	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var report contracts.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return &report, nil
}
