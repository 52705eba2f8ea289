package gazetteer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sync"
)

var (
	// ErrNotFound reports an exact-match code that has no row.
	ErrNotFound = errors.New("region not found")

	// ErrTableNotFound reports a missing region table file.
	ErrTableNotFound = errors.New("region table not found")
)

// Store loads the region table from disk on first use and keeps it for the
// process lifetime. The file is never re-read.
type Store struct {
	path   string
	logger *slog.Logger
	onLoad func(rows int)

	once  sync.Once
	table *Table
	err   error
}

// NewStore creates a store for the CSV at path. onLoad, if non-nil, is called
// once with the row count after a successful load.
func NewStore(path string, logger *slog.Logger, onLoad func(rows int)) *Store {
	return &Store{path: path, logger: logger, onLoad: onLoad}
}

// Path returns the configured table location.
func (s *Store) Path() string { return s.path }

// Table returns the loaded table. A missing file yields an error wrapping
// ErrTableNotFound.
func (s *Store) Table() (*Table, error) {
	s.once.Do(s.load)
	return s.table, s.err
}

// CheckReadiness reports whether the region table could be loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	_, err := s.Table()
	return err
}

func (s *Store) load() {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			s.err = fmt.Errorf("%w: %s", ErrTableNotFound, s.path)
		} else {
			s.err = fmt.Errorf("open region table: %w", err)
		}
		s.logger.Error("region table load failed", "path", s.path, "error", s.err)
		return
	}
	defer f.Close()

	t, err := Parse(f)
	if err != nil {
		s.err = err
		s.logger.Error("region table load failed", "path", s.path, "error", err)
		return
	}
	s.table = t
	s.logger.Info("region table loaded", "path", s.path, "rows", t.Len())
	if s.onLoad != nil {
		s.onLoad(t.Len())
	}
}
