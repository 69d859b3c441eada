package dataset

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrNoTable the store has not been populated yet
var ErrNoTable = errors.New("dataset not loaded")

// Store owns the current Table for the lifetime of the process.
// Requests take one snapshot via Current and pass it down; Reload swaps in a
// freshly built table without touching snapshots already handed out.
type Store struct {
	loader  *Loader
	source  string
	current atomic.Pointer[Table]
}

// NewStore creates a store bound to a loader and source
func NewStore(loader *Loader, source string) *Store {
	return &Store{loader: loader, source: source}
}

// NewStaticStore wraps an already built table (tests, one-shot commands)
func NewStaticStore(t *Table) *Store {
	s := &Store{}
	s.current.Store(t)
	return s
}

// Current returns the active table snapshot
func (s *Store) Current() (*Table, error) {
	t := s.current.Load()
	if t == nil {
		return nil, ErrNoTable
	}
	return t, nil
}

// Reload reads the source again and swaps the table in on success.
// On failure the previous table stays active.
func (s *Store) Reload(ctx context.Context) (*Table, error) {
	if s.loader == nil {
		return nil, fmt.Errorf("reload: store has no loader")
	}

	t, err := s.loader.Load(ctx, s.source)
	if err != nil {
		return nil, err
	}

	s.current.Store(t)
	return t, nil
}
