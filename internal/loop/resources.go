package loop

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Resources releases acquired handles in reverse order of acquisition.
// Each handle is closed exactly once no matter how often Close is called,
// so it can sit behind a defer on every exit path.
type Resources struct {
	mu      sync.Mutex
	entries []resource
	closed  bool
	err     error
}

type resource struct {
	name string
	c    io.Closer
}

// Add registers an open handle. Adding after Close closes it immediately.
func (r *Resources) Add(name string, c io.Closer) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		if err := c.Close(); err != nil {
			return fmt.Errorf("close %s: %w", name, err)
		}
		return nil
	}
	r.entries = append(r.entries, resource{name: name, c: c})
	r.mu.Unlock()
	return nil
}

// Names lists registered handles in acquisition order.
func (r *Resources) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

// Close releases every handle, newest first, and joins their errors.
func (r *Resources) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return r.err
	}
	r.closed = true

	var errs []error
	for i := len(r.entries) - 1; i >= 0; i-- {
		e := r.entries[i]
		if err := e.c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", e.name, err))
		}
	}
	r.entries = nil
	r.err = errors.Join(errs...)
	return r.err
}
