package colorproc

import (
	"fmt"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// Transform describes one color-pipeline configuration. Equal descriptors
// always resolve to the same processor.
type Transform struct {
	ConfigID    string
	InputSpace  string
	OutputSpace string
	Display     string
	View        string
	Look        string
}

// key collapses the descriptor to a 64-bit memo key. Fields are separated so
// adjacent values cannot alias ("ab"+"c" vs "a"+"bc").
func (t Transform) key() uint64 {
	h := xxhash.New()
	for _, field := range []string{t.ConfigID, t.InputSpace, t.OutputSpace, t.Display, t.View, t.Look} {
		_, _ = h.WriteString(field)
		_, _ = h.Write([]byte{0})
	}
	return h.Sum64()
}

// Processor converts colors through a constructed pipeline. Construction is
// the expensive part; conversion is expected to be cheap.
type Processor interface {
	Convert(c Color) Color
}

// Factory builds a processor for a transform. Called at most once per
// distinct descriptor for a cache's lifetime.
type Factory func(t Transform) (Processor, error)

// Cache memoizes processor construction. Safe for concurrent use from render
// workers.
type Cache struct {
	factory Factory

	mu      sync.Mutex
	entries map[uint64]Processor
}

// NewCache builds an empty cache around the given factory.
func NewCache(factory Factory) (*Cache, error) {
	if factory == nil {
		return nil, fmt.Errorf("colorproc: nil factory")
	}
	return &Cache{
		factory: factory,
		entries: make(map[uint64]Processor),
	}, nil
}

// Get returns the processor for t, constructing it on first use. Failed
// constructions are not cached, so a later call may retry.
func (c *Cache) Get(t Transform) (Processor, error) {
	k := t.key()

	c.mu.Lock()
	if proc, ok := c.entries[k]; ok {
		c.mu.Unlock()
		return proc, nil
	}
	c.mu.Unlock()

	// Construction runs outside the lock; it may be slow. Two goroutines
	// racing on the same descriptor build equivalent processors and the
	// second insert wins harmlessly.
	proc, err := c.factory(t)
	if err != nil {
		return nil, fmt.Errorf("colorproc: build processor: %w", err)
	}

	c.mu.Lock()
	c.entries[k] = proc
	c.mu.Unlock()
	return proc, nil
}

// Len returns the number of constructed processors.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry. Called when the owning render context tears down.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[uint64]Processor)
	c.mu.Unlock()
}
