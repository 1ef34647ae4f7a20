// Package collect holds the set of files registered for packaging.
package collect

import "sync"

// Collector is an append-only, ordered list of artifact paths. Stages add a
// path only after the artifact is fully written. It is safe for concurrent use.
type Collector struct {
	mu    sync.Mutex
	paths []string
	seen  map[string]struct{}
}

// New returns an empty Collector.
func New() *Collector {
	return &Collector{seen: make(map[string]struct{})}
}

// Add registers path. Registering the same path twice is a no-op.
func (c *Collector) Add(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.seen[path]; ok {
		return
	}
	c.seen[path] = struct{}{}
	c.paths = append(c.paths, path)
}

// Files returns a copy of the registered paths in registration order.
func (c *Collector) Files() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.paths))
	copy(out, c.paths)
	return out
}

// Len returns the number of registered paths.
func (c *Collector) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.paths)
}
