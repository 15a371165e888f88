package writer

import (
	"fmt"
	"sync"
)

// Factory issues sequence numbers for one editing session. Each writer kind
// has its own counter; the first entity of a kind gets 1.
type Factory struct {
	mu       sync.Mutex
	counters map[string]int
}

// NewFactory returns a Factory with every counter at zero.
func NewFactory() *Factory {
	return &Factory{counters: make(map[string]int)}
}

// next increments the counter of kind and returns the new value.
func (f *Factory) next(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.counters[kind]++
	return f.counters[kind]
}

// Count returns how many entities of kind have been issued since the last
// reset.
func (f *Factory) Count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counters[kind]
}

// Reset sets every counter back to zero. Entities created before the reset
// keep their names, so a reset only makes sense when a new program starts.
func (f *Factory) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = make(map[string]int)
}

// bindingName formats the name an entity is bound to.
func bindingName(prefix string, seq int) string {
	return fmt.Sprintf("%s_%d", prefix, seq)
}
