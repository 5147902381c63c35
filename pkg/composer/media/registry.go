// ABOUTME: Registry of transient preview handles, the terminal analogue of blob URLs
// ABOUTME: Each handle releases exactly once; the registry tracks which are still live

package media

import (
	"sync"

	"github.com/google/uuid"
)

// Registry allocates and tracks preview handles. It is safe for concurrent
// use so probes may look handles up from worker goroutines.
type Registry struct {
	mu   sync.Mutex
	live map[string]*Handle
	// released counts Release calls that actually freed something.
	released int
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{live: make(map[string]*Handle)}
}

// Handle is one allocated preview resource.
type Handle struct {
	URL string
	reg *Registry
	// Data is the buffered source, dropped on release.
	Data []byte
}

// Allocate registers a new handle for data.
func (r *Registry) Allocate(data []byte) *Handle {
	h := &Handle{URL: "blob:" + uuid.NewString(), reg: r, Data: data}
	r.mu.Lock()
	r.live[h.URL] = h
	r.mu.Unlock()
	return h
}

// Release frees the handle. Extra calls are no-ops.
func (h *Handle) Release() {
	r := h.reg
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[h.URL]; !ok {
		return
	}
	delete(r.live, h.URL)
	h.Data = nil
	r.released++
}

// Live reports whether url is still allocated.
func (r *Registry) Live(url string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.live[url]
	return ok
}

// Len returns the number of live handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}

// Released returns how many handles have been freed.
func (r *Registry) Released() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.released
}
