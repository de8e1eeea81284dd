package catalog

import "sync"

// History is the session-scoped play-history log: one genre label appended
// per track start and per natural track end. It only feeds recommendation
// weighting, so it is allowed to grow unbounded for the session.
type History struct {
	mu     sync.RWMutex
	genres []string
}

// NewHistory creates an empty history log.
func NewHistory() *History {
	return &History{}
}

// Append records one genre occurrence.
func (h *History) Append(genre string) {
	if genre == "" {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.genres = append(h.genres, genre)
}

// Snapshot returns a copy of the log in append order.
func (h *History) Snapshot() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]string, len(h.genres))
	copy(out, h.genres)
	return out
}

// Len returns the number of recorded entries.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.genres)
}
