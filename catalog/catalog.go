package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// ErrDuplicateID is returned when a track with the same ID is already in
// the catalog. IDs are unique at all times; ingest paths must dedupe.
var ErrDuplicateID = fmt.Errorf("catalog: duplicate track id")

// ErrNotFound is returned when a track ID is not in the catalog.
var ErrNotFound = fmt.Errorf("catalog: track not found")

// Catalog is the in-memory ordered collection of tracks: demo seeds, user
// uploads and fetched radio entries. All mutation goes through the mutex;
// readers get copies.
type Catalog struct {
	mu     sync.RWMutex
	tracks []model.Track
	index  map[string]int
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{
		index: make(map[string]int),
	}
}

// Add appends a track. A duplicate ID is rejected, never silently creating
// a second entry.
func (c *Catalog) Add(t model.Track) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.index[t.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, t.ID)
	}
	c.index[t.ID] = len(c.tracks)
	c.tracks = append(c.tracks, t)
	return nil
}

// AddAll appends every track whose ID is not already present and returns
// the tracks that were actually inserted.
func (c *Catalog) AddAll(tracks []model.Track) []model.Track {
	added := make([]model.Track, 0, len(tracks))
	for _, t := range tracks {
		if err := c.Add(t); err == nil {
			added = append(added, t)
		}
	}
	return added
}

// Remove deletes a track by ID, preserving the order of the rest.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, exists := c.index[id]
	if !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.tracks = append(c.tracks[:i], c.tracks[i+1:]...)
	delete(c.index, id)
	for j := i; j < len(c.tracks); j++ {
		c.index[c.tracks[j].ID] = j
	}
	return nil
}

// Get returns a copy of the track with the given ID.
func (c *Catalog) Get(id string) (model.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	i, exists := c.index[id]
	if !exists {
		return model.Track{}, false
	}
	return c.tracks[i], true
}

// All returns a copy of the catalog in order.
func (c *Catalog) All() []model.Track {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]model.Track, len(c.tracks))
	copy(out, c.tracks)
	return out
}

// Len returns the number of tracks.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tracks)
}

// IndexOf returns the position of a track ID, or -1 when absent.
func (c *Catalog) IndexOf(id string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i, exists := c.index[id]; exists {
		return i
	}
	return -1
}

// At returns a copy of the track at the given position.
func (c *Catalog) At(i int) (model.Track, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i < 0 || i >= len(c.tracks) {
		return model.Track{}, false
	}
	return c.tracks[i], true
}

// ToggleLike flips the liked flag in place and returns the updated track.
func (c *Catalog) ToggleLike(id string) (model.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, exists := c.index[id]
	if !exists {
		return model.Track{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	c.tracks[i].Liked = !c.tracks[i].Liked
	return c.tracks[i], nil
}

// Apply replaces the mutable metadata of an existing track (edit-save).
// Identity, source and handle fields are kept.
func (c *Catalog) Apply(id string, title, artist, genre, artURL string) (model.Track, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i, exists := c.index[id]
	if !exists {
		return model.Track{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	t := &c.tracks[i]
	if title != "" {
		t.Title = title
	}
	if artist != "" {
		t.Artist = artist
	}
	if genre != "" {
		t.Genre = genre
	}
	if artURL != "" {
		t.ArtURL = artURL
	}
	return *t, nil
}

// SetLyrics caches lyrics text on a track. Missing IDs are ignored; the
// lookup may resolve after the track was deleted.
func (c *Catalog) SetLyrics(id, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, exists := c.index[id]; exists {
		c.tracks[i].Lyrics = text
	}
}

// TouchPlayed stamps the last-played time on a track.
func (c *Catalog) TouchPlayed(id string, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i, exists := c.index[id]; exists {
		c.tracks[i].LastPlayedAt = &at
	}
}
