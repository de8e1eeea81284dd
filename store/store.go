// Package store is the local persistence gateway for user-uploaded tracks:
// metadata rows keyed by track ID plus the audio payload blob. Persistence
// is best effort; callers keep their in-memory state even when an
// operation here fails.
package store

import (
	"context"
	"io"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// Store persists local tracks durably across sessions.
type Store interface {
	// Save upserts the track metadata and its payload. On success the
	// track's ObjectKey is filled in.
	Save(ctx context.Context, track *model.Track, payload io.Reader, size int64) error
	// Update rewrites the metadata fields only, leaving the stored payload
	// untouched. With no prior payload for the ID it is a no-op.
	Update(ctx context.Context, track *model.Track) error
	// LoadAll returns every stored track rehydrated with a freshly minted
	// playable handle. Handles are not stable across sessions. Rehydrated
	// tracks are always local-provenance.
	LoadAll(ctx context.Context) ([]model.Track, error)
	// Delete removes the record and its payload; handles minted from it
	// become invalid.
	Delete(ctx context.Context, id string) error
	// Handle mints a fresh playable handle for a stored payload. Handles
	// are session-scoped and must be re-derived after a restart.
	Handle(ctx context.Context, id string) (string, error)
}
