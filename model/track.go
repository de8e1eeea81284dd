package model

import "time"

// SourceKind tags where a track's audio comes from. Each kind carries its
// own rules: local tracks are seekable and persistable, remote tracks are
// seekable but not persisted, radio streams are neither seekable nor
// persisted, and SourceNone is a metadata-only placeholder with no audio.
type SourceKind string

const (
	SourceNone   SourceKind = ""
	SourceLocal  SourceKind = "local"
	SourceRemote SourceKind = "remote"
	SourceRadio  SourceKind = "radio"
)

// Playable reports whether a track of this kind has audio to play at all.
func (k SourceKind) Playable() bool {
	return k != SourceNone
}

// Seekable reports whether a track of this kind has a finite timeline.
// Radio streams are open-ended; seeking them is meaningless.
func (k SourceKind) Seekable() bool {
	return k == SourceLocal || k == SourceRemote
}

// Persistable reports whether a track of this kind may be written to the
// local store. Only user uploads qualify.
func (k SourceKind) Persistable() bool {
	return k == SourceLocal
}

// Track represents one playable audio item in the library.
type Track struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
	ArtURL string `json:"artUrl"`

	Source SourceKind `json:"source"`
	// StreamURL is the playable handle: a remote URL, a radio stream URL,
	// or a freshly presigned object URL for local tracks. Handles for local
	// tracks are re-derived every session and must not be persisted.
	StreamURL string `json:"streamUrl,omitempty"`
	// ObjectKey locates the payload blob for local tracks.
	ObjectKey string `json:"-"`

	Liked        bool       `json:"liked"`
	Lyrics       string     `json:"lyrics,omitempty"`
	LastPlayedAt *time.Time `json:"lastPlayedAt,omitempty"`
}

// Playable reports whether the track currently has a usable audio handle.
func (t *Track) Playable() bool {
	return t.Source.Playable() && t.StreamURL != ""
}
