package model

import "time"

// StoredTrack is the persistence record for a locally uploaded track.
// The payload blob lives in object storage under ObjectKey; this row holds
// the metadata only. Stream handles are never stored, they are re-derived
// from ObjectKey on every load.
type StoredTrack struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Title     string    `gorm:"size:255" json:"title"`
	Artist    string    `gorm:"size:255" json:"artist"`
	Genre     string    `gorm:"size:64" json:"genre"`
	ArtURL    string    `gorm:"type:text" json:"artUrl"`
	Liked     bool      `json:"isLiked"`
	ObjectKey string    `gorm:"size:255" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName keeps the table name stable regardless of GORM pluralization.
func (StoredTrack) TableName() string {
	return "stored_tracks"
}

// ToTrack rehydrates the record into a library track. Rehydrated tracks are
// always local-provenance; the caller supplies the fresh stream handle.
func (s *StoredTrack) ToTrack(streamURL string) Track {
	return Track{
		ID:        s.ID,
		Title:     s.Title,
		Artist:    s.Artist,
		Genre:     s.Genre,
		ArtURL:    s.ArtURL,
		Source:    SourceLocal,
		StreamURL: streamURL,
		ObjectKey: s.ObjectKey,
		Liked:     s.Liked,
	}
}

// StoredTrackFromTrack builds the persistence record for a local track.
func StoredTrackFromTrack(t *Track) StoredTrack {
	return StoredTrack{
		ID:        t.ID,
		Title:     t.Title,
		Artist:    t.Artist,
		Genre:     t.Genre,
		ArtURL:    t.ArtURL,
		Liked:     t.Liked,
		ObjectKey: t.ObjectKey,
	}
}
