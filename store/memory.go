package store

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// memoryStore is an in-process Store used in tests and in storeless runs.
// It mimics the gateway's handle behavior: every LoadAll mints fresh,
// session-scoped handles.
type memoryStore struct {
	mu       sync.Mutex
	records  map[string]model.StoredTrack
	payloads map[string][]byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() Store {
	return &memoryStore{
		records:  make(map[string]model.StoredTrack),
		payloads: make(map[string][]byte),
	}
}

func (s *memoryStore) Save(ctx context.Context, track *model.Track, payload io.Reader, size int64) error {
	data, err := io.ReadAll(payload)
	if err != nil {
		return fmt.Errorf("failed to read payload for track %s: %w", track.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	track.ObjectKey = objectKey(track.ID)
	s.records[track.ID] = model.StoredTrackFromTrack(track)
	s.payloads[track.ID] = data
	return nil
}

func (s *memoryStore) Update(ctx context.Context, track *model.Track) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.records[track.ID]
	if !ok {
		return nil
	}
	existing.Title = track.Title
	existing.Artist = track.Artist
	existing.Genre = track.Genre
	existing.ArtURL = track.ArtURL
	existing.Liked = track.Liked
	s.records[track.ID] = existing
	return nil
}

func (s *memoryStore) LoadAll(ctx context.Context) ([]model.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tracks := make([]model.Track, 0, len(s.records))
	for id := range s.records {
		record := s.records[id]
		// Fresh handle per load, never stable across sessions.
		handle := fmt.Sprintf("memory://%s/%s", record.ObjectKey, uuid.NewString())
		tracks = append(tracks, record.ToTrack(handle))
	}
	return tracks, nil
}

func (s *memoryStore) Handle(ctx context.Context, id string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return "", fmt.Errorf("no payload stored for track %s", id)
	}
	return fmt.Sprintf("memory://%s/%s", record.ObjectKey, uuid.NewString()), nil
}

func (s *memoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, id)
	delete(s.payloads, id)
	return nil
}
