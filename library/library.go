// Package library coordinates the track catalog with the persistence
// gateway: upload ingest, delete, like-toggle and metadata edits. Store
// failures never block the in-memory catalog; persistence is best effort
// and data loss on restart is the accepted tradeoff.
package library

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Zianiwarhead/MyMusicApp/catalog"
	"github.com/Zianiwarhead/MyMusicApp/logger"
	"github.com/Zianiwarhead/MyMusicApp/model"
	"github.com/Zianiwarhead/MyMusicApp/store"
)

// Service ties the catalog to the persistence gateway.
type Service struct {
	catalog *catalog.Catalog
	store   store.Store
}

// NewService creates the library service.
func NewService(cat *catalog.Catalog, st store.Store) *Service {
	return &Service{catalog: cat, store: st}
}

// LoadStored rehydrates previously persisted tracks into the catalog,
// deduplicating against IDs already present. A store failure leaves the
// catalog as is.
func (s *Service) LoadStored(ctx context.Context) {
	tracks, err := s.store.LoadAll(ctx)
	if err != nil {
		logger.Warn("failed to load stored tracks", logger.ErrorField(err))
		return
	}
	added := s.catalog.AddAll(tracks)
	logger.Info("stored tracks loaded",
		logger.Int("stored", len(tracks)),
		logger.Int("added", len(added)))
}

// Ingest parses an uploaded audio file, persists it best-effort and adds
// it to the catalog.
func (s *Service) Ingest(ctx context.Context, filename string, payload io.Reader) (model.Track, error) {
	if !IsAudioFile(filename) {
		return model.Track{}, fmt.Errorf("not an audio file: %s", filename)
	}

	data, err := io.ReadAll(payload)
	if err != nil {
		return model.Track{}, fmt.Errorf("failed to read upload %s: %w", filename, err)
	}

	track := BuildTrack(filename, data)

	// Persist first so this session can mint a playable handle. A store
	// failure still leaves the track in the catalog for the session.
	if err := s.store.Save(ctx, &track, bytes.NewReader(data), int64(len(data))); err != nil {
		logger.Warn("failed to persist upload, keeping it in memory only",
			logger.ErrorField(err),
			logger.String("file", filename))
	} else if handle, err := s.store.Handle(ctx, track.ID); err != nil {
		logger.Warn("failed to mint handle for upload",
			logger.ErrorField(err),
			logger.String("id", track.ID))
	} else {
		track.StreamURL = handle
	}

	if err := s.catalog.Add(track); err != nil {
		return model.Track{}, fmt.Errorf("failed to add upload to catalog: %w", err)
	}

	logger.Info("track ingested",
		logger.String("id", track.ID),
		logger.String("title", track.Title),
		logger.String("artist", track.Artist),
		logger.String("genre", track.Genre))
	return track, nil
}

// Delete removes a track from the catalog and, for local tracks, releases
// the persisted payload.
func (s *Service) Delete(ctx context.Context, id string) error {
	track, ok := s.catalog.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	if err := s.catalog.Remove(id); err != nil {
		return err
	}
	if track.Source.Persistable() {
		if err := s.store.Delete(ctx, id); err != nil {
			logger.Warn("failed to delete persisted track",
				logger.ErrorField(err),
				logger.String("id", id))
		}
	}
	return nil
}

// ToggleLike flips the liked flag and mirrors it to the store for local
// tracks.
func (s *Service) ToggleLike(ctx context.Context, id string) (model.Track, error) {
	track, err := s.catalog.ToggleLike(id)
	if err != nil {
		return model.Track{}, err
	}
	if track.Source.Persistable() {
		if err := s.store.Update(ctx, &track); err != nil {
			logger.Warn("failed to persist like toggle",
				logger.ErrorField(err),
				logger.String("id", id))
		}
	}
	return track, nil
}

// SaveEdit applies user metadata edits and mirrors them to the store for
// local tracks.
func (s *Service) SaveEdit(ctx context.Context, id, title, artist, genre, artURL string) (model.Track, error) {
	track, err := s.catalog.Apply(id, title, artist, genre, artURL)
	if err != nil {
		return model.Track{}, err
	}
	if track.Source.Persistable() {
		if err := s.store.Update(ctx, &track); err != nil {
			logger.Warn("failed to persist metadata edit",
				logger.ErrorField(err),
				logger.String("id", id))
		}
	}
	return track, nil
}
