package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"gorm.io/gorm"

	"github.com/Zianiwarhead/MyMusicApp/logger"
	"github.com/Zianiwarhead/MyMusicApp/model"
)

// handleExpiry is how long a presigned playable handle stays valid. Every
// session re-derives its handles, so this only needs to outlive a session.
const handleExpiry = 12 * time.Hour

// gatewayStore keeps metadata rows in MySQL and payload blobs in MinIO.
type gatewayStore struct {
	db     *gorm.DB
	blobs  *minio.Client
	bucket string
}

// NewGatewayStore creates the production store and migrates its schema.
func NewGatewayStore(db *gorm.DB, blobs *minio.Client, bucket string) (Store, error) {
	if err := db.AutoMigrate(&model.StoredTrack{}); err != nil {
		return nil, fmt.Errorf("failed to migrate stored_tracks: %w", err)
	}
	return &gatewayStore{db: db, blobs: blobs, bucket: bucket}, nil
}

func objectKey(id string) string {
	return "tracks/" + id
}

// Save uploads the payload first, then upserts the metadata row. A track
// without a payload is not worth a row.
func (s *gatewayStore) Save(ctx context.Context, track *model.Track, payload io.Reader, size int64) error {
	key := objectKey(track.ID)
	_, err := s.blobs.PutObject(ctx, s.bucket, key, payload, size, minio.PutObjectOptions{
		ContentType: "application/octet-stream",
	})
	if err != nil {
		return fmt.Errorf("failed to store payload for track %s: %w", track.ID, err)
	}
	track.ObjectKey = key

	record := model.StoredTrackFromTrack(track)
	if err := s.db.WithContext(ctx).Save(&record).Error; err != nil {
		return fmt.Errorf("failed to store metadata for track %s: %w", track.ID, err)
	}
	logger.Debug("track persisted", logger.String("id", track.ID), logger.String("key", key))
	return nil
}

// Update rewrites the metadata fields of an existing record. Without a
// prior payload for the ID this is a no-op, matching a like-toggle on a
// track that was never persisted.
func (s *gatewayStore) Update(ctx context.Context, track *model.Track) error {
	var existing model.StoredTrack
	err := s.db.WithContext(ctx).First(&existing, "id = ?", track.ID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up track %s: %w", track.ID, err)
	}

	updates := map[string]interface{}{
		"title":   track.Title,
		"artist":  track.Artist,
		"genre":   track.Genre,
		"art_url": track.ArtURL,
		"liked":   track.Liked,
	}
	if err := s.db.WithContext(ctx).Model(&existing).Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to update metadata for track %s: %w", track.ID, err)
	}
	return nil
}

// LoadAll rehydrates every stored track with a freshly presigned handle.
func (s *gatewayStore) LoadAll(ctx context.Context) ([]model.Track, error) {
	var records []model.StoredTrack
	if err := s.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load stored tracks: %w", err)
	}

	tracks := make([]model.Track, 0, len(records))
	for i := range records {
		record := &records[i]
		handle, err := s.blobs.PresignedGetObject(ctx, s.bucket, record.ObjectKey, handleExpiry, url.Values{})
		if err != nil {
			// A track we cannot mint a handle for is still part of the
			// library; it just is not playable this session.
			logger.Warn("failed to presign payload handle",
				logger.ErrorField(err),
				logger.String("id", record.ID))
			tracks = append(tracks, record.ToTrack(""))
			continue
		}
		tracks = append(tracks, record.ToTrack(handle.String()))
	}
	return tracks, nil
}

// Handle presigns a fresh GET URL for the payload blob.
func (s *gatewayStore) Handle(ctx context.Context, id string) (string, error) {
	handle, err := s.blobs.PresignedGetObject(ctx, s.bucket, objectKey(id), handleExpiry, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign handle for track %s: %w", id, err)
	}
	return handle.String(), nil
}

// Delete removes the metadata row and the payload blob.
func (s *gatewayStore) Delete(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&model.StoredTrack{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete metadata for track %s: %w", id, err)
	}
	if err := s.blobs.RemoveObject(ctx, s.bucket, objectKey(id), minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete payload for track %s: %w", id, err)
	}
	return nil
}
