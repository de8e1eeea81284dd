package library

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/Zianiwarhead/MyMusicApp/logger"
)

// settleDelay gives the writer time to finish the file after the create
// event fires.
const settleDelay = 500 * time.Millisecond

// WatchFolder ingests audio files dropped into dir until ctx is done.
// It is the daemon's drag-and-drop: copy a file in, it shows up in the
// library.
func (s *Service) WatchFolder(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	logger.Info("watching folder for audio files", logger.String("dir", dir))

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !event.Has(fsnotify.Create) || !IsAudioFile(event.Name) {
					continue
				}
				path := event.Name
				go func() {
					time.Sleep(settleDelay)
					s.ingestPath(ctx, path)
				}()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("watch error", logger.ErrorField(err))
			}
		}
	}()
	return nil
}

func (s *Service) ingestPath(ctx context.Context, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Warn("failed to open watched file",
			logger.ErrorField(err),
			logger.String("path", path))
		return
	}
	defer f.Close()

	if _, err := s.Ingest(ctx, path, f); err != nil {
		logger.Warn("failed to ingest watched file",
			logger.ErrorField(err),
			logger.String("path", path))
	}
}
