package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Zianiwarhead/MyMusicApp/cache"
	"github.com/Zianiwarhead/MyMusicApp/catalog"
	"github.com/Zianiwarhead/MyMusicApp/config"
	"github.com/Zianiwarhead/MyMusicApp/db"
	"github.com/Zianiwarhead/MyMusicApp/library"
	"github.com/Zianiwarhead/MyMusicApp/logger"
	"github.com/Zianiwarhead/MyMusicApp/lyrics"
	"github.com/Zianiwarhead/MyMusicApp/model"
	"github.com/Zianiwarhead/MyMusicApp/player"
	"github.com/Zianiwarhead/MyMusicApp/radio"
	"github.com/Zianiwarhead/MyMusicApp/store"
)

// Start boots the daemon: configuration, logging, backing services, the
// transport controller and the HTTP/WebSocket surface.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.LogLevel(cfg.LogLevel),
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAgeDays,
		Compress:   true,
	})
	logger.Info("starting music daemon", logger.String("addr", cfg.HTTPAddr))

	if err := cache.ConnectRedis(cfg); err != nil {
		logger.Warn("redis unavailable, lyric and state caching disabled",
			logger.ErrorField(err))
	}

	trackStore := openStore(cfg)

	cat := catalog.New()
	cat.AddAll(catalog.SeedTracks())
	hist := catalog.NewHistory()

	lib := library.NewService(cat, trackStore)
	lib.LoadStored(context.Background())

	radioClient := radio.NewClient(cfg.RadioAPIURL)
	lyricsClient := lyrics.NewClient(cfg.LyricsAPIURL)

	hub := NewHub()
	bridge := NewBridgeMediaPlayer(hub)
	controller := player.NewController(bridge, cat, hist, lyricsClient, player.Options{
		PrevRestartThreshold: cfg.PrevRestartThreshold,
	})
	hub.SetEvents(controller)
	hub.SetOnBridgeChange(func(connected bool) {
		if connected {
			controller.SetMedia(bridge)
			return
		}
		// No sink means nothing is audible; keep the cursor, stop the clock.
		controller.SetMedia(player.NopMediaPlayer{})
		controller.HandleError(errors.New("bridge disconnected"))
	})
	controller.Subscribe(func(state model.PlayerState) {
		hub.BroadcastState(state)
		cache.SetPlayerState(context.Background(), state)
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.WatchDir != "" {
		go func() {
			if err := lib.WatchFolder(ctx, cfg.WatchDir); err != nil {
				logger.Warn("watch folder disabled",
					logger.ErrorField(err),
					logger.String("dir", cfg.WatchDir))
			}
		}()
	}

	api := NewAPIHandler(cfg, cat, hist, lib, controller, radioClient, lyricsClient, hub)
	router := newRouter(api, hub)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      corsMiddleware(router),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("http server listening", logger.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server failed", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", logger.ErrorField(err))
	}
	if err := cache.CloseRedis(); err != nil {
		logger.Warn("failed to close redis", logger.ErrorField(err))
	}
	if err := db.CloseGormDB(); err != nil {
		logger.Warn("failed to close database", logger.ErrorField(err))
	}
	logger.Info("daemon stopped")
}

// openStore connects the MySQL/MinIO gateway and falls back to the
// in-memory store when either backend is unreachable. Local files imported
// on the fallback store do not survive a restart.
func openStore(cfg *config.Config) store.Store {
	if err := db.ConnectGormDB(cfg); err != nil {
		logger.Warn("database unavailable, using in-memory track store",
			logger.ErrorField(err))
		return store.NewMemoryStore()
	}

	blobs, err := store.NewMinioClient(cfg)
	if err != nil {
		logger.Warn("object storage unavailable, using in-memory track store",
			logger.ErrorField(err))
		return store.NewMemoryStore()
	}

	gateway, err := store.NewGatewayStore(db.GormDB, blobs, cfg.MinioBucket)
	if err != nil {
		logger.Warn("store migration failed, using in-memory track store",
			logger.ErrorField(err))
		return store.NewMemoryStore()
	}
	return gateway
}

func newRouter(api *APIHandler, hub *Hub) *mux.Router {
	router := mux.NewRouter()

	router.HandleFunc("/ws", hub.ServeWS)

	apiRouter := router.PathPrefix("/api").Subrouter()

	apiRouter.HandleFunc("/tracks", api.GetTracksHandler).Methods("GET")
	apiRouter.HandleFunc("/tracks", api.UploadTracksHandler).Methods("POST")
	apiRouter.HandleFunc("/tracks/{id}", api.EditTrackHandler).Methods("PUT")
	apiRouter.HandleFunc("/tracks/{id}", api.DeleteTrackHandler).Methods("DELETE")
	apiRouter.HandleFunc("/tracks/{id}/like", api.ToggleLikeHandler).Methods("POST")

	apiRouter.HandleFunc("/recommendations", api.RecommendationsHandler).Methods("GET")
	apiRouter.HandleFunc("/radio/stations", api.RadioStationsHandler).Methods("GET")
	apiRouter.HandleFunc("/lyrics", api.LyricsHandler).Methods("GET")

	apiRouter.HandleFunc("/player", api.PlayerStateHandler).Methods("GET")
	apiRouter.HandleFunc("/player/play", api.PlayHandler).Methods("POST")
	apiRouter.HandleFunc("/player/toggle", api.TogglePlayHandler).Methods("POST")
	apiRouter.HandleFunc("/player/seek", api.SeekHandler).Methods("POST")
	apiRouter.HandleFunc("/player/volume", api.VolumeHandler).Methods("POST")
	apiRouter.HandleFunc("/player/next", api.NextHandler).Methods("POST")
	apiRouter.HandleFunc("/player/prev", api.PreviousHandler).Methods("POST")
	apiRouter.HandleFunc("/player/mode", api.CycleModeHandler).Methods("POST")
	apiRouter.HandleFunc("/player/frequencies", api.FrequenciesHandler).Methods("GET")

	return router
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
