package server

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/Zianiwarhead/MyMusicApp/cache"
	"github.com/Zianiwarhead/MyMusicApp/catalog"
	"github.com/Zianiwarhead/MyMusicApp/config"
	"github.com/Zianiwarhead/MyMusicApp/library"
	"github.com/Zianiwarhead/MyMusicApp/logger"
	"github.com/Zianiwarhead/MyMusicApp/lyrics"
	"github.com/Zianiwarhead/MyMusicApp/model"
	"github.com/Zianiwarhead/MyMusicApp/player"
	"github.com/Zianiwarhead/MyMusicApp/radio"
	"github.com/Zianiwarhead/MyMusicApp/recommend"
)

// maxUploadSize bounds one upload request.
const maxUploadSize = 200 << 20 // 200 MB

// APIHandler serves the library and transport API.
type APIHandler struct {
	cfg        *config.Config
	catalog    *catalog.Catalog
	history    *catalog.History
	library    *library.Service
	controller *player.Controller
	radio      *radio.Client
	lyrics     *lyrics.Client
	hub        *Hub

	// Radio stations live outside the catalog, like the original radio tab:
	// playable this session, never part of library navigation.
	stationMu sync.RWMutex
	stations  map[string]model.Track

	analyzerOnce sync.Once
	analyzer     *player.Analyzer
}

// NewAPIHandler wires the handler to its collaborators.
func NewAPIHandler(
	cfg *config.Config,
	cat *catalog.Catalog,
	hist *catalog.History,
	lib *library.Service,
	ctrl *player.Controller,
	radioClient *radio.Client,
	lyricsClient *lyrics.Client,
	hub *Hub,
) *APIHandler {
	return &APIHandler{
		cfg:        cfg,
		catalog:    cat,
		history:    hist,
		library:    lib,
		controller: ctrl,
		radio:      radioClient,
		lyrics:     lyricsClient,
		hub:        hub,
		stations:   make(map[string]model.Track),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("failed to encode response", logger.ErrorField(err))
		}
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// GetTracksHandler returns the catalog in order.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.catalog.All())
}

// UploadTracksHandler ingests one or more audio files from a multipart
// form. Files that fail to ingest are skipped, not fatal to the batch.
func (h *APIHandler) UploadTracksHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		respondError(w, http.StatusBadRequest, "no files in upload")
		return
	}

	added := make([]model.Track, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			logger.Warn("failed to open uploaded file",
				logger.ErrorField(err),
				logger.String("file", header.Filename))
			continue
		}
		track, err := h.library.Ingest(r.Context(), header.Filename, f)
		f.Close()
		if err != nil {
			logger.Warn("failed to ingest upload",
				logger.ErrorField(err),
				logger.String("file", header.Filename))
			continue
		}
		added = append(added, track)
	}

	respondJSON(w, http.StatusCreated, added)
}

// DeleteTrackHandler removes a track from the catalog and the store.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.library.Delete(r.Context(), id); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// ToggleLikeHandler flips the liked flag.
func (h *APIHandler) ToggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	track, err := h.library.ToggleLike(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, track)
}

type editRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Genre  string `json:"genre"`
	ArtURL string `json:"artUrl"`
}

// EditTrackHandler applies user metadata edits.
func (h *APIHandler) EditTrackHandler(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	var req editRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid edit payload")
		return
	}
	track, err := h.library.SaveEdit(r.Context(), id, req.Title, req.Artist, req.Genre, req.ArtURL)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// RecommendationsHandler derives the current recommendation set.
func (h *APIHandler) RecommendationsHandler(w http.ResponseWriter, r *http.Request) {
	currentID := ""
	if st := h.controller.State(); st.Track != nil {
		currentID = st.Track.ID
	}
	tracks := recommend.Tracks(h.catalog.All(), h.history.Snapshot(), currentID, recommend.Options{
		HistoryWeight: h.cfg.HistoryWeight,
		Limit:         h.cfg.RecommendLimit,
	})
	respondJSON(w, http.StatusOK, tracks)
}

// RadioStationsHandler fetches stations for a genre tag. Failures surface
// as an empty list; the directory being down is not a session error.
func (h *APIHandler) RadioStationsHandler(w http.ResponseWriter, r *http.Request) {
	tag := r.URL.Query().Get("tag")
	if tag == "" {
		tag = "lofi"
	}

	stations, err := h.radio.StationsByTag(r.Context(), tag, 15)
	if err != nil {
		logger.Warn("failed to fetch radio stations",
			logger.ErrorField(err),
			logger.String("tag", tag))
		respondJSON(w, http.StatusOK, []model.Track{})
		return
	}

	h.stationMu.Lock()
	for _, s := range stations {
		h.stations[s.ID] = s
	}
	h.stationMu.Unlock()

	respondJSON(w, http.StatusOK, stations)
}

// LyricsHandler looks lyrics up directly, outside the playback flow.
func (h *APIHandler) LyricsHandler(w http.ResponseWriter, r *http.Request) {
	artist := r.URL.Query().Get("artist")
	title := r.URL.Query().Get("title")
	if artist == "" || title == "" {
		respondError(w, http.StatusBadRequest, "artist and title are required")
		return
	}

	result, err := h.lyrics.Lookup(r.Context(), artist, title)
	if err != nil {
		logger.Warn("lyrics lookup failed", logger.ErrorField(err))
		respondJSON(w, http.StatusOK, &model.LyricsResult{})
		return
	}
	if result == nil {
		result = &model.LyricsResult{}
	}
	respondJSON(w, http.StatusOK, result)
}

// PlayerStateHandler returns the transport snapshot. A pristine session
// serves the previous run's cached snapshot instead, so a reconnecting UI
// can paint the last known transport before anything plays.
func (h *APIHandler) PlayerStateHandler(w http.ResponseWriter, r *http.Request) {
	st := h.controller.State()
	if st.Track == nil {
		if cached, ok := cache.GetPlayerState(r.Context()); ok {
			// Nothing is audible in this session regardless of what the
			// old one was doing.
			cached.Playing = false
			respondJSON(w, http.StatusOK, cached)
			return
		}
	}
	respondJSON(w, http.StatusOK, st)
}

type playRequest struct {
	ID string `json:"id"`
}

// PlayHandler selects a track by ID, searching the catalog first and the
// fetched radio stations second.
func (h *APIHandler) PlayHandler(w http.ResponseWriter, r *http.Request) {
	var req playRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "track id is required")
		return
	}

	if track, ok := h.catalog.Get(req.ID); ok {
		h.controller.Play(track)
		respondJSON(w, http.StatusOK, h.controller.State())
		return
	}

	h.stationMu.RLock()
	station, ok := h.stations[req.ID]
	h.stationMu.RUnlock()
	if ok {
		h.controller.Play(station)
		respondJSON(w, http.StatusOK, h.controller.State())
		return
	}

	respondError(w, http.StatusNotFound, "unknown track id")
}

// TogglePlayHandler flips play/pause.
func (h *APIHandler) TogglePlayHandler(w http.ResponseWriter, r *http.Request) {
	h.controller.TogglePlay()
	respondJSON(w, http.StatusOK, h.controller.State())
}

type seekRequest struct {
	Position float64 `json:"position"`
}

// SeekHandler jumps to an absolute position.
func (h *APIHandler) SeekHandler(w http.ResponseWriter, r *http.Request) {
	var req seekRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid seek payload")
		return
	}
	h.controller.Seek(req.Position)
	respondJSON(w, http.StatusOK, h.controller.State())
}

type volumeRequest struct {
	Level float64 `json:"level"`
}

// VolumeHandler applies a volume level.
func (h *APIHandler) VolumeHandler(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid volume payload")
		return
	}
	h.controller.SetVolume(req.Level)
	respondJSON(w, http.StatusOK, h.controller.State())
}

// NextHandler skips forward.
func (h *APIHandler) NextHandler(w http.ResponseWriter, r *http.Request) {
	h.controller.Next()
	respondJSON(w, http.StatusOK, h.controller.State())
}

// PreviousHandler skips back or restarts.
func (h *APIHandler) PreviousHandler(w http.ResponseWriter, r *http.Request) {
	h.controller.Previous()
	respondJSON(w, http.StatusOK, h.controller.State())
}

// CycleModeHandler steps the advance policy.
func (h *APIHandler) CycleModeHandler(w http.ResponseWriter, r *http.Request) {
	mode := h.controller.CycleMode()
	respondJSON(w, http.StatusOK, map[string]model.PlaybackMode{"mode": mode})
}

// FrequenciesHandler returns the analyzer's current magnitude bins. The
// analyzer is built on first use, at most once per session; when it could
// not be built, or nothing is playing, the bins are simply absent.
func (h *APIHandler) FrequenciesHandler(w http.ResponseWriter, r *http.Request) {
	h.analyzerOnce.Do(func() {
		analyzer, err := player.NewAnalyzer(h.hub)
		if err != nil {
			logger.Warn("analyzer unavailable", logger.ErrorField(err))
			return
		}
		h.analyzer = analyzer
	})

	if h.analyzer == nil || !h.controller.State().Playing {
		respondJSON(w, http.StatusOK, map[string][]float64{"bins": nil})
		return
	}
	respondJSON(w, http.StatusOK, map[string][]float64{"bins": h.analyzer.Frequencies()})
}
