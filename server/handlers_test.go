package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zianiwarhead/MyMusicApp/catalog"
	"github.com/Zianiwarhead/MyMusicApp/config"
	"github.com/Zianiwarhead/MyMusicApp/library"
	"github.com/Zianiwarhead/MyMusicApp/lyrics"
	"github.com/Zianiwarhead/MyMusicApp/model"
	"github.com/Zianiwarhead/MyMusicApp/player"
	"github.com/Zianiwarhead/MyMusicApp/radio"
	"github.com/Zianiwarhead/MyMusicApp/store"
)

type testEnv struct {
	router  http.Handler
	catalog *catalog.Catalog
	ctrl    *player.Controller
	hub     *Hub
}

func newTestEnv(t *testing.T, tracks ...model.Track) *testEnv {
	t.Helper()
	return newTestEnvWithRadio(t, "http://directory.invalid", tracks...)
}

func newTestEnvWithRadio(t *testing.T, radioURL string, tracks ...model.Track) *testEnv {
	t.Helper()

	cfg := &config.Config{
		PrevRestartThreshold: 3,
		RecommendLimit:       6,
		HistoryWeight:        3,
	}
	cat := catalog.New()
	for _, tr := range tracks {
		require.NoError(t, cat.Add(tr))
	}
	hist := catalog.NewHistory()
	lib := library.NewService(cat, store.NewMemoryStore())

	hub := NewHub()
	ctrl := player.NewController(player.NopMediaPlayer{}, cat, hist, nil, player.Options{})
	hub.SetEvents(ctrl)

	api := NewAPIHandler(cfg, cat, hist, lib, ctrl,
		radio.NewClient(radioURL),
		lyrics.NewClient("http://lyrics.invalid"),
		hub)

	return &testEnv{
		router:  newRouter(api, hub),
		catalog: cat,
		ctrl:    ctrl,
		hub:     hub,
	}
}

func localTrack(id, title, genre string) model.Track {
	return model.Track{
		ID:        id,
		Title:     title,
		Artist:    "Artist",
		Genre:     genre,
		Source:    model.SourceLocal,
		StreamURL: "http://blobs/" + id,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestGetTracks(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"), localTrack("b", "Second", "Jazz"))

	rec := env.do(t, "GET", "/api/tracks", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tracks []model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tracks))
	require.Len(t, tracks, 2)
	assert.Equal(t, "a", tracks[0].ID)
	assert.Equal(t, "b", tracks[1].ID)
}

func TestUploadTrack(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "Uploader - New Song.mp3")
	require.NoError(t, err)
	_, err = part.Write([]byte("fake audio payload"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/tracks", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var added []model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &added))
	require.Len(t, added, 1)
	assert.Equal(t, "New Song", added[0].Title)
	assert.Equal(t, "Uploader", added[0].Artist)
	assert.Equal(t, 1, env.catalog.Len())
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	env := newTestEnv(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/api/tracks", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteTrack(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"))

	rec := env.do(t, "DELETE", "/api/tracks/a", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, env.catalog.Len())

	rec = env.do(t, "DELETE", "/api/tracks/a", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestToggleLike(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"))

	rec := env.do(t, "POST", "/api/tracks/a/like", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var track model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &track))
	assert.True(t, track.Liked)
}

func TestEditTrack(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"))

	rec := env.do(t, "PUT", "/api/tracks/a", map[string]string{
		"title": "Renamed",
		"genre": "Jazz",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var track model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &track))
	assert.Equal(t, "Renamed", track.Title)
	assert.Equal(t, "Artist", track.Artist)
	assert.Equal(t, "Jazz", track.Genre)
}

func TestPlayAndState(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"), localTrack("b", "Second", "Jazz"))

	rec := env.do(t, "POST", "/api/player/play", map[string]string{"id": "a"})
	require.Equal(t, http.StatusOK, rec.Code)

	var state model.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.NotNil(t, state.Track)
	assert.Equal(t, "a", state.Track.ID)
	assert.True(t, state.Playing)

	rec = env.do(t, "GET", "/api/player", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "a", state.Track.ID)
}

func TestPlayerStatePristineSession(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"))

	// Nothing has played and no cached snapshot exists: the live empty
	// state comes back.
	rec := env.do(t, "GET", "/api/player", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var state model.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Nil(t, state.Track)
	assert.False(t, state.Playing)
	assert.Equal(t, float64(1), state.Volume)
}

func TestPlayUnknownID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "POST", "/api/player/play", map[string]string{"id": "ghost"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTransportEndpoints(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"), localTrack("b", "Second", "Jazz"))
	env.do(t, "POST", "/api/player/play", map[string]string{"id": "a"})
	env.ctrl.HandleMetadata(120)

	rec := env.do(t, "POST", "/api/player/seek", map[string]float64{"position": 42})
	require.Equal(t, http.StatusOK, rec.Code)
	var state model.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, float64(42), state.Elapsed)

	rec = env.do(t, "POST", "/api/player/volume", map[string]float64{"level": 0.5})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, 0.5, state.Volume)

	rec = env.do(t, "POST", "/api/player/next", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "b", state.Track.ID)

	rec = env.do(t, "POST", "/api/player/toggle", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.False(t, state.Playing)

	rec = env.do(t, "POST", "/api/player/mode", nil)
	var mode map[string]model.PlaybackMode
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mode))
	assert.Equal(t, model.ModeShuffle, mode["mode"])
}

func TestRecommendationsExcludeCurrent(t *testing.T) {
	env := newTestEnv(t,
		localTrack("a", "First", "Rock"),
		localTrack("b", "Second", "Rock"),
		localTrack("c", "Third", "Rock"),
	)
	env.do(t, "POST", "/api/player/play", map[string]string{"id": "a"})

	rec := env.do(t, "GET", "/api/recommendations", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tracks []model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tracks))
	require.NotEmpty(t, tracks)
	for _, tr := range tracks {
		assert.NotEqual(t, "a", tr.ID)
	}
}

func TestRadioStationsPlayable(t *testing.T) {
	directory := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"stationuuid":"st-1","name":"Chill FM","url_resolved":"http://streams/1"}]`))
	}))
	defer directory.Close()

	env := newTestEnvWithRadio(t, directory.URL)

	rec := env.do(t, "GET", "/api/radio/stations?tag=lofi", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var stations []model.Track
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stations))
	require.Len(t, stations, 1)
	assert.Equal(t, model.SourceRadio, stations[0].Source)

	// A fetched station is playable even though it never joins the catalog.
	rec = env.do(t, "POST", "/api/player/play", map[string]string{"id": "st-1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var state model.PlayerState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	require.NotNil(t, state.Track)
	assert.Equal(t, "st-1", state.Track.ID)
	assert.Equal(t, 0, env.catalog.Len())
}

func TestRadioDirectoryDownIsEmptyList(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/radio/stations?tag=rock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestLyricsRequiresParams(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, "GET", "/api/lyrics?artist=Someone", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFrequenciesAbsentWhenIdle(t *testing.T) {
	env := newTestEnv(t, localTrack("a", "First", "Rock"))

	rec := env.do(t, "GET", "/api/player/frequencies", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string][]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Nil(t, payload["bins"])
}
