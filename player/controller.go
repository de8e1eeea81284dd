package player

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/Zianiwarhead/MyMusicApp/catalog"
	"github.com/Zianiwarhead/MyMusicApp/logger"
	"github.com/Zianiwarhead/MyMusicApp/model"
)

// radioLyricsPlaceholder is shown instead of fetched lyrics for live streams.
const radioLyricsPlaceholder = "Live Radio Station"

// lyricsTimeout bounds the fire-and-forget lyrics lookup.
const lyricsTimeout = 10 * time.Second

// LyricsProvider resolves lyrics for a track. Absence is reported as
// (nil, nil), not as an error.
type LyricsProvider interface {
	Lookup(ctx context.Context, artist, title string) (*model.LyricsResult, error)
}

// StateListener receives a state snapshot after every transport transition.
type StateListener func(model.PlayerState)

// Options tunes the controller.
type Options struct {
	// PrevRestartThreshold is the elapsed time in seconds past which
	// "previous" restarts the current track instead of changing track.
	PrevRestartThreshold float64
}

// Controller owns the playback cursor: which track is current, whether it
// is playing, elapsed/duration, volume and the advance policy. It is the
// only code that talks to the MediaPlayer; every operation funnels through
// one mutex so no two call sites race on the primitive.
type Controller struct {
	mu sync.Mutex

	media   MediaPlayer
	catalog *catalog.Catalog
	history *catalog.History
	lyrics  LyricsProvider

	currentID string
	current   model.Track // last known copy, kept in case the track is removed mid-play
	playing   bool
	elapsed   float64
	duration  float64
	volume    float64
	mode      model.PlaybackMode

	// loadedSrc is the source the primitive was last told to load. A new
	// load is only issued when the source identity actually changes.
	loadedSrc string

	lyricsText string

	threshold float64

	listeners []StateListener
}

// NewController wires the controller to its collaborators. The media
// primitive and lyrics provider are injected so they can be substituted in
// tests; lyrics may be nil to disable enrichment.
func NewController(media MediaPlayer, cat *catalog.Catalog, hist *catalog.History, lyrics LyricsProvider, opts Options) *Controller {
	threshold := opts.PrevRestartThreshold
	if threshold <= 0 {
		threshold = 3
	}
	return &Controller{
		media:     media,
		catalog:   cat,
		history:   hist,
		lyrics:    lyrics,
		volume:    1,
		mode:      model.ModeNormal,
		threshold: threshold,
	}
}

// SetMedia swaps the playback primitive, for example when a bridge client
// reconnects. The transport state survives; the new primitive is told to
// load the current source.
func (c *Controller) SetMedia(media MediaPlayer) {
	c.mu.Lock()
	c.media = media
	c.loadedSrc = ""
	c.media.SetVolume(c.volume)
	if c.currentID != "" && c.current.Playable() {
		c.media.Load(c.current.StreamURL)
		c.loadedSrc = c.current.StreamURL
		if c.playing {
			if err := c.media.Play(); err != nil {
				logger.Warn("playback start rejected after media swap", logger.ErrorField(err))
				c.playing = false
			}
		}
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Subscribe registers a listener for state snapshots.
func (c *Controller) Subscribe(fn StateListener) {
	c.mu.Lock()
	c.listeners = append(c.listeners, fn)
	c.mu.Unlock()
}

// Play selects a track. Selecting the track that is already current is
// equivalent to TogglePlay, not a reload.
func (c *Controller) Play(track model.Track) {
	c.mu.Lock()
	if c.currentID != "" && c.currentID == track.ID {
		c.togglePlayLocked()
	} else {
		c.startLocked(track)
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// PlayID selects a track by catalog ID. Unknown IDs are ignored.
func (c *Controller) PlayID(id string) {
	track, ok := c.catalog.Get(id)
	if !ok {
		logger.Warn("play requested for unknown track", logger.String("id", id))
		return
	}
	c.Play(track)
}

// TogglePlay flips playing. With no track loaded it is a no-op.
func (c *Controller) TogglePlay() {
	c.mu.Lock()
	c.togglePlayLocked()
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Seek jumps to an absolute position. Only valid when the duration is
// known and finite; live streams ignore it. The elapsed time is updated
// optimistically before the primitive confirms.
func (c *Controller) Seek(seconds float64) {
	c.mu.Lock()
	if c.currentID == "" || c.duration <= 0 {
		c.mu.Unlock()
		return
	}
	seconds = clamp(seconds, 0, c.duration)
	c.elapsed = seconds
	c.media.Seek(seconds)
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// SetVolume clamps the level into [0, 1] and applies it immediately.
// Playing state is unaffected.
func (c *Controller) SetVolume(level float64) {
	c.mu.Lock()
	c.volume = clamp(level, 0, 1)
	c.media.SetVolume(c.volume)
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Next advances to the next track per the current policy.
func (c *Controller) Next() {
	c.mu.Lock()
	c.nextLocked()
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// Previous moves to the previous track, or restarts the current one when
// more than the configured threshold has already played.
func (c *Controller) Previous() {
	c.mu.Lock()
	if c.currentID == "" {
		c.mu.Unlock()
		return
	}
	if c.elapsed >= c.threshold {
		// Barely-started convention: restart rather than change track.
		c.elapsed = 0
		if c.current.Source.Seekable() {
			c.media.Seek(0)
		}
	} else {
		idx := c.catalog.IndexOf(c.currentID)
		n := c.catalog.Len()
		if n > 0 {
			prev := n - 1
			if idx > 0 {
				prev = idx - 1
			}
			if track, ok := c.catalog.At(prev); ok {
				c.startLocked(track)
			}
		}
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// CycleMode steps the advance policy:
// normal -> shuffle -> repeat_list -> repeat_one -> normal.
// Current playback is unaffected.
func (c *Controller) CycleMode() model.PlaybackMode {
	c.mu.Lock()
	c.mode = c.mode.Next()
	mode := c.mode
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
	return mode
}

// State returns a snapshot of the transport.
func (c *Controller) State() model.PlayerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// HandleMetadata is called by the primitive when source metadata arrives.
// Non-finite durations (live streams) are reported as unknown.
func (c *Controller) HandleMetadata(duration float64) {
	c.mu.Lock()
	if math.IsNaN(duration) || math.IsInf(duration, 0) || duration < 0 {
		c.duration = 0
	} else {
		c.duration = duration
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// HandleProgress is called by the primitive as playback time advances.
// Progress against an unknown duration (live streams) is not tracked.
func (c *Controller) HandleProgress(seconds float64) {
	c.mu.Lock()
	if c.currentID == "" || c.duration <= 0 {
		c.mu.Unlock()
		return
	}
	c.elapsed = clamp(seconds, 0, c.duration)
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// HandleEnded executes the advance policy when the primitive reports a
// natural end.
func (c *Controller) HandleEnded() {
	c.mu.Lock()
	if c.currentID == "" {
		c.mu.Unlock()
		return
	}
	c.history.Append(c.current.Genre)

	switch c.mode {
	case model.ModeRepeatOne:
		c.elapsed = 0
		c.media.Seek(0)
		if err := c.media.Play(); err != nil {
			logger.Warn("repeat restart rejected", logger.ErrorField(err))
			c.playing = false
		}
	case model.ModeRepeatAll, model.ModeShuffle:
		c.nextLocked()
	default:
		idx := c.catalog.IndexOf(c.currentID)
		if idx >= 0 && idx == c.catalog.Len()-1 {
			// End of the library: stop instead of wrapping.
			c.playing = false
			c.elapsed = 0
		} else {
			c.nextLocked()
		}
	}
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// HandleError is called when the source failed to load or decode. The
// transport stays paused; the session carries on.
func (c *Controller) HandleError(err error) {
	c.mu.Lock()
	logger.Warn("media source error",
		logger.ErrorField(err),
		logger.String("track", c.currentID))
	c.playing = false
	st := c.stateLocked()
	c.mu.Unlock()
	c.notify(st)
}

// --- internals, lock held ---

func (c *Controller) togglePlayLocked() {
	if c.currentID == "" {
		return
	}
	if c.playing {
		c.playing = false
		c.media.Pause()
		return
	}
	if !c.current.Playable() {
		return
	}
	if err := c.media.Play(); err != nil {
		logger.Warn("playback start rejected", logger.ErrorField(err), logger.String("track", c.currentID))
		c.playing = false
		return
	}
	c.playing = true
}

// startLocked re-points the cursor to a new track and commands the
// primitive. Playing reflects intent until the primitive reports ready.
func (c *Controller) startLocked(track model.Track) {
	c.currentID = track.ID
	c.current = track
	c.elapsed = 0
	c.duration = 0
	c.lyricsText = ""
	c.history.Append(track.Genre)
	c.catalog.TouchPlayed(track.ID, time.Now())

	if !track.Playable() {
		// Metadata-only placeholder: cursor moves, audio stops.
		c.playing = false
		c.media.Unload()
		c.loadedSrc = ""
		return
	}

	if track.StreamURL != c.loadedSrc {
		c.media.Load(track.StreamURL)
		c.loadedSrc = track.StreamURL
	}
	if err := c.media.Play(); err != nil {
		logger.Warn("playback start rejected", logger.ErrorField(err), logger.String("track", track.ID))
		c.playing = false
	} else {
		c.playing = true
	}

	if track.Source == model.SourceRadio {
		c.lyricsText = radioLyricsPlaceholder
	} else {
		c.fetchLyricsAsync(track)
	}
}

func (c *Controller) nextLocked() {
	n := c.catalog.Len()
	if n == 0 || c.currentID == "" {
		return
	}

	if c.mode == model.ModeShuffle {
		candidates := make([]model.Track, 0, n)
		for _, t := range c.catalog.All() {
			if t.ID != c.currentID {
				candidates = append(candidates, t)
			}
		}
		if len(candidates) == 0 {
			return
		}
		c.startLocked(candidates[rand.Intn(len(candidates))])
		return
	}

	idx := c.catalog.IndexOf(c.currentID)
	next := 0
	if idx >= 0 && idx < n-1 {
		next = idx + 1
	}
	if track, ok := c.catalog.At(next); ok {
		c.startLocked(track)
	}
}

// fetchLyricsAsync starts a fire-and-forget lyrics lookup keyed by track
// ID. A result that arrives after the cursor has moved on is discarded,
// never applied to the now-current track.
func (c *Controller) fetchLyricsAsync(track model.Track) {
	if c.lyrics == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), lyricsTimeout)
		defer cancel()

		res, err := c.lyrics.Lookup(ctx, track.Artist, track.Title)
		if err != nil {
			logger.Debug("lyrics lookup failed",
				logger.ErrorField(err),
				logger.String("track", track.ID))
			return
		}
		if res == nil {
			return
		}
		text := res.Text()
		if text == "" {
			return
		}

		c.mu.Lock()
		if c.currentID != track.ID {
			// Stale arrival for a track that is no longer current.
			c.mu.Unlock()
			return
		}
		c.lyricsText = text
		st := c.stateLocked()
		c.mu.Unlock()

		c.catalog.SetLyrics(track.ID, text)
		c.notify(st)
	}()
}

// stateLocked builds a snapshot. The current track is resolved through the
// catalog so like-toggles and edits show up identically in the library and
// the now-playing view.
func (c *Controller) stateLocked() model.PlayerState {
	st := model.PlayerState{
		Playing:  c.playing,
		Elapsed:  c.elapsed,
		Duration: c.duration,
		Volume:   c.volume,
		Mode:     c.mode,
		Lyrics:   c.lyricsText,
	}
	if c.currentID != "" {
		track := c.current
		if fresh, ok := c.catalog.Get(c.currentID); ok {
			track = fresh
		}
		st.Track = &track
	}
	return st
}

func (c *Controller) notify(st model.PlayerState) {
	c.mu.Lock()
	listeners := make([]StateListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(st)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
