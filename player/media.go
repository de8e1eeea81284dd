package player

// MediaPlayer is the single playback primitive the controller commands.
// Exactly one exists per session. Implementations are expected to be
// asynchronous: Load starts fetching the source, Play expresses intent and
// may fail (for example when the sink rejects unattended playback), and the
// media lifecycle is reported back through the controller's Handle* methods.
type MediaPlayer interface {
	// Load points the primitive at a new source. It must not be re-issued
	// for a source that is already loaded or still loading.
	Load(src string)
	// Play resumes or starts playback of the loaded source.
	Play() error
	// Pause suspends playback without unloading the source.
	Pause()
	// Seek jumps to an absolute position in seconds.
	Seek(seconds float64)
	// SetVolume applies a level in [0, 1].
	SetVolume(level float64)
	// Unload detaches the current source and stops playback.
	Unload()
}

// NopMediaPlayer is a MediaPlayer with no sink attached. The daemon runs
// with it until a bridge client connects.
type NopMediaPlayer struct{}

func (NopMediaPlayer) Load(string)       {}
func (NopMediaPlayer) Play() error       { return nil }
func (NopMediaPlayer) Pause()            {}
func (NopMediaPlayer) Seek(float64)      {}
func (NopMediaPlayer) SetVolume(float64) {}
func (NopMediaPlayer) Unload()           {}
