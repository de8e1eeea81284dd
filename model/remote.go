package model

// Station is one entry from the radio directory.
type Station struct {
	StationUUID string `json:"stationuuid"`
	Name        string `json:"name"`
	Tags        string `json:"tags"`
	Favicon     string `json:"favicon"`
	URLResolved string `json:"url_resolved"`
}

// LyricsResult is the lyrics lookup response. Both fields may be empty;
// that is a normal outcome, not an error.
type LyricsResult struct {
	PlainLyrics  string `json:"plainLyrics"`
	SyncedLyrics string `json:"syncedLyrics"`
}

// Text returns the preferred lyrics text: plain first, synced as fallback.
func (l *LyricsResult) Text() string {
	if l == nil {
		return ""
	}
	if l.PlainLyrics != "" {
		return l.PlainLyrics
	}
	return l.SyncedLyrics
}
