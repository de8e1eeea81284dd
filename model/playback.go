package model

// PlaybackMode is the advance policy applied when a track ends or the user
// skips.
type PlaybackMode string

const (
	ModeNormal    PlaybackMode = "normal"
	ModeShuffle   PlaybackMode = "shuffle"
	ModeRepeatAll PlaybackMode = "repeat_list"
	ModeRepeatOne PlaybackMode = "repeat_one"
)

// Next cycles through the modes in a fixed order:
// normal -> shuffle -> repeat_list -> repeat_one -> normal.
func (m PlaybackMode) Next() PlaybackMode {
	switch m {
	case ModeNormal:
		return ModeShuffle
	case ModeShuffle:
		return ModeRepeatAll
	case ModeRepeatAll:
		return ModeRepeatOne
	default:
		return ModeNormal
	}
}

// PlayerState is a snapshot of the transport for API clients and WebSocket
// observers. Duration is 0 for live radio and for tracks whose metadata has
// not arrived yet.
type PlayerState struct {
	Track    *Track       `json:"track"`
	Playing  bool         `json:"playing"`
	Elapsed  float64      `json:"elapsed"`
	Duration float64      `json:"duration"`
	Volume   float64      `json:"volume"`
	Mode     PlaybackMode `json:"mode"`
	Lyrics   string       `json:"lyrics,omitempty"`
}
