package server

import (
	"github.com/Zianiwarhead/MyMusicApp/logger"
)

// bridgeMediaPlayer implements player.MediaPlayer over the WebSocket
// bridge: the connected client owns the actual audio output and mirrors
// the commands onto it.
type bridgeMediaPlayer struct {
	hub *Hub
}

// NewBridgeMediaPlayer wraps the hub as the playback primitive.
func NewBridgeMediaPlayer(hub *Hub) *bridgeMediaPlayer {
	return &bridgeMediaPlayer{hub: hub}
}

func (b *bridgeMediaPlayer) Load(src string) {
	if err := b.hub.SendCommand(MsgLoad, CommandData{Src: src}); err != nil {
		logger.Warn("load command dropped", logger.ErrorField(err))
	}
}

// Play fails when no bridge is attached, which the controller treats like
// a rejected playback start.
func (b *bridgeMediaPlayer) Play() error {
	return b.hub.SendCommand(MsgPlay, CommandData{})
}

func (b *bridgeMediaPlayer) Pause() {
	if err := b.hub.SendCommand(MsgPause, CommandData{}); err != nil {
		logger.Debug("pause command dropped", logger.ErrorField(err))
	}
}

func (b *bridgeMediaPlayer) Seek(seconds float64) {
	if err := b.hub.SendCommand(MsgSeek, CommandData{Position: seconds}); err != nil {
		logger.Debug("seek command dropped", logger.ErrorField(err))
	}
}

func (b *bridgeMediaPlayer) SetVolume(level float64) {
	if err := b.hub.SendCommand(MsgVolume, CommandData{Level: level}); err != nil {
		logger.Debug("volume command dropped", logger.ErrorField(err))
	}
}

func (b *bridgeMediaPlayer) Unload() {
	if err := b.hub.SendCommand(MsgUnload, CommandData{}); err != nil {
		logger.Debug("unload command dropped", logger.ErrorField(err))
	}
}
