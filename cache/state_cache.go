package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// stateKey holds the most recent player-state snapshot so a reconnecting
// UI can paint the transport before the first live broadcast arrives.
const stateKey = "player:state"

// stateTTL expires snapshots from sessions that ended without cleanup.
const stateTTL = 24 * time.Hour

// SetPlayerState caches the latest transport snapshot, best effort.
func SetPlayerState(ctx context.Context, state model.PlayerState) {
	if RedisClient == nil {
		return
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return
	}
	RedisClient.Set(ctx, stateKey, raw, stateTTL)
}

// GetPlayerState returns the cached snapshot, or (nil, false) on a miss.
func GetPlayerState(ctx context.Context) (*model.PlayerState, bool) {
	if RedisClient == nil {
		return nil, false
	}
	raw, err := RedisClient.Get(ctx, stateKey).Result()
	if err != nil {
		return nil, false
	}
	var state model.PlayerState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, false
	}
	return &state, true
}
