package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// lyricsTTL keeps lyrics around long enough to cover repeated plays
// without pinning stale results forever.
const lyricsTTL = 7 * 24 * time.Hour

// lyricsKey builds the cache key for an artist/title pair.
func lyricsKey(artist, title string) string {
	return fmt.Sprintf("lyrics:%s|%s", strings.ToLower(artist), strings.ToLower(title))
}

// GetLyrics returns a cached lyrics result, or (nil, false) on a miss.
// A cached empty result counts as a hit: absence of lyrics is a normal
// outcome worth remembering.
func GetLyrics(ctx context.Context, artist, title string) (*model.LyricsResult, bool) {
	if RedisClient == nil {
		return nil, false
	}

	raw, err := RedisClient.Get(ctx, lyricsKey(artist, title)).Result()
	if err != nil {
		// redis.Nil is an ordinary miss.
		if err != redis.Nil {
			return nil, false
		}
		return nil, false
	}

	var result model.LyricsResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return &result, true
}

// SetLyrics caches a lyrics result. Failures are swallowed; the cache is
// an optimization, not a dependency.
func SetLyrics(ctx context.Context, artist, title string, result *model.LyricsResult) {
	if RedisClient == nil || result == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}
	RedisClient.Set(ctx, lyricsKey(artist, title), raw, lyricsTTL)
}
