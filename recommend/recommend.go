// Package recommend derives a ranked track selection from the catalog and
// the session play history. Derivations are pure: inputs are never mutated
// and results are fully recomputed on every call.
package recommend

import (
	"math/rand"

	"github.com/Zianiwarhead/MyMusicApp/model"
)

// Options tunes the derivation.
type Options struct {
	// HistoryWeight is how many catalog occurrences one history occurrence
	// of a genre is worth. History signals intent; catalog presence alone
	// is weaker.
	HistoryWeight int
	// Limit bounds the number of returned tracks.
	Limit int
}

// DefaultOptions mirrors the product defaults.
func DefaultOptions() Options {
	return Options{HistoryWeight: 3, Limit: 6}
}

// Pool returns the deterministic candidate pool: tracks matching the
// top-weighted genre(s), excluding the current track, falling back to the
// whole catalog (minus current) when no genre matches.
func Pool(tracks []model.Track, history []string, currentID string, opts Options) []model.Track {
	if opts.HistoryWeight <= 0 {
		opts.HistoryWeight = 1
	}

	weights := make(map[string]int)
	for _, t := range tracks {
		if t.Genre != "" {
			weights[t.Genre]++
		}
	}
	for _, g := range history {
		if g != "" {
			weights[g] += opts.HistoryWeight
		}
	}

	max := 0
	for _, w := range weights {
		if w > max {
			max = w
		}
	}
	top := make(map[string]bool)
	for g, w := range weights {
		if w == max && max > 0 {
			top[g] = true
		}
	}

	pool := make([]model.Track, 0, len(tracks))
	for _, t := range tracks {
		if t.ID == currentID {
			continue
		}
		if top[t.Genre] {
			pool = append(pool, t)
		}
	}
	if len(pool) > 0 {
		return pool
	}

	// No genre matched: fall back to the full catalog minus current.
	for _, t := range tracks {
		if t.ID != currentID {
			pool = append(pool, t)
		}
	}
	return pool
}

// Tracks returns a bounded, randomly sampled selection from the candidate
// pool. The pool is deterministic for given inputs; the sampled order is
// intentionally not reproducible between calls.
func Tracks(tracks []model.Track, history []string, currentID string, opts Options) []model.Track {
	pool := Pool(tracks, history, currentID, opts)
	if len(pool) == 0 {
		return nil
	}

	sampled := make([]model.Track, len(pool))
	copy(sampled, pool)
	rand.Shuffle(len(sampled), func(i, j int) {
		sampled[i], sampled[j] = sampled[j], sampled[i]
	})

	if opts.Limit > 0 && len(sampled) > opts.Limit {
		sampled = sampled[:opts.Limit]
	}
	return sampled
}
