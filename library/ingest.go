package library

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2"
	"github.com/google/uuid"

	"github.com/Zianiwarhead/MyMusicApp/logger"
	"github.com/Zianiwarhead/MyMusicApp/model"
)

// defaultArtist is used when the filename gives no artist hint.
const defaultArtist = "Local Artist"

// defaultGenre is used when neither tags nor the filename suggest one.
const defaultGenre = "Pop"

var audioExtensions = map[string]bool{
	".mp3":  true,
	".m4a":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".aac":  true,
}

// IsAudioFile reports whether the filename looks like an audio upload.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// BuildTrack derives a local track from an uploaded file. Embedded ID3
// metadata takes precedence; the filename convention "Artist - Title.ext"
// is the fallback, and keyword sniffing fills in the genre.
func BuildTrack(filename string, payload []byte) model.Track {
	title, artist := splitFilename(filename)
	genre := detectGenre(filename)

	if tag, err := id3v2.ParseReader(bytes.NewReader(payload), id3v2.Options{Parse: true}); err == nil {
		if t := strings.TrimSpace(tag.Title()); t != "" {
			title = t
		}
		if a := strings.TrimSpace(tag.Artist()); a != "" {
			artist = a
		}
		if g := strings.TrimSpace(tag.Genre()); g != "" {
			genre = g
		}
	} else {
		logger.Debug("no parsable tags, using filename metadata",
			logger.String("file", filename),
			logger.ErrorField(err))
	}

	return model.Track{
		ID:     "local_" + uuid.NewString(),
		Title:  title,
		Artist: artist,
		Genre:  genre,
		ArtURL: GenerateOfflineArt(title),
		Source: model.SourceLocal,
	}
}

// splitFilename applies the "Artist - Title" naming convention, falling
// back to the whole basename as title.
func splitFilename(filename string) (title, artist string) {
	base := filepath.Base(filename)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	parts := strings.Split(base, "-")
	if len(parts) > 1 {
		return strings.TrimSpace(parts[1]), strings.TrimSpace(parts[0])
	}
	return strings.TrimSpace(parts[0]), defaultArtist
}

// detectGenre sniffs genre keywords out of the filename.
func detectGenre(filename string) string {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "lofi"):
		return "Lo-Fi"
	case strings.Contains(name, "phonk"):
		return "Phonk"
	case strings.Contains(name, "rock"):
		return "Rock"
	case strings.Contains(name, "hip"):
		return "Hip-Hop"
	case strings.Contains(name, "electronic"):
		return "Electronic"
	default:
		return defaultGenre
	}
}

var artColors = []string{"#f43f5e", "#f97316", "#eab308", "#22c55e", "#3b82f6", "#8b5cf6", "#d946ef"}

// GenerateOfflineArt renders placeholder cover art as an inline SVG data
// URL: a colored square with the first letter of the seed.
func GenerateOfflineArt(seed string) string {
	bg := artColors[len(seed)%len(artColors)]
	initial := "?"
	if seed != "" {
		// First rune, not first byte: titles can start multibyte.
		initial = strings.ToUpper(string([]rune(seed)[0]))
	}
	svg := fmt.Sprintf(`<svg width="100" height="100" viewBox="0 0 100 100" xmlns="http://www.w3.org/2000/svg"><rect width="100" height="100" fill="%s"/><text x="50" y="50" font-family="sans-serif" font-size="50" font-weight="bold" fill="white" text-anchor="middle" dy=".35em">%s</text></svg>`, bg, initial)
	return "data:image/svg+xml;base64," + base64.StdEncoding.EncodeToString([]byte(svg))
}
