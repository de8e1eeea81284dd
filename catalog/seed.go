package catalog

import "github.com/Zianiwarhead/MyMusicApp/model"

// SeedTracks returns the demo library shown before the user uploads
// anything. Seed entries are metadata-only placeholders with no audio
// source attached.
func SeedTracks() []model.Track {
	return []model.Track{
		{ID: "1", Title: "Flower Boy", Artist: "Tyler, The Creator", Genre: "Hip-Hop", ArtURL: "https://upload.wikimedia.org/wikipedia/en/c/c3/Tyler%2C_the_Creator_-_Flower_Boy.png"},
		{ID: "2", Title: "Currents", Artist: "Tame Impala", Genre: "Psychedelic Rock", ArtURL: "https://upload.wikimedia.org/wikipedia/en/9/9b/Tame_Impala_-_Currents.png"},
		{ID: "3", Title: "Starboy", Artist: "The Weeknd", Genre: "R&B", ArtURL: "https://upload.wikimedia.org/wikipedia/en/3/39/The_Weeknd_-_Starboy.png"},
		{ID: "4", Title: "After Hours", Artist: "The Weeknd", Genre: "R&B", ArtURL: "https://upload.wikimedia.org/wikipedia/en/c/c1/The_Weeknd_-_After_Hours.png"},
		{ID: "5", Title: "Random Access Memories", Artist: "Daft Punk", Genre: "Electronic", ArtURL: "https://upload.wikimedia.org/wikipedia/en/a/a7/Random_Access_Memories.jpg"},
	}
}
