package spotify

import (
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/moodtune/internal/music"
)

// APIError is a catalog failure that retrying will not fix, such as a bad
// request or an unknown playlist.
type APIError struct {
	Op     string
	Status int // 0 when the response carried no status
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *APIError) Unwrap() error { return e.Err }

// convertFullTrack converts a search or playlist track.
func convertFullTrack(t spotify.FullTrack) music.Track {
	track := convertSimpleTrack(t.SimpleTrack)
	track.Album = music.Album{
		Name:   t.Album.Name,
		Images: convertImages(t.Album.Images),
	}
	return track
}

// convertSimpleTrack converts a recommended track. Album artwork is not
// carried over.
func convertSimpleTrack(t spotify.SimpleTrack) music.Track {
	artists := make([]music.Artist, 0, len(t.Artists))
	for _, a := range t.Artists {
		if a.Name == "" {
			continue
		}
		artists = append(artists, music.Artist{Name: a.Name})
	}

	return music.Track{
		ID:         t.ID.String(),
		Name:       t.Name,
		URI:        string(t.URI),
		PreviewURL: t.PreviewURL,
		Artists:    artists,
	}
}

func convertImages(images []spotify.Image) []music.Image {
	if len(images) == 0 {
		return nil
	}
	out := make([]music.Image, 0, len(images))
	for _, img := range images {
		if img.URL == "" {
			continue
		}
		out = append(out, music.Image{
			URL:    img.URL,
			Width:  int(img.Width),
			Height: int(img.Height),
		})
	}
	return out
}
