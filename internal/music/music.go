// Package music holds the catalog types shared by search, recommendation
// and the saved playlist store.
package music

// Artist is a credited performer on a track.
type Artist struct {
	Name string `json:"name"`
}

// Image is one rendition of album artwork.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Album is the release a track belongs to.
type Album struct {
	Name   string  `json:"name"`
	Images []Image `json:"images,omitempty"`
}

// Track is a catalog track. Two tracks are the same track when their IDs
// are equal; no other field takes part in identity.
type Track struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	URI        string   `json:"uri,omitempty"`
	PreviewURL string   `json:"preview_url,omitempty"`
	Artists    []Artist `json:"artists"`
	Album      Album    `json:"album"`
}

// HasMetadata reports whether t has a name and at least one artist.
func (t Track) HasMetadata() bool {
	return t.Name != "" && len(t.Artists) > 0
}

// HasAlbumImage reports whether t has at least one album image.
func (t Track) HasAlbumImage() bool {
	return len(t.Album.Images) > 0
}

// Playable reports whether t can be previewed in place.
func (t Track) Playable() bool {
	return t.PreviewURL != "" && t.ID != "" && t.HasMetadata()
}

// ArtistNames returns the artist names in credit order.
func (t Track) ArtistNames() []string {
	names := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		names[i] = a.Name
	}
	return names
}

// Playlist is a playlist summary as returned by playlist search.
type Playlist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RecommendationRequest describes one call to the recommendations endpoint.
type RecommendationRequest struct {
	SeedTracks    []string
	SeedGenres    []string
	TargetEnergy  float64
	TargetValence float64
	MinPopularity int
	Limit         int
}

// Dedup appends tracks from src to dst, skipping IDs already present in
// seen, and records every appended ID. It stops once dst holds max tracks
// when max is positive.
func Dedup(dst []Track, seen map[string]struct{}, src []Track, max int) []Track {
	for _, t := range src {
		if max > 0 && len(dst) >= max {
			break
		}
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		dst = append(dst, t)
	}
	return dst
}
