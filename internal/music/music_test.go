package music

import (
	"slices"
	"testing"
)

func TestTrackPredicates(t *testing.T) {
	full := Track{
		ID:         "t1",
		Name:       "Song",
		PreviewURL: "https://p.scdn.co/mp3-preview/t1",
		Artists:    []Artist{{Name: "A"}},
		Album:      Album{Name: "LP", Images: []Image{{URL: "https://i.scdn.co/image/1"}}},
	}

	tests := []struct {
		name         string
		track        Track
		wantMeta     bool
		wantImage    bool
		wantPlayable bool
	}{
		{"complete", full, true, true, true},
		{"no artists", Track{ID: "t", Name: "Song", PreviewURL: "p"}, false, false, false},
		{"no name", Track{ID: "t", PreviewURL: "p", Artists: []Artist{{Name: "A"}}}, false, false, false},
		{"no preview", Track{ID: "t", Name: "Song", Artists: []Artist{{Name: "A"}}}, true, false, false},
		{"no id", Track{Name: "Song", PreviewURL: "p", Artists: []Artist{{Name: "A"}}}, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.track.HasMetadata(); got != tt.wantMeta {
				t.Errorf("HasMetadata() = %v, want %v", got, tt.wantMeta)
			}
			if got := tt.track.HasAlbumImage(); got != tt.wantImage {
				t.Errorf("HasAlbumImage() = %v, want %v", got, tt.wantImage)
			}
			if got := tt.track.Playable(); got != tt.wantPlayable {
				t.Errorf("Playable() = %v, want %v", got, tt.wantPlayable)
			}
		})
	}
}

func TestArtistNames(t *testing.T) {
	tr := Track{Artists: []Artist{{Name: "A"}, {Name: "B"}}}
	if got, want := tr.ArtistNames(), []string{"A", "B"}; !slices.Equal(got, want) {
		t.Errorf("ArtistNames() = %v, want %v", got, want)
	}
}

func ids(tracks []Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

func TestDedup(t *testing.T) {
	seen := map[string]struct{}{}

	var acc []Track
	acc = Dedup(acc, seen, []Track{{ID: "a"}, {ID: "b"}, {ID: "a"}}, 0)
	acc = Dedup(acc, seen, []Track{{ID: "b"}, {ID: "c"}}, 0)

	if got, want := ids(acc), []string{"a", "b", "c"}; !slices.Equal(got, want) {
		t.Errorf("Dedup() = %v, want %v", got, want)
	}
}

func TestDedup_Max(t *testing.T) {
	seen := map[string]struct{}{}
	got := Dedup(nil, seen, []Track{{ID: "a"}, {ID: "b"}, {ID: "c"}}, 2)

	if want := []string{"a", "b"}; !slices.Equal(ids(got), want) {
		t.Errorf("Dedup() = %v, want %v", ids(got), want)
	}
	if _, ok := seen["c"]; ok {
		t.Error("Dedup() recorded a track it did not append")
	}
}
