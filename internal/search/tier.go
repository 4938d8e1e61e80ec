package search

// Tier is a stage of the search fallback chain. Tiers are visited in
// declaration order and never revisited.
type Tier int

const (
	// DirectSearch queries the mood-specific terms and wants tracks with
	// album art.
	DirectSearch Tier = iota
	// PlaylistSearch looks inside popular playlists for previewable tracks.
	PlaylistSearch
	// BroadFallback queries generic popularity terms and accepts any track
	// with a name and an artist.
	BroadFallback
	// Exhausted is terminal.
	Exhausted
)

func (t Tier) String() string {
	switch t {
	case DirectSearch:
		return "direct"
	case PlaylistSearch:
		return "playlist"
	case BroadFallback:
		return "broad"
	case Exhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// next is the transition taken when a tier yields no tracks.
func next(t Tier) Tier {
	switch t {
	case DirectSearch:
		return PlaylistSearch
	case PlaylistSearch:
		return BroadFallback
	default:
		return Exhausted
	}
}
