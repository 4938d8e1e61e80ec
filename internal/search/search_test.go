package search

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap/zaptest"

	"github.com/justestif/moodtune/internal/apperr"
	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/metrics"
	"github.com/justestif/moodtune/internal/music"
	"github.com/justestif/moodtune/internal/planner"
	"github.com/justestif/moodtune/internal/retry"
)

// fakeCatalog serves canned results and records every call as
// "tracks:<term>", "playlists:<term>" or "items:<id>".
type fakeCatalog struct {
	mu sync.Mutex

	tracks        map[string][]music.Track
	playlists     map[string][]music.Playlist
	playlistItems map[string][]music.Track
	errs          map[string][]error // consumed one per call, keyed like calls

	calls []string
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		tracks:        map[string][]music.Track{},
		playlists:     map[string][]music.Playlist{},
		playlistItems: map[string][]music.Track{},
		errs:          map[string][]error{},
	}
}

func (f *fakeCatalog) record(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if errs := f.errs[key]; len(errs) > 0 {
		f.errs[key] = errs[1:]
		return errs[0]
	}
	return nil
}

func (f *fakeCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error) {
	if err := f.record("tracks:" + query); err != nil {
		return nil, err
	}
	return f.tracks[query], nil
}

func (f *fakeCatalog) SearchPlaylists(ctx context.Context, query string, limit int) ([]music.Playlist, error) {
	if err := f.record("playlists:" + query); err != nil {
		return nil, err
	}
	return f.playlists[query], nil
}

func (f *fakeCatalog) PlaylistTracks(ctx context.Context, id string, limit int) ([]music.Track, error) {
	if err := f.record("items:" + id); err != nil {
		return nil, err
	}
	return f.playlistItems[id], nil
}

func (f *fakeCatalog) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

type fakeTokens struct {
	err   error
	calls int
}

func (f *fakeTokens) Token(context.Context) (string, error) {
	f.calls++
	return "tok", f.err
}

type stubPlanner struct {
	plan, broad []string
}

func (s stubPlanner) Plan(emotion.Label) []string  { return slices.Clone(s.plan) }
func (s stubPlanner) Broad(emotion.Label) []string { return slices.Clone(s.broad) }

// full returns a track that passes every tier's filter.
func full(id string) music.Track {
	return music.Track{
		ID:         id,
		Name:       "Song " + id,
		PreviewURL: "https://p.scdn.co/" + id,
		Artists:    []music.Artist{{Name: "Artist"}},
		Album:      music.Album{Name: "LP", Images: []music.Image{{URL: "https://i.scdn.co/" + id}}},
	}
}

func fullN(ids ...string) []music.Track {
	out := make([]music.Track, len(ids))
	for i, id := range ids {
		out[i] = full(id)
	}
	return out
}

func trackIDs(tracks []music.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.ID
	}
	return out
}

var fastRetry = retry.Policy{
	MaxAttempts: 3,
	Backoff:     func(int) time.Duration { return 0 },
	IsTransient: apperr.IsTransient,
}

func newTestOrchestrator(t *testing.T, cat Catalog, tokens TokenSource, p TermPlanner) *Orchestrator {
	t.Helper()
	return New(cat, tokens,
		WithPlanner(p),
		WithRetryPolicy(fastRetry),
		WithLogger(zaptest.NewLogger(t)),
	)
}

var testPlan = stubPlanner{
	plan:  []string{"a", "b", "c"},
	broad: []string{"x", "y"},
}

func TestFindTracks_StopsAtThreshold(t *testing.T) {
	cat := newFakeCatalog()
	cat.tracks["a"] = fullN("1", "2", "3")
	cat.tracks["b"] = fullN("3", "4", "5")
	cat.tracks["c"] = fullN("6", "7")

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if want := []string{"1", "2", "3", "4", "5"}; !slices.Equal(trackIDs(got), want) {
		t.Errorf("tracks = %v, want %v", trackIDs(got), want)
	}
	if want := []string{"tracks:a", "tracks:b"}; !slices.Equal(cat.Calls(), want) {
		t.Errorf("calls = %v, want %v", cat.Calls(), want)
	}
}

func TestFindTracks_AllEmptyIsNotFound(t *testing.T) {
	cat := newFakeCatalog()
	p := planner.New()
	o := newTestOrchestrator(t, cat, &fakeTokens{}, p)

	_, err := o.FindTracksForEmotion(context.Background(), emotion.Sad)

	var nf *apperr.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("FindTracksForEmotion() error = %v, want NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "sad") {
		t.Errorf("error %q does not mention the emotion", err)
	}

	// Every tier ran, in order.
	var want []string
	for _, term := range p.Plan(emotion.Sad) {
		want = append(want, "tracks:"+term)
	}
	for _, term := range p.Broad(emotion.Sad) {
		want = append(want, "playlists:"+term)
	}
	for _, term := range p.Broad(emotion.Sad) {
		want = append(want, "tracks:"+term)
	}
	if got := cat.Calls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v\nwant %v", got, want)
	}
}

func TestFindTracks_PartialDirectResultSkipsLaterTiers(t *testing.T) {
	cat := newFakeCatalog()
	cat.tracks["b"] = fullN("1", "2")
	cat.playlists["x"] = []music.Playlist{{ID: "p1"}}

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Calm)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if want := []string{"1", "2"}; !slices.Equal(trackIDs(got), want) {
		t.Errorf("tracks = %v, want %v", trackIDs(got), want)
	}
	for _, c := range cat.Calls() {
		if strings.HasPrefix(c, "playlists:") {
			t.Errorf("playlist tier ran after a non-empty direct tier: %v", cat.Calls())
		}
	}
}

func TestFindTracks_DirectFiltersIncompleteTracks(t *testing.T) {
	noImage := full("no-image")
	noImage.Album.Images = nil
	noArtist := full("no-artist")
	noArtist.Artists = nil
	noName := full("no-name")
	noName.Name = ""

	cat := newFakeCatalog()
	cat.tracks["a"] = []music.Track{noImage, noArtist, noName, full("ok")}

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if want := []string{"ok"}; !slices.Equal(trackIDs(got), want) {
		t.Errorf("tracks = %v, want %v", trackIDs(got), want)
	}
}

func TestFindTracks_PlaylistTier(t *testing.T) {
	unplayable := full("silent")
	unplayable.PreviewURL = ""

	cat := newFakeCatalog()
	cat.playlists["x"] = []music.Playlist{{ID: "p1", Name: "Quiet"}, {ID: "p2", Name: "Loud"}}
	cat.playlistItems["p1"] = []music.Track{unplayable}
	cat.playlistItems["p2"] = append(fullN("7", "8", "7"), unplayable)
	cat.tracks["x"] = fullN("broad-1")

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Sad)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if want := []string{"7", "8"}; !slices.Equal(trackIDs(got), want) {
		t.Errorf("tracks = %v, want %v", trackIDs(got), want)
	}

	want := []string{"tracks:a", "tracks:b", "tracks:c", "playlists:x", "items:p1", "items:p2"}
	if got := cat.Calls(); !slices.Equal(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestFindTracks_BroadFallbackAcceptsBareTracks(t *testing.T) {
	bare := music.Track{ID: "bare", Name: "Plain", Artists: []music.Artist{{Name: "Someone"}}}
	nameless := music.Track{ID: "nameless", Artists: []music.Artist{{Name: "Someone"}}}

	cat := newFakeCatalog()
	cat.tracks["a"] = []music.Track{bare} // no art, so direct rejects it
	cat.tracks["y"] = []music.Track{bare, nameless}

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Relaxed)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if want := []string{"bare"}; !slices.Equal(trackIDs(got), want) {
		t.Errorf("tracks = %v, want %v", trackIDs(got), want)
	}
}

func TestFindTracks_NeverReturnsDuplicates(t *testing.T) {
	cat := newFakeCatalog()
	cat.tracks["a"] = fullN("1", "1", "2", "2")
	cat.tracks["b"] = fullN("2", "1", "3")
	cat.tracks["c"] = fullN("3", "3", "3")

	o := New(cat, &fakeTokens{},
		WithPlanner(testPlan),
		WithRetryPolicy(fastRetry),
		WithThreshold(50, 50),
	)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if want := []string{"1", "2", "3"}; !slices.Equal(trackIDs(got), want) {
		t.Errorf("tracks = %v, want %v", trackIDs(got), want)
	}
}

func TestFindTracks_CapsAtMax(t *testing.T) {
	var ids []string
	for i := 0; i < 30; i++ {
		ids = append(ids, fmt.Sprint(i))
	}
	cat := newFakeCatalog()
	cat.tracks["a"] = fullN(ids...)

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if len(got) != DefaultMaxTracks {
		t.Errorf("len(tracks) = %d, want %d", len(got), DefaultMaxTracks)
	}
}

func TestFindTracks_RetriesTransientFailures(t *testing.T) {
	transient := &apperr.TransientNetworkError{Op: "searching tracks", Status: 503, Err: errors.New("unavailable")}

	cat := newFakeCatalog()
	cat.errs["tracks:a"] = []error{transient, transient}
	cat.tracks["a"] = fullN("1", "2", "3", "4", "5")

	reg := prometheus.NewRegistry()
	mt, err := metrics.New(reg)
	if err != nil {
		t.Fatal(err)
	}
	o := New(cat, &fakeTokens{},
		WithPlanner(testPlan),
		WithRetryPolicy(fastRetry),
		WithMetrics(mt),
		WithLogger(zaptest.NewLogger(t)),
	)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("len(tracks) = %d, want 5", len(got))
	}
	if want := []string{"tracks:a", "tracks:a", "tracks:a"}; !slices.Equal(cat.Calls(), want) {
		t.Errorf("calls = %v, want %v", cat.Calls(), want)
	}
}

func TestFindTracks_FailingTermIsSkipped(t *testing.T) {
	transient := &apperr.TransientNetworkError{Op: "searching tracks", Err: errors.New("timeout")}

	cat := newFakeCatalog()
	cat.errs["tracks:a"] = []error{errors.New("bad request")}
	cat.errs["tracks:b"] = []error{transient, transient, transient} // exhausts the retry cap
	cat.tracks["c"] = fullN("1")

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	got, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)
	if err != nil {
		t.Fatalf("FindTracksForEmotion() error = %v", err)
	}
	if want := []string{"1"}; !slices.Equal(trackIDs(got), want) {
		t.Errorf("tracks = %v, want %v", trackIDs(got), want)
	}
	want := []string{"tracks:a", "tracks:b", "tracks:b", "tracks:b", "tracks:c"}
	if !slices.Equal(cat.Calls(), want) {
		t.Errorf("calls = %v, want %v", cat.Calls(), want)
	}
}

func TestFindTracks_AuthFailureMidSearchAborts(t *testing.T) {
	authErr := &apperr.AuthError{Err: errors.New("invalid_client")}

	cat := newFakeCatalog()
	cat.errs["tracks:b"] = []error{authErr}
	cat.tracks["c"] = fullN("1", "2", "3", "4", "5")

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	_, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)
	if !errors.Is(err, authErr) {
		t.Fatalf("FindTracksForEmotion() error = %v, want the auth error", err)
	}
	if want := []string{"tracks:a", "tracks:b"}; !slices.Equal(cat.Calls(), want) {
		t.Errorf("calls = %v, want %v", cat.Calls(), want)
	}
}

func TestFindTracks_TokenFailureBeforeAnyCall(t *testing.T) {
	cfgErr := &apperr.ConfigError{Missing: []string{"SPOTIFY_ID"}}
	cat := newFakeCatalog()
	o := newTestOrchestrator(t, cat, &fakeTokens{err: cfgErr}, testPlan)

	_, err := o.FindTracksForEmotion(context.Background(), emotion.Happy)

	var ce *apperr.ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("FindTracksForEmotion() error = %v, want ConfigError", err)
	}
	if len(cat.Calls()) != 0 {
		t.Errorf("catalog called %v despite missing configuration", cat.Calls())
	}
}

// cancellingCatalog cancels the search from inside the first track search.
type cancellingCatalog struct {
	*fakeCatalog
	cancel context.CancelFunc
}

func (c cancellingCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]music.Track, error) {
	c.cancel()
	return c.fakeCatalog.SearchTracks(ctx, query, limit)
}

func TestFindTracks_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cat := cancellingCatalog{fakeCatalog: newFakeCatalog(), cancel: cancel}

	o := newTestOrchestrator(t, cat, &fakeTokens{}, testPlan)

	_, err := o.FindTracksForEmotion(ctx, emotion.Happy)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("FindTracksForEmotion() error = %v, want context.Canceled", err)
	}
	if got := cat.Calls(); len(got) != 1 {
		t.Errorf("calls = %v, want the search to stop after the first", got)
	}
}

func TestNext(t *testing.T) {
	var visited []Tier
	for tier := DirectSearch; tier != Exhausted; tier = next(tier) {
		visited = append(visited, tier)
	}
	if want := []Tier{DirectSearch, PlaylistSearch, BroadFallback}; !slices.Equal(visited, want) {
		t.Errorf("visited = %v, want %v", visited, want)
	}
	if next(Exhausted) != Exhausted {
		t.Error("Exhausted is not terminal")
	}
}
