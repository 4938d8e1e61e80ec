// Package playlists keeps user-saved track collections in memory.
package playlists

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/music"
)

// Common errors.
var (
	ErrNotFound     = errors.New("playlist not found")
	ErrNameRequired = errors.New("playlist name is required")
)

// Playlist is a named collection of tracks saved for a mood.
type Playlist struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Emotion   emotion.Label `json:"emotion,omitempty"`
	Tracks    []music.Track `json:"tracks"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store holds playlists in memory. Contents are lost on restart.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]*Playlist
	order []string
	now   func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		byID: make(map[string]*Playlist),
		now:  time.Now,
	}
}

// Save stores a new playlist and returns it with its assigned ID. Tracks
// repeated by ID are kept once, first occurrence wins.
func (s *Store) Save(_ context.Context, name string, label emotion.Label, tracks []music.Track) (*Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	p := &Playlist{
		ID:        uuid.New().String(),
		Name:      name,
		Emotion:   label,
		Tracks:    music.Dedup(nil, make(map[string]struct{}), tracks, len(tracks)),
		CreatedAt: s.now(),
	}
	if p.Tracks == nil {
		p.Tracks = []music.Track{}
	}

	s.mu.Lock()
	s.byID[p.ID] = p
	s.order = append(s.order, p.ID)
	s.mu.Unlock()

	return clone(p), nil
}

// List returns all playlists in creation order.
func (s *Store) List(_ context.Context) []*Playlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Playlist, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.byID[id]))
	}
	return out
}

// Get returns the playlist with the given ID.
func (s *Store) Get(_ context.Context, id string) (*Playlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

// Delete removes a playlist.
func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

func clone(p *Playlist) *Playlist {
	c := *p
	c.Tracks = slices.Clone(p.Tracks)
	return &c
}
