package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/justestif/moodtune/internal/apperr"
	"github.com/justestif/moodtune/internal/emotion"
	"github.com/justestif/moodtune/internal/music"
	"github.com/justestif/moodtune/internal/playlists"
	"github.com/justestif/moodtune/internal/recommend"
)

// User-visible messages. Raw error detail is only logged.
const (
	msgUnavailable = "service unavailable"
	msgNoTracks    = "try describing your mood differently"
	msgInternal    = "something went wrong"
	msgTimeout     = "search timed out"
)

// Classifier labels free text.
type Classifier interface {
	Classify(text string) emotion.Score
}

// TrackFinder finds playable tracks for a label.
type TrackFinder interface {
	FindTracksForEmotion(ctx context.Context, label emotion.Label) ([]music.Track, error)
}

// Recommender suggests tracks from seeds and a label.
type Recommender interface {
	Recommend(ctx context.Context, seedIDs []string, label emotion.Label) ([]music.Track, error)
}

// PlaylistStore persists saved playlists.
type PlaylistStore interface {
	Save(ctx context.Context, name string, label emotion.Label, tracks []music.Track) (*playlists.Playlist, error)
	List(ctx context.Context) []*playlists.Playlist
	Get(ctx context.Context, id string) (*playlists.Playlist, error)
	Delete(ctx context.Context, id string) error
}

// Services are the backends the handlers call.
type Services struct {
	Classifier  Classifier
	Finder      TrackFinder
	Recommender Recommender
	Playlists   PlaylistStore
}

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	svc           Services
	searchTimeout time.Duration
	logger        *zap.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(svc Services, searchTimeout time.Duration, logger *zap.Logger) *Handlers {
	return &Handlers{
		svc:           svc,
		searchTimeout: searchTimeout,
		logger:        logger,
	}
}

type textRequest struct {
	Text string `json:"text"`
}

type classifyResponse struct {
	Emotion    emotion.Label          `json:"emotion"`
	Confidence float64                `json:"confidence"`
	Mood       recommend.MoodCategory `json:"mood"`
}

type tracksResponse struct {
	Emotion    emotion.Label `json:"emotion"`
	Confidence float64       `json:"confidence,omitempty"`
	Tracks     []music.Track `json:"tracks"`
}

type recommendRequest struct {
	SeedIDs []string `json:"seed_ids"`
	Emotion string   `json:"emotion"`
}

type savePlaylistRequest struct {
	Name    string        `json:"name"`
	Emotion string        `json:"emotion"`
	Tracks  []music.Track `json:"tracks"`
}

type playlistsResponse struct {
	Playlists []*playlists.Playlist `json:"playlists"`
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Classify handles POST /api/classify.
func (h *Handlers) Classify(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	score := h.svc.Classifier.Classify(req.Text)
	writeJSON(w, http.StatusOK, classifyResponse{
		Emotion:    score.Label,
		Confidence: score.Confidence,
		Mood:       recommend.Describe(score.Label),
	})
}

// Tracks handles GET /api/tracks?emotion=x.
func (h *Handlers) Tracks(w http.ResponseWriter, r *http.Request) {
	label, err := emotion.ParseLabel(r.URL.Query().Get("emotion"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.searchTimeout)
	defer cancel()

	tracks, err := h.svc.Finder.FindTracksForEmotion(ctx, label)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracksResponse{Emotion: label, Tracks: tracks})
}

// Mood handles POST /api/mood: classify the text, then search for it.
func (h *Handlers) Mood(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	score := h.svc.Classifier.Classify(req.Text)

	ctx, cancel := context.WithTimeout(r.Context(), h.searchTimeout)
	defer cancel()

	tracks, err := h.svc.Finder.FindTracksForEmotion(ctx, score.Label)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracksResponse{
		Emotion:    score.Label,
		Confidence: score.Confidence,
		Tracks:     tracks,
	})
}

// Recommendations handles POST /api/recommendations.
func (h *Handlers) Recommendations(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	label, err := emotion.ParseLabel(req.Emotion)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.searchTimeout)
	defer cancel()

	tracks, err := h.svc.Recommender.Recommend(ctx, req.SeedIDs, label)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tracksResponse{Emotion: label, Tracks: tracks})
}

// ListPlaylists handles GET /api/playlists.
func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, playlistsResponse{Playlists: h.svc.Playlists.List(r.Context())})
}

// SavePlaylist handles POST /api/playlists.
func (h *Handlers) SavePlaylist(w http.ResponseWriter, r *http.Request) {
	var req savePlaylistRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var label emotion.Label
	if strings.TrimSpace(req.Emotion) != "" {
		l, err := emotion.ParseLabel(req.Emotion)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		label = l
	}

	p, err := h.svc.Playlists.Save(r.Context(), req.Name, label, req.Tracks)
	if errors.Is(err, playlists.ErrNameRequired) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// GetPlaylist handles GET /api/playlists/{id}.
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Playlists.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, playlists.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePlaylist handles DELETE /api/playlists/{id}.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	err := h.svc.Playlists.Delete(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, playlists.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// fail maps a pipeline error to a status and a user-visible message.
func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := errorStatus(err)
	h.logger.Warn("request failed",
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.Error(err),
	)
	writeError(w, status, msg)
}

func errorStatus(err error) (int, string) {
	var (
		notFound *apperr.NotFoundError
		recErr   *apperr.RecommendationError
	)
	switch {
	case apperr.IsFatal(err):
		return http.StatusServiceUnavailable, msgUnavailable
	case errors.As(err, &notFound), errors.As(err, &recErr):
		return http.StatusNotFound, msgNoTracks
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, msgTimeout
	default:
		return http.StatusInternalServerError, msgInternal
	}
}
