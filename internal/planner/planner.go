// Package planner builds the ordered catalog search terms for a mood.
package planner

import (
	"github.com/justestif/moodtune/internal/emotion"
)

// primaryTerms lists the mood and genre phrases tried first for each label.
var primaryTerms = map[emotion.Label][]string{
	emotion.Happy:       {"pop dance party happy", "feel good", "upbeat hits", "happy music"},
	emotion.Sad:         {"sad songs", "melancholic", "indie sad", "emotional ballads"},
	emotion.Energetic:   {"dance electronic edm", "workout", "power hit", "energy playlist"},
	emotion.Calm:        {"ambient chill", "relaxing piano", "peaceful", "calming music"},
	emotion.Angry:       {"rock metal", "punk intense", "rage", "aggressive music"},
	emotion.Anxious:     {"classical piano", "instrumental ambient", "meditation", "calming anxiety"},
	emotion.Excited:     {"dance pop", "party", "upbeat", "excitement playlist"},
	emotion.Melancholic: {"indie acoustic", "melancholic songs", "sad indie", "slow sad songs"},
	emotion.Nostalgic:   {"retro oldies", "classic vintage", "80s 90s", "throwback hits"},
	emotion.Relaxed:     {"lofi jazz", "chill ambient", "soft acoustic", "relaxing playlist"},
	emotion.Neutral:     {"feel good", "chill hits"},
}

// qualifiers are appended to the label itself after the primary phrases.
var qualifiers = []string{"popular", "top", "hits"}

// broadTerms are catalog-wide popularity searches with no mood in them.
var broadTerms = []string{"popular songs", "top hits", "indie hits", "pop music"}

// Planner maps labels to search term sequences. The zero value is not
// usable; call New.
type Planner struct {
	primary    map[emotion.Label][]string
	qualifiers []string
	broad      []string
}

// New returns a Planner over the built-in term tables.
func New() *Planner {
	return &Planner{
		primary:    primaryTerms,
		qualifiers: qualifiers,
		broad:      broadTerms,
	}
}

// Plan returns the primary sequence for label: its mood phrases followed by
// "<label> popular", "<label> top" and "<label> hits".
func (p *Planner) Plan(label emotion.Label) []string {
	phrases, ok := p.primary[label]
	if !ok {
		phrases = []string{string(label) + " music", string(label) + " songs"}
	}

	terms := make([]string, 0, len(phrases)+len(p.qualifiers))
	terms = append(terms, phrases...)
	for _, q := range p.qualifiers {
		terms = append(terms, string(label)+" "+q)
	}
	return terms
}

// Broad returns the fallback sequence used once the primary sequence is
// exhausted: popularity terms, then the bare label, then "playlist".
func (p *Planner) Broad(label emotion.Label) []string {
	terms := make([]string, 0, len(p.broad)+2)
	terms = append(terms, p.broad...)
	return append(terms, string(label), "playlist")
}
