// Package emotion classifies free text into a closed set of mood labels using
// keyword lexicons.
package emotion

import (
	"fmt"
	"strings"
)

// Label is one of the recognized mood categories.
type Label string

// The label set, in precedence order. Earlier labels win score ties.
const (
	Happy       Label = "happy"
	Sad         Label = "sad"
	Energetic   Label = "energetic"
	Calm        Label = "calm"
	Angry       Label = "angry"
	Anxious     Label = "anxious"
	Excited     Label = "excited"
	Melancholic Label = "melancholic"
	Nostalgic   Label = "nostalgic"
	Relaxed     Label = "relaxed"
	Neutral     Label = "neutral"
)

var allLabels = []Label{
	Happy, Sad, Energetic, Calm, Angry, Anxious,
	Excited, Melancholic, Nostalgic, Relaxed, Neutral,
}

// Labels returns every label in precedence order.
func Labels() []Label {
	out := make([]Label, len(allLabels))
	copy(out, allLabels)
	return out
}

// ParseLabel converts s to a Label, ignoring case and surrounding space.
func ParseLabel(s string) (Label, error) {
	l := Label(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return "", fmt.Errorf("unknown emotion %q", s)
	}
	return l, nil
}

// Valid reports whether l belongs to the label set.
func (l Label) Valid() bool {
	for _, known := range allLabels {
		if l == known {
			return true
		}
	}
	return false
}

func (l Label) String() string { return string(l) }

// Score is the outcome of one classification.
type Score struct {
	Label      Label   `json:"emotion"`
	Confidence float64 `json:"confidence"`
}

// NeutralScore is returned for empty input and for text matching no keyword.
var NeutralScore = Score{Label: Neutral, Confidence: 0.5}
