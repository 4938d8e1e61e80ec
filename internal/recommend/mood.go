package recommend

import (
	"github.com/justestif/moodtune/internal/emotion"
)

// profile is the audio target of a label. acousticness only shapes the
// description; it is not sent to the catalog.
type profile struct {
	energy       float64
	valence      float64
	acousticness float64
}

// profileFor is exhaustive over the label set; anything else gets the
// neutral middle.
func profileFor(label emotion.Label) profile {
	p := profile{energy: 0.5, valence: 0.5, acousticness: 0.2}

	switch label {
	case emotion.Happy, emotion.Excited:
		p.valence = 0.8
	case emotion.Sad:
		p.energy, p.valence = 0.4, 0.3
		p.acousticness = 0.7
	case emotion.Melancholic:
		p.energy = 0.4
		p.acousticness = 0.7
	case emotion.Energetic:
		p.energy = 0.8
	case emotion.Calm, emotion.Relaxed:
		p.energy, p.valence = 0.3, 0.6
		p.acousticness = 0.7
	case emotion.Angry:
		p.energy, p.valence = 0.9, 0.2
	case emotion.Anxious:
		p.acousticness = 0.7
	case emotion.Nostalgic, emotion.Neutral:
	}
	return p
}

// Targets returns the energy and valence the recommender aims for.
func Targets(label emotion.Label) (energy, valence float64) {
	p := profileFor(label)
	return p.energy, p.valence
}

// MoodCategory describes where a label sits on the energy/valence plane.
type MoodCategory struct {
	Name        string  `json:"name"`
	Energy      float64 `json:"energy"`
	Valence     float64 `json:"valence"`
	Description string  `json:"description"`
}

// Describe names the energy/valence quadrant of label's targets.
//
// Quadrants:
//   - High Energy + High Valence = "Upbeat Party"
//   - High Energy + Low Valence  = "Intense & Dark"
//   - Low Energy  + High Valence = "Chill & Happy"
//   - Low Energy  + Low Valence  = "Reflective & Melancholy"
//
// Acoustic-leaning labels get an " (Acoustic)" suffix.
func Describe(label emotion.Label) MoodCategory {
	p := profileFor(label)

	highEnergy := p.energy > 0.6
	highValence := p.valence > 0.5

	var name, description string
	switch {
	case highEnergy && highValence:
		name = "Upbeat Party"
		description = "High-energy, positive vibes - perfect for dancing and celebrations"
	case highEnergy && !highValence:
		name = "Intense & Dark"
		description = "Intense, driving energy with darker emotional tones"
	case !highEnergy && highValence:
		name = "Chill & Happy"
		description = "Relaxed and uplifting - great for unwinding"
	default:
		name = "Reflective & Melancholy"
		description = "Contemplative and introspective - ideal for quiet moments"
	}

	if p.acousticness > 0.6 {
		name += " (Acoustic)"
	}

	return MoodCategory{
		Name:        name,
		Energy:      p.energy,
		Valence:     p.valence,
		Description: description,
	}
}
