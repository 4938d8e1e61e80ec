package planner

import (
	"slices"
	"strings"
	"testing"

	"github.com/justestif/moodtune/internal/emotion"
)

func TestPlan_EveryLabel(t *testing.T) {
	p := New()

	for _, label := range emotion.Labels() {
		t.Run(string(label), func(t *testing.T) {
			terms := p.Plan(label)

			if len(terms) < 5 || len(terms) > 7 {
				t.Fatalf("Plan(%q) has %d terms, want 2-4 phrases plus 3 qualifiers", label, len(terms))
			}

			tail := terms[len(terms)-3:]
			want := []string{string(label) + " popular", string(label) + " top", string(label) + " hits"}
			if !slices.Equal(tail, want) {
				t.Errorf("Plan(%q) ends with %v, want %v", label, tail, want)
			}

			if again := p.Plan(label); !slices.Equal(terms, again) {
				t.Errorf("Plan(%q) not deterministic: %v then %v", label, terms, again)
			}
		})
	}
}

func TestPlan_Happy(t *testing.T) {
	got := New().Plan(emotion.Happy)
	want := []string{
		"pop dance party happy", "feel good", "upbeat hits", "happy music",
		"happy popular", "happy top", "happy hits",
	}
	if !slices.Equal(got, want) {
		t.Errorf("Plan(happy) = %v, want %v", got, want)
	}
}

func TestPlan_UnknownLabelUsesDefault(t *testing.T) {
	got := New().Plan(emotion.Label("bored"))
	want := []string{"bored music", "bored songs", "bored popular", "bored top", "bored hits"}
	if !slices.Equal(got, want) {
		t.Errorf("Plan(bored) = %v, want %v", got, want)
	}
}

func TestPlan_CallerMutationDoesNotLeak(t *testing.T) {
	p := New()
	first := p.Plan(emotion.Sad)
	first[0] = "mutated"

	if p.Plan(emotion.Sad)[0] == "mutated" {
		t.Error("Plan() shares its backing array with the term table")
	}
}

func TestBroad(t *testing.T) {
	p := New()

	got := p.Broad(emotion.Sad)
	want := []string{"popular songs", "top hits", "indie hits", "pop music", "sad", "playlist"}
	if !slices.Equal(got, want) {
		t.Errorf("Broad(sad) = %v, want %v", got, want)
	}

	// Apart from the bare label, the sequence never mentions the mood.
	for _, term := range got[:4] {
		if strings.Contains(term, "sad") {
			t.Errorf("broad term %q mentions the mood", term)
		}
	}

	got[0] = "mutated"
	if p.Broad(emotion.Sad)[0] != "popular songs" {
		t.Error("Broad() shares its backing array with the term table")
	}
}
