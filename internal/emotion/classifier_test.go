package emotion

import (
	"testing"
)

func mustLexicon(t *testing.T, kw map[Label][]string) *Lexicon {
	t.Helper()
	lex, err := NewLexicon(kw)
	if err != nil {
		t.Fatalf("NewLexicon() error = %v", err)
	}
	return lex
}

func TestClassify_HappyScenario(t *testing.T) {
	c := NewClassifier(DefaultLexicon())

	got := c.Classify("I am so happy today")

	if got.Label != Happy {
		t.Fatalf("Label = %q, want %q", got.Label, Happy)
	}
	want := 1.0 / float64(len(DefaultLexicon().Keywords(Happy)))
	if got.Confidence != want {
		t.Errorf("Confidence = %v, want %v", got.Confidence, want)
	}
}

func TestClassify_EmptyInputSkipsLexicon(t *testing.T) {
	// A zero Classifier has no lexicon; consulting it would panic.
	var c Classifier

	for _, text := range []string{"", "   ", "\n\t "} {
		if got := c.Classify(text); got != NeutralScore {
			t.Errorf("Classify(%q) = %+v, want %+v", text, got, NeutralScore)
		}
	}
}

func TestClassify(t *testing.T) {
	lex := mustLexicon(t, map[Label][]string{
		Happy:   {"joy", "fun"},
		Sad:     {"tears", "down", "gloom", "blue"},
		Angry:   {"sukô", "sugod na!"},
		Excited: {"looking forward"},
	})
	c := NewClassifier(lex)

	tests := []struct {
		name      string
		text      string
		wantLabel Label
		wantConf  float64
	}{
		{"single keyword", "so much joy", Happy, 0.5},
		{"all keywords", "JOY and fun", Happy, 1.0},
		{"share of entry decides", "tears, down and gloom", Sad, 0.75},
		{"tie goes to earlier label", "joy through tears and feeling down", Happy, 0.5},
		{"no match is neutral", "the weather report", Neutral, 0.5},
		{"substring does not match", "driving downtown with bluetooth", Neutral, 0.5},
		{"keyword inside a longer word", "enjoyable", Neutral, 0.5},
		{"unicode keyword", "ako SUKÔ na", Angry, 0.5},
		{"keyword ending in punctuation", "tara, sugod na!", Angry, 0.5},
		{"phrase across extra whitespace", "looking \n  forward to it", Excited, 1.0},
		{"punctuation boundary", "(fun)", Happy, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.text)
			if got.Label != tt.wantLabel {
				t.Errorf("Label = %q, want %q", got.Label, tt.wantLabel)
			}
			if got.Confidence != tt.wantConf {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.wantConf)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := NewClassifier(nil)
	inputs := []string{
		"I feel nostalgic and wistful tonight",
		"super stressed and kinakabahan",
		"malungkot ako, broken",
		"chill lang, walang stress",
		"nothing to see here",
	}

	for _, text := range inputs {
		first := c.Classify(text)
		for i := 0; i < 5; i++ {
			if got := c.Classify(text); got != first {
				t.Fatalf("Classify(%q) = %+v on repeat, first %+v", text, got, first)
			}
		}
		if first.Confidence < 0 || first.Confidence > 1 {
			t.Errorf("Classify(%q).Confidence = %v, outside [0,1]", text, first.Confidence)
		}
	}
}

func TestClassify_Multilingual(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		text string
		want Label
	}{
		{"malungkot talaga ako ngayon", Sad},
		{"badtrip ako, bwisit", Angry},
		{"kinakabahan ako sa exam", Anxious},
		{"namimiss ko yung dating araw", Nostalgic},
		{"petiks lang, walang stress", Relaxed},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			if got := c.Classify(tt.text); got.Label != tt.want {
				t.Errorf("Classify(%q).Label = %q, want %q", tt.text, got.Label, tt.want)
			}
		})
	}
}

func TestClassify_Observer(t *testing.T) {
	var seen []Score
	c := NewClassifier(nil, WithObserver(func(s Score) { seen = append(seen, s) }))

	happy := c.Classify("I am so happy today")
	neutral := c.Classify("")

	if len(seen) != 2 {
		t.Fatalf("observer saw %d scores, want 2", len(seen))
	}
	if seen[0] != happy || seen[1] != neutral {
		t.Errorf("observer saw %+v, want [%+v %+v]", seen, happy, neutral)
	}
}
