package emotion

import (
	"regexp"
	"strings"
)

// boundary matches a rune that cannot continue a word. A keyword only matches
// when it sits between boundaries or at either end of the text.
const boundary = `[^\p{L}\p{N}_]`

// Classifier scores text against a Lexicon. It is safe for concurrent use
// when its observer is.
type Classifier struct {
	lexicon  *Lexicon
	patterns [][]*regexp.Regexp // parallel to lexicon.entries
	observe  func(Score)
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithObserver registers fn to receive every score Classify returns.
func WithObserver(fn func(Score)) Option {
	return func(c *Classifier) { c.observe = fn }
}

// NewClassifier compiles a whole-word pattern for every keyword in lex.
// A nil lex selects DefaultLexicon.
func NewClassifier(lex *Lexicon, opts ...Option) *Classifier {
	if lex == nil {
		lex = DefaultLexicon()
	}

	c := &Classifier{
		lexicon:  lex,
		patterns: make([][]*regexp.Regexp, len(lex.entries)),
	}
	for _, opt := range opts {
		opt(c)
	}
	for i, e := range lex.entries {
		c.patterns[i] = make([]*regexp.Regexp, len(e.keywords))
		for j, kw := range e.keywords {
			c.patterns[i][j] = keywordPattern(kw)
		}
	}
	return c
}

// keywordPattern matches kw as a whole word or phrase. Spaces inside a phrase
// match any run of whitespace.
func keywordPattern(kw string) *regexp.Regexp {
	body := strings.Join(strings.Fields(regexp.QuoteMeta(kw)), `\s+`)
	return regexp.MustCompile(`(?:^|` + boundary + `)` + body + `(?:` + boundary + `|$)`)
}

// Classify returns the label whose keywords cover the largest share of its
// lexicon entry. Ties go to the earlier label. Empty input, or input matching
// nothing, yields NeutralScore.
func (c *Classifier) Classify(text string) Score {
	score := c.score(text)
	if c.observe != nil {
		c.observe(score)
	}
	return score
}

func (c *Classifier) score(text string) Score {
	if strings.TrimSpace(text) == "" {
		return NeutralScore
	}
	lower := strings.ToLower(text)

	best := Score{Label: Neutral}
	for i, e := range c.lexicon.entries {
		matched := 0
		for _, re := range c.patterns[i] {
			if re.MatchString(lower) {
				matched++
			}
		}
		score := float64(matched) / float64(len(e.keywords))
		if score > best.Confidence {
			best = Score{Label: e.label, Confidence: score}
		}
	}

	if best.Confidence == 0 {
		return NeutralScore
	}
	return best
}
