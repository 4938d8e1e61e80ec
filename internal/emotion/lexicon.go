package emotion

import (
	"fmt"
	"strings"
	"sync"
)

// Lexicon maps each label to its keywords. It is immutable once built and
// safe to share between goroutines.
type Lexicon struct {
	entries []lexiconEntry // precedence order
}

type lexiconEntry struct {
	label    Label
	keywords []string
}

// NewLexicon builds a Lexicon from label keyword lists. Keywords are
// lowercased, trimmed and deduplicated per label; entries are stored in label
// precedence order regardless of map iteration order.
func NewLexicon(keywords map[Label][]string) (*Lexicon, error) {
	for label := range keywords {
		if !label.Valid() {
			return nil, fmt.Errorf("lexicon: unknown label %q", label)
		}
	}

	lex := &Lexicon{}
	for _, label := range allLabels {
		words, ok := keywords[label]
		if !ok {
			continue
		}
		normalized := normalizeKeywords(words)
		if len(normalized) == 0 {
			continue
		}
		lex.entries = append(lex.entries, lexiconEntry{label: label, keywords: normalized})
	}
	return lex, nil
}

var defaultLexicon = sync.OnceValue(func() *Lexicon {
	lex, err := NewLexicon(defaultKeywords())
	if err != nil {
		panic(err)
	}
	return lex
})

// DefaultLexicon returns the built-in English, Cebuano and Tagalog lexicon.
func DefaultLexicon() *Lexicon {
	return defaultLexicon()
}

// Labels returns the labels that have at least one keyword, in precedence order.
func (l *Lexicon) Labels() []Label {
	out := make([]Label, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.label
	}
	return out
}

// Keywords returns a copy of the keywords for label, or nil if it has none.
func (l *Lexicon) Keywords(label Label) []string {
	for _, e := range l.entries {
		if e.label == label {
			out := make([]string, len(e.keywords))
			copy(out, e.keywords)
			return out
		}
	}
	return nil
}

func normalizeKeywords(words []string) []string {
	seen := make(map[string]bool, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func defaultKeywords() map[Label][]string {
	return map[Label][]string{
		Happy: {
			"happy", "joy", "delighted", "cheerful", "wonderful", "blessed", "great", "fantastic", "thrilled",
			// Cebuano
			"malipayon", "lipay", "hayahay", "ganahan", "kalipay", "pagmaya", "nalipay",
			"buang sa kalipay", "sakto kaayo", "lami kaayo ang feeling", "murag langit",
			"lingaw", "swerte kaayo", "choy kaayo", "chill kaayo", "murag fiesta",
			// Tagalog
			"masaya", "maligaya", "galak", "saya", "natutuwa", "kaaya-aya", "magaan ang loob",
			"kilig", "masiglang", "masayang masaya", "nagagalak", "nagbubunyi",
			"sobrang happy", "pumped", "feel na feel", "over the moon", "petmalu", "astig",
			"nakaka-good vibes", "legit saya", "solid", "sarap sa feeling", "walang katulad",
		},
		Sad: {
			"sad", "depressed", "down", "unhappy", "miserable", "heartbroken", "gloomy", "blue",
			// Cebuano
			"subo", "magul-anon", "naguol", "kaguol", "masulob-on", "kasubo", "mangil-ad",
			"gimingaw", "way gana", "bug-at sa dughan", "emz", "down kaayo",
			"hugot kaayo", "murag gipanglubong", "nganga mode", "walay gana",
			// Tagalog
			"malungkot", "nalulungkot", "lungkot", "kalungkutan", "hinagpis", "nalulumbay",
			"balisa", "pagdadalamhati", "lungkot na lungkot", "naghihinagpis",
			"sawi", "emo", "broken", "iyak-tawa", "mukhang ewan", "wagas ang lungkot",
			"sads", "paasa", "lutang", "awit", "basag", "lunod sa lungkot",
		},
		Energetic: {
			"energetic", "pumped", "motivated", "active", "alive", "vibrant", "dynamic", "energized",
		},
		Calm: {
			"calm", "peaceful", "serene", "tranquil", "quiet", "zen", "composed", "collected",
		},
		Angry: {
			"angry", "furious", "mad", "rage", "upset", "frustrated", "irritated", "annoyed",
			// Cebuano
			"sukô", "nasuko", "init ulo", "kasuko", "pungot", "yamot", "lagot",
			"grabe ka sapot", "irita kaayo", "piste", "gigil kaayo", "hasol",
			"duka kaayo", "gikulbaan", "mamatay sa sapot", "sobra ka lagot",
			// Tagalog
			"galit", "nagagalit", "poot", "inis", "bugso ng damdamin", "napipikon",
			"gigil", "mainit ang ulo", "nagngingitngit",
			"bwisit", "asar talo", "inis na inis", "buwisit", "pikon", "triggered",
			"inis na sobra", "nakakabwisit", "badtrip", "sobra na to", "ulol", "bastos",
		},
		Anxious: {
			"anxious", "worried", "nervous", "stressed", "tense", "uneasy", "restless",
			// Cebuano
			"kabalaka", "nabalaka", "kahadlok", "nerbyos", "kakulba",
			"gakurog", "kulbaan", "grabe ka tense", "hapa-hapa ang kasing-kasing",
			"perting kulba", "naglibog", "di makahuwat", "way siguro", "perting aligutgot",
			// Tagalog
			"nag-aalala", "balisa", "takot", "kinakabahan", "nerbiyoso", "nangangamba",
			"hindi mapakali", "pagkataranta",
			"kabado", "praning", "gg na ba", "kakakaba", "haggard", "lowkey worried",
			"kaba to the max", "parang may mali", "sana all safe", "di makatulog",
		},
		Excited: {
			"excited", "thrilled", "eager", "enthusiastic", "looking forward", "stoked", "hyped",
			// Cebuano
			"phikit", "lingaw kaayo", "grabe", "phora na", "excited kaayo",
			"murag kid", "murag fiesta", "di mapakali", "hype kaayo", "pirme ready",
			"murag buang", "kulba pero excited", "wa na makapugong", "patay na ni!",
			// Tagalog
			"sabik", "nasasabik", "ginaganahan", "kinikilig", "nananabik",
			"hindi makapaghintay", "tagis ng excitement",
			"hype", "super saya", "wala sa hulog sa saya", "game na game", "sugod na!",
			"sobra ang gigil", "pano na to", "g na g", "lit",
		},
		Melancholic: {
			"melancholic", "nostalgic", "wistful", "longing", "yearning", "reminiscent",
		},
		Nostalgic: {
			"nostalgic", "reminiscing", "memories", "remember when", "missing", "good old",
			// Cebuano
			"kangindot sa una", "kanhi", "makahinumdom", "gimingaw",
			"throwback feels", "payter sauna", "maoy days", "old vibes", "murag bata pag-usab",
			"pirmi sauna", "katong bata pa", "paet pero mingaw", "katong chill pa kaayo",
			// Tagalog
			"namimiss", "nakakamiss", "gunita", "naaalala", "dating araw", "nostalgia",
			"mga alaala", "mga dating panahon",
			"lss moments", "senti", "balik-tanaw", "kapanahunan", "tandang-tanda", "hugot",
			"old school", "sana maulit muli", "parang kahapon lang", "og feels",
		},
		Relaxed: {
			"relaxed", "chill", "mellow", "laid back", "comfortable", "at ease", "content",
			// Cebuano
			"relaks", "huyang", "kalmado", "malinawon", "mahimutang",
			"chillax", "wa’y kuskos balungos", "pahuway mode", "layback kaayo", "peace ra kaayo",
			"hayahay kaayo", "solb na", "wala nay problema", "ambot lang basta chill",
			// Tagalog
			"panatag", "payapa", "kalma", "relax", "presko", "mahinahon", "walang kaba",
			"tahimik ang kalooban",
			"petiks", "walang stress", "chill lang", "walang problema", "solb",
			"wala sa ere", "sarap ng buhay", "nakahiga lang", "tulog tulog din",
		},
	}
}
