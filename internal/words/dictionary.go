package words

import (
	"context"
	_ "embed"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

//go:embed data/en.txt
var lexiconEN string

//go:embed data/fr.txt
var lexiconFR string

// Dictionary serves words from the embedded lexicons, banded by difficulty:
// easy up to 5 letters, normal 6 to 8, hard 9 and up.
type Dictionary struct {
	mu    sync.Mutex
	rng   *rand.Rand
	banks map[string]map[Difficulty][]string
}

// NewDictionary parses the embedded lexicons. It fails if any language is
// missing a difficulty band entirely, which would make rounds silently empty.
func NewDictionary() (*Dictionary, error) {
	d := &Dictionary{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		banks: make(map[string]map[Difficulty][]string),
	}
	for lang, raw := range map[string]string{"en": lexiconEN, "fr": lexiconFR} {
		bands := make(map[Difficulty][]string)
		for _, line := range strings.Split(raw, "\n") {
			w := strings.TrimSpace(line)
			if w == "" || strings.HasPrefix(w, "#") {
				continue
			}
			band := bandFor(w)
			bands[band] = append(bands[band], w)
		}
		for _, diff := range []Difficulty{DifficultyEasy, DifficultyNormal, DifficultyHard} {
			if len(bands[diff]) == 0 {
				return nil, fmt.Errorf("lexicon %q has no %s words", lang, diff)
			}
		}
		d.banks[lang] = bands
	}
	return d, nil
}

func bandFor(w string) Difficulty {
	switch n := utf8.RuneCountInString(w); {
	case n <= 5:
		return DifficultyEasy
	case n <= 8:
		return DifficultyNormal
	default:
		return DifficultyHard
	}
}

// Generate samples count distinct words from the requested band without
// replacement. When the band is smaller than count, every word of the band is
// returned and the round simply runs shorter.
func (d *Dictionary) Generate(ctx context.Context, language string, count int, style Style, difficulty Difficulty) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if count <= 0 {
		return nil, nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	bands, ok := d.banks[language]
	if !ok {
		return nil, fmt.Errorf("unknown language %q", language)
	}
	bank := bands[difficulty]
	if count > len(bank) {
		count = len(bank)
	}

	out := make([]Word, 0, count)
	for _, idx := range d.rng.Perm(len(bank))[:count] {
		label := bank[idx]
		display := label
		if style == StyleHidden {
			display = d.scramble(label)
		}
		out = append(out, Word{Label: label, Display: display})
	}
	return out, nil
}

// scramble returns an anagram of the word, reshuffling a few times so the
// shown form differs from the typed form whenever the letters allow it.
func (d *Dictionary) scramble(word string) string {
	runes := []rune(word)
	if len(runes) < 2 {
		return word
	}
	for try := 0; try < 10; try++ {
		d.rng.Shuffle(len(runes), func(i, j int) {
			runes[i], runes[j] = runes[j], runes[i]
		})
		if s := string(runes); s != word {
			return s
		}
	}
	return string(runes)
}
