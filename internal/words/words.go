// Package words generates the typing material for rounds: dictionary words in
// several languages and difficulties, plus small arithmetic problems whose
// answer is the typed form.
package words

import "context"

// Style selects how a round's words are presented to players.
type Style string

const (
	// StyleRegular shows exactly what must be typed.
	StyleRegular Style = "regular"
	// StyleHidden shows a scrambled anagram of what must be typed.
	StyleHidden Style = "hidden"
	// StyleCalculus shows an arithmetic expression; the result must be typed.
	StyleCalculus Style = "calculus"
)

// ParseStyle validates a wire-level style token.
func ParseStyle(s string) (Style, bool) {
	switch Style(s) {
	case StyleRegular, StyleHidden, StyleCalculus:
		return Style(s), true
	}
	return "", false
}

// SecondsPerWord is the play-phase budget granted per declared word. Styles
// that take longer to read get a larger budget. The round expiration is this
// value times the declared word count.
func (s Style) SecondsPerWord() int {
	switch s {
	case StyleHidden:
		return 8
	case StyleCalculus:
		return 10
	default:
		return 5
	}
}

// Difficulty selects the word length band or operand magnitude.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyNormal Difficulty = "normal"
	DifficultyHard   Difficulty = "hard"
)

// ParseDifficulty validates a wire-level difficulty token.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyNormal, DifficultyHard:
		return Difficulty(s), true
	}
	return "", false
}

// KnownLanguage reports whether a lexicon ships for the language code.
func KnownLanguage(code string) bool {
	switch code {
	case "en", "fr":
		return true
	}
	return false
}

// Word is one claimable item in a round. Label is what a player must type,
// Display is what the clients render; the two differ for hidden and calculus
// styles.
type Word struct {
	Label   string
	Display string
}

// DictionaryProvider serves dictionary words. Implementations may return
// fewer words than requested when a band runs dry; callers run the round with
// what they got.
type DictionaryProvider interface {
	Generate(ctx context.Context, language string, count int, style Style, difficulty Difficulty) ([]Word, error)
}

// CalculusProvider serves arithmetic problems with distinct results. Like the
// dictionary, it may come back short; callers degrade.
type CalculusProvider interface {
	Generate(ctx context.Context, count int, difficulty Difficulty) ([]Word, error)
}
