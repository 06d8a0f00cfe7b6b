// Package protocol freezes the wire contract: inbound verb frames and
// outbound JSON message shapes. Every type discriminator and verb string
// lives here and nowhere else.
package protocol

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/typerace/server/internal/words"
)

// Inbound verbs.
const (
	VerbConnect    = "connect"
	VerbCreateGame = "create-game"
	VerbDeleteGame = "delete-game"
	VerbJoinGame   = "join-game"
	VerbLeaveGame  = "leave-game"
	VerbStartGame  = "start-game"
	VerbStartRound = "start-round"
	VerbClaimWord  = "claim-word"
	VerbQuitGame   = "quit-game"
)

// Mode selects how a round's word pool is sized and finished.
type Mode string

const (
	// ModeCapture shares one pool; the round ends when it is exhausted.
	ModeCapture Mode = "capture"
	// ModeRace sizes the pool per player; the round ends when one player
	// has claimed a full declared share.
	ModeRace Mode = "race"
)

// ParseMode validates a wire-level mode token.
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeCapture, ModeRace:
		return Mode(s), true
	}
	return "", false
}

// Command is one parsed inbound frame.
type Command struct {
	Verb string
	Args []string
}

// Parse splits an inbound text frame into its verb and arguments. The frame
// is trimmed once at the edges; connect and claim-word then keep the rest of
// the frame as a single argument so interior whitespace reaches validation
// (a name containing a space must produce incorrect-name, not a parse drop).
// Anything that does not fit the table comes back false and is ignored.
func Parse(frame string) (Command, bool) {
	trimmed := strings.TrimSpace(frame)
	if trimmed == "" {
		return Command{}, false
	}

	verb := trimmed
	rest := ""
	if i := strings.IndexFunc(trimmed, unicode.IsSpace); i >= 0 {
		verb, rest = trimmed[:i], strings.TrimLeftFunc(trimmed[i:], unicode.IsSpace)
	}

	switch verb {
	case VerbConnect, VerbClaimWord:
		return Command{Verb: verb, Args: []string{rest}}, true
	case VerbCreateGame:
		args := strings.Fields(rest)
		if len(args) != 6 {
			return Command{}, false
		}
		return Command{Verb: verb, Args: args}, true
	case VerbJoinGame:
		args := strings.Fields(rest)
		if len(args) != 1 {
			return Command{}, false
		}
		return Command{Verb: verb, Args: args}, true
	case VerbDeleteGame, VerbLeaveGame, VerbStartGame, VerbStartRound, VerbQuitGame:
		if rest != "" {
			return Command{}, false
		}
		return Command{Verb: verb}, true
	}
	return Command{}, false
}

// CreateParams are the validated create-game arguments.
type CreateParams struct {
	Mode       Mode
	Style      words.Style
	Rounds     int
	WordsCount int
	Language   string
	Difficulty words.Difficulty
}

// ParseCreateArgs validates the six create-game arguments in wire order:
// mode style rounds wordsCount language difficulty.
func ParseCreateArgs(args []string) (CreateParams, bool) {
	if len(args) != 6 {
		return CreateParams{}, false
	}
	mode, ok := ParseMode(args[0])
	if !ok {
		return CreateParams{}, false
	}
	style, ok := words.ParseStyle(args[1])
	if !ok {
		return CreateParams{}, false
	}
	rounds, err := strconv.Atoi(args[2])
	if err != nil || rounds < 1 {
		return CreateParams{}, false
	}
	count, err := strconv.Atoi(args[3])
	if err != nil || count < 1 {
		return CreateParams{}, false
	}
	if !words.KnownLanguage(args[4]) {
		return CreateParams{}, false
	}
	difficulty, ok := words.ParseDifficulty(args[5])
	if !ok {
		return CreateParams{}, false
	}
	return CreateParams{
		Mode:       mode,
		Style:      style,
		Rounds:     rounds,
		WordsCount: count,
		Language:   args[4],
		Difficulty: difficulty,
	}, true
}

// ParseGameID validates a join-game id argument.
func ParseGameID(arg string) (uint64, bool) {
	id, err := strconv.ParseUint(arg, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}
