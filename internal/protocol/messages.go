package protocol

import "github.com/typerace/server/internal/score"

// Outbound message type discriminators (frozen wire strings).
const (
	TypeIncorrectName = "incorrect-name"
	TypeTooLongName   = "too-long-name"
	TypeUsedName      = "used-name"
	TypeGamesList     = "games-list"
	TypeGameStart     = "game-start"
	TypeWordsList     = "words-list"
	TypeScores        = "scores"
	TypeManager       = "manager"
)

// NameError is one of the three connect rejections.
type NameError struct {
	Type string `json:"type"`
}

func NewIncorrectName() NameError { return NameError{Type: TypeIncorrectName} }
func NewTooLongName() NameError   { return NameError{Type: TypeTooLongName} }
func NewUsedName() NameError      { return NameError{Type: TypeUsedName} }

// GameSummary is one pending game as shown in the lobby.
type GameSummary struct {
	ID         uint64   `json:"id"`
	Creator    string   `json:"creator"`
	Mode       Mode     `json:"mode"`
	Style      string   `json:"style"`
	Rounds     int      `json:"rounds"`
	WordsCount int      `json:"wordsCount"`
	Language   string   `json:"language"`
	Difficulty string   `json:"difficulty"`
	Players    []string `json:"players"`
}

// GamesList carries every pending game to sessions sitting in the lobby.
type GamesList struct {
	Type  string        `json:"type"`
	Games []GameSummary `json:"games"`
}

func NewGamesList(games []GameSummary) GamesList {
	if games == nil {
		games = []GameSummary{}
	}
	return GamesList{Type: TypeGamesList, Games: games}
}

// GameStart announces the countdown before a round's play phase.
type GameStart struct {
	Type             string   `json:"type"`
	GameID           uint64   `json:"gameId"`
	RoundID          int      `json:"roundId"`
	CountdownSeconds int      `json:"countdownSeconds"`
	Players          []string `json:"players"`
}

func NewGameStart(gameID uint64, roundID, countdownSeconds int, players []string) GameStart {
	return GameStart{
		Type:             TypeGameStart,
		GameID:           gameID,
		RoundID:          roundID,
		CountdownSeconds: countdownSeconds,
		Players:          players,
	}
}

// WordState is one word of the current round as the clients see it.
type WordState struct {
	Label     string `json:"label"`
	Display   string `json:"display"`
	ClaimedBy string `json:"claimedBy,omitempty"`
}

// WordsList carries the full round pool; re-broadcast after every claim.
type WordsList struct {
	Type  string      `json:"type"`
	Words []WordState `json:"words"`
}

func NewWordsList(ws []WordState) WordsList {
	if ws == nil {
		ws = []WordState{}
	}
	return WordsList{Type: TypeWordsList, Words: ws}
}

// Scores closes a round: the round ranking, the cumulative game ranking and
// the final word assignments.
type Scores struct {
	Type          string        `json:"type"`
	RoundScores   []score.Score `json:"roundScores"`
	GameScores    []score.Score `json:"gameScores"`
	Manager       string        `json:"manager"`
	RoundDuration int64         `json:"roundDuration"`
	GameOver      bool          `json:"gameOver"`
	Words         []WordState   `json:"words"`
}

// Manager announces the player now steering the game after a re-election.
type Manager struct {
	Type    string `json:"type"`
	Manager string `json:"manager"`
}

func NewManager(name string) Manager { return Manager{Type: TypeManager, Manager: name} }
