package types

// Client -> Server
// Every action is a JSON object with a "type" naming the command.
//
// GO_HOME, START_SETUP: {}
//
// SET_PLAYER_COUNT:
//   count: number (clamped to 3..15)
//
// SET_PLAYER_NAME:
//   index: number
//   name: string
//
// SET_PLAYER_COLOR:
//   index: number
//   color: string
//
// SET_GAME_MODE:
//   mode: "word" | "draw"
//
// SET_DRAW_ALLOW_COLOR_PICK, SET_DRAW_LIMIT_STROKES, SET_HINTS_ENABLED,
// SET_TIMER_ENABLED, SET_ALLOW_MULTIPLE_IMPOSTORS:
//   enabled: boolean
//
// SET_WORD:
//   word: string
//
// SET_WORD_HINT:
//   hint: string
//
// SET_CATEGORY_MODE:
//   mode: "all" | "custom"
//
// SET_SELECTED_CATEGORIES:
//   categories: string[]
//
// SET_TIMER_SECONDS:
//   seconds: number (clamped to 30..900)
//
// SET_IMPOSTOR_COUNT:
//   count: number
//
// SET_LANGUAGE:
//   language: string (any BCP 47 tag, resolved to "es" | "en")
//
// START_GAME: {}
//   the word and hint are drawn from the word list on the server
//
// SHOW_ROLE, HIDE_ROLE, START_ROUND, END_ROUND, REVEAL_IMPOSTOR,
// PLAY_AGAIN, START_SECRET_VOTE, CANCEL_SECRET_VOTE, RESET_GAME,
// RESET_ALL: {}
//
// CAST_VOTE, SUBMIT_SECRET_VOTE:
//   target: number (player index)
//
// SET_VOTE_MODE:
//   mode: "public" | "secret"

// Server -> Client
// StateSnapshot:
//   code: string
//   version: number (bumped on every applied action)
//   state: see snapshot.go
//   view: derived read model (canVote, voteCandidates, currentDealPlayer, ...)
//   events: { type, player, players?, winner? }[] // omitted on join
//
// Rejected:
//   code: string
//   version: number
//   problems: string[] // localized reasons START_GAME was refused
//
// Error:
//   error: string

const (
	MsgStateSnapshot = "StateSnapshot"
	MsgRejected      = "Rejected"
	MsgError         = "Error"
)

// ClientMessage is an action as sent by a client. Type is the command
// name (SET_PLAYER_COUNT, CAST_VOTE, ...); the other fields are read
// depending on it.
type ClientMessage struct {
	Type       string   `json:"type"`
	Index      int      `json:"index,omitempty"`
	Count      int      `json:"count,omitempty"`
	Seconds    int      `json:"seconds,omitempty"`
	Name       string   `json:"name,omitempty"`
	Color      string   `json:"color,omitempty"`
	Mode       string   `json:"mode,omitempty"`
	Enabled    bool     `json:"enabled,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Word       string   `json:"word,omitempty"`
	Hint       string   `json:"hint,omitempty"`
	Target     int      `json:"target,omitempty"`
	Language   string   `json:"language,omitempty"`
}

type EventMessage struct {
	Type    string `json:"type"`
	Player  int    `json:"player"`
	Players []int  `json:"players,omitempty"`
	Winner  string `json:"winner,omitempty"`
}
