package engine

type Screen string

const (
	ScreenHome   Screen = "home"
	ScreenSetup  Screen = "setup"
	ScreenDeal   Screen = "deal"
	ScreenRound  Screen = "round"
	ScreenReveal Screen = "reveal"
)

type GameMode string

const (
	GameModeWord GameMode = "word"
	GameModeDraw GameMode = "draw"
)

type CategoryMode string

const (
	CategoryModeAll    CategoryMode = "all"
	CategoryModeCustom CategoryMode = "custom"
)

type VoteMode string

const (
	VoteModePublic VoteMode = "public"
	VoteModeSecret VoteMode = "secret"
)

type Winner string

const (
	WinnerNone      Winner = ""
	WinnerInnocents Winner = "innocents"
	WinnerImpostor  Winner = "impostor"
)

const (
	MinPlayers = 3
	MaxPlayers = 15

	MinTimerSeconds     = 30
	MaxTimerSeconds     = 900
	DefaultTimerSeconds = 180

	DefaultPlayerCount = 5
	DefaultLanguage    = "es"

	// MinPlayersForImpostorWin is the alive-player threshold at which
	// surviving impostors take the game. Tunable house rule.
	MinPlayersForImpostorWin = 2
)

type Player struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type SecretVote struct {
	Voter  int `json:"voter"`
	Target int `json:"target"`
}

// State is the whole application snapshot. Values are treated as
// immutable: Apply returns a new State and never writes through the
// slices of the one it was given.
type State struct {
	Screen Screen

	PlayerCount int
	Players     []Player
	Language    string

	GameMode           GameMode
	DrawAllowColorPick bool
	DrawLimitStrokes   bool

	Word         string
	WordHint     string
	HintsEnabled bool

	CategoryMode       CategoryMode
	SelectedCategories []string

	TimerEnabled bool
	TimerSeconds int

	AllowMultipleImpostors bool
	ImpostorCount          int
	ImpostorIndices        []int

	DealOrder []int
	DealStep  int
	ShowRole  bool

	AlivePlayers   []int
	RevealImpostor bool
	Winner         Winner
	LastVote       VoteOutcome

	VoteMode        VoteMode
	SecretVoteOrder []int
	SecretVoteStep  int
	SecretVotes     []SecretVote
	TieCandidates   []int
}

// NewFreshState returns factory defaults.
func NewFreshState() State {
	return State{
		Screen:             ScreenHome,
		PlayerCount:        DefaultPlayerCount,
		Players:            BuildDefaultPlayers(DefaultPlayerCount),
		Language:           DefaultLanguage,
		GameMode:           GameModeWord,
		DrawAllowColorPick: true,
		DrawLimitStrokes:   true,
		HintsEnabled:       true,
		CategoryMode:       CategoryModeAll,
		SelectedCategories: []string{},
		TimerSeconds:       DefaultTimerSeconds,
		ImpostorCount:      1,
		ImpostorIndices:    []int{},
		DealOrder:          []int{},
		AlivePlayers:       []int{},
		VoteMode:           VoteModePublic,
		SecretVoteOrder:    []int{},
		SecretVotes:        []SecretVote{},
		TieCandidates:      []int{},
	}
}

// withConfigOf returns a fresh state carrying over every configuration
// field of prev. Game-in-progress fields are cleared.
func withConfigOf(prev State) State {
	s := NewFreshState()
	s.PlayerCount = prev.PlayerCount
	s.Players = NormalizePlayers(prev.PlayerCount, prev.Players)
	s.Language = prev.Language
	s.GameMode = prev.GameMode
	s.DrawAllowColorPick = prev.DrawAllowColorPick
	s.DrawLimitStrokes = prev.DrawLimitStrokes
	s.HintsEnabled = prev.HintsEnabled
	s.CategoryMode = prev.CategoryMode
	s.SelectedCategories = cloneOrEmpty(prev.SelectedCategories)
	s.TimerEnabled = prev.TimerEnabled
	s.TimerSeconds = prev.TimerSeconds
	s.VoteMode = prev.VoteMode
	s.AllowMultipleImpostors = prev.AllowMultipleImpostors
	s.ImpostorCount = prev.ImpostorCount
	return s
}

func (s State) IsDecided() bool {
	return s.Winner != WinnerNone
}

func (s State) IsImpostor(index int) bool {
	return containsInt(s.ImpostorIndices, index)
}

func (s State) IsAlive(index int) bool {
	return containsInt(s.AliveOrAll(), index)
}

// AliveOrAll treats an empty alive set as "everyone".
func (s State) AliveOrAll() []int {
	if len(s.AlivePlayers) > 0 {
		return s.AlivePlayers
	}
	return BuildDealOrder(len(s.Players))
}

// DealComplete reports whether every player has seen their role.
func (s State) DealComplete() bool {
	return len(s.DealOrder) > 0 && s.DealStep >= len(s.DealOrder)
}

// SecretVoteActive reports whether a secret ballot is collecting votes.
func (s State) SecretVoteActive() bool {
	return len(s.SecretVoteOrder) > 0 && s.SecretVoteStep < len(s.SecretVoteOrder)
}
