package engine

import (
	"math/rand/v2"
	"slices"
)

type CommandType string

const (
	CmdGoHome     CommandType = "GO_HOME"
	CmdStartSetup CommandType = "START_SETUP"

	CmdSetPlayerCount            CommandType = "SET_PLAYER_COUNT"
	CmdSetPlayerName             CommandType = "SET_PLAYER_NAME"
	CmdSetPlayerColor            CommandType = "SET_PLAYER_COLOR"
	CmdSetGameMode               CommandType = "SET_GAME_MODE"
	CmdSetDrawAllowColorPick     CommandType = "SET_DRAW_ALLOW_COLOR_PICK"
	CmdSetDrawLimitStrokes       CommandType = "SET_DRAW_LIMIT_STROKES"
	CmdSetWord                   CommandType = "SET_WORD"
	CmdSetWordHint               CommandType = "SET_WORD_HINT"
	CmdSetHintsEnabled           CommandType = "SET_HINTS_ENABLED"
	CmdSetCategoryMode           CommandType = "SET_CATEGORY_MODE"
	CmdSetSelectedCategories     CommandType = "SET_SELECTED_CATEGORIES"
	CmdSetTimerEnabled           CommandType = "SET_TIMER_ENABLED"
	CmdSetTimerSeconds           CommandType = "SET_TIMER_SECONDS"
	CmdSetAllowMultipleImpostors CommandType = "SET_ALLOW_MULTIPLE_IMPOSTORS"
	CmdSetImpostorCount          CommandType = "SET_IMPOSTOR_COUNT"
	CmdSetLanguage               CommandType = "SET_LANGUAGE"

	CmdStartGame      CommandType = "START_GAME"
	CmdShowRole       CommandType = "SHOW_ROLE"
	CmdHideRole       CommandType = "HIDE_ROLE"
	CmdStartRound     CommandType = "START_ROUND"
	CmdEndRound       CommandType = "END_ROUND"
	CmdRevealImpostor CommandType = "REVEAL_IMPOSTOR"
	CmdPlayAgain      CommandType = "PLAY_AGAIN"

	CmdCastVote         CommandType = "CAST_VOTE"
	CmdSetVoteMode      CommandType = "SET_VOTE_MODE"
	CmdStartSecretVote  CommandType = "START_SECRET_VOTE"
	CmdSubmitSecretVote CommandType = "SUBMIT_SECRET_VOTE"
	CmdCancelSecretVote CommandType = "CANCEL_SECRET_VOTE"

	CmdResetGame CommandType = "RESET_GAME"
	CmdResetAll  CommandType = "RESET_ALL"
)

/*
	Every command maps to zero or more events. No events means the command
	was rejected and the state is returned untouched.

	CmdStartGame        -> EvtGameStarted
	CmdHideRole         -> EvtRoleHidden (-> EvtDealCompleted on the last seat)
	CmdCastVote         -> EvtPlayerEliminated (-> EvtGameWon)
	CmdSubmitSecretVote -> EvtSecretVoteCast (-> EvtVoteTied | EvtPlayerEliminated (-> EvtGameWon))
*/

// Command is a user intent. Only the fields relevant to Type are read.
type Command struct {
	Type       CommandType
	Index      int
	Count      int
	Seconds    int
	Name       string
	Color      string
	Mode       string
	Enabled    bool
	Categories []string
	Word       string
	Hint       string
	Target     int
	Language   string
}

type EventType string

const (
	EvtScreenChanged       EventType = "ScreenChanged"
	EvtConfigChanged       EventType = "ConfigChanged"
	EvtGameStarted         EventType = "GameStarted"
	EvtRoleShown           EventType = "RoleShown"
	EvtRoleHidden          EventType = "RoleHidden"
	EvtDealCompleted       EventType = "DealCompleted"
	EvtRoundStarted        EventType = "RoundStarted"
	EvtRoundEnded          EventType = "RoundEnded"
	EvtImpostorRevealed    EventType = "ImpostorRevealed"
	EvtPlayerEliminated    EventType = "PlayerEliminated"
	EvtVoteTied            EventType = "VoteTied"
	EvtVoteModeChanged     EventType = "VoteModeChanged"
	EvtSecretVoteStarted   EventType = "SecretVoteStarted"
	EvtSecretVoteCast      EventType = "SecretVoteCast"
	EvtSecretVoteCancelled EventType = "SecretVoteCancelled"
	EvtGameWon             EventType = "GameWon"
	EvtGameReset           EventType = "GameReset"
)

type Event struct {
	Type    EventType
	Player  int
	Players []int
	Winner  Winner
}

var SupportedLanguages = []string{"es", "en"}

// Machine applies commands to states. It owns the random source used for
// role assignment, so it must not be shared between goroutines.
type Machine struct {
	rng *rand.Rand
}

func NewMachine(seed uint64) *Machine {
	return &Machine{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Rand exposes the machine's random source for collaborators that must
// draw from the same stream, such as the word catalog.
func (m *Machine) Rand() *rand.Rand {
	return m.rng
}

func (m *Machine) Apply(s State, cmd Command) ([]Event, State) {
	switch cmd.Type {
	case CmdGoHome:
		return screenChange(s, ScreenHome)

	case CmdStartSetup:
		return screenChange(s, ScreenSetup)

	case CmdSetPlayerCount:
		n := s
		n.PlayerCount = Clamp(cmd.Count, MinPlayers, MaxPlayers)
		n.Players = NormalizePlayers(n.PlayerCount, s.Players)
		if n.AllowMultipleImpostors {
			n.ImpostorCount = max(1, min(s.ImpostorCount, n.PlayerCount))
		} else {
			n.ImpostorCount = 1
		}
		if n.PlayerCount < s.PlayerCount {
			n = dropSeatsFrom(n, n.PlayerCount)
		}
		return configChanged(n)

	case CmdSetPlayerName, CmdSetPlayerColor:
		if cmd.Index < 0 || cmd.Index >= len(s.Players) {
			return nil, s
		}
		n := s
		n.Players = slices.Clone(s.Players)
		if cmd.Type == CmdSetPlayerName {
			n.Players[cmd.Index].Name = cmd.Name
		} else {
			n.Players[cmd.Index].Color = cmd.Color
		}
		return configChanged(n)

	case CmdSetGameMode:
		n := s
		n.GameMode = GameModeWord
		if cmd.Mode == string(GameModeDraw) {
			n.GameMode = GameModeDraw
		}
		return configChanged(n)

	case CmdSetDrawAllowColorPick:
		n := s
		n.DrawAllowColorPick = cmd.Enabled
		return configChanged(n)

	case CmdSetDrawLimitStrokes:
		n := s
		n.DrawLimitStrokes = cmd.Enabled
		return configChanged(n)

	case CmdSetWord:
		n := s
		n.Word = cmd.Word
		return configChanged(n)

	case CmdSetWordHint:
		n := s
		n.WordHint = cmd.Hint
		return configChanged(n)

	case CmdSetHintsEnabled:
		n := s
		n.HintsEnabled = cmd.Enabled
		return configChanged(n)

	case CmdSetCategoryMode:
		n := s
		n.CategoryMode = CategoryModeAll
		if cmd.Mode == string(CategoryModeCustom) {
			n.CategoryMode = CategoryModeCustom
		}
		return configChanged(n)

	case CmdSetSelectedCategories:
		n := s
		n.SelectedCategories = normalizeCategories(cmd.Categories)
		return configChanged(n)

	case CmdSetTimerEnabled:
		n := s
		n.TimerEnabled = cmd.Enabled
		return configChanged(n)

	case CmdSetTimerSeconds:
		n := s
		n.TimerSeconds = Clamp(cmd.Seconds, MinTimerSeconds, MaxTimerSeconds)
		return configChanged(n)

	case CmdSetAllowMultipleImpostors:
		n := s
		n.AllowMultipleImpostors = cmd.Enabled
		if !cmd.Enabled {
			n.ImpostorCount = 1
		}
		return configChanged(n)

	case CmdSetImpostorCount:
		n := s
		n.ImpostorCount = max(1, min(cmd.Count, s.PlayerCount))
		return configChanged(n)

	case CmdSetLanguage:
		if !slices.Contains(SupportedLanguages, cmd.Language) {
			return nil, s
		}
		n := s
		n.Language = cmd.Language
		return configChanged(n)

	case CmdStartGame:
		return m.startGame(s, cmd)

	case CmdShowRole:
		if s.DealStep >= len(s.DealOrder) {
			return nil, s
		}
		n := s
		n.ShowRole = true
		return []Event{{Type: EvtRoleShown, Player: s.DealOrder[s.DealStep]}}, n

	case CmdHideRole:
		if s.DealStep >= len(s.DealOrder) {
			return nil, s
		}
		n := s
		n.ShowRole = false
		n.DealStep = s.DealStep + 1
		events := []Event{{Type: EvtRoleHidden, Player: s.DealOrder[s.DealStep]}}
		if n.DealComplete() {
			events = append(events, Event{Type: EvtDealCompleted})
		}
		return events, n

	case CmdStartRound:
		if s.Screen != ScreenDeal || !s.DealComplete() {
			return nil, s
		}
		n := s
		n.Screen = ScreenReveal
		if s.TimerEnabled || s.GameMode == GameModeDraw {
			n.Screen = ScreenRound
		}
		n.RevealImpostor = false
		return []Event{{Type: EvtRoundStarted}}, n

	case CmdEndRound:
		n := s
		n.Screen = ScreenReveal
		n.RevealImpostor = false
		return []Event{{Type: EvtRoundEnded}}, n

	case CmdRevealImpostor:
		if s.IsDecided() {
			return nil, s
		}
		n := s
		n.RevealImpostor = true
		return []Event{{Type: EvtImpostorRevealed, Players: s.ImpostorIndices}}, n

	case CmdPlayAgain:
		if !CanVote(s) {
			return nil, s
		}
		return screenChange(s, ScreenRound)

	case CmdCastVote:
		if !slices.Contains(VoteCandidates(s), cmd.Target) {
			return nil, s
		}
		n, ok := resolveVote(s, cmd.Target)
		if !ok {
			return nil, s
		}
		n.TieCandidates = []int{}
		return eliminationEvents(n, cmd.Target), n

	case CmdSetVoteMode:
		n := s
		n.VoteMode = VoteModePublic
		if cmd.Mode == string(VoteModeSecret) {
			n.VoteMode = VoteModeSecret
		} else {
			n = clearSecretVote(n)
		}
		return []Event{{Type: EvtVoteModeChanged}}, n

	case CmdStartSecretVote:
		if !CanVote(s) {
			return nil, s
		}
		n := clearSecretVote(s)
		n.VoteMode = VoteModeSecret
		n.SecretVoteOrder = slices.Clone(s.AliveOrAll())
		n.LastVote = nil
		return []Event{{Type: EvtSecretVoteStarted, Players: n.SecretVoteOrder}}, n

	case CmdSubmitSecretVote:
		return submitSecretVote(s, cmd.Target)

	case CmdCancelSecretVote:
		if len(s.SecretVoteOrder) == 0 {
			return nil, s
		}
		return []Event{{Type: EvtSecretVoteCancelled}}, clearSecretVote(s)

	case CmdResetGame:
		n := withConfigOf(s)
		n.Screen = ScreenSetup
		return []Event{{Type: EvtGameReset}}, n

	case CmdResetAll:
		return []Event{{Type: EvtGameReset}}, NewFreshState()

	default:
		return nil, s
	}
}

func (m *Machine) startGame(s State, cmd Command) ([]Event, State) {
	n := s
	n.Screen = ScreenDeal
	if cmd.Word != "" {
		n.Word = cmd.Word
	}
	n.WordHint = cmd.Hint
	n.ImpostorIndices = PickImpostors(m.rng, len(s.Players), s.ImpostorCount)
	n.DealOrder = BuildDealOrder(len(s.Players))
	n.DealStep = 0
	n.ShowRole = false
	n.RevealImpostor = false
	n.AlivePlayers = BuildDealOrder(len(s.Players))
	n.Winner = WinnerNone
	n.LastVote = nil
	n.TieCandidates = []int{}
	n = clearSecretVote(n)
	return []Event{{Type: EvtGameStarted, Players: n.ImpostorIndices}}, n
}

func submitSecretVote(s State, target int) ([]Event, State) {
	if !CanVote(s) || !s.SecretVoteActive() {
		return nil, s
	}
	if !s.IsAlive(target) || !slices.Contains(VoteCandidates(s), target) {
		return nil, s
	}

	voter := s.SecretVoteOrder[s.SecretVoteStep]
	n := s
	n.SecretVotes = append(slices.Clone(s.SecretVotes), SecretVote{Voter: voter, Target: target})
	n.SecretVoteStep = s.SecretVoteStep + 1
	events := []Event{{Type: EvtSecretVoteCast, Player: voter}}

	if n.SecretVoteStep < len(n.SecretVoteOrder) {
		return events, n
	}

	top := tallyTopTargets(n.SecretVotes)
	n = clearSecretVote(n)

	if len(top) > 1 {
		names := make([]string, 0, len(top))
		for _, idx := range top {
			names = append(names, PlayerDisplay(s, idx).Name)
		}
		n.TieCandidates = top
		n.LastVote = TieVote{Indices: slices.Clone(top), Names: names}
		return append(events, Event{Type: EvtVoteTied, Players: top}), n
	}

	resolved, ok := resolveVote(n, top[0])
	if !ok {
		return nil, s
	}
	resolved.TieCandidates = []int{}
	return append(events, eliminationEvents(resolved, top[0])...), resolved
}

func eliminationEvents(s State, target int) []Event {
	events := []Event{{Type: EvtPlayerEliminated, Player: target}}
	if s.IsDecided() {
		events = append(events, Event{Type: EvtGameWon, Winner: s.Winner})
	}
	return events
}

func screenChange(s State, screen Screen) ([]Event, State) {
	n := s
	n.Screen = screen
	return []Event{{Type: EvtScreenChanged}}, n
}

func configChanged(s State) ([]Event, State) {
	return []Event{{Type: EvtConfigChanged}}, s
}

// dropSeatsFrom removes every seat >= count from the game in progress
// after the roster shrinks. Cursors keep pointing at the same next seat.
func dropSeatsFrom(s State, count int) State {
	keep := func(id int) bool { return id < count }

	s.ImpostorIndices = filterInts(s.ImpostorIndices, keep)
	s.AlivePlayers = filterInts(s.AlivePlayers, keep)
	s.TieCandidates = filterInts(s.TieCandidates, keep)

	dealt := 0
	for _, id := range s.DealOrder[:min(s.DealStep, len(s.DealOrder))] {
		if keep(id) {
			dealt++
		}
	}
	s.DealOrder = filterInts(s.DealOrder, keep)
	s.DealStep = dealt
	s.ShowRole = s.ShowRole && s.DealStep < len(s.DealOrder)

	if len(s.SecretVoteOrder) == 0 {
		return s
	}
	// Votes stay a prefix of the order: removed voters go with their vote,
	// and a vote for a removed seat ends the prefix.
	votes := make([]SecretVote, 0, len(s.SecretVotes))
	for _, v := range s.SecretVotes {
		if !keep(v.Voter) {
			continue
		}
		if !keep(v.Target) {
			break
		}
		votes = append(votes, v)
	}
	s.SecretVoteOrder = filterInts(s.SecretVoteOrder, keep)
	s.SecretVotes = votes
	s.SecretVoteStep = len(votes)
	if !s.SecretVoteActive() {
		s = clearSecretVote(s)
	}
	return s
}
