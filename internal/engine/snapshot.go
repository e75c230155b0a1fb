package engine

import (
	"encoding/json"
	"math"
	"slices"

	"github.com/tidwall/gjson"
)

// snapshotJSON is the persisted and wire shape of a State. Keys match the
// storage format written by earlier clients so old saves keep loading.
type snapshotJSON struct {
	Screen                 Screen        `json:"screen"`
	PlayerCount            int           `json:"playerCount"`
	Players                []Player      `json:"players"`
	Language               string        `json:"language"`
	GameMode               GameMode      `json:"gameMode"`
	DrawAllowColorPick     bool          `json:"drawAllowColorPick"`
	DrawLimitStrokes       bool          `json:"drawLimitStrokes"`
	Word                   string        `json:"word"`
	WordHint               string        `json:"wordHint"`
	HintsEnabled           bool          `json:"hintsEnabled"`
	CategoryMode           CategoryMode  `json:"categoryMode"`
	SelectedCategories     []string      `json:"selectedCategories"`
	TimerEnabled           bool          `json:"timerEnabled"`
	TimerSeconds           int           `json:"timerSeconds"`
	AllowMultipleImpostors bool          `json:"allowMultipleImpostors"`
	ImpostorCount          int           `json:"impostorCount"`
	ImpostorIndices        []int         `json:"impostorIndices"`
	DealOrder              []int         `json:"dealOrder"`
	DealStep               int           `json:"dealStep"`
	ShowRole               bool          `json:"showRole"`
	RevealImpostor         bool          `json:"revealImpostor"`
	AlivePlayers           []int         `json:"alivePlayers"`
	Winner                 *Winner       `json:"winner"`
	LastVote               *lastVoteJSON `json:"lastVote"`
	VoteMode               VoteMode      `json:"voteMode"`
	SecretVoteOrder        []int         `json:"secretVoteOrder"`
	SecretVoteStep         int           `json:"secretVoteStep"`
	SecretVotes            []SecretVote  `json:"secretVotes"`
	TieCandidates          []int         `json:"tieCandidates"`
}

type lastVoteJSON struct {
	Status             VoteStatus `json:"status"`
	Name               string     `json:"name,omitempty"`
	Index              *int       `json:"index,omitempty"`
	Color              string     `json:"color,omitempty"`
	RemainingImpostors *int       `json:"remainingImpostors,omitempty"`
	RemainingInnocents *int       `json:"remainingInnocents,omitempty"`
	Indices            []int      `json:"indices,omitempty"`
	Names              []string   `json:"names,omitempty"`
}

func (s State) MarshalJSON() ([]byte, error) {
	out := snapshotJSON{
		Screen:                 s.Screen,
		PlayerCount:            s.PlayerCount,
		Players:                cloneOrEmpty(s.Players),
		Language:               s.Language,
		GameMode:               s.GameMode,
		DrawAllowColorPick:     s.DrawAllowColorPick,
		DrawLimitStrokes:       s.DrawLimitStrokes,
		Word:                   s.Word,
		WordHint:               s.WordHint,
		HintsEnabled:           s.HintsEnabled,
		CategoryMode:           s.CategoryMode,
		SelectedCategories:     cloneOrEmpty(s.SelectedCategories),
		TimerEnabled:           s.TimerEnabled,
		TimerSeconds:           s.TimerSeconds,
		AllowMultipleImpostors: s.AllowMultipleImpostors,
		ImpostorCount:          s.ImpostorCount,
		ImpostorIndices:        cloneOrEmpty(s.ImpostorIndices),
		DealOrder:              cloneOrEmpty(s.DealOrder),
		DealStep:               s.DealStep,
		ShowRole:               s.ShowRole,
		RevealImpostor:         s.RevealImpostor,
		AlivePlayers:           cloneOrEmpty(s.AlivePlayers),
		VoteMode:               s.VoteMode,
		SecretVoteOrder:        cloneOrEmpty(s.SecretVoteOrder),
		SecretVoteStep:         s.SecretVoteStep,
		SecretVotes:            cloneOrEmpty(s.SecretVotes),
		TieCandidates:          cloneOrEmpty(s.TieCandidates),
	}
	if s.Winner != WinnerNone {
		w := s.Winner
		out.Winner = &w
	}

	switch v := s.LastVote.(type) {
	case CorrectVote:
		out.LastVote = &lastVoteJSON{
			Status:             VoteCorrect,
			Name:               v.Name,
			Index:              &v.Index,
			Color:              v.Color,
			RemainingImpostors: &v.RemainingImpostors,
		}
	case WrongVote:
		out.LastVote = &lastVoteJSON{
			Status:             VoteWrong,
			Name:               v.Name,
			Index:              &v.Index,
			Color:              v.Color,
			RemainingInnocents: &v.RemainingInnocents,
		}
	case TieVote:
		out.LastVote = &lastVoteJSON{
			Status:  VoteTie,
			Indices: cloneOrEmpty(v.Indices),
			Names:   cloneOrEmpty(v.Names),
		}
	}

	return json.Marshal(out)
}

// UnmarshalJSON never fails: anything it cannot make sense of falls back
// to fresh-state defaults.
func (s *State) UnmarshalJSON(data []byte) error {
	*s = Hydrate(data)
	return nil
}

// Hydrate rebuilds a State from a stored snapshot, normalizing every
// field. Payloads that are not a JSON object yield NewFreshState.
func Hydrate(raw []byte) State {
	fresh := NewFreshState()
	if !gjson.ValidBytes(raw) {
		return fresh
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return fresh
	}

	s := fresh

	count := DefaultPlayerCount
	if n, ok := intField(doc.Get("playerCount")); ok && n != 0 {
		count = n
	}
	count = Clamp(count, MinPlayers, MaxPlayers)
	s.PlayerCount = count
	s.Players = hydratePlayers(count, doc.Get("players"))

	s.Screen = enumField(doc.Get("screen"), []Screen{ScreenHome, ScreenSetup, ScreenDeal, ScreenRound, ScreenReveal}, fresh.Screen)
	s.Language = enumField(doc.Get("language"), SupportedLanguages, fresh.Language)
	s.GameMode = enumField(doc.Get("gameMode"), []GameMode{GameModeWord, GameModeDraw}, fresh.GameMode)
	s.DrawAllowColorPick = boolField(doc.Get("drawAllowColorPick"), fresh.DrawAllowColorPick)
	s.DrawLimitStrokes = boolField(doc.Get("drawLimitStrokes"), fresh.DrawLimitStrokes)

	s.Word = stringField(doc.Get("word"))
	s.WordHint = stringField(doc.Get("wordHint"))
	s.HintsEnabled = boolField(doc.Get("hintsEnabled"), fresh.HintsEnabled)

	s.CategoryMode = enumField(doc.Get("categoryMode"), []CategoryMode{CategoryModeAll, CategoryModeCustom}, fresh.CategoryMode)
	s.SelectedCategories = hydrateCategories(doc.Get("selectedCategories"))

	s.TimerEnabled = boolField(doc.Get("timerEnabled"), fresh.TimerEnabled)
	if n, ok := intField(doc.Get("timerSeconds")); ok {
		s.TimerSeconds = Clamp(n, MinTimerSeconds, MaxTimerSeconds)
	}

	s.AlivePlayers = indexList(doc.Get("alivePlayers"), count)
	if len(s.AlivePlayers) == 0 {
		s.AlivePlayers = BuildDealOrder(count)
	}
	s.TieCandidates = []int{}
	for _, id := range indexList(doc.Get("tieCandidates"), count) {
		if containsInt(s.AlivePlayers, id) {
			s.TieCandidates = append(s.TieCandidates, id)
		}
	}

	// Older saves carried a single impostorIndex.
	if list := doc.Get("impostorIndices"); list.IsArray() {
		s.ImpostorIndices = indexList(list, count)
	} else if legacy, ok := intField(doc.Get("impostorIndex")); ok && legacy >= 0 && legacy < count {
		s.ImpostorIndices = []int{legacy}
	}

	requested := len(s.ImpostorIndices)
	if n, ok := intField(doc.Get("impostorCount")); ok && n != 0 {
		requested = n
	}
	if requested == 0 {
		requested = 1
	}
	s.ImpostorCount = max(1, min(requested, count))
	if len(s.ImpostorIndices) > s.ImpostorCount {
		s.ImpostorIndices = s.ImpostorIndices[:s.ImpostorCount:s.ImpostorCount]
	}
	s.AllowMultipleImpostors = boolField(doc.Get("allowMultipleImpostors"), requested > 1)

	s.DealOrder = indexList(doc.Get("dealOrder"), count)
	if n, ok := intField(doc.Get("dealStep")); ok {
		s.DealStep = Clamp(n, 0, len(s.DealOrder))
	}
	s.ShowRole = boolField(doc.Get("showRole"), false) && s.DealStep < len(s.DealOrder)
	s.RevealImpostor = boolField(doc.Get("revealImpostor"), false)

	s.Winner = enumField(doc.Get("winner"), []Winner{WinnerInnocents, WinnerImpostor}, WinnerNone)
	s.LastVote = hydrateLastVote(doc.Get("lastVote"), count)

	s.VoteMode = enumField(doc.Get("voteMode"), []VoteMode{VoteModePublic, VoteModeSecret}, fresh.VoteMode)
	s = hydrateSecretVote(s, doc, count)

	return s
}

func hydratePlayers(count int, r gjson.Result) []Player {
	if !r.IsArray() {
		return BuildDefaultPlayers(count)
	}
	players := make([]Player, 0, count)
	for _, item := range r.Array() {
		if len(players) == count {
			break
		}
		var p Player
		switch {
		case item.Type == gjson.String:
			p.Name = item.Str
		case item.IsObject():
			p.Name = stringField(item.Get("name"))
			p.Color = stringField(item.Get("color"))
		}
		players = append(players, p)
	}
	return NormalizePlayers(count, players)
}

func hydrateCategories(r gjson.Result) []string {
	if !r.IsArray() {
		return []string{}
	}
	var categories []string
	for _, item := range r.Array() {
		if item.Type == gjson.String {
			categories = append(categories, item.Str)
		}
	}
	return normalizeCategories(categories)
}

func hydrateLastVote(r gjson.Result, count int) VoteOutcome {
	if !r.IsObject() {
		return nil
	}
	switch VoteStatus(r.Get("status").String()) {
	case VoteCorrect:
		idx, ok := intField(r.Get("index"))
		if !ok {
			return nil
		}
		remaining, _ := intField(r.Get("remainingImpostors"))
		return CorrectVote{
			Name:               stringField(r.Get("name")),
			Index:              idx,
			Color:              stringField(r.Get("color")),
			RemainingImpostors: max(remaining, 0),
		}
	case VoteWrong:
		idx, ok := intField(r.Get("index"))
		if !ok {
			return nil
		}
		remaining, _ := intField(r.Get("remainingInnocents"))
		return WrongVote{
			Name:               stringField(r.Get("name")),
			Index:              idx,
			Color:              stringField(r.Get("color")),
			RemainingInnocents: max(remaining, 0),
		}
	case VoteTie:
		indices := indexList(r.Get("indices"), count)
		if len(indices) == 0 {
			return nil
		}
		names := make([]string, 0, len(indices))
		stored := r.Get("names").Array()
		for i := range indices {
			name := ""
			if i < len(stored) {
				name = stringField(stored[i])
			}
			if name == "" {
				name = fallbackPlayerName
			}
			names = append(names, name)
		}
		return TieVote{Indices: indices, Names: names}
	}
	return nil
}

// hydrateSecretVote keeps the ballot only while it is still collecting
// votes and the recorded votes agree with the cursor.
func hydrateSecretVote(s State, doc gjson.Result, count int) State {
	s = clearSecretVote(s)

	order := indexList(doc.Get("secretVoteOrder"), count)
	if len(order) == 0 {
		return s
	}

	var votes []SecretVote
	for _, item := range doc.Get("secretVotes").Array() {
		voter, okVoter := intField(item.Get("voter"))
		target, okTarget := intField(item.Get("target"))
		if !okVoter || !okTarget || voter < 0 || voter >= count || target < 0 || target >= count {
			continue
		}
		votes = append(votes, SecretVote{Voter: voter, Target: target})
	}

	step, _ := intField(doc.Get("secretVoteStep"))
	step = Clamp(step, 0, len(order))
	if len(votes) > step {
		votes = votes[:step]
	}
	step = len(votes)
	if step >= len(order) {
		return s
	}

	s.SecretVoteOrder = order
	s.SecretVoteStep = step
	s.SecretVotes = cloneOrEmpty(votes)
	return s
}

func intField(r gjson.Result) (int, bool) {
	if r.Type != gjson.Number || r.Num != math.Trunc(r.Num) {
		return 0, false
	}
	if r.Num > math.MaxInt32 || r.Num < math.MinInt32 {
		return 0, false
	}
	return int(r.Num), true
}

func boolField(r gjson.Result, def bool) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	}
	return def
}

func stringField(r gjson.Result) string {
	if r.Type != gjson.String {
		return ""
	}
	return r.Str
}

func enumField[T ~string](r gjson.Result, allowed []T, def T) T {
	if r.Type != gjson.String {
		return def
	}
	if v := T(r.Str); slices.Contains(allowed, v) {
		return v
	}
	return def
}

// indexList keeps the in-range integer entries of r, first occurrence only.
func indexList(r gjson.Result, count int) []int {
	out := []int{}
	if !r.IsArray() {
		return out
	}
	for _, item := range r.Array() {
		id, ok := intField(item)
		if !ok || id < 0 || id >= count || containsInt(out, id) {
			continue
		}
		out = append(out, id)
	}
	return out
}
