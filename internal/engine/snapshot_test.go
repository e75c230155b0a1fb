package engine

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHydrate_FallsBackToFreshState(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "empty", raw: ""},
		{name: "garbage", raw: "{not json"},
		{name: "array", raw: "[1,2,3]"},
		{name: "string", raw: `"hello"`},
		{name: "null", raw: "null"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, NewFreshState(), Hydrate([]byte(tc.raw)))
		})
	}
}

func TestHydrate_EmptyObjectUsesDefaults(t *testing.T) {
	s := Hydrate([]byte(`{}`))

	assert.Equal(t, ScreenHome, s.Screen)
	assert.Equal(t, DefaultPlayerCount, s.PlayerCount)
	assert.Len(t, s.Players, DefaultPlayerCount)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.AlivePlayers, "empty alive set means everyone")
	assert.True(t, s.HintsEnabled)
	assert.True(t, s.DrawAllowColorPick)
	assert.Equal(t, DefaultTimerSeconds, s.TimerSeconds)
	assert.Equal(t, 1, s.ImpostorCount)
	assert.False(t, s.AllowMultipleImpostors)
}

func TestHydrate_Normalizes(t *testing.T) {
	raw := `{
		"screen": "reveal",
		"playerCount": 40,
		"players": ["Ana", {"name": "", "color": "#101010"}, 7, {"name": "Dani"}],
		"gameMode": "sculpture",
		"hintsEnabled": "yes",
		"categoryMode": "custom",
		"selectedCategories": ["Food", 3, "Animals", "Food"],
		"timerSeconds": 5000,
		"alivePlayers": [0, 3, 3, -1, 99, 2.5, "4", 7],
		"tieCandidates": [3, 5, 7],
		"impostorIndices": [7, 7, 20],
		"impostorCount": 0,
		"dealOrder": [0, 1, 2],
		"dealStep": 10,
		"showRole": true,
		"winner": "nobody",
		"voteMode": "secret",
		"lastVote": {"status": "wrong", "name": "Dani", "index": 3, "color": "#fff", "remainingInnocents": 4}
	}`

	s := Hydrate([]byte(raw))

	assert.Equal(t, ScreenReveal, s.Screen)
	require.Equal(t, MaxPlayers, s.PlayerCount)
	require.Len(t, s.Players, MaxPlayers)
	assert.Equal(t, Player{Name: "Ana", Color: DefaultPlayerColor(0)}, s.Players[0])
	assert.Equal(t, Player{Name: "Jugador 2", Color: "#101010"}, s.Players[1])
	assert.Equal(t, Player{Name: "Jugador 3", Color: DefaultPlayerColor(2)}, s.Players[2])
	assert.Equal(t, "Dani", s.Players[3].Name)

	assert.Equal(t, GameModeWord, s.GameMode)
	assert.True(t, s.HintsEnabled)
	assert.Equal(t, CategoryModeCustom, s.CategoryMode)
	assert.Equal(t, []string{"Animals", "Food"}, s.SelectedCategories)
	assert.Equal(t, MaxTimerSeconds, s.TimerSeconds)

	assert.Equal(t, []int{0, 3, 7}, s.AlivePlayers)
	assert.Equal(t, []int{3, 7}, s.TieCandidates)
	assert.Equal(t, []int{7}, s.ImpostorIndices)
	assert.Equal(t, 1, s.ImpostorCount)

	assert.Equal(t, 3, s.DealStep)
	assert.False(t, s.ShowRole)
	assert.Equal(t, WinnerNone, s.Winner)
	assert.Equal(t, VoteModeSecret, s.VoteMode)
	assert.Equal(t, WrongVote{Name: "Dani", Index: 3, Color: "#fff", RemainingInnocents: 4}, s.LastVote)
}

func TestHydrate_LegacyImpostorIndex(t *testing.T) {
	s := Hydrate([]byte(`{"playerCount": 6, "impostorIndex": 4, "keepSameImpostor": true, "category": "x"}`))
	assert.Equal(t, []int{4}, s.ImpostorIndices)
	assert.Equal(t, 1, s.ImpostorCount)
	assert.False(t, s.AllowMultipleImpostors)

	s = Hydrate([]byte(`{"playerCount": 6, "impostorIndex": 9}`))
	assert.Empty(t, s.ImpostorIndices, "out of range legacy index is dropped")

	s = Hydrate([]byte(`{"playerCount": 6, "impostorIndices": [1, 3]}`))
	assert.Equal(t, 2, s.ImpostorCount)
	assert.True(t, s.AllowMultipleImpostors, "derived from the impostor count")

	s = Hydrate([]byte(`{"playerCount": 6, "impostorIndices": [1, 3], "allowMultipleImpostors": false}`))
	assert.False(t, s.AllowMultipleImpostors)

	s = Hydrate([]byte(`{"playerCount": 6, "impostorIndices": [0, 1, 2], "impostorCount": 1}`))
	assert.Equal(t, []int{0}, s.ImpostorIndices, "seats beyond the impostor count are dropped")
	assert.Equal(t, 1, s.ImpostorCount)

	s = Hydrate([]byte(`{"playerCount": 4, "impostorCount": 9}`))
	assert.Equal(t, 4, s.ImpostorCount)
	assert.True(t, s.AllowMultipleImpostors)
}

func TestHydrate_SecretBallot(t *testing.T) {
	s := Hydrate([]byte(`{
		"secretVoteOrder": [0, 1, 2, 3, 4],
		"secretVoteStep": 2,
		"secretVotes": [{"voter": 0, "target": 3}, {"voter": 1, "target": 4}, {"voter": 2, "target": 1}]
	}`))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, s.SecretVoteOrder)
	assert.Equal(t, 2, s.SecretVoteStep)
	assert.Equal(t, []SecretVote{{Voter: 0, Target: 3}, {Voter: 1, Target: 4}}, s.SecretVotes)

	s = Hydrate([]byte(`{"secretVoteOrder": [0, 1], "secretVoteStep": 2, "secretVotes": [{"voter": 0, "target": 1}, {"voter": 1, "target": 0}]}`))
	assert.False(t, s.SecretVoteActive(), "finished but unresolved ballots are dropped")

	s = Hydrate([]byte(`{"secretVoteOrder": [0, 1, 2], "secretVoteStep": 2, "secretVotes": [{"voter": "a", "target": 1}]}`))
	assert.Zero(t, s.SecretVoteStep, "cursor follows the votes that survived")
	assert.Empty(t, s.SecretVotes)
}

func TestHydrate_LastVoteVariants(t *testing.T) {
	s := Hydrate([]byte(`{"lastVote": {"status": "tie", "indices": [1, 2], "names": ["Bea"]}}`))
	assert.Equal(t, TieVote{Indices: []int{1, 2}, Names: []string{"Bea", "Jugador"}}, s.LastVote)

	s = Hydrate([]byte(`{"lastVote": {"status": "correct", "index": 2, "remainingImpostors": 1}}`))
	assert.Equal(t, CorrectVote{Index: 2, RemainingImpostors: 1}, s.LastVote)

	s = Hydrate([]byte(`{"lastVote": {"status": "correct"}}`))
	assert.Nil(t, s.LastVote)

	s = Hydrate([]byte(`{"lastVote": {"status": "maybe", "index": 1}}`))
	assert.Nil(t, s.LastVote)
}

func TestSnapshot_RoundTripIsStable(t *testing.T) {
	m := NewMachine(21)
	fresh := NewFreshState()

	_, started := m.Apply(fresh, Command{Type: CmdStartGame, Word: "Isla", Hint: "Agua"})

	tied := gameInProgress(4, 3)
	tied = castSecretBallot(t, m, tied, 1, 1, 2, 2)

	secret := gameInProgress(5, 1)
	_, secret = m.Apply(secret, Command{Type: CmdStartSecretVote})
	_, secret = m.Apply(secret, Command{Type: CmdSubmitSecretVote, Target: 1})

	won := gameInProgress(5, 2)
	_, won = m.Apply(won, Command{Type: CmdCastVote, Target: 2})

	wrong := gameInProgress(5, 2)
	_, wrong = m.Apply(wrong, Command{Type: CmdCastVote, Target: 0})

	for name, s := range map[string]State{
		"fresh":   fresh,
		"started": started,
		"tied":    tied,
		"secret":  secret,
		"won":     won,
		"wrong":   wrong,
	} {
		t.Run(name, func(t *testing.T) {
			first, err := json.Marshal(s)
			require.NoError(t, err)

			normalized, err := json.Marshal(Hydrate(first))
			require.NoError(t, err)

			again, err := json.Marshal(Hydrate(normalized))
			require.NoError(t, err)

			assert.JSONEq(t, string(normalized), string(again))
			assert.Equal(t, normalized, again)
		})
	}
}

func TestSnapshot_PreservesGameInProgress(t *testing.T) {
	m := NewMachine(8)
	s := gameInProgress(6, 1, 4)
	_, s = m.Apply(s, Command{Type: CmdCastVote, Target: 4})

	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var back State
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, s, back)
}

func TestSnapshot_WireShape(t *testing.T) {
	s := gameInProgress(5, 2)
	raw, err := json.Marshal(s)
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Nil(t, generic["winner"])
	assert.Nil(t, generic["lastVote"])
	assert.Equal(t, "reveal", generic["screen"])
	assert.Equal(t, []any{2.0}, generic["impostorIndices"])
	assert.Equal(t, []any{}, generic["tieCandidates"])
}
