package engine

import (
	"fmt"
	"slices"
	"strings"
)

const (
	fallbackPlayerName  = "Jugador"
	fallbackPlayerColor = "#9aa0a6"
)

var defaultPlayerColors = []string{
	"#ff6b6b",
	"#f7b801",
	"#6adf7e",
	"#43bccd",
	"#5b7cfa",
	"#9b5de5",
	"#f15bb5",
	"#ff9f1c",
	"#2ec4b6",
	"#e71d36",
	"#3a86ff",
	"#8338ec",
	"#ff006e",
	"#fb5607",
	"#06d6a0",
}

func Clamp(value, lo, hi int) int {
	return min(max(value, lo), hi)
}

func DefaultPlayerColor(index int) string {
	if index < 0 {
		index = -index
	}
	return defaultPlayerColors[index%len(defaultPlayerColors)]
}

func DefaultPlayerName(index int) string {
	return fmt.Sprintf("Jugador %d", index+1)
}

func BuildDefaultPlayers(count int) []Player {
	return NormalizePlayers(count, nil)
}

// NormalizePlayers resizes players to exactly count entries. Existing
// entries keep their position; blanks are filled with seat defaults.
func NormalizePlayers(count int, players []Player) []Player {
	count = max(count, 0)
	out := make([]Player, count)
	for i := range out {
		var p Player
		if i < len(players) {
			p = players[i]
		}
		if p.Name == "" {
			p.Name = DefaultPlayerName(i)
		}
		if p.Color == "" {
			p.Color = DefaultPlayerColor(i)
		}
		out[i] = p
	}
	return out
}

// PlayerDisplay always returns a usable name and color for index, even
// when the seat does not exist.
func PlayerDisplay(s State, index int) Player {
	p := Player{Name: fallbackPlayerName, Color: fallbackPlayerColor}
	if index < 0 || index >= len(s.Players) {
		return p
	}
	if name := strings.TrimSpace(s.Players[index].Name); name != "" {
		p.Name = s.Players[index].Name
	}
	if s.Players[index].Color != "" {
		p.Color = s.Players[index].Color
	}
	return p
}

// VoteCandidates is the pool a vote may target: the tie candidates after
// a tied ballot, otherwise everyone still alive.
func VoteCandidates(s State) []int {
	if len(s.TieCandidates) > 0 {
		return s.TieCandidates
	}
	return s.AliveOrAll()
}

// CanVote reports whether a dealt game is still open to accusations.
func CanVote(s State) bool {
	return len(s.DealOrder) > 0 && !s.IsDecided() && !s.RevealImpostor
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func containsInt(list []int, v int) bool {
	return slices.Contains(list, v)
}

func withoutInt(list []int, v int) []int {
	out := make([]int, 0, len(list))
	for _, id := range list {
		if id != v {
			out = append(out, id)
		}
	}
	return out
}

func filterInts(list []int, keep func(int) bool) []int {
	out := make([]int, 0, len(list))
	for _, id := range list {
		if keep(id) {
			out = append(out, id)
		}
	}
	return out
}

func cloneOrEmpty[T any](list []T) []T {
	if list == nil {
		return []T{}
	}
	return slices.Clone(list)
}

// normalizeCategories treats the selection as a set.
func normalizeCategories(categories []string) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" || slices.Contains(out, c) {
			continue
		}
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}
