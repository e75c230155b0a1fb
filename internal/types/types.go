package types

import (
	"fmt"
	"slices"
	"strings"

	"github.com/DoyleJ11/impostor/internal/catalog"
	"github.com/DoyleJ11/impostor/internal/engine"
	wire "github.com/DoyleJ11/impostor/pkg/types"
)

const (
	MsgStateSnapshot = wire.MsgStateSnapshot
	MsgRejected      = wire.MsgRejected
	MsgError         = wire.MsgError
)

type (
	ClientMessage = wire.ClientMessage
	EventMessage  = wire.EventMessage
)

type ServerMessage struct {
	Type     string         `json:"type"` // "StateSnapshot" | "Rejected" | "Error"
	Code     string         `json:"code,omitempty"`
	Version  int            `json:"version"`
	State    *engine.State  `json:"state,omitempty"`
	View     *engine.View   `json:"view,omitempty"`
	Events   []EventMessage `json:"events,omitempty"`
	Problems []string       `json:"problems,omitempty"`
	Error    string         `json:"error,omitempty"`
}

var knownCommands = []engine.CommandType{
	engine.CmdGoHome,
	engine.CmdStartSetup,
	engine.CmdSetPlayerCount,
	engine.CmdSetPlayerName,
	engine.CmdSetPlayerColor,
	engine.CmdSetGameMode,
	engine.CmdSetDrawAllowColorPick,
	engine.CmdSetDrawLimitStrokes,
	engine.CmdSetWord,
	engine.CmdSetWordHint,
	engine.CmdSetHintsEnabled,
	engine.CmdSetCategoryMode,
	engine.CmdSetSelectedCategories,
	engine.CmdSetTimerEnabled,
	engine.CmdSetTimerSeconds,
	engine.CmdSetAllowMultipleImpostors,
	engine.CmdSetImpostorCount,
	engine.CmdSetLanguage,
	engine.CmdStartGame,
	engine.CmdShowRole,
	engine.CmdHideRole,
	engine.CmdStartRound,
	engine.CmdEndRound,
	engine.CmdRevealImpostor,
	engine.CmdPlayAgain,
	engine.CmdCastVote,
	engine.CmdSetVoteMode,
	engine.CmdStartSecretVote,
	engine.CmdSubmitSecretVote,
	engine.CmdCancelSecretVote,
	engine.CmdResetGame,
	engine.CmdResetAll,
}

// ToEngineCommand validates the message type and converts it. Language
// values are resolved to a supported list language.
func ToEngineCommand(m ClientMessage) (engine.Command, error) {
	t := engine.CommandType(strings.ToUpper(strings.TrimSpace(m.Type)))
	if !slices.Contains(knownCommands, t) {
		return engine.Command{}, fmt.Errorf("unknown message type %q", m.Type)
	}
	cmd := engine.Command{
		Type:       t,
		Index:      m.Index,
		Count:      m.Count,
		Seconds:    m.Seconds,
		Name:       m.Name,
		Color:      m.Color,
		Mode:       m.Mode,
		Enabled:    m.Enabled,
		Categories: slices.Clone(m.Categories),
		Word:       m.Word,
		Hint:       m.Hint,
		Target:     m.Target,
	}
	if t == engine.CmdSetLanguage {
		cmd.Language = catalog.ResolveLanguage(m.Language)
	}
	return cmd, nil
}

func ToEventMessages(events []engine.Event) []EventMessage {
	if len(events) == 0 {
		return nil
	}
	out := make([]EventMessage, 0, len(events))
	for _, e := range events {
		out = append(out, EventMessage{
			Type:    string(e.Type),
			Player:  e.Player,
			Players: slices.Clone(e.Players),
			Winner:  string(e.Winner),
		})
	}
	return out
}

// NewSnapshot builds the StateSnapshot message for a session state.
func NewSnapshot(code string, version int, s engine.State, events []engine.Event) ServerMessage {
	view := engine.Derive(s)
	return ServerMessage{
		Type:    MsgStateSnapshot,
		Code:    code,
		Version: version,
		State:   &s,
		View:    &view,
		Events:  ToEventMessages(events),
	}
}

func NewRejected(code string, version int, problems []string) ServerMessage {
	return ServerMessage{Type: MsgRejected, Code: code, Version: version, Problems: problems}
}

func NewError(err string) ServerMessage {
	return ServerMessage{Type: MsgError, Error: err}
}
