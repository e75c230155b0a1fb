package catalog

import (
	"math/rand/v2"
	"strings"

	"github.com/DoyleJ11/impostor/internal/engine"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	msgPlayerCount     = "Player count must be between %d and %d."
	msgEmptyList       = "Add words to the word list to start a game."
	msgNoCategories    = "Select at least one category."
	msgNoCategoryWords = "There are no words for the selected categories."
	msgPlayerNeedsName = "Every player needs a name."
)

func init() {
	for key, text := range map[string]string{
		msgPlayerCount:     "El número de jugadores debe estar entre %d y %d.",
		msgEmptyList:       "Agrega palabras a la lista para iniciar la partida.",
		msgNoCategories:    "Selecciona al menos una categoría.",
		msgNoCategoryWords: "No hay palabras para las categorías seleccionadas.",
		msgPlayerNeedsName: "Todos los jugadores deben tener un nombre.",
	} {
		_ = message.SetString(language.Spanish, key, text)
	}
}

// Problems lists, in the state's language, every reason the setup in s
// cannot start a game. An empty result means StartGame may proceed.
func (c *Catalog) Problems(s engine.State) []string {
	p := message.NewPrinter(language.Make(ResolveLanguage(s.Language)))
	problems := []string{}

	if s.PlayerCount < engine.MinPlayers || s.PlayerCount > engine.MaxPlayers {
		problems = append(problems, p.Sprintf(msgPlayerCount, engine.MinPlayers, engine.MaxPlayers))
	}
	if len(c.Entries(s.Language)) == 0 {
		problems = append(problems, p.Sprintf(msgEmptyList))
	}
	if s.CategoryMode == engine.CategoryModeCustom {
		switch {
		case len(c.SelectedCategories(s.Language, s.SelectedCategories)) == 0:
			problems = append(problems, p.Sprintf(msgNoCategories))
		case len(c.Matching(s.Language, s.SelectedCategories)) == 0:
			problems = append(problems, p.Sprintf(msgNoCategoryWords))
		}
	}
	for _, player := range s.Players {
		if strings.TrimSpace(player.Name) == "" {
			problems = append(problems, p.Sprintf(msgPlayerNeedsName))
			break
		}
	}
	return problems
}

// StartCommand validates s and, when it is startable, draws the secret
// word for the next round and returns the START_GAME command carrying it.
func (c *Catalog) StartCommand(s engine.State, rng *rand.Rand) (engine.Command, []string) {
	if problems := c.Problems(s); len(problems) > 0 {
		return engine.Command{}, problems
	}
	entry, _ := PickRandom(rng, c.Filter(s.Language, s.CategoryMode, s.SelectedCategories))
	return engine.Command{
		Type: engine.CmdStartGame,
		Word: entry.Word,
		Hint: entry.Hint,
	}, nil
}

// StartError carries the reasons a game could not be started.
type StartError struct {
	Problems []string
}

func (e *StartError) Error() string {
	return "cannot start game: " + strings.Join(e.Problems, "; ")
}

// PrepareStart is StartCommand shaped for session.DispatchPrepared.
func (c *Catalog) PrepareStart(s engine.State, rng *rand.Rand) (engine.Command, error) {
	cmd, problems := c.StartCommand(s, rng)
	if len(problems) > 0 {
		return engine.Command{}, &StartError{Problems: problems}
	}
	return cmd, nil
}
