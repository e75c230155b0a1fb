package catalog

import (
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/DoyleJ11/impostor/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []Entry
	}{
		{
			name: "empty",
			raw:  "",
			want: []Entry{},
		},
		{
			name: "only comments",
			raw:  "# nothing here\n\n   \n# still nothing",
			want: []Entry{},
		},
		{
			name: "category header with semicolons",
			raw:  "Categoria;Palabra;Pista\nAnimales;Gato;Bigotes\r\n;Perro;Ladrido\nComida;;Vacío",
			want: []Entry{
				{Category: "Animales", Word: "Gato", Hint: "Bigotes"},
				{Category: DefaultCategory, Word: "Perro", Hint: "Ladrido"},
			},
		},
		{
			name: "category header forces three columns",
			raw:  "CATEGORY,word,hint\nPlaces,Beach",
			want: []Entry{{Category: "Places", Word: "Beach"}},
		},
		{
			name: "word header without category",
			raw:  "word,hint\nBeach,Sand\nMoon",
			want: []Entry{
				{Category: DefaultCategory, Word: "Beach", Hint: "Sand"},
				{Category: DefaultCategory, Word: "Moon"},
			},
		},
		{
			name: "no header mixes shapes",
			raw:  "Beach,Sand\nFood,Pizza,Slice\n  # comment\nMoon ;  Night ",
			want: []Entry{
				{Category: DefaultCategory, Word: "Beach", Hint: "Sand"},
				{Category: "Food", Word: "Pizza", Hint: "Slice"},
				{Category: DefaultCategory, Word: "Moon", Hint: "Night"},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.raw))
		})
	}
}

func TestLoad_Embedded(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)

	for _, lang := range engine.SupportedLanguages {
		assert.NotEmpty(t, c.Entries(lang), lang)
		assert.NotEmpty(t, c.Categories(lang), lang)
	}
	assert.Contains(t, c.Categories("es"), "Animales")
	assert.Contains(t, c.Categories("en"), "Animals")
	assert.Equal(t, c.Entries("es"), c.Entries("fr"), "unknown languages use the default list")
}

func TestLoad_DirectoryOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "words_en.csv"), []byte("Cards,Joker,Wild\n"), 0o644))

	c, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, []Entry{{Category: "Cards", Word: "Joker", Hint: "Wild"}}, c.Entries("en"))
	assert.Contains(t, c.Categories("es"), "Animales", "missing override keeps the embedded list")
}

func TestResolveLanguage(t *testing.T) {
	cases := map[string]string{
		"en":                 "en",
		"en-GB":              "en",
		"es-MX":              "es",
		"fr":                 "es",
		"":                   "es",
		"fr-CH, en;q=0.8":    "en",
		"es;q=0.3, en;q=0.9": "en",
	}
	for in, want := range cases {
		assert.Equal(t, want, ResolveLanguage(in), in)
	}
}

func testCatalog() *Catalog {
	return New(map[string][]Entry{
		"es": {
			{Category: "Animales", Word: "Gato", Hint: "Bigotes"},
			{Category: "Animales", Word: "Perro", Hint: "Ladrido"},
			{Category: "Comida", Word: "Paella", Hint: "Arroz"},
		},
		"en": {
			{Category: "Food", Word: "Pizza", Hint: "Slice"},
		},
	})
}

func TestFilter(t *testing.T) {
	c := testCatalog()

	assert.Len(t, c.Filter("es", engine.CategoryModeAll, []string{"Comida"}), 3)
	assert.Equal(t,
		[]Entry{{Category: "Comida", Word: "Paella", Hint: "Arroz"}},
		c.Filter("es", engine.CategoryModeCustom, []string{"Comida", "Missing"}))
	assert.Len(t, c.Filter("es", engine.CategoryModeCustom, nil), 3, "empty selection falls back to everything")
	assert.Equal(t, []string{"Comida"}, c.SelectedCategories("es", []string{"Missing", "Comida", "Comida"}))
}

func TestPickRandom(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	_, ok := PickRandom(rng, nil)
	assert.False(t, ok)

	entries := testCatalog().Entries("es")
	seen := map[string]int{}
	for range 3000 {
		e, ok := PickRandom(rng, entries)
		require.True(t, ok)
		seen[e.Word]++
	}
	require.Len(t, seen, len(entries))
	for word, n := range seen {
		assert.InDelta(t, 1000, n, 150, word)
	}
}

func TestProblems(t *testing.T) {
	c := testCatalog()

	s := engine.NewFreshState()
	assert.Empty(t, c.Problems(s))

	s.PlayerCount = 2
	s.Players[1].Name = "  "
	s.CategoryMode = engine.CategoryModeCustom
	assert.Equal(t, []string{
		"El número de jugadores debe estar entre 3 y 15.",
		"Selecciona al menos una categoría.",
		"Todos los jugadores deben tener un nombre.",
	}, c.Problems(s))

	s = engine.NewFreshState()
	s.Language = "en"
	s.CategoryMode = engine.CategoryModeCustom
	s.SelectedCategories = []string{"Food"}
	assert.Empty(t, c.Problems(s))

	empty := New(map[string][]Entry{"es": {}, "en": {}})
	assert.Equal(t, []string{"Add words to the word list to start a game."}, empty.Problems(s)[:1])
}

func TestStartCommand(t *testing.T) {
	c := testCatalog()
	rng := rand.New(rand.NewPCG(3, 4))

	s := engine.NewFreshState()
	s.CategoryMode = engine.CategoryModeCustom
	s.SelectedCategories = []string{"Comida"}

	cmd, problems := c.StartCommand(s, rng)
	require.Empty(t, problems)
	assert.Equal(t, engine.Command{Type: engine.CmdStartGame, Word: "Paella", Hint: "Arroz"}, cmd)

	s.PlayerCount = 99
	cmd, problems = c.StartCommand(s, rng)
	assert.NotEmpty(t, problems)
	assert.Equal(t, engine.Command{}, cmd)
}

func TestPrepareStart(t *testing.T) {
	c := testCatalog()
	rng := rand.New(rand.NewPCG(5, 6))

	s := engine.NewFreshState()
	cmd, err := c.PrepareStart(s, rng)
	require.NoError(t, err)
	assert.Equal(t, engine.CmdStartGame, cmd.Type)
	assert.NotEmpty(t, cmd.Word)

	s.Players[0].Name = ""
	_, err = c.PrepareStart(s, rng)
	var startErr *StartError
	require.ErrorAs(t, err, &startErr)
	assert.Equal(t, []string{"Todos los jugadores deben tener un nombre."}, startErr.Problems)
}
