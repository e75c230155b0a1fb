package catalog

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"math/rand/v2"
	"os"
	"slices"
	"strings"

	"github.com/DoyleJ11/impostor/internal/engine"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultCategory holds entries from lists without a category column.
const DefaultCategory = "General"

//go:embed data/words_*.csv
var embeddedLists embed.FS

var supportedTags = []language.Tag{
	language.Spanish,
	language.English,
}

var tagMatcher = language.NewMatcher(supportedTags)

type Entry struct {
	Category string `json:"category"`
	Word     string `json:"word"`
	Hint     string `json:"hint"`
}

// Catalog holds the parsed word lists, one per supported language.
type Catalog struct {
	lists map[string][]Entry
}

// ResolveLanguage maps any language tag or Accept-Language style value to
// one of the supported list languages. Unknown values map to Spanish.
func ResolveLanguage(values ...string) string {
	tag, _ := language.MatchStrings(tagMatcher, values...)
	base, _ := tag.Base()
	lang := base.String()
	if !slices.Contains(engine.SupportedLanguages, lang) {
		return engine.DefaultLanguage
	}
	return lang
}

// Load reads the embedded lists. When dir is non-empty, a words_<lang>.csv
// file found there replaces the embedded list for that language.
func Load(dir string) (*Catalog, error) {
	c := &Catalog{lists: make(map[string][]Entry, len(engine.SupportedLanguages))}
	for _, lang := range engine.SupportedLanguages {
		name := listFile(lang)

		raw, err := fs.ReadFile(embeddedLists, "data/"+name)
		if err != nil {
			return nil, fmt.Errorf("read embedded list %s: %w", name, err)
		}
		if dir != "" {
			override, err := fs.ReadFile(os.DirFS(dir), name)
			switch {
			case err == nil:
				raw = override
			case !errors.Is(err, fs.ErrNotExist):
				return nil, fmt.Errorf("read list %s from %s: %w", name, dir, err)
			}
		}

		c.lists[lang] = Parse(string(raw))
	}
	return c, nil
}

// New builds a catalog from already parsed lists. Used by tests and
// callers that source words elsewhere.
func New(lists map[string][]Entry) *Catalog {
	c := &Catalog{lists: make(map[string][]Entry, len(lists))}
	for lang, entries := range lists {
		c.lists[lang] = slices.Clone(entries)
	}
	return c
}

func listFile(lang string) string {
	return "words_" + lang + ".csv"
}

// Parse reads a word list. Blank lines and lines starting with # are
// skipped. Each line is split on ';' when it contains one, otherwise on
// ','. A first line naming a category or word column is a header; a
// category header switches every line to category,word,hint. Without
// it, three-column lines are category,word,hint and shorter ones are
// word,hint under DefaultCategory. Entries without a word are dropped.
func Parse(raw string) []Entry {
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return []Entry{}
	}

	fold := cases.Fold()
	hasCategoryHeader, hasWordHeader := false, false
	for _, part := range splitLine(lines[0]) {
		switch fold.String(part) {
		case "categoria", "categoría", "category":
			hasCategoryHeader = true
		case "palabra", "word":
			hasWordHeader = true
		}
	}
	if hasCategoryHeader || hasWordHeader {
		lines = lines[1:]
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		parts := splitLine(line)
		var e Entry
		if hasCategoryHeader || len(parts) >= 3 {
			e = Entry{Category: part(parts, 0), Word: part(parts, 1), Hint: part(parts, 2)}
			if e.Category == "" {
				e.Category = DefaultCategory
			}
		} else {
			e = Entry{Category: DefaultCategory, Word: part(parts, 0), Hint: part(parts, 1)}
		}
		if e.Word == "" {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}

func splitLine(line string) []string {
	sep := ","
	if strings.Contains(line, ";") {
		sep = ";"
	}
	parts := strings.Split(line, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func part(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// Entries returns the list for lang, or the default language's list when
// lang has none.
func (c *Catalog) Entries(lang string) []Entry {
	if entries, ok := c.lists[lang]; ok {
		return entries
	}
	return c.lists[engine.DefaultLanguage]
}

// Categories lists the distinct categories of lang in first-seen order.
func (c *Catalog) Categories(lang string) []string {
	var out []string
	for _, e := range c.Entries(lang) {
		if !slices.Contains(out, e.Category) {
			out = append(out, e.Category)
		}
	}
	return out
}

// SelectedCategories drops selections that do not exist in lang.
func (c *Catalog) SelectedCategories(lang string, selected []string) []string {
	known := c.Categories(lang)
	out := make([]string, 0, len(selected))
	for _, category := range selected {
		if slices.Contains(known, category) && !slices.Contains(out, category) {
			out = append(out, category)
		}
	}
	return out
}

// Matching returns the entries of lang whose category was selected.
func (c *Catalog) Matching(lang string, selected []string) []Entry {
	selected = c.SelectedCategories(lang, selected)
	var out []Entry
	for _, e := range c.Entries(lang) {
		if slices.Contains(selected, e.Category) {
			out = append(out, e)
		}
	}
	return out
}

// Filter is the pool a round draws from. In custom mode it is the
// selected categories' entries, falling back to the full list when that
// selection is empty.
func (c *Catalog) Filter(lang string, mode engine.CategoryMode, selected []string) []Entry {
	if mode == engine.CategoryModeCustom {
		if matching := c.Matching(lang, selected); len(matching) > 0 {
			return matching
		}
	}
	return c.Entries(lang)
}

// PickRandom returns a uniformly chosen entry, or false when entries is
// empty.
func PickRandom(rng *rand.Rand, entries []Entry) (Entry, bool) {
	if len(entries) == 0 {
		return Entry{}, false
	}
	return entries[rng.IntN(len(entries))], true
}
