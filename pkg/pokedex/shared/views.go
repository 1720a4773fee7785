package shared

import (
	"sort"
	"strings"
	"time"

	"github.com/latoulicious/pokedex/pkg/database/models"
	"github.com/tidwall/gjson"
)

// DefaultFlavorLanguage is used when no language is configured
const DefaultFlavorLanguage = "en"

// Sprites holds the official artwork URLs
type Sprites struct {
	Default *string `json:"default"`
	Shiny   *string `json:"shiny"`
}

// PokemonView is the public projection of a stored Pokemon
type PokemonView struct {
	ID          uint     `json:"id"`
	ExternalID  int      `json:"external_id"`
	Name        string   `json:"name"`
	Sprites     Sprites  `json:"sprites"`
	Abilities   []string `json:"abilities"`
	Height      *int64   `json:"height"`
	Weight      *int64   `json:"weight"`
	Types       []string `json:"types"`
	Cry         *string  `json:"cry"`
	IsFavorited *bool    `json:"is_favorited,omitempty"`
}

// SpeciesView is the public projection of a stored Species
type SpeciesView struct {
	ID         uint      `json:"id"`
	ExternalID int       `json:"external_id"`
	Name       string    `json:"name"`
	PokemonID  uint      `json:"pokemon_id"`
	FlavorText *string   `json:"flavor_text"`
	Genus      *string   `json:"genus"`
	LastSynced time.Time `json:"last_synced"`

	EvolutionChains []*EvolutionChainView `json:"evolution_chains,omitempty"`
}

// EvolutionChainView summarizes a stored chain
type EvolutionChainView struct {
	ID         uint   `json:"id"`
	ExternalID int    `json:"external_id"`
	Name       string `json:"name"`
}

// NewPokemonView derives the public attributes from the raw payload
func NewPokemonView(p *models.Pokemon) *PokemonView {
	if p == nil {
		return nil
	}

	data := gjson.ParseBytes(p.Data)
	artwork := data.Get(`sprites.other.official-artwork`)

	return &PokemonView{
		ID:         p.ID,
		ExternalID: p.ExternalID,
		Name:       p.Name,
		Sprites: Sprites{
			Default: optionalString(artwork.Get("front_default")),
			Shiny:   optionalString(artwork.Get("front_shiny")),
		},
		Abilities: sortedNames(data.Get("abilities.#.ability.name")),
		Height:    optionalInt(data.Get("height")),
		Weight:    optionalInt(data.Get("weight")),
		Types:     sortedNames(data.Get("types.#.type.name")),
		Cry:       optionalString(data.Get("cries.latest")),
	}
}

// WithFavorite returns a copy of v carrying the viewer's favorite flag
func (v PokemonView) WithFavorite(favorited bool) *PokemonView {
	v.IsFavorited = &favorited
	return &v
}

// NewSpeciesView derives the public attributes of a species. Flavor text and
// genus are taken from the first entry in language.
func NewSpeciesView(s *models.Species, language string) *SpeciesView {
	if s == nil {
		return nil
	}
	if language == "" {
		language = DefaultFlavorLanguage
	}

	data := gjson.ParseBytes(s.Data)

	return &SpeciesView{
		ID:         s.ID,
		ExternalID: s.ExternalID,
		Name:       s.Name,
		PokemonID:  s.PokemonID,
		FlavorText: localized(data.Get("flavor_text_entries"), language, "flavor_text"),
		Genus:      localized(data.Get("genera"), language, "genus"),
		LastSynced: s.LastSynced,
	}
}

// EvolutionChainMembers lists what is stored locally for one chain
type EvolutionChainMembers struct {
	Chain    *EvolutionChainView `json:"chain"`
	Species  []string            `json:"species"`
	Pokemons []*PokemonView      `json:"pokemons"`
}

// NewEvolutionChainView summarizes a chain
func NewEvolutionChainView(c *models.EvolutionChain) *EvolutionChainView {
	if c == nil {
		return nil
	}
	return &EvolutionChainView{ID: c.ID, ExternalID: c.ExternalID, Name: c.Name}
}

// EvolutionChainURL returns the chain reference embedded in a species payload
func EvolutionChainURL(speciesData []byte) string {
	return gjson.GetBytes(speciesData, "evolution_chain.url").String()
}

// PayloadHeader holds the identity fields every PokeAPI resource carries
type PayloadHeader struct {
	ExternalID int
	Name       string
}

// ParsePayloadHeader reads id and name from a payload. ok is false when the
// id is missing or not a positive integer.
func ParsePayloadHeader(data []byte) (PayloadHeader, bool) {
	if !gjson.ValidBytes(data) {
		return PayloadHeader{}, false
	}
	id := gjson.GetBytes(data, "id")
	if id.Type != gjson.Number || id.Int() <= 0 {
		return PayloadHeader{}, false
	}
	return PayloadHeader{
		ExternalID: int(id.Int()),
		Name:       gjson.GetBytes(data, "name").String(),
	}, true
}

func localized(entries gjson.Result, language, field string) *string {
	var found *string
	entries.ForEach(func(_, entry gjson.Result) bool {
		if entry.Get("language.name").String() != language {
			return true
		}
		text := normalizeWhitespace(entry.Get(field).String())
		found = &text
		return false
	})
	return found
}

// normalizeWhitespace collapses the newlines and form feeds PokeAPI embeds
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func sortedNames(list gjson.Result) []string {
	names := make([]string, 0)
	for _, n := range list.Array() {
		if n.String() != "" {
			names = append(names, n.String())
		}
	}
	sort.SliceStable(names, func(i, j int) bool {
		return strings.ToLower(names[i]) < strings.ToLower(names[j])
	})
	return names
}

func optionalString(r gjson.Result) *string {
	if r.Type != gjson.String {
		return nil
	}
	s := r.String()
	return &s
}

func optionalInt(r gjson.Result) *int64 {
	if r.Type != gjson.Number {
		return nil
	}
	n := r.Int()
	return &n
}
