package shared

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/latoulicious/pokedex/pkg/pokeapi"
)

// Gender values used by PokeAPI evolution details
const (
	GenderFemale = 1
	GenderMale   = 2
)

// EvolutionDetail is one way a species evolves into the next
type EvolutionDetail struct {
	Trigger   *pokeapi.NamedResource `json:"trigger"`
	MinLevel  *int                   `json:"min_level"`
	Item      *pokeapi.NamedResource `json:"item"`
	Gender    *int                   `json:"gender"`
	TimeOfDay string                 `json:"time_of_day"`
}

// ChainLink is a node of the evolution graph
type ChainLink struct {
	Species          pokeapi.NamedResource `json:"species"`
	EvolutionDetails []EvolutionDetail     `json:"evolution_details"`
	EvolvesTo        []ChainLink           `json:"evolves_to"`
}

// ChainPayload is the /evolution-chain document
type ChainPayload struct {
	ID    int        `json:"id"`
	Chain *ChainLink `json:"chain"`
}

// ParseChain decodes a raw chain payload into its typed root node
func ParseChain(raw []byte) (*ChainLink, error) {
	var payload ChainPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("failed to decode evolution chain: %w", err)
	}
	if payload.Chain == nil {
		return nil, fmt.Errorf("evolution chain payload has no chain")
	}
	return payload.Chain, nil
}

// SpeciesNames returns every species name in the subtree, root first
func (l *ChainLink) SpeciesNames() []string {
	var names []string
	l.walk(func(n *ChainLink) {
		if n.Species.Name != "" {
			names = append(names, n.Species.Name)
		}
	})
	return names
}

func (l *ChainLink) walk(fn func(*ChainLink)) {
	fn(l)
	for i := range l.EvolvesTo {
		l.EvolvesTo[i].walk(fn)
	}
}

// EvolutionText describes how this node is reached from its parent, using
// the first evolution detail. Nil when there are no details.
func (l *ChainLink) EvolutionText() *string {
	if len(l.EvolutionDetails) == 0 {
		return nil
	}
	text := l.EvolutionDetails[0].Text()
	return &text
}

// Text renders the detail as a human readable sentence fragment
func (d EvolutionDetail) Text() string {
	trigger := ""
	if d.Trigger != nil {
		trigger = d.Trigger.Name
	}

	var primary string
	switch {
	case trigger == "level-up" && d.MinLevel != nil:
		primary = fmt.Sprintf("evolves at level %d", *d.MinLevel)
	case trigger == "trade":
		primary = "evolves by trading"
	case trigger == "use-item" && d.Item != nil && d.Item.Name != "":
		primary = "evolves using " + d.Item.Name
	default:
		if trigger == "" {
			trigger = "unknown"
		}
		primary = "evolves via " + trigger
	}

	parts := []string{primary}
	if gender := genderName(d.Gender); gender != "" {
		parts = append(parts, "if "+gender)
	}
	if d.TimeOfDay != "" {
		parts = append(parts, "during "+d.TimeOfDay)
	}

	return strings.Join(parts, ", ")
}

func genderName(g *int) string {
	if g == nil {
		return ""
	}
	switch *g {
	case GenderFemale:
		return "female"
	case GenderMale:
		return "male"
	}
	return ""
}
