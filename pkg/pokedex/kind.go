package pokedex

// Kind names a synchronized entity type
type Kind string

const (
	KindPokemon        Kind = "pokemon"
	KindSpecies        Kind = "species"
	KindEvolutionChain Kind = "evolution_chain"
)

// Kinds lists every synchronized kind in cascade order
var Kinds = []Kind{KindPokemon, KindSpecies, KindEvolutionChain}

// Valid reports whether k is a known kind
func (k Kind) Valid() bool {
	switch k {
	case KindPokemon, KindSpecies, KindEvolutionChain:
		return true
	}
	return false
}

func (k Kind) String() string {
	return string(k)
}

// ParseKind accepts the kind names plus the upstream endpoint spellings
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "pokemon", "pokemons":
		return KindPokemon, true
	case "species", "pokemon-species":
		return KindSpecies, true
	case "evolution_chain", "evolution-chain", "chain":
		return KindEvolutionChain, true
	}
	return "", false
}
