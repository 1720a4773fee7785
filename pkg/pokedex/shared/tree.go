package shared

import "time"

// TreeNode is one node of a rendered evolution tree. Pokemon is nil when the
// species is not stored locally.
type TreeNode struct {
	Pokemon       *PokemonView `json:"pokemon"`
	EvolutionText *string      `json:"evolution_text"`
	EvolvesTo     []*TreeNode  `json:"evolves_to"`
}

// Count returns the number of nodes in the tree
func (n *TreeNode) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, child := range n.EvolvesTo {
		total += child.Count()
	}
	return total
}

// PokemonPage is one synced page of the upstream listing
type PokemonPage struct {
	Count    int            `json:"count"`
	Next     *string        `json:"next"`
	Previous *string        `json:"previous"`
	Results  []*PokemonView `json:"results"`
}

// FavoriteView is a favorited Pokemon in a user's list
type FavoriteView struct {
	Pokemon     *PokemonView `json:"pokemon"`
	FavoritedAt time.Time    `json:"favorited_at"`
}
