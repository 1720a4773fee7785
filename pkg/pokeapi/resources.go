package pokeapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// NamedResource is PokeAPI's {name, url} reference
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID returns the trailing numeric path segment of the resource URL
func (r NamedResource) ID() (int, error) {
	return IDFromURL(r.URL)
}

// NamedResourceList is a paginated PokeAPI listing
type NamedResourceList struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// GetPokemon fetches /pokemon/{identifier}
func (c *Client) GetPokemon(ctx context.Context, identifier string) (json.RawMessage, error) {
	return c.get(ctx, "pokemon/"+url.PathEscape(identifier))
}

// GetSpecies fetches /pokemon-species/{identifier}
func (c *Client) GetSpecies(ctx context.Context, identifier string) (json.RawMessage, error) {
	return c.get(ctx, "pokemon-species/"+url.PathEscape(identifier))
}

// GetEvolutionChain fetches /evolution-chain/{identifier}
func (c *Client) GetEvolutionChain(ctx context.Context, identifier string) (json.RawMessage, error) {
	return c.get(ctx, "evolution-chain/"+url.PathEscape(identifier))
}

// ListPokemon fetches one page of /pokemon
func (c *Client) ListPokemon(ctx context.Context, limit, offset int) (*NamedResourceList, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		params.Set("offset", strconv.Itoa(offset))
	}

	body, _, err := c.Request(ctx, http.MethodGet, "pokemon", nil, params, nil)
	if err != nil {
		return nil, err
	}

	var list NamedResourceList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode pokemon list: %w", err)
	}
	return &list, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (json.RawMessage, error) {
	body, _, err := c.Request(ctx, http.MethodGet, endpoint, nil, nil, nil)
	return body, err
}

// IDFromURL parses the id out of a resource URL such as
// https://pokeapi.co/api/v2/evolution-chain/1/
func IDFromURL(raw string) (int, error) {
	trimmed := strings.TrimRight(raw, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 || idx == len(trimmed)-1 {
		return 0, fmt.Errorf("no id in resource url %q", raw)
	}

	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("no id in resource url %q", raw)
	}
	return id, nil
}
