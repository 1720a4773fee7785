package models

import (
	"errors"
	"strconv"
	"strings"
)

// ErrInvalidIdentifier is returned for empty or non-positive numeric identifiers
var ErrInvalidIdentifier = errors.New("invalid identifier")

// Identifier addresses an entity either by PokeAPI id or by unique name
type Identifier struct {
	ExternalID int
	Name       string
}

// ParseIdentifier interprets s as an external id when it is all digits,
// otherwise as a case-insensitive name
func ParseIdentifier(s string) (Identifier, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Identifier{}, ErrInvalidIdentifier
	}

	if strings.HasPrefix(s, "-") && len(s) > 1 && isDigits(s[1:]) {
		return Identifier{}, ErrInvalidIdentifier
	}

	if isDigits(s) {
		id, err := strconv.Atoi(s)
		if err != nil || id <= 0 {
			return Identifier{}, ErrInvalidIdentifier
		}
		return Identifier{ExternalID: id}, nil
	}

	return Identifier{Name: strings.ToLower(s)}, nil
}

// IsExternalID reports whether the identifier addresses the numeric id
func (i Identifier) IsExternalID() bool {
	return i.ExternalID > 0
}

// String returns the form used in upstream endpoint paths
func (i Identifier) String() string {
	if i.IsExternalID() {
		return strconv.Itoa(i.ExternalID)
	}
	return i.Name
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
