package poker

import (
	"strings"

	"github.com/pkg/errors"
)

const (
	CardDelimiter  = "|"
	GroupDelimiter = "$"
)

// JoinCards flattens cards into the pipe-delimited form, e.g. "h3|h4|c6".
func JoinCards(cards []Card) string {
	tokens := make([]string, len(cards))
	for i, c := range cards {
		tokens[i] = c.String()
	}
	return strings.Join(tokens, CardDelimiter)
}

func ParseCards(s string) ([]Card, error) {
	if s == "" {
		return []Card{}, nil
	}
	tokens := strings.Split(s, CardDelimiter)
	cards := make([]Card, len(tokens))
	for i, token := range tokens {
		c, err := ParseCard(token)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to parse card list [%s]", s)
		}
		cards[i] = c
	}
	return cards, nil
}

// JoinCardGroups flattens per-player groups, e.g. "h3|h4$d3|d4$c3|c4".
func JoinCardGroups(groups [][]Card) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = JoinCards(g)
	}
	return strings.Join(parts, GroupDelimiter)
}

func ParseCardGroups(s string) ([][]Card, error) {
	if s == "" {
		return [][]Card{}, nil
	}
	parts := strings.Split(s, GroupDelimiter)
	groups := make([][]Card, len(parts))
	for i, part := range parts {
		cards, err := ParseCards(part)
		if err != nil {
			return nil, errors.Wrapf(err, "Unable to parse card group %d", i)
		}
		groups[i] = cards
	}
	return groups, nil
}
