package poker

import "math/bits"

// CardSet is a bit set over the 52-card universe, keyed by Card.Index.
type CardSet uint64

func NewCardSet(groups ...[]Card) CardSet {
	var s CardSet
	for _, cards := range groups {
		for _, c := range cards {
			s = s.Add(c)
		}
	}
	return s
}

func (s CardSet) Add(c Card) CardSet {
	return s | 1<<uint(c.Index())
}

func (s CardSet) Contains(c Card) bool {
	return s&(1<<uint(c.Index())) != 0
}

func (s CardSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

func (s CardSet) Cards() []Card {
	cards := make([]Card, 0, s.Len())
	for _, c := range fullDeck {
		if s.Contains(c) {
			cards = append(cards, c)
		}
	}
	return cards
}

func (s CardSet) Union(other CardSet) CardSet {
	return s | other
}
