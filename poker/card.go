package poker

import (
	"fmt"
	"strings"
)

type Suit uint8

// One bit per suit, stored in the low nibble of a Card.
const (
	Spade   Suit = 1
	Heart   Suit = 2
	Diamond Suit = 4
	Club    Suit = 8
)

type Rank uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Card packs the rank in the high 4 bits and the suit bit in the low 4 bits.
// 0000: 2
// 0001: 3
// ...
// 1100: A
// 0001: Spade
// 0010: Heart
// 0100: Diamond
// 1000: Club
type Card uint8

const NumCards = 52

var (
	// suit tokens in the order used by the full deck: d, c, h, s
	suitOrder  = []Suit{Diamond, Club, Heart, Spade}
	suitTokens = map[Suit]byte{Diamond: 'd', Club: 'c', Heart: 'h', Spade: 's'}
	tokenSuits = map[byte]Suit{'d': Diamond, 'c': Club, 'h': Heart, 's': Spade}
	strRanks   = "23456789TJQKA"

	prettySuits = map[Suit]string{
		Spade:   "♠",
		Heart:   "❤",
		Diamond: "♦",
		Club:    "♣",
	}
)

var fullDeck []Card

func init() {
	fullDeck = make([]Card, 0, NumCards)
	for _, suit := range suitOrder {
		for rank := Two; rank <= Ace; rank++ {
			fullDeck = append(fullDeck, NewCard(suit, rank))
		}
	}
}

type InvalidCardError struct {
	Token string
}

func (e InvalidCardError) Error() string {
	return fmt.Sprintf("Invalid card token [%s]", e.Token)
}

func NewCard(suit Suit, rank Rank) Card {
	return Card(uint8(rank)<<4 | uint8(suit))
}

// ParseCard parses a 2-character token: suit letter (d/c/h/s) followed by a
// rank token (2-9, T, J, Q, K, A).
func ParseCard(token string) (Card, error) {
	if len(token) != 2 {
		return 0, InvalidCardError{Token: token}
	}
	suit, ok := tokenSuits[token[0]]
	if !ok {
		return 0, InvalidCardError{Token: token}
	}
	idx := strings.IndexByte(strRanks, token[1])
	if idx < 0 {
		return 0, InvalidCardError{Token: token}
	}
	return NewCard(suit, Rank(idx)), nil
}

func MustParseCard(token string) Card {
	c, err := ParseCard(token)
	if err != nil {
		panic(err)
	}
	return c
}

func (c Card) Rank() Rank {
	return Rank(uint8(c) >> 4)
}

func (c Card) Suit() Suit {
	return Suit(uint8(c) & 0xF)
}

func (c Card) Valid() bool {
	_, ok := suitTokens[c.Suit()]
	return ok && c.Rank() <= Ace
}

// Index returns the position of the card in the full deck (0-51).
func (c Card) Index() int {
	var suitIdx int
	switch c.Suit() {
	case Diamond:
		suitIdx = 0
	case Club:
		suitIdx = 1
	case Heart:
		suitIdx = 2
	case Spade:
		suitIdx = 3
	}
	return suitIdx*13 + int(c.Rank())
}

func (c Card) String() string {
	if !c.Valid() {
		return "??"
	}
	return string([]byte{suitTokens[c.Suit()], strRanks[c.Rank()]})
}

func (c Card) PrettyString() string {
	if !c.Valid() {
		return "??"
	}
	return string(strRanks[c.Rank()]) + prettySuits[c.Suit()]
}

func (c Card) MarshalJSON() ([]byte, error) {
	return []byte("\"" + c.String() + "\""), nil
}

func (c *Card) UnmarshalJSON(b []byte) error {
	if len(b) != 4 || b[0] != '"' || b[3] != '"' {
		return InvalidCardError{Token: string(b)}
	}
	card, err := ParseCard(string(b[1:3]))
	if err != nil {
		return err
	}
	*c = card
	return nil
}

// FullDeck returns a fresh copy of the 52-card universe.
func FullDeck() []Card {
	cards := make([]Card, len(fullDeck))
	copy(cards, fullDeck)
	return cards
}

func PrintCards(cards []Card) string {
	var b strings.Builder
	b.WriteString("[")
	for i, c := range cards {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(c.PrettyString())
	}
	b.WriteString("]")
	return b.String()
}
