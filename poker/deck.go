package poker

import (
	"fmt"
	"math/rand"
)

type ExhaustedDeckError struct {
	Requested int
	Remaining int
}

func (e ExhaustedDeckError) Error() string {
	return fmt.Sprintf("Deck exhausted: requested %d cards, %d remaining", e.Requested, e.Remaining)
}

// Deck is the 52-card universe minus the cards already dealt at a table. It
// holds no shuffled sequence; every draw picks from the remaining cards.
type Deck struct {
	dealt   CardSet
	randGen *rand.Rand
}

func NewDeck(dealt CardSet, randGen *rand.Rand) *Deck {
	return &Deck{dealt: dealt, randGen: randGen}
}

func (deck *Deck) Remaining() int {
	return NumCards - deck.dealt.Len()
}

func (deck *Deck) Dealt() CardSet {
	return deck.dealt
}

// Draw takes n cards and marks them dealt, so consecutive draws on the same
// deck never repeat a card.
func (deck *Deck) Draw(n int) ([]Card, error) {
	cards, err := Draw(n, deck.dealt, deck.randGen)
	if err != nil {
		return nil, err
	}
	for _, c := range cards {
		deck.dealt = deck.dealt.Add(c)
	}
	return cards, nil
}

// Draw returns count distinct cards chosen uniformly at random from the
// universe minus excluded.
func Draw(count int, excluded CardSet, randGen *rand.Rand) ([]Card, error) {
	if count < 0 {
		return nil, fmt.Errorf("Invalid number of cards to draw: %d", count)
	}
	remaining := make([]Card, 0, NumCards)
	for _, c := range fullDeck {
		if !excluded.Contains(c) {
			remaining = append(remaining, c)
		}
	}
	if count > len(remaining) {
		return nil, ExhaustedDeckError{Requested: count, Remaining: len(remaining)}
	}

	// partial Fisher-Yates over the eligible cards
	for i := 0; i < count; i++ {
		j := i + randGen.Intn(len(remaining)-i)
		remaining[i], remaining[j] = remaining[j], remaining[i]
	}
	cards := make([]Card, count)
	copy(cards, remaining[:count])
	return cards, nil
}
