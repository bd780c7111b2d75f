package scoring

import (
	"context"
	"fmt"

	hankin "github.com/paulhankin/poker"
	"pokertable.io/server/poker"
)

var localSuits = map[poker.Suit]hankin.Suit{
	poker.Club:    hankin.Club,
	poker.Diamond: hankin.Diamond,
	poker.Heart:   hankin.Heart,
	poker.Spade:   hankin.Spade,
}

// LocalScorer evaluates seven card hands in process.
type LocalScorer struct{}

func NewLocalScorer() *LocalScorer {
	return &LocalScorer{}
}

func (s *LocalScorer) Score(ctx context.Context, cards []poker.Card) (Result, error) {
	if len(cards) != 7 {
		return Result{}, fmt.Errorf("Local scorer needs 7 cards, got %d", len(cards))
	}
	var hand [7]hankin.Card
	for i, c := range cards {
		converted, err := toLocalCard(c)
		if err != nil {
			return Result{}, err
		}
		hand[i] = converted
	}
	score := hankin.Eval7(&hand)
	description, err := hankin.Describe(hand[:])
	if err != nil {
		return Result{}, fmt.Errorf("Unable to describe hand %s: %v", poker.PrintCards(cards), err)
	}
	return Result{Score: int(score), Description: description}, nil
}

// Ace is rank 1 on the evaluator side, the other ranks are face values.
func toLocalCard(c poker.Card) (hankin.Card, error) {
	if !c.Valid() {
		return 0, poker.InvalidCardError{Token: fmt.Sprintf("%d", uint8(c))}
	}
	rank := hankin.Rank(c.Rank() + 2)
	if c.Rank() == poker.Ace {
		rank = 1
	}
	return hankin.MakeCard(localSuits[c.Suit()], rank)
}
