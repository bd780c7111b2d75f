package scoring

import (
	"context"
	"fmt"

	"pokertable.io/server/poker"
)

// Result is the rank of one hand. A higher score is a better hand.
type Result struct {
	Score       int    `json:"score"`
	Description string `json:"description"`
}

// Scorer ranks one player's hand: pocket cards followed by community cards.
type Scorer interface {
	Score(ctx context.Context, cards []poker.Card) (Result, error)
}

// UnavailableError means the scorer could not produce a result after every
// attempt.
type UnavailableError struct {
	Attempts int
	Cause    error
}

func (e UnavailableError) Error() string {
	return fmt.Sprintf("Scoring failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e UnavailableError) Unwrap() error { return e.Cause }
