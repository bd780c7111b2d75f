package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"pokertable.io/server/poker"
)

// Table is the aggregate root for one hand of Texas Hold'em. Players are
// addressed by position; the position order is the turn order.
type Table struct {
	ID             string
	Stage          Stage
	MinPlayers     int
	MaxPlayers     int
	Players        []Player
	PocketCards    [][]poker.Card // by position, nil until PocketDealt
	CommunityCards []poker.Card
	PlayerToAct    string
	BettingStatus  []BettingStatus // by position, current round only
	Score          ScoreState
	Halted         bool
	HaltReason     string
	Version        uint64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type advanceResult int

const (
	advanceNone advanceResult = iota
	advanceDealt
	advanceNeedsScore
)

func NewTable(id string, creator Player, config TableConfig, now time.Time) *Table {
	return &Table{
		ID:             id,
		Stage:          StageInitial,
		MinPlayers:     config.MinPlayers,
		MaxPlayers:     config.MaxPlayers,
		Players:        []Player{creator},
		CommunityCards: []poker.Card{},
		PlayerToAct:    creator.ID,
		BettingStatus:  NewRoundStatuses(1),
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Clone returns a deep copy. Mutations are always applied to a clone so a
// published table is never changed in place.
func (t *Table) Clone() *Table {
	c := *t
	c.Players = append([]Player(nil), t.Players...)
	if t.PocketCards != nil {
		c.PocketCards = make([][]poker.Card, len(t.PocketCards))
		for i, cards := range t.PocketCards {
			c.PocketCards[i] = append([]poker.Card(nil), cards...)
		}
	}
	c.CommunityCards = append([]poker.Card{}, t.CommunityCards...)
	c.BettingStatus = append([]BettingStatus(nil), t.BettingStatus...)
	c.Score.Results = append([]PlayerScore(nil), t.Score.Results...)
	c.Score.Winners = append([]string(nil), t.Score.Winners...)
	return &c
}

func (t *Table) Position(playerID string) int {
	for i, p := range t.Players {
		if p.ID == playerID {
			return i
		}
	}
	return -1
}

func (t *Table) IsSeated(playerID string) bool {
	return t.Position(playerID) >= 0
}

// Joinable reports whether a new player can take a seat.
func (t *Table) Joinable() bool {
	return t.Stage == StageInitial && !t.Halted && len(t.Players) < t.MaxPlayers
}

func (t *Table) Seat(p Player, now time.Time) error {
	if t.IsSeated(p.ID) {
		return nil
	}
	if !t.Joinable() {
		return TableFullError{TableID: t.ID}
	}
	t.Players = append(t.Players, p)
	t.BettingStatus = append(t.BettingStatus, NotActed)
	t.touch(now)
	return nil
}

// DealtCards is the union of pocket and community cards.
func (t *Table) DealtCards() poker.CardSet {
	dealt := poker.NewCardSet(t.PocketCards...)
	return poker.NewCardSet(t.CommunityCards).Union(dealt)
}

func (t *Table) RoundClosed() bool {
	return IsRoundClosed(t.BettingStatus, t.MinPlayers)
}

// awaitingScore is true once the river round closed and no score has been
// applied yet.
func (t *Table) awaitingScore() bool {
	return t.Stage == StageRiverDealt && (t.Score.Status == ScorePending || t.Score.Status == ScoreFailed)
}

// RecordAction validates the action with DefaultValidator and applies it.
func (t *Table) RecordAction(playerID string, action Action, now time.Time) error {
	if err := DefaultValidator.Validate(t, playerID, action); err != nil {
		return err
	}
	t.applyAction(t.Position(playerID), action, now)
	return nil
}

// applyAction records the action and passes the turn on. Whether a folded
// player may act again is up to the LegalActionGenerator.
func (t *Table) applyAction(pos int, action Action, now time.Time) {
	t.applyStatus(pos, action)
	t.PlayerToAct = t.Players[(pos+1)%len(t.Players)].ID
	t.touch(now)
}

func (t *Table) applyStatus(pos int, action Action) {
	t.BettingStatus[pos] = action.bettingStatus()
	if action == ActionReraise {
		// a reraise reopens the round for everyone still in it
		for i := range t.BettingStatus {
			if i != pos && t.BettingStatus[i] != Folded {
				t.BettingStatus[i] = NotActed
			}
		}
	}
}

// advance deals the next stage if the betting round is closed. Moving out of
// RiverDealt needs a score, which the caller obtains outside the table lock.
func (t *Table) advance(randGen *rand.Rand, now time.Time) (advanceResult, error) {
	if t.Halted {
		return advanceNone, TableHaltedError{TableID: t.ID, Reason: t.HaltReason}
	}
	if t.Stage == StageComplete || !t.RoundClosed() {
		return advanceNone, nil
	}
	if t.Stage == StageRiverDealt {
		return advanceNeedsScore, nil
	}

	deck := poker.NewDeck(t.DealtCards(), randGen)
	cards, err := deck.Draw(CardsNeeded(t.Stage, len(t.Players)))
	if err != nil {
		var exhausted poker.ExhaustedDeckError
		if errors.As(err, &exhausted) {
			t.halt(exhausted.Error(), now)
			return advanceNone, ExhaustedDeckError{TableID: t.ID, Cause: exhausted}
		}
		return advanceNone, errors.Wrapf(err, "Unable to deal cards for table %s", t.ID)
	}

	if t.Stage == StageInitial {
		if t.PocketCards != nil {
			return advanceNone, fmt.Errorf("Table %s already has pocket cards", t.ID)
		}
		t.PocketCards = make([][]poker.Card, len(t.Players))
		for i := range t.Players {
			start := i * PocketCardsPerPlayer
			t.PocketCards[i] = append([]poker.Card(nil), cards[start:start+PocketCardsPerPlayer]...)
		}
	} else {
		t.CommunityCards = append(t.CommunityCards, cards...)
	}

	t.Stage, _ = NextStage(t.Stage)
	t.BettingStatus = NewRoundStatuses(len(t.Players))
	t.PlayerToAct = t.Players[0].ID
	t.touch(now)
	return advanceDealt, nil
}

func (t *Table) halt(reason string, now time.Time) {
	t.Halted = true
	t.HaltReason = reason
	t.touch(now)
}

// hands returns pocket + community cards per seated player, in seat order.
func (t *Table) hands() []Hand {
	hands := make([]Hand, len(t.Players))
	for i, p := range t.Players {
		cards := make([]poker.Card, 0, PocketCardsPerPlayer+len(t.CommunityCards))
		cards = append(cards, t.PocketCards[i]...)
		cards = append(cards, t.CommunityCards...)
		hands[i] = Hand{PlayerID: p.ID, Cards: cards}
	}
	return hands
}

func (t *Table) markScorePending(now time.Time) {
	t.Score.Status = ScorePending
	t.Score.Attempts++
	t.Score.UpdatedAt = now
	t.touch(now)
}

func (t *Table) failScore(err error, now time.Time) {
	t.Score.Status = ScoreFailed
	t.Score.LastError = err.Error()
	t.Score.UpdatedAt = now
	t.touch(now)
}

// completeWithScore applies the scoring results and ends the table.
func (t *Table) completeWithScore(results []PlayerScore, now time.Time) {
	t.Score.Status = ScoreScored
	t.Score.Results = results
	t.Score.LastError = ""
	t.Score.UpdatedAt = now
	t.Score.Winners = nil
	best := 0
	for i, r := range results {
		if i == 0 || r.Score > best {
			best = r.Score
			t.Score.Winners = []string{r.PlayerID}
		} else if r.Score == best {
			t.Score.Winners = append(t.Score.Winners, r.PlayerID)
		}
	}
	t.Stage = StageComplete
	t.PlayerToAct = ""
	t.touch(now)
}

func (t *Table) touch(now time.Time) {
	t.Version++
	t.UpdatedAt = now
}

// CheckInvariants verifies the structural invariants of a table.
func (t *Table) CheckInvariants() error {
	if len(t.BettingStatus) != len(t.Players) {
		return fmt.Errorf("table %s: %d betting statuses for %d players", t.ID, len(t.BettingStatus), len(t.Players))
	}
	for i, s := range t.BettingStatus {
		if !s.Valid() {
			return fmt.Errorf("table %s: invalid betting status at position %d", t.ID, i)
		}
	}
	if t.Stage != StageComplete && !t.IsSeated(t.PlayerToAct) {
		return fmt.Errorf("table %s: player to act %s is not seated", t.ID, t.PlayerToAct)
	}
	if t.Stage > StageInitial {
		if len(t.PocketCards) != len(t.Players) {
			return fmt.Errorf("table %s: %d pocket groups for %d players", t.ID, len(t.PocketCards), len(t.Players))
		}
		for i, cards := range t.PocketCards {
			if len(cards) != PocketCardsPerPlayer {
				return fmt.Errorf("table %s: position %d has %d pocket cards", t.ID, i, len(cards))
			}
		}
	} else if len(t.PocketCards) != 0 {
		return fmt.Errorf("table %s: pocket cards dealt in stage %s", t.ID, t.Stage)
	}
	if len(t.CommunityCards) != CommunityCardsAt(t.Stage) {
		return fmt.Errorf("table %s: %d community cards in stage %s", t.ID, len(t.CommunityCards), t.Stage)
	}
	seen := poker.NewCardSet()
	total := 0
	for _, group := range append(append([][]poker.Card(nil), t.PocketCards...), t.CommunityCards) {
		for _, c := range group {
			if !c.Valid() {
				return fmt.Errorf("table %s: invalid card %d", t.ID, c)
			}
			seen = seen.Add(c)
			total++
		}
	}
	if seen.Len() != total {
		return fmt.Errorf("table %s: duplicate card dealt", t.ID)
	}
	return nil
}
