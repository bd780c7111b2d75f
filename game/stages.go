package game

import "github.com/looplab/fsm"

const (
	PocketCardsPerPlayer = 2
	MaxCommunityCards    = 5
)

// IsRoundClosed reports whether the current betting round is over: enough
// players are seated and none of them still has to act. It is called on
// every advance check so it must not allocate.
func IsRoundClosed(statuses []BettingStatus, minPlayers int) bool {
	if len(statuses) < minPlayers || len(statuses) < 2 {
		return false
	}
	for _, s := range statuses {
		if s == NotActed {
			return false
		}
	}
	return true
}

const (
	eventDealPockets = "deal_pockets"
	eventDealFlop    = "deal_flop"
	eventDealTurn    = "deal_turn"
	eventDealRiver   = "deal_river"
	eventScore       = "score"
)

// stageEvents are the only transitions a table makes. There is no way back.
var stageEvents = fsm.Events{
	{Name: eventDealPockets, Src: []string{StageInitial.String()}, Dst: StagePocketDealt.String()},
	{Name: eventDealFlop, Src: []string{StagePocketDealt.String()}, Dst: StageFlopDealt.String()},
	{Name: eventDealTurn, Src: []string{StageFlopDealt.String()}, Dst: StageTurnDealt.String()},
	{Name: eventDealRiver, Src: []string{StageTurnDealt.String()}, Dst: StageRiverDealt.String()},
	{Name: eventScore, Src: []string{StageRiverDealt.String()}, Dst: StageComplete.String()},
}

var stageEventFrom = map[Stage]string{
	StageInitial:     eventDealPockets,
	StagePocketDealt: eventDealFlop,
	StageFlopDealt:   eventDealTurn,
	StageTurnDealt:   eventDealRiver,
	StageRiverDealt:  eventScore,
}

// NextStage returns the stage that follows s. Complete has no successor.
func NextStage(s Stage) (Stage, bool) {
	event, ok := stageEventFrom[s]
	if !ok {
		return s, false
	}
	machine := fsm.NewFSM(s.String(), stageEvents, fsm.Callbacks{})
	if err := machine.Event(event); err != nil {
		return s, false
	}
	next, err := ParseStage(machine.Current())
	if err != nil {
		return s, false
	}
	return next, true
}

// CardsNeeded is the number of cards dealt when moving out of stage s.
func CardsNeeded(s Stage, numPlayers int) int {
	switch s {
	case StageInitial:
		return numPlayers * PocketCardsPerPlayer
	case StagePocketDealt:
		return 3
	case StageFlopDealt, StageTurnDealt:
		return 1
	}
	return 0
}

// CommunityCardsAt is the number of community cards visible in stage s.
func CommunityCardsAt(s Stage) int {
	switch s {
	case StageFlopDealt:
		return 3
	case StageTurnDealt:
		return 4
	case StageRiverDealt, StageComplete:
		return 5
	}
	return 0
}

// NewRoundStatuses returns an all-NotActed betting status slice.
func NewRoundStatuses(numPlayers int) []BettingStatus {
	statuses := make([]BettingStatus, numPlayers)
	for i := range statuses {
		statuses[i] = NotActed
	}
	return statuses
}
