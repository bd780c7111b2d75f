package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsRoundClosed(t *testing.T) {
	testCases := []struct {
		name       string
		statuses   []BettingStatus
		minPlayers int
		expected   bool
	}{
		{name: "empty", statuses: nil, minPlayers: 2, expected: false},
		{name: "single player", statuses: []BettingStatus{Bet}, minPlayers: 2, expected: false},
		{name: "single player low minimum", statuses: []BettingStatus{Bet}, minPlayers: 1, expected: false},
		{name: "all acted", statuses: []BettingStatus{Bet, CalledOrChecked}, minPlayers: 2, expected: true},
		{name: "one not acted", statuses: []BettingStatus{Bet, NotActed, Folded}, minPlayers: 2, expected: false},
		{name: "folded counts as acted", statuses: []BettingStatus{Folded, Folded, Reraised}, minPlayers: 2, expected: true},
		{name: "below minimum", statuses: []BettingStatus{Bet, Bet}, minPlayers: 3, expected: false},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsRoundClosed(tc.statuses, tc.minPlayers))
		})
	}
}

func TestNextStage(t *testing.T) {
	order := []Stage{StageInitial, StagePocketDealt, StageFlopDealt, StageTurnDealt, StageRiverDealt, StageComplete}
	for i := 0; i < len(order)-1; i++ {
		next, ok := NextStage(order[i])
		assert.True(t, ok)
		assert.Equal(t, order[i+1], next)
	}
	_, ok := NextStage(StageComplete)
	assert.False(t, ok)
	_, ok = NextStage(Stage(42))
	assert.False(t, ok)
}

func TestStageEventsOnlyMoveForward(t *testing.T) {
	for _, event := range stageEvents {
		dst, err := ParseStage(event.Dst)
		require.NoError(t, err)
		for _, src := range event.Src {
			from, err := ParseStage(src)
			require.NoError(t, err)
			assert.Equal(t, from+1, dst, event.Name)
		}
	}
}

func TestCardsNeeded(t *testing.T) {
	assert.Equal(t, 6, CardsNeeded(StageInitial, 3))
	assert.Equal(t, 3, CardsNeeded(StagePocketDealt, 3))
	assert.Equal(t, 1, CardsNeeded(StageFlopDealt, 3))
	assert.Equal(t, 1, CardsNeeded(StageTurnDealt, 3))
	assert.Equal(t, 0, CardsNeeded(StageRiverDealt, 3))

	// community cards dealt after the pocket cards add up per stage
	community := 0
	for s := StagePocketDealt; s < StageRiverDealt; s++ {
		community += CardsNeeded(s, 4)
		next, _ := NextStage(s)
		assert.Equal(t, CommunityCardsAt(next), community)
	}
	assert.Equal(t, MaxCommunityCards, community)
}

func TestStageCodes(t *testing.T) {
	for s := StageInitial; s <= StageComplete; s++ {
		decoded, err := StageFromCode(s.Code())
		assert.NoError(t, err)
		assert.Equal(t, s, decoded)
	}
	_, err := StageFromCode('X')
	assert.Error(t, err)
}
