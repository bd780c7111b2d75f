package game

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pokertable.io/server/poker"
)

var testNow = time.Date(2021, 5, 1, 12, 0, 0, 0, time.UTC)

func testConfig() TableConfig {
	return DefaultTableConfig()
}

func newTestTable(t *testing.T, numPlayers int) *Table {
	t.Helper()
	cfg := testConfig()
	if numPlayers > cfg.MaxPlayers {
		cfg.MaxPlayers = numPlayers
	}
	tbl := NewTable("table-1", Player{ID: "p0", Name: "player 0"}, cfg, testNow)
	for i := 1; i < numPlayers; i++ {
		require.NoError(t, tbl.Seat(Player{ID: playerID(i), Name: "player"}, testNow))
	}
	return tbl
}

func playerID(i int) string {
	return "p" + string(rune('0'+i))
}

func closeRound(t *testing.T, tbl *Table) {
	t.Helper()
	for range tbl.Players {
		require.NoError(t, tbl.RecordAction(tbl.PlayerToAct, ActionCallOrCheck, testNow))
	}
	require.True(t, tbl.RoundClosed())
}

func advanceTo(t *testing.T, tbl *Table, stage Stage, randGen *rand.Rand) {
	t.Helper()
	for tbl.Stage < stage {
		closeRound(t, tbl)
		result, err := tbl.advance(randGen, testNow)
		require.NoError(t, err)
		require.Equal(t, advanceDealt, result)
		require.NoError(t, tbl.CheckInvariants())
	}
}

func undealtCards(tbl *Table) []poker.Card {
	var cards []poker.Card
	dealt := tbl.DealtCards()
	for _, c := range poker.FullDeck() {
		if !dealt.Contains(c) {
			cards = append(cards, c)
		}
	}
	return cards
}

func TestNewTable(t *testing.T) {
	tbl := NewTable("table-1", Player{ID: "p0"}, testConfig(), testNow)
	assert.Equal(t, StageInitial, tbl.Stage)
	assert.Equal(t, "p0", tbl.PlayerToAct)
	assert.Equal(t, []BettingStatus{NotActed}, tbl.BettingStatus)
	assert.True(t, tbl.Joinable())
	assert.NoError(t, tbl.CheckInvariants())
}

func TestSeat(t *testing.T) {
	tbl := newTestTable(t, 1)
	require.NoError(t, tbl.Seat(Player{ID: "p1"}, testNow))
	require.NoError(t, tbl.Seat(Player{ID: "p2"}, testNow))
	assert.False(t, tbl.Joinable())

	// seating someone already seated is a no-op
	version := tbl.Version
	require.NoError(t, tbl.Seat(Player{ID: "p1"}, testNow))
	assert.Equal(t, version, tbl.Version)

	err := tbl.Seat(Player{ID: "p3"}, testNow)
	var full TableFullError
	require.ErrorAs(t, err, &full)
	assert.Equal(t, "table-1", full.TableID)
	assert.Len(t, tbl.BettingStatus, 3)
}

func TestSeatAfterDeal(t *testing.T) {
	tbl := newTestTable(t, 2)
	advanceTo(t, tbl, StagePocketDealt, rand.New(rand.NewSource(1)))
	err := tbl.Seat(Player{ID: "p2"}, testNow)
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, KindTableFull, kind)
}

func TestPlayerToActRotation(t *testing.T) {
	tbl := newTestTable(t, 3)
	actions := []Action{ActionBet, ActionFold, ActionReraise, ActionCallOrCheck, ActionBet, ActionCallOrCheck, ActionFold}
	for i, action := range actions {
		actor := tbl.PlayerToAct
		require.Equal(t, playerID(i%3), actor)
		require.NoError(t, tbl.RecordAction(actor, action, testNow))
		assert.Equal(t, tbl.Players[(tbl.Position(actor)+1)%3].ID, tbl.PlayerToAct)
	}
}

func TestRecordActionNotYourTurn(t *testing.T) {
	tbl := newTestTable(t, 2)
	err := tbl.RecordAction("p1", ActionBet, testNow)
	var notYourTurn NotYourTurnError
	require.ErrorAs(t, err, &notYourTurn)
	assert.Equal(t, "p0", notYourTurn.PlayerToAct)
	assert.Equal(t, "p1", notYourTurn.PlayerID)

	err = tbl.RecordAction("stranger", ActionBet, testNow)
	require.ErrorAs(t, err, &notYourTurn)
	assert.Equal(t, []BettingStatus{NotActed, NotActed}, tbl.BettingStatus)
}

func TestRecordActionInvalid(t *testing.T) {
	tbl := newTestTable(t, 2)
	err := tbl.RecordAction("p0", Action(42), testNow)
	var invalid InvalidActionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "p0", tbl.PlayerToAct)
}

func TestReraiseReopensRound(t *testing.T) {
	tbl := newTestTable(t, 3)
	require.NoError(t, tbl.RecordAction("p0", ActionBet, testNow))
	require.NoError(t, tbl.RecordAction("p1", ActionCallOrCheck, testNow))
	require.NoError(t, tbl.RecordAction("p2", ActionReraise, testNow))

	expected := []BettingStatus{NotActed, NotActed, Reraised}
	if diff := cmp.Diff(expected, tbl.BettingStatus); diff != "" {
		t.Errorf("betting status mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "p0", tbl.PlayerToAct)
	assert.False(t, tbl.RoundClosed())
}

func TestReraiseKeepsFoldedPlayers(t *testing.T) {
	tbl := newTestTable(t, 3)
	require.NoError(t, tbl.RecordAction("p0", ActionFold, testNow))
	require.NoError(t, tbl.RecordAction("p1", ActionBet, testNow))
	require.NoError(t, tbl.RecordAction("p2", ActionReraise, testNow))

	expected := []BettingStatus{Folded, NotActed, Reraised}
	if diff := cmp.Diff(expected, tbl.BettingStatus); diff != "" {
		t.Errorf("betting status mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, tbl.RoundClosed())
}

// With the permissive default every accepted action is recorded, also for a
// player who folded earlier in the round.
func TestActionAfterFoldIsRecorded(t *testing.T) {
	tbl := newTestTable(t, 3)
	require.NoError(t, tbl.RecordAction("p0", ActionFold, testNow))
	require.NoError(t, tbl.RecordAction("p1", ActionCallOrCheck, testNow))
	require.NoError(t, tbl.RecordAction("p2", ActionCallOrCheck, testNow))

	require.NoError(t, tbl.RecordAction("p0", ActionReraise, testNow))
	assert.Equal(t, []BettingStatus{Reraised, NotActed, NotActed}, tbl.BettingStatus)
	assert.Equal(t, "p1", tbl.PlayerToAct)
	assert.False(t, tbl.RoundClosed())
}

func TestRoundNeedsTwoPlayers(t *testing.T) {
	tbl := newTestTable(t, 1)
	require.NoError(t, tbl.RecordAction("p0", ActionCallOrCheck, testNow))
	assert.False(t, tbl.RoundClosed())

	result, err := tbl.advance(rand.New(rand.NewSource(1)), testNow)
	require.NoError(t, err)
	assert.Equal(t, advanceNone, result)
	assert.Equal(t, StageInitial, tbl.Stage)
}

func TestAdvanceDealsEveryStage(t *testing.T) {
	tbl := newTestTable(t, 3)
	randGen := rand.New(rand.NewSource(7))

	advanceTo(t, tbl, StagePocketDealt, randGen)
	require.Len(t, tbl.PocketCards, 3)
	for _, pocket := range tbl.PocketCards {
		assert.Len(t, pocket, 2)
	}
	assert.Empty(t, tbl.CommunityCards)
	pockets := tbl.Clone().PocketCards

	advanceTo(t, tbl, StageFlopDealt, randGen)
	assert.Len(t, tbl.CommunityCards, 3)
	advanceTo(t, tbl, StageTurnDealt, randGen)
	assert.Len(t, tbl.CommunityCards, 4)
	advanceTo(t, tbl, StageRiverDealt, randGen)
	assert.Len(t, tbl.CommunityCards, 5)

	if diff := cmp.Diff(pockets, tbl.PocketCards); diff != "" {
		t.Errorf("pocket cards changed after being dealt (-want +got):\n%s", diff)
	}
	assert.Equal(t, 11, tbl.DealtCards().Len())
	assert.Equal(t, "p0", tbl.PlayerToAct)
	assert.Equal(t, NewRoundStatuses(3), tbl.BettingStatus)
}

func TestAdvanceIsIdempotentWhenRoundOpen(t *testing.T) {
	tbl := newTestTable(t, 2)
	randGen := rand.New(rand.NewSource(3))
	advanceTo(t, tbl, StagePocketDealt, randGen)

	before := tbl.Clone()
	for i := 0; i < 3; i++ {
		result, err := tbl.advance(randGen, testNow)
		require.NoError(t, err)
		assert.Equal(t, advanceNone, result)
	}
	assert.Equal(t, before, tbl)
}

func TestAdvanceFromRiverNeedsScore(t *testing.T) {
	tbl := newTestTable(t, 2)
	randGen := rand.New(rand.NewSource(3))
	advanceTo(t, tbl, StageRiverDealt, randGen)
	closeRound(t, tbl)

	result, err := tbl.advance(randGen, testNow)
	require.NoError(t, err)
	assert.Equal(t, advanceNeedsScore, result)
	assert.Equal(t, StageRiverDealt, tbl.Stage)

	tbl.markScorePending(testNow)
	err = tbl.RecordAction("p0", ActionBet, testNow)
	var pending ScoringPendingError
	require.ErrorAs(t, err, &pending)

	hands := tbl.hands()
	require.Len(t, hands, 2)
	for i, h := range hands {
		assert.Equal(t, tbl.Players[i].ID, h.PlayerID)
		assert.Len(t, h.Cards, 7)
	}

	tbl.completeWithScore([]PlayerScore{
		{PlayerID: "p0", Score: 10},
		{PlayerID: "p1", Score: 20},
	}, testNow)
	assert.Equal(t, StageComplete, tbl.Stage)
	assert.Equal(t, "", tbl.PlayerToAct)
	assert.Equal(t, []string{"p1"}, tbl.Score.Winners)
	assert.NoError(t, tbl.CheckInvariants())

	err = tbl.RecordAction("p0", ActionBet, testNow)
	var invalid InvalidActionError
	require.ErrorAs(t, err, &invalid)

	result, err = tbl.advance(randGen, testNow)
	require.NoError(t, err)
	assert.Equal(t, advanceNone, result)
}

func TestCompleteWithTiedScores(t *testing.T) {
	tbl := newTestTable(t, 3)
	tbl.completeWithScore([]PlayerScore{
		{PlayerID: "p0", Score: 30},
		{PlayerID: "p1", Score: 10},
		{PlayerID: "p2", Score: 30},
	}, testNow)
	assert.Equal(t, []string{"p0", "p2"}, tbl.Score.Winners)
}

func TestAdvanceExhaustedDeckHaltsTable(t *testing.T) {
	tbl := newTestTable(t, 2)
	randGen := rand.New(rand.NewSource(3))
	advanceTo(t, tbl, StagePocketDealt, randGen)

	// leave only two cards in the deck
	tbl.CommunityCards = undealtCards(tbl)[:46]
	closeRound(t, tbl)

	_, err := tbl.advance(randGen, testNow)
	var exhausted ExhaustedDeckError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Cause.Requested)
	assert.Equal(t, 2, exhausted.Cause.Remaining)
	assert.True(t, tbl.Halted)
	assert.Equal(t, StagePocketDealt, tbl.Stage)

	_, err = tbl.advance(randGen, testNow)
	var halted TableHaltedError
	require.ErrorAs(t, err, &halted)

	err = tbl.RecordAction(tbl.PlayerToAct, ActionBet, testNow)
	require.ErrorAs(t, err, &halted)
}

func TestCloneIsDeep(t *testing.T) {
	tbl := newTestTable(t, 2)
	advanceTo(t, tbl, StageFlopDealt, rand.New(rand.NewSource(11)))

	c := tbl.Clone()
	require.Equal(t, tbl, c)
	spare := undealtCards(tbl)[0]
	c.PocketCards[0][0] = spare
	c.CommunityCards[0] = spare
	c.BettingStatus[0] = Folded
	c.Players[0].Name = "changed"
	assert.NotEqual(t, tbl.PocketCards[0][0], c.PocketCards[0][0])
	assert.NotEqual(t, tbl.CommunityCards[0], c.CommunityCards[0])
	assert.Equal(t, NotActed, tbl.BettingStatus[0])
	assert.Equal(t, "player 0", tbl.Players[0].Name)
}

func TestCheckInvariants(t *testing.T) {
	tbl := newTestTable(t, 2)
	advanceTo(t, tbl, StageFlopDealt, rand.New(rand.NewSource(5)))
	require.NoError(t, tbl.CheckInvariants())

	dup := tbl.Clone()
	dup.CommunityCards[0] = dup.PocketCards[0][0]
	assert.Error(t, dup.CheckInvariants())

	short := tbl.Clone()
	short.PocketCards[1] = short.PocketCards[1][:1]
	assert.Error(t, short.CheckInvariants())

	stranger := tbl.Clone()
	stranger.PlayerToAct = "stranger"
	assert.Error(t, stranger.CheckInvariants())

	statuses := tbl.Clone()
	statuses.BettingStatus = statuses.BettingStatus[:1]
	assert.Error(t, statuses.CheckInvariants())
}
