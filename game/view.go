package game

import "pokertable.io/server/poker"

// PlayerView is the table as one requester is allowed to see it. Pocket
// cards of other players never appear here.
type PlayerView struct {
	GameID         string         `json:"gameId"`
	PlayerID       string         `json:"playerId,omitempty"`
	Stage          Stage          `json:"stage"`
	CommunityCards []poker.Card   `json:"communityCards"`
	OwnPocketCards []poker.Card   `json:"ownPocketCards,omitempty"`
	PlayerToAct    string         `json:"playerToAct"`
	Players        []Player       `json:"players"`
	Seated         bool           `json:"seated"`
	OwnStatus      *BettingStatus `json:"ownStatus,omitempty"`
	Halted         bool           `json:"halted,omitempty"`
	HaltReason     string         `json:"haltReason,omitempty"`
	Version        uint64         `json:"version"`
	Score          *ScoreView     `json:"score,omitempty"`
}

type ScoreView struct {
	Status  ScoreStatus   `json:"status"`
	Results []PlayerScore `json:"results,omitempty"`
	Winners []string      `json:"winners,omitempty"`
}

// ViewFor builds the view of t for playerID. An empty or unseated playerID
// gets the public view.
func ViewFor(t *Table, playerID string) PlayerView {
	view := PlayerView{
		GameID:         t.ID,
		Stage:          t.Stage,
		CommunityCards: append([]poker.Card{}, t.CommunityCards...),
		PlayerToAct:    t.PlayerToAct,
		Players:        append([]Player(nil), t.Players...),
		Halted:         t.Halted,
		HaltReason:     t.HaltReason,
		Version:        t.Version,
	}
	if pos := t.Position(playerID); pos >= 0 {
		view.PlayerID = playerID
		view.Seated = true
		status := t.BettingStatus[pos]
		view.OwnStatus = &status
		if pos < len(t.PocketCards) {
			view.OwnPocketCards = append([]poker.Card(nil), t.PocketCards[pos]...)
		}
	}
	if t.Score.Status != ScoreNone {
		view.Score = &ScoreView{
			Status:  t.Score.Status,
			Results: append([]PlayerScore(nil), t.Score.Results...),
			Winners: append([]string(nil), t.Score.Winners...),
		}
	}
	return view
}
