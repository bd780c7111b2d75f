package game

import (
	"fmt"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"pokertable.io/server/poker"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// tableRecord is the flattened form of a table used by every store. Cards
// use the pipe/dollar encoding and betting statuses one letter per seat.
type tableRecord struct {
	GUID           string    `db:"guid" json:"guid"`
	Stage          string    `db:"stage" json:"stage"`
	MinPlayers     int       `db:"min_players" json:"minPlayers"`
	MaxPlayers     int       `db:"max_players" json:"maxPlayers"`
	Players        string    `db:"players" json:"players"`
	PocketCards    string    `db:"pocket_cards" json:"pocketCards"`
	CommunityCards string    `db:"community_cards" json:"communityCards"`
	PlayerToAction string    `db:"player_to_action" json:"playerToAction"`
	BettingStatus  string    `db:"betting_status" json:"bettingStatus"`
	Score          string    `db:"score" json:"score"`
	Halted         bool      `db:"halted" json:"halted"`
	HaltReason     string    `db:"halt_reason" json:"haltReason"`
	Joinable       bool      `db:"joinable" json:"joinable"`
	Version        int64     `db:"version" json:"version"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

func newTableRecord(t *Table) (tableRecord, error) {
	players, err := json.Marshal(t.Players)
	if err != nil {
		return tableRecord{}, errors.Wrapf(err, "Unable to encode players of table %s", t.ID)
	}
	score, err := json.Marshal(t.Score)
	if err != nil {
		return tableRecord{}, errors.Wrapf(err, "Unable to encode score of table %s", t.ID)
	}
	var statuses strings.Builder
	for _, s := range t.BettingStatus {
		statuses.WriteByte(byte(s))
	}
	return tableRecord{
		GUID:           t.ID,
		Stage:          string(t.Stage.Code()),
		MinPlayers:     t.MinPlayers,
		MaxPlayers:     t.MaxPlayers,
		Players:        string(players),
		PocketCards:    poker.JoinCardGroups(t.PocketCards),
		CommunityCards: poker.JoinCards(t.CommunityCards),
		PlayerToAction: t.PlayerToAct,
		BettingStatus:  statuses.String(),
		Score:          string(score),
		Halted:         t.Halted,
		HaltReason:     t.HaltReason,
		Joinable:       t.Joinable(),
		Version:        int64(t.Version),
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
	}, nil
}

func (r tableRecord) toTable() (*Table, error) {
	if len(r.Stage) != 1 {
		return nil, fmt.Errorf("Invalid stage [%s] in record %s", r.Stage, r.GUID)
	}
	stage, err := StageFromCode(r.Stage[0])
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid record %s", r.GUID)
	}
	t := &Table{
		ID:          r.GUID,
		Stage:       stage,
		MinPlayers:  r.MinPlayers,
		MaxPlayers:  r.MaxPlayers,
		PlayerToAct: r.PlayerToAction,
		Halted:      r.Halted,
		HaltReason:  r.HaltReason,
		Version:     uint64(r.Version),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if err := json.Unmarshal([]byte(r.Players), &t.Players); err != nil {
		return nil, errors.Wrapf(err, "Unable to decode players of record %s", r.GUID)
	}
	if r.Score != "" {
		if err := json.Unmarshal([]byte(r.Score), &t.Score); err != nil {
			return nil, errors.Wrapf(err, "Unable to decode score of record %s", r.GUID)
		}
	}
	pockets, err := poker.ParseCardGroups(r.PocketCards)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid pocket cards in record %s", r.GUID)
	}
	if len(pockets) > 0 {
		t.PocketCards = pockets
	}
	t.CommunityCards, err = poker.ParseCards(r.CommunityCards)
	if err != nil {
		return nil, errors.Wrapf(err, "Invalid community cards in record %s", r.GUID)
	}
	t.BettingStatus = make([]BettingStatus, len(r.BettingStatus))
	for i := 0; i < len(r.BettingStatus); i++ {
		t.BettingStatus[i] = BettingStatus(r.BettingStatus[i])
	}
	if err := t.CheckInvariants(); err != nil {
		return nil, errors.Wrapf(err, "Corrupt record %s", r.GUID)
	}
	return t, nil
}

func encodeTable(t *Table) ([]byte, error) {
	r, err := newTableRecord(t)
	if err != nil {
		return nil, err
	}
	return json.Marshal(r)
}

func decodeTable(data []byte) (*Table, error) {
	var r tableRecord
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, "Unable to decode table record")
	}
	return r.toTable()
}
