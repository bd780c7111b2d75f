package game

import (
	"fmt"
	"strings"
	"time"

	"pokertable.io/server/poker"
)

type Stage int

const (
	StageInitial Stage = iota
	StagePocketDealt
	StageFlopDealt
	StageTurnDealt
	StageRiverDealt
	StageComplete
)

var stageNames = [...]string{"Initial", "PocketDealt", "FlopDealt", "TurnDealt", "RiverDealt", "Complete"}

// single letter codes used by the flattened table row
var stageCodes = [...]byte{'I', 'P', 'F', 'T', 'R', 'O'}

func (s Stage) String() string {
	if s < StageInitial || s > StageComplete {
		return fmt.Sprintf("Stage(%d)", int(s))
	}
	return stageNames[s]
}

func (s Stage) Code() byte {
	return stageCodes[s]
}

func StageFromCode(code byte) (Stage, error) {
	for i, c := range stageCodes {
		if c == code {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("Unknown stage code [%c]", code)
}

func ParseStage(name string) (Stage, error) {
	for i, n := range stageNames {
		if strings.EqualFold(n, name) {
			return Stage(i), nil
		}
	}
	return 0, fmt.Errorf("Unknown stage [%s]", name)
}

func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Stage) UnmarshalText(b []byte) error {
	stage, err := ParseStage(string(b))
	if err != nil {
		return err
	}
	*s = stage
	return nil
}

// BettingStatus is a player's action state in the current betting round.
type BettingStatus byte

const (
	NotActed        BettingStatus = 'N'
	Folded          BettingStatus = 'F'
	Bet             BettingStatus = 'B'
	CalledOrChecked BettingStatus = 'C'
	Reraised        BettingStatus = 'R'
)

func (b BettingStatus) String() string {
	switch b {
	case NotActed:
		return "NotActed"
	case Folded:
		return "Folded"
	case Bet:
		return "Bet"
	case CalledOrChecked:
		return "CalledOrChecked"
	case Reraised:
		return "Reraised"
	}
	return fmt.Sprintf("BettingStatus(%c)", byte(b))
}

func (b BettingStatus) Valid() bool {
	switch b {
	case NotActed, Folded, Bet, CalledOrChecked, Reraised:
		return true
	}
	return false
}

func (b BettingStatus) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

func (b *BettingStatus) UnmarshalText(text []byte) error {
	for _, s := range []BettingStatus{NotActed, Folded, Bet, CalledOrChecked, Reraised} {
		if s.String() == string(text) || (len(text) == 1 && byte(s) == text[0]) {
			*b = s
			return nil
		}
	}
	return fmt.Errorf("Unknown betting status [%s]", string(text))
}

type Action int

const (
	ActionUnknown Action = iota
	ActionFold
	ActionBet
	ActionCallOrCheck
	ActionReraise
)

// AllActions is the baseline action set.
var AllActions = []Action{ActionFold, ActionBet, ActionCallOrCheck, ActionReraise}

var actionNames = map[Action]string{
	ActionFold:        "FOLD",
	ActionBet:         "BET",
	ActionCallOrCheck: "CALL_OR_CHECK",
	ActionReraise:     "RERAISE",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

func (a Action) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a Action) bettingStatus() BettingStatus {
	switch a {
	case ActionFold:
		return Folded
	case ActionBet:
		return Bet
	case ActionCallOrCheck:
		return CalledOrChecked
	case ActionReraise:
		return Reraised
	}
	return NotActed
}

// ParseAction accepts the action names (FOLD, BET, CALL_OR_CHECK, RERAISE),
// a few spellings of them, and the single letter codes F, B, C, R.
func ParseAction(s string) (Action, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "FOLD", "F":
		return ActionFold, nil
	case "BET", "B":
		return ActionBet, nil
	case "CALL_OR_CHECK", "CALLORCHECK", "CALL", "CHECK", "C":
		return ActionCallOrCheck, nil
	case "RERAISE", "RE_RAISE", "R":
		return ActionReraise, nil
	}
	return ActionUnknown, InvalidActionError{Action: s, Reason: "unknown action type"}
}

func (a Action) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	action, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = action
	return nil
}

type Player struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

type ScoreStatus int

const (
	ScoreNone ScoreStatus = iota
	ScorePending
	ScoreFailed
	ScoreScored
)

var scoreStatusNames = [...]string{"None", "Pending", "Failed", "Scored"}

func (s ScoreStatus) String() string {
	if s < ScoreNone || s > ScoreScored {
		return fmt.Sprintf("ScoreStatus(%d)", int(s))
	}
	return scoreStatusNames[s]
}

func (s ScoreStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ScoreStatus) UnmarshalText(b []byte) error {
	for i, n := range scoreStatusNames {
		if n == string(b) {
			*s = ScoreStatus(i)
			return nil
		}
	}
	return fmt.Errorf("Unknown score status [%s]", string(b))
}

// PlayerScore is the scoring result for one seated player. It never carries
// cards.
type PlayerScore struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	Description string `json:"description"`
}

type ScoreState struct {
	Status    ScoreStatus   `json:"status"`
	Results   []PlayerScore `json:"results,omitempty"`
	Winners   []string      `json:"winners,omitempty"`
	LastError string        `json:"lastError,omitempty"`
	Attempts  int           `json:"attempts"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// Hand is the full card set scored for one player at the end of a table.
type Hand struct {
	PlayerID string
	Cards    []poker.Card
}
