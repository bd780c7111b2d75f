package test

import (
	"fmt"

	mapset "github.com/deckarep/golang-set"
)

// TableScript drives tables through the manager one step at a time and
// checks the table state in between.
type TableScript struct {
	Disabled bool         `yaml:"disabled"`
	Config   ScriptConfig `yaml:"config"`
	Players  []string     `yaml:"players"`
	Steps    []Step       `yaml:"steps"`
}

type ScriptConfig struct {
	MaxPlayers int   `yaml:"maxPlayers"`
	MinPlayers int   `yaml:"minPlayers"`
	Seed       int64 `yaml:"seed"`
	// number of scoring calls that fail before the scorer recovers
	FailScoring       int  `yaml:"failScoring"`
	FoldedStaysFolded bool `yaml:"foldedStaysFolded"`
}

// Step performs one of join, act, advance or verify. Table names the table
// alias the step works on; it defaults to the table of the last join. Error
// is the error kind the step is expected to fail with.
type Step struct {
	Join    string  `yaml:"join"`
	Act     *Act    `yaml:"act"`
	Advance bool    `yaml:"advance"`
	Verify  *Verify `yaml:"verify"`
	Table   string  `yaml:"table"`
	Error   string  `yaml:"error"`
}

type Act struct {
	Player string `yaml:"player"`
	Action string `yaml:"action"`
}

// Verify lists the expected table state. Players are referred to by their
// script names.
type Verify struct {
	Stage          string            `yaml:"stage"`
	PlayerToAct    string            `yaml:"playerToAct"`
	Players        []string          `yaml:"players"`
	CommunityCards *int              `yaml:"communityCards"`
	PocketCards    map[string]int    `yaml:"pocketCards"`
	BettingStatus  map[string]string `yaml:"bettingStatus"`
	ScoreStatus    string            `yaml:"scoreStatus"`
	Winners        *int              `yaml:"winners"`
	Halted         *bool             `yaml:"halted"`
}

func (s *TableScript) validate() error {
	playerNames := mapset.NewSet()
	for _, name := range s.Players {
		if name == "" {
			return fmt.Errorf("Empty player name")
		}
		if !playerNames.Add(name) {
			return fmt.Errorf("Player %s is listed twice", name)
		}
	}

	for i, step := range s.Steps {
		stepNum := i + 1
		ops := 0
		if step.Join != "" {
			ops++
			if !playerNames.Contains(step.Join) {
				return fmt.Errorf("Step %d: player %s is not listed", stepNum, step.Join)
			}
		}
		if step.Act != nil {
			ops++
			if !playerNames.Contains(step.Act.Player) {
				return fmt.Errorf("Step %d: player %s is not listed", stepNum, step.Act.Player)
			}
		}
		if step.Advance {
			ops++
		}
		if step.Verify != nil {
			ops++
			for _, name := range step.Verify.Players {
				if !playerNames.Contains(name) {
					return fmt.Errorf("Step %d: player %s is not listed", stepNum, name)
				}
			}
		}
		if ops != 1 {
			return fmt.Errorf("Step %d: exactly one of join, act, advance and verify is needed", stepNum)
		}
	}
	return nil
}
