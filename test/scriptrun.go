package test

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"pokertable.io/server/game"
	"pokertable.io/server/poker"
	"pokertable.io/server/scoring"
	"pokertable.io/server/util/random"
)

// failingScorer fails the first n calls and delegates after that.
type failingScorer struct {
	remaining int32
	scorer    scoring.Scorer
}

func (s *failingScorer) Score(ctx context.Context, cards []poker.Card) (scoring.Result, error) {
	if atomic.AddInt32(&s.remaining, -1) >= 0 {
		return scoring.Result{}, fmt.Errorf("scoring service is not reachable")
	}
	return s.scorer.Score(ctx, cards)
}

type scriptRun struct {
	ctx     context.Context
	script  *TableScript
	manager *game.Manager

	// script names to player ids and back
	playerIDs   map[string]string
	playerNames map[string]string
	tables      map[string]string
	lastTable   string
}

func newScriptRun(script *TableScript) (*scriptRun, error) {
	if err := script.validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid table script")
	}
	config := game.DefaultTableConfig()
	if script.Config.MaxPlayers != 0 {
		config.MaxPlayers = script.Config.MaxPlayers
	}
	if script.Config.MinPlayers != 0 {
		config.MinPlayers = script.Config.MinPlayers
	}
	config.FoldedStaysFolded = script.Config.FoldedStaysFolded

	var scorer scoring.Scorer = scoring.NewLocalScorer()
	if script.Config.FailScoring > 0 {
		scorer = &failingScorer{remaining: int32(script.Config.FailScoring), scorer: scorer}
	}

	seed := script.Config.Seed
	var seedLock sync.Mutex
	randSource := func() *rand.Rand {
		seedLock.Lock()
		defer seedLock.Unlock()
		seed++
		return random.NewRandWithSeed(seed)
	}

	manager, err := game.NewManager(game.NewMemoryTableStore(), scorer, config, game.WithRandSource(randSource))
	if err != nil {
		return nil, err
	}

	r := &scriptRun{
		ctx:         context.Background(),
		script:      script,
		manager:     manager,
		playerIDs:   make(map[string]string),
		playerNames: make(map[string]string),
		tables:      make(map[string]string),
	}
	for _, name := range script.Players {
		id := uuid.New().String()
		r.playerIDs[name] = id
		r.playerNames[id] = name
	}
	return r, nil
}

func (r *scriptRun) run() error {
	for i, step := range r.script.Steps {
		err := r.runStep(&step)
		if err = r.checkError(&step, err); err != nil {
			return errors.Wrapf(err, "Step %d", i+1)
		}
	}
	return nil
}

func (r *scriptRun) checkError(step *Step, err error) error {
	if step.Error == "" {
		return err
	}
	if err == nil {
		return fmt.Errorf("Expected error %s, but the step succeeded", step.Error)
	}
	kind, ok := game.KindOf(err)
	if !ok {
		return errors.Wrapf(err, "Expected error %s", step.Error)
	}
	if string(kind) != step.Error {
		return fmt.Errorf("Expected error %s, got %s: %v", step.Error, kind, err)
	}
	return nil
}

func (r *scriptRun) player(name string) (string, error) {
	id, ok := r.playerIDs[name]
	if !ok {
		return "", fmt.Errorf("Player %s is not listed in the script", name)
	}
	return id, nil
}

func (r *scriptRun) table(step *Step) (string, error) {
	alias := step.Table
	if alias == "" {
		if r.lastTable == "" {
			return "", fmt.Errorf("No table has been joined yet")
		}
		return r.lastTable, nil
	}
	id, ok := r.tables[alias]
	if !ok {
		return "", fmt.Errorf("Table %s has not been joined yet", alias)
	}
	return id, nil
}

func (r *scriptRun) runStep(step *Step) error {
	switch {
	case step.Join != "":
		return r.join(step)
	case step.Act != nil:
		return r.act(step)
	case step.Advance:
		tableID, err := r.table(step)
		if err != nil {
			return err
		}
		_, err = r.manager.Advance(r.ctx, tableID)
		return err
	case step.Verify != nil:
		return r.verify(step)
	}
	return fmt.Errorf("Step has nothing to do")
}

// join seats the player and records the table under the step's alias. An
// alias that is already known must resolve to the same table.
func (r *scriptRun) join(step *Step) error {
	playerID, err := r.player(step.Join)
	if err != nil {
		return err
	}
	view, err := r.manager.Join(r.ctx, game.Player{ID: playerID, Name: step.Join})
	if err != nil {
		return err
	}
	alias := step.Table
	if alias == "" {
		alias = view.GameID
	}
	if known, ok := r.tables[alias]; ok && known != view.GameID {
		return fmt.Errorf("Player %s joined table %s, expected table %s", step.Join, view.GameID, alias)
	}
	r.tables[alias] = view.GameID
	r.lastTable = view.GameID
	return nil
}

func (r *scriptRun) act(step *Step) error {
	tableID, err := r.table(step)
	if err != nil {
		return err
	}
	playerID, err := r.player(step.Act.Player)
	if err != nil {
		return err
	}
	action, err := game.ParseAction(step.Act.Action)
	if err != nil {
		return err
	}
	_, err = r.manager.SubmitAction(r.ctx, tableID, playerID, action)
	return err
}

func (r *scriptRun) verify(step *Step) error {
	tableID, err := r.table(step)
	if err != nil {
		return err
	}
	table, err := r.manager.Snapshot(r.ctx, tableID)
	if err != nil {
		return err
	}
	expected := step.Verify

	if expected.Stage != "" {
		stage, err := game.ParseStage(expected.Stage)
		if err != nil {
			return err
		}
		if table.Stage != stage {
			return fmt.Errorf("Expected stage %s, got %s", stage, table.Stage)
		}
	}
	if expected.PlayerToAct != "" {
		if got := r.playerNames[table.PlayerToAct]; got != expected.PlayerToAct {
			return fmt.Errorf("Expected %s to act, got %s", expected.PlayerToAct, got)
		}
	}
	if expected.Players != nil {
		if len(expected.Players) != len(table.Players) {
			return fmt.Errorf("Expected %d players, got %d", len(expected.Players), len(table.Players))
		}
		for i, p := range table.Players {
			if r.playerNames[p.ID] != expected.Players[i] {
				return fmt.Errorf("Expected %s in seat %d, got %s", expected.Players[i], i, r.playerNames[p.ID])
			}
		}
	}
	if expected.CommunityCards != nil && len(table.CommunityCards) != *expected.CommunityCards {
		return fmt.Errorf("Expected %d community cards, got %d", *expected.CommunityCards, len(table.CommunityCards))
	}
	for name, count := range expected.PocketCards {
		pos, err := r.position(table, name)
		if err != nil {
			return err
		}
		got := 0
		if table.PocketCards != nil {
			got = len(table.PocketCards[pos])
		}
		if got != count {
			return fmt.Errorf("Expected %d pocket cards for %s, got %d", count, name, got)
		}
	}
	for name, status := range expected.BettingStatus {
		pos, err := r.position(table, name)
		if err != nil {
			return err
		}
		if got := table.BettingStatus[pos].String(); got != status {
			return fmt.Errorf("Expected %s to be %s, got %s", name, status, got)
		}
	}
	if expected.ScoreStatus != "" && table.Score.Status.String() != expected.ScoreStatus {
		return fmt.Errorf("Expected score status %s, got %s", expected.ScoreStatus, table.Score.Status)
	}
	if expected.Winners != nil && len(table.Score.Winners) != *expected.Winners {
		return fmt.Errorf("Expected %d winner(s), got %d", *expected.Winners, len(table.Score.Winners))
	}
	if expected.Halted != nil && table.Halted != *expected.Halted {
		return fmt.Errorf("Expected halted to be %v, got %v", *expected.Halted, table.Halted)
	}
	return table.CheckInvariants()
}

func (r *scriptRun) position(table *game.Table, name string) (int, error) {
	playerID, err := r.player(name)
	if err != nil {
		return 0, err
	}
	pos := table.Position(playerID)
	if pos < 0 {
		return 0, fmt.Errorf("Player %s is not seated at table %s", name, table.ID)
	}
	return pos, nil
}
