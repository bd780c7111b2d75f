package game

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
	cmap "github.com/orcaman/concurrent-map"
	"github.com/pkg/errors"
	"pokertable.io/server/logging"
	"pokertable.io/server/scoring"
	"pokertable.io/server/util"
	"pokertable.io/server/util/random"
)

var managerLogger = logging.GetZeroLogger("game::manager", nil)

// tableEntry serializes all work on one table. scoring is set while a score
// is being computed outside the lock.
type tableEntry struct {
	lock    sync.RWMutex
	scoring bool
}

// Manager owns every table. Tables are independent: work on one table never
// waits for another, except for matchmaking which is serialized.
type Manager struct {
	store      TableStore
	scorer     scoring.Scorer
	config     TableConfig
	validator  *TurnOrderValidator
	randSource func() *rand.Rand
	now        func() time.Time
	newID      func() string

	joinLock sync.Mutex
	entries  cmap.ConcurrentMap
	cache    *lru.Cache

	listenersLock sync.RWMutex
	listeners     []TableListener
}

type ManagerOption func(*Manager)

// WithRandSource replaces the per-deal random source.
func WithRandSource(source func() *rand.Rand) ManagerOption {
	return func(m *Manager) {
		m.randSource = source
	}
}

func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

func WithLegalActions(legal LegalActionGenerator) ManagerOption {
	return func(m *Manager) {
		m.validator = NewTurnOrderValidator(legal)
	}
}

func WithIDGenerator(newID func() string) ManagerOption {
	return func(m *Manager) {
		m.newID = newID
	}
}

func NewManager(store TableStore, scorer scoring.Scorer, config TableConfig, opts ...ManagerOption) (*Manager, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "Invalid table config")
	}
	cache, err := lru.New(config.TableCacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to initialize table cache")
	}
	var legal LegalActionGenerator = PermissiveActions{}
	if config.FoldedStaysFolded {
		legal = FoldedStaysFolded{}
	}
	m := &Manager{
		store:      store,
		scorer:     scorer,
		config:     config,
		validator:  NewTurnOrderValidator(legal),
		randSource: random.NewRand,
		now:        time.Now,
		newID:      func() string { return uuid.New().String() },
		entries:    cmap.New(),
		cache:      cache,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) Config() TableConfig {
	return m.config
}

func (m *Manager) entry(tableID string) *tableEntry {
	m.entries.SetIfAbsent(tableID, &tableEntry{})
	v, _ := m.entries.Get(tableID)
	return v.(*tableEntry)
}

// load must be called with the table lock held.
func (m *Manager) load(ctx context.Context, tableID string) (*Table, error) {
	if v, ok := m.cache.Get(tableID); ok {
		return v.(*Table), nil
	}
	t, err := m.store.Load(ctx, tableID)
	if err != nil {
		return nil, err
	}
	m.cache.Add(tableID, t)
	util.Metrics.SetCachedTables(m.cache.Len())
	return t, nil
}

// save must be called with the table write lock held. t replaces the cached
// table only once the store accepted it.
func (m *Manager) save(ctx context.Context, t *Table) error {
	if err := m.store.Save(ctx, t); err != nil {
		return err
	}
	m.cache.Add(t.ID, t)
	util.Metrics.SetCachedTables(m.cache.Len())
	return nil
}

func validateGuid(field string, value string) error {
	if _, err := uuid.Parse(value); err != nil {
		return InvalidGuidError{Field: field, Value: value}
	}
	return nil
}

// Join seats the player at the oldest table that still has a free seat, or
// at a new table when none has. An empty player id gets a fresh one.
func (m *Manager) Join(ctx context.Context, player Player) (PlayerView, error) {
	if player.ID == "" {
		player.ID = m.newID()
	} else if err := validateGuid("user", player.ID); err != nil {
		return PlayerView{}, err
	}

	m.joinLock.Lock()
	defer m.joinLock.Unlock()

	candidates, err := m.findOpenTables(ctx)
	if err != nil {
		return PlayerView{}, err
	}
	for _, tableID := range candidates {
		view, seated, err := m.trySeat(ctx, tableID, player)
		if err != nil {
			logging.ForTable(managerLogger, tableID, player.ID).Warn().
				Msgf("Skipping open table: %v", err)
			continue
		}
		if seated {
			return view, nil
		}
	}
	return m.createTable(ctx, player)
}

// findOpenTables lists tables in Initial with a free seat, oldest first.
func (m *Manager) findOpenTables(ctx context.Context) ([]string, error) {
	ids, err := m.store.OpenTables(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to find open tables")
	}
	return ids, nil
}

func (m *Manager) trySeat(ctx context.Context, tableID string, player Player) (PlayerView, bool, error) {
	e := m.entry(tableID)
	e.lock.Lock()
	t, err := m.load(ctx, tableID)
	if err != nil {
		e.lock.Unlock()
		return PlayerView{}, false, err
	}
	if t.IsSeated(player.ID) {
		e.lock.Unlock()
		return ViewFor(t, player.ID), true, nil
	}
	if !t.Joinable() {
		e.lock.Unlock()
		return PlayerView{}, false, nil
	}
	next := t.Clone()
	if err := next.Seat(player, m.now()); err != nil {
		e.lock.Unlock()
		return PlayerView{}, false, nil
	}
	if err := m.save(ctx, next); err != nil {
		e.lock.Unlock()
		return PlayerView{}, false, err
	}
	e.lock.Unlock()

	logging.ForTable(managerLogger, tableID, player.ID).Info().
		Int("seats", len(next.Players)).
		Msg("Player joined table")
	m.notify(next)
	return ViewFor(next, player.ID), true, nil
}

func (m *Manager) createTable(ctx context.Context, player Player) (PlayerView, error) {
	t := NewTable(m.newID(), player, m.config, m.now())
	e := m.entry(t.ID)
	e.lock.Lock()
	if err := m.save(ctx, t); err != nil {
		e.lock.Unlock()
		return PlayerView{}, errors.Wrap(err, "Unable to create table")
	}
	e.lock.Unlock()

	util.Metrics.TableCreated()
	logging.ForTable(managerLogger, t.ID, player.ID).Info().Msg("Created table")
	m.notify(t)
	return ViewFor(t, player.ID), nil
}

// Status is the view of the table for playerID. It never changes the table.
// An empty playerID gets the public view.
func (m *Manager) Status(ctx context.Context, tableID string, playerID string) (PlayerView, error) {
	if err := validateGuid("game", tableID); err != nil {
		return PlayerView{}, err
	}
	if playerID != "" {
		if err := validateGuid("user", playerID); err != nil {
			return PlayerView{}, err
		}
	}
	e := m.entry(tableID)
	e.lock.RLock()
	defer e.lock.RUnlock()
	t, err := m.load(ctx, tableID)
	if err != nil {
		return PlayerView{}, err
	}
	return ViewFor(t, playerID), nil
}

// Snapshot returns the current table. The result must not be modified.
func (m *Manager) Snapshot(ctx context.Context, tableID string) (*Table, error) {
	if err := validateGuid("game", tableID); err != nil {
		return nil, err
	}
	e := m.entry(tableID)
	e.lock.RLock()
	defer e.lock.RUnlock()
	return m.load(ctx, tableID)
}

func (m *Manager) AvailableActions(ctx context.Context, tableID string, playerID string) ([]Action, error) {
	t, err := m.Snapshot(ctx, tableID)
	if err != nil {
		return nil, err
	}
	return m.validator.Available(t, playerID), nil
}

// SubmitAction records an action by the player to act. It does not move the
// table to the next stage; see Advance.
func (m *Manager) SubmitAction(ctx context.Context, tableID string, playerID string, action Action) (PlayerView, error) {
	if err := validateGuid("game", tableID); err != nil {
		return PlayerView{}, err
	}
	if err := validateGuid("user", playerID); err != nil {
		return PlayerView{}, err
	}

	e := m.entry(tableID)
	e.lock.Lock()
	t, err := m.load(ctx, tableID)
	if err != nil {
		e.lock.Unlock()
		return PlayerView{}, err
	}
	if err := m.validator.Validate(t, playerID, action); err != nil {
		e.lock.Unlock()
		m.rejected(tableID, playerID, action, err)
		return PlayerView{}, err
	}
	next := t.Clone()
	next.applyAction(next.Position(playerID), action, m.now())
	if err := m.save(ctx, next); err != nil {
		e.lock.Unlock()
		return PlayerView{}, err
	}
	e.lock.Unlock()

	util.Metrics.ActionRecorded()
	logging.ForTable(managerLogger, tableID, playerID).Debug().
		Str(logging.ActionKey, action.String()).
		Uint64(logging.VersionKey, next.Version).
		Msg("Action recorded")
	m.notify(next)
	return ViewFor(next, playerID), nil
}

func (m *Manager) rejected(tableID string, playerID string, action Action, err error) {
	kind, _ := KindOf(err)
	util.Metrics.ActionRejected(string(kind))
	logging.ForTable(managerLogger, tableID, playerID).Debug().
		Str(logging.ActionKey, action.String()).
		Msgf("Action rejected: %v", err)
}

// Advance moves the table to the next stage when the betting round is
// closed, and is a no-op otherwise. Leaving RiverDealt scores every hand;
// the scorer is called without holding the table lock.
func (m *Manager) Advance(ctx context.Context, tableID string) (Stage, error) {
	if err := validateGuid("game", tableID); err != nil {
		return StageInitial, err
	}

	e := m.entry(tableID)
	e.lock.Lock()
	t, err := m.load(ctx, tableID)
	if err != nil {
		e.lock.Unlock()
		return StageInitial, err
	}
	if e.scoring {
		e.lock.Unlock()
		return t.Stage, nil
	}

	now := m.now()
	next := t.Clone()
	result, advanceErr := next.advance(m.randSource(), now)
	if advanceErr != nil {
		// a halt still has to be persisted
		changed := next.Version != t.Version
		if changed {
			if err := m.save(ctx, next); err != nil {
				managerLogger.Error().Str(logging.TableIDKey, tableID).Msgf("Unable to save halted table: %v", err)
				changed = false
			}
		}
		e.lock.Unlock()
		if changed {
			managerLogger.Error().
				Str(logging.TableIDKey, tableID).
				Str(logging.StageKey, t.Stage.String()).
				Msgf("Table halted: %v", advanceErr)
			m.notify(next)
		}
		return t.Stage, advanceErr
	}

	switch result {
	case advanceDealt:
		if err := m.save(ctx, next); err != nil {
			e.lock.Unlock()
			return t.Stage, err
		}
		e.lock.Unlock()
		util.Metrics.StageEntered(next.Stage.String())
		managerLogger.Info().
			Str(logging.TableIDKey, tableID).
			Str(logging.StageKey, next.Stage.String()).
			Msg("Stage advanced")
		m.notify(next)
		return next.Stage, nil

	case advanceNeedsScore:
		next.markScorePending(now)
		if err := m.save(ctx, next); err != nil {
			e.lock.Unlock()
			return t.Stage, err
		}
		e.scoring = true
		e.lock.Unlock()
		m.notify(next)
		return m.score(ctx, e, next)
	}

	e.lock.Unlock()
	return t.Stage, nil
}

// score runs the scorer on every hand of pending and applies the outcome.
// It is entered with e.scoring set and no lock held.
func (m *Manager) score(ctx context.Context, e *tableEntry, pending *Table) (Stage, error) {
	hands := pending.hands()
	results := make([]PlayerScore, len(hands))
	var scoreErr error
	for i, hand := range hands {
		result, err := m.scorer.Score(ctx, hand.Cards)
		if err != nil {
			scoreErr = ScoringUnavailableError{TableID: pending.ID, Cause: err}
			break
		}
		results[i] = PlayerScore{
			PlayerID:    hand.PlayerID,
			Name:        pending.Players[i].Name,
			Score:       result.Score,
			Description: result.Description,
		}
	}

	e.lock.Lock()
	e.scoring = false
	t, err := m.load(ctx, pending.ID)
	if err != nil {
		e.lock.Unlock()
		return pending.Stage, err
	}
	next := t.Clone()
	if scoreErr != nil {
		next.failScore(scoreErr, m.now())
	} else {
		next.completeWithScore(results, m.now())
	}
	if err := m.save(ctx, next); err != nil {
		e.lock.Unlock()
		return t.Stage, err
	}
	e.lock.Unlock()
	m.notify(next)

	if scoreErr != nil {
		util.Metrics.ScoringFailed()
		managerLogger.Error().
			Str(logging.TableIDKey, pending.ID).
			Int("attempts", next.Score.Attempts).
			Msgf("Scoring failed: %v", scoreErr)
		return next.Stage, scoreErr
	}
	util.Metrics.StageEntered(next.Stage.String())
	managerLogger.Info().
		Str(logging.TableIDKey, pending.ID).
		Strs("winners", next.Score.Winners).
		Msg("Table complete")
	return next.Stage, nil
}

// Poll is what a client polling for status triggers: an Advance followed by
// a Status query. A halted table is still reported.
func (m *Manager) Poll(ctx context.Context, tableID string, playerID string) (PlayerView, error) {
	if playerID != "" {
		if err := validateGuid("user", playerID); err != nil {
			return PlayerView{}, err
		}
	}
	if _, err := m.Advance(ctx, tableID); err != nil {
		var halted TableHaltedError
		if !errors.As(err, &halted) {
			return PlayerView{}, err
		}
	}
	return m.Status(ctx, tableID, playerID)
}
