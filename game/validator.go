package game

// LegalActionGenerator decides which actions the player at a position may
// take. The table engine only enforces turn order; betting rules plug in
// here.
type LegalActionGenerator interface {
	AvailableActions(t *Table, position int) []Action
}

// PermissiveActions allows every action at every turn.
type PermissiveActions struct{}

func (PermissiveActions) AvailableActions(*Table, int) []Action {
	return append([]Action(nil), AllActions...)
}

// FoldedStaysFolded lets a player who folded in the current round only fold
// again. Everyone else may take any action.
type FoldedStaysFolded struct{}

func (FoldedStaysFolded) AvailableActions(t *Table, position int) []Action {
	if position >= 0 && position < len(t.BettingStatus) && t.BettingStatus[position] == Folded {
		return []Action{ActionFold}
	}
	return append([]Action(nil), AllActions...)
}

type ActionValidator interface {
	Validate(t *Table, playerID string, action Action) error
}

type TurnOrderValidator struct {
	legal LegalActionGenerator
}

func NewTurnOrderValidator(legal LegalActionGenerator) *TurnOrderValidator {
	if legal == nil {
		legal = PermissiveActions{}
	}
	return &TurnOrderValidator{legal: legal}
}

var DefaultValidator ActionValidator = NewTurnOrderValidator(PermissiveActions{})

func (v *TurnOrderValidator) Validate(t *Table, playerID string, action Action) error {
	if t.Halted {
		return TableHaltedError{TableID: t.ID, Reason: t.HaltReason}
	}
	if t.Stage == StageComplete {
		return InvalidActionError{Action: action.String(), Reason: "table is complete"}
	}
	if t.awaitingScore() {
		return ScoringPendingError{TableID: t.ID}
	}
	if playerID != t.PlayerToAct {
		return NotYourTurnError{PlayerID: playerID, PlayerToAct: t.PlayerToAct}
	}
	if !action.Valid() {
		return InvalidActionError{Action: action.String(), Reason: "unknown action type"}
	}
	for _, a := range v.legal.AvailableActions(t, t.Position(playerID)) {
		if a == action {
			return nil
		}
	}
	return InvalidActionError{Action: action.String(), Reason: "action is not available"}
}

// Available lists the actions playerID may take right now. It is empty for
// anyone who is not the player to act.
func (v *TurnOrderValidator) Available(t *Table, playerID string) []Action {
	if t.Halted || t.Stage == StageComplete || t.awaitingScore() || playerID != t.PlayerToAct {
		return []Action{}
	}
	return v.legal.AvailableActions(t, t.Position(playerID))
}
