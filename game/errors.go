package game

import (
	"fmt"

	"github.com/pkg/errors"
	"pokertable.io/server/poker"
)

type ErrorKind string

const (
	KindExhaustedDeck      ErrorKind = "ExhaustedDeck"
	KindNotYourTurn        ErrorKind = "NotYourTurn"
	KindInvalidAction      ErrorKind = "InvalidAction"
	KindTableNotFound      ErrorKind = "TableNotFound"
	KindInvalidGuid        ErrorKind = "InvalidGuid"
	KindScoringUnavailable ErrorKind = "ScoringUnavailable"
	KindScoringPending     ErrorKind = "ScoringPending"
	KindTableHalted        ErrorKind = "TableHalted"
	KindTableFull          ErrorKind = "TableFull"
)

// KindedError is implemented by every error the table engine reports to
// callers.
type KindedError interface {
	error
	Kind() ErrorKind
}

// KindOf returns the kind of the first KindedError in err's chain.
func KindOf(err error) (ErrorKind, bool) {
	var kinded KindedError
	if errors.As(err, &kinded) {
		return kinded.Kind(), true
	}
	return "", false
}

type ExhaustedDeckError struct {
	TableID string
	Cause   poker.ExhaustedDeckError
}

func (e ExhaustedDeckError) Error() string {
	return fmt.Sprintf("Table %s halted: %s", e.TableID, e.Cause.Error())
}

func (e ExhaustedDeckError) Kind() ErrorKind { return KindExhaustedDeck }

func (e ExhaustedDeckError) Unwrap() error { return e.Cause }

type NotYourTurnError struct {
	PlayerID    string
	PlayerToAct string
}

func (e NotYourTurnError) Error() string {
	return fmt.Sprintf("Not your turn. Player %s is expected to act, not %s", e.PlayerToAct, e.PlayerID)
}

func (e NotYourTurnError) Kind() ErrorKind { return KindNotYourTurn }

type InvalidActionError struct {
	Action string
	Reason string
}

func (e InvalidActionError) Error() string {
	return fmt.Sprintf("Invalid action [%s]: %s", e.Action, e.Reason)
}

func (e InvalidActionError) Kind() ErrorKind { return KindInvalidAction }

type TableNotFoundError struct {
	TableID string
}

func (e TableNotFoundError) Error() string {
	return fmt.Sprintf("Table %s is not found", e.TableID)
}

func (e TableNotFoundError) Kind() ErrorKind { return KindTableNotFound }

type InvalidGuidError struct {
	Field string
	Value string
}

func (e InvalidGuidError) Error() string {
	return fmt.Sprintf("Invalid %s guid [%s]", e.Field, e.Value)
}

func (e InvalidGuidError) Kind() ErrorKind { return KindInvalidGuid }

type ScoringUnavailableError struct {
	TableID string
	Cause   error
}

func (e ScoringUnavailableError) Error() string {
	return fmt.Sprintf("Scoring unavailable for table %s: %v", e.TableID, e.Cause)
}

func (e ScoringUnavailableError) Kind() ErrorKind { return KindScoringUnavailable }

func (e ScoringUnavailableError) Unwrap() error { return e.Cause }

type ScoringPendingError struct {
	TableID string
}

func (e ScoringPendingError) Error() string {
	return fmt.Sprintf("Table %s betting is closed and waiting for a score", e.TableID)
}

func (e ScoringPendingError) Kind() ErrorKind { return KindScoringPending }

type TableHaltedError struct {
	TableID string
	Reason  string
}

func (e TableHaltedError) Error() string {
	return fmt.Sprintf("Table %s is halted: %s", e.TableID, e.Reason)
}

func (e TableHaltedError) Kind() ErrorKind { return KindTableHalted }

type TableFullError struct {
	TableID string
}

func (e TableFullError) Error() string {
	return fmt.Sprintf("Table %s has no open seat", e.TableID)
}

func (e TableFullError) Kind() ErrorKind { return KindTableFull }
