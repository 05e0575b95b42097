package orders

import (
	"errors"
	"fmt"
)

var ErrOrderNotFound = errors.New("order not found")

// ValidationError rejects a malformed placement request. No side effects
// have occurred when it is returned.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid order request: %s", e.Reason)
}

// InvalidTransitionError rejects a status update the state machine forbids.
type InvalidTransitionError struct {
	From, To Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %s to %s", e.From, e.To)
}

// PersistenceError marks a storage failure after stock was already
// decremented: inventory has moved with no order to show for it. Callers get
// a generic failure; the orchestrator logs the decremented products for
// reconciliation.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist order after reservation: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
