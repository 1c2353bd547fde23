package lifecycle

import (
	"errors"
	"fmt"
)

var ErrIllegalTransition = errors.New("illegal transition")
var ErrNotBound = errors.New("lifecycle is not bound to a subject")

const (
	ReasonNoEdge      = "no edge"
	ReasonNoApplicant = "no applicant"
)

// TransitionRejected is returned by the guard and the lifecycle mutators.
type TransitionRejected struct {
	Transition string
	State      string
	Reason     string
}

func (e *TransitionRejected) Error() string {
	return fmt.Sprintf("transition '%s' is not allowed in state '%s': %s", e.Transition, e.State, e.Reason)
}

func (e *TransitionRejected) Is(target error) bool {
	return target == ErrIllegalTransition
}
