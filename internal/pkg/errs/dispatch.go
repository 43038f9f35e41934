package errs

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyClaimed         = errors.New("order is already claimed")
	ErrInvalidTransition      = errors.New("invalid order transition")
	ErrTimeout                = errors.New("operation timed out")
	ErrLocationUnavailable    = errors.New("courier location is unavailable")
	ErrStoreUnavailable       = errors.New("store is unavailable")
	ErrStatusPreconditionFail = errors.New("status precondition failed")

	// ErrDuplicateKey is wrapped by stores when an insert hits an existing id.
	ErrDuplicateKey = errors.New("duplicate key")
)

// AlreadyClaimedError is returned when a claim finds the order outside the search_courier status.
// The caller has to refresh its view; retrying cannot succeed.
type AlreadyClaimedError struct {
	OrderID string
	Status  string
}

func NewAlreadyClaimedError(orderID, status string) *AlreadyClaimedError {
	return &AlreadyClaimedError{OrderID: orderID, Status: status}
}

func (e *AlreadyClaimedError) Error() string {
	return fmt.Sprintf("%s: order %s has status %s", ErrAlreadyClaimed, e.OrderID, e.Status)
}

func (e *AlreadyClaimedError) Unwrap() error {
	return ErrAlreadyClaimed
}

// InvalidTransitionError is returned when a lifecycle transition is not legal from the current status.
type InvalidTransitionError struct {
	Transition string
	From       string
	Cause      error
}

func NewInvalidTransitionError(transition, from string) *InvalidTransitionError {
	return &InvalidTransitionError{Transition: transition, From: from}
}

func NewInvalidTransitionErrorWithCause(transition, from string, cause error) *InvalidTransitionError {
	return &InvalidTransitionError{Transition: transition, From: from, Cause: cause}
}

func (e *InvalidTransitionError) Error() string {
	msg := fmt.Sprintf("%s: cannot %s from status %s", ErrInvalidTransition, e.Transition, e.From)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

func (e *InvalidTransitionError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrInvalidTransition, e.Cause}
	}
	return []error{ErrInvalidTransition}
}

type LocationUnavailableError struct {
	Courier string
	Reason  string
}

func NewLocationUnavailableError(courier, reason string) *LocationUnavailableError {
	return &LocationUnavailableError{Courier: courier, Reason: reason}
}

func (e *LocationUnavailableError) Error() string {
	return fmt.Sprintf("%s: courier %s: %s", ErrLocationUnavailable, e.Courier, e.Reason)
}

func (e *LocationUnavailableError) Unwrap() error {
	return ErrLocationUnavailable
}

// StoreUnavailableError wraps transient connectivity failures of the backing store.
type StoreUnavailableError struct {
	Op    string
	Cause error
}

func NewStoreUnavailableError(op string, cause error) *StoreUnavailableError {
	return &StoreUnavailableError{Op: op, Cause: cause}
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s: %s (cause: %v)", ErrStoreUnavailable, e.Op, e.Cause)
}

func (e *StoreUnavailableError) Unwrap() []error {
	return []error{ErrStoreUnavailable, e.Cause}
}

// StatusPreconditionError is returned by conditional writes when the stored status
// no longer matches the status the writer read.
type StatusPreconditionError struct {
	ID       string
	Expected string
}

func NewStatusPreconditionError(id, expected string) *StatusPreconditionError {
	return &StatusPreconditionError{ID: id, Expected: expected}
}

func (e *StatusPreconditionError) Error() string {
	return fmt.Sprintf("%s: %s is no longer %s", ErrStatusPreconditionFail, e.ID, e.Expected)
}

func (e *StatusPreconditionError) Unwrap() error {
	return ErrStatusPreconditionFail
}

// IsRetryable reports whether the caller may retry the operation that produced err.
// Only timeouts and store connectivity failures qualify.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrStoreUnavailable)
}
