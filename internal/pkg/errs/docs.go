// Package errs provides the error types shared by the dispatch service.
//
// Validation errors (ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError)
// and ObjectNotFoundError follow one pattern: a sentinel, a struct carrying details,
// constructors with and without a cause, and Unwrap returning the sentinel.
//
// The dispatch taxonomy adds AlreadyClaimedError, InvalidTransitionError,
// LocationUnavailableError, StoreUnavailableError, ErrTimeout and
// StatusPreconditionError. IsRetryable separates the retryable kinds (timeouts,
// store connectivity) from those that require a fresh read of state.
package errs
