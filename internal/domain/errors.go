package domain

import "errors"

// Error taxonomy shared by the service and HTTP layers. Services wrap these
// with fmt.Errorf("...: %w", ...); handlers map them to status codes with
// errors.Is.
var (
	// ErrForbidden: the caller's capability set does not permit the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidTransition: the vehicle is not in a state the status machine
	// allows to leave (Approved and Declined are terminal).
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConflictRetryable: lost a conditional write to a concurrent caller.
	// Safe to retry the whole operation.
	ErrConflictRetryable = errors.New("conflict, retry")

	// ErrAlreadyAssigned: the vehicle already has an assignment row. The
	// caller must delete it first; create never replaces implicitly.
	ErrAlreadyAssigned = errors.New("vehicle already has an assignment")

	// ErrPreconditionFailed: the vehicle is not Approved.
	ErrPreconditionFailed = errors.New("vehicle is not approved")

	ErrNotFound        = errors.New("not found")
	ErrTooManyRequests = errors.New("too many requests")

	// ErrUnavailable: downstream store outage on a mutation path.
	ErrUnavailable = errors.New("service unavailable")
)
