package billing

import "github.com/pkg/errors"

var (
	// ErrInvalidSession marks an operation against an unknown customer label.
	ErrInvalidSession = errors.New("unknown customer session")

	// ErrInvalidValue marks a non-finite quantity/price or a negative price.
	ErrInvalidValue = errors.New("invalid quantity or price")

	// ErrEmptySession marks a commit attempted with no lines while empty
	// commits are disabled.
	ErrEmptySession = errors.New("session has no lines")

	// ErrBillNotFound marks a load or edit of a nonexistent bill id.
	ErrBillNotFound = errors.New("bill not found")

	// ErrUnknownItem marks a line whose name has no catalog match while
	// strict resolution is enabled.
	ErrUnknownItem = errors.New("no catalog match for item")

	// ErrPersistence marks a transactional store failure. The enclosing
	// operation has been rolled back and nothing was retried.
	ErrPersistence = errors.New("ledger store failure")

	// ErrSinkUnavailable marks an unreachable receipt device. Always
	// non-fatal: commit success is independent of print success.
	ErrSinkUnavailable = errors.New("receipt sink unavailable")

	// ErrNoSelection marks a keypad or weight action with no line selected.
	ErrNoSelection = errors.New("no line selected")
)
