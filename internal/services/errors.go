package services

import (
	"errors"
	"fmt"
)

var (
	// ErrNotAdmin rejects decisions from actors without the admin capability.
	// Checked before any sensitive state is read.
	ErrNotAdmin = errors.New("not authorized to moderate")

	ErrReportNotFound  = errors.New("report not found")
	ErrUserNotFound    = errors.New("target user not found")
	ErrListingNotFound = errors.New("listing not found")
	ErrStaffNotFound   = errors.New("staff user not found")

	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidPassword      = errors.New("invalid password")

	// ErrAlreadyProcessed rejects a decision on a report that already left
	// the pending state. Prevents double strikes from duplicate clicks.
	ErrAlreadyProcessed = errors.New("report already processed")

	ErrInvalidInput = errors.New("invalid moderation input")

	// ErrPersistence wraps underlying store I/O failures so callers can
	// distinguish them from domain rejections.
	ErrPersistence = errors.New("persistence failure")
)

// persistErr tags a store failure with the operation that produced it.
func persistErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrPersistence, op, err)
}

// PartialFailureError reports that the strike ledger committed but a later
// write in the enforcement sequence did not. The two stores are not
// transactional across each other; the divergence is queued as a repair
// document and surfaced distinctly so operators can reconcile instead of
// blindly retrying.
type PartialFailureError struct {
	Stage    string
	RepairID string
	Err      error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("enforcement partially failed at %s stage (repair %s): %v", e.Stage, e.RepairID, e.Err)
}

func (e *PartialFailureError) Unwrap() error { return e.Err }
