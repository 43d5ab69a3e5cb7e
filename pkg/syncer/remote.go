package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tableflip.dev/apptcal/pkg/appointment"
)

// DefaultDelay is the simulated round trip of one confirmation.
const DefaultDelay = 500 * time.Millisecond

// ErrRemoteRejected is returned when the remote refuses an operation.
var ErrRemoteRejected = errors.New("syncer: remote rejected operation")

// Remote confirms queued operations. Implementations must treat op.ID as an
// idempotency key: the same operation may be confirmed more than once.
type Remote interface {
	Confirm(ctx context.Context, op appointment.SyncOperation) error
}

// RemoteFunc adapts a function to Remote.
type RemoteFunc func(ctx context.Context, op appointment.SyncOperation) error

// Confirm calls f.
func (f RemoteFunc) Confirm(ctx context.Context, op appointment.SyncOperation) error {
	return f(ctx, op)
}

// Simulated stands in for a network round trip. There is no endpoint: every
// operation succeeds after Delay unless Fail returns an error.
type Simulated struct {
	Delay time.Duration
	Fail  func(op appointment.SyncOperation) error
}

// Confirm waits out the delay and reports the outcome.
func (s Simulated) Confirm(ctx context.Context, op appointment.SyncOperation) error {
	timer := time.NewTimer(s.Delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return fmt.Errorf("syncer: confirm %s: %w", op.ID, ctx.Err())
	case <-timer.C:
	}

	if s.Fail != nil {
		if err := s.Fail(op); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrRemoteRejected, op.ID, err)
		}
	}
	return nil
}
