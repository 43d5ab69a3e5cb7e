package appointment

import (
	"sort"
	"time"
)

// OperationType is the kind of local mutation awaiting confirmation.
type OperationType string

const (
	OpCreate OperationType = "create"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
)

// SyncOperation is one queued local mutation not yet confirmed against the
// remote. ID doubles as the idempotency key for the remote.
type SyncOperation struct {
	ID            string        `json:"id"`
	Type          OperationType `json:"operationType"`
	AppointmentID string        `json:"appointmentId"`
	Data          *Appointment  `json:"data,omitempty"`
	Timestamp     int64         `json:"timestamp"`
	RetryCount    int           `json:"retryCount"`
	NextAttemptAt time.Time     `json:"nextAttemptAt,omitzero"`
}

// Due reports whether the operation may be attempted at now.
func (op SyncOperation) Due(now time.Time) bool {
	return op.NextAttemptAt.IsZero() || !op.NextAttemptAt.After(now)
}

// SortOperations orders ops by ascending timestamp. Ties keep their
// relative order.
func SortOperations(ops []SyncOperation) {
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Timestamp < ops[j].Timestamp
	})
}

// CloneOperations deep copies ops including their payloads.
func CloneOperations(ops []SyncOperation) []SyncOperation {
	if ops == nil {
		return nil
	}
	out := make([]SyncOperation, len(ops))
	for i, op := range ops {
		if op.Data != nil {
			data := *op.Data
			op.Data = &data
		}
		out[i] = op
	}
	return out
}
