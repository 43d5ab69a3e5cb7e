package syncer

import "tableflip.dev/apptcal/pkg/appointment"

// Coalesce keeps one operation per appointment. The latest operation wins,
// except that a delete always wins. A surviving update whose history began
// with a create is promoted to a create so the remote still sees the record
// come into existence. The result is in timestamp order.
func Coalesce(ops []appointment.SyncOperation) []appointment.SyncOperation {
	if len(ops) < 2 {
		return appointment.CloneOperations(ops)
	}

	type group struct {
		first  appointment.OperationType
		kept   appointment.SyncOperation
		delete bool
	}
	groups := make(map[string]*group, len(ops))
	order := make([]string, 0, len(ops))

	sorted := appointment.CloneOperations(ops)
	appointment.SortOperations(sorted)

	for _, op := range sorted {
		g, ok := groups[op.AppointmentID]
		if !ok {
			groups[op.AppointmentID] = &group{first: op.Type, kept: op, delete: op.Type == appointment.OpDelete}
			order = append(order, op.AppointmentID)
			continue
		}
		switch {
		case op.Type == appointment.OpDelete:
			g.kept = op
			g.delete = true
		case g.delete:
			// an earlier delete outranks later edits
		default:
			g.kept = op
		}
	}

	out := make([]appointment.SyncOperation, 0, len(order))
	for _, id := range order {
		g := groups[id]
		if g.kept.Type == appointment.OpUpdate && g.first == appointment.OpCreate {
			g.kept.Type = appointment.OpCreate
		}
		out = append(out, g.kept)
	}
	appointment.SortOperations(out)
	return out
}
