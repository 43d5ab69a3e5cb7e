package remove

import (
	"context"
	"errors"
	"fmt"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/printers"
)

type Remove struct {
	IDs  []string
	Wait bool
	JSON bool

	Service *app.Service
}

// Do deletes each id. Unknown ids are reported but are not errors.
func (n *Remove) Do(ctx context.Context) error {
	if n.Service == nil {
		return errors.New("can not delete, no service")
	}

	removed := make([]string, 0, len(n.IDs))
	missing := make([]string, 0)
	for _, id := range n.IDs {
		if n.Service.DeleteAppointment(id) {
			removed = append(removed, id)
		} else {
			missing = append(missing, id)
		}
	}
	if n.Wait && len(removed) > 0 && n.Service.Online() {
		if _, err := n.Service.Sync(ctx); err != nil {
			return err
		}
	}

	if n.JSON {
		return printers.JSON(nil, map[string]any{
			"deleted": removed,
			"missing": missing,
			"pending": n.Service.PendingCount(),
		})
	}
	for _, id := range removed {
		fmt.Printf("deleted %s\n", id)
	}
	for _, id := range missing {
		fmt.Printf("no appointment %s\n", id)
	}
	return nil
}
