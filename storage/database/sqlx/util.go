package sqlxrepos

import (
	"strings"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
)

// operator intervention: admin_shutdown, crash_shutdown, cannot_connect_now...
const operatorIntervention = "57"

func orderBy(ordering []core.DBOrdering) string {
	orderList := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderList = append(orderList, ord.String())
	}
	return strings.Join(orderList, ", ")
}

// wrapErr annotates err with msg. A server going away becomes a core shutdown error.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == operatorIntervention {
		return core.NewShutdownError(msg + ": " + pqErr.Message)
	}
	return errors.Wrap(err, msg)
}
