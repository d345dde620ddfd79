package boiledrepos

import (
	"context"
	"encoding/json"

	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/sqlboiler/v4/boil"
	"github.com/volatiletech/sqlboiler/v4/queries"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/stats"
)

type (
	reportRow struct {
		MemberID        int         `boil:"member_id"`
		FullName        string      `boil:"full_name"`
		Gender          string      `boil:"gender"`
		GroupName       string      `boil:"group_name"`
		AttendanceCount int         `boil:"attendance_count"`
		LastAttendance  null.String `boil:"last_attendance"`
		NeedsAlert      bool        `boil:"needs_alert"`
	}

	statsRow struct {
		Stats string `boil:"stats"`
	}
)

// ProcedureRepository calls the attendance procedures shipped with the migrations.
type ProcedureRepository struct {
	exec boil.ContextExecutor
}

var _ stats.Repository = (*ProcedureRepository)(nil) // interface compliance check

func NewProcedureRepository(exec boil.ContextExecutor) *ProcedureRepository {
	return &ProcedureRepository{exec: exec}
}

func (repo ProcedureRepository) BulkTake(ctx context.Context, bt attendance.BulkTake) error {
	ids := make(pq.Int64Array, 0, len(bt.MemberIDs))
	for _, id := range bt.MemberIDs {
		ids = append(ids, int64(id))
	}
	createdBy := null.NewString(bt.CreatedBy, bt.CreatedBy != "")

	_, err := queries.Raw(
		"SELECT bulk_take_attendance($1, $2, $3, $4)",
		ids, bt.Date, bt.GroupID, createdBy,
	).ExecContext(ctx, repo.exec)
	return errors.Wrap(err, "calling bulk_take_attendance")
}

func (repo ProcedureRepository) Report(ctx context.Context, q attendance.ReportQuery) ([]attendance.ReportItem, error) {
	var groupID null.Int
	if q.GroupID != nil {
		groupID = null.IntFrom(*q.GroupID)
	}

	var rows []*reportRow
	err := queries.Raw(
		`SELECT member_id, full_name, gender, group_name, attendance_count,
			to_char(last_attendance, 'YYYY-MM-DD') AS last_attendance, needs_alert
		FROM get_attendance_report($1, $2, $3, $4)`,
		q.Start, q.End, groupID, attendance.AlertDays,
	).Bind(ctx, repo.exec, &rows)
	if err != nil {
		return nil, errors.Wrap(err, "calling get_attendance_report")
	}

	items := make([]attendance.ReportItem, 0, len(rows))
	for _, r := range rows {
		item := attendance.ReportItem{
			MemberID:        r.MemberID,
			FullName:        r.FullName,
			Gender:          r.Gender,
			GroupName:       r.GroupName,
			AttendanceCount: r.AttendanceCount,
			NeedsAlert:      r.NeedsAlert,
		}
		if r.LastAttendance.Valid {
			last, err := core.ParseDate(r.LastAttendance.String)
			if err != nil {
				return nil, errors.Wrap(err, "parsing last_attendance")
			}
			item.LastAttendance = &last
		}
		items = append(items, item)
	}
	return items, nil
}

func (repo ProcedureRepository) DashboardStats(ctx context.Context, start, end core.Date) (stats.DashboardStats, error) {
	var row statsRow
	err := queries.Raw("SELECT get_dashboard_stats($1, $2)::text AS stats", start, end).Bind(ctx, repo.exec, &row)
	if err != nil {
		return stats.DashboardStats{}, errors.Wrap(err, "calling get_dashboard_stats")
	}

	var st stats.DashboardStats
	if err = json.Unmarshal([]byte(row.Stats), &st); err != nil {
		return stats.DashboardStats{}, errors.Wrap(err, "decoding dashboard stats")
	}
	return st, nil
}
