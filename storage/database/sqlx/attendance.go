package sqlxrepos

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/volatiletech/null/v8"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
)

type recordRow struct {
	ID        int         `db:"id"`
	MemberID  int         `db:"member_id"`
	Date      core.Date   `db:"date"`
	GroupID   int         `db:"group_id"`
	CreatedBy null.String `db:"created_by"`
	CreatedAt time.Time   `db:"created_at"`
}

// RecordRepository reads attendance rows. Writes go through the bulk_take_attendance procedure.
type RecordRepository struct {
	db sqlx.ExtContext
}

func NewRecordRepository(db sqlx.ExtContext) *RecordRepository {
	return &RecordRepository{db: db}
}

func (repo RecordRepository) QueryRecords(ctx context.Context, date core.Date, groupID int) ([]attendance.Record, error) {
	var rows []recordRow
	q := `SELECT id, member_id, to_char(date, 'YYYY-MM-DD') AS date, group_id, created_by::text AS created_by, created_at
		FROM attendance
		WHERE date = $1 AND group_id = $2
		ORDER BY member_id`
	if err := sqlx.SelectContext(ctx, repo.db, &rows, q, date, groupID); err != nil {
		return nil, wrapErr(err, "selecting attendance")
	}

	records := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		records = append(records, attendance.Record{
			ID:        r.ID,
			MemberID:  r.MemberID,
			Date:      r.Date,
			GroupID:   r.GroupID,
			CreatedBy: r.CreatedBy.String,
			CreatedAt: r.CreatedAt.UTC(),
		})
	}
	return records, nil
}
