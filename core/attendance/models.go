package attendance

import (
	"time"

	"github.com/ministerio-jovenes/asistencia/core"
)

// AlertDays is the window before the report end date without any attendance that flags a member.
const AlertDays = 14

// Record means "this member was present in this group on this date".
type Record struct {
	ID        int       `json:"id"`
	MemberID  int       `json:"member_id"`
	Date      core.Date `json:"date"`
	GroupID   int       `json:"group_id"`
	CreatedBy string    `json:"created_by,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// BulkTake is the input of the bulk attendance write.
// Members left out of MemberIDs lose their record for (Date, GroupID).
type BulkTake struct {
	MemberIDs []int
	Date      core.Date
	GroupID   int
	CreatedBy string // user id, ignored by gateways that take it from the session
}

type ReportItem struct {
	MemberID        int        `json:"member_id"`
	FullName        string     `json:"full_name"`
	Gender          string     `json:"gender"`
	GroupName       string     `json:"group_name"`
	AttendanceCount int        `json:"attendance_count"`
	LastAttendance  *core.Date `json:"last_attendance"`
	NeedsAlert      bool       `json:"needs_alert"`
}

// ReportQuery selects the rows of the attendance report.
type ReportQuery struct {
	Start   core.Date
	End     core.Date
	GroupID *int
}
