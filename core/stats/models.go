package stats

import "github.com/ministerio-jovenes/asistencia/core"

// Time ranges
const (
	RangeToday      = "today"
	RangeLast2Weeks = "last2weeks"
	RangeLastMonth  = "lastmonth"
)

type (
	Summary struct {
		TotalAttendance      int `json:"total_attendance"`
		AttendanceJovenes    int `json:"attendance_jovenes"`
		AttendancePrejovenes int `json:"attendance_prejovenes"`
		AbsentJovenes        int `json:"absent_jovenes"`
		AbsentPrejovenes     int `json:"absent_prejovenes"`
	}

	ByGender struct {
		M int `json:"M"`
		F int `json:"F"`
	}

	TimelinePoint struct {
		Date            core.Date `json:"date"`
		JovenesCount    int       `json:"jovenes_count"`
		PrejovenesCount int       `json:"prejovenes_count"`
	}

	DashboardStats struct {
		Summary  Summary         `json:"summary"`
		ByGender ByGender        `json:"by_gender"`
		Timeline []TimelinePoint `json:"timeline"`
	}
)
