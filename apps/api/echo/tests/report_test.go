package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ministerio-jovenes/asistencia/apps/api/echo"
	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/stats"
	"github.com/ministerio-jovenes/asistencia/tests"
)

func march(day int) core.Date {
	return core.Date{Year: 2024, Month: time.March, Day: day}
}

// seedMarch records two sundays of March 2024:
// - 03/03: Ana and Luis (Jóvenes)
// - 03/24: Ana (Jóvenes) and Carla (Prejóvenes)
func seedMarch(t *testing.T, app *testApp) {
	ana := testutil.CreateMember(t, app.gw.Members, "Ana Ruiz", member.GenderFemale, 1, true)
	luis := testutil.CreateMember(t, app.gw.Members, "Luis Paz", member.GenderMale, 1, true)
	carla := testutil.CreateMember(t, app.gw.Members, "Carla Mar", member.GenderFemale, 2, true)
	testutil.CreateMember(t, app.gw.Members, "Pedro Sol", member.GenderMale, 2, false)

	testutil.TakeAttendance(t, app.gw.Attendance, march(3), 1, ana.ID, luis.ID)
	testutil.TakeAttendance(t, app.gw.Attendance, march(24), 1, ana.ID)
	testutil.TakeAttendance(t, app.gw.Attendance, march(24), 2, carla.ID)
}

func reportNames(rv attendance.ReportView) []string {
	names := make([]string, 0, len(rv.Items))
	for _, item := range rv.Items {
		names = append(names, item.FullName)
	}
	return names
}

func TestReportAPI_Attendance(t *testing.T) {
	app := setup(t)
	token := app.signIn(t)
	seedMarch(t, app)

	const march2024 = "/v1/reports/attendance?start=2024-03-01&end=2024-03-31"

	runHTTPTests(t, app, []httpTest{
		{
			name:     "guest",
			path:     march2024,
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "invalid start",
			path:     "/v1/reports/attendance?start=march",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"start": "invalid value"}),
		},
		{
			name:     "start after end",
			path:     "/v1/reports/attendance?start=2024-04-01&end=2024-03-01",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"start": attendance.ErrInvalidRange.Error()}),
		},
	})

	t.Run("every group", func(t *testing.T) {
		var rv attendance.ReportView
		rec := app.do(t, http.MethodGet, march2024, token, nil, &rv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, march(1), rv.Start)
		assert.Equal(t, march(31), rv.End)
		assert.Empty(t, rv.SelectedGroupName)
		assert.Equal(t, []string{"Ana Ruiz", "Carla Mar", "Luis Paz"}, reportNames(rv))
		assert.Equal(t, 3, rv.TotalCount)
		assert.Equal(t, 1, rv.AlertCount)
		assert.Equal(t, map[string]int{"Jóvenes": 2, "Prejóvenes": 1}, rv.CountByGroup)

		for _, item := range rv.Items {
			switch item.FullName {
			case "Ana Ruiz":
				assert.Equal(t, 2, item.AttendanceCount)
				require.NotNil(t, item.LastAttendance)
				assert.Equal(t, march(24), *item.LastAttendance)
				assert.False(t, item.NeedsAlert)
			case "Luis Paz":
				assert.Equal(t, 1, item.AttendanceCount)
				assert.True(t, item.NeedsAlert)
			}
		}
	})

	t.Run("one group", func(t *testing.T) {
		var rv attendance.ReportView
		rec := app.do(t, http.MethodGet, march2024+"&group=1", token, nil, &rv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Jóvenes", rv.SelectedGroupName)
		assert.Equal(t, []string{"Ana Ruiz", "Luis Paz"}, reportNames(rv))
		assert.Equal(t, map[string]int{"Jóvenes": 2, "Prejóvenes": 0}, rv.CountByGroup)
	})

	t.Run("search keeps the totals", func(t *testing.T) {
		var rv attendance.ReportView
		rec := app.do(t, http.MethodGet, march2024+"&search=CAR", token, nil, &rv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, []string{"Carla Mar"}, reportNames(rv))
		assert.Equal(t, 3, rv.TotalCount)
		assert.Equal(t, 1, rv.AlertCount)
	})

	t.Run("nobody came", func(t *testing.T) {
		var rv attendance.ReportView
		rec := app.do(t, http.MethodGet, "/v1/reports/attendance?start=2024-02-01&end=2024-02-29", token, nil, &rv)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, rv.Items, 3)
		assert.Zero(t, rv.TotalCount)
		assert.Equal(t, 3, rv.AlertCount)
	})
}

func TestReportAPI_Alerts(t *testing.T) {
	app := setup(t)
	token := app.signIn(t)
	seedMarch(t, app)

	var res AlertsResponse
	rec := app.do(t, http.MethodPost, "/v1/reports/alerts?start=2024-03-01&end=2024-03-31", token, nil, &res)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, res.Alerts)

	sent := app.mailSvc.SentMessages()
	require.Len(t, sent, 1)
	require.Len(t, sent[0].To, 1)
	assert.Equal(t, "pastor@iglesia.pe", sent[0].To[0].Address)
	assert.Contains(t, sent[0].TextContent, "Luis Paz")
	assert.NotContains(t, sent[0].TextContent, "Ana Ruiz")
}

func TestStatsAPI_Dashboard(t *testing.T) {
	app := setup(t)
	token := app.signIn(t)
	seedMarch(t, app)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "guest",
			path:     "/v1/stats/dashboard",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "unknown range",
			path:     "/v1/stats/dashboard?range=forever",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"range": stats.ErrUnknownRange.Error()}),
		},
	})

	t.Run("explicit range", func(t *testing.T) {
		var ds stats.DashboardStats
		rec := app.do(t, http.MethodGet, "/v1/stats/dashboard?start=2024-03-01&end=2024-03-31", token, nil, &ds)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, stats.Summary{
			TotalAttendance:      4,
			AttendanceJovenes:    3,
			AttendancePrejovenes: 1,
			AbsentJovenes:        1,
			AbsentPrejovenes:     0,
		}, ds.Summary)
		assert.Equal(t, stats.ByGender{M: 1, F: 3}, ds.ByGender)
		assert.Equal(t, []stats.TimelinePoint{
			{Date: march(3), JovenesCount: 2},
			{Date: march(24), JovenesCount: 1, PrejovenesCount: 1},
		}, ds.Timeline)
	})

	t.Run("named range without records", func(t *testing.T) {
		var ds stats.DashboardStats
		rec := app.do(t, http.MethodGet, "/v1/stats/dashboard?range=today", token, nil, &ds)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Zero(t, ds.Summary.TotalAttendance)
		assert.NotNil(t, ds.Timeline)
		assert.Empty(t, ds.Timeline)
	})
}
