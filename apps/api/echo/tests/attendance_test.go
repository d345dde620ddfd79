package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/ministerio-jovenes/asistencia/apps/api/echo"
	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/tests"
)

func presentIDs(snap attendance.Snapshot) []int {
	ids := make([]int, 0, len(snap.Roster))
	for _, entry := range snap.Roster {
		if entry.IsPresent {
			ids = append(ids, entry.ID)
		}
	}
	return ids
}

func TestAttendanceAPI(t *testing.T) {
	app := setup(t)
	token := app.signIn(t)

	sunday := core.Date{Year: 2024, Month: time.March, Day: 10}
	nextSunday := sunday.AddDays(7)

	ana := testutil.CreateMember(t, app.gw.Members, "Ana Ruiz", member.GenderFemale, 1, true)
	luis := testutil.CreateMember(t, app.gw.Members, "Luis Paz", member.GenderMale, 1, true)
	pedro := testutil.CreateMember(t, app.gw.Members, "Pedro Sol", member.GenderMale, 1, false)
	carla := testutil.CreateMember(t, app.gw.Members, "Carla Mar", member.GenderFemale, 2, true)

	// pedro was still coming before leaving the group
	testutil.TakeAttendance(t, app.gw.Attendance, sunday, 1, ana.ID, pedro.ID)

	runHTTPTests(t, app, []httpTest{
		{
			name:     "guest",
			path:     "/v1/attendance?group=1",
			wantCode: http.StatusUnauthorized,
		},
		{
			name:     "missing group",
			path:     "/v1/attendance",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"group": "invalid value"}),
		},
		{
			name:     "unknown group",
			path:     "/v1/attendance?group=99",
			token:    token,
			wantCode: http.StatusNotFound,
		},
		{
			name:     "invalid date",
			path:     "/v1/attendance?group=1&date=10/03/2024",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"date": "invalid value"}),
		},
		{
			name:     "save before load",
			method:   http.MethodPost,
			path:     "/v1/attendance/save",
			token:    token,
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: attendance.ErrNoRoster.Error()}),
		},
		{
			name:     "toggle before load",
			method:   http.MethodPost,
			path:     fmt.Sprintf("/v1/attendance/members/%d/toggle", ana.ID),
			token:    token,
			wantCode: http.StatusNotFound,
		},
	})

	t.Run("load recorded date", func(t *testing.T) {
		var snap attendance.Snapshot
		rec := app.do(t, http.MethodGet, "/v1/attendance?group=1&date=2024-03-10", token, nil, &snap)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		assert.Equal(t, 1, snap.GroupID)
		assert.Equal(t, sunday, snap.Date)
		assert.Len(t, snap.Roster, 3) // inactive pedro has a record
		assert.ElementsMatch(t, []int{ana.ID, pedro.ID}, presentIDs(snap))
		assert.Equal(t, 2, snap.PresentCount)
		assert.Equal(t, 1, snap.AbsentCount)
		assert.Zero(t, snap.PendingCount)
	})

	t.Run("load other date", func(t *testing.T) {
		var snap attendance.Snapshot
		rec := app.do(t, http.MethodGet, "/v1/attendance?group=1&date="+nextSunday.String(), token, nil, &snap)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Len(t, snap.Roster, 2)
		assert.Empty(t, presentIDs(snap))
	})

	t.Run("toggle", func(t *testing.T) {
		var res ToggleResponse
		rec := app.do(t, http.MethodPost, fmt.Sprintf("/v1/attendance/members/%d/toggle", luis.ID), token, nil, &res)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, res.Entry.IsPresent)
		assert.Equal(t, 1, res.Roster.PendingCount)
		assert.Equal(t, 1, res.Roster.PresentCount)

		// carla belongs to another group
		rec = app.do(t, http.MethodPost, fmt.Sprintf("/v1/attendance/members/%d/toggle", carla.ID), token, nil, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown group keeps pending marks", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/attendance?group=99&date="+nextSunday.String(), token, nil, nil)
		require.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())

		var snap attendance.Snapshot
		rec = app.do(t, http.MethodGet, "/v1/attendance/roster", token, nil, &snap)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, snap.GroupID)
		assert.Equal(t, 1, snap.PendingCount)
	})

	t.Run("search", func(t *testing.T) {
		var snap attendance.Snapshot
		rec := app.do(t, http.MethodPut, "/v1/attendance/search", token, marchallObj(t, SearchRequest{Search: "luis"}), &snap)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		require.Len(t, snap.Filtered, 1)
		assert.Equal(t, luis.ID, snap.Filtered[0].ID)
		assert.Len(t, snap.Roster, 2)

		rec = app.do(t, http.MethodPut, "/v1/attendance/search", token, marchallObj(t, SearchRequest{}), &snap)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, snap.Filtered, 2)
	})

	t.Run("pending marks survive a date change", func(t *testing.T) {
		var snap attendance.Snapshot
		rec := app.do(t, http.MethodGet, "/v1/attendance?group=1&date=2024-03-10", token, nil, &snap)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.ElementsMatch(t, []int{ana.ID, luis.ID, pedro.ID}, presentIDs(snap))
		assert.Equal(t, 1, snap.PendingCount)

		rec = app.do(t, http.MethodGet, "/v1/attendance?group=1&date="+nextSunday.String(), token, nil, &snap)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.ElementsMatch(t, []int{luis.ID}, presentIDs(snap))
	})

	t.Run("save", func(t *testing.T) {
		var res SaveResponse
		rec := app.do(t, http.MethodPost, "/v1/attendance/save", token, nil, &res)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, res.Saved)
		assert.Zero(t, res.Roster.PendingCount)

		records, err := app.gw.Attendance.QueryRecords(context.Background(), nextSunday, 1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, luis.ID, records[0].MemberID)
		assert.Equal(t, app.store.User().ID, records[0].CreatedBy)

		// the first sunday is untouched
		records, err = app.gw.Attendance.QueryRecords(context.Background(), sunday, 1)
		require.NoError(t, err)
		assert.Len(t, records, 2)
	})

	t.Run("unmarking deletes the record", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/attendance?group=1&date=2024-03-10", token, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = app.do(t, http.MethodPost, fmt.Sprintf("/v1/attendance/members/%d/toggle", pedro.ID), token, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var res SaveResponse
		rec = app.do(t, http.MethodPost, "/v1/attendance/save", token, nil, &res)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1, res.Saved)

		records, err := app.gw.Attendance.QueryRecords(context.Background(), sunday, 1)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, ana.ID, records[0].MemberID)
	})

	t.Run("roster", func(t *testing.T) {
		var snap attendance.Snapshot
		rec := app.do(t, http.MethodGet, "/v1/attendance/roster", token, nil, &snap)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, sunday, snap.Date)
		assert.Equal(t, 1, snap.GroupID)
	})
}

func TestAttendanceAPI_DefaultDate(t *testing.T) {
	app := setup(t)
	token := app.signIn(t)

	var snap attendance.Snapshot
	rec := app.do(t, http.MethodGet, "/v1/attendance?group=2", token, nil, &snap)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, core.Today(), snap.Date)
	assert.Equal(t, 2, snap.GroupID)
	assert.Empty(t, snap.Roster)
}
