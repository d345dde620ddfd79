package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/stats"
)

type reportApi struct {
	attSvc   *attendance.Service
	statsSvc *stats.Service
	alerts   *attendance.AlertNotifier
	groups   *group.Cache
}

func registerReportAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps) {
	api := reportApi{
		attSvc:   deps.AttendanceSvc,
		statsSvc: deps.StatsSvc,
		alerts:   deps.Alerts,
		groups:   deps.Groups,
	}

	g.GET("/reports/attendance", api.attendanceReport, authed)
	g.POST("/reports/alerts", api.sendAlerts, authed)
	g.GET("/stats/dashboard", api.dashboard, authed)
}

type AlertsResponse struct {
	Alerts int `json:"alerts"`
}

func (api *reportApi) reportQuery(ctx echo.Context) (attendance.ReportQuery, error) {
	defStart, defEnd := attendance.DefaultReportRange(todayFunc())
	start, err := queryDate(ctx, "start", defStart)
	if err != nil {
		return attendance.ReportQuery{}, err
	}
	end, err := queryDate(ctx, "end", defEnd)
	if err != nil {
		return attendance.ReportQuery{}, err
	}
	q := attendance.ReportQuery{Start: start, End: end}

	groupID, err := queryInt(ctx, "group")
	if err != nil {
		return attendance.ReportQuery{}, err
	}
	if groupID > 0 {
		q.GroupID = &groupID
	}
	return q, nil
}

// Handlers

// attendanceReport answers the report of [start, end] (one month back by default).
// Query params: start, end, group, search.
func (api *reportApi) attendanceReport(ctx echo.Context) error {
	q, err := api.reportQuery(ctx)
	if err != nil {
		return err
	}

	rctx := ctx.Request().Context()
	groups, err := api.groups.Load(rctx)
	if err != nil {
		return errors.Wrap(err, "loading groups")
	}
	items, err := api.attSvc.Report(rctx, q)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(groups))
	for _, g := range groups {
		names = append(names, g.Name)
	}
	var selected string
	if q.GroupID != nil {
		selected = api.groups.Name(*q.GroupID)
	}
	return ctx.JSON(http.StatusOK, attendance.NewReportView(q, items, ctx.QueryParam("search"), selected, names))
}

// sendAlerts emails the follow-up digest for [start, end].
func (api *reportApi) sendAlerts(ctx echo.Context) error {
	q, err := api.reportQuery(ctx)
	if err != nil {
		return err
	}
	n, err := api.alerts.Notify(ctx.Request().Context(), q.Start, q.End)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AlertsResponse{Alerts: n})
}

// dashboard answers the stats of a named range, or of [start, end] when both are given.
// Query params: range (today | last2weeks | lastmonth), start, end.
func (api *reportApi) dashboard(ctx echo.Context) error {
	start, end, err := stats.TimeRange(ctx.QueryParam("range"), todayFunc())
	if err != nil {
		return err
	}
	if ctx.QueryParam("start") != "" && ctx.QueryParam("end") != "" {
		if start, err = queryDate(ctx, "start", start); err != nil {
			return err
		}
		if end, err = queryDate(ctx, "end", end); err != nil {
			return err
		}
	}

	ds, err := api.statsSvc.Dashboard(ctx.Request().Context(), start, end)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ds)
}
