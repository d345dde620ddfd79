package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/session"
)

var todayFunc = core.Today // mockable

type attendanceApi struct {
	view   *attendance.View
	groups *group.Cache
	store  *session.Store
}

func registerAttendanceAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps) {
	api := attendanceApi{view: deps.Roster, groups: deps.Groups, store: deps.Store}

	ag := g.Group("/attendance", authed)
	ag.GET("", api.load)
	ag.GET("/roster", api.roster)
	ag.PUT("/search", api.search)
	ag.POST("/members/:id/toggle", api.toggle)
	ag.POST("/save", api.save)
}

type (
	SearchRequest struct {
		Search string `json:"search"`
	}

	SaveResponse struct {
		Saved  int                 `json:"saved"`
		Roster attendance.Snapshot `json:"roster"`
	}

	ToggleResponse struct {
		Entry  attendance.Entry    `json:"entry"`
		Roster attendance.Snapshot `json:"roster"`
	}
)

// Handlers

// load selects (group, date) and rebuilds the roster. Query params: group (required), date
// (today by default), search.
func (api *attendanceApi) load(ctx echo.Context) error {
	groupID, err := queryInt(ctx, "group")
	if err != nil {
		return err
	}
	if groupID <= 0 {
		return invalidParam("group")
	}
	date, err := queryDate(ctx, "date", todayFunc())
	if err != nil {
		return err
	}
	if _, err = api.groups.Load(ctx.Request().Context()); err != nil {
		return err
	}
	if _, ok := api.groups.GetByID(groupID); !ok {
		return group.ErrNotFound
	}
	if _, ok := ctx.QueryParams()["search"]; ok {
		api.view.SetSearch(ctx.QueryParam("search"))
	}

	snap, err := api.view.Load(ctx.Request().Context(), groupID, date)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, snap)
}

func (api *attendanceApi) roster(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.view.Snapshot())
}

func (api *attendanceApi) search(ctx echo.Context) error {
	var data SearchRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SearchRequest")
	}
	return ctx.JSON(http.StatusOK, api.view.SetSearch(data.Search))
}

func (api *attendanceApi) toggle(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	entry, err := api.view.Toggle(id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ToggleResponse{Entry: entry, Roster: api.view.Snapshot()})
}

func (api *attendanceApi) save(ctx echo.Context) error {
	var createdBy string
	if usr := api.store.User(); usr != nil {
		createdBy = usr.ID
	}
	saved, err := api.view.Save(ctx.Request().Context(), createdBy)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SaveResponse{Saved: saved, Roster: api.view.Snapshot()})
}
