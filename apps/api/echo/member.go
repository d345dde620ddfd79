package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
)

var nowFunc = time.Now // mockable

type memberApi struct {
	svc    *member.Service
	groups *group.Cache
}

func registerMemberAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps) {
	api := memberApi{svc: deps.MemberSvc, groups: deps.Groups}

	mg := g.Group("/members", authed)
	mg.GET("", api.query)
	mg.GET("/summary", api.summary)
	mg.POST("", api.create)
	mg.PUT("/:id", api.update)
	mg.POST("/:id/deactivate", api.setActive(false))
	mg.POST("/:id/reactivate", api.setActive(true))
}

type memberResponse struct {
	member.Member
	Initials   string `json:"initials"`
	GroupName  string `json:"group_name"`
	GroupColor string `json:"group_color"`
}

func (api *memberApi) present(mem member.Member) memberResponse {
	return memberResponse{
		Member:     mem,
		Initials:   core.Initials(mem.Name),
		GroupName:  api.groups.Name(mem.GroupID),
		GroupColor: api.groups.Color(mem.GroupID),
	}
}

// Handlers

// query lists the directory. Query params: group, search, inactive.
func (api *memberApi) query(ctx echo.Context) error {
	groupID, err := queryInt(ctx, "group")
	if err != nil {
		return err
	}
	filter := member.Filter{
		GroupID:      groupID,
		Search:       ctx.QueryParam("search"),
		ShowInactive: queryBool(ctx, "inactive"),
	}

	rctx := ctx.Request().Context()
	if _, err = api.groups.Load(rctx); err != nil {
		return errors.Wrap(err, "loading groups")
	}
	members, err := api.svc.QueryAll(rctx)
	if err != nil {
		return err
	}

	filtered := filter.Apply(members)
	res := make([]memberResponse, 0, len(filtered))
	for _, mem := range filtered {
		res = append(res, api.present(mem))
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *memberApi) summary(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	groups, err := api.groups.Load(rctx)
	if err != nil {
		return errors.Wrap(err, "loading groups")
	}
	members, err := api.svc.QueryAll(rctx)
	if err != nil {
		return err
	}

	infos := make([]member.GroupInfo, 0, len(groups))
	for _, g := range groups {
		infos = append(infos, member.GroupInfo{ID: g.ID, Name: g.Name, Color: g.DisplayColor()})
	}
	return ctx.JSON(http.StatusOK, member.Summarize(members, infos, nowFunc()))
}

func (api *memberApi) create(ctx echo.Context) error {
	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	mem, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, api.present(mem))
}

func (api *memberApi) update(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	var data member.UpdateMember
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	mem, err := api.svc.Update(ctx.Request().Context(), id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.present(mem))
}

func (api *memberApi) setActive(active bool) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		id, err := pathID(ctx)
		if err != nil {
			return err
		}
		mem, err := api.svc.SetActive(ctx.Request().Context(), id, active)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, api.present(mem))
	}
}
