package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ministerio-jovenes/asistencia/core/group"
)

type groupApi struct {
	cache *group.Cache
}

func registerGroupAPI(g *echo.Group, authed echo.MiddlewareFunc, deps *Deps) {
	api := groupApi{cache: deps.Groups}

	gg := g.Group("/groups", authed)
	gg.GET("", api.query)
	gg.POST("/reload", api.reload)
	gg.GET("/:id", api.retrieve)
}

type groupResponse struct {
	group.Group
	DisplayColor string `json:"display_color"`
}

func groupResponses(groups []group.Group) []groupResponse {
	res := make([]groupResponse, 0, len(groups))
	for _, g := range groups {
		res = append(res, groupResponse{Group: g, DisplayColor: g.DisplayColor()})
	}
	return res
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	groups, err := api.cache.Load(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, groupResponses(groups))
}

func (api *groupApi) reload(ctx echo.Context) error {
	groups, err := api.cache.Reload(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, groupResponses(groups))
}

// retrieve only looks into the cache; an unloaded cache answers 404.
func (api *groupApi) retrieve(ctx echo.Context) error {
	id, err := pathID(ctx)
	if err != nil {
		return err
	}
	grp, ok := api.cache.GetByID(id)
	if !ok {
		return group.ErrNotFound
	}
	return ctx.JSON(http.StatusOK, groupResponse{Group: grp, DisplayColor: grp.DisplayColor()})
}
