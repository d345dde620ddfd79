package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core/session"
)

type authApi struct {
	store *session.Store
}

func registerAuthAPI(g *echo.Group, authed, guest echo.MiddlewareFunc, deps *Deps) {
	api := authApi{store: deps.Store}

	ag := g.Group("/auth")
	ag.POST("/login", api.login, guest)
	ag.POST("/signup", api.signUp, guest)
	ag.POST("/logout", api.logout, authed)
	ag.GET("/session", api.session, authed)
}

// Handlers

func (api *authApi) login(ctx echo.Context) error {
	var data session.Credentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to Credentials")
	}
	if err := api.store.SignIn(ctx.Request().Context(), data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.store.State())
}

func (api *authApi) signUp(ctx echo.Context) error {
	var data session.SignUpCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SignUpCredentials")
	}
	usr, err := api.store.SignUp(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, usr)
}

func (api *authApi) logout(ctx echo.Context) error {
	api.store.SignOut(ctx.Request().Context())
	return ctx.NoContent(http.StatusNoContent)
}

func (api *authApi) session(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.store.State())
}
