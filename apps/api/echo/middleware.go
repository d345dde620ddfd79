package echoapi

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ministerio-jovenes/asistencia/core/session"
)

// readyTimeout bounds how long a guard waits for the first session check.
var readyTimeout = 10 * time.Second

const bearerScheme = "Bearer "

func waitReady(ctx echo.Context, store *session.Store) error {
	wctx, cancel := context.WithTimeout(ctx.Request().Context(), readyTimeout)
	defer cancel()
	if err := store.Wait(wctx); err != nil {
		return errNotReady
	}
	return nil
}

func bearerToken(ctx echo.Context) string {
	auth := ctx.Request().Header.Get(echo.HeaderAuthorization)
	if len(auth) > len(bearerScheme) && strings.EqualFold(auth[:len(bearerScheme)], bearerScheme) {
		return auth[len(bearerScheme):]
	}
	return ""
}

// authGuard lets the request through once the store finished loading, when the operator is
// signed in and the request carries the session's access token.
func authGuard(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := waitReady(ctx, store); err != nil {
				return err
			}
			sess := store.Session()
			token := bearerToken(ctx)
			if sess == nil || token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(sess.AccessToken)) != 1 {
				return errUnauthorized
			}
			return next(ctx)
		}
	}
}

// guestGuard only lets the request through when nobody is signed in.
func guestGuard(store *session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := waitReady(ctx, store); err != nil {
				return err
			}
			if store.IsAuthenticated() {
				return errAlreadySignedIn
			}
			return next(ctx)
		}
	}
}
