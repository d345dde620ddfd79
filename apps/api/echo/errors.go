package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/ministerio-jovenes/asistencia/core"
	"github.com/ministerio-jovenes/asistencia/core/attendance"
	"github.com/ministerio-jovenes/asistencia/core/group"
	"github.com/ministerio-jovenes/asistencia/core/member"
	"github.com/ministerio-jovenes/asistencia/core/session"
	restgw "github.com/ministerio-jovenes/asistencia/storage/rest"
)

var (
	errUnauthorized     = echo.NewHTTPError(http.StatusUnauthorized, "operator not authenticated")
	errAlreadySignedIn  = echo.NewHTTPError(http.StatusConflict, "already signed in")
	errNotReady         = echo.NewHTTPError(http.StatusServiceUnavailable, "session not ready")
	errHttpNotFound     = echo.NewHTTPError(http.StatusNotFound, "not found")
	errInvalidParameter = "invalid value"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(
	store *session.Store,
	translator ut.Translator,
	logger core.Logger,
	signalShutdown func(),
) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			message = core.TranslateValidationErrors(origErr, translator)
		case *core.ValidationError:
			if msgs := origErr.Messages(); msgs != nil {
				message = msgs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *session.AuthError:
			code = origErr.Status
			if code < http.StatusBadRequest || code >= http.StatusInternalServerError {
				code = http.StatusBadRequest
			}
			message = origErr.Message
		case *restgw.Error:
			code = origErr.Status
			if code < http.StatusBadRequest {
				code = http.StatusBadGateway
			}
			message = origErr.Message
		default:
			switch origErr {
			case member.ErrNotFound, group.ErrNotFound, attendance.ErrNotInRoster:
				code = http.StatusNotFound
				message = origErr.Error()
			case attendance.ErrSaveInProgress, attendance.ErrSuperseded:
				code = http.StatusConflict
				message = origErr.Error()
			case attendance.ErrNoRoster, attendance.ErrNoRecipients:
				code = http.StatusBadRequest
				message = origErr.Error()
			case session.ErrNoSession:
				code = http.StatusUnauthorized
				message = origErr.Error()
			default: // any other error is a server error
				code = http.StatusInternalServerError
				msg := http.StatusText(http.StatusInternalServerError)
				message = msg
				logger.Error(msg, errors.Wrap(err, msg), store.User())

				// shutting down...
				if core.IsShutdown(err) {
					signalShutdown()
				}
			}
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func invalidParam(field string) error {
	return core.NewValidationError(nil, core.FieldError{Field: field, Error: errInvalidParameter})
}
