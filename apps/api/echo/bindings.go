package echoapi

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ministerio-jovenes/asistencia/core"
)

// queryInt reads an optional integer query param; 0 when absent.
func queryInt(ctx echo.Context, name string) (int, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, invalidParam(name)
	}
	return n, nil
}

// queryDate reads an optional YYYY-MM-DD query param; `def` when absent.
func queryDate(ctx echo.Context, name string, def core.Date) (core.Date, error) {
	val := strings.TrimSpace(ctx.QueryParam(name))
	if val == "" {
		return def, nil
	}
	d, err := core.ParseDate(val)
	if err != nil {
		return core.Date{}, invalidParam(name)
	}
	return d, nil
}

func queryBool(ctx echo.Context, name string) bool {
	b, _ := strconv.ParseBool(ctx.QueryParam(name))
	return b
}

func pathID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || id <= 0 {
		return 0, errHttpNotFound
	}
	return id, nil
}
