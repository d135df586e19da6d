package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/allocation"
)

type allocationApi struct {
	svc Allocator
	cal core.Calendar
}

func registerAllocationAPI(g *echo.Group, svc Allocator, cal core.Calendar) {
	api := allocationApi{svc: svc, cal: cal}
	g.POST("/allocations", api.allocate)
}

func (api *allocationApi) allocate(ctx echo.Context) error {
	var req allocation.Request
	if err := ctx.Bind(&req); err != nil {
		return errors.Wrap(err, "binding to allocation.Request")
	}
	if core.CleanString(req.Year) == "" {
		req.Year = api.cal.SchoolYearOf(nowFunc())
	}

	res, err := api.svc.AllocateGrade(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "allocating grade")
	}
	return ctx.JSON(http.StatusOK, res)
}
