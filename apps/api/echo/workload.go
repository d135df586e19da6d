package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/workload"
)

type workloadApi struct {
	svc Estimator
	cal core.Calendar
}

func registerWorkloadAPI(g *echo.Group, svc Estimator, cal core.Calendar) {
	api := workloadApi{svc: svc, cal: cal}
	g.GET("/workload/estimate", api.estimate)
}

func (api *workloadApi) estimate(ctx echo.Context) error {
	req := workload.Request{Year: schoolYearParam(ctx, api.cal)}

	var err error
	if req.WeeklyLoad, err = optionalIntParam(ctx, "weekly_load"); err != nil {
		return err
	}
	if req.HomeroomReduction, err = optionalIntParam(ctx, "homeroom_reduction"); err != nil {
		return err
	}
	if req.DeptHeadReduction, err = optionalIntParam(ctx, "dept_head_reduction"); err != nil {
		return err
	}

	est, err := api.svc.EstimateTeachers(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "estimating teachers")
	}
	return ctx.JSON(http.StatusOK, est)
}
