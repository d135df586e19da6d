package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
)

type timetableApi struct {
	svc TimetableService
	cal core.Calendar
}

func registerTimetableAPI(g *echo.Group, svc TimetableService, cal core.Calendar) {
	api := timetableApi{svc: svc, cal: cal}

	tg := g.Group("/timetables/:class_id")
	tg.GET("", api.retrieve)
	tg.PUT("", api.save)
	tg.POST("/check", api.check)

	g.GET("/teachers/:name/timetable", api.teacherSchedule)
}

// bindSaveRequest binds the proposed timetable, defaulting year and semester from the calendar.
func (api *timetableApi) bindSaveRequest(ctx echo.Context) (timetable.SaveRequest, error) {
	var req timetable.SaveRequest
	if err := ctx.Bind(&req); err != nil {
		return req, errors.Wrap(err, "binding to timetable.SaveRequest")
	}
	req.ClassID = ctx.Param("class_id")
	if core.CleanString(req.Year) == "" {
		req.Year = api.cal.SchoolYearOf(nowFunc())
	}
	if req.Semester == 0 {
		req.Semester = api.cal.SemesterOf(nowFunc())
	}
	return req, nil
}

func (api *timetableApi) save(ctx echo.Context) error {
	req, err := api.bindSaveRequest(ctx)
	if err != nil {
		return err
	}
	tt, err := api.svc.Save(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "saving timetable")
	}
	return ctx.JSON(http.StatusOK, tt)
}

func (api *timetableApi) check(ctx echo.Context) error {
	req, err := api.bindSaveRequest(ctx)
	if err != nil {
		return err
	}
	conflicts, err := api.svc.Check(ctx.Request().Context(), req)
	if err != nil {
		return errors.Wrap(err, "checking timetable")
	}
	if conflicts == nil {
		conflicts = []timetable.Conflict{}
	}
	return ctx.JSON(http.StatusOK, echo.Map{"conflicts": conflicts})
}

func (api *timetableApi) retrieve(ctx echo.Context) error {
	sem, err := semesterParam(ctx, api.cal)
	if err != nil {
		return err
	}
	tt, err := api.svc.Get(ctx.Request().Context(), ctx.Param("class_id"), schoolYearParam(ctx, api.cal), sem)
	if err != nil {
		return errors.Wrap(err, "getting timetable")
	}
	return ctx.JSON(http.StatusOK, tt)
}

type teacherScheduleResponse struct {
	Teacher  string                  `json:"teacher"`
	Year     string                  `json:"year"`
	Semester int                     `json:"semester"`
	Slots    []timetable.TeacherSlot `json:"slots"`
}

func (api *timetableApi) teacherSchedule(ctx echo.Context) error {
	sem, err := semesterParam(ctx, api.cal)
	if err != nil {
		return err
	}
	name := ctx.Param("name")
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	res := teacherScheduleResponse{
		Teacher:  name,
		Year:     schoolYearParam(ctx, api.cal),
		Semester: sem,
	}
	if res.Slots, err = api.svc.TeacherSchedule(ctx.Request().Context(), res.Teacher, res.Year, res.Semester); err != nil {
		return errors.Wrap(err, "getting teacher schedule")
	}
	return ctx.JSON(http.StatusOK, res)
}
