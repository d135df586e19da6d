package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ratiba/core"
)

const dateLayout = "2006-01-02"

var nowFunc = time.Now // mockable

// schoolYearParam returns the `year` query param, or the current school year if absent.
func schoolYearParam(ctx echo.Context, cal core.Calendar) string {
	if year := core.CleanString(ctx.QueryParam("year")); year != "" {
		return year
	}
	return cal.SchoolYearOf(nowFunc())
}

// semesterParam returns the `semester` query param, or the current semester if absent.
func semesterParam(ctx echo.Context, cal core.Calendar) (int, error) {
	val := core.CleanString(ctx.QueryParam("semester"))
	if val == "" {
		return cal.SemesterOf(nowFunc()), nil
	}
	sem, err := strconv.Atoi(val)
	if err != nil || !core.IsSemester(sem) {
		return 0, core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
	}
	return sem, nil
}

// optionalIntParam returns nil when the query param `name` is absent.
func optionalIntParam(ctx echo.Context, name string) (*int, error) {
	val := core.CleanString(ctx.QueryParam(name))
	if val == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: name + " must be an integer"})
	}
	return &n, nil
}

// dateParam returns the `date` query param (YYYY-MM-DD), or today if absent.
func dateParam(ctx echo.Context) (time.Time, error) {
	val := core.CleanString(ctx.QueryParam("date"))
	if val == "" {
		return nowFunc(), nil
	}
	date, err := time.Parse(dateLayout, val)
	if err != nil {
		return time.Time{}, core.NewValidationError(nil, core.FieldError{Field: "date", Error: "date must be formatted as YYYY-MM-DD"})
	}
	return date, nil
}
