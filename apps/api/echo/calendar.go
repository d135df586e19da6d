package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ratiba/core"
)

type calendarApi struct {
	cal core.Calendar
}

func registerCalendarAPI(g *echo.Group, cal core.Calendar) {
	api := calendarApi{cal: cal}
	g.GET("/calendar", api.retrieve)
}

type calendarResponse struct {
	Date     string `json:"date"`
	Year     string `json:"year"`
	Semester int    `json:"semester"`
}

func (api *calendarApi) retrieve(ctx echo.Context) error {
	date, err := dateParam(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, calendarResponse{
		Date:     date.Format(dateLayout),
		Year:     api.cal.SchoolYearOf(date),
		Semester: api.cal.SemesterOf(date),
	})
}
