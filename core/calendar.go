package core

import (
	"fmt"
	"time"
)

// Semesters
const (
	FirstSemester  = 1
	SecondSemester = 2
)

// Grades taking part in allocation and scheduling.
var Grades = []int{10, 11, 12}

func IsGrade(g int) bool {
	for _, grade := range Grades {
		if g == grade {
			return true
		}
	}
	return false
}

func IsSemester(s int) bool {
	return s == FirstSemester || s == SecondSemester
}

// Calendar is the single definition of "which school year / semester is a date in".
type Calendar struct {
	yearStart      time.Month
	secondSemester time.Month
}

func NewCalendar(conf CalendarConfig) Calendar {
	cal := Calendar{yearStart: conf.YearStartMonth, secondSemester: conf.SecondSemesterMonth}
	if cal.yearStart < time.January || cal.yearStart > time.December {
		cal.yearStart = time.August
	}
	if cal.secondSemester < time.January || cal.secondSemester > time.December {
		cal.secondSemester = time.January
	}
	return cal
}

// monthsIntoYear returns how many months `m` is past the start of the school year (0-11).
func (cal Calendar) monthsIntoYear(m time.Month) int {
	return (int(m) - int(cal.yearStart) + 12) % 12
}

// SchoolYearOf returns the school year code (eg. "2025-2026") that `t` falls in.
func (cal Calendar) SchoolYearOf(t time.Time) string {
	start := t.Year()
	if t.Month() < cal.yearStart {
		start--
	}
	return fmt.Sprintf("%d-%d", start, start+1)
}

// SemesterOf returns the semester that `t` falls in.
func (cal Calendar) SemesterOf(t time.Time) int {
	if cal.monthsIntoYear(t.Month()) >= cal.monthsIntoYear(cal.secondSemester) && cal.secondSemester != cal.yearStart {
		return SecondSemester
	}
	return FirstSemester
}
