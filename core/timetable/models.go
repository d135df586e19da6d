package timetable

import (
	"fmt"
	"strings"
	"time"

	"github.com/trezcool/ratiba/core"
)

// Assignee kinds
const (
	KindNone           Kind = ""
	KindTeacher        Kind = "teacher"
	KindSharedActivity Kind = "shared_activity" // assembly, flag ceremony, school-wide PE...
)

// Kind tags who occupies a slot.
type Kind string

// Assignee is who occupies a slot: a teacher, a whole-school shared activity, or nobody.
// Shared activities recur identically across classes and never cause conflicts.
type Assignee struct {
	Kind Kind   `json:"kind"`
	Name string `json:"name,omitempty"`
}

func Teacher(name string) Assignee {
	return Assignee{Kind: KindTeacher, Name: name}
}

func SharedActivity(label string) Assignee {
	return Assignee{Kind: KindSharedActivity, Name: label}
}

// IsTeacher reports whether the slot is held by a named teacher, ie. whether it can conflict.
func (a Assignee) IsTeacher() bool {
	return a.Kind == KindTeacher && a.Name != ""
}

// teacherKey is the comparison key of a teacher name.
func teacherKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

type Slot struct {
	Period   int      `json:"period"`
	Subject  string   `json:"subject"`
	Assignee Assignee `json:"assignee"`
}

type DaySchedule struct {
	Day   int    `json:"day"`
	Slots []Slot `json:"slots"`
}

// Timetable is the weekly schedule of one class for one (year, semester).
type Timetable struct {
	ID        string        `json:"id"`
	ClassID   string        `json:"class_id"`
	ClassName string        `json:"class_name"`
	Year      string        `json:"year"`
	Semester  int           `json:"semester"`
	Days      []DaySchedule `json:"days"`
	CreatedAt time.Time     `json:"created_at"` // UTC
	UpdatedAt time.Time     `json:"updated_at"` // UTC
}

type cell struct {
	day    int
	period int
}

// teacherCells indexes the slots held by a teacher: {(day, period): teacher key}.
func (tt Timetable) teacherCells() map[cell]string {
	cells := make(map[cell]string)
	for _, d := range tt.Days {
		for _, s := range d.Slots {
			if s.Assignee.IsTeacher() {
				cells[cell{day: d.Day, period: s.Period}] = teacherKey(s.Assignee.Name)
			}
		}
	}
	return cells
}

// Conflict is a teacher booked in the same (day, period) by another class.
type Conflict struct {
	Teacher              string `json:"teacher"`
	Day                  int    `json:"day"`
	Period               int    `json:"period"`
	ConflictingClassID   string `json:"conflicting_class_id"`
	ConflictingClassName string `json:"conflicting_class_name"`
}

// ConflictError rejects a timetable save. It always carries every conflict found.
type ConflictError struct {
	Conflicts []Conflict
}

func (err ConflictError) Error() string {
	return fmt.Sprintf("timetable has %d teacher conflict(s)", len(err.Conflicts))
}

// SaveRequest is a proposed timetable for one class. It fully replaces any stored one.
type SaveRequest struct {
	ClassID  string        `json:"class_id" param:"class_id"`
	Year     string        `json:"year"`
	Semester int           `json:"semester"`
	Days     []DaySchedule `json:"days"`
}

// Validate normalizes the request and checks it against the week layout.
func (r *SaveRequest) Validate(layout core.TimetableConfig) error {
	r.ClassID = core.CleanString(r.ClassID)
	r.Year = core.CleanString(r.Year)

	var flds []core.FieldError
	if r.ClassID == "" {
		flds = append(flds, core.FieldError{Field: "class_id", Error: "this field is required"})
	}
	if !core.IsSchoolYear(r.Year) {
		flds = append(flds, core.FieldError{Field: "year", Error: "year must be a school year code like 2025 or 2025-2026"})
	}
	if !core.IsSemester(r.Semester) {
		flds = append(flds, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
	}

	seen := make(map[cell]struct{})
	seenDays := make(map[int]struct{}, len(r.Days))
	for di := range r.Days {
		day := &r.Days[di]
		if day.Day < 1 || day.Day > layout.DaysPerWeek {
			flds = append(flds, core.FieldError{
				Field: fmt.Sprintf("days[%d].day", di),
				Error: fmt.Sprintf("day must be between 1 and %d", layout.DaysPerWeek),
			})
			continue
		}
		// one slot list per day
		if _, dup := seenDays[day.Day]; dup {
			flds = append(flds, core.FieldError{
				Field: fmt.Sprintf("days[%d].day", di),
				Error: fmt.Sprintf("day %d is listed more than once", day.Day),
			})
			continue
		}
		seenDays[day.Day] = struct{}{}
		for si := range day.Slots {
			slot := &day.Slots[si]
			fld := fmt.Sprintf("days[%d].slots[%d]", di, si)

			slot.Subject = core.CleanString(slot.Subject)
			slot.Assignee.Name = core.CleanString(slot.Assignee.Name)
			if slot.Assignee.Kind == KindNone && slot.Assignee.Name != "" {
				slot.Assignee.Kind = KindTeacher
			}

			if slot.Period < 1 || slot.Period > layout.PeriodsPerDay {
				flds = append(flds, core.FieldError{
					Field: fld + ".period",
					Error: fmt.Sprintf("period must be between 1 and %d", layout.PeriodsPerDay),
				})
				continue
			}
			c := cell{day: day.Day, period: slot.Period}
			if _, dup := seen[c]; dup {
				flds = append(flds, core.FieldError{
					Field: fld + ".period",
					Error: fmt.Sprintf("day %d period %d is set more than once", c.day, c.period),
				})
				continue
			}
			seen[c] = struct{}{}

			switch slot.Assignee.Kind {
			case KindNone:
			case KindTeacher, KindSharedActivity:
				if slot.Assignee.Name == "" {
					flds = append(flds, core.FieldError{Field: fld + ".assignee.name", Error: "this field is required"})
				}
			default:
				flds = append(flds, core.FieldError{
					Field: fld + ".assignee.kind",
					Error: fmt.Sprintf("kind must be one of %q, %q", KindTeacher, KindSharedActivity),
				})
			}
		}
	}

	if flds != nil {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}

// TeacherSlot is one period a teacher holds somewhere in the school.
type TeacherSlot struct {
	Day       int    `json:"day"`
	Period    int    `json:"period"`
	ClassID   string `json:"class_id"`
	ClassName string `json:"class_name"`
	Subject   string `json:"subject"`
}
