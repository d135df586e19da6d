package workload

import (
	"github.com/trezcool/ratiba/core"
)

// PeriodDemand is the number of periods per week one class needs for each subject or
// activity during one semester.
type PeriodDemand struct {
	ID       string         `json:"id"`
	Year     string         `json:"year"`
	Semester int            `json:"semester"`
	Grade    int            `json:"grade"`
	ClassID  string         `json:"class_id"`
	Periods  map[string]int `json:"periods"` // {subject|activity ID: periods per week}
}

type Subject struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Code   string `json:"code"`
	Grades []int  `json:"grades"`
}

type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Request holds the parameters of a teacher estimate. Nil values fall back to the configured defaults.
type Request struct {
	Year              string
	WeeklyLoad        *int
	HomeroomReduction *int
	DeptHeadReduction *int
}

// params is a Request with defaults applied.
type params struct {
	year              string
	weeklyLoad        int
	homeroomReduction int
	deptHeadReduction int
}

func (r Request) resolve(defaults core.WorkloadConfig) (params, error) {
	p := params{
		year:              core.CleanString(r.Year),
		weeklyLoad:        defaults.WeeklyLoad,
		homeroomReduction: defaults.HomeroomReduction,
		deptHeadReduction: defaults.DeptHeadReduction,
	}
	if r.WeeklyLoad != nil {
		p.weeklyLoad = *r.WeeklyLoad
	}
	if r.HomeroomReduction != nil {
		p.homeroomReduction = *r.HomeroomReduction
	}
	if r.DeptHeadReduction != nil {
		p.deptHeadReduction = *r.DeptHeadReduction
	}

	if err := core.ValidateSchoolYear(p.year); err != nil {
		return params{}, err
	}
	var flds []core.FieldError
	if p.weeklyLoad <= 0 {
		flds = append(flds, core.FieldError{Field: "weekly_load", Error: "weekly_load must be greater than 0"})
	}
	if p.homeroomReduction < 0 {
		flds = append(flds, core.FieldError{Field: "homeroom_reduction", Error: "homeroom_reduction cannot be negative"})
	}
	if p.deptHeadReduction < 0 {
		flds = append(flds, core.FieldError{Field: "dept_head_reduction", Error: "dept_head_reduction cannot be negative"})
	}
	if flds != nil {
		return params{}, core.NewValidationError(nil, flds...)
	}
	return p, nil
}

type SubjectEstimate struct {
	SubjectID              string  `json:"subject_id"`
	SubjectName            string  `json:"subject_name"`
	TotalPeriods           int     `json:"total_periods"`
	PeriodsPerClassPerWeek float64 `json:"periods_per_class_per_week"`
	ClassCount             int     `json:"class_count"`
	MaxClassesPerTeacher   int     `json:"max_classes_per_teacher"`
	TeachersByLoad         int     `json:"teachers_by_load"`
	TeachersByClasses      int     `json:"teachers_by_classes"`
	TeachersNeeded         int     `json:"teachers_needed"`
}

type Estimate struct {
	Year                   string            `json:"year"`
	WeeklyLoad             int               `json:"weekly_load"`
	TotalTeachersNeeded    int               `json:"total_teachers_needed"`
	Subjects               []SubjectEstimate `json:"subjects"`
	HomeroomTeachersNeeded int               `json:"homeroom_teachers_needed"`
	HomeroomWeeklyLoad     int               `json:"homeroom_weekly_load"`
	DeptHeadsNeeded        int               `json:"dept_heads_needed"`
	DeptHeadWeeklyLoad     int               `json:"dept_head_weekly_load"`
}
