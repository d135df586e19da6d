package allocation

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

// Request contains the information needed to allocate a grade's intake into its classes.
type Request struct {
	Year     string  `json:"year" query:"year" validate:"required,schoolyear"`
	Grade    int     `json:"grade" query:"grade" validate:"grade"`
	MinScore float64 `json:"min_score" query:"min_score" validate:"gte=0"`
}

func (r *Request) Validate(validate *validator.Validate) error {
	r.Year = core.CleanString(r.Year)
	return validate.Struct(r)
}

type ClassResult struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Assigned  int    `json:"assigned"`
	Remaining int    `json:"remaining"`
}

type Result struct {
	AssignedCount   int           `json:"assigned_count"`
	UnassignedCount int           `json:"unassigned_count"`
	Classes         []ClassResult `json:"classes"`
}
