package roster

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

var (
	errCapacityExceeded     = errors.New("class capacity exceeded")
	errStudentAlreadyPlaced = errors.New("student already assigned to a class")

	// errors
	ErrClassNotFound        = core.NewNotFoundError("class not found")
	ErrStudentNotFound      = core.NewNotFoundError("student not found")
	ErrNoClassesConfigured  = core.NewNotFoundError("no classes configured for this year and grade")
	ErrCapacityExceeded     = core.NewTransactionError(errCapacityExceeded)
	ErrStudentAlreadyPlaced = core.NewTransactionError(errStudentAlreadyPlaced)
)

// Repository is the Class/Student directory.
// Reads are a plain view; AssignStudents is the only write and is atomic.
type Repository interface {
	// QueryClasses returns the classes of (year, grade) ordered by name.
	QueryClasses(ctx context.Context, year string, grade int) ([]Class, error)
	// CountClasses returns the number of classes in `year`, all grades included.
	CountClasses(ctx context.Context, year string) (int, error)
	GetClass(ctx context.Context, id string) (Class, error)
	// QueryCandidates returns the unassigned active students matching the filter,
	// in allocation order (see SortCandidates).
	QueryCandidates(ctx context.Context, filter CandidateFilter) ([]Student, error)
	// AssignStudents sets every student's class and bumps every touched class's size
	// in one transaction. Either all assignments are applied or none is.
	// It fails with ErrCapacityExceeded or ErrStudentAlreadyPlaced if the snapshot the
	// plan was computed from is stale.
	AssignStudents(ctx context.Context, assignments []Assignment) error
}
