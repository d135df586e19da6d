package timetable

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("timetable not found")
)

type (
	// Repository is the Timetable directory.
	Repository interface {
		// QueryTimetables returns every class's timetable for (year, semester), class names included.
		QueryTimetables(ctx context.Context, year string, semester int) ([]Timetable, error)
		GetTimetable(ctx context.Context, classID, year string, semester int) (Timetable, error)
		// ReplaceTimetable creates the class's timetable for (year, semester) or overwrites it in full.
		ReplaceTimetable(ctx context.Context, tt Timetable) (Timetable, error)
	}

	ClassFinder interface {
		GetClass(ctx context.Context, id string) (roster.Class, error)
	}

	Service struct {
		repo    Repository
		classes ClassFinder
		locker  core.Locker
		layout  core.TimetableConfig
		logger  core.Logger
	}
)

func NewService(repo Repository, classes ClassFinder, locker core.Locker, layout core.TimetableConfig, logger core.Logger) *Service {
	return &Service{
		repo:    repo,
		classes: classes,
		locker:  locker,
		layout:  layout,
		logger:  logger,
	}
}

// prepare validates the request and resolves it into the proposed timetable.
func (svc *Service) prepare(ctx context.Context, req *SaveRequest) (Timetable, error) {
	if err := req.Validate(svc.layout); err != nil {
		return Timetable{}, err
	}

	class, err := svc.classes.GetClass(ctx, req.ClassID)
	if err != nil {
		return Timetable{}, errors.Wrap(err, "finding class")
	}
	if class.Year != req.Year {
		return Timetable{}, core.NewValidationError(nil, core.FieldError{
			Field: "year",
			Error: fmt.Sprintf("class %s belongs to school year %s", class.Name, class.Year),
		})
	}

	days := make([]DaySchedule, len(req.Days))
	copy(days, req.Days)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Day < days[j].Day })
	for i := range days {
		slots := make([]Slot, len(days[i].Slots))
		copy(slots, days[i].Slots)
		sort.SliceStable(slots, func(a, b int) bool { return slots[a].Period < slots[b].Period })
		days[i].Slots = slots
	}

	return Timetable{
		ClassID:   class.ID,
		ClassName: class.Name,
		Year:      req.Year,
		Semester:  req.Semester,
		Days:      days,
	}, nil
}

func (svc *Service) conflicts(ctx context.Context, proposed Timetable) ([]Conflict, error) {
	others, err := svc.repo.QueryTimetables(ctx, proposed.Year, proposed.Semester)
	if err != nil {
		return nil, errors.Wrap(err, "querying timetables")
	}
	return detectConflicts(proposed, others), nil
}

// Save checks the proposed timetable against every other class's timetable of the same
// (year, semester) and, only if no teacher is double-booked, replaces the stored one in full.
// On conflict it returns a *ConflictError listing all of them and stores nothing.
func (svc *Service) Save(ctx context.Context, req SaveRequest) (Timetable, error) {
	proposed, err := svc.prepare(ctx, &req)
	if err != nil {
		return Timetable{}, err
	}

	unlock, err := svc.locker.Lock(ctx, core.TimetableLockKey(proposed.Year, proposed.Semester))
	if err != nil {
		return Timetable{}, errors.Wrap(err, "acquiring timetable lock")
	}
	defer unlock()

	conflicts, err := svc.conflicts(ctx, proposed)
	if err != nil {
		return Timetable{}, err
	}
	if len(conflicts) > 0 {
		svc.logger.Info(fmt.Sprintf(
			"rejected timetable of %s (%s S%d): %d conflict(s)",
			proposed.ClassName, proposed.Year, proposed.Semester, len(conflicts),
		))
		return Timetable{}, &ConflictError{Conflicts: conflicts}
	}

	// abort before commit, never partway
	if err = ctx.Err(); err != nil {
		return Timetable{}, errors.Wrap(err, "timetable save cancelled")
	}
	tt, err := svc.repo.ReplaceTimetable(ctx, proposed)
	if err != nil {
		return Timetable{}, errors.Wrap(err, "replacing timetable")
	}

	svc.logger.Info(fmt.Sprintf("saved timetable of %s (%s S%d)", tt.ClassName, tt.Year, tt.Semester))
	return tt, nil
}

// Check reports the conflicts the proposed timetable would cause, without saving it.
// It takes no lock, so the answer is advisory: Save re-checks under the lock.
func (svc *Service) Check(ctx context.Context, req SaveRequest) ([]Conflict, error) {
	proposed, err := svc.prepare(ctx, &req)
	if err != nil {
		return nil, err
	}
	return svc.conflicts(ctx, proposed)
}

func (svc *Service) Get(ctx context.Context, classID, year string, semester int) (Timetable, error) {
	year = core.CleanString(year)
	if err := core.ValidateSchoolYear(year); err != nil {
		return Timetable{}, err
	}
	if !core.IsSemester(semester) {
		return Timetable{}, core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
	}
	return svc.repo.GetTimetable(ctx, core.CleanString(classID), year, semester)
}

// TeacherSchedule lists every slot `teacher` holds across all classes for (year, semester).
func (svc *Service) TeacherSchedule(ctx context.Context, teacher, year string, semester int) ([]TeacherSlot, error) {
	year = core.CleanString(year)
	key := teacherKey(teacher)
	if key == "" {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "teacher", Error: "this field is required"})
	}
	if err := core.ValidateSchoolYear(year); err != nil {
		return nil, err
	}
	if !core.IsSemester(semester) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "semester", Error: "semester must be 1 or 2"})
	}

	all, err := svc.repo.QueryTimetables(ctx, year, semester)
	if err != nil {
		return nil, errors.Wrap(err, "querying timetables")
	}

	slots := make([]TeacherSlot, 0)
	for _, tt := range all {
		for _, d := range tt.Days {
			for _, s := range d.Slots {
				if s.Assignee.IsTeacher() && teacherKey(s.Assignee.Name) == key {
					slots = append(slots, TeacherSlot{
						Day:       d.Day,
						Period:    s.Period,
						ClassID:   tt.ClassID,
						ClassName: tt.ClassName,
						Subject:   s.Subject,
					})
				}
			}
		}
	}
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].Day != slots[j].Day {
			return slots[i].Day < slots[j].Day
		}
		if slots[i].Period != slots[j].Period {
			return slots[i].Period < slots[j].Period
		}
		return slots[i].ClassName < slots[j].ClassName
	})
	return slots, nil
}
