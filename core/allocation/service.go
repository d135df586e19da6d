package allocation

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
)

type Service struct {
	repo     roster.Repository
	locker   core.Locker
	validate *validator.Validate
	logger   core.Logger
}

func NewService(repo roster.Repository, locker core.Locker, validate *validator.Validate, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		locker:   locker,
		validate: validate,
		logger:   logger,
	}
}

// AllocateGrade assigns every eligible, unassigned student of (year, grade) to the grade's classes.
// Runs for the same (year, grade) are serialized; the writes of one run commit together or not at all.
func (svc *Service) AllocateGrade(ctx context.Context, req Request) (Result, error) {
	if err := req.Validate(svc.validate); err != nil {
		return Result{}, err
	}

	unlock, err := svc.locker.Lock(ctx, core.AllocationLockKey(req.Year, req.Grade))
	if err != nil {
		return Result{}, errors.Wrap(err, "acquiring allocation lock")
	}
	defer unlock()

	classes, err := svc.repo.QueryClasses(ctx, req.Year, req.Grade)
	if err != nil {
		return Result{}, errors.Wrap(err, "querying classes")
	}
	if len(classes) == 0 {
		return Result{}, roster.ErrNoClassesConfigured
	}

	students, err := svc.repo.QueryCandidates(ctx, roster.CandidateFilter{
		Grade:         req.Grade,
		AdmissionYear: req.Year,
		MinScore:      req.MinScore,
	})
	if err != nil {
		return Result{}, errors.Wrap(err, "querying candidates")
	}

	assignments, placed := plan(classes, students)

	if len(assignments) > 0 {
		// abort before commit, never partway
		if err = ctx.Err(); err != nil {
			return Result{}, errors.Wrap(err, "allocation cancelled")
		}
		if err = svc.repo.AssignStudents(ctx, assignments); err != nil {
			return Result{}, errors.Wrap(err, "assigning students")
		}
	}

	res := Result{
		AssignedCount:   len(assignments),
		UnassignedCount: len(students) - len(assignments),
		Classes:         make([]ClassResult, 0, len(classes)),
	}
	for i, c := range classes {
		res.Classes = append(res.Classes, ClassResult{
			ID:        c.ID,
			Name:      c.Name,
			Assigned:  placed[i],
			Remaining: c.Remaining() - placed[i],
		})
	}

	svc.logger.Info(fmt.Sprintf(
		"allocated grade %d of %s: %d assigned, %d unassigned over %d classes",
		req.Grade, req.Year, res.AssignedCount, res.UnassignedCount, len(classes),
	))
	return res, nil
}
