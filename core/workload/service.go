package workload

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

type (
	// Repository is the PeriodDemand, Subject and Department directory. It is read only.
	Repository interface {
		// QueryPeriodDemands returns the demands of `year` across both semesters.
		QueryPeriodDemands(ctx context.Context, year string) ([]PeriodDemand, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)
		CountDepartments(ctx context.Context) (int, error)
	}

	// ClassCounter counts the classes of a school year (one homeroom teacher each).
	ClassCounter interface {
		CountClasses(ctx context.Context, year string) (int, error)
	}

	Service struct {
		repo     Repository
		classes  ClassCounter
		defaults core.WorkloadConfig
		logger   core.Logger
	}
)

func NewService(repo Repository, classes ClassCounter, defaults core.WorkloadConfig, logger core.Logger) *Service {
	return &Service{
		repo:     repo,
		classes:  classes,
		defaults: defaults,
		logger:   logger,
	}
}

// EstimateTeachers computes how many teachers the school needs for `year`.
// It is a read-only planning report: it takes no lock and may observe demands mid-update.
func (svc *Service) EstimateTeachers(ctx context.Context, req Request) (Estimate, error) {
	p, err := req.resolve(svc.defaults)
	if err != nil {
		return Estimate{}, err
	}

	demands, err := svc.repo.QueryPeriodDemands(ctx, p.year)
	if err != nil {
		return Estimate{}, errors.Wrap(err, "querying period demands")
	}
	subjects, err := svc.repo.QuerySubjects(ctx)
	if err != nil {
		return Estimate{}, errors.Wrap(err, "querying subjects")
	}
	depts, err := svc.repo.CountDepartments(ctx)
	if err != nil {
		return Estimate{}, errors.Wrap(err, "counting departments")
	}
	classCount, err := svc.classes.CountClasses(ctx, p.year)
	if err != nil {
		return Estimate{}, errors.Wrap(err, "counting classes")
	}

	names := make(map[string]string, len(subjects))
	for _, s := range subjects {
		names[s.ID] = s.Name
	}

	est := Estimate{
		Year:                   p.year,
		WeeklyLoad:             p.weeklyLoad,
		Subjects:               estimateSubjects(demands, names, p.weeklyLoad),
		HomeroomTeachersNeeded: classCount,
		HomeroomWeeklyLoad:     reducedLoad(p.weeklyLoad, p.homeroomReduction),
		DeptHeadsNeeded:        depts,
		DeptHeadWeeklyLoad:     reducedLoad(p.weeklyLoad, p.deptHeadReduction),
	}
	for _, s := range est.Subjects {
		est.TotalTeachersNeeded += s.TeachersNeeded
	}

	svc.logger.Info(fmt.Sprintf(
		"estimated teachers for %s: %d over %d subjects (weekly load %d)",
		p.year, est.TotalTeachersNeeded, len(est.Subjects), p.weeklyLoad,
	))
	return est, nil
}

func reducedLoad(load, reduction int) int {
	if load > reduction {
		return load - reduction
	}
	return 0
}
