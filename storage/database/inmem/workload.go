package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/workload"
)

type WorkloadRepository struct {
	db *workloadTables
}

var _ workload.Repository = (*WorkloadRepository)(nil) // interface compliance check

func NewWorkloadRepository(db *DB) *WorkloadRepository {
	return &WorkloadRepository{db: db.workload}
}

func copyDemand(d *workload.PeriodDemand) workload.PeriodDemand {
	dmd := *d
	dmd.Periods = make(map[string]int, len(d.Periods))
	for k, v := range d.Periods {
		dmd.Periods[k] = v
	}
	return dmd
}

func (repo *WorkloadRepository) CreatePeriodDemand(ctx context.Context, d workload.PeriodDemand) (workload.PeriodDemand, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	dmd := copyDemand(&d)
	repo.db.demands[d.ID] = &dmd
	return copyDemand(&dmd), nil
}

func (repo *WorkloadRepository) CreateSubject(ctx context.Context, s workload.Subject) (workload.Subject, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	s.Grades = append([]int(nil), s.Grades...)
	repo.db.subjects[s.ID] = &s
	return s, nil
}

func (repo *WorkloadRepository) CreateDepartment(ctx context.Context, d workload.Department) (workload.Department, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if d.ID == "" {
		d.ID = uuid.New().String()
	}
	repo.db.departments[d.ID] = &d
	return d, nil
}

func (repo *WorkloadRepository) QueryPeriodDemands(ctx context.Context, year string) ([]workload.PeriodDemand, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	demands := make([]workload.PeriodDemand, 0)
	for _, d := range repo.db.demands {
		if d.Year == year {
			demands = append(demands, copyDemand(d))
		}
	}
	sort.Slice(demands, func(i, j int) bool { return demands[i].ID < demands[j].ID })
	return demands, nil
}

func (repo *WorkloadRepository) QuerySubjects(ctx context.Context) ([]workload.Subject, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subjects := make([]workload.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subj := *s
		subj.Grades = append([]int(nil), s.Grades...)
		subjects = append(subjects, subj)
	}
	sort.Slice(subjects, func(i, j int) bool { return subjects[i].Name < subjects[j].Name })
	return subjects, nil
}

func (repo *WorkloadRepository) CountDepartments(ctx context.Context) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.departments), nil
}
