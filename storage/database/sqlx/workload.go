package sqlxrepos

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/workload"
)

type demandRow struct {
	ID       string `db:"id"`
	Year     string `db:"year"`
	Semester int    `db:"semester"`
	Grade    int    `db:"grade"`
	ClassID  string `db:"class_id"`
	Periods  []byte `db:"periods"` // jsonb
}

type subjectRow struct {
	ID     string        `db:"id"`
	Name   string        `db:"name"`
	Code   string        `db:"code"`
	Grades pq.Int64Array `db:"grades"`
}

type workloadRepository struct {
	db *sqlx.DB
}

var _ workload.Repository = (*workloadRepository)(nil) // interface compliance check

func NewWorkloadRepository(db *sqlx.DB) *workloadRepository {
	return &workloadRepository{db: db}
}

func (repo workloadRepository) QueryPeriodDemands(ctx context.Context, year string) ([]workload.PeriodDemand, error) {
	var rows []demandRow
	q := `SELECT id, year, semester, grade, class_id, periods FROM period_demands WHERE year = $1 ORDER BY id`
	if err := repo.db.SelectContext(ctx, &rows, q, year); err != nil {
		return nil, errors.Wrap(err, "selecting period demands")
	}

	demands := make([]workload.PeriodDemand, 0, len(rows))
	for _, r := range rows {
		d := workload.PeriodDemand{
			ID:       r.ID,
			Year:     r.Year,
			Semester: r.Semester,
			Grade:    r.Grade,
			ClassID:  r.ClassID,
		}
		if err := json.Unmarshal(r.Periods, &d.Periods); err != nil {
			return nil, errors.Wrapf(err, "decoding periods of demand %s", r.ID)
		}
		demands = append(demands, d)
	}
	return demands, nil
}

func (repo workloadRepository) QuerySubjects(ctx context.Context) ([]workload.Subject, error) {
	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT id, name, code, grades FROM subjects ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}

	subjects := make([]workload.Subject, 0, len(rows))
	for _, r := range rows {
		s := workload.Subject{ID: r.ID, Name: r.Name, Code: r.Code, Grades: make([]int, 0, len(r.Grades))}
		for _, g := range r.Grades {
			s.Grades = append(s.Grades, int(g))
		}
		subjects = append(subjects, s)
	}
	return subjects, nil
}

func (repo workloadRepository) CountDepartments(ctx context.Context) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM departments`); err != nil {
		return 0, errors.Wrap(err, "counting departments")
	}
	return count, nil
}
