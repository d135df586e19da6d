package sqlxrepos

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core/roster"
)

type classRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Year        string    `db:"year"`
	Grade       int       `db:"grade"`
	Capacity    int       `db:"capacity"`
	CurrentSize int       `db:"current_size"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r classRow) class() roster.Class {
	return roster.Class{
		ID:          r.ID,
		Name:        r.Name,
		Year:        r.Year,
		Grade:       r.Grade,
		Capacity:    r.Capacity,
		CurrentSize: r.CurrentSize,
		CreatedAt:   r.CreatedAt.UTC(),
		UpdatedAt:   r.UpdatedAt.UTC(),
	}
}

type studentRow struct {
	ID            string      `db:"id"`
	Name          string      `db:"name"`
	Grade         int         `db:"grade"`
	AdmissionYear string      `db:"admission_year"`
	EntranceScore float64     `db:"entrance_score"`
	ClassID       null.String `db:"class_id"`
	Status        string      `db:"status"`
	CreatedAt     time.Time   `db:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at"`
}

func (r studentRow) student() roster.Student {
	return roster.Student{
		ID:            r.ID,
		Name:          r.Name,
		Grade:         r.Grade,
		AdmissionYear: r.AdmissionYear,
		EntranceScore: r.EntranceScore,
		ClassID:       r.ClassID.String,
		Status:        r.Status,
		CreatedAt:     r.CreatedAt.UTC(),
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
}

const (
	classColumns   = `id, name, year, grade, capacity, current_size, created_at, updated_at`
	studentColumns = `id, name, grade, admission_year, entrance_score, class_id, status, created_at, updated_at`
)

type rosterRepository struct {
	db *sqlx.DB
}

var _ roster.Repository = (*rosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *sqlx.DB) *rosterRepository {
	return &rosterRepository{db: db}
}

func (repo rosterRepository) QueryClasses(ctx context.Context, year string, grade int) ([]roster.Class, error) {
	var rows []classRow
	q := `SELECT ` + classColumns + ` FROM classes WHERE year = $1 AND grade = $2 ORDER BY name, id`
	if err := repo.db.SelectContext(ctx, &rows, q, year, grade); err != nil {
		return nil, errors.Wrap(err, "selecting classes")
	}
	classes := make([]roster.Class, 0, len(rows))
	for _, r := range rows {
		classes = append(classes, r.class())
	}
	return classes, nil
}

func (repo rosterRepository) CountClasses(ctx context.Context, year string) (int, error) {
	var count int
	if err := repo.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes WHERE year = $1`, year); err != nil {
		return 0, errors.Wrap(err, "counting classes")
	}
	return count, nil
}

func (repo rosterRepository) GetClass(ctx context.Context, id string) (roster.Class, error) {
	if _, err := uuid.Parse(id); err != nil {
		return roster.Class{}, roster.ErrClassNotFound
	}

	var row classRow
	if err := repo.db.GetContext(ctx, &row, `SELECT `+classColumns+` FROM classes WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return roster.Class{}, roster.ErrClassNotFound
		}
		return roster.Class{}, errors.Wrap(err, "selecting class")
	}
	cls := row.class()

	q := `SELECT student_id FROM class_students WHERE class_id = $1 ORDER BY seq`
	if err := repo.db.SelectContext(ctx, &cls.StudentIDs, q, id); err != nil {
		return roster.Class{}, errors.Wrap(err, "selecting class roster")
	}
	return cls, nil
}

func (repo rosterRepository) QueryCandidates(ctx context.Context, filter roster.CandidateFilter) ([]roster.Student, error) {
	var rows []studentRow
	q := `SELECT ` + studentColumns + ` FROM students
		WHERE grade = $1 AND admission_year = $2 AND entrance_score >= $3
			AND class_id IS NULL AND status <> $4
		ORDER BY entrance_score DESC, name, id`
	err := repo.db.SelectContext(ctx, &rows, q, filter.Grade, filter.AdmissionYear, filter.MinScore, roster.StatusInactive)
	if err != nil {
		return nil, errors.Wrap(err, "selecting candidates")
	}
	students := make([]roster.Student, 0, len(rows))
	for _, r := range rows {
		students = append(students, r.student())
	}
	return students, nil
}

// AssignStudents locks the touched classes, then applies guarded updates: a class only grows
// while it has room, and a student is only placed while unassigned.
func (repo rosterRepository) AssignStudents(ctx context.Context, assignments []roster.Assignment) error {
	if len(assignments) == 0 {
		return nil
	}

	added := make(map[string]int)
	for _, a := range assignments {
		added[a.ClassID]++
	}
	classIDs := make([]string, 0, len(added))
	for id := range added {
		classIDs = append(classIDs, id)
	}
	sort.Strings(classIDs) // fixed lock order

	return inTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var locked []string
		q := `SELECT id FROM classes WHERE id = ANY($1) ORDER BY id FOR UPDATE`
		if err := tx.SelectContext(ctx, &locked, q, pq.Array(classIDs)); err != nil {
			return errors.Wrap(err, "locking classes")
		}
		if len(locked) != len(classIDs) {
			return roster.ErrClassNotFound
		}

		now := time.Now().UTC()
		for _, id := range classIDs {
			res, err := tx.ExecContext(ctx,
				`UPDATE classes SET current_size = current_size + $1, updated_at = $2
				WHERE id = $3 AND current_size + $1 <= capacity`,
				added[id], now, id,
			)
			if err != nil {
				return errors.Wrap(err, "updating class size")
			}
			if n, err := res.RowsAffected(); err != nil {
				return errors.Wrap(err, "updating class size")
			} else if n == 0 {
				return roster.ErrCapacityExceeded
			}
		}

		for _, a := range assignments {
			res, err := tx.ExecContext(ctx,
				`UPDATE students SET class_id = $1, updated_at = $2 WHERE id = $3 AND class_id IS NULL`,
				a.ClassID, now, a.StudentID,
			)
			if err != nil {
				return errors.Wrap(err, "assigning student")
			}
			if n, err := res.RowsAffected(); err != nil {
				return errors.Wrap(err, "assigning student")
			} else if n == 0 {
				return roster.ErrStudentAlreadyPlaced
			}

			if _, err = tx.ExecContext(ctx,
				`INSERT INTO class_students (class_id, student_id) VALUES ($1, $2)`, a.ClassID, a.StudentID,
			); err != nil {
				return errors.Wrap(err, "adding student to roster")
			}
		}
		return nil
	})
}
