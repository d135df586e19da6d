package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/timetable"
)

type timetableRow struct {
	ID        string    `db:"id"`
	ClassID   string    `db:"class_id"`
	ClassName string    `db:"class_name"`
	Year      string    `db:"year"`
	Semester  int       `db:"semester"`
	Days      []byte    `db:"days"` // jsonb
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r timetableRow) timetable() (timetable.Timetable, error) {
	tt := timetable.Timetable{
		ID:        r.ID,
		ClassID:   r.ClassID,
		ClassName: r.ClassName,
		Year:      r.Year,
		Semester:  r.Semester,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
	if err := json.Unmarshal(r.Days, &tt.Days); err != nil {
		return timetable.Timetable{}, errors.Wrapf(err, "decoding days of timetable %s", r.ID)
	}
	return tt, nil
}

const timetableSelect = `SELECT t.id, t.class_id, c.name AS class_name, t.year, t.semester, t.days, t.created_at, t.updated_at
	FROM timetables t JOIN classes c ON c.id = t.class_id`

type timetableRepository struct {
	db *sqlx.DB
}

var _ timetable.Repository = (*timetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *sqlx.DB) *timetableRepository {
	return &timetableRepository{db: db}
}

func (repo timetableRepository) QueryTimetables(ctx context.Context, year string, semester int) ([]timetable.Timetable, error) {
	var rows []timetableRow
	q := timetableSelect + ` WHERE t.year = $1 AND t.semester = $2 ORDER BY c.name, t.class_id`
	if err := repo.db.SelectContext(ctx, &rows, q, year, semester); err != nil {
		return nil, errors.Wrap(err, "selecting timetables")
	}

	tts := make([]timetable.Timetable, 0, len(rows))
	for _, r := range rows {
		tt, err := r.timetable()
		if err != nil {
			return nil, err
		}
		tts = append(tts, tt)
	}
	return tts, nil
}

func (repo timetableRepository) GetTimetable(ctx context.Context, classID, year string, semester int) (timetable.Timetable, error) {
	if _, err := uuid.Parse(classID); err != nil {
		return timetable.Timetable{}, timetable.ErrNotFound
	}

	var row timetableRow
	q := timetableSelect + ` WHERE t.class_id = $1 AND t.year = $2 AND t.semester = $3`
	if err := repo.db.GetContext(ctx, &row, q, classID, year, semester); err != nil {
		if err == sql.ErrNoRows {
			return timetable.Timetable{}, timetable.ErrNotFound
		}
		return timetable.Timetable{}, errors.Wrap(err, "selecting timetable")
	}
	return row.timetable()
}

// ReplaceTimetable upserts on (class_id, year, semester); the stored days are overwritten, never merged.
func (repo timetableRepository) ReplaceTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error) {
	days, err := json.Marshal(tt.Days)
	if err != nil {
		return timetable.Timetable{}, errors.Wrap(err, "encoding days")
	}

	var row struct {
		ID        string    `db:"id"`
		CreatedAt time.Time `db:"created_at"`
		UpdatedAt time.Time `db:"updated_at"`
	}
	now := time.Now().UTC()
	q := `INSERT INTO timetables (id, class_id, year, semester, days, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		ON CONFLICT (class_id, year, semester) DO UPDATE SET days = EXCLUDED.days, updated_at = EXCLUDED.updated_at
		RETURNING id, created_at, updated_at`
	if err = repo.db.GetContext(ctx, &row, q, uuid.New().String(), tt.ClassID, tt.Year, tt.Semester, days, now); err != nil {
		return timetable.Timetable{}, errors.Wrap(err, "upserting timetable")
	}

	tt.ID = row.ID
	tt.CreatedAt = row.CreatedAt.UTC()
	tt.UpdatedAt = row.UpdatedAt.UTC()
	return tt, nil
}
