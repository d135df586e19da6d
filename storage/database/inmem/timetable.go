package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/timetable"
)

type TimetableRepository struct {
	db     *timetableTable
	roster *rosterTables
}

var _ timetable.Repository = (*TimetableRepository)(nil) // interface compliance check

func NewTimetableRepository(db *DB) *TimetableRepository {
	return &TimetableRepository{db: db.timetable, roster: db.roster}
}

func copyTimetable(tt *timetable.Timetable) timetable.Timetable {
	cp := *tt
	cp.Days = make([]timetable.DaySchedule, len(tt.Days))
	for i, d := range tt.Days {
		cp.Days[i] = timetable.DaySchedule{Day: d.Day, Slots: append([]timetable.Slot(nil), d.Slots...)}
	}
	return cp
}

// withClassName fills in the current name of the timetable's class.
func (repo *TimetableRepository) withClassName(tt timetable.Timetable) timetable.Timetable {
	repo.roster.RLock()
	defer repo.roster.RUnlock()
	if c, ok := repo.roster.classes[tt.ClassID]; ok {
		tt.ClassName = c.Name
	}
	return tt
}

func (repo *TimetableRepository) QueryTimetables(ctx context.Context, year string, semester int) ([]timetable.Timetable, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	tts := make([]timetable.Timetable, 0)
	for key, tt := range repo.db.table {
		if key.year == year && key.semester == semester {
			tts = append(tts, repo.withClassName(copyTimetable(tt)))
		}
	}
	sort.Slice(tts, func(i, j int) bool {
		if tts[i].ClassName != tts[j].ClassName {
			return tts[i].ClassName < tts[j].ClassName
		}
		return tts[i].ClassID < tts[j].ClassID
	})
	return tts, nil
}

func (repo *TimetableRepository) GetTimetable(ctx context.Context, classID, year string, semester int) (timetable.Timetable, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if tt, ok := repo.db.table[timetableKey{classID: classID, year: year, semester: semester}]; ok {
		return repo.withClassName(copyTimetable(tt)), nil
	}
	return timetable.Timetable{}, timetable.ErrNotFound
}

func (repo *TimetableRepository) ReplaceTimetable(ctx context.Context, tt timetable.Timetable) (timetable.Timetable, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := timetableKey{classID: tt.ClassID, year: tt.Year, semester: tt.Semester}
	now := time.Now().UTC()
	stored := copyTimetable(&tt)
	if old, ok := repo.db.table[key]; ok {
		stored.ID = old.ID
		stored.CreatedAt = old.CreatedAt
	} else {
		stored.ID = uuid.New().String()
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now
	repo.db.table[key] = &stored
	return repo.withClassName(copyTimetable(&stored)), nil
}
