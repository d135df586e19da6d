package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/ratiba/core/roster"
)

type RosterRepository struct {
	db *rosterTables
}

var _ roster.Repository = (*RosterRepository)(nil) // interface compliance check

func NewRosterRepository(db *DB) *RosterRepository {
	return &RosterRepository{db: db.roster}
}

func copyClass(c *roster.Class) roster.Class {
	cls := *c
	cls.StudentIDs = append([]string(nil), c.StudentIDs...)
	return cls
}

func (repo *RosterRepository) CreateClass(ctx context.Context, cls roster.Class) (roster.Class, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if cls.ID == "" {
		cls.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	cls.CreatedAt, cls.UpdatedAt = now, now
	cls.StudentIDs = append([]string(nil), cls.StudentIDs...)
	repo.db.classes[cls.ID] = &cls
	return copyClass(&cls), nil
}

func (repo *RosterRepository) CreateStudent(ctx context.Context, s roster.Student) (roster.Student, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	if s.Status == "" {
		s.Status = roster.StatusActive
	}
	now := time.Now().UTC()
	s.CreatedAt, s.UpdatedAt = now, now
	repo.db.students[s.ID] = &s
	return s, nil
}

func (repo *RosterRepository) GetStudent(ctx context.Context, id string) (roster.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return *s, nil
	}
	return roster.Student{}, roster.ErrStudentNotFound
}

func (repo *RosterRepository) QueryClasses(ctx context.Context, year string, grade int) ([]roster.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	classes := make([]roster.Class, 0)
	for _, c := range repo.db.classes {
		if c.Year == year && c.Grade == grade {
			classes = append(classes, copyClass(c))
		}
	}
	roster.SortClasses(classes)
	return classes, nil
}

func (repo *RosterRepository) CountClasses(ctx context.Context, year string) (int, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var count int
	for _, c := range repo.db.classes {
		if c.Year == year {
			count++
		}
	}
	return count, nil
}

func (repo *RosterRepository) GetClass(ctx context.Context, id string) (roster.Class, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return copyClass(c), nil
	}
	return roster.Class{}, roster.ErrClassNotFound
}

func (repo *RosterRepository) QueryCandidates(ctx context.Context, filter roster.CandidateFilter) ([]roster.Student, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	students := make([]roster.Student, 0)
	for _, s := range repo.db.students {
		if filter.Matches(*s) {
			students = append(students, *s)
		}
	}
	roster.SortCandidates(students)
	return students, nil
}

// AssignStudents checks every assignment before applying any of them.
func (repo *RosterRepository) AssignStudents(ctx context.Context, assignments []roster.Assignment) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	added := make(map[string]int)
	seen := make(map[string]struct{}, len(assignments))
	for _, a := range assignments {
		s, ok := repo.db.students[a.StudentID]
		if !ok {
			return roster.ErrStudentNotFound
		}
		if _, dup := seen[a.StudentID]; dup || s.IsAssigned() {
			return roster.ErrStudentAlreadyPlaced
		}
		seen[a.StudentID] = struct{}{}

		c, ok := repo.db.classes[a.ClassID]
		if !ok {
			return roster.ErrClassNotFound
		}
		added[a.ClassID]++
		if c.CurrentSize+added[a.ClassID] > c.Capacity {
			return roster.ErrCapacityExceeded
		}
	}

	now := time.Now().UTC()
	for _, a := range assignments {
		s := repo.db.students[a.StudentID]
		s.ClassID = a.ClassID
		s.UpdatedAt = now

		c := repo.db.classes[a.ClassID]
		c.StudentIDs = append(c.StudentIDs, a.StudentID)
		c.CurrentSize++
		c.UpdatedAt = now
	}
	return nil
}
