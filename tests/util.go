package testutil

import (
	"context"
	"io/ioutil"
	"log"
	"os"
	"testing"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/timetable"
	"github.com/trezcool/ratiba/core/workload"
	logsvc "github.com/trezcool/ratiba/services/logger"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
)

// NewConfig loads the TEST configuration.
func NewConfig() *core.Config {
	if err := os.Setenv("ENV", "TEST"); err != nil {
		log.Fatal(err)
	}
	conf := core.NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.RollbarToken = ""
	return conf
}

// NewLogger returns a logger that reports nowhere.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// Store is an in-memory database with its repositories.
type Store struct {
	DB        *inmemdb.DB
	Roster    *inmemdb.RosterRepository
	Workload  *inmemdb.WorkloadRepository
	Timetable *inmemdb.TimetableRepository
}

func NewStore() *Store {
	db := inmemdb.Open()
	return &Store{
		DB:        db,
		Roster:    inmemdb.NewRosterRepository(db),
		Workload:  inmemdb.NewWorkloadRepository(db),
		Timetable: inmemdb.NewTimetableRepository(db),
	}
}

func CreateClass(t *testing.T, s *Store, year string, grade int, name string, capacity, size int) roster.Class {
	cls, err := s.Roster.CreateClass(context.Background(), roster.Class{
		Name:        name,
		Year:        year,
		Grade:       grade,
		Capacity:    capacity,
		CurrentSize: size,
	})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cls
}

func CreateStudent(t *testing.T, s *Store, name string, grade int, admissionYear string, score float64, status ...string) roster.Student {
	stud := roster.Student{
		Name:          name,
		Grade:         grade,
		AdmissionYear: admissionYear,
		EntranceScore: score,
		Status:        roster.StatusActive,
	}
	if len(status) > 0 {
		stud.Status = status[0]
	}
	stud, err := s.Roster.CreateStudent(context.Background(), stud)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return stud
}

func CreateSubject(t *testing.T, s *Store, name, code string, grades ...int) workload.Subject {
	subj, err := s.Workload.CreateSubject(context.Background(), workload.Subject{Name: name, Code: code, Grades: grades})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateDepartment(t *testing.T, s *Store, name string) workload.Department {
	dept, err := s.Workload.CreateDepartment(context.Background(), workload.Department{Name: name})
	if err != nil {
		t.Fatalf("CreateDepartment() failed: %v", err)
	}
	return dept
}

func CreatePeriodDemand(t *testing.T, s *Store, cls roster.Class, semester int, periods map[string]int) workload.PeriodDemand {
	dmd, err := s.Workload.CreatePeriodDemand(context.Background(), workload.PeriodDemand{
		Year:     cls.Year,
		Semester: semester,
		Grade:    cls.Grade,
		ClassID:  cls.ID,
		Periods:  periods,
	})
	if err != nil {
		t.Fatalf("CreatePeriodDemand() failed: %v", err)
	}
	return dmd
}

// SaveTimetable stores a timetable directly, bypassing conflict detection.
func SaveTimetable(t *testing.T, s *Store, cls roster.Class, semester int, days ...timetable.DaySchedule) timetable.Timetable {
	tt, err := s.Timetable.ReplaceTimetable(context.Background(), timetable.Timetable{
		ClassID:   cls.ID,
		ClassName: cls.Name,
		Year:      cls.Year,
		Semester:  semester,
		Days:      days,
	})
	if err != nil {
		t.Fatalf("SaveTimetable() failed: %v", err)
	}
	return tt
}

// Day builds the schedule of one day from its slots.
func Day(day int, slots ...timetable.Slot) timetable.DaySchedule {
	return timetable.DaySchedule{Day: day, Slots: slots}
}

// TeacherSlot builds a slot held by `teacher`.
func TeacherSlot(period int, subject, teacher string) timetable.Slot {
	return timetable.Slot{Period: period, Subject: subject, Assignee: timetable.Teacher(teacher)}
}

// SharedSlot builds a slot held by a school-wide activity.
func SharedSlot(period int, label string) timetable.Slot {
	return timetable.Slot{Period: period, Subject: label, Assignee: timetable.SharedActivity(label)}
}
