package inmemdb

import (
	"sync"

	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/core/timetable"
	"github.com/trezcool/ratiba/core/workload"
)

// The tables hold pointers to unshared copies: every read copies out and every write copies in.
type (
	DB struct {
		roster    *rosterTables
		workload  *workloadTables
		timetable *timetableTable
	}

	// classes and students share one lock so an allocation is applied atomically.
	rosterTables struct {
		sync.RWMutex
		classes  map[string]*roster.Class
		students map[string]*roster.Student
	}

	workloadTables struct {
		sync.RWMutex
		demands     map[string]*workload.PeriodDemand
		subjects    map[string]*workload.Subject
		departments map[string]*workload.Department
	}

	timetableTable struct {
		sync.RWMutex
		table map[timetableKey]*timetable.Timetable
	}

	timetableKey struct {
		classID  string
		year     string
		semester int
	}
)

func Open() *DB {
	return &DB{
		roster: &rosterTables{
			classes:  make(map[string]*roster.Class),
			students: make(map[string]*roster.Student),
		},
		workload: &workloadTables{
			demands:     make(map[string]*workload.PeriodDemand),
			subjects:    make(map[string]*workload.Subject),
			departments: make(map[string]*workload.Department),
		},
		timetable: &timetableTable{table: make(map[timetableKey]*timetable.Timetable)},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.roster.Lock()
	db.roster.classes = make(map[string]*roster.Class)
	db.roster.students = make(map[string]*roster.Student)
	db.roster.Unlock()

	db.workload.Lock()
	db.workload.demands = make(map[string]*workload.PeriodDemand)
	db.workload.subjects = make(map[string]*workload.Subject)
	db.workload.departments = make(map[string]*workload.Department)
	db.workload.Unlock()

	db.timetable.Lock()
	db.timetable.table = make(map[timetableKey]*timetable.Timetable)
	db.timetable.Unlock()
}
