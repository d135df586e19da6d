package roster

import (
	"sort"
	"time"
)

// Student statuses
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Class struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Year        string    `json:"year"`
	Grade       int       `json:"grade"`
	Capacity    int       `json:"capacity"`
	CurrentSize int       `json:"current_size"`
	StudentIDs  []string  `json:"student_ids,omitempty"` // ordered roster
	CreatedAt   time.Time `json:"created_at"`            // UTC
	UpdatedAt   time.Time `json:"updated_at"`            // UTC
}

// Remaining returns how many more students the class can take.
func (c Class) Remaining() int {
	if rem := c.Capacity - c.CurrentSize; rem > 0 {
		return rem
	}
	return 0
}

type Student struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Grade         int       `json:"grade"`
	AdmissionYear string    `json:"admission_year"`
	EntranceScore float64   `json:"entrance_score"`
	ClassID       string    `json:"class_id"` // empty: unassigned
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

func (s Student) IsAssigned() bool {
	return s.ClassID != ""
}

// Assignment places one student in one class.
type Assignment struct {
	StudentID string
	ClassID   string
}

// CandidateFilter selects the students eligible for allocation.
type CandidateFilter struct {
	Grade         int
	AdmissionYear string
	MinScore      float64
}

// Matches reports whether `s` is an unassigned, active candidate for the filter.
func (f CandidateFilter) Matches(s Student) bool {
	return s.Grade == f.Grade &&
		s.AdmissionYear == f.AdmissionYear &&
		s.EntranceScore >= f.MinScore &&
		!s.IsAssigned() &&
		s.Status != StatusInactive
}

// SortCandidates orders students by entrance score descending, then name, then ID,
// so that two runs over the same snapshot always see the same order.
func SortCandidates(students []Student) {
	sort.SliceStable(students, func(i, j int) bool {
		a, b := students[i], students[j]
		if a.EntranceScore != b.EntranceScore {
			return a.EntranceScore > b.EntranceScore
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// SortClasses orders classes the way they are loaded: by name, then ID.
func SortClasses(classes []Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].Name != classes[j].Name {
			return classes[i].Name < classes[j].Name
		}
		return classes[i].ID < classes[j].ID
	})
}
