package allocation

import "github.com/trezcool/ratiba/core/roster"

// plan distributes `students` (already in allocation order) over `classes` (in load order)
// round-robin: each student goes to the next class in rotation that still has room,
// and the cursor moves past that class. Allocation stops once every class is full.
// It returns the assignments and the per-class number of students placed.
func plan(classes []roster.Class, students []roster.Student) ([]roster.Assignment, []int) {
	remaining := make([]int, len(classes))
	for i, c := range classes {
		remaining[i] = c.Remaining()
	}
	placed := make([]int, len(classes))
	assignments := make([]roster.Assignment, 0, len(students))
	if len(classes) == 0 {
		return assignments, placed
	}

	cursor := 0
	for _, s := range students {
		idx := nextWithRoom(remaining, cursor)
		if idx < 0 {
			break
		}
		assignments = append(assignments, roster.Assignment{StudentID: s.ID, ClassID: classes[idx].ID})
		remaining[idx]--
		placed[idx]++
		cursor = (idx + 1) % len(classes)
	}
	return assignments, placed
}

// nextWithRoom returns the index of the first class at or after `from` (wrapping) with room left,
// or -1 if all classes are full.
func nextWithRoom(remaining []int, from int) int {
	n := len(remaining)
	for step := 0; step < n; step++ {
		idx := (from + step) % n
		if remaining[idx] > 0 {
			return idx
		}
	}
	return -1
}
