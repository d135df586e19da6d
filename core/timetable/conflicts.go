package timetable

import "sort"

// detectConflicts finds every (day, period) where a teacher of `proposed` is already booked
// by one of the `others` timetables. The proposed class's own stored timetable is skipped.
func detectConflicts(proposed Timetable, others []Timetable) []Conflict {
	mine := proposed.teacherCells()
	if len(mine) == 0 {
		return nil
	}

	var conflicts []Conflict
	for _, other := range others {
		if other.ClassID == proposed.ClassID {
			continue
		}
		for _, d := range other.Days {
			for _, s := range d.Slots {
				if !s.Assignee.IsTeacher() {
					continue
				}
				key, ok := mine[cell{day: d.Day, period: s.Period}]
				if !ok || key != teacherKey(s.Assignee.Name) {
					continue
				}
				conflicts = append(conflicts, Conflict{
					Teacher:              s.Assignee.Name,
					Day:                  d.Day,
					Period:               s.Period,
					ConflictingClassID:   other.ClassID,
					ConflictingClassName: other.ClassName,
				})
			}
		}
	}

	sort.Slice(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if a.Day != b.Day {
			return a.Day < b.Day
		}
		if a.Period != b.Period {
			return a.Period < b.Period
		}
		if a.Teacher != b.Teacher {
			return a.Teacher < b.Teacher
		}
		return a.ConflictingClassName < b.ConflictingClassName
	})
	return conflicts
}
