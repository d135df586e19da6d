package workload

import (
	"math"
	"sort"
)

// bounds of how many classes a single teacher may take for one subject
const (
	minClassesPerTeacher = 2
	maxClassesPerTeacher = 8
)

type subjectTally struct {
	totalPeriods int
	declarations int
	classes      map[string]struct{}
}

// estimateSubjects turns the year's period demands into a per-subject teacher requirement.
// Only non-zero declarations count towards a subject.
func estimateSubjects(demands []PeriodDemand, names map[string]string, weeklyLoad int) []SubjectEstimate {
	tallies := make(map[string]*subjectTally)
	for _, d := range demands {
		for subjID, periods := range d.Periods {
			if periods <= 0 {
				continue
			}
			t, ok := tallies[subjID]
			if !ok {
				t = &subjectTally{classes: make(map[string]struct{})}
				tallies[subjID] = t
			}
			t.totalPeriods += periods
			t.declarations++
			t.classes[d.ClassID] = struct{}{}
		}
	}

	estimates := make([]SubjectEstimate, 0, len(tallies))
	for subjID, t := range tallies {
		name, ok := names[subjID]
		if !ok || name == "" {
			name = subjID
		}
		est := SubjectEstimate{
			SubjectID:              subjID,
			SubjectName:            name,
			TotalPeriods:           t.totalPeriods,
			PeriodsPerClassPerWeek: roundTenth(float64(t.totalPeriods) / float64(t.declarations)),
			ClassCount:             len(t.classes),
		}
		est.MaxClassesPerTeacher = classesPerTeacher(weeklyLoad, est.PeriodsPerClassPerWeek)
		est.TeachersByLoad = ceilDiv(est.TotalPeriods, weeklyLoad)
		est.TeachersByClasses = ceilDiv(est.ClassCount, est.MaxClassesPerTeacher)
		est.TeachersNeeded = est.TeachersByLoad
		if est.TeachersByClasses > est.TeachersNeeded {
			est.TeachersNeeded = est.TeachersByClasses
		}
		estimates = append(estimates, est)
	}

	sort.Slice(estimates, func(i, j int) bool {
		if estimates[i].SubjectName != estimates[j].SubjectName {
			return estimates[i].SubjectName < estimates[j].SubjectName
		}
		return estimates[i].SubjectID < estimates[j].SubjectID
	})
	return estimates
}

// classesPerTeacher is floor(weeklyLoad / periodsPerClass) clamped to [2, 8].
func classesPerTeacher(weeklyLoad int, periodsPerClass float64) int {
	if periodsPerClass <= 0 {
		return maxClassesPerTeacher
	}
	n := int(math.Floor(float64(weeklyLoad) / periodsPerClass))
	if n < minClassesPerTeacher {
		return minClassesPerTeacher
	}
	if n > maxClassesPerTeacher {
		return maxClassesPerTeacher
	}
	return n
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func roundTenth(f float64) float64 {
	return math.Round(f*10) / 10
}
