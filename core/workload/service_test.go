package workload_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/workload"
	"github.com/trezcool/ratiba/tests"
)

const year = "2025-2026"

func intPtr(i int) *int { return &i }

func TestService_EstimateTeachers(t *testing.T) {
	conf := testutil.NewConfig()
	store := testutil.NewStore()
	svc := workload.NewService(store.Workload, store.Roster, conf.Workload, testutil.NewLogger(conf))
	ctx := context.Background()

	math := testutil.CreateSubject(t, store, "Math", "MATH", 10)
	bio := testutil.CreateSubject(t, store, "Biology", "BIO", 10)
	testutil.CreateDepartment(t, store, "Sciences")
	testutil.CreateDepartment(t, store, "Languages")
	for _, name := range []string{"10A1", "10A2", "10A3", "10A4", "10A5", "10A6", "10A7", "10A8", "10A9", "10A10"} {
		cls := testutil.CreateClass(t, store, year, 10, name, 40, 0)
		testutil.CreatePeriodDemand(t, store, cls, core.FirstSemester, map[string]int{math.ID: 6, bio.ID: 0})
	}
	bioClass := testutil.CreateClass(t, store, year, 11, "11B1", 40, 0)
	testutil.CreatePeriodDemand(t, store, bioClass, core.SecondSemester, map[string]int{bio.ID: 3})
	testutil.CreateClass(t, store, "2024-2025", 10, "10A1", 40, 0) // another year

	est, err := svc.EstimateTeachers(ctx, workload.Request{Year: year})
	require.NoError(t, err)

	assert.Equal(t, year, est.Year)
	assert.Equal(t, 17, est.WeeklyLoad)
	require.Len(t, est.Subjects, 2)
	assert.Equal(t, "Biology", est.Subjects[0].SubjectName)
	assert.Equal(t, 1, est.Subjects[0].TeachersNeeded)
	assert.Equal(t, "Math", est.Subjects[1].SubjectName)
	assert.Equal(t, 5, est.Subjects[1].TeachersNeeded)
	assert.Equal(t, 6, est.TotalTeachersNeeded)
	assert.Equal(t, 11, est.HomeroomTeachersNeeded)
	assert.Equal(t, 14, est.HomeroomWeeklyLoad)
	assert.Equal(t, 2, est.DeptHeadsNeeded)
	assert.Equal(t, 14, est.DeptHeadWeeklyLoad)

	// a lighter weekly load needs more teachers
	est, err = svc.EstimateTeachers(ctx, workload.Request{Year: year, WeeklyLoad: intPtr(12), HomeroomReduction: intPtr(0), DeptHeadReduction: intPtr(20)})
	require.NoError(t, err)
	assert.Equal(t, 12, est.WeeklyLoad)
	assert.Equal(t, 5, est.Subjects[1].TeachersByLoad)
	assert.Equal(t, 12, est.HomeroomWeeklyLoad)
	assert.Equal(t, 0, est.DeptHeadWeeklyLoad, "never negative")

	// a year without data
	est, err = svc.EstimateTeachers(ctx, workload.Request{Year: "2030-2031"})
	require.NoError(t, err)
	assert.Empty(t, est.Subjects)
	assert.Equal(t, 0, est.TotalTeachersNeeded)
	assert.Equal(t, 0, est.HomeroomTeachersNeeded)
}

func TestService_EstimateTeachers_invalid(t *testing.T) {
	conf := testutil.NewConfig()
	store := testutil.NewStore()
	svc := workload.NewService(store.Workload, store.Roster, conf.Workload, testutil.NewLogger(conf))

	tests := []struct {
		name string
		req  workload.Request
	}{
		{name: "missing year", req: workload.Request{}},
		{name: "bad year", req: workload.Request{Year: "next year"}},
		{name: "zero load", req: workload.Request{Year: year, WeeklyLoad: intPtr(0)}},
		{name: "negative load", req: workload.Request{Year: year, WeeklyLoad: intPtr(-3)}},
		{name: "negative homeroom reduction", req: workload.Request{Year: year, HomeroomReduction: intPtr(-1)}},
		{name: "negative dept head reduction", req: workload.Request{Year: year, DeptHeadReduction: intPtr(-1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.EstimateTeachers(context.Background(), tt.req)
			require.Error(t, err)
			_, ok := err.(*core.ValidationError)
			assert.True(t, ok, "got %T", err)
		})
	}
}
