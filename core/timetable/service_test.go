package timetable_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/timetable"
	locksvc "github.com/trezcool/ratiba/services/locker"
	"github.com/trezcool/ratiba/tests"
)

const year = "2025-2026"

var (
	day     = testutil.Day
	teacher = testutil.TeacherSlot
	shared  = testutil.SharedSlot
)

func setup(t *testing.T) (*timetable.Service, *testutil.Store) {
	conf := testutil.NewConfig()
	store := testutil.NewStore()
	svc := timetable.NewService(store.Timetable, store.Roster, locksvc.NewLocalLocker(), conf.Timetable, testutil.NewLogger(conf))
	return svc, store
}

func TestService_Save(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	a1 := testutil.CreateClass(t, store, year, 10, "10A1", 40, 0)
	a2 := testutil.CreateClass(t, store, year, 10, "10A2", 40, 0)
	testutil.SaveTimetable(t, store, a1, core.FirstSemester,
		day(1, teacher(1, "Math", "Mr Juma"), shared(2, "Assembly"), teacher(3, "Biology", "Ms Wanjiru")),
		day(2, teacher(4, "Math", "Mr Juma")),
	)

	// same teacher, same cell, in another semester: no conflict
	testutil.SaveTimetable(t, store, a1, core.SecondSemester, day(1, teacher(5, "Math", "Mr Otieno")))

	t.Run("conflicts are all reported and nothing is stored", func(t *testing.T) {
		_, err := svc.Save(ctx, timetable.SaveRequest{
			ClassID: a2.ID, Year: year, Semester: core.FirstSemester,
			Days: []timetable.DaySchedule{
				day(1, teacher(1, "Math", "mr juma"), shared(2, "Assembly"), teacher(3, "Chemistry", "Ms Wanjiru")),
				day(2, teacher(4, "Math", "Mr Juma")),
			},
		})
		require.Error(t, err)
		cErr, ok := err.(*timetable.ConflictError)
		require.True(t, ok, "got %T", err)
		assert.Equal(t, []timetable.Conflict{
			{Teacher: "Mr Juma", Day: 1, Period: 1, ConflictingClassID: a1.ID, ConflictingClassName: "10A1"},
			{Teacher: "Ms Wanjiru", Day: 1, Period: 3, ConflictingClassID: a1.ID, ConflictingClassName: "10A1"},
			{Teacher: "Mr Juma", Day: 2, Period: 4, ConflictingClassID: a1.ID, ConflictingClassName: "10A1"},
		}, cErr.Conflicts)

		_, err = svc.Get(ctx, a2.ID, year, core.FirstSemester)
		assert.True(t, core.IsNotFound(err))
	})

	t.Run("clean timetable is saved", func(t *testing.T) {
		tt, err := svc.Save(ctx, timetable.SaveRequest{
			ClassID: a2.ID, Year: year, Semester: core.FirstSemester,
			Days: []timetable.DaySchedule{
				day(2, teacher(1, "Math", "Mr Juma")),
				day(1, shared(2, "Assembly"), teacher(1, "Chemistry", "Ms Wanjiru")),
			},
		})
		require.NoError(t, err)
		assert.NotEmpty(t, tt.ID)
		assert.Equal(t, "10A2", tt.ClassName)
		require.Len(t, tt.Days, 2)
		assert.Equal(t, 1, tt.Days[0].Day, "days are ordered")
		assert.Equal(t, 1, tt.Days[0].Slots[0].Period, "slots are ordered")

		got, err := svc.Get(ctx, a2.ID, year, core.FirstSemester)
		require.NoError(t, err)
		assert.Equal(t, tt.Days, got.Days)
	})

	t.Run("save replaces in full and is idempotent", func(t *testing.T) {
		req := timetable.SaveRequest{
			ClassID: a2.ID, Year: year, Semester: core.FirstSemester,
			Days: []timetable.DaySchedule{day(3, teacher(1, "History", "Mr Kamau"))},
		}
		first, err := svc.Save(ctx, req)
		require.NoError(t, err)
		second, err := svc.Save(ctx, req)
		require.NoError(t, err)

		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, first.Days, second.Days)
		got, err := svc.Get(ctx, a2.ID, year, core.FirstSemester)
		require.NoError(t, err)
		assert.Equal(t, []timetable.DaySchedule{day(3, teacher(1, "History", "Mr Kamau"))}, got.Days)
	})

	t.Run("invalid requests", func(t *testing.T) {
		_, err := svc.Save(ctx, timetable.SaveRequest{ClassID: "nope", Year: year, Semester: 1})
		assert.True(t, core.IsNotFound(err))

		_, err = svc.Save(ctx, timetable.SaveRequest{ClassID: a2.ID, Year: "2024-2025", Semester: 1})
		_, ok := err.(*core.ValidationError)
		assert.True(t, ok, "class of another year; got %T", err)

		_, err = svc.Save(ctx, timetable.SaveRequest{ClassID: a2.ID, Year: year, Semester: 0})
		_, ok = err.(*core.ValidationError)
		assert.True(t, ok, "got %T", err)
	})
}

func TestService_Save_concurrent(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	classes := []string{"12C1", "12C2", "12C3", "12C4", "12C5", "12C6"}
	var wg sync.WaitGroup
	var mu sync.Mutex
	var saved, rejected int
	for _, name := range classes {
		cls := testutil.CreateClass(t, store, year, 12, name, 40, 0)
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Save(ctx, timetable.SaveRequest{
				ClassID: cls.ID, Year: year, Semester: core.FirstSemester,
				Days: []timetable.DaySchedule{day(1, teacher(1, "Physics", "Dr Achieng"))},
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				saved++
			} else if _, ok := err.(*timetable.ConflictError); ok {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, saved, "a teacher is booked once per cell")
	assert.Equal(t, len(classes)-1, rejected)
}

func TestService_Check(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	a1 := testutil.CreateClass(t, store, year, 10, "10A1", 40, 0)
	a2 := testutil.CreateClass(t, store, year, 10, "10A2", 40, 0)
	testutil.SaveTimetable(t, store, a1, core.FirstSemester, day(1, teacher(1, "Math", "Mr Juma")))

	req := timetable.SaveRequest{
		ClassID: a2.ID, Year: year, Semester: core.FirstSemester,
		Days: []timetable.DaySchedule{day(1, teacher(1, "Math", "Mr Juma"))},
	}
	conflicts, err := svc.Check(ctx, req)
	require.NoError(t, err)
	assert.Len(t, conflicts, 1)

	_, err = svc.Get(ctx, a2.ID, year, core.FirstSemester)
	assert.True(t, core.IsNotFound(err), "check never saves")

	req.Days = []timetable.DaySchedule{day(1, teacher(2, "Math", "Mr Juma"))}
	conflicts, err = svc.Check(ctx, req)
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}

func TestService_TeacherSchedule(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	a1 := testutil.CreateClass(t, store, year, 10, "10A1", 40, 0)
	a2 := testutil.CreateClass(t, store, year, 10, "10A2", 40, 0)
	testutil.SaveTimetable(t, store, a1, core.FirstSemester,
		day(2, teacher(3, "Math", "Mr Juma")),
		day(1, teacher(1, "Math", "Mr Juma"), shared(2, "Assembly")),
	)
	testutil.SaveTimetable(t, store, a2, core.FirstSemester, day(1, teacher(2, "Math", "MR JUMA"), teacher(1, "Art", "Ms Njeri")))

	slots, err := svc.TeacherSchedule(ctx, "mr juma", year, core.FirstSemester)
	require.NoError(t, err)
	assert.Equal(t, []timetable.TeacherSlot{
		{Day: 1, Period: 1, ClassID: a1.ID, ClassName: "10A1", Subject: "Math"},
		{Day: 1, Period: 2, ClassID: a2.ID, ClassName: "10A2", Subject: "Math"},
		{Day: 2, Period: 3, ClassID: a1.ID, ClassName: "10A1", Subject: "Math"},
	}, slots)

	slots, err = svc.TeacherSchedule(ctx, "Nobody", year, core.FirstSemester)
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = svc.TeacherSchedule(ctx, " ", year, core.FirstSemester)
	assert.Error(t, err)
}

func TestService_Save_conflictClears(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	a := testutil.CreateClass(t, store, year, 10, "10A1", 40, 0)
	b := testutil.CreateClass(t, store, year, 10, "10A2", 40, 0)

	reqB := timetable.SaveRequest{
		ClassID: b.ID, Year: year, Semester: core.FirstSemester,
		Days: []timetable.DaySchedule{day(1, teacher(1, "Math", "Mr Juma"), teacher(2, "Physics", "Ms Akinyi"))},
	}
	_, err := svc.Save(ctx, reqB)
	require.NoError(t, err)

	reqA := timetable.SaveRequest{
		ClassID: a.ID, Year: year, Semester: core.FirstSemester,
		Days: []timetable.DaySchedule{day(1, teacher(1, "Math", "Mr Juma"))},
	}
	_, err = svc.Save(ctx, reqA)
	cErr, ok := err.(*timetable.ConflictError)
	require.True(t, ok, "got %T", err)
	assert.Equal(t, []timetable.Conflict{
		{Teacher: "Mr Juma", Day: 1, Period: 1, ConflictingClassID: b.ID, ConflictingClassName: "10A2"},
	}, cErr.Conflicts)

	// B gives up the slot
	reqB.Days = []timetable.DaySchedule{day(1, teacher(2, "Physics", "Ms Akinyi"))}
	_, err = svc.Save(ctx, reqB)
	require.NoError(t, err)

	tt, err := svc.Save(ctx, reqA)
	require.NoError(t, err)
	assert.Equal(t, []timetable.DaySchedule{day(1, teacher(1, "Math", "Mr Juma"))}, tt.Days)

	// and now B cannot take it back
	reqB.Days = []timetable.DaySchedule{day(1, teacher(1, "Math", "Mr Juma"))}
	_, err = svc.Save(ctx, reqB)
	_, ok = err.(*timetable.ConflictError)
	assert.True(t, ok, "got %T", err)
}
