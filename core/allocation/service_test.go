package allocation_test

import (
	"context"
	"sync"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/allocation"
	"github.com/trezcool/ratiba/core/roster"
	locksvc "github.com/trezcool/ratiba/services/locker"
	inmemdb "github.com/trezcool/ratiba/storage/database/inmem"
	"github.com/trezcool/ratiba/tests"
)

const year = "2025-2026"

func setup(t *testing.T) (*allocation.Service, *testutil.Store) {
	conf := testutil.NewConfig()
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())

	store := testutil.NewStore()
	svc := allocation.NewService(store.Roster, locksvc.NewLocalLocker(), validate, testutil.NewLogger(conf))
	return svc, store
}

func TestService_AllocateGrade_example(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	c1 := testutil.CreateClass(t, store, year, 10, "10A1", 40, 38)
	c2 := testutil.CreateClass(t, store, year, 10, "10A2", 40, 0)
	studs := []roster.Student{
		testutil.CreateStudent(t, store, "Amani", 10, year, 95),
		testutil.CreateStudent(t, store, "Baraka", 10, year, 90),
		testutil.CreateStudent(t, store, "Chausiku", 10, year, 85),
		testutil.CreateStudent(t, store, "Daudi", 10, year, 80),
		testutil.CreateStudent(t, store, "Eshe", 10, year, 75),
	}

	res, err := svc.AllocateGrade(ctx, allocation.Request{Year: year, Grade: 10})
	require.NoError(t, err)
	assert.Equal(t, allocation.Result{
		AssignedCount:   5,
		UnassignedCount: 0,
		Classes: []allocation.ClassResult{
			{ID: c1.ID, Name: "10A1", Assigned: 2, Remaining: 0},
			{ID: c2.ID, Name: "10A2", Assigned: 3, Remaining: 37},
		},
	}, res)

	cls1, err := store.Roster.GetClass(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, cls1.CurrentSize)
	assert.Equal(t, []string{studs[0].ID, studs[2].ID}, cls1.StudentIDs)

	cls2, err := store.Roster.GetClass(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, cls2.CurrentSize)
	assert.Equal(t, []string{studs[1].ID, studs[3].ID, studs[4].ID}, cls2.StudentIDs)

	// nobody is left to place
	res, err = svc.AllocateGrade(ctx, allocation.Request{Year: year, Grade: 10})
	require.NoError(t, err)
	assert.Equal(t, 0, res.AssignedCount)
	assert.Equal(t, 0, res.UnassignedCount)
}

func TestService_AllocateGrade(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	testutil.CreateClass(t, store, year, 11, "11B1", 2, 0)
	testutil.CreateClass(t, store, year, 11, "11B2", 1, 0)
	testutil.CreateClass(t, store, "2024-2025", 11, "11B1", 40, 0) // another year
	testutil.CreateStudent(t, store, "Top", 11, year, 99)
	testutil.CreateStudent(t, store, "High", 11, year, 90)
	testutil.CreateStudent(t, store, "Mid", 11, year, 70)
	testutil.CreateStudent(t, store, "Low", 11, year, 40)
	testutil.CreateStudent(t, store, "Gone", 11, year, 100, roster.StatusInactive)
	testutil.CreateStudent(t, store, "Other grade", 12, year, 100)

	tests := []struct {
		name           string
		req            allocation.Request
		wantErr        bool
		wantNotFound   bool
		wantAssigned   int
		wantUnassigned int
	}{
		{name: "missing year", req: allocation.Request{Grade: 11}, wantErr: true},
		{name: "bad year", req: allocation.Request{Year: "25/26", Grade: 11}, wantErr: true},
		{name: "unknown grade", req: allocation.Request{Year: year, Grade: 9}, wantErr: true},
		{name: "negative score", req: allocation.Request{Year: year, Grade: 11, MinScore: -1}, wantErr: true},
		{name: "no classes", req: allocation.Request{Year: year, Grade: 12}, wantErr: true, wantNotFound: true},
		{name: "nobody above min score", req: allocation.Request{Year: year, Grade: 11, MinScore: 99.5}},
		{name: "capacity runs out", req: allocation.Request{Year: year, Grade: 11, MinScore: 50}, wantAssigned: 3, wantUnassigned: 0},
		{name: "classes full", req: allocation.Request{Year: year, Grade: 11}, wantAssigned: 0, wantUnassigned: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.AllocateGrade(ctx, tt.req)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.wantNotFound, core.IsNotFound(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAssigned, res.AssignedCount)
			assert.Equal(t, tt.wantUnassigned, res.UnassignedCount)
		})
	}
}

func TestService_AllocateGrade_concurrent(t *testing.T) {
	svc, store := setup(t)
	ctx := context.Background()

	cls := testutil.CreateClass(t, store, year, 12, "12C1", 10, 0)
	for i := 0; i < 25; i++ {
		testutil.CreateStudent(t, store, "Student", 12, year, float64(i))
	}

	var wg sync.WaitGroup
	results := make(chan allocation.Result, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.AllocateGrade(ctx, allocation.Request{Year: year, Grade: 12})
			if assert.NoError(t, err) {
				results <- res
			}
		}()
	}
	wg.Wait()
	close(results)

	var assigned int
	for res := range results {
		assigned += res.AssignedCount
	}
	assert.Equal(t, 10, assigned)

	got, err := store.Roster.GetClass(ctx, cls.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, got.CurrentSize)
	assert.Len(t, got.StudentIDs, 10)
}

func TestService_AllocateGrade_cancelled(t *testing.T) {
	svc, store := setup(t)
	testutil.CreateClass(t, store, year, 10, "10A1", 40, 0)
	stud := testutil.CreateStudent(t, store, "Amani", 10, year, 95)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := svc.AllocateGrade(ctx, allocation.Request{Year: year, Grade: 10})
	require.Error(t, err)

	got, err := store.Roster.GetStudent(context.Background(), stud.ID)
	require.NoError(t, err)
	assert.False(t, got.IsAssigned())
}

// staleRoster reports class sizes from before another writer filled the classes.
type staleRoster struct {
	*inmemdb.RosterRepository
	sizes map[string]int
}

func (r staleRoster) QueryClasses(ctx context.Context, year string, grade int) ([]roster.Class, error) {
	classes, err := r.RosterRepository.QueryClasses(ctx, year, grade)
	for i := range classes {
		if size, ok := r.sizes[classes[i].ID]; ok {
			classes[i].CurrentSize = size
		}
	}
	return classes, err
}

func TestService_AllocateGrade_staleSnapshot(t *testing.T) {
	conf := testutil.NewConfig()
	validate := validator.New()
	core.InitValidators(validate, core.NewTranslator())
	store := testutil.NewStore()
	ctx := context.Background()

	cls := testutil.CreateClass(t, store, year, 10, "10A1", 2, 1)
	studs := []roster.Student{
		testutil.CreateStudent(t, store, "Amani", 10, year, 95),
		testutil.CreateStudent(t, store, "Baraka", 10, year, 90),
	}

	repo := staleRoster{RosterRepository: store.Roster, sizes: map[string]int{cls.ID: 0}}
	svc := allocation.NewService(repo, locksvc.NewLocalLocker(), validate, testutil.NewLogger(conf))

	_, err := svc.AllocateGrade(ctx, allocation.Request{Year: year, Grade: 10})
	require.Error(t, err)
	assert.True(t, core.IsTransactionFailed(err), "got %v", err)

	got, err := store.Roster.GetClass(ctx, cls.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CurrentSize)
	assert.Empty(t, got.StudentIDs)
	for _, s := range studs {
		stud, err := store.Roster.GetStudent(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, stud.IsAssigned(), s.Name)
	}
}
