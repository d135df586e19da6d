package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core/allocation"
	"github.com/trezcool/ratiba/core/roster"
	"github.com/trezcool/ratiba/tests"
)

func Test_allocationApi(t *testing.T) {
	app := setup(t)

	c1 := testutil.CreateClass(t, app.store, year, 10, "10A1", 40, 38)
	c2 := testutil.CreateClass(t, app.store, year, 10, "10A2", 40, 0)
	for _, s := range []struct {
		name  string
		score float64
	}{{"Amani", 95}, {"Baraka", 90}, {"Chausiku", 85}, {"Daudi", 80}, {"Eshe", 75}, {"Fumo", 20}} {
		testutil.CreateStudent(t, app.store, s.name, 10, year, s.score)
	}

	body := func(req allocation.Request) []byte { return marchallObj(t, req) }

	tests := []httpTest{
		{
			name: "invalid", method: http.MethodPost, path: "/v1/allocations", token: app.token,
			body: body(allocation.Request{Year: year, Grade: 7, MinScore: -1}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"grade":     "grade must be one of the configured grade levels",
				"min_score": "min_score must be 0 or greater",
			}),
		},
		{
			name: "malformed body", method: http.MethodPost, path: "/v1/allocations", token: app.token,
			body: []byte(`{"grade": "ten"`), wantCode: http.StatusBadRequest,
		},
		{
			name: "no classes", method: http.MethodPost, path: "/v1/allocations", token: app.token,
			body: body(allocation.Request{Year: year, Grade: 11}), wantCode: http.StatusNotFound,
			wantData: marchallObj(t, httpErr{Error: "no classes configured for this year and grade"}),
		},
		{
			name: "allocate", method: http.MethodPost, path: "/v1/allocations", token: app.token,
			body: body(allocation.Request{Year: year, Grade: 10, MinScore: 50}), wantCode: http.StatusOK,
			wantData: marchallObj(t, allocation.Result{
				AssignedCount:   5,
				UnassignedCount: 0,
				Classes: []allocation.ClassResult{
					{ID: c1.ID, Name: "10A1", Assigned: 2, Remaining: 0},
					{ID: c2.ID, Name: "10A2", Assigned: 3, Remaining: 37},
				},
			}),
		},
		{
			name: "again", method: http.MethodPost, path: "/v1/allocations", token: app.token,
			body: body(allocation.Request{Year: year, Grade: 10}), wantCode: http.StatusOK,
			wantData: marchallObj(t, allocation.Result{
				AssignedCount:   1,
				UnassignedCount: 0,
				Classes: []allocation.ClassResult{
					{ID: c1.ID, Name: "10A1", Assigned: 0, Remaining: 0},
					{ID: c2.ID, Name: "10A2", Assigned: 1, Remaining: 36},
				},
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(tt))
		})
	}

	cls, err := app.store.Roster.GetClass(context.Background(), c2.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, cls.CurrentSize)
}

type failingAllocator struct {
	err error
}

func (a failingAllocator) AllocateGrade(context.Context, allocation.Request) (allocation.Result, error) {
	return allocation.Result{}, a.err
}

func Test_allocationApi_transactionFailed(t *testing.T) {
	app := setup(t, func(deps *ServerDeps) {
		deps.AllocationSvc = failingAllocator{err: errors.Wrap(roster.ErrCapacityExceeded, "assigning students")}
	})

	tt := httpTest{
		method: http.MethodPost, path: "/v1/allocations", token: app.token,
		body: marchallObj(t, allocation.Request{Year: year, Grade: 10}), wantCode: http.StatusServiceUnavailable,
		wantData: marchallObj(t, httpErr{Error: "the operation could not be committed, nothing was applied; please retry"}),
	}
	checkCodeAndData(t, tt, app.do(tt))
}

func Test_allocationApi_serverError(t *testing.T) {
	app := setup(t, func(deps *ServerDeps) {
		deps.AllocationSvc = failingAllocator{err: errors.New("connection reset")}
	})

	tt := httpTest{
		method: http.MethodPost, path: "/v1/allocations", token: app.token,
		body: marchallObj(t, allocation.Request{Year: year, Grade: 10}), wantCode: http.StatusInternalServerError,
		wantData: marchallObj(t, httpErr{Error: http.StatusText(http.StatusInternalServerError)}),
	}
	checkCodeAndData(t, tt, app.do(tt))

	// the server keeps serving
	rec := app.do(httpTest{path: "/v1/calendar?date=2025-09-01", token: app.token})
	assert.Equal(t, http.StatusOK, rec.Code)
}
