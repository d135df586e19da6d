package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/ratiba/apps/api/echo"
	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/allocation"
	"github.com/trezcool/ratiba/core/timetable"
	"github.com/trezcool/ratiba/core/workload"
	"github.com/trezcool/ratiba/services/locker"
	"github.com/trezcool/ratiba/tests"
)

const year = "2025-2026"

var admin = core.Actor{ID: "8b0c3f0e-4d7e-4c36-9a55-1f1d4e9a2b10", Username: "admin", Email: "admin@ratiba.test"}

type testApp struct {
	conf   *core.Config
	server *Server
	store  *testutil.Store
	token  string
}

// setup builds the app over an in-memory store; opts may swap any dependency before the server is built.
func setup(t *testing.T, opts ...func(deps *ServerDeps)) testApp {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(conf)
	store := testutil.NewStore()
	locker := locksvc.NewLocalLocker()

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	deps := ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Validate:       validate,
		Translator:     translator,
		Calendar:       core.NewCalendar(conf.Calendar),
		AllocationSvc:  allocation.NewService(store.Roster, locker, validate, logger),
		WorkloadSvc:    workload.NewService(store.Workload, store.Roster, conf.Workload, logger),
		TimetableSvc:   timetable.NewService(store.Timetable, store.Roster, locker, conf.Timetable, logger),
		DisableReqLogs: true,
	}
	for _, opt := range opts {
		opt(&deps)
	}
	server := NewServer(deps)
	return testApp{
		conf:   conf,
		server: server,
		store:  store,
		token:  getToken(t, conf, GetAdminClaims(conf, admin)),
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func (app testApp) do(tt httpTest) *httptest.ResponseRecorder {
	method := tt.method
	if method == "" {
		method = http.MethodGet
	}
	req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
	app.server.ServeHTTP(rec, req)
	return rec
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, conf *core.Config, claims *Claims) string {
	token, err := GenerateToken(conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	assert.Equal(t, tt.wantCode, rec.Code, "code")
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
