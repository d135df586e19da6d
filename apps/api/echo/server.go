package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/allocation"
	"github.com/trezcool/ratiba/core/timetable"
	"github.com/trezcool/ratiba/core/workload"
)

type (
	Allocator interface {
		AllocateGrade(ctx context.Context, req allocation.Request) (allocation.Result, error)
	}

	Estimator interface {
		EstimateTeachers(ctx context.Context, req workload.Request) (workload.Estimate, error)
	}

	TimetableService interface {
		Save(ctx context.Context, req timetable.SaveRequest) (timetable.Timetable, error)
		Check(ctx context.Context, req timetable.SaveRequest) ([]timetable.Conflict, error)
		Get(ctx context.Context, classID, year string, semester int) (timetable.Timetable, error)
		TeacherSchedule(ctx context.Context, teacher, year string, semester int) ([]timetable.TeacherSlot, error)
	}

	ServerDeps struct {
		Conf           *core.Config
		Logger         core.Logger
		Validate       *validator.Validate
		Translator     ut.Translator
		Calendar       core.Calendar
		AllocationSvc  Allocator
		WorkloadSvc    Estimator
		TimetableSvc   TimetableService
		DisableReqLogs bool
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf

	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.deps.Translator)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(newJWTConfig(conf))
	admin := v1.Group("", jwt, adminMiddleware())

	registerCalendarAPI(admin, s.deps.Calendar)
	registerAllocationAPI(admin, s.deps.AllocationSvc, s.deps.Calendar)
	registerWorkloadAPI(admin, s.deps.WorkloadSvc, s.deps.Calendar)
	registerTimetableAPI(admin, s.deps.TimetableSvc, s.deps.Calendar)
}

// Start blocks serving requests; a listener failure is reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.deps.Conf.AppName+" API!")
}
