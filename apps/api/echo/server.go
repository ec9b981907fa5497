package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/girgism/khedma/core"
	"github.com/girgism/khedma/core/attendance"
	"github.com/girgism/khedma/core/notification"
	"github.com/girgism/khedma/core/school"
	"github.com/girgism/khedma/core/user"
)

type (
	Options struct {
		Address        string
		DisableReqLogs bool

		Logger          core.Logger
		UserSvc         user.Service
		SchoolSvc       *school.Service
		AttendanceSvc   *attendance.Service
		NotificationSvc *notification.Service

		// Revision reports the persistence store's change counter; scoped
		// snapshot responses are memoized on it. May be nil.
		Revision func() uint64
	}

	Server interface {
		http.Handler
		Start() error
		Stop(context.Context) error
	}

	server struct {
		opts     *Options
		app      *echo.Echo
		shutdown chan struct{}
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:     opts,
		app:      echo.New(),
		shutdown: make(chan struct{}),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.signalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerSchoolAPI(v1, jwt, s.opts.SchoolSvc, s.opts.UserSvc, s.opts.Revision)
	registerAttendanceAPI(v1, jwt, s.opts.AttendanceSvc, s.opts.SchoolSvc, s.opts.UserSvc)
	registerNotificationAPI(v1, jwt, s.opts.NotificationSvc, s.opts.UserSvc)
}

// signalShutdown requests a graceful stop; Start unblocks and the caller is
// expected to Stop the server.
func (s *server) signalShutdown() {
	select {
	case <-s.shutdown:
	default:
		close(s.shutdown)
	}
}

// Start serves until a fatal server error or an integrity shutdown signal.
func (s *server) Start() error {
	errc := make(chan error, 1)
	go func() { errc <- s.app.Start(s.opts.Address) }()

	select {
	case err := <-errc:
		return err
	case <-s.shutdown:
		return core.NewShutdownError("integrity issue detected")
	}
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Khedma API!")
}
