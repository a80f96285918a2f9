package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/tradelore/tradelore/core"
	"github.com/tradelore/tradelore/core/activity"
	"github.com/tradelore/tradelore/core/audit"
	"github.com/tradelore/tradelore/core/notification"
	"github.com/tradelore/tradelore/core/resource"
	"github.com/tradelore/tradelore/core/user"
)

type (
	Options struct {
		Address         string
		DisableReqLogs  bool
		Logger          core.Logger
		FileStore       core.FileStore
		UserSvc         *user.Service
		ResourceSvc     *resource.Service
		ActivitySvc     *activity.Service
		NotificationSvc *notification.Service
		AuditSvc        *audit.Service
		SignalShutdown  func()
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
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

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts.UserSvc)
	registerResourceAPI(v1, jwt, s.opts.ResourceSvc, s.opts.ActivitySvc)
	registerCalcAPI(v1)
	registerNotificationAPI(v1, jwt, s.opts.NotificationSvc)
	registerAdminAPI(v1, jwt, s.opts)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Tradelore API!")
}
