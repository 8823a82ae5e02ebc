// Package server assembles the router, the huma API and the HTTP listener,
// and ties the listener to the fx lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/janisto/hello-server/internal/http/hello"
	"github.com/janisto/hello-server/internal/platform/api"
	"github.com/janisto/hello-server/internal/platform/config"
	applog "github.com/janisto/hello-server/internal/platform/logging"
	appmiddleware "github.com/janisto/hello-server/internal/platform/middleware"
	"github.com/janisto/hello-server/internal/platform/respond"
)

// maxRequestBody caps request bodies; GET / never reads one.
const maxRequestBody = 1 << 20

// Module provides the router, API and *Server, registers the routes, and
// forces the server to be constructed so its lifecycle hooks run.
// It expects config.Config and *zap.Logger to be provided elsewhere.
var Module = fx.Module("server",
	fx.Provide(
		NewRouter,
		NewAPI,
		New,
	),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(func(*Server) {}),
)

// NewRouter builds the chi router with the base middleware stack and
// problem-details handlers for unknown paths and methods. Request-scoped
// loggers derive from log.
func NewRouter(log *zap.Logger) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(
		appmiddleware.Security(),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// Trusts X-Forwarded-For / X-Real-IP; deploy behind a proxy that sets them.
		chimiddleware.RealIP,
		chimiddleware.RequestSize(maxRequestBody),
		applog.RequestLogger(log),
		applog.AccessLogger(),
		respond.Recoverer(),
	)
	return router
}

// NewAPI layers huma on top of router.
func NewAPI(router chi.Router) huma.API {
	return api.New(router)
}

// RegisterRoutes is the static route table.
func RegisterRoutes(a huma.API) {
	hello.Register(a)
}

// Server owns the http.Server and its listener.
type Server struct {
	cfg        config.Config
	log        *zap.Logger
	srv        *http.Server
	shutdowner fx.Shutdowner

	ln   net.Listener
	done chan struct{}
}

// Params are the dependencies of New.
type Params struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Config     config.Config
	Router     chi.Router
	Logger     *zap.Logger
}

// New builds a Server and appends its Start and Stop to the lifecycle.
func New(p Params) *Server {
	s := NewServer(p.Config, p.Router, p.Logger, p.Shutdowner)
	p.Lifecycle.Append(fx.Hook{
		OnStart: s.Start,
		OnStop:  s.Stop,
	})
	return s
}

// NewServer builds a Server outside of fx. shutdowner may be nil.
func NewServer(cfg config.Config, handler http.Handler, log *zap.Logger, shutdowner fx.Shutdowner) *Server {
	return &Server{
		cfg:        cfg,
		log:        log,
		shutdowner: shutdowner,
		srv: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadHeaderTimeout,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
			MaxHeaderBytes:    cfg.MaxHeaderBytes,
			ErrorLog:          zap.NewStdLog(log.Named("http")),
		},
	}
}

// Start binds the listener and serves in the background. A bind failure is
// returned, which makes fx abort startup.
func (s *Server) Start(context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.srv.Addr, err)
	}
	s.ln = ln
	s.done = make(chan struct{})
	s.log.Info("server listening", zap.String("addr", ln.Addr().String()))

	go s.serve(ln)
	return nil
}

func (s *Server) serve(ln net.Listener) {
	defer close(s.done)
	err := s.srv.Serve(ln)
	if err == nil || errors.Is(err, http.ErrServerClosed) {
		return
	}
	s.log.Error("serve failed", zap.Error(err))
	if s.shutdowner != nil {
		if shutdownErr := s.shutdowner.Shutdown(fx.ExitCode(1)); shutdownErr != nil {
			s.log.Error("request shutdown", zap.Error(shutdownErr))
		}
	}
}

// Stop drains in-flight requests until ctx or the configured shutdown
// timeout expires, then force-closes whatever is left.
func (s *Server) Stop(ctx context.Context) error {
	if s.ln == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	err := s.srv.Shutdown(ctx)
	if err != nil {
		err = multierr.Append(fmt.Errorf("graceful shutdown: %w", err), s.srv.Close())
	}
	<-s.done
	s.log.Info("server stopped")
	return err
}

// Addr reports the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}
