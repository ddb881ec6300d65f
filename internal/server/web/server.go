// Package web is the HTTP glue in front of the identity layer. It carries no
// business rules of its own: every request resolves an acting identity via
// the manager and delegates to manager operations.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/filehub/internal/logging"
	"github.com/dmitrijs2005/filehub/internal/server/identity"
)

type Server struct {
	address string
	manager *identity.Manager
	logger  logging.Logger
	engine  *gin.Engine
}

func NewServer(address string, m *identity.Manager, l logging.Logger) *Server {
	s := &Server{
		address: address,
		manager: m,
		logger:  l.With("module", "web"),
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), s.resolveIdentity())

	api := r.Group("/api")
	{
		api.POST("/login", s.login)
		api.POST("/logout", s.logout)
		api.GET("/me", s.me)
		api.GET("/names/:id", s.displayName)
		api.GET("/users", s.listUsers)
		api.POST("/users", s.createUser)
		api.POST("/groups", s.createGroup)
	}

	s.engine = r
	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.address, Handler: s.engine}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
