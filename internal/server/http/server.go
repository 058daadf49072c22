// Package http exposes login/refresh/logout and the serverconf node
// endpoints over HTTP using gin.
package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/semanticapi/internal/logging"
	"github.com/dmitrijs2005/semanticapi/internal/server/models"
	"github.com/gin-gonic/gin"
)

// SessionService is what the handlers need from sessions.Service.
type SessionService interface {
	Login(ctx context.Context, username string, password []byte) (string, error)
	Authenticate(ctx context.Context, token string) (string, error)
	Refresh(ctx context.Context, token string) (string, bool, error)
	Renew(ctx context.Context, token string) (string, bool, error)
	Logout(ctx context.Context, token string) error
}

// NodeService is what the handlers need from serverconf.NodeService.
type NodeService interface {
	Get(ctx context.Context, serverID int, icon string) (*models.NodeValue, error)
	Put(ctx context.Context, serverID int, icon string, body []byte) error
	Servers() []models.Server
}

type HTTPServer struct {
	address       string
	sessions      SessionService
	nodes         NodeService
	logger        logging.Logger
	allowedOrigin string
	engine        *gin.Engine
}

func NewHTTPServer(a string, l logging.Logger, ss SessionService, ns NodeService, allowedOrigin string) *HTTPServer {
	s := &HTTPServer{
		address:       a,
		sessions:      ss,
		nodes:         ns,
		logger:        l.With("module", "http_server"),
		allowedOrigin: allowedOrigin,
	}
	s.engine = s.routes()
	return s
}

// Handler returns the router, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.engine
}

func (s *HTTPServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
