package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/akarpov87/authkeeper/internal/logging"
	"github.com/gin-gonic/gin"
)

type HTTPServer struct {
	address string
	logger  logging.Logger
	handler *Handler
}

func NewHTTPServer(a string, l logging.Logger, auth AuthProvider) (*HTTPServer, error) {
	return &HTTPServer{
		address: a,
		logger:  l.With("module", "http_server"),
		handler: NewHandler(auth),
	}, nil
}

func (s *HTTPServer) Run(ctx context.Context) error {

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	s.handler.RegisterRoutes(r)

	srv := &http.Server{
		Addr:    s.address,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown error", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
