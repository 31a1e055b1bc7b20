package host

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/reoring/reqschema/internal/logging"
)

// httpService runs an http.Server as a supervised service.
type httpService struct {
	server          *http.Server
	shutdownTimeout time.Duration
}

func newHTTPService(srv *http.Server, shutdownTimeout time.Duration) *httpService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &httpService{server: srv, shutdownTimeout: shutdownTimeout}
}

// Serve implements suture.Service.
func (s *httpService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		<-errCh
		return ctx.Err()
	}
}

func (s *httpService) String() string { return "http-server" }

func newSupervisor(timeout time.Duration) *suture.Supervisor {
	return suture.New("reqschema", suture.Spec{
		EventHook: func(e suture.Event) {
			logging.Warn().Str("component", "supervisor").Str("event", e.String()).Msg("supervisor event")
		},
		Timeout: timeout,
	})
}
