package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a Registry's metrics at GET /metrics in the Prometheus
// text exposition format. Any other path or method falls through to
// Echo's default 404 handler.
type Server struct {
	echo *echo.Echo
}

// NewServer constructs a metrics HTTP server bound to reg. It registers
// exactly one route.
func NewServer(reg *Registry) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg.reg, promhttp.HandlerOpts{})))

	return &Server{echo: e}
}

// Run starts the server on addr and blocks until ctx is cancelled, then
// shuts it down gracefully.
func (s *Server) Run(ctx context.Context, addr string, logErr func(error)) {
	go func() {
		if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			logErr(err)
		}
	}()
	<-ctx.Done()
	shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutCtx); err != nil {
		logErr(err)
	}
}
