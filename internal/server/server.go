// Package server hosts the gateway HTTP listener: health and status
// endpoints plus the webhook registry mount for webhook-mode accounts.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/openclaw/openclaw-feishu/internal/plugin"
)

// StatusSource reports the current per-account snapshots.
type StatusSource func() []plugin.AccountSnapshot

type Server struct {
	echo *echo.Echo
	addr string
}

// NewServer builds the gateway listener. Webhook callbacks are routed
// through the registry; everything else 404s.
func NewServer(addr string, log *slog.Logger, webhooks *plugin.WebhookRegistry, status StatusSource) *Server {
	if addr == "" {
		addr = ":8087"
	}
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			)
			return nil
		},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/status", func(c echo.Context) error {
		snapshots := status()
		if snapshots == nil {
			snapshots = []plugin.AccountSnapshot{}
		}
		return c.JSON(http.StatusOK, snapshots)
	})
	e.Any("/*", webhooks.Dispatch)

	return &Server{echo: e, addr: addr}
}

// Echo exposes the underlying router, used in tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start blocks serving requests until Shutdown.
func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
