package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	passportapi "github.com/ecomstore/passport/api/echo"
	"github.com/ecomstore/passport/config"
	apperrors "github.com/ecomstore/passport/errors"
)

// NewHTTPServer creates and configures the passport echo HTTP server.
func NewHTTPServer(cfg *config.Config, api *passportapi.PassportAPI, registry *prometheus.Registry) *http.Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(requestLogger())

	e.HTTPErrorHandler = errorHandler

	// The passport routes live under the base URI so the oauth paths and
	// provider callback URLs built from it are actually served.
	api.RegisterRoutes(e.Group(strings.TrimSuffix(cfg.BaseURI, "/")))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	if registry != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
	}

	return &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      e,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
}

// requestLogger emits one structured event per request.
func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.Info().
				Str("method", c.Request().Method).
				Str("path", c.Request().URL.Path).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Str("ip", c.RealIP()).
				Msg("http request")

			// The error was already rendered by c.Error; don't let echo
			// handle it twice.
			return nil
		}
	}
}

// errorHandler renders the {status, error} envelope for broker errors and a
// detail-free body for everything else. Internal detail stays in the logs.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		_ = c.JSON(appErr.Status, appErr)
		return
	}

	if httpErr, ok := err.(*echo.HTTPError); ok {
		_ = c.JSON(httpErr.Code, echo.Map{"status": httpErr.Code})
		return
	}

	log.Error().Err(err).
		Str("path", c.Request().URL.Path).
		Msg("unhandled error")
	_ = c.JSON(http.StatusInternalServerError, echo.Map{"status": http.StatusInternalServerError})
}
