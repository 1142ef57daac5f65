package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"sibyl/internal/metrics"
	"sibyl/internal/services/analysis"
	"sibyl/pkg/errors"
	"sibyl/pkg/logger"
)

const defaultHorizonDays = 5

// Server exposes the analysis pipeline over HTTP
type Server struct {
	echo    *echo.Echo
	service *analysis.Service
	log     *logger.Logger
}

func New(service *analysis.Service) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:    e,
		service: service,
		log:     logger.Get().With("component", "http_server"),
	}

	e.GET("/analyze/:symbol", s.handleAnalyze)
	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is
// called.
func (s *Server) Start(addr string) error {
	s.log.Infow("HTTP server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && err != http.ErrServerClosed {
		return errors.Wrap(err, "http server")
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleAnalyze(c echo.Context) error {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))

	horizonDays := defaultHorizonDays
	if raw := c.QueryParam("horizon_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody("horizon_days must be an integer"))
		}
		horizonDays = parsed
	}

	result, err := s.service.Analyze(c.Request().Context(), symbol, horizonDays)
	if err != nil {
		s.log.Errorw("Analysis request failed", "symbol", symbol, "error", err)
		return c.JSON(statusFor(err), errorBody(err.Error()))
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func errorBody(message string) map[string]string {
	return map[string]string{"error": message}
}

// statusFor maps pipeline failures to HTTP statuses: bad requests are
// the caller's fault, provider trouble is upstream, the rest is ours.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrInsufficientData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.ErrFetchFailed),
		errors.Is(err, errors.ErrProviderData),
		errors.Is(err, errors.ErrRateLimitExceeded):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
