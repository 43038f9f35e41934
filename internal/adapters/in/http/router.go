package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"dispatch/api"
	"dispatch/internal/generated/servers"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"github.com/swaggo/swag"
)

// BaseURL prefixes every API route of api/openapi.yaml.
const BaseURL = "/api/v1"

// RouterConfig configures NewRouter. A nil Registry disables /metrics and HTTP metrics.
type RouterConfig struct {
	Registry *prometheus.Registry
	LogLevel slog.Level
	Logger   *slog.Logger
}

// NewRouter builds the echo instance serving the API, health, metrics and Swagger UI.
func NewRouter(ctx context.Context, server servers.ServerInterface, cfg RouterConfig) (*echo.Echo, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "http")

	doc, err := api.Load(ctx)
	if err != nil {
		return nil, err
	}
	validate, err := requestValidator(doc)
	if err != nil {
		return nil, err
	}
	if err = registerSwagger(doc); err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Logger.SetLevel(gommonLevel(cfg.LogLevel))
	e.HTTPErrorHandler = errorHandler(logger)

	e.Use(middleware.Recover())
	e.Use(requestLogger(logger))
	e.Use(validate)
	if cfg.Registry != nil {
		e.Use(newHTTPMetrics(cfg.Registry).middleware)
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{
			Registry: cfg.Registry,
		})))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	servers.RegisterHandlers(e, server)

	return e, nil
}

func gommonLevel(level slog.Level) log.Lvl {
	switch {
	case level <= slog.LevelDebug:
		return log.DEBUG
	case level <= slog.LevelInfo:
		return log.INFO
	case level <= slog.LevelWarn:
		return log.WARN
	default:
		return log.ERROR
	}
}

var swaggerOnce sync.Once

type swaggerDoc string

func (d swaggerDoc) ReadDoc() string {
	return string(d)
}

// registerSwagger publishes the document to echo-swagger. swag panics on a second
// registration, so only the first document wins.
func registerSwagger(doc *openapi3.T) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return err
	}
	swaggerOnce.Do(func() {
		swag.Register(swag.Name, swaggerDoc(data))
	})
	return nil
}
