package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vsinha/chainalloc/pkg/application/services/allocation"
	"github.com/vsinha/chainalloc/pkg/domain/entities"
	"github.com/vsinha/chainalloc/pkg/infrastructure/events"
	"github.com/vsinha/chainalloc/pkg/infrastructure/metrics"
)

// Catalog lists the locations a server allocates against
type Catalog interface {
	Locations() []*entities.Location
	FallbackName(loc *entities.Location) string
}

// Server exposes chain allocation over HTTP
type Server struct {
	app     *fiber.App
	service *allocation.Service
	catalog Catalog
	events  events.EventStore
	logger  *zap.Logger
}

// NewServer wires routes and middleware. recorder may be nil, in which case
// /metrics is not served; store may be nil, in which case run events are not.
func NewServer(service *allocation.Service, catalog Catalog, recorder *metrics.Recorder, store events.EventStore, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${status} ${method} ${path} ${latency}\n",
		Output: zap.NewStdLog(log.Named("access")).Writer(),
	}))

	s := &Server{app: app, service: service, catalog: catalog, events: store, logger: log}

	api := app.Group("/api/v1")
	api.Post("/reserve", s.Reserve)
	api.Get("/locations", s.ListLocations)
	if store != nil {
		api.Get("/runs/:id/events", s.RunEvents)
	}

	if recorder != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(recorder.Registry(), promhttp.HandlerOpts{})))
	}
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves until Shutdown is called
func (s *Server) Listen(addr string) error {
	s.logger.Info("http server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func errorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
		}
		return c.Status(code).JSON(fiber.Map{"error": err.Error()})
	}
}

// statusFor maps allocation errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, entities.ErrInvalidQuantity), errors.Is(err, entities.ErrDuplicateProduct):
		return fiber.StatusBadRequest
	case errors.Is(err, entities.ErrUnknownLocation):
		return fiber.StatusNotFound
	case errors.Is(err, entities.ErrCyclicChain), errors.Is(err, entities.ErrChainTooDeep):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
