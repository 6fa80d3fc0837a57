package server

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/rs/zerolog/log"

	"estate-insights/internal/config"
	"estate-insights/internal/location"
	"estate-insights/internal/market"
	"estate-insights/internal/models"
	"estate-insights/internal/rag"
	"estate-insights/internal/recommend"
	"estate-insights/internal/session"
	"estate-insights/internal/valuation"
)

// Deps are the wired components the handlers dispatch into.
type Deps struct {
	Sessions    *session.Manager
	Ingestor    *rag.Ingestor
	Responder   *rag.Responder
	Predictor   valuation.Predictor
	Recommender *recommend.Recommender
	Locations   *location.Finder
	Market      *market.Store
}

type Server struct {
	app *fiber.App
	cfg *config.Config
}

func New(cfg *config.Config, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // 10MB upload batches
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.CorsAllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(renderErrors())

	h := &handlers{deps: deps, validate: validator.New()}
	h.registerRoutes(app)

	return &Server{app: app, cfg: cfg}
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	log.Info().Str("port", s.cfg.Server.Port).Msg("Server listening")
	return s.app.Listen(":" + s.cfg.Server.Port)
}

// renderErrors translates the error taxonomy into statuses and a uniform
// {error, message} body so a single failed turn never takes the loop down.
func renderErrors() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		status, kind := classify(err)
		if status >= fiber.StatusInternalServerError {
			log.Error().Err(err).Str("path", ctx.Path()).Msg("Request failed")
		} else {
			log.Warn().Err(err).Str("path", ctx.Path()).Msg("Request rejected")
		}
		return ctx.Status(status).JSON(fiber.Map{
			"error":   kind,
			"message": err.Error(),
		})
	}
}

func classify(err error) (int, string) {
	var (
		extractionErr  *models.ExtractionError
		unsupportedErr *models.UnsupportedFormatError
		embeddingErr   *models.EmbeddingError
		noIndexErr     *models.NoIndexError
		completionErr  *models.CompletionError
		lookupErr      *models.LookupError
		validationErrs validator.ValidationErrors
		fiberErr       *fiber.Error
	)
	switch {
	case errors.As(err, &unsupportedErr):
		return fiber.StatusBadRequest, "UnsupportedFormatError"
	case errors.As(err, &validationErrs):
		return fiber.StatusBadRequest, "ValidationError"
	case errors.As(err, &extractionErr):
		return fiber.StatusUnprocessableEntity, "ExtractionError"
	case errors.As(err, &lookupErr):
		return fiber.StatusNotFound, "LookupError"
	case errors.As(err, &noIndexErr):
		return fiber.StatusConflict, "NoIndexError"
	case errors.As(err, &embeddingErr):
		return fiber.StatusBadGateway, "EmbeddingError"
	case errors.As(err, &completionErr):
		return fiber.StatusBadGateway, "CompletionError"
	case errors.As(err, &fiberErr):
		return fiberErr.Code, "RequestError"
	default:
		return fiber.StatusInternalServerError, "InternalError"
	}
}
