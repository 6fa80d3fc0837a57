package server

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"estate-insights/internal/rag"
	"estate-insights/internal/valuation"
)

type handlers struct {
	deps     Deps
	validate *validator.Validate
}

func (h *handlers) registerRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", h.health)

	api.Post("/sessions", h.createSession)
	api.Get("/sessions/:id/messages", h.getMessages)
	api.Post("/sessions/:id/uploads", h.uploadBatch)
	api.Post("/sessions/:id/chat", h.chat)

	api.Post("/predict", h.predict)

	api.Get("/recommend/names", h.recommendNames)
	api.Get("/recommend", h.recommendSimilar)

	api.Get("/location/landmarks", h.landmarks)
	api.Get("/location/nearby", h.nearby)

	api.Get("/market/sectors", h.marketSectors)
	api.Get("/market/summary", h.marketSummary)
}

func (h *handlers) health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}

func (h *handlers) createSession(ctx *fiber.Ctx) error {
	sess := h.deps.Sessions.Create()
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"session_id": sess.ID.String(),
		"messages":   sess.Messages(),
	})
}

func (h *handlers) getMessages(ctx *fiber.Ctx) error {
	sess, err := h.deps.Sessions.Get(ctx.Params("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"messages": sess.Messages()})
}

// uploadBatch accepts a multipart batch under the "files" field. The whole
// batch indexes as one unit or not at all.
func (h *handlers) uploadBatch(ctx *fiber.Ctx) error {
	sess, err := h.deps.Sessions.Get(ctx.Params("id"))
	if err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected multipart form")
	}
	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no files in upload batch")
	}

	tmpDir, err := os.MkdirTemp("", "uploads-*")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmpDir)

	files := make([]rag.UploadFile, 0, len(fileHeaders))
	for i, fh := range fileHeaders {
		path := filepath.Join(tmpDir, strconv.Itoa(i)+"_"+filepath.Base(fh.Filename))
		if err := ctx.SaveFile(fh, path); err != nil {
			return err
		}
		files = append(files, rag.UploadFile{Path: path, Name: fh.Filename})
	}

	chunks, err := h.deps.Ingestor.Ingest(ctx.Context(), sess, files)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"files": len(files), "chunks_indexed": chunks})
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

func (h *handlers) chat(ctx *fiber.Ctx) error {
	sess, err := h.deps.Sessions.Get(ctx.Params("id"))
	if err != nil {
		return err
	}

	var req chatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid chat request body")
	}
	if err := h.validate.Struct(&req); err != nil {
		return err
	}

	reply, err := h.deps.Responder.Answer(ctx.Context(), sess, req.Message)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"reply": reply})
}

func (h *handlers) predict(ctx *fiber.Ctx) error {
	var record valuation.Record
	if err := ctx.BodyParser(&record); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid valuation record")
	}
	if err := h.validate.Struct(&record); err != nil {
		return err
	}

	price, err := h.deps.Predictor.Predict(ctx.Context(), record)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"price": price, "unit": "crore"})
}

func (h *handlers) recommendNames(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"names": h.deps.Recommender.Names()})
}

func (h *handlers) recommendSimilar(ctx *fiber.Ctx) error {
	name := ctx.Query("name")
	if name == "" {
		return fiber.NewError(fiber.StatusBadRequest, "name parameter is required")
	}
	topN := ctx.QueryInt("top_n", 5)

	matches, err := h.deps.Recommender.Similar(name, topN)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"name": name, "matches": matches})
}

func (h *handlers) landmarks(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"landmarks": h.deps.Locations.Landmarks()})
}

func (h *handlers) nearby(ctx *fiber.Ctx) error {
	landmark := ctx.Query("landmark")
	if landmark == "" {
		return fiber.NewError(fiber.StatusBadRequest, "landmark parameter is required")
	}
	radiusKm := ctx.QueryFloat("radius_km", 5)
	limit := ctx.QueryInt("limit", 0)

	hits, err := h.deps.Locations.Within(landmark, radiusKm*1000, limit)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"landmark": landmark, "properties": hits})
}

func (h *handlers) marketSectors(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"sectors": h.deps.Market.Sectors()})
}

func (h *handlers) marketSummary(ctx *fiber.Ctx) error {
	sector := ctx.Query("sector")
	if sector == "" {
		return fiber.NewError(fiber.StatusBadRequest, "sector parameter is required")
	}
	summary, err := h.deps.Market.Summary(sector)
	if err != nil {
		return err
	}
	return ctx.JSON(summary)
}
