package handler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/inkforge/outline-council/internal/dto"
	"github.com/inkforge/outline-council/internal/middleware"
	"github.com/inkforge/outline-council/internal/usecase"
	"github.com/inkforge/outline-council/internal/util"
)

type ReviewHandler struct {
	uc *usecase.ReviewUsecase
}

func NewReviewHandler(uc *usecase.ReviewUsecase) *ReviewHandler {
	return &ReviewHandler{uc: uc}
}

func (h *ReviewHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/reviews", middleware.RateLimiter(1, 4*time.Second), h.Submit)
	app.Get("/reviews/:id", h.Result)
	app.Get("/reviews/:id/report", h.Report)
	app.Get("/reviews/:id/similar", h.Similar)
}

func (h *ReviewHandler) Submit(c *fiber.Ctx) error {
	outline, err := h.processOutline(c)
	if err != nil {
		return err
	}

	title := strings.TrimSpace(c.FormValue("title"))
	if title == "" {
		title = "Untitled Outline"
	}

	id, err := h.uc.Submit(title, outline)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to submit review",
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusAccepted,
		Message: "Success submit review",
		Data:    fiber.Map{"id": id, "status": "processing"},
	})
}

// processOutline accepts either an uploaded outline file (pdf, md, txt)
// or a raw outline_text form field.
func (h *ReviewHandler) processOutline(c *fiber.Ctx) (string, error) {
	if text := strings.TrimSpace(c.FormValue("outline_text")); text != "" {
		return text, nil
	}

	file, err := c.FormFile("outline")
	if err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "outline file or outline_text field is required",
		}, err)
	}

	if file.Size > 5*1024*1024 {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "outline file size is too large (max 5MB)",
		}, nil)
	}

	savePath := filepath.Join("./uploads/outlines/", file.Filename)
	if err := c.SaveFile(file, savePath); err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "cannot save outline file",
		}, err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	var content string
	switch ext {
	case ".pdf":
		content, err = util.ExtractPDFText(savePath)
	case ".md", ".txt":
		var raw []byte
		raw, err = os.ReadFile(savePath)
		content = string(raw)
	default:
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("unsupported outline file type %q", ext),
		}, nil)
	}

	if err != nil {
		return "", util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to extract outline text",
		}, err)
	}

	return content, nil
}

func (h *ReviewHandler) Result(c *fiber.Ctx) error {
	id := c.Params("id")
	run, err := h.uc.GetRun(id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "review not found",
		}, nil)
	}
	data := dto.ReviewRunDTO{
		ID:            run.ID,
		Title:         run.Title,
		Status:        run.Status,
		Report:        run.Report,
		Verdicts:      run.Verdicts,
		ModelStatuses: run.ModelStatuses,
		FailureReason: run.FailureReason,
		CreatedAt:     run.CreatedAt,
		UpdatedAt:     run.UpdatedAt,
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get review result",
		Data:    data,
	})
}

// Report serves the assembled markdown document as-is.
func (h *ReviewHandler) Report(c *fiber.Ctx) error {
	id := c.Params("id")
	run, err := h.uc.GetRun(id)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "review not found",
		}, nil)
	}
	if run.Status != "completed" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusConflict,
			Message: fmt.Sprintf("review is %s, report not available", run.Status),
		}, nil)
	}
	c.Set("Content-Type", "text/markdown; charset=utf-8")
	return c.SendString(run.Report)
}

func (h *ReviewHandler) Similar(c *fiber.Ctx) error {
	id := c.Params("id")
	similar, err := h.uc.FindSimilarRuns(id, c.QueryInt("limit", 5))
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to search similar reviews",
		}, err)
	}

	data := make([]dto.SimilarRunDTO, 0, len(similar))
	for _, s := range similar {
		data = append(data, dto.SimilarRunDTO{
			ID:        s.ID,
			Title:     s.Title,
			Status:    s.Status,
			Distance:  s.Distance,
			CreatedAt: s.CreatedAt,
		})
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Message: "Success get similar reviews",
		Data:    data,
	})
}
