package handlers

import (
	"context"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	apperrors "github.com/KeremKalyoncu/vidlink/internal/errors"
	"github.com/KeremKalyoncu/vidlink/internal/middleware"
	"github.com/KeremKalyoncu/vidlink/internal/types"
)

const processFailedPrefix = "Failed to process video: "

// Resolver turns a page URL into a VideoInfo payload
type Resolver interface {
	Resolve(ctx context.Context, url string) (*types.VideoInfo, error)
}

// VideoInfoHandler serves the video info endpoint
type VideoInfoHandler struct {
	resolver Resolver
	logger   *zap.Logger
}

// NewVideoInfoHandler creates a video info handler
func NewVideoInfoHandler(resolver Resolver, logger *zap.Logger) *VideoInfoHandler {
	return &VideoInfoHandler{
		resolver: resolver,
		logger:   logger,
	}
}

// Preflight answers CORS preflight requests with an empty 200
func (h *VideoInfoHandler) Preflight(c *fiber.Ctx) error {
	setCORSHeaders(c)
	c.Status(fiber.StatusOK)
	return nil
}

// GetVideoInfo resolves the URL in the JSON body
func (h *VideoInfoHandler) GetVideoInfo(c *fiber.Ctx) error {
	setCORSHeaders(c)

	var req types.VideoInfoRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		h.logger.Warn("Invalid request body", zap.Error(err))
		return writeJSON(c, fiber.StatusInternalServerError, types.ErrorResponse{
			Success: false,
			Error:   processFailedPrefix + err.Error(),
		})
	}

	if err := middleware.ValidateVideoInfoRequest(&req); err != nil {
		return writeJSON(c, fiber.StatusBadRequest, types.ErrorResponse{
			Success: false,
			Error:   apperrors.GetErrorMessage(err),
		})
	}

	info, err := h.resolver.Resolve(c.UserContext(), req.URL)
	if err != nil {
		status := apperrors.GetStatusCode(err)
		message := apperrors.GetErrorMessage(err)
		if status >= fiber.StatusInternalServerError {
			message = processFailedPrefix + message
		}
		return writeJSON(c, status, types.ErrorResponse{
			Success: false,
			Error:   message,
		})
	}

	return writeJSON(c, fiber.StatusOK, info)
}

func setCORSHeaders(c *fiber.Ctx) {
	c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
	c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
	c.Set(fiber.HeaderAccessControlAllowHeaders, "Content-Type")
}

func writeJSON(c *fiber.Ctx, status int, body interface{}) error {
	return c.Status(status).JSON(body)
}
