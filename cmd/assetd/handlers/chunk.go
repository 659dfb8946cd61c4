package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	"github.com/labstack/echo/v4"
)

// ChunkHandler handles the per-chunk upload calls
type ChunkHandler struct {
	components *bootstrap.Components
	chunks     *service.ChunkService
}

// NewChunkHandler creates a new chunk handler
func NewChunkHandler(components *bootstrap.Components, chunks *service.ChunkService) *ChunkHandler {
	return &ChunkHandler{
		components: components,
		chunks:     chunks,
	}
}

// UploadChunk receives one chunk as multipart form data
// POST /api/admin/assets/upload-chunk
// Form fields: chunk (file), chunkIndex, totalChunks, fileName, assetId
func (h *ChunkHandler) UploadChunk(c echo.Context) error {
	fileHeader, err := c.FormFile("chunk")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required field: chunk")
	}

	assetID := c.FormValue("assetId")
	fileName := c.FormValue("fileName")
	chunkIndexRaw := c.FormValue("chunkIndex")
	totalChunksRaw := c.FormValue("totalChunks")

	if assetID == "" || fileName == "" || chunkIndexRaw == "" || totalChunksRaw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing required field: assetId, chunkIndex, totalChunks and fileName are all required")
	}

	chunkIndex, err := strconv.Atoi(chunkIndexRaw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "chunkIndex must be an integer")
	}

	totalChunks, err := strconv.Atoi(totalChunksRaw)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "totalChunks must be an integer")
	}

	payload, err := fileHeader.Open()
	if err != nil {
		h.components.Logger.Error("failed to open chunk payload", "asset_id", assetID, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read chunk")
	}
	defer payload.Close()

	result, err := h.chunks.Receive(c.Request().Context(), &service.ChunkDescriptor{
		AssetID:     assetID,
		ChunkIndex:  chunkIndex,
		TotalChunks: totalChunks,
		FileName:    fileName,
		Payload:     payload,
	})
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.components.Logger.Error("chunk upload failed",
			"asset_id", assetID,
			"chunk", chunkIndex,
			"error", err,
		)
		return echo.NewHTTPError(http.StatusInternalServerError, "chunk upload failed")
	}

	return c.JSON(http.StatusOK, result)
}
