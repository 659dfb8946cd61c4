package handlers

import (
	"errors"
	"net/http"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	"github.com/labstack/echo/v4"
)

// DirectHandler handles the single-shot upload path
type DirectHandler struct {
	components *bootstrap.Components
	direct     *service.DirectUploadService
}

// NewDirectHandler creates a new direct upload handler
func NewDirectHandler(components *bootstrap.Components, direct *service.DirectUploadService) *DirectHandler {
	return &DirectHandler{
		components: components,
		direct:     direct,
	}
}

// Upload writes a raw request body at the presigned storage key
// PUT /api/admin/assets/upload?key={assetId}/index.{ext}
func (h *DirectHandler) Upload(c echo.Context) error {
	key := c.QueryParam("key")
	if key == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing storage key")
	}

	body := c.Request().Body
	defer body.Close()

	result, err := h.direct.Upload(c.Request().Context(), key, body)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.components.Logger.Error("direct upload failed", "key", key, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "upload failed")
	}

	return c.JSON(http.StatusOK, result)
}
