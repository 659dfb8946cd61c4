package handlers

import (
	"errors"
	"net/http"

	"github.com/creatorhub/assetd/cmd/assetd/models"
	"github.com/creatorhub/assetd/cmd/assetd/service"
	"github.com/creatorhub/assetd/common/bootstrap"
	"github.com/labstack/echo/v4"
)

// PresignHandler handles upload registration
type PresignHandler struct {
	components *bootstrap.Components
	registrar  *service.RegistrarService
}

// NewPresignHandler creates a new presign handler
func NewPresignHandler(components *bootstrap.Components, registrar *service.RegistrarService) *PresignHandler {
	return &PresignHandler{
		components: components,
		registrar:  registrar,
	}
}

// CreatePresign registers an upload and returns the asset id plus destination
// POST /api/admin/assets/presign
func (h *PresignHandler) CreatePresign(c echo.Context) error {
	req := &models.PresignRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	resp, err := h.registrar.Register(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, models.ErrValidation) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		h.components.Logger.Error("presign failed", "file", req.FileName, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to register upload")
	}

	return c.JSON(http.StatusOK, resp)
}
