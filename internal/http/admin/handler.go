package admin

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/keyserver/internal/backup"
	"winsbygroup.com/keyserver/internal/lifecycle"
)

type Handler struct {
	LifecycleService *lifecycle.Service
	BackupService    *backup.Service
}

func NewHandler(l *lifecycle.Service, b *backup.Service) *Handler {
	return &Handler{
		LifecycleService: l,
		BackupService:    b,
	}
}

// GET /keys
func (h *Handler) ListKeys(c echo.Context) error {
	keys, err := h.LifecycleService.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, keys)
}

// POST /backup
func (h *Handler) BackupDatabase(c echo.Context) error {
	result, err := h.BackupService.CreateBackup(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}
