package admin

import "github.com/labstack/echo/v4"

func RegisterRoutes(g *echo.Group, h *Handler) {

	// Key listing
	g.GET("/keys", h.ListKeys)

	// Backup
	g.POST("/backup", h.BackupDatabase)
}
