package client

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes wires all client-facing endpoints under the given Echo group.
// Key issuance carries the admin secret in the request body, so no route
// middleware is needed here.
func RegisterRoutes(g *echo.Group, h *Handler) {

	// Key issuance (secret checked by the lifecycle core)
	g.POST("/keys", h.IssueKey)

	// Activation: bind a key to a HWID, minting a session token
	g.POST("/activate", h.Activate)

	// Validation by key+hwid or by session token
	g.POST("/validate", h.Validate)
}
