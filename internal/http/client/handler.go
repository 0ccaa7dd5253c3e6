package client

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"winsbygroup.com/keyserver/internal/lifecycle"
)

type Handler struct {
	LifecycleService *lifecycle.Service
}

func NewHandler(l *lifecycle.Service) *Handler {
	return &Handler{
		LifecycleService: l,
	}
}

// IssueRequest carries the shared admin secret in the body; the lifecycle
// core checks it with a constant-time comparison. Days is bound loosely so a
// malformed value falls back to the default term instead of failing the
// request.
type IssueRequest struct {
	Secret string `json:"secret"`
	Days   any    `json:"days"`
}

type IssueResponse struct {
	Key         string    `json:"key"`
	ExpiresAt   time.Time `json:"expires_at"`
	LicenseDays int       `json:"license_days"`
}

// POST /keys
func (h *Handler) IssueKey(c echo.Context) error {
	var req IssueRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	rec, err := h.LifecycleService.Issue(c.Request().Context(), req.Secret, req.Days)
	if errors.Is(err, lifecycle.ErrAccessDenied) {
		return c.JSON(http.StatusForbidden, map[string]string{
			"error": err.Error(),
		})
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, IssueResponse{
		Key:         rec.LicenseKey,
		ExpiresAt:   rec.ExpiresAt,
		LicenseDays: rec.LicenseDays,
	})
}

type ActivateRequest struct {
	Key  string `json:"key"`
	HWID string `json:"hwid"`
}

type ActivateResponse struct {
	ExpiresAt   time.Time `json:"expires_at"`
	LicenseDays int       `json:"license_days"`
	SessionID   string    `json:"session_id"`
}

// POST /activate
func (h *Handler) Activate(c echo.Context) error {
	var req ActivateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"error": "invalid request body",
		})
	}

	res, err := h.LifecycleService.Activate(c.Request().Context(), req.Key, req.HWID)
	if err != nil {
		return c.JSON(activateStatus(err), map[string]string{
			"error": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, ActivateResponse{
		ExpiresAt:   res.Record.ExpiresAt,
		LicenseDays: res.Record.LicenseDays,
		SessionID:   res.SessionID,
	})
}

// ValidateRequest accepts either key+hwid or a session token.
type ValidateRequest struct {
	Key       string `json:"key"`
	HWID      string `json:"hwid"`
	SessionID string `json:"session_id"`
}

type ValidateResponse struct {
	Valid     bool      `json:"valid"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ValidateFailure struct {
	Valid bool   `json:"valid"`
	Error string `json:"error"`
}

// POST /validate
func (h *Handler) Validate(c echo.Context) error {
	var req ValidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ValidateFailure{
			Valid: false,
			Error: "invalid request body",
		})
	}

	verdict, err := h.LifecycleService.Validate(c.Request().Context(), lifecycle.Query{
		Key:       req.Key,
		HWID:      req.HWID,
		SessionID: req.SessionID,
	})
	if err != nil {
		return c.JSON(validateStatus(err), ValidateFailure{
			Valid: false,
			Error: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, ValidateResponse{
		Valid:     verdict.Valid,
		ExpiresAt: verdict.ExpiresAt,
	})
}

// activateStatus maps activation failures onto status codes. Policy and
// lookup failures are client errors; anything else is a storage failure.
func activateStatus(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrMissingInput),
		errors.Is(err, lifecycle.ErrUnknownKey),
		errors.Is(err, lifecycle.ErrDeviceMismatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// validateStatus maps validation failures onto status codes. Every lifecycle
// failure is forbidden; callers distinguish causes by the reason string, not
// the code.
func validateStatus(err error) int {
	switch {
	case errors.Is(err, lifecycle.ErrMissingInput):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrUnknownKey),
		errors.Is(err, lifecycle.ErrInvalidSession),
		errors.Is(err, lifecycle.ErrNotActivated),
		errors.Is(err, lifecycle.ErrHWIDMismatch),
		errors.Is(err, lifecycle.ErrExpired):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
