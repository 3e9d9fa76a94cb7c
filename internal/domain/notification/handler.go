package notification

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/wellbee/wellbee/internal/platform/auth"
	"github.com/wellbee/wellbee/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/user/notifications", h.ListNotifications)
	api.GET("/user/notifications/unread-count", h.UnreadCount)
	api.PATCH("/user/notifications", h.MarkRead)
}

func principalID(c echo.Context) (uuid.UUID, error) {
	principal, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(principal.UserID)
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid principal")
	}
	return id, nil
}

func (h *Handler) ListNotifications(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.List(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Notification{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) UnreadCount(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return err
	}
	count, err := h.svc.UnreadCount(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]int{"unread_count": count})
}

type markReadRequest struct {
	NotificationID *uuid.UUID `json:"notification_id"`
}

// MarkRead marks one notification as read when notification_id is given,
// otherwise marks all of the user's notifications as read.
func (h *Handler) MarkRead(c echo.Context) error {
	userID, err := principalID(c)
	if err != nil {
		return err
	}

	var req markReadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if req.NotificationID != nil {
		if err := h.svc.MarkRead(c.Request().Context(), *req.NotificationID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "notification not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	} else {
		if err := h.svc.MarkAllRead(c.Request().Context(), userID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
