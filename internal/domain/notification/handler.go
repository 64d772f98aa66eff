package notification

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/auth"
	"github.com/carebridge/hms/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/notification")
	g.GET("/user/:userId", h.GetForUser)
	g.GET("/admin", h.GetForAdmin, auth.RequireRole("admin"))
	g.PUT("/:id/read", h.MarkRead)
	g.PUT("/user/:userId/readAll", h.MarkAllReadForUser)
	g.PUT("/admin/readAll", h.MarkAllReadForAdmin, auth.RequireRole("admin"))
	g.DELETE("/:id", h.Delete)
}

func (h *Handler) GetForUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid user id")
	}
	items, err := h.svc.ListForUser(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Notifications retrieved successfully!", response.Body{
		"notifications": items,
	})
}

func (h *Handler) GetForAdmin(c echo.Context) error {
	items, err := h.svc.ListForAdmin(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Notifications retrieved successfully!", response.Body{
		"notifications": items,
	})
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid notification id")
	}
	if err := h.svc.MarkRead(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Notification marked as read!", nil)
}

func (h *Handler) MarkAllReadForUser(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid user id")
	}
	if err := h.svc.MarkAllReadForUser(c.Request().Context(), userID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "All notifications marked as read!", nil)
}

func (h *Handler) MarkAllReadForAdmin(c echo.Context) error {
	if err := h.svc.MarkAllReadForAdmin(c.Request().Context()); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "All notifications marked as read!", nil)
}

func (h *Handler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid notification id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Notification deleted successfully!", nil)
}
