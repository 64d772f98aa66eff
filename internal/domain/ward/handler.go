package ward

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/auth"
	"github.com/carebridge/hms/pkg/pagination"
	"github.com/carebridge/hms/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/ward")
	g.POST("/addWard", h.AddWard, auth.RequireRole("admin"))
	g.GET("/getAllWards", h.GetAllWards, auth.RequireRole("admin", "doctor"))
	g.GET("/getSingleWard/:id", h.GetSingleWard, auth.RequireRole("admin", "doctor"))
	g.DELETE("/getSingleWard/:id", h.DeleteWard, auth.RequireRole("admin"))
}

type addWardRequest struct {
	WardName string `json:"wardName" validate:"required"`
	WardType string `json:"wardType" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Image    string `json:"image"`
}

func (h *Handler) AddWard(c echo.Context) error {
	var req addWardRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "wardName, wardType and capacity are required")
	}

	w := &Ward{
		WardName:  req.WardName,
		WardType:  req.WardType,
		Capacity:  req.Capacity,
		ImagePath: req.Image,
	}
	if err := h.svc.AddWard(c.Request().Context(), w); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusCreated, "Ward Added!", response.Body{"ward": w})
}

func (h *Handler) GetAllWards(c echo.Context) error {
	pg := pagination.FromContext(c)
	wards, total, err := h.svc.ListWards(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	if total == 0 {
		return response.Fail(c, http.StatusNotFound, "No Ward found!")
	}
	return response.OK(c, http.StatusOK, "Wards retrieved successfully!", response.Body{
		"wards": wards,
		"total": total,
	})
}

func (h *Handler) GetSingleWard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid ward id")
	}
	w, err := h.svc.GetWard(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Ward retrieved successfully!", response.Body{"ward": w})
}

func (h *Handler) DeleteWard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid ward id")
	}
	if err := h.svc.DeleteWard(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Ward deleted successfully!", nil)
}
