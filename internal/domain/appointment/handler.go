package appointment

import (
	"net/http"
	"time"

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
	g := api.Group("/appointment")
	g.POST("/createAppointment", h.CreateAppointment)
	g.GET("/appointments", h.GetAppointments)
	g.GET("/:id", h.GetAppointment)
	g.PUT("/:id/status", h.UpdateStatus, auth.RequireRole("admin", "doctor"))
	g.DELETE("/:id", h.DeleteAppointment, auth.RequireRole("admin"))
}

type createAppointmentRequest struct {
	PatientID           string    `json:"patientId" validate:"required"`
	DoctorID            string    `json:"doctorId" validate:"required"`
	AppointmentDateTime time.Time `json:"appointmentDateTime" validate:"required"`
	Notes               string    `json:"notes"`
}

func (h *Handler) CreateAppointment(c echo.Context) error {
	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "patientId, doctorId and appointmentDateTime are required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
	}

	a := &Appointment{
		PatientID:           patientID,
		DoctorID:            doctorID,
		AppointmentDateTime: req.AppointmentDateTime,
		Notes:               req.Notes,
	}
	if err := h.svc.CreateAppointment(c.Request().Context(), a); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusCreated, "Appointment created successfully!", response.Body{"appointment": a})
}

func (h *Handler) GetAppointments(c echo.Context) error {
	var userID uuid.UUID
	if raw := c.QueryParam("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Fail(c, http.StatusBadRequest, "invalid user id")
		}
		userID = id
	}
	role := c.QueryParam("role")

	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAppointments(c.Request().Context(), userID, role, pg.Limit, pg.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Appointments retrieved successfully!", response.Body{
		"appointments": items,
		"total":        total,
	})
}

func (h *Handler) GetAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid appointment id")
	}
	a, err := h.svc.GetAppointment(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Appointment retrieved successfully!", response.Body{"appointment": a})
}

type updateStatusRequest struct {
	Status      string     `json:"status" validate:"required"`
	NewDateTime *time.Time `json:"newDateTime"`
	Notes       string     `json:"notes"`
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid appointment id")
	}
	var req updateStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "status is required")
	}

	a, err := h.svc.UpdateStatus(c.Request().Context(), id, Status(req.Status), req.NewDateTime, req.Notes)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Appointment status updated successfully!", response.Body{"appointment": a})
}

func (h *Handler) DeleteAppointment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid appointment id")
	}
	if err := h.svc.DeleteAppointment(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Appointment deleted successfully!", nil)
}
