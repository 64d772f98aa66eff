package doctor

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
	g := api.Group("/doctor")
	g.POST("/registerDoctor", h.RegisterDoctor, auth.RequireRole("admin"))
	g.GET("/getAllDoctors", h.GetAllDoctors)
	g.GET("/getSingleDoctor/:id", h.GetSingleDoctor)
	g.PUT("/getSingleDoctor/:id", h.UpdateDoctor, auth.RequireRole("admin"))
	g.DELETE("/getSingleDoctor/:id", h.DeleteDoctor, auth.RequireRole("admin"))
	g.PUT("/addTreatedPatient/:doctorId", h.AddTreatedPatient, auth.RequireRole("admin", "doctor"))
	g.PUT("/removeTreatedPatient/:doctorId", h.RemoveTreatedPatient, auth.RequireRole("admin", "doctor"))
}

type registerDoctorRequest struct {
	Name     string   `json:"name" validate:"required"`
	Grade    string   `json:"grade" validate:"required"`
	Email    string   `json:"email" validate:"required,email"`
	Password string   `json:"password"`
	Image    string   `json:"image"`
	Wards    []string `json:"wards"`
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var req registerDoctorRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "name, grade and email are required")
	}

	wardIDs := make([]uuid.UUID, 0, len(req.Wards))
	for _, raw := range req.Wards {
		id, err := uuid.Parse(raw)
		if err != nil {
			return response.Fail(c, http.StatusBadRequest, "invalid ward id: "+raw)
		}
		wardIDs = append(wardIDs, id)
	}

	d := &Doctor{
		Name:      req.Name,
		Grade:     req.Grade,
		Email:     req.Email,
		ImagePath: req.Image,
	}
	if err := h.svc.RegisterDoctor(c.Request().Context(), d, wardIDs, req.Password); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusCreated, "Doctor registered successfully!", response.Body{"doctor": d})
}

func (h *Handler) GetAllDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	if total == 0 {
		return response.Fail(c, http.StatusNotFound, "No Doctor found!")
	}
	return response.OK(c, http.StatusOK, "Doctors retrieved successfully!", response.Body{
		"doctors": doctors,
		"total":   total,
	})
}

func (h *Handler) GetSingleDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Doctor retrieved successfully!", response.Body{"doctor": d})
}

type updateDoctorRequest struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
	Email string `json:"email"`
	Image string `json:"image"`
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
	}
	var req updateDoctorRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	d, err := h.svc.UpdateDoctor(c.Request().Context(), id, req.Name, req.Grade, req.Email, req.Image)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Doctor updated successfully!", response.Body{"doctor": d})
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Doctor deleted successfully!", nil)
}

type treatedPatientRequest struct {
	PatientID string `json:"patientId" validate:"required"`
}

func (h *Handler) AddTreatedPatient(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
	}
	var req treatedPatientRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	if err := h.svc.AddTreatedPatient(c.Request().Context(), doctorID, patientID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Patient added to doctor's treated list!", nil)
}

func (h *Handler) RemoveTreatedPatient(c echo.Context) error {
	doctorID, err := uuid.Parse(c.Param("doctorId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
	}
	var req treatedPatientRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	if err := h.svc.RemoveTreatedPatient(c.Request().Context(), doctorID, patientID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Patient removed from doctor's treated list!", nil)
}
