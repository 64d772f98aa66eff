package treatment

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
	g := api.Group("/treatmentRecord")
	g.POST("/treatmentRecords", h.CreateRecord, auth.RequireRole("admin", "doctor"))
	g.GET("/treatmentRecords", h.GetAllRecords, auth.RequireRole("admin", "doctor"))
	g.GET("/treatmentRecords/:id", h.GetRecord)
	g.PUT("/treatmentRecords/:id", h.UpdateRecord, auth.RequireRole("admin", "doctor"))
	g.DELETE("/treatmentRecords/:id", h.DeleteRecord, auth.RequireRole("admin"))
	g.GET("/treatmentRecords/patient/:patientId", h.GetByPatient)
}

type createRecordRequest struct {
	PatientID        string     `json:"patientId" validate:"required"`
	DoctorID         string     `json:"doctorId"`
	WardID           string     `json:"wardId"`
	TreatmentDetails string     `json:"treatmentDetails" validate:"required"`
	Notes            string     `json:"notes"`
	AdmissionDate    *time.Time `json:"admissionDate"`
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var req createRecordRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "patientId and treatmentDetails are required")
	}

	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	rec := &Record{
		PatientID:        patientID,
		TreatmentDetails: req.TreatmentDetails,
		Notes:            req.Notes,
	}
	if req.DoctorID != "" {
		id, err := uuid.Parse(req.DoctorID)
		if err != nil {
			return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
		}
		rec.DoctorID = &id
	}
	if req.WardID != "" {
		id, err := uuid.Parse(req.WardID)
		if err != nil {
			return response.Fail(c, http.StatusBadRequest, "invalid ward id")
		}
		rec.WardID = &id
	}
	if req.AdmissionDate != nil {
		rec.AdmissionDate = *req.AdmissionDate
	}

	if err := h.svc.CreateRecord(c.Request().Context(), rec); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusCreated, "Treatment record created successfully!", response.Body{"treatmentRecord": rec})
}

func (h *Handler) GetAllRecords(c echo.Context) error {
	pg := pagination.FromContext(c)
	records, total, err := h.svc.ListRecords(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Treatment records retrieved successfully!", response.Body{
		"treatmentRecords": records,
		"total":            total,
	})
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid record id")
	}
	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Treatment record retrieved successfully!", response.Body{"treatmentRecord": rec})
}

type updateRecordRequest struct {
	TreatmentDetails string     `json:"treatmentDetails"`
	Notes            string     `json:"notes"`
	DischargeDate    *time.Time `json:"dischargeDate"`
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid record id")
	}
	var req updateRecordRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	rec, err := h.svc.UpdateRecord(c.Request().Context(), id, req.TreatmentDetails, req.Notes, req.DischargeDate)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Treatment record updated successfully!", response.Body{"treatmentRecord": rec})
}

func (h *Handler) DeleteRecord(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid record id")
	}
	if err := h.svc.DeleteRecord(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Treatment record deleted successfully!", nil)
}

func (h *Handler) GetByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	records, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Treatment records retrieved successfully!", response.Body{
		"treatmentRecords": records,
	})
}
