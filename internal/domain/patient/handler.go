package patient

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

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
	g := api.Group("/patient")
	g.POST("/registerPatient", h.RegisterPatient, auth.RequireRole("admin"))
	g.GET("/getAllPatients", h.GetAllPatients, auth.RequireRole("admin", "doctor"))
	g.GET("/getSinglePatient/:id", h.GetSinglePatient)
	g.PUT("/getSinglePatient/:id", h.UpdatePatient, auth.RequireRole("admin", "doctor"))
	g.DELETE("/getSinglePatient/:id", h.DeletePatient, auth.RequireRole("admin"))
	g.PUT("/unassignDoctor/:id", h.UnassignDoctor, auth.RequireRole("admin"))
	g.GET("/getPatientReport/:id", h.GetPatientReport)
	g.GET("/smartScheduler/:id", h.SmartScheduler)
	g.GET("/stats/totalPatients", h.StatsTotal, auth.RequireRole("admin"))
	g.GET("/stats/patientsByAge", h.StatsByAge, auth.RequireRole("admin"))
	g.GET("/stats/patientsByGender", h.StatsByGender, auth.RequireRole("admin"))
	g.GET("/stats/averageRisk", h.StatsAverageRisk, auth.RequireRole("admin"))
}

// doctorList accepts either a bare string or an array of strings, the two
// shapes clients historically sent.
type doctorList []string

func (d *doctorList) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		if one != "" {
			*d = doctorList{one}
		}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*d = doctorList(many)
	return nil
}

type registerPatientRequest struct {
	PatientName string     `json:"patientName" validate:"required"`
	Caste       string     `json:"caste"`
	Age         int        `json:"age" validate:"required,min=1"`
	Gender      string     `json:"gender" validate:"required"`
	Contact     string     `json:"contact" validate:"required"`
	Email       string     `json:"email"`
	Password    string     `json:"password"`
	Conditions  []string   `json:"conditions"`
	Address     string     `json:"address"`
	Image       string     `json:"image"`
	WardID      string     `json:"ward"`
	Doctors     doctorList `json:"doctors"`
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	req, err := bindRegisterRequest(c)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "patientName, age, gender and contact are required")
	}

	p, err := h.svc.Register(c.Request().Context(), RegisterInput{
		PatientName: req.PatientName,
		Caste:       req.Caste,
		Age:         req.Age,
		Gender:      req.Gender,
		Contact:     req.Contact,
		Email:       req.Email,
		Password:    req.Password,
		Conditions:  req.Conditions,
		Address:     req.Address,
		ImagePath:   req.Image,
		WardID:      req.WardID,
		Doctors:     req.Doctors,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusCreated, "Patient registered successfully!", response.Body{"patient": p})
}

// bindRegisterRequest accepts JSON or multipart form bodies. The uploaded
// image is persisted as an opaque path only.
func bindRegisterRequest(c echo.Context) (*registerPatientRequest, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		var req registerPatientRequest
		if err := c.Bind(&req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	age, _ := strconv.Atoi(c.FormValue("age"))
	req := &registerPatientRequest{
		PatientName: c.FormValue("patientName"),
		Caste:       c.FormValue("caste"),
		Age:         age,
		Gender:      c.FormValue("gender"),
		Contact:     c.FormValue("contact"),
		Email:       c.FormValue("email"),
		Password:    c.FormValue("password"),
		Address:     c.FormValue("address"),
		WardID:      c.FormValue("ward"),
	}
	if form, err := c.MultipartForm(); err == nil {
		req.Doctors = form.Value["doctors"]
		req.Conditions = form.Value["conditions"]
	}
	if file, err := c.FormFile("image"); err == nil {
		req.Image = file.Filename
	}
	return req, nil
}

func (h *Handler) GetAllPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	if total == 0 {
		return response.Fail(c, http.StatusNotFound, "No Patient found!")
	}
	return response.OK(c, http.StatusOK, "Patients retrieved successfully!", response.Body{
		"patients": patients,
		"total":    total,
	})
}

func (h *Handler) GetSinglePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Patient retrieved successfully!", response.Body{"patient": p})
}

type updatePatientRequest struct {
	PatientName *string    `json:"patientName"`
	Caste       *string    `json:"caste"`
	Age         *int       `json:"age"`
	Gender      *string    `json:"gender"`
	Status      *string    `json:"status"`
	Email       *string    `json:"email"`
	Conditions  []string   `json:"conditions"`
	Address     *string    `json:"address"`
	Image       *string    `json:"image"`
	WardID      *string    `json:"ward"`
	Doctors     doctorList `json:"doctors"`
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	var req updatePatientRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.Update(c.Request().Context(), id, UpdateInput{
		PatientName: req.PatientName,
		Caste:       req.Caste,
		Age:         req.Age,
		Gender:      req.Gender,
		Status:      req.Status,
		Email:       req.Email,
		Conditions:  req.Conditions,
		Address:     req.Address,
		ImagePath:   req.Image,
		WardID:      req.WardID,
		Doctors:     req.Doctors,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Patient updated successfully!", response.Body{"patient": p})
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	if err := h.svc.Delete(c.Request().Context(), id); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Patient deleted successfully!", nil)
}

type unassignDoctorRequest struct {
	DoctorID string `json:"doctorId" validate:"required"`
}

func (h *Handler) UnassignDoctor(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	var req unassignDoctorRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid doctor id")
	}
	if err := h.svc.UnassignDoctor(c.Request().Context(), id, doctorID); err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Doctor unassigned successfully!", nil)
}

func (h *Handler) GetPatientReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	report, err := h.svc.GetReport(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Patient report generated successfully!", response.Body{"report": report})
}

func (h *Handler) SmartScheduler(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	next, score, err := h.svc.SmartSchedule(c.Request().Context(), id)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Suggested appointment computed successfully!", response.Body{
		"suggestedDate": next,
		"riskScore":     score,
	})
}

func (h *Handler) StatsTotal(c echo.Context) error {
	n, err := h.svc.TotalPatients(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Stats retrieved successfully!", response.Body{"totalPatients": n})
}

func (h *Handler) StatsByAge(c echo.Context) error {
	buckets, err := h.svc.PatientsByAge(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Stats retrieved successfully!", response.Body{"patientsByAge": buckets})
}

func (h *Handler) StatsByGender(c echo.Context) error {
	counts, err := h.svc.PatientsByGender(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Stats retrieved successfully!", response.Body{"patientsByGender": counts})
}

func (h *Handler) StatsAverageRisk(c echo.Context) error {
	avg, err := h.svc.AverageRisk(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Stats retrieved successfully!", response.Body{"averageRisk": avg})
}
