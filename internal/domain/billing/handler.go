package billing

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
	g := api.Group("/billing")
	g.POST("/createBill", h.CreateBill, auth.RequireRole("admin"))
	g.GET("/bills", h.GetAllBills, auth.RequireRole("admin"))
	g.GET("/patient/:patientId", h.GetByPatient)
	g.PUT("/:id/payment", h.AddPayment, auth.RequireRole("admin"))
	g.GET("/:billId/invoice", h.GetInvoice)
	g.GET("/:billId/audit", h.GetAudit, auth.RequireRole("admin"))
}

type billItemRequest struct {
	Description string  `json:"description" validate:"required"`
	Quantity    int     `json:"quantity" validate:"required,min=1"`
	UnitPrice   float64 `json:"unitPrice" validate:"min=0"`
}

type createBillRequest struct {
	PatientID string            `json:"patientId" validate:"required"`
	Items     []billItemRequest `json:"items" validate:"required,min=1,dive"`
}

func (h *Handler) CreateBill(c echo.Context) error {
	var req createBillRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "patientId and items are required")
	}
	patientID, err := uuid.Parse(req.PatientID)
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}

	items := make([]ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, ItemInput{
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
		})
	}

	userID := actorID(c)
	b, err := h.svc.CreateBill(c.Request().Context(), patientID, items, userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusCreated, "Bill created successfully!", response.Body{"bill": b})
}

func (h *Handler) GetAllBills(c echo.Context) error {
	pg := pagination.FromContext(c)
	bills, total, err := h.svc.ListBills(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Bills retrieved successfully!", response.Body{
		"bills": bills,
		"total": total,
	})
}

func (h *Handler) GetByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid patient id")
	}
	bills, err := h.svc.ListByPatient(c.Request().Context(), patientID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Bills retrieved successfully!", response.Body{"bills": bills})
}

type addPaymentRequest struct {
	Amount float64 `json:"amount" validate:"required"`
	Method string  `json:"method" validate:"required"`
}

func (h *Handler) AddPayment(c echo.Context) error {
	billID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid bill id")
	}
	var req addPaymentRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "amount and method are required")
	}

	userID := actorID(c)
	b, err := h.svc.AddPayment(c.Request().Context(), billID, req.Amount, req.Method, userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Payment recorded successfully!", response.Body{"bill": b})
}

func (h *Handler) GetInvoice(c echo.Context) error {
	billID, err := uuid.Parse(c.Param("billId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid bill id")
	}
	inv, err := h.svc.GetInvoice(c.Request().Context(), billID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Invoice retrieved successfully!", response.Body{"invoice": inv})
}

func (h *Handler) GetAudit(c echo.Context) error {
	billID, err := uuid.Parse(c.Param("billId"))
	if err != nil {
		return response.Fail(c, http.StatusBadRequest, "invalid bill id")
	}
	entries, err := h.svc.GetAudit(c.Request().Context(), billID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Audit trail retrieved successfully!", response.Body{"audit": entries})
}

func actorID(c echo.Context) *uuid.UUID {
	raw := auth.UserIDFromContext(c.Request().Context())
	if raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
