package authuser

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	g := api.Group("/auth")
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
}

type registerRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "name, email, password and role are required")
	}
	u, err := h.svc.Register(c.Request().Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusCreated, "User registered successfully!", response.Body{"user": u})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(&req); err != nil {
		return response.Fail(c, http.StatusBadRequest, "email and password are required")
	}
	token, identity, err := h.svc.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	return response.OK(c, http.StatusOK, "Login successful!", response.Body{
		"token": token,
		"user":  identity,
	})
}
