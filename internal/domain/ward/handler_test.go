package ward

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/validate"
)

func newTestHandler() (*Handler, *mockRepo) {
	repo := newMockRepo()
	return NewHandler(newTestService(repo)), repo
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validate.New()
	return e
}

func TestHandler_AddWard(t *testing.T) {
	h, repo := newTestHandler()
	e := newEcho()

	body := `{"wardName":"General A","wardType":"Male","capacity":4}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/ward/addWard", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.AddWard(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["message"] != "Ward Added!" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
	if len(repo.wards) != 1 {
		t.Errorf("expected 1 ward stored, got %d", len(repo.wards))
	}
}

func TestHandler_AddWard_MissingFields(t *testing.T) {
	h, _ := newTestHandler()
	e := newEcho()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ward/addWard", strings.NewReader(`{"wardName":"X"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.AddWard(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_GetAllWards_Empty(t *testing.T) {
	h, _ := newTestHandler()
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ward/getAllWards", nil)
	rec := httptest.NewRecorder()

	if err := h.GetAllWards(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for empty ward list, got %d", rec.Code)
	}
}

func TestHandler_GetSingleWard(t *testing.T) {
	h, repo := newTestHandler()
	e := newEcho()

	w := &Ward{WardName: "B", WardType: "Female", Capacity: 2}
	if err := repo.Create(context.Background(), w); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(w.ID.String())

	if err := h.GetSingleWard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestHandler_GetSingleWard_BadID(t *testing.T) {
	h, _ := newTestHandler()
	e := newEcho()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("not-a-uuid")

	if err := h.GetSingleWard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandler_DeleteWard(t *testing.T) {
	h, repo := newTestHandler()
	e := newEcho()

	w := &Ward{WardName: "C", WardType: "Kids", Capacity: 2}
	if err := repo.Create(context.Background(), w); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(w.ID.String())

	if err := h.DeleteWard(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(repo.wards) != 0 {
		t.Error("ward should be deleted")
	}
}
