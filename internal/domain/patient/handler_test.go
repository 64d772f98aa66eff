package patient

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/validate"
)

func TestDoctorList_AcceptsStringOrArray(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int
	}{
		{"bare string", `"3d6f0e8a-4f7e-4cbb-9c39-8a2f5d1c2b11"`, 1},
		{"array", `["3d6f0e8a-4f7e-4cbb-9c39-8a2f5d1c2b11","9f2c1a3b-1111-4222-8333-444455556666"]`, 2},
		{"empty string", `""`, 0},
		{"empty array", `[]`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d doctorList
			if err := json.Unmarshal([]byte(tc.raw), &d); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(d) != tc.want {
				t.Errorf("expected %d ids, got %d", tc.want, len(d))
			}
		})
	}
}

func TestHandler_RegisterPatient_EnvelopeOnError(t *testing.T) {
	f := newFixture()
	h := NewHandler(f.svc)

	e := echo.New()
	e.Validator = validate.New()

	// Missing required fields.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patient/registerPatient",
		strings.NewReader(`{"patientName":"X"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.RegisterPatient(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if success, ok := resp["success"].(bool); !ok || success {
		t.Error("error envelope must carry success=false")
	}
	if _, ok := resp["message"].(string); !ok {
		t.Error("error envelope must carry a message")
	}
}

func TestHandler_RegisterPatient_Success(t *testing.T) {
	f := newFixture()
	f.wards.addWard("W", 5)
	f.roster.addDoctor("Dr A")
	h := NewHandler(f.svc)

	e := echo.New()
	e.Validator = validate.New()

	body := `{"patientName":"Jane","age":30,"gender":"Female","contact":"555","password":"pw","doctors":""}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/patient/registerPatient", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()

	if err := h.RegisterPatient(e.NewContext(req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Error("response must not leak the password")
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp["message"] != "Patient registered successfully!" {
		t.Errorf("unexpected message: %v", resp["message"])
	}
}
