package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestTokenIssuer_RoundTrip(t *testing.T) {
	issuer := NewTokenIssuer("test-secret", 30*time.Minute)

	token, err := issuer.Issue("user-1", "a@b.c", "doctor")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "doctor" || claims.Email != "a@b.c" {
		t.Errorf("unexpected claims: %+v", claims)
	}
}

func TestTokenIssuer_RejectsWrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", time.Minute)
	other := NewTokenIssuer("secret-b", time.Minute)

	token, _ := issuer.Issue("user-1", "a@b.c", "patient")
	if _, err := other.Verify(token); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestTokenIssuer_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer("secret", -time.Minute)
	token, _ := issuer.Issue("user-1", "a@b.c", "patient")
	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected verification failure for expired token")
	}
}

func TestJWTMiddleware_MissingToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	issuer := NewTokenIssuer("secret", time.Minute)
	handler := JWTMiddleware(issuer)(func(c echo.Context) error { return nil })

	err := handler(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %v", err)
	}
}

func TestJWTMiddleware_SetsContext(t *testing.T) {
	e := echo.New()
	issuer := NewTokenIssuer("secret", time.Minute)
	token, _ := issuer.Issue("user-9", "x@y.z", "doctor")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID, gotRole string
	handler := JWTMiddleware(issuer)(func(c echo.Context) error {
		gotID = UserIDFromContext(c.Request().Context())
		gotRole = RoleFromContext(c.Request().Context())
		return nil
	})
	if err := handler(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotID != "user-9" || gotRole != "doctor" {
		t.Errorf("expected user-9/doctor, got %s/%s", gotID, gotRole)
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	issuer := NewTokenIssuer("secret", time.Minute)

	cases := []struct {
		role    string
		allowed bool
	}{
		{"doctor", true},
		{"admin", true},
		{"patient", false},
	}

	for _, tc := range cases {
		token, _ := issuer.Issue("u", "e", tc.role)
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		handler := JWTMiddleware(issuer)(RequireRole("doctor")(func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		}))
		err := handler(c)

		if tc.allowed && err != nil {
			t.Errorf("role %s: expected access, got %v", tc.role, err)
		}
		if !tc.allowed {
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusForbidden {
				t.Errorf("role %s: expected 403, got %v", tc.role, err)
			}
		}
	}
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{}
	hashed, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hashed == "s3cret" {
		t.Error("hash must not equal plaintext")
	}
	if !h.Compare(hashed, "s3cret") {
		t.Error("expected matching password to compare true")
	}
	if h.Compare(hashed, "wrong") {
		t.Error("expected mismatching password to compare false")
	}
}
