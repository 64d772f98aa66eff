// Package response provides the JSON envelope used by every handler:
// {"success": bool, "message": string, ...payload}.
package response

import (
	"github.com/labstack/echo/v4"

	"github.com/carebridge/hms/internal/platform/apperr"
)

// Body is the standard response envelope. Extra payload fields are merged in
// alongside success/message.
type Body map[string]interface{}

// OK writes a success envelope with the given status, message and payload.
func OK(c echo.Context, status int, message string, payload Body) error {
	body := Body{"success": true, "message": message}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

// Fail writes a failure envelope with an explicit status.
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Body{"success": false, "message": message})
}

// Error maps a domain error to its status code and client-safe message.
func Error(c echo.Context, err error) error {
	return Fail(c, apperr.StatusCode(err), apperr.Message(err))
}
