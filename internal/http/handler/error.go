package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"kurssite/internal/http/middleware"
	"kurssite/internal/view"
)

// apiPrefix routes errors to the JSON envelope instead of the HTML page.
const apiPrefix = "/api/"

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_SLUG", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type statusText struct {
	code    string
	message string
	page    string
}

var statusTexts = map[int]statusText{
	fiber.StatusBadRequest:            {code: "BAD_REQUEST", message: "bad request", page: "Ungültige Anfrage"},
	fiber.StatusUnauthorized:          {code: "UNAUTHORIZED", message: "unauthorized", page: "Nicht angemeldet"},
	fiber.StatusNotFound:              {code: "NOT_FOUND", message: "resource not found", page: "Seite nicht gefunden"},
	fiber.StatusMethodNotAllowed:      {code: "METHOD_NOT_ALLOWED", message: "method not allowed", page: "Methode nicht erlaubt"},
	fiber.StatusRequestEntityTooLarge: {code: "PAYLOAD_TOO_LARGE", message: "request body too large", page: "Anfrage zu groß"},
	fiber.StatusUnsupportedMediaType:  {code: "UNSUPPORTED_MEDIA", message: "unsupported media type", page: "Medientyp nicht unterstützt"},
	fiber.StatusTooManyRequests:       {code: "TOO_MANY_REQUESTS", message: "too many requests", page: "Zu viele Anfragen"},
	fiber.StatusServiceUnavailable:    {code: "SERVICE_UNAVAILABLE", message: "dependency unavailable", page: "Dienst nicht verfügbar"},
}

var (
	internalError = statusText{code: "INTERNAL_ERROR", message: "internal server error", page: "Interner Fehler"}
	requestError  = statusText{code: "REQUEST_ERROR", message: "request failed", page: "Anfrage fehlgeschlagen"}
)

// textFor keeps the status and falls back to a generic text for codes
// without their own entry.
func textFor(status int) statusText {
	if text, ok := statusTexts[status]; ok {
		return text
	}
	if status < fiber.StatusInternalServerError {
		return requestError
	}
	return internalError
}

// ErrorHandler returns the global error handler. Site routes get an HTML
// error page inside the layout; /api routes get the JSON envelope.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) && fe.Code >= fiber.StatusBadRequest {
			status = fe.Code
		}
		text := textFor(status)

		if strings.HasPrefix(c.Path(), apiPrefix) {
			return writeError(c, status, text.code, text.message)
		}
		return renderHTML(c, status, view.Page(text.page, view.ErrorPage(status, text.page)))
	}
}
