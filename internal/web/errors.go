package web

// errors.go provides unified error response handling for the web layer.
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err, statusCode)
//  3. Error is wrapped via core.NewUserError to get user-friendly message
//  4. Technical error is logged with the request ID for correlation
//  5. User message is rendered as JSON for API clients or as the error page

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/JonMunkholm/prayerboard/internal/core"
	"github.com/JonMunkholm/prayerboard/internal/logging"
	"github.com/JonMunkholm/prayerboard/internal/web/templates"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// respondError logs err and writes the mapped user message in the format the
// client expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userErr := core.NewUserError(err)
	userMsg := userErr.User

	// Mapped failures (upstream down, bad sheet) are expected operating
	// conditions; only unclassified errors are logged as errors.
	level := slog.LevelError
	if core.IsUserFacing(err) {
		level = slog.LevelWarn
	}
	logging.WithFields(r.Context(),
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
	).Log(r.Context(), level, "request error",
		"error", userErr.Technical.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		writeJSON(w, statusCode, ErrorResponse{
			Error:   userMsg.Message,
			Message: userMsg.Message,
			Action:  userMsg.Action,
			Code:    userMsg.Code,
		})
		return
	}

	renderHTML(w, r, statusCode, templates.ErrorPage(alertFrom(userMsg)))
}

func alertFrom(msg core.UserMessage) templates.Alert {
	return templates.Alert{Message: msg.Message, Action: msg.Action, Code: msg.Code}
}

// wantsJSON checks if the client prefers JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	// API routes default to JSON
	return strings.HasPrefix(r.URL.Path, "/api/")
}
