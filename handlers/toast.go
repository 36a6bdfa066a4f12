package handlers

import (
	"encoding/json"

	"github.com/pocketbase/pocketbase/core"
	"go.uber.org/zap"

	"shouldcost/logger"
)

// SetToast sets the HX-Trigger response header to show a toast notification
// on the client via HTMX. If an HX-Trigger header already exists, the toast
// payload is merged into the existing JSON object.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{
		"message": message,
		"type":    toastType,
	}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			logger.Warn(e.Request.Context(), "Existing HX-Trigger is not valid JSON, overwriting", zap.Error(err))
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		logger.Error(e.Request.Context(), "Failed to marshal HX-Trigger JSON", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))
}

// ErrorToast sets an error toast and prevents HTMX from swapping the error text into the DOM.
// It sets HX-Reswap: none so the response body is ignored by HTMX, while the HX-Trigger
// header still fires the toast event.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}

// isHTMX reports whether the request was issued by htmx.
func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true"
}

// failDownload answers a failed file request. Downloads open in a new tab, so
// a plain request gets a readable page while an htmx one gets a toast.
func failDownload(e *core.RequestEvent, statusCode int, message string) error {
	if isHTMX(e) {
		return ErrorToast(e, statusCode, message)
	}
	return e.String(statusCode, message)
}
