package services

import (
	"errors"
	"fmt"
)

// Client-side rejections. These are reported before any network call.
var (
	ErrInvalidFileType = errors.New("Invalid file type. Please select an Excel file (.xlsx or .xls)")
	ErrFileTooLarge    = errors.New("File too large. Maximum size is 16MB")
	ErrNoFile          = errors.New("No file selected")
	ErrNotValidated    = errors.New("Please select a valid file before processing")
	ErrNoResults       = errors.New("No results to download")
	ErrBusy            = errors.New("A request is already in progress")
	ErrRowNotFound     = errors.New("Row not found")
)

// APIError is a logical failure reported by the pricing API (success:false).
type APIError struct {
	Op         string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// TransportError wraps a request that never produced a decodable response.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Operation names, used for log context and for picking display messages.
const (
	OpCalculate = "calculate"
	OpValidate  = "validate"
	OpProcess   = "process"
	OpTemplate  = "template"
	OpDownload  = "download"
	OpHealth    = "health"
)

var fallbackMessages = map[string]string{
	OpCalculate: "Calculation failed",
	OpValidate:  "Validation failed",
	OpProcess:   "Processing failed",
	OpTemplate:  "Template download failed",
	OpDownload:  "Download failed",
	OpHealth:    "Pricing API unavailable",
}

var networkPrefixes = map[string]string{
	OpCalculate: "Network error: ",
	OpValidate:  "Network error during validation: ",
	OpProcess:   "Network error during processing: ",
}

// DisplayMessage maps any error to the text shown to the user, without the
// leading error marker.
func DisplayMessage(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		if msg, ok := fallbackMessages[apiErr.Op]; ok {
			return msg
		}
		return "Request failed"
	}

	var tErr *TransportError
	if errors.As(err, &tErr) {
		prefix, ok := networkPrefixes[tErr.Op]
		if !ok {
			prefix = "Network error: "
		}
		return prefix + tErr.Err.Error()
	}

	return err.Error()
}

// ErrorText is the rendered error region content for err.
func ErrorText(err error) string {
	return "❌ " + DisplayMessage(err)
}
