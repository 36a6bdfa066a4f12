// Package testhelpers provides a fake pricing API and HTML assertions for
// handler and client tests.
package testhelpers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// XLSXContentType is the media type the fake serves workbooks with.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// FakePricingAPI is an httptest server answering every pricing endpoint with
// a canned success. Individual routes can be replaced with Handle.
type FakePricingAPI struct {
	*httptest.Server

	mu     sync.Mutex
	routes map[string]http.HandlerFunc
	hits   map[string]int
	last   map[string]*http.Request
	forms  map[string]map[string]string
}

// NewFakePricingAPI starts a fake pricing API that is closed when the test
// finishes.
func NewFakePricingAPI(t *testing.T) *FakePricingAPI {
	t.Helper()

	f := &FakePricingAPI{
		routes: map[string]http.HandlerFunc{
			"/calculate":           func(w http.ResponseWriter, r *http.Request) { RespondJSON(w, http.StatusOK, SampleCalculateResponse()) },
			"/bulk/validate":       func(w http.ResponseWriter, r *http.Request) { RespondJSON(w, http.StatusOK, SampleValidateResponse()) },
			"/bulk/process":        func(w http.ResponseWriter, r *http.Request) { RespondJSON(w, http.StatusOK, SampleProcessResponse()) },
			"/bulk/template":       serveWorkbook("bulk_upload_template.xlsx"),
			"/bulk/download/excel": serveWorkbook("should_cost_results.xlsx"),
			"/health":              func(w http.ResponseWriter, r *http.Request) { RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"}) },
		},
		hits:  make(map[string]int),
		last:  make(map[string]*http.Request),
		forms: make(map[string]map[string]string),
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(f.Close)
	return f
}

func (f *FakePricingAPI) serve(w http.ResponseWriter, r *http.Request) {
	fields := map[string]string{}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(32 << 20); err == nil {
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					fields[k] = v[0]
				}
			}
		}
	}

	f.mu.Lock()
	h, ok := f.routes[r.URL.Path]
	f.hits[r.URL.Path]++
	f.last[r.URL.Path] = r
	f.forms[r.URL.Path] = fields
	f.mu.Unlock()

	if !ok {
		http.NotFound(w, r)
		return
	}
	h(w, r)
}

// Handle replaces the handler for path.
func (f *FakePricingAPI) Handle(path string, h http.HandlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[path] = h
}

// Hits returns how many requests reached path.
func (f *FakePricingAPI) Hits(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hits[path]
}

// LastRequest returns the most recent request to path, or nil.
func (f *FakePricingAPI) LastRequest(path string) *http.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last[path]
}

// LastFormValue returns a multipart field of the most recent upload to path.
func (f *FakePricingAPI) LastFormValue(path, field string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forms[path][field]
}

// RespondJSON writes v as a JSON body with the given status.
func RespondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondFailure writes a success:false body with the given status.
func RespondFailure(status int, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, status, map[string]any{"success": false, "error": message})
	}
}

func serveWorkbook(filename string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", XLSXContentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
		_, _ = w.Write([]byte("PK\x03\x04" + filename))
	}
}

// SampleCalculateResponse is a successful /calculate body for Austin to Denver.
func SampleCalculateResponse() map[string]any {
	return map[string]any{
		"success": true,
		"result": map[string]any{
			"origin":            "Austin, TX",
			"destination":       "Denver, CO",
			"distance_miles":    920.4,
			"weight_pounds":     5000,
			"total_should_cost": 4821.5,
			"breakdown": map[string]any{
				"material_base_cost":      1200,
				"material_adjusted_cost":  1250,
				"transportation_cost":     2100,
				"packing_service":         "self_pack",
				"packing_multiplier":      1,
				"storage_option":          "no_storage",
				"storage_multiplier":      1,
				"fuel_surcharge_rate":     0.12,
				"fuel_charge":             252,
				"subtotal_before_tariffs": 4500,
				"interstate_tariff":       135,
				"state_tax":               186.5,
				"total_tariffs_and_taxes": 321.5,
				"tariff_type":             "interstate",
				"origin_state":            "TX",
				"destination_state":       "CO",
			},
		},
	}
}

// SampleValidateResponse is a valid /bulk/validate body with three rows.
func SampleValidateResponse() map[string]any {
	return map[string]any{
		"success": true,
		"validation": map[string]any{
			"valid":     true,
			"row_count": 3,
			"warnings":  []string{},
			"errors":    []string{},
		},
	}
}

// SampleProcessResponse is a /bulk/process body with two priced rows and one
// failure.
func SampleProcessResponse() map[string]any {
	return map[string]any{
		"success": true,
		"summary": map[string]any{
			"total_rows":   3,
			"successful":   2,
			"failed":       1,
			"success_rate": "66.7%",
		},
		"results": []map[string]any{
			{
				"row_number": 2, "status": "success",
				"origin": "Austin, TX", "destination": "Denver, CO",
				"distance_miles": 920, "weight_pounds": 5000, "total_should_cost": 4821.5,
				"breakdown": map[string]any{"packing_service": "self_pack", "storage_option": "no_storage", "origin_region": "south"},
			},
			{
				"row_number": 3, "status": "success",
				"origin": "Reno, NV", "destination": "Boise, ID",
				"distance_miles": 420, "weight_pounds": 3000, "total_should_cost": 1980,
			},
			{
				"row_number": 4, "status": "failed",
				"origin": "Nowhere", "destination": "Denver, CO",
				"error": "Unknown origin",
			},
		},
		"errors": []string{"Row 4: Unknown origin"},
	}
}

// AssertHTMLContains checks that body contains all specified fragments.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q, but it did not.\nBody (first 500 chars): %s", frag, truncate(body, 500))
		}
	}
}

// AssertHTMLNotContains checks that body contains none of the fragments.
func AssertHTMLNotContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if strings.Contains(body, frag) {
			t.Errorf("expected HTML not to contain %q", frag)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
