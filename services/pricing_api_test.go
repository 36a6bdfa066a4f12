package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"shouldcost/testhelpers"
)

func newTestClient(fake *testhelpers.FakePricingAPI) *PricingClient {
	return NewPricingClient(fake.URL+"/", 5*time.Second)
}

func TestPricingClient_Calculate(t *testing.T) {
	fake := testhelpers.NewFakePricingAPI(t)
	var sent map[string]any
	fake.Handle("/calculate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %s", r.Method, r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &sent)
		testhelpers.RespondJSON(w, http.StatusOK, testhelpers.SampleCalculateResponse())
	})

	form := NewShipmentForm()
	form.Origin, form.Destination, form.WeightRaw = "Austin, TX", "Denver, CO", "5000"
	form.Rates["fuelSurcharge"] = 15

	result, err := newTestClient(fake).Calculate(context.Background(), form.ToRequest())
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if result.TotalShouldCost != 4821.5 || result.Breakdown == nil || result.Breakdown.TariffType != "interstate" {
		t.Errorf("unexpected result %+v", result)
	}

	if _, ok := sent["distance_miles"]; ok {
		t.Error("distance_miles must be omitted when not entered")
	}
	rates, _ := sent["custom_rates"].(map[string]any)
	if rates["fuel_surcharge"] != 0.15 {
		t.Errorf("expected fuel_surcharge 0.15, got %v", rates["fuel_surcharge"])
	}
}

func TestPricingClient_Errors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{"api message", testhelpers.RespondFailure(http.StatusBadRequest, "Unknown origin city"), "Unknown origin city"},
		{"api without message", testhelpers.RespondFailure(http.StatusInternalServerError, ""), "Calculation failed"},
		{
			"success without result",
			func(w http.ResponseWriter, r *http.Request) {
				testhelpers.RespondJSON(w, http.StatusOK, map[string]any{"success": true})
			},
			"Calculation failed",
		},
		{
			"not json",
			func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "<html>bad gateway</html>", http.StatusBadGateway)
			},
			"Network error: ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testhelpers.NewFakePricingAPI(t)
			fake.Handle("/calculate", tt.handler)

			_, err := newTestClient(fake).Calculate(context.Background(), CalculateRequest{})
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := DisplayMessage(err); !strings.HasPrefix(got, tt.want) {
				t.Errorf("DisplayMessage = %q, want prefix %q", got, tt.want)
			}
		})
	}
}

func TestPricingClient_TransportError(t *testing.T) {
	fake := testhelpers.NewFakePricingAPI(t)
	client := newTestClient(fake)
	fake.Close()

	_, err := client.ValidateBulk(context.Background(), UploadFile{Name: "moves.xlsx", Data: []byte("x")})

	var tErr *TransportError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected a TransportError, got %v", err)
	}
	if !strings.HasPrefix(ErrorText(err), "❌ Network error during validation: ") {
		t.Errorf("unexpected error text %q", ErrorText(err))
	}
}

func TestPricingClient_ValidateAndProcess(t *testing.T) {
	fake := testhelpers.NewFakePricingAPI(t)
	client := newTestClient(fake)
	file := UploadFile{Name: "moves.xlsx", Size: 8, Data: []byte("workbook")}

	validation, err := client.ValidateBulk(context.Background(), file)
	if err != nil {
		t.Fatalf("ValidateBulk: %v", err)
	}
	if !validation.Valid || validation.RowCount != 3 {
		t.Errorf("unexpected validation %+v", validation)
	}

	rates := DefaultRateSettings()
	rates["discountRate"] = 10
	outcome, err := client.ProcessBulk(context.Background(), file, rates.CustomRates())
	if err != nil {
		t.Fatalf("ProcessBulk: %v", err)
	}
	if outcome.Summary.SuccessRate != "66.7%" || len(outcome.Results) != 3 || !outcome.Results[2].Failed() {
		t.Errorf("unexpected outcome %+v", outcome)
	}

	var sent CustomRates
	if err := json.Unmarshal([]byte(fake.LastFormValue("/bulk/process", "custom_rates")), &sent); err != nil {
		t.Fatalf("custom_rates is not JSON: %v", err)
	}
	if sent.Discount != 0.1 || sent.FullPack != 1.35 || sent.InsurancePer1000 != 5 {
		t.Errorf("unexpected custom rates %+v", sent)
	}
}

func TestPricingClient_Files(t *testing.T) {
	fake := testhelpers.NewFakePricingAPI(t)
	client := newTestClient(fake)

	tmpl, err := client.Template(context.Background())
	if err != nil {
		t.Fatalf("Template: %v", err)
	}
	if tmpl.ContentType != testhelpers.XLSXContentType || !strings.Contains(tmpl.ContentDisposition, "bulk_upload_template.xlsx") {
		t.Errorf("unexpected template download %+v", tmpl)
	}

	payload := `[{"row_number":2,"status":"success","origin":"A & B","destination":"C"}]`
	if _, err := client.DownloadExcel(context.Background(), payload); err != nil {
		t.Fatalf("DownloadExcel: %v", err)
	}
	if got := fake.LastRequest("/bulk/download/excel").URL.Query().Get("results"); got != payload {
		t.Errorf("results query = %q, want %q", got, payload)
	}

	fake.Handle("/bulk/template", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no template", http.StatusNotFound)
	})
	_, err = client.Template(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound || apiErr.Message != "no template" {
		t.Errorf("expected APIError 404, got %v", err)
	}
}

func TestPricingClient_Health(t *testing.T) {
	fake := testhelpers.NewFakePricingAPI(t)
	client := newTestClient(fake)

	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("expected healthy, got %v", err)
	}

	fake.Handle("/health", func(w http.ResponseWriter, r *http.Request) {
		testhelpers.RespondJSON(w, http.StatusOK, map[string]string{"status": "degraded"})
	})
	if err := client.Health(context.Background()); err == nil {
		t.Error("expected an error for a non-healthy status")
	}
	if client.BaseURL() != fake.URL {
		t.Errorf("expected trailing slash trimmed, got %q", client.BaseURL())
	}
}
