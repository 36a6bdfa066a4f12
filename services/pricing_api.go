package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// PricingAPI is the subset of the remote pricing service the page controllers
// depend on.
type PricingAPI interface {
	Calculate(ctx context.Context, req CalculateRequest) (*EstimateResult, error)
	ValidateBulk(ctx context.Context, file UploadFile) (*BulkValidation, error)
	ProcessBulk(ctx context.Context, file UploadFile, rates CustomRates) (*BulkOutcome, error)
}

// PricingClient talks to the remote pricing API over HTTP. It never retries;
// a failed call is reported once and left to the user to repeat.
type PricingClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewPricingClient returns a client for the pricing API at baseURL.
func NewPricingClient(baseURL string, timeout time.Duration) *PricingClient {
	return &PricingClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// BaseURL returns the pricing API root this client targets.
func (c *PricingClient) BaseURL() string {
	return c.baseURL
}

// Calculate prices a single shipment.
func (c *PricingClient) Calculate(ctx context.Context, req CalculateRequest) (*EstimateResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	var out calculateResponse
	status, err := c.doJSON(httpReq, OpCalculate, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success || out.Result == nil {
		return nil, &APIError{Op: OpCalculate, StatusCode: status, Message: out.Error}
	}
	return out.Result, nil
}

// ValidateBulk uploads a spreadsheet for format validation.
func (c *PricingClient) ValidateBulk(ctx context.Context, file UploadFile) (*BulkValidation, error) {
	httpReq, err := c.newUploadRequest(ctx, "/bulk/validate", file, nil)
	if err != nil {
		return nil, err
	}

	var out validateResponse
	status, err := c.doJSON(httpReq, OpValidate, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success || out.Validation == nil {
		return nil, &APIError{Op: OpValidate, StatusCode: status, Message: out.Error}
	}
	return out.Validation, nil
}

// ProcessBulk uploads a spreadsheet together with the rate overrides and
// returns every row's outcome.
func (c *PricingClient) ProcessBulk(ctx context.Context, file UploadFile, rates CustomRates) (*BulkOutcome, error) {
	ratesJSON, err := json.Marshal(rates)
	if err != nil {
		return nil, fmt.Errorf("marshal custom rates: %w", err)
	}

	httpReq, err := c.newUploadRequest(ctx, "/bulk/process", file, map[string]string{
		"custom_rates": string(ratesJSON),
	})
	if err != nil {
		return nil, err
	}

	var out processResponse
	status, err := c.doJSON(httpReq, OpProcess, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return nil, &APIError{Op: OpProcess, StatusCode: status, Message: out.Error}
	}
	return &BulkOutcome{
		Summary: out.Summary,
		Results: out.Results,
		Errors:  out.Errors,
	}, nil
}

// Download is a file produced by the pricing API.
type Download struct {
	ContentType        string
	ContentDisposition string
	Body               []byte
}

// Template fetches the blank bulk-upload workbook.
func (c *PricingClient) Template(ctx context.Context) (*Download, error) {
	return c.fetchFile(ctx, OpTemplate, c.baseURL+"/bulk/template")
}

// DownloadExcel asks the pricing API to regenerate a results workbook from
// the given rows. The rows travel as a JSON-encoded `results` query value.
func (c *PricingClient) DownloadExcel(ctx context.Context, resultsJSON string) (*Download, error) {
	q := url.Values{}
	q.Set("results", resultsJSON)
	return c.fetchFile(ctx, OpDownload, c.baseURL+"/bulk/download/excel?"+q.Encode())
}

// Health checks that the pricing API answers its health endpoint.
func (c *PricingClient) Health(ctx context.Context) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")

	var out struct {
		Status string `json:"status"`
	}
	status, err := c.doJSON(httpReq, OpHealth, &out)
	if err != nil {
		return err
	}
	if status != http.StatusOK || out.Status != "healthy" {
		return &APIError{Op: OpHealth, StatusCode: status, Message: fmt.Sprintf("unexpected health status %q (HTTP %d)", out.Status, status)}
	}
	return nil
}

func (c *PricingClient) newUploadRequest(ctx context.Context, path string, file UploadFile, fields map[string]string) (*http.Request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, fmt.Errorf("write form field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

// doJSON executes req and decodes the body whatever the status code: the
// pricing API reports logical failures as JSON on 4xx/5xx responses.
func (c *PricingClient) doJSON(req *http.Request, op string, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, &TransportError{Op: op, Err: fmt.Errorf("decode response (HTTP %d): %w", resp.StatusCode, err)}
	}
	return resp.StatusCode, nil
}

func (c *PricingClient) fetchFile(ctx context.Context, op, rawURL string) (*Download, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	return &Download{
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
		Body:               body,
	}, nil
}
