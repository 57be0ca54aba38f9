// Package scanner is the client for the external receipt-scanning
// service: it uploads a receipt image and gets back structured line
// items plus optional detected totals. The engine treats the result as
// nothing more than an initial item ledger seed and a tip prefill
// hint; image content is the scanning service's problem.
package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
)

// ErrUnsupportedImage is returned for content types the scanning
// service does not accept.
var ErrUnsupportedImage = errors.New("unsupported image type")

// allowedTypes mirrors the scanning service's accepted uploads.
var allowedTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/heic": true,
}

// ScannedItem is one line item extracted from a receipt.
type ScannedItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

// ScanResult is the scanning service's response. Optional fields are
// nil when the model couldn't find them on the receipt.
type ScanResult struct {
	Items      []ScannedItem `json:"items"`
	Subtotal   *float64      `json:"subtotal"`
	Tax        *float64      `json:"tax"`
	Total      *float64      `json:"total"`
	ScannedTip *float64      `json:"scanned_tip"`
}

// Client talks to the receipt-scanning service over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a scanner client for the given base URL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Scan uploads a receipt image and returns the parsed result.
func (c *Client) Scan(ctx context.Context, image []byte, contentType, filename string) (*ScanResult, error) {
	if !allowedTypes[contentType] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, contentType)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/scan", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("scan request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("scan service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result ScanResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode scan response: %w", err)
	}
	return &result, nil
}
