package scanner

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestScan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/scan" {
			t.Errorf("path = %s, want /api/v1/scan", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("upload is not multipart: %v", err)
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("missing file part: %v", err)
		}
		defer file.Close()
		if header.Filename != "receipt.jpg" {
			t.Errorf("filename = %s, want receipt.jpg", header.Filename)
		}
		if ct := header.Header.Get("Content-Type"); ct != "image/jpeg" {
			t.Errorf("part content type = %s, want image/jpeg", ct)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [
				{"name": "Pad Thai", "price": 14.50, "quantity": 1},
				{"name": "Spring Rolls", "price": 6.00, "quantity": 2}
			],
			"subtotal": 26.50,
			"tax": 2.12,
			"total": 33.92,
			"scanned_tip": 5.30
		}`))
	}))
	defer server.Close()

	client := New(server.URL, 5*time.Second)
	result, err := client.Scan(context.Background(), []byte("fake-jpeg-bytes"), "image/jpeg", "receipt.jpg")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(result.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(result.Items))
	}
	if result.Items[0].Name != "Pad Thai" || result.Items[0].Price != 14.50 {
		t.Errorf("first item = %+v", result.Items[0])
	}
	if result.Items[1].Quantity != 2 {
		t.Errorf("quantity = %d, want 2", result.Items[1].Quantity)
	}
	if result.ScannedTip == nil || *result.ScannedTip != 5.30 {
		t.Errorf("scanned tip = %v, want 5.30", result.ScannedTip)
	}
	if result.Tax == nil || *result.Tax != 2.12 {
		t.Errorf("tax = %v, want 2.12", result.Tax)
	}
}

func TestScanRejectsUnsupportedType(t *testing.T) {
	client := New("http://localhost:0", time.Second)
	if _, err := client.Scan(context.Background(), nil, "application/pdf", "doc.pdf"); !errors.Is(err, ErrUnsupportedImage) {
		t.Errorf("err = %v, want ErrUnsupportedImage", err)
	}
}

func TestScanSurfacesServiceErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	if _, err := client.Scan(context.Background(), []byte("x"), "image/png", "r.png"); err == nil {
		t.Error("expected error from 500 response")
	}
}

func TestScanMissingScannedTip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items": [{"name": "Coffee", "price": 3.50, "quantity": 1}]}`))
	}))
	defer server.Close()

	client := New(server.URL, time.Second)
	result, err := client.Scan(context.Background(), []byte("x"), "image/webp", "r.webp")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if result.ScannedTip != nil {
		t.Errorf("scanned tip = %v, want nil", result.ScannedTip)
	}
}
