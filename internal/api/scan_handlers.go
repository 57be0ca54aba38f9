package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChiefGuap/divvit2.0/internal/scanner"
	"github.com/ChiefGuap/divvit2.0/internal/service"
)

// maxReceiptSize caps receipt uploads at 10 MB.
const maxReceiptSize = 10 << 20

// ScanHandlers serves the receipt upload endpoint.
type ScanHandlers struct {
	scanner *scanner.Client
	bills   *service.BillService
}

// NewScanHandlers creates scan handlers backed by the scanner client
// and bill service.
func NewScanHandlers(sc *scanner.Client, bills *service.BillService) *ScanHandlers {
	return &ScanHandlers{scanner: sc, bills: bills}
}

// Scan accepts a multipart receipt image, runs it through the scanning
// service and creates a draft bill seeded with the extracted items and
// tip prefill.
func (h *ScanHandlers) Scan(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file upload"})
		return
	}
	defer file.Close()

	image, err := io.ReadAll(io.LimitReader(file, maxReceiptSize+1))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read upload"})
		return
	}
	if len(image) > maxReceiptSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "receipt image too large"})
		return
	}

	result, err := h.scanner.Scan(c.Request.Context(), image, header.Header.Get("Content-Type"), header.Filename)
	if err != nil {
		writeError(c, err)
		return
	}

	input := service.CreateBillInput{
		Title:      c.PostForm("title"),
		Items:      service.ItemsFromScan(result),
		ScannedTip: result.ScannedTip,
	}
	if result.Tax != nil {
		input.TaxAmount = *result.Tax
	}

	bill, err := h.bills.CreateBill(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}

	slog.Info("Receipt scanned", "bill_id", bill.ID, "items", len(bill.Items))
	c.JSON(http.StatusCreated, toBillResponse(bill))
}
