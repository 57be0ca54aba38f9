package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ChiefGuap/divvit2.0/internal/allocation"
	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/service"
)

// BillHandlers serves the bill lifecycle endpoints.
type BillHandlers struct {
	bills    *service.BillService
	snapshot service.SnapshotSource
}

// NewBillHandlers creates bill handlers on top of the bill service and
// snapshot feed.
func NewBillHandlers(bills *service.BillService, snapshot service.SnapshotSource) *BillHandlers {
	return &BillHandlers{bills: bills, snapshot: snapshot}
}

type createBillRequest struct {
	Title string `json:"title"`
	Items []struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"items"`
	TaxAmount  float64  `json:"tax_amount"`
	ScannedTip *float64 `json:"scanned_tip"`
}

func (h *BillHandlers) Create(c *gin.Context) {
	var req createBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	input := service.CreateBillInput{
		Title:      req.Title,
		TaxAmount:  req.TaxAmount,
		ScannedTip: req.ScannedTip,
	}
	for _, it := range req.Items {
		input.Items = append(input.Items, service.ItemInput{Name: it.Name, Price: it.Price})
	}

	bill, err := h.bills.CreateBill(c.Request.Context(), actorFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBillResponse(bill))
}

func (h *BillHandlers) Get(c *gin.Context) {
	bill, err := h.bills.GetBill(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) Delete(c *gin.Context) {
	if err := h.bills.DeleteBill(c.Request.Context(), actorFrom(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BillHandlers) Join(c *gin.Context) {
	bill, err := h.bills.JoinBill(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	// Tells the client which screen to land on: the lobby while the
	// party is assembling, the editor once splitting started.
	view := "lobby"
	if bill.Status != models.StatusActive {
		view = "editor"
	}
	c.JSON(http.StatusOK, gin.H{"bill": toBillResponse(bill), "view": view})
}

type addGuestRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *BillHandlers) AddGuest(c *gin.Context) {
	var req addGuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	bill, err := h.bills.AddGuest(c.Request.Context(), actorFrom(c), c.Param("id"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBillResponse(bill))
}

func (h *BillHandlers) RemoveParticipant(c *gin.Context) {
	bill, err := h.bills.RemoveParticipant(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("pid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

type renameRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *BillHandlers) RenameParticipant(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	bill, err := h.bills.RenameParticipant(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("pid"), req.Name)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) AddItem(c *gin.Context) {
	bill, err := h.bills.AddItem(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBillResponse(bill))
}

type updateItemRequest struct {
	Name     *string `json:"name"`
	RawPrice *string `json:"raw_price"`
}

func (h *BillHandlers) UpdateItem(c *gin.Context) {
	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	bill, err := h.bills.UpdateItem(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("itemID"), service.UpdateItemInput{
		Name:     req.Name,
		RawPrice: req.RawPrice,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) DeleteItem(c *gin.Context) {
	bill, err := h.bills.DeleteItem(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("itemID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

type toggleRequest struct {
	ItemID        string `json:"item_id" binding:"required"`
	ParticipantID string `json:"participant_id" binding:"required"`
}

func (h *BillHandlers) ToggleAssignment(c *gin.Context) {
	var req toggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	bill, err := h.bills.ToggleAssignment(c.Request.Context(), actorFrom(c), c.Param("id"), req.ItemID, req.ParticipantID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) SplitEvenly(c *gin.Context) {
	bill, err := h.bills.SplitEvenly(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) Randomize(c *gin.Context) {
	bill, err := h.bills.Randomize(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

type tipRequest struct {
	Mode    string  `json:"mode" binding:"required"`
	Percent float64 `json:"percent"`
	Amount  float64 `json:"amount"`
}

func (h *BillHandlers) SetTip(c *gin.Context) {
	var req tipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	selection := allocation.TipSelection{
		Mode:    allocation.TipMode(req.Mode),
		Percent: req.Percent,
		Amount:  req.Amount,
	}
	bill, err := h.bills.SetTip(c.Request.Context(), actorFrom(c), c.Param("id"), selection)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

type taxRequest struct {
	Amount float64 `json:"amount"`
}

func (h *BillHandlers) SetTax(c *gin.Context) {
	var req taxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	bill, err := h.bills.SetTax(c.Request.Context(), actorFrom(c), c.Param("id"), req.Amount)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) Share(c *gin.Context) {
	bill, err := h.bills.ShareBill(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) Start(c *gin.Context) {
	bill, err := h.bills.StartBill(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) Close(c *gin.Context) {
	settlement, err := h.bills.CloseBill(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettlementResponse(settlement))
}

func (h *BillHandlers) GetSettlement(c *gin.Context) {
	settlement, err := h.bills.GetSettlement(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSettlementResponse(settlement))
}

func (h *BillHandlers) MarkPaid(c *gin.Context) {
	bill, err := h.bills.MarkPaid(c.Request.Context(), actorFrom(c), c.Param("id"), c.Param("pid"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *BillHandlers) Totals(c *gin.Context) {
	totals, err := h.bills.Totals(c.Request.Context(), actorFrom(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTotalsResponse(totals))
}

// Events streams bill snapshots as server-sent events until the client
// disconnects. Membership is checked once up front.
func (h *BillHandlers) Events(c *gin.Context) {
	billID := c.Param("id")
	if _, err := h.bills.GetBill(c.Request.Context(), actorFrom(c), billID); err != nil {
		writeError(c, err)
		return
	}

	snapshots, err := h.snapshot.Subscribe(c.Request.Context(), billID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Stream(func(w io.Writer) bool {
		bill, ok := <-snapshots
		if !ok {
			return false
		}
		c.SSEvent("snapshot", toBillResponse(bill))
		return true
	})
}
