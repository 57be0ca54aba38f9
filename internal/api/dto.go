package api

import (
	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/money"
	"github.com/ChiefGuap/divvit2.0/internal/service"
)

// Wire types for bill snapshots. Money fields use money.Amount so
// clients always see fixed two-decimal values.

type participantDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id,omitempty"`
	DisplayName string `json:"display_name"`
	Kind        string `json:"kind"`
	ColorToken  string `json:"color_token"`
	Initials    string `json:"initials"`
	Paid        bool   `json:"paid"`
}

type itemDTO struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Price    money.Amount `json:"price"`
	RawPrice string       `json:"raw_price"`
}

type billResponse struct {
	ID           string              `json:"id"`
	Title        string              `json:"title"`
	Status       string              `json:"status"`
	HostID       string              `json:"host_participant_id"`
	Participants []participantDTO    `json:"participants"`
	Items        []itemDTO           `json:"items"`
	Assignments  map[string][]string `json:"assignments"`
	TipAmount    money.Amount        `json:"tip_amount"`
	TaxAmount    money.Amount        `json:"tax_amount"`
	CreatedAt    int64               `json:"created_at"`
	UpdatedAt    int64               `json:"updated_at"`
	ClosedAt     int64               `json:"closed_at,omitempty"`
}

type settlementResponse struct {
	BillID     string                  `json:"bill_id"`
	Subtotal   money.Amount            `json:"subtotal"`
	TipAmount  money.Amount            `json:"tip_amount"`
	TaxAmount  money.Amount            `json:"tax_amount"`
	Total      money.Amount            `json:"total"`
	UserTotals map[string]money.Amount `json:"user_totals"`
	PaidIDs    []string                `json:"paid_participant_ids"`
	ClosedAt   int64                   `json:"closed_at"`
}

type totalsResponse struct {
	Subtotal       money.Amount            `json:"subtotal"`
	TipAmount      money.Amount            `json:"tip_amount"`
	TaxAmount      money.Amount            `json:"tax_amount"`
	Total          money.Amount            `json:"total"`
	UserTotals     map[string]money.Amount `json:"user_totals"`
	Reconciliation money.Amount            `json:"reconciliation"`
	FullyAssigned  bool                    `json:"fully_assigned"`
	AllSettled     bool                    `json:"all_settled"`
}

func usd(v float64) money.Amount {
	return money.NewAmount(v, "USD")
}

func usdMap(in map[string]float64) map[string]money.Amount {
	out := make(map[string]money.Amount, len(in))
	for k, v := range in {
		out[k] = usd(v)
	}
	return out
}

func toBillResponse(b *models.Bill) billResponse {
	participants := make([]participantDTO, 0, len(b.Participants))
	for _, p := range b.Participants {
		participants = append(participants, participantDTO{
			ID:          p.ID,
			UserID:      p.UserID,
			DisplayName: p.DisplayName,
			Kind:        string(p.Kind),
			ColorToken:  p.ColorToken,
			Initials:    p.Initials,
			Paid:        b.IsPaid(p.ID),
		})
	}

	items := make([]itemDTO, 0, len(b.Items))
	for _, it := range b.Items {
		items = append(items, itemDTO{
			ID:       it.ID,
			Name:     it.Name,
			Price:    usd(it.Price),
			RawPrice: it.RawPrice,
		})
	}

	assignments := b.Assignments
	if assignments == nil {
		assignments = map[string][]string{}
	}

	return billResponse{
		ID:           b.ID,
		Title:        b.Title,
		Status:       string(b.Status),
		HostID:       b.HostParticipantID,
		Participants: participants,
		Items:        items,
		Assignments:  assignments,
		TipAmount:    usd(b.TipAmount),
		TaxAmount:    usd(b.TaxAmount),
		CreatedAt:    b.CreatedAt,
		UpdatedAt:    b.UpdatedAt,
		ClosedAt:     b.ClosedAt,
	}
}

func toSettlementResponse(s *models.Settlement) settlementResponse {
	return settlementResponse{
		BillID:     s.BillID,
		Subtotal:   usd(s.Subtotal),
		TipAmount:  usd(s.TipAmount),
		TaxAmount:  usd(s.TaxAmount),
		Total:      usd(s.Total),
		UserTotals: usdMap(s.UserTotals),
		PaidIDs:    s.PaidParticipantIDs,
		ClosedAt:   s.ClosedAt,
	}
}

func toTotalsResponse(t *service.TotalsResult) totalsResponse {
	return totalsResponse{
		Subtotal:       usd(t.Subtotal),
		TipAmount:      usd(t.TipAmount),
		TaxAmount:      usd(t.TaxAmount),
		Total:          usd(t.Total),
		UserTotals:     usdMap(t.UserTotals),
		Reconciliation: usd(t.Reconciliation),
		FullyAssigned:  t.FullyAssigned,
		AllSettled:     t.AllSettled,
	}
}
