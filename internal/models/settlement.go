package models

// Settlement is the immutable snapshot produced when a bill is closed.
// Everything here is frozen at close time; recomputing totals from the
// live bill afterwards must give the same numbers, but clients read the
// snapshot so settled history never shifts under them.
type Settlement struct {
	// BillID is the bill this settlement belongs to.
	BillID string

	// Subtotal, TipAmount, TaxAmount and Total as of close time.
	Subtotal  float64
	TipAmount float64
	TaxAmount float64
	Total     float64

	// UserTotals maps participant ID to the final amount owed,
	// tip and tax inclusive.
	UserTotals map[string]float64

	// PaidParticipantIDs is the paid set at close time. It keeps
	// updating after settlement as stragglers pay.
	PaidParticipantIDs []string

	// ClosedAt is the Unix timestamp when the bill was settled.
	ClosedAt int64
}
