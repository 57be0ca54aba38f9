package allocation

import (
	"fmt"

	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/money"
)

// next holds the single legal successor of each status. The machine is
// forward-only with no skips or reversals.
var next = map[models.Status]models.Status{
	models.StatusDraft:   models.StatusActive,
	models.StatusActive:  models.StatusStarted,
	models.StatusStarted: models.StatusSettled,
}

// Transition advances the bill to the given status, which must be the
// immediate successor of the current one.
func Transition(bill *models.Bill, to models.Status) error {
	want, ok := next[bill.Status]
	if !ok || to != want {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, bill.Status, to)
	}
	bill.Status = to
	return nil
}

// PerItemShare is what each assignee owes for one item: the item price
// plus its tip and tax slices, divided evenly across the assignees and
// rounded per assignee. Callers guarantee assigneeCount > 0 (the
// no-empty-set invariant).
func PerItemShare(itemPrice, poolShare float64, assigneeCount int) float64 {
	return money.Round((itemPrice + poolShare) / float64(assigneeCount))
}

// ComputeUserTotals folds the assignment map into per-participant
// totals, tip and tax inclusive. Every participant appears in the
// result; those with nothing assigned owe 0.
func ComputeUserTotals(bill *models.Bill) map[string]float64 {
	tipShares := PoolShares(bill, bill.TipAmount)
	taxShares := PoolShares(bill, bill.TaxAmount)

	totals := make(map[string]float64, len(bill.Participants))
	for _, p := range bill.Participants {
		totals[p.ID] = 0
	}

	for _, it := range bill.Items {
		if !it.Valid() {
			continue
		}
		assignees := bill.Assignments[it.ID]
		if len(assignees) == 0 {
			continue
		}
		share := PerItemShare(it.Price, tipShares[it.ID]+taxShares[it.ID], len(assignees))
		for _, pid := range assignees {
			if _, ok := totals[pid]; ok {
				totals[pid] += share
			}
		}
	}

	for pid, total := range totals {
		totals[pid] = money.Round(total)
	}
	return totals
}

// Reconciliation is the difference between the bill's authoritative
// total and the sum of all per-participant totals. Zero (within a
// cent) means every dollar on the bill is accounted for.
func Reconciliation(bill *models.Bill) float64 {
	var assigned float64
	for _, total := range ComputeUserTotals(bill) {
		assigned += total
	}
	return Total(bill) - assigned
}

// FullyAssigned reports whether the bill is completely allocated. This
// gates the "proceed" action in the editing flow; it is derived, never
// stored.
func FullyAssigned(bill *models.Bill) bool {
	return money.Equal(Reconciliation(bill), 0)
}

// MarkPaid records that a participant has settled up. Marking the host
// is a no-op since the host is implicitly settled. Paid status only
// makes sense once checkout has begun.
func MarkPaid(bill *models.Bill, participantID string) error {
	if bill.ParticipantByID(participantID) == nil {
		return fmt.Errorf("%w: unknown participant %s", ErrValidation, participantID)
	}
	if bill.Status != models.StatusStarted && bill.Status != models.StatusSettled {
		return fmt.Errorf("%w: bill is not at checkout yet", ErrPrecondition)
	}
	if participantID == bill.HostParticipantID || bill.IsPaid(participantID) {
		return nil
	}
	bill.PaidParticipantIDs = append(bill.PaidParticipantIDs, participantID)
	return nil
}

// AllSettled reports whether every non-host participant is marked
// paid. The host never counts toward the must-pay set.
func AllSettled(bill *models.Bill) bool {
	for _, p := range bill.Participants {
		if p.ID == bill.HostParticipantID {
			continue
		}
		if !bill.IsPaid(p.ID) {
			return false
		}
	}
	return true
}

// CloseBill transitions Started -> Settled and freezes the settlement
// snapshot: items, pools, per-user totals and the paid list as they
// stood at close time. It fails with a precondition error while any
// non-host participant still owes money, leaving the bill untouched.
func CloseBill(bill *models.Bill, now int64) (*models.Settlement, error) {
	if bill.Status != models.StatusStarted {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, bill.Status, models.StatusSettled)
	}
	if !AllSettled(bill) {
		return nil, fmt.Errorf("%w: not all participants have paid", ErrPrecondition)
	}

	totals := ComputeUserTotals(bill)
	paid := make([]string, len(bill.PaidParticipantIDs))
	copy(paid, bill.PaidParticipantIDs)

	bill.Status = models.StatusSettled
	bill.ClosedAt = now

	return &models.Settlement{
		BillID:             bill.ID,
		Subtotal:           money.Round(Subtotal(bill)),
		TipAmount:          bill.TipAmount,
		TaxAmount:          bill.TaxAmount,
		Total:              money.Round(Total(bill)),
		UserTotals:         totals,
		PaidParticipantIDs: paid,
		ClosedAt:           now,
	}, nil
}
