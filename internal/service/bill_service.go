package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ChiefGuap/divvit2.0/internal/allocation"
	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/money"
	"github.com/ChiefGuap/divvit2.0/internal/scanner"
	"github.com/ChiefGuap/divvit2.0/internal/storage"
)

// ErrForbidden means the actor is not allowed to perform the operation
// on this bill: hosts control membership, status and the ledger;
// everyone else only touches their own assignments and paid flag.
var ErrForbidden = errors.New("forbidden")

var (
	billsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "divvit_bills_created_total",
		Help: "Number of bills created.",
	})
	billsSettled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "divvit_bills_settled_total",
		Help: "Number of bills closed and settled.",
	})
)

// Actor is the authenticated identity performing an operation, passed
// explicitly into every method rather than read from ambient state.
type Actor struct {
	UserID      string
	DisplayName string
}

// BillService owns the bill lifecycle: it loads snapshots from the
// store, applies allocation engine operations, and writes the result
// back. All coordination between devices happens through the store.
type BillService struct {
	store storage.Store
	rng   *rand.Rand
	now   func() int64
}

// NewBillService creates a BillService with the given storage backend.
func NewBillService(store storage.Store) *BillService {
	return &BillService{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   func() int64 { return time.Now().Unix() },
	}
}

// ItemInput seeds one item at bill creation.
type ItemInput struct {
	Name  string
	Price float64
}

// CreateBillInput describes a new bill, either manually entered or
// seeded from a receipt scan.
type CreateBillInput struct {
	Title     string
	Items     []ItemInput
	TaxAmount float64

	// ScannedTip pre-selects the tip (nil means the 18% default).
	ScannedTip *float64
}

// CreateBill creates a draft bill hosted by the actor.
func (s *BillService) CreateBill(ctx context.Context, actor Actor, input CreateBillInput) (*models.Bill, error) {
	bill := &models.Bill{
		Title:       input.Title,
		Status:      models.StatusDraft,
		Assignments: make(map[string][]string),
		TaxAmount:   money.Round(input.TaxAmount),
	}

	host, err := allocation.AddParticipant(bill, actor.DisplayName, models.KindRegistered)
	if err != nil {
		return nil, err
	}
	host.UserID = actor.UserID

	for _, in := range input.Items {
		item, err := allocation.AddItem(bill)
		if err != nil {
			return nil, err
		}
		item.Name = in.Name
		item.Price = money.Round(in.Price)
		item.RawPrice = strconv.FormatFloat(item.Price, 'f', 2, 64)
	}

	subtotal := allocation.Subtotal(bill)
	selection := allocation.PreselectTip(subtotal, input.ScannedTip)
	bill.TipAmount = selection.Pool(subtotal)

	if err := s.store.CreateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to create bill: %w", err)
	}

	billsCreated.Inc()
	slog.Info("Bill created", "bill_id", bill.ID, "host", host.ID, "items", len(bill.Items))
	return bill, nil
}

// ItemsFromScan converts a scan result into item seeds. Items with
// quantity above one expand into repeated unit-price rows so each
// plate can be assigned separately.
func ItemsFromScan(result *scanner.ScanResult) []ItemInput {
	var items []ItemInput
	for _, it := range result.Items {
		qty := it.Quantity
		if qty < 1 {
			qty = 1
		}
		for i := 0; i < qty; i++ {
			items = append(items, ItemInput{Name: it.Name, Price: it.Price})
		}
	}
	return items
}

// GetBill returns the bill if the actor is on it.
func (s *BillService) GetBill(ctx context.Context, actor Actor, billID string) (*models.Bill, error) {
	bill, _, err := s.loadForActor(ctx, actor, billID)
	return bill, err
}

// ShareBill opens the party lobby (draft -> active). Host only.
func (s *BillService) ShareBill(ctx context.Context, actor Actor, billID string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		return allocation.Transition(bill, models.StatusActive)
	})
}

// StartBill locks membership and begins editing (active -> started).
// Host only.
func (s *BillService) StartBill(ctx context.Context, actor Actor, billID string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		return allocation.Transition(bill, models.StatusStarted)
	})
}

// JoinBill adds the actor to the bill as a registered participant.
// Joining is idempotent: a user already on the bill just gets the
// current snapshot back. New joins are accepted while the lobby is
// open and, for late arrivals, during editing; drafts are private to
// the host and settled bills are closed for good.
func (s *BillService) JoinBill(ctx context.Context, actor Actor, billID string) (*models.Bill, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if existing := bill.ParticipantByUserID(actor.UserID); existing != nil {
		return bill, nil
	}
	if bill.Status != models.StatusActive && bill.Status != models.StatusStarted {
		return nil, fmt.Errorf("%w: bill is not open for joining", allocation.ErrPrecondition)
	}

	p, err := allocation.AddParticipant(bill, actor.DisplayName, models.KindRegistered)
	if err != nil {
		return nil, err
	}
	p.UserID = actor.UserID

	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	slog.Info("Participant joined", "bill_id", bill.ID, "participant_id", p.ID)
	return bill, nil
}

// AddGuest adds an ad-hoc guest participant. Host only.
func (s *BillService) AddGuest(ctx context.Context, actor Actor, billID, name string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		_, err := allocation.AddParticipant(bill, name, models.KindGuest)
		return err
	})
}

// RemoveParticipant drops a participant and cascades through the
// assignment map. Host only; the host themselves can never be removed.
func (s *BillService) RemoveParticipant(ctx context.Context, actor Actor, billID, participantID string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		return allocation.RemoveParticipant(bill, participantID)
	})
}

// RenameParticipant edits a display name. The host may rename anyone;
// everyone else only themselves.
func (s *BillService) RenameParticipant(ctx context.Context, actor Actor, billID, participantID, name string) (*models.Bill, error) {
	bill, self, err := s.loadForActor(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	if self.ID != bill.HostParticipantID && self.ID != participantID {
		return nil, fmt.Errorf("%w: only the host may rename others", ErrForbidden)
	}
	if err := allocation.RenameParticipant(bill, participantID, name); err != nil {
		return nil, err
	}
	return bill, s.save(ctx, bill)
}

// AddItem appends an empty ledger row. Host only.
func (s *BillService) AddItem(ctx context.Context, actor Actor, billID string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		_, err := allocation.AddItem(bill)
		return err
	})
}

// UpdateItemInput carries partial edits to one item; nil fields are
// left alone.
type UpdateItemInput struct {
	Name     *string
	RawPrice *string
}

// UpdateItem applies name/price edits to one item. Host only.
func (s *BillService) UpdateItem(ctx context.Context, actor Actor, billID, itemID string, input UpdateItemInput) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		if input.Name != nil {
			if err := allocation.UpdateItemName(bill, itemID, *input.Name); err != nil {
				return err
			}
		}
		if input.RawPrice != nil {
			if err := allocation.UpdateItemPrice(bill, itemID, *input.RawPrice); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteItem removes a ledger row and its assignments. Host only.
func (s *BillService) DeleteItem(ctx context.Context, actor Actor, billID, itemID string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		return allocation.DeleteItem(bill, itemID)
	})
}

// ToggleAssignment flips one participant on or off an item. The host
// may toggle on behalf of anyone; everyone else only for themselves.
func (s *BillService) ToggleAssignment(ctx context.Context, actor Actor, billID, itemID, participantID string) (*models.Bill, error) {
	bill, self, err := s.loadForActor(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	if self.ID != bill.HostParticipantID && self.ID != participantID {
		return nil, fmt.Errorf("%w: you may only change your own assignments", ErrForbidden)
	}
	if err := allocation.ToggleAssignment(bill, itemID, participantID); err != nil {
		return nil, err
	}
	return bill, s.save(ctx, bill)
}

// SplitEvenly assigns every valid item to everyone. Host only.
func (s *BillService) SplitEvenly(ctx context.Context, actor Actor, billID string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		return allocation.SplitEvenlyAcrossAll(bill)
	})
}

// Randomize assigns every valid item to one random participant. Host
// only.
func (s *BillService) Randomize(ctx context.Context, actor Actor, billID string) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		return allocation.RandomizeAssignment(bill, s.rng)
	})
}

// SetTip resolves a tip selection against the current subtotal and
// stores the pool. Host only.
func (s *BillService) SetTip(ctx context.Context, actor Actor, billID string, selection allocation.TipSelection) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		if err := selection.Validate(); err != nil {
			return err
		}
		bill.TipAmount = selection.Pool(allocation.Subtotal(bill))
		return nil
	})
}

// SetTax sets the tax pool. Host only.
func (s *BillService) SetTax(ctx context.Context, actor Actor, billID string, amount float64) (*models.Bill, error) {
	return s.hostMutation(ctx, actor, billID, func(bill *models.Bill) error {
		if amount < 0 {
			return fmt.Errorf("%w: tax cannot be negative", allocation.ErrValidation)
		}
		bill.TaxAmount = money.Round(amount)
		return nil
	})
}

// MarkPaid records a participant as settled. The host may mark anyone;
// everyone else only themselves.
func (s *BillService) MarkPaid(ctx context.Context, actor Actor, billID, participantID string) (*models.Bill, error) {
	bill, self, err := s.loadForActor(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	if self.ID != bill.HostParticipantID && self.ID != participantID {
		return nil, fmt.Errorf("%w: you may only mark yourself paid", ErrForbidden)
	}
	if err := allocation.MarkPaid(bill, participantID); err != nil {
		return nil, err
	}
	return bill, s.save(ctx, bill)
}

// CloseBill settles the bill and persists the frozen snapshot. Host
// only; fails while any non-host participant still owes money.
func (s *BillService) CloseBill(ctx context.Context, actor Actor, billID string) (*models.Settlement, error) {
	bill, self, err := s.loadForActor(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	if self.ID != bill.HostParticipantID {
		return nil, fmt.Errorf("%w: only the host may close the bill", ErrForbidden)
	}

	settlement, err := allocation.CloseBill(bill, s.now())
	if err != nil {
		return nil, err
	}
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	if err := s.store.SaveSettlement(ctx, settlement); err != nil {
		return nil, fmt.Errorf("failed to save settlement: %w", err)
	}

	billsSettled.Inc()
	slog.Info("Bill settled", "bill_id", bill.ID, "total", settlement.Total)
	return settlement, nil
}

// TotalsResult is the derived money view of a bill: what each person
// owes and how far the bill is from fully allocated.
type TotalsResult struct {
	Subtotal       float64
	TipAmount      float64
	TaxAmount      float64
	Total          float64
	UserTotals     map[string]float64
	Reconciliation float64
	FullyAssigned  bool
	AllSettled     bool
}

// Totals computes the per-participant totals and reconciliation signal
// for the current snapshot.
func (s *BillService) Totals(ctx context.Context, actor Actor, billID string) (*TotalsResult, error) {
	bill, _, err := s.loadForActor(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	return &TotalsResult{
		Subtotal:       money.Round(allocation.Subtotal(bill)),
		TipAmount:      bill.TipAmount,
		TaxAmount:      bill.TaxAmount,
		Total:          money.Round(allocation.Total(bill)),
		UserTotals:     allocation.ComputeUserTotals(bill),
		Reconciliation: money.Round(allocation.Reconciliation(bill)),
		FullyAssigned:  allocation.FullyAssigned(bill),
		AllSettled:     allocation.AllSettled(bill),
	}, nil
}

// GetSettlement returns the frozen snapshot of a settled bill.
func (s *BillService) GetSettlement(ctx context.Context, actor Actor, billID string) (*models.Settlement, error) {
	if _, _, err := s.loadForActor(ctx, actor, billID); err != nil {
		return nil, err
	}
	return s.store.GetSettlement(ctx, billID)
}

// DeleteBill removes the bill entirely. Host only.
func (s *BillService) DeleteBill(ctx context.Context, actor Actor, billID string) error {
	bill, self, err := s.loadForActor(ctx, actor, billID)
	if err != nil {
		return err
	}
	if self.ID != bill.HostParticipantID {
		return fmt.Errorf("%w: only the host may delete the bill", ErrForbidden)
	}
	if err := s.store.DeleteBill(ctx, billID); err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	slog.Info("Bill deleted", "bill_id", billID)
	return nil
}

// loadForActor fetches the bill and the actor's participant on it.
func (s *BillService) loadForActor(ctx context.Context, actor Actor, billID string) (*models.Bill, *models.Participant, error) {
	bill, err := s.store.GetBill(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	p := bill.ParticipantByUserID(actor.UserID)
	if p == nil {
		return nil, nil, fmt.Errorf("%w: you are not on this bill", ErrForbidden)
	}
	return bill, p, nil
}

// hostMutation runs a host-only engine operation and saves the result.
func (s *BillService) hostMutation(ctx context.Context, actor Actor, billID string, op func(*models.Bill) error) (*models.Bill, error) {
	bill, self, err := s.loadForActor(ctx, actor, billID)
	if err != nil {
		return nil, err
	}
	if self.ID != bill.HostParticipantID {
		return nil, fmt.Errorf("%w: host only", ErrForbidden)
	}
	if err := op(bill); err != nil {
		return nil, err
	}
	return bill, s.save(ctx, bill)
}

func (s *BillService) save(ctx context.Context, bill *models.Bill) error {
	if err := s.store.UpdateBill(ctx, bill); err != nil {
		return fmt.Errorf("failed to save bill: %w", err)
	}
	return nil
}
