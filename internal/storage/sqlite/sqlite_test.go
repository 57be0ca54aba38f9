package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	tempDir, err := os.MkdirTemp("", "divvit-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleBill() *models.Bill {
	return &models.Bill{
		HostParticipantID: "p-host",
		Status:            models.StatusActive,
		TipAmount:         6.00,
		TaxAmount:         2.40,
		Participants: []models.Participant{
			{ID: "p-host", UserID: "u1", DisplayName: "Hana", Kind: models.KindRegistered, ColorToken: "#FF6B6B", Initials: "HA"},
			{ID: "p-guest", DisplayName: "Gus", Kind: models.KindGuest, ColorToken: "#4ECDC4", Initials: "GU"},
		},
		Items: []models.Item{
			{ID: "i1", Name: "Pizza", Price: 20.00, RawPrice: "20.00"},
			{ID: "i2", Name: "Beer", Price: 10.00, RawPrice: "10"},
			{ID: "i3"}, // empty placeholder row survives round-trips too
		},
		Assignments: map[string][]string{
			"i1": {"p-host", "p-guest"},
			"i2": {"p-guest"},
		},
	}
}

func TestSQLiteStoreBills(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateBill generates ID and title", func(t *testing.T) {
		bill := sampleBill()
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if bill.ID == "" {
			t.Error("Expected bill ID to be generated")
		}
		if bill.Title == "" {
			t.Error("Expected bill title to be generated")
		}
		if bill.CreatedAt == 0 || bill.UpdatedAt == 0 {
			t.Error("Expected timestamps to be set")
		}
	})

	t.Run("GetBill retrieves the complete snapshot", func(t *testing.T) {
		original := sampleBill()
		if err := store.CreateBill(ctx, original); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.Status != models.StatusActive {
			t.Errorf("status = %s, want active", got.Status)
		}
		if got.TipAmount != 6.00 || got.TaxAmount != 2.40 {
			t.Errorf("pools = %v/%v, want 6.00/2.40", got.TipAmount, got.TaxAmount)
		}
		if len(got.Participants) != 2 || got.Participants[0].ID != "p-host" {
			t.Errorf("participants out of join order: %+v", got.Participants)
		}
		if got.Participants[0].UserID != "u1" || got.Participants[1].Kind != models.KindGuest {
			t.Errorf("participant identity fields lost: %+v", got.Participants)
		}
		if len(got.Items) != 3 || got.Items[2].ID != "i3" {
			t.Errorf("items out of insertion order: %+v", got.Items)
		}
		if got.Items[1].RawPrice != "10" {
			t.Errorf("raw price text lost: %+v", got.Items[1])
		}
		if !reflect.DeepEqual(got.Assignments, original.Assignments) {
			t.Errorf("assignments = %v, want %v", got.Assignments, original.Assignments)
		}
		if _, ok := got.Assignments["i3"]; ok {
			t.Errorf("unassigned item must have no map entry")
		}
	})

	t.Run("UpdateBill replaces the snapshot", func(t *testing.T) {
		bill := sampleBill()
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}

		bill.Status = models.StatusStarted
		bill.Items = bill.Items[:2]
		bill.Assignments = map[string][]string{"i1": {"p-guest"}}
		bill.PaidParticipantIDs = []string{"p-guest"}
		if err := store.UpdateBill(ctx, bill); err != nil {
			t.Fatalf("UpdateBill failed: %v", err)
		}

		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if got.Status != models.StatusStarted {
			t.Errorf("status = %s, want started", got.Status)
		}
		if len(got.Items) != 2 {
			t.Errorf("items = %d, want 2", len(got.Items))
		}
		if !reflect.DeepEqual(got.Assignments, map[string][]string{"i1": {"p-guest"}}) {
			t.Errorf("assignments = %v", got.Assignments)
		}
		if !reflect.DeepEqual(got.PaidParticipantIDs, []string{"p-guest"}) {
			t.Errorf("paid = %v, want [p-guest]", got.PaidParticipantIDs)
		}
	})

	t.Run("missing bills", func(t *testing.T) {
		if _, err := store.GetBill(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("GetBill err = %v, want ErrNotFound", err)
		}
		if err := store.UpdateBill(ctx, &models.Bill{ID: "nope"}); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("UpdateBill err = %v, want ErrNotFound", err)
		}
		if err := store.DeleteBill(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("DeleteBill err = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteBill cascades", func(t *testing.T) {
		bill := sampleBill()
		if err := store.CreateBill(ctx, bill); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if err := store.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}
		if _, err := store.GetBill(ctx, bill.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("deleted bill still readable: %v", err)
		}
	})
}

// Cascades must hold on every pooled connection, not just the one that
// opened the database. Forcing the pool to discard idle connections
// makes each statement run on a fresh connection, the same churn a
// concurrent snapshot poller causes.
func TestSQLiteStoreCascadesAcrossConnections(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := sampleBill()
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}
	store.db.SetMaxIdleConns(0)

	t.Run("UpdateBill rewrites assignments", func(t *testing.T) {
		if err := store.UpdateBill(ctx, bill); err != nil {
			t.Fatalf("UpdateBill on a fresh connection failed: %v", err)
		}

		got, err := store.GetBill(ctx, bill.ID)
		if err != nil {
			t.Fatalf("GetBill failed: %v", err)
		}
		if !reflect.DeepEqual(got.Assignments, bill.Assignments) {
			t.Errorf("assignments = %v, want %v", got.Assignments, bill.Assignments)
		}
	})

	t.Run("DeleteBill leaves no orphans", func(t *testing.T) {
		if err := store.DeleteBill(ctx, bill.ID); err != nil {
			t.Fatalf("DeleteBill failed: %v", err)
		}

		var orphans int
		err := store.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM item_assignments WHERE item_id IN (?, ?)", "i1", "i2",
		).Scan(&orphans)
		if err != nil {
			t.Fatalf("count failed: %v", err)
		}
		if orphans != 0 {
			t.Errorf("found %d orphaned assignment rows", orphans)
		}
	})
}

func TestSQLiteStoreSettlements(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bill := sampleBill()
	bill.Status = models.StatusSettled
	bill.ClosedAt = 1700000000
	bill.PaidParticipantIDs = []string{"p-guest"}
	if err := store.CreateBill(ctx, bill); err != nil {
		t.Fatalf("CreateBill failed: %v", err)
	}

	settlement := &models.Settlement{
		BillID:     bill.ID,
		UserTotals: map[string]float64{"p-host": 14.20, "p-guest": 24.20},
		ClosedAt:   1700000000,
	}
	if err := store.SaveSettlement(ctx, settlement); err != nil {
		t.Fatalf("SaveSettlement failed: %v", err)
	}

	got, err := store.GetSettlement(ctx, bill.ID)
	if err != nil {
		t.Fatalf("GetSettlement failed: %v", err)
	}
	if !reflect.DeepEqual(got.UserTotals, settlement.UserTotals) {
		t.Errorf("totals = %v, want %v", got.UserTotals, settlement.UserTotals)
	}
	if got.Subtotal != 30.00 {
		t.Errorf("subtotal = %v, want 30.00", got.Subtotal)
	}
	if got.ClosedAt != 1700000000 {
		t.Errorf("closedAt = %v, want 1700000000", got.ClosedAt)
	}

	t.Run("unsettled bill has no settlement", func(t *testing.T) {
		open := sampleBill()
		if err := store.CreateBill(ctx, open); err != nil {
			t.Fatalf("CreateBill failed: %v", err)
		}
		if _, err := store.GetSettlement(ctx, open.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("hana@example.com", "Hana", "hashed")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	byEmail, err := store.GetUserByEmail(ctx, "hana@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if byEmail == nil || byEmail.ID != user.ID {
		t.Errorf("GetUserByEmail = %+v, want id %s", byEmail, user.ID)
	}

	missing, err := store.GetUserByEmail(ctx, "ghost@example.com")
	if err != nil || missing != nil {
		t.Errorf("missing user should be (nil, nil), got (%v, %v)", missing, err)
	}

	byID, err := store.GetUserByID(ctx, user.ID)
	if err != nil || byID.Email != "hana@example.com" {
		t.Errorf("GetUserByID = (%+v, %v)", byID, err)
	}

	if _, err := store.GetUserByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	if err := store.CreateUser(ctx, models.NewUser("hana@example.com", "Dup", "hash")); err == nil {
		t.Errorf("duplicate email must fail the unique constraint")
	}
}
