package allocation

import (
	"errors"
	"testing"

	"github.com/ChiefGuap/divvit2.0/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		raw    string
		want   float64
		wantOK bool
	}{
		{"12.95", 12.95, true},
		{"$12.95", 12.95, true},
		{" 12.95 ", 12.95, true},
		{"12.", 12, true},
		{"0", 0, true},
		{"8abc", 8, true},
		{"", 0, false},
		{".", 0, false},
		{"abc", 0, false},
		{"1.2.3", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParsePrice(tt.raw)
		if ok != tt.wantOK {
			t.Errorf("ParsePrice(%q) ok = %v, want %v", tt.raw, ok, tt.wantOK)
			continue
		}
		if ok && got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestUpdateItemPriceKeepsCommittedValue(t *testing.T) {
	bill := &models.Bill{Status: models.StatusStarted}
	item, err := AddItem(bill)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}

	// Simulate live typing: "1" -> "12" -> "12." -> "12.9" -> "12.95"
	for _, raw := range []string{"1", "12", "12."} {
		if err := UpdateItemPrice(bill, item.ID, raw); err != nil {
			t.Fatalf("UpdateItemPrice(%q) failed: %v", raw, err)
		}
	}
	if item.Price != 12 {
		t.Errorf("after %q price = %v, want 12", "12.", item.Price)
	}
	if item.RawPrice != "12." {
		t.Errorf("raw text = %q, want %q", item.RawPrice, "12.")
	}

	// Unparsable input keeps the last committed price but still
	// records what was typed.
	if err := UpdateItemPrice(bill, item.ID, "12..."); err != nil {
		t.Fatalf("UpdateItemPrice failed: %v", err)
	}
	if item.Price != 12 {
		t.Errorf("unparsable input moved price to %v, want 12", item.Price)
	}
	if item.RawPrice != "12..." {
		t.Errorf("raw text = %q, want %q", item.RawPrice, "12...")
	}

	if err := UpdateItemPrice(bill, item.ID, "12.95"); err != nil {
		t.Fatalf("UpdateItemPrice failed: %v", err)
	}
	if item.Price != 12.95 {
		t.Errorf("price = %v, want 12.95", item.Price)
	}
}

func TestItemValidity(t *testing.T) {
	tests := []struct {
		name  string
		item  models.Item
		valid bool
	}{
		{"named, priced", models.Item{Name: "Fries", Price: 4.5}, true},
		{"named only", models.Item{Name: "Water"}, true},
		{"priced only", models.Item{Price: 3}, true},
		{"empty placeholder", models.Item{}, false},
		{"whitespace name", models.Item{Name: "   "}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.item.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestSubtotalSkipsPlaceholders(t *testing.T) {
	bill := &models.Bill{Status: models.StatusStarted}
	a, _ := AddItem(bill)
	_ = UpdateItemName(bill, a.ID, "Burger")
	_ = UpdateItemPrice(bill, a.ID, "10.00")
	b, _ := AddItem(bill)
	_ = UpdateItemName(bill, b.ID, "Shake")
	_ = UpdateItemPrice(bill, b.ID, "20.00")
	_, _ = AddItem(bill) // empty row left behind by the editor

	if got := Subtotal(bill); got != 30.0 {
		t.Errorf("Subtotal = %v, want 30.0", got)
	}
	if got := len(ValidItems(bill)); got != 2 {
		t.Errorf("ValidItems count = %d, want 2", got)
	}
}

func TestDeleteItemCascades(t *testing.T) {
	bill := &models.Bill{Status: models.StatusStarted, Assignments: map[string][]string{}}
	p, _ := AddParticipant(bill, "Solo", models.KindGuest)
	item, _ := AddItem(bill)
	_ = UpdateItemName(bill, item.ID, "Wings")
	bill.Assignments[item.ID] = []string{p.ID}

	if err := DeleteItem(bill, item.ID); err != nil {
		t.Fatalf("DeleteItem failed: %v", err)
	}
	if len(bill.Items) != 0 {
		t.Errorf("item not removed from ledger")
	}
	if _, ok := bill.Assignments[item.ID]; ok {
		t.Errorf("assignment key must be removed with the item")
	}

	if err := DeleteItem(bill, "nope"); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown item: err = %v, want ErrValidation", err)
	}
}

func TestSettledBillIsImmutable(t *testing.T) {
	bill := &models.Bill{Status: models.StatusSettled}
	p := models.Participant{ID: "p1", DisplayName: "Alice"}
	bill.Participants = append(bill.Participants, p)
	bill.HostParticipantID = "p1"
	bill.Items = append(bill.Items, models.Item{ID: "i1", Name: "Cake", Price: 5})

	if _, err := AddItem(bill); !errors.Is(err, ErrInvariant) {
		t.Errorf("AddItem on settled bill: err = %v, want ErrInvariant", err)
	}
	if err := UpdateItemPrice(bill, "i1", "9"); !errors.Is(err, ErrInvariant) {
		t.Errorf("UpdateItemPrice on settled bill: err = %v, want ErrInvariant", err)
	}
	if err := DeleteItem(bill, "i1"); !errors.Is(err, ErrInvariant) {
		t.Errorf("DeleteItem on settled bill: err = %v, want ErrInvariant", err)
	}
	if err := ToggleAssignment(bill, "i1", "p1"); !errors.Is(err, ErrInvariant) {
		t.Errorf("ToggleAssignment on settled bill: err = %v, want ErrInvariant", err)
	}
}
