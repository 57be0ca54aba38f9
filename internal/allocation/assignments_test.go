package allocation

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"

	"github.com/ChiefGuap/divvit2.0/internal/models"
)

// twoPersonBill builds a bill with Alice and Bob (Alice hosting) and
// two priced items, no assignments yet.
func twoPersonBill(t *testing.T) (*models.Bill, *models.Participant, *models.Participant) {
	t.Helper()
	bill := &models.Bill{Status: models.StatusStarted}
	alice, err := AddParticipant(bill, "Alice", models.KindRegistered)
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	bob, err := AddParticipant(bill, "Bob", models.KindGuest)
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	for _, it := range []struct {
		name  string
		price string
	}{
		{"Ramen", "14.00"},
		{"Gyoza", "8.00"},
	} {
		item, err := AddItem(bill)
		if err != nil {
			t.Fatalf("AddItem failed: %v", err)
		}
		if err := UpdateItemName(bill, item.ID, it.name); err != nil {
			t.Fatalf("UpdateItemName failed: %v", err)
		}
		if err := UpdateItemPrice(bill, item.ID, it.price); err != nil {
			t.Fatalf("UpdateItemPrice failed: %v", err)
		}
	}
	return bill, alice, bob
}

func TestToggleAssignment(t *testing.T) {
	bill, alice, bob := twoPersonBill(t)
	itemID := bill.Items[0].ID

	if err := ToggleAssignment(bill, itemID, alice.ID); err != nil {
		t.Fatalf("toggle on failed: %v", err)
	}
	if got := Assignees(bill, itemID); !reflect.DeepEqual(got, []string{alice.ID}) {
		t.Errorf("assignees = %v, want [%s]", got, alice.ID)
	}

	if err := ToggleAssignment(bill, itemID, bob.ID); err != nil {
		t.Fatalf("toggle second assignee failed: %v", err)
	}
	if got := len(Assignees(bill, itemID)); got != 2 {
		t.Errorf("assignee count = %d, want 2", got)
	}

	t.Run("unknown ids", func(t *testing.T) {
		if err := ToggleAssignment(bill, "nope", alice.ID); !errors.Is(err, ErrValidation) {
			t.Errorf("unknown item: err = %v, want ErrValidation", err)
		}
		if err := ToggleAssignment(bill, itemID, "nope"); !errors.Is(err, ErrValidation) {
			t.Errorf("unknown participant: err = %v, want ErrValidation", err)
		}
	})
}

func TestToggleAssignmentIdempotence(t *testing.T) {
	bill, alice, _ := twoPersonBill(t)
	itemID := bill.Items[0].ID

	before := make(map[string][]string, len(bill.Assignments))
	for k, v := range bill.Assignments {
		before[k] = append([]string(nil), v...)
	}

	if err := ToggleAssignment(bill, itemID, alice.ID); err != nil {
		t.Fatalf("first toggle failed: %v", err)
	}
	if err := ToggleAssignment(bill, itemID, alice.ID); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}

	if _, ok := bill.Assignments[itemID]; ok {
		t.Errorf("toggling twice must delete the entry, not leave an empty set")
	}
	if len(bill.Assignments) != len(before) {
		t.Errorf("assignment map changed size: got %d, want %d", len(bill.Assignments), len(before))
	}
}

func TestSplitEvenlyAcrossAll(t *testing.T) {
	bill, alice, bob := twoPersonBill(t)
	// A prior lopsided assignment gets replaced wholesale.
	bill.Assignments = map[string][]string{bill.Items[0].ID: {bob.ID}}

	if err := SplitEvenlyAcrossAll(bill); err != nil {
		t.Fatalf("SplitEvenlyAcrossAll failed: %v", err)
	}
	for _, it := range bill.Items {
		got := bill.Assignments[it.ID]
		want := []string{alice.ID, bob.ID}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("item %s assignees = %v, want %v", it.Name, got, want)
		}
	}
}

func TestSplitEvenlySkipsPlaceholders(t *testing.T) {
	bill, _, _ := twoPersonBill(t)
	empty, _ := AddItem(bill)

	if err := SplitEvenlyAcrossAll(bill); err != nil {
		t.Fatalf("SplitEvenlyAcrossAll failed: %v", err)
	}
	if _, ok := bill.Assignments[empty.ID]; ok {
		t.Errorf("placeholder row must not be assigned")
	}
}

func TestRandomizeAssignment(t *testing.T) {
	bill, alice, bob := twoPersonBill(t)
	rng := rand.New(rand.NewSource(42))

	if err := RandomizeAssignment(bill, rng); err != nil {
		t.Fatalf("RandomizeAssignment failed: %v", err)
	}

	valid := map[string]bool{alice.ID: true, bob.ID: true}
	for _, it := range bill.Items {
		got := bill.Assignments[it.ID]
		if len(got) != 1 {
			t.Fatalf("item %s has %d assignees, want exactly 1", it.Name, len(got))
		}
		if !valid[got[0]] {
			t.Errorf("item %s assigned to unknown participant %s", it.Name, got[0])
		}
	}
}

func TestBulkAssignRequiresParticipants(t *testing.T) {
	bill := &models.Bill{Status: models.StatusStarted}
	if err := SplitEvenlyAcrossAll(bill); !errors.Is(err, ErrValidation) {
		t.Errorf("SplitEvenlyAcrossAll: err = %v, want ErrValidation", err)
	}
	if err := RandomizeAssignment(bill, rand.New(rand.NewSource(1))); !errors.Is(err, ErrValidation) {
		t.Errorf("RandomizeAssignment: err = %v, want ErrValidation", err)
	}
}
