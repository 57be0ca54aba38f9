package allocation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/money"
)

// AddItem appends an empty placeholder item to the end of the ledger
// and returns it. Empty rows are allowed to sit around while the user
// types; they are excluded from totals until they become valid.
func AddItem(bill *models.Bill) (*models.Item, error) {
	if bill.Status == models.StatusSettled {
		return nil, fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}
	bill.Items = append(bill.Items, models.Item{ID: uuid.New().String()})
	return &bill.Items[len(bill.Items)-1], nil
}

// UpdateItemName sets the item's display name.
func UpdateItemName(bill *models.Bill, itemID, name string) error {
	item := bill.ItemByID(itemID)
	if item == nil {
		return fmt.Errorf("%w: unknown item %s", ErrValidation, itemID)
	}
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}
	item.Name = name
	return nil
}

// UpdateItemPrice feeds one keystroke-worth of raw price text into the
// item. The raw text is always retained for display; the committed
// numeric price only changes when the text parses, so the price moves
// atomically from one valid value to the next and never goes negative
// or NaN mid-edit.
func UpdateItemPrice(bill *models.Bill, itemID, raw string) error {
	item := bill.ItemByID(itemID)
	if item == nil {
		return fmt.Errorf("%w: unknown item %s", ErrValidation, itemID)
	}
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}
	item.RawPrice = raw
	if price, ok := ParsePrice(raw); ok {
		item.Price = price
	}
	return nil
}

// ParsePrice permissively parses user-typed price text. Everything
// outside [0-9.] is stripped before parsing, so "$12.95" and
// "12.95 " both commit. Partial input like "12." commits as 12; input
// with no parsable number ("", ".", "1.2.3") reports ok=false and the
// caller keeps the previous committed price.
func ParsePrice(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return money.Round(v), true
}

// DeleteItem removes an item and its assignment entry. The key is
// deleted outright so no empty assignee set survives.
func DeleteItem(bill *models.Bill, itemID string) error {
	if bill.ItemByID(itemID) == nil {
		return fmt.Errorf("%w: unknown item %s", ErrValidation, itemID)
	}
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}
	kept := bill.Items[:0]
	for _, it := range bill.Items {
		if it.ID != itemID {
			kept = append(kept, it)
		}
	}
	bill.Items = kept
	delete(bill.Assignments, itemID)
	return nil
}

// ValidItems returns the items that count toward totals, in ledger
// order.
func ValidItems(bill *models.Bill) []models.Item {
	var items []models.Item
	for _, it := range bill.Items {
		if it.Valid() {
			items = append(items, it)
		}
	}
	return items
}

// Subtotal is the sum of all valid item prices. Prices are stored
// already rounded, so the sum is exact.
func Subtotal(bill *models.Bill) float64 {
	var sum float64
	for _, it := range bill.Items {
		if it.Valid() {
			sum += it.Price
		}
	}
	return sum
}

// Total is the bill's authoritative amount: subtotal plus tax plus tip.
func Total(bill *models.Bill) float64 {
	return Subtotal(bill) + bill.TaxAmount + bill.TipAmount
}
