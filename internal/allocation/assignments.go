package allocation

import (
	"fmt"
	"math/rand"

	"github.com/ChiefGuap/divvit2.0/internal/models"
)

// ToggleAssignment flips one participant's membership in one item's
// assignee set. This is the only per-item mutator: the UI always acts
// on behalf of a single selected participant, never replaces a set
// wholesale (the bulk helpers below are the exception). Removing the
// last assignee deletes the map entry so empty sets never exist.
func ToggleAssignment(bill *models.Bill, itemID, participantID string) error {
	if bill.ItemByID(itemID) == nil {
		return fmt.Errorf("%w: unknown item %s", ErrValidation, itemID)
	}
	if bill.ParticipantByID(participantID) == nil {
		return fmt.Errorf("%w: unknown participant %s", ErrValidation, participantID)
	}
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}

	for _, id := range bill.Assignments[itemID] {
		if id == participantID {
			removeAssignee(bill, itemID, participantID)
			return nil
		}
	}
	if bill.Assignments == nil {
		bill.Assignments = make(map[string][]string)
	}
	bill.Assignments[itemID] = append(bill.Assignments[itemID], participantID)
	return nil
}

// SplitEvenlyAcrossAll assigns every valid item to every participant,
// replacing any prior assignment.
func SplitEvenlyAcrossAll(bill *models.Bill) error {
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}
	if len(bill.Participants) == 0 {
		return fmt.Errorf("%w: bill has no participants", ErrValidation)
	}
	everyone := make([]string, len(bill.Participants))
	for i, p := range bill.Participants {
		everyone[i] = p.ID
	}
	bill.Assignments = make(map[string][]string)
	for _, it := range bill.Items {
		if !it.Valid() {
			continue
		}
		assignees := make([]string, len(everyone))
		copy(assignees, everyone)
		bill.Assignments[it.ID] = assignees
	}
	return nil
}

// RandomizeAssignment gives every valid item to exactly one uniformly
// random participant, replacing any prior assignment. The caller
// supplies the random source so tests can seed it.
func RandomizeAssignment(bill *models.Bill, rng *rand.Rand) error {
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}
	if len(bill.Participants) == 0 {
		return fmt.Errorf("%w: bill has no participants", ErrValidation)
	}
	bill.Assignments = make(map[string][]string)
	for _, it := range bill.Items {
		if !it.Valid() {
			continue
		}
		lucky := bill.Participants[rng.Intn(len(bill.Participants))]
		bill.Assignments[it.ID] = []string{lucky.ID}
	}
	return nil
}

// Assignees returns the participant IDs sharing an item, nil when
// unassigned.
func Assignees(bill *models.Bill, itemID string) []string {
	return bill.Assignments[itemID]
}

// removeAssignee drops a participant from one item's set, deleting the
// entry when the set empties.
func removeAssignee(bill *models.Bill, itemID, participantID string) {
	assignees := bill.Assignments[itemID]
	kept := assignees[:0]
	for _, id := range assignees {
		if id != participantID {
			kept = append(kept, id)
		}
	}
	if len(kept) == 0 {
		delete(bill.Assignments, itemID)
		return
	}
	bill.Assignments[itemID] = kept
}
