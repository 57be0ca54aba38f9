package allocation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ChiefGuap/divvit2.0/internal/models"
)

// palette is the fixed avatar color cycle. Colors are assigned by join
// order: participant i gets palette[i % 8], with the host always at
// index 0.
var palette = [...]string{
	"#FF6B6B", // coral
	"#4ECDC4", // teal
	"#FFD93D", // gold
	"#95E1D3", // mint
	"#A8D8EA", // sky
	"#FCBAD3", // pink
	"#B5EAD7", // sage
	"#C7CEEA", // periwinkle
}

// ColorForIndex returns the palette color for the nth participant to
// join a bill (0-based).
func ColorForIndex(i int) string {
	return palette[i%len(palette)]
}

// DeriveInitials builds the one-or-two letter avatar label for a name.
// Two or more words: first letter of the first two words. One word:
// its first two characters. Always uppercased.
func DeriveInitials(name string) string {
	words := strings.Fields(name)
	switch {
	case len(words) >= 2:
		return strings.ToUpper(firstRune(words[0]) + firstRune(words[1]))
	case len(words) == 1:
		r := []rune(words[0])
		if len(r) == 1 {
			return strings.ToUpper(string(r))
		}
		return strings.ToUpper(string(r[:2]))
	default:
		return ""
	}
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// AddParticipant appends a new participant to the bill, assigning an
// opaque ID, the next palette color and derived initials. The first
// participant added becomes the host.
func AddParticipant(bill *models.Bill, name string, kind models.ParticipantKind) (*models.Participant, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: participant name is empty", ErrValidation)
	}
	if bill.Status == models.StatusSettled {
		return nil, fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}

	p := models.Participant{
		ID:          uuid.New().String(),
		DisplayName: trimmed,
		Kind:        kind,
		ColorToken:  ColorForIndex(len(bill.Participants)),
		Initials:    DeriveInitials(trimmed),
	}
	bill.Participants = append(bill.Participants, p)
	if bill.HostParticipantID == "" {
		bill.HostParticipantID = p.ID
	}
	return &bill.Participants[len(bill.Participants)-1], nil
}

// RenameParticipant updates a participant's display name and refreshes
// their initials. Identity is otherwise immutable.
func RenameParticipant(bill *models.Bill, participantID, name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: participant name is empty", ErrValidation)
	}
	p := bill.ParticipantByID(participantID)
	if p == nil {
		return fmt.Errorf("%w: unknown participant %s", ErrValidation, participantID)
	}
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}
	p.DisplayName = trimmed
	p.Initials = DeriveInitials(trimmed)
	return nil
}

// RemoveParticipant deletes a participant from the bill and scrubs
// them from every assignee set. Sets that become empty are deleted,
// never left behind. Removing the host is always an invariant
// violation.
func RemoveParticipant(bill *models.Bill, participantID string) error {
	if bill.ParticipantByID(participantID) == nil {
		return fmt.Errorf("%w: unknown participant %s", ErrValidation, participantID)
	}
	if participantID == bill.HostParticipantID {
		return fmt.Errorf("%w: the host cannot be removed", ErrInvariant)
	}
	if bill.Status == models.StatusSettled {
		return fmt.Errorf("%w: settled bill is immutable", ErrInvariant)
	}

	kept := bill.Participants[:0]
	for _, p := range bill.Participants {
		if p.ID != participantID {
			kept = append(kept, p)
		}
	}
	bill.Participants = kept

	for itemID := range bill.Assignments {
		removeAssignee(bill, itemID, participantID)
	}

	kept2 := bill.PaidParticipantIDs[:0]
	for _, id := range bill.PaidParticipantIDs {
		if id != participantID {
			kept2 = append(kept2, id)
		}
	}
	bill.PaidParticipantIDs = kept2
	return nil
}
