package models

// Status is the lifecycle state of a bill. Transitions are forward-only
// and one step at a time: draft -> active -> started -> settled.
type Status string

const (
	// StatusDraft is a bill that has not been shared yet (manual entry
	// path or a saved work in progress).
	StatusDraft Status = "draft"

	// StatusActive means the host has shared the bill and the party
	// lobby is open for participants to join.
	StatusActive Status = "active"

	// StatusStarted means membership is locked and item/assignment
	// editing is underway. Late joiners land in the editor as viewers.
	StatusStarted Status = "started"

	// StatusSettled means checkout completed and the bill is frozen.
	// Only the paid-participant set may change afterwards.
	StatusSettled Status = "settled"
)

// Bill represents a receipt being split among participants.
type Bill struct {
	// ID is the unique identifier for the bill (UUID format).
	ID string

	// Title is the human-readable name, auto-generated from the
	// participant list when not provided.
	Title string

	// HostParticipantID identifies the participant who created the
	// bill. The host controls membership and status, and is always
	// considered self-settled.
	HostParticipantID string

	// Status is the current lifecycle state.
	Status Status

	// Participants is the list of people on the bill, in join order.
	// Join order is meaningful: it drives palette color assignment.
	Participants []Participant

	// Items are the billed line items, in insertion order. Order is
	// meaningful for display only, never for computation.
	Items []Item

	// Assignments maps item ID to the participant IDs sharing that
	// item. No entry means unassigned; empty lists are never stored.
	Assignments map[string][]string

	// TipAmount and TaxAmount are the pools distributed across items
	// proportionally by price weight.
	TipAmount float64
	TaxAmount float64

	// PaidParticipantIDs tracks who has settled up. The host is never
	// listed; they are implicitly settled.
	PaidParticipantIDs []string

	// CreatedAt and UpdatedAt are Unix timestamps. UpdatedAt bumps on
	// every save and lets pollers detect fresh snapshots.
	CreatedAt int64
	UpdatedAt int64

	// ClosedAt is the Unix timestamp when the bill was settled, zero
	// until then.
	ClosedAt int64
}

// Host returns the host participant, or nil if the bill is malformed.
func (b *Bill) Host() *Participant {
	return b.ParticipantByID(b.HostParticipantID)
}

// ParticipantByID returns the participant with the given ID, or nil.
func (b *Bill) ParticipantByID(id string) *Participant {
	for i := range b.Participants {
		if b.Participants[i].ID == id {
			return &b.Participants[i]
		}
	}
	return nil
}

// ParticipantByUserID returns the participant linked to the given user
// account, or nil. Guests never match.
func (b *Bill) ParticipantByUserID(userID string) *Participant {
	if userID == "" {
		return nil
	}
	for i := range b.Participants {
		if b.Participants[i].UserID == userID {
			return &b.Participants[i]
		}
	}
	return nil
}

// ItemByID returns the item with the given ID, or nil.
func (b *Bill) ItemByID(id string) *Item {
	for i := range b.Items {
		if b.Items[i].ID == id {
			return &b.Items[i]
		}
	}
	return nil
}

// IsPaid reports whether the participant is marked paid. The host is
// always paid by definition.
func (b *Bill) IsPaid(participantID string) bool {
	if participantID == b.HostParticipantID {
		return true
	}
	for _, id := range b.PaidParticipantIDs {
		if id == participantID {
			return true
		}
	}
	return false
}
