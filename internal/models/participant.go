package models

// ParticipantKind distinguishes registered users from ad-hoc guests.
type ParticipantKind string

const (
	// KindRegistered is a participant backed by a user account.
	KindRegistered ParticipantKind = "registered"

	// KindGuest is a participant added by name only, with no account.
	KindGuest ParticipantKind = "guest"
)

// Participant is one person splitting a bill.
// Identity fields (ID, Kind, UserID) are immutable after creation;
// only DisplayName may be edited.
type Participant struct {
	// ID is the unique identifier for the participant (UUID format).
	ID string

	// UserID links a registered participant to their account.
	// Empty for guests.
	UserID string

	// DisplayName is the name shown to other participants.
	DisplayName string

	// Kind is registered or guest.
	Kind ParticipantKind

	// ColorToken is the avatar color, assigned by join order from a
	// fixed 8-entry palette. The host always gets the first entry.
	ColorToken string

	// Initials is the one-or-two letter avatar label derived from
	// DisplayName at creation time.
	Initials string
}
