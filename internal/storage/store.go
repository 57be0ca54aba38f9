// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/ChiefGuap/divvit2.0/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store defines the interface for bill and user persistence. The store
// is the sole coordination point between devices editing the same bill:
// it reads and writes whole denormalized snapshots, last writer wins.
// This abstraction allows swapping storage backends (SQLite, Postgres,
// a hosted realtime service) without changing the service layer.
type Store interface {
	// CreateBill persists a new bill. ID, CreatedAt and Title are
	// populated when empty.
	CreateBill(ctx context.Context, bill *models.Bill) error

	// GetBill retrieves a complete bill snapshot by ID, including
	// participants, items, assignments and paid flags.
	GetBill(ctx context.Context, billID string) (*models.Bill, error)

	// UpdateBill replaces the stored snapshot with the given one and
	// bumps UpdatedAt.
	UpdateBill(ctx context.Context, bill *models.Bill) error

	// DeleteBill removes a bill and everything hanging off it.
	DeleteBill(ctx context.Context, billID string) error

	// SaveSettlement persists the frozen snapshot produced at close.
	SaveSettlement(ctx context.Context, settlement *models.Settlement) error

	// GetSettlement retrieves the settlement for a bill.
	GetSettlement(ctx context.Context, billID string) (*models.Settlement, error)

	// CreateUser inserts a new registered user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email, nil when absent.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// Close releases any resources held by the store.
	Close() error
}
