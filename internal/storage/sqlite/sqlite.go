// Package sqlite provides a SQLite-backed implementation of the
// storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// The pragma rides on the DSN so every pooled connection enforces
	// foreign keys; a one-off Exec would only cover the connection that
	// happened to run it.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateBill persists a new bill snapshot.
func (s *SQLiteStore) CreateBill(ctx context.Context, bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.New().String()
	}
	now := time.Now().Unix()
	if bill.CreatedAt == 0 {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now
	if bill.Title == "" {
		bill.Title = generateTitle(bill.Participants)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bills (id, title, host_participant_id, status, tip_amount, tax_amount, created_at, updated_at, closed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		bill.ID, bill.Title, bill.HostParticipantID, string(bill.Status),
		bill.TipAmount, bill.TaxAmount, bill.CreatedAt, bill.UpdatedAt, bill.ClosedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bill: %w", err)
	}

	if err := insertBillRows(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// UpdateBill replaces the stored snapshot with the given one. The child
// rows are rewritten wholesale; this is the last-writer-wins semantics
// the editing flow relies on.
func (s *SQLiteStore) UpdateBill(ctx context.Context, bill *models.Bill) error {
	// Strictly increasing so pollers see back-to-back edits within the
	// same second.
	now := time.Now().Unix()
	if now <= bill.UpdatedAt {
		now = bill.UpdatedAt + 1
	}
	bill.UpdatedAt = now

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE bills SET title = ?, host_participant_id = ?, status = ?, tip_amount = ?, tax_amount = ?, updated_at = ?, closed_at = ?
		 WHERE id = ?`,
		bill.Title, bill.HostParticipantID, string(bill.Status),
		bill.TipAmount, bill.TaxAmount, bill.UpdatedAt, bill.ClosedAt, bill.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill %s: %w", bill.ID, storage.ErrNotFound)
	}

	// item_assignments cascade from items.
	for _, stmt := range []string{
		"DELETE FROM items WHERE bill_id = ?",
		"DELETE FROM participants WHERE bill_id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, bill.ID); err != nil {
			return fmt.Errorf("failed to clear bill rows: %w", err)
		}
	}

	if err := insertBillRows(ctx, tx, bill); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertBillRows writes participants, items, assignments and paid
// flags for a bill inside an open transaction.
func insertBillRows(ctx context.Context, tx *sql.Tx, bill *models.Bill) error {
	for i, p := range bill.Participants {
		if p.ID == "" {
			return fmt.Errorf("participant %q has no id", p.DisplayName)
		}
		paid := 0
		if p.ID != bill.HostParticipantID && bill.IsPaid(p.ID) {
			paid = 1
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO participants (id, bill_id, user_id, display_name, kind, color_token, initials, join_index, paid)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, bill.ID, p.UserID, p.DisplayName, string(p.Kind), p.ColorToken, p.Initials, i, paid,
		)
		if err != nil {
			return fmt.Errorf("failed to insert participant: %w", err)
		}
	}

	for i, item := range bill.Items {
		if item.ID == "" {
			return fmt.Errorf("item %q has no id", item.Name)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO items (id, bill_id, name, price, raw_price, position) VALUES (?, ?, ?, ?, ?, ?)",
			item.ID, bill.ID, item.Name, item.Price, item.RawPrice, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert item: %w", err)
		}
		for j, pid := range bill.Assignments[item.ID] {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO item_assignments (item_id, participant_id, position) VALUES (?, ?, ?)",
				item.ID, pid, j,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item assignment: %w", err)
			}
		}
	}
	return nil
}

// GetBill retrieves a complete bill snapshot by ID.
func (s *SQLiteStore) GetBill(ctx context.Context, billID string) (*models.Bill, error) {
	bill := &models.Bill{Assignments: make(map[string][]string)}
	var status string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, host_participant_id, status, tip_amount, tax_amount, created_at, updated_at, closed_at
		 FROM bills WHERE id = ?`,
		billID,
	).Scan(&bill.ID, &bill.Title, &bill.HostParticipantID, &status,
		&bill.TipAmount, &bill.TaxAmount, &bill.CreatedAt, &bill.UpdatedAt, &bill.ClosedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bill: %w", err)
	}
	bill.Status = models.Status(status)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, display_name, kind, color_token, initials, paid
		 FROM participants WHERE bill_id = ? ORDER BY join_index`,
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Participant
		var kind string
		var paid int
		if err := rows.Scan(&p.ID, &p.UserID, &p.DisplayName, &kind, &p.ColorToken, &p.Initials, &paid); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.Kind = models.ParticipantKind(kind)
		bill.Participants = append(bill.Participants, p)
		if paid == 1 {
			bill.PaidParticipantIDs = append(bill.PaidParticipantIDs, p.ID)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	itemRows, err := s.db.QueryContext(ctx,
		"SELECT id, name, price, raw_price FROM items WHERE bill_id = ? ORDER BY position",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item models.Item
		if err := itemRows.Scan(&item.ID, &item.Name, &item.Price, &item.RawPrice); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		bill.Items = append(bill.Items, item)
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	for i := range bill.Items {
		item := &bill.Items[i]
		assignRows, err := s.db.QueryContext(ctx,
			"SELECT participant_id FROM item_assignments WHERE item_id = ? ORDER BY position",
			item.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to get item assignments: %w", err)
		}
		var assignees []string
		for assignRows.Next() {
			var pid string
			if err := assignRows.Scan(&pid); err != nil {
				assignRows.Close()
				return nil, fmt.Errorf("failed to scan assignment: %w", err)
			}
			assignees = append(assignees, pid)
		}
		assignRows.Close()
		if err := assignRows.Err(); err != nil {
			return nil, fmt.Errorf("failed to iterate assignments: %w", err)
		}
		if len(assignees) > 0 {
			bill.Assignments[item.ID] = assignees
		}
	}

	return bill, nil
}

// DeleteBill removes a bill; participants, items, assignments and
// settlement totals cascade.
func (s *SQLiteStore) DeleteBill(ctx context.Context, billID string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bills WHERE id = ?", billID)
	if err != nil {
		return fmt.Errorf("failed to delete bill: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("bill %s: %w", billID, storage.ErrNotFound)
	}
	return nil
}

// generateTitle creates an auto-generated title from participants.
func generateTitle(participants []models.Participant) string {
	names := make([]string, len(participants))
	for i, p := range participants {
		names[i] = p.DisplayName
	}
	if len(names) == 0 {
		return fmt.Sprintf("Bill - %s", time.Now().Format("Jan 2, 2006"))
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
