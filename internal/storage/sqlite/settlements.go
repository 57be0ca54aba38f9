package sqlite

import (
	"context"
	"fmt"

	"github.com/ChiefGuap/divvit2.0/internal/models"
	"github.com/ChiefGuap/divvit2.0/internal/storage"
)

// SaveSettlement persists the per-participant totals frozen at close
// time. The scalar snapshot fields (pools, closed_at) already live on
// the bills row, so only the totals need their own table.
func (s *SQLiteStore) SaveSettlement(ctx context.Context, settlement *models.Settlement) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM settlement_totals WHERE bill_id = ?", settlement.BillID,
	); err != nil {
		return fmt.Errorf("failed to clear settlement totals: %w", err)
	}

	for pid, amount := range settlement.UserTotals {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO settlement_totals (bill_id, participant_id, amount) VALUES (?, ?, ?)",
			settlement.BillID, pid, amount,
		)
		if err != nil {
			return fmt.Errorf("failed to insert settlement total: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetSettlement rebuilds the settlement snapshot for a settled bill.
func (s *SQLiteStore) GetSettlement(ctx context.Context, billID string) (*models.Settlement, error) {
	bill, err := s.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	if bill.Status != models.StatusSettled {
		return nil, fmt.Errorf("settlement for bill %s: %w", billID, storage.ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT participant_id, amount FROM settlement_totals WHERE bill_id = ?",
		billID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get settlement totals: %w", err)
	}
	defer rows.Close()

	totals := make(map[string]float64)
	for rows.Next() {
		var pid string
		var amount float64
		if err := rows.Scan(&pid, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan settlement total: %w", err)
		}
		totals[pid] = amount
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settlement totals: %w", err)
	}

	var subtotal float64
	for _, it := range bill.Items {
		if it.Valid() {
			subtotal += it.Price
		}
	}

	return &models.Settlement{
		BillID:             bill.ID,
		Subtotal:           subtotal,
		TipAmount:          bill.TipAmount,
		TaxAmount:          bill.TaxAmount,
		Total:              subtotal + bill.TipAmount + bill.TaxAmount,
		UserTotals:         totals,
		PaidParticipantIDs: bill.PaidParticipantIDs,
		ClosedAt:           bill.ClosedAt,
	}, nil
}
