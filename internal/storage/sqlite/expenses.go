package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/storage"
)

const (
	expenseColumns = `id, trip_id, amount, category, description, expense_date, payer_id, created_at, updated_at`
	dateLayout     = "2006-01-02"
)

func scanExpense(row rowScanner) (*models.Expense, error) {
	e := &models.Expense{}
	var (
		category, date       string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&e.ID, &e.TripID, &e.Amount, &category, &e.Description, &date, &e.PayerID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	parsed, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, fmt.Errorf("invalid stored date %q: %w", date, err)
	}
	e.Category = models.Category(category)
	e.Date = parsed
	e.CreatedAt = fromMillis(createdAt)
	e.UpdatedAt = fromMillis(updatedAt)
	e.ParticipantShares = make(map[string]decimal.Decimal)
	return e, nil
}

// loadShares fills ParticipantShares for the given expenses, keyed by expense ID.
func loadShares(ctx context.Context, q querier, where string, args []any, byID map[string]*models.Expense) error {
	rows, err := q.QueryContext(ctx,
		`SELECT s.expense_id, s.participant_id, s.share
		 FROM expense_shares s JOIN expenses e ON e.id = s.expense_id
		 WHERE `+where,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to get expense shares: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			expenseID, participantID string
			share                    decimal.Decimal
		)
		if err := rows.Scan(&expenseID, &participantID, &share); err != nil {
			return fmt.Errorf("failed to scan expense share: %w", err)
		}
		if e, ok := byID[expenseID]; ok {
			e.ParticipantShares[participantID] = share
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate expense shares: %w", err)
	}
	return nil
}

func getExpense(ctx context.Context, q querier, id string) (*models.Expense, error) {
	e, err := scanExpense(q.QueryRowContext(ctx, "SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	if err := loadShares(ctx, q, "e.id = ?", []any{id}, map[string]*models.Expense{id: e}); err != nil {
		return nil, err
	}
	return e, nil
}

// GetExpense retrieves an expense by ID, including its shares.
func (s *SQLiteStore) GetExpense(ctx context.Context, id string) (*models.Expense, error) {
	return getExpense(ctx, s.db, id)
}

// ListExpensesByTrip retrieves all expenses of a trip ordered by date.
func (s *SQLiteStore) ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE trip_id = ? ORDER BY expense_date, created_at, id",
		tripID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.Expense
	byID := make(map[string]*models.Expense)
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, e)
		byID[e.ID] = e
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	// Release the connection before querying shares
	rows.Close()

	if len(expenses) == 0 {
		return expenses, nil
	}
	if err := loadShares(ctx, s.db, "e.trip_id = ?", []any{tripID}, byID); err != nil {
		return nil, err
	}
	return expenses, nil
}

// SaveExpense inserts or replaces an expense and its shares.
func (s *SQLiteStore) SaveExpense(ctx context.Context, e *models.Expense) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		return s.saveExpense(ctx, tx, e)
	})
}

func (s *SQLiteStore) saveExpense(ctx context.Context, q querier, e *models.Expense) error {
	now := s.now().UTC()
	// Generate ID if not set
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	e.UpdatedAt = now

	_, err := q.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			amount = excluded.amount,
			category = excluded.category,
			description = excluded.description,
			expense_date = excluded.expense_date,
			payer_id = excluded.payer_id,
			updated_at = excluded.updated_at`,
		e.ID, e.TripID, e.Amount.String(), string(e.Category), e.Description,
		e.Date.Format(dateLayout), e.PayerID, e.CreatedAt.UnixMilli(), e.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save expense: %w", err)
	}

	// Replace shares
	if _, err := q.ExecContext(ctx, "DELETE FROM expense_shares WHERE expense_id = ?", e.ID); err != nil {
		return fmt.Errorf("failed to clear expense shares: %w", err)
	}
	for participantID, share := range e.ParticipantShares {
		_, err := q.ExecContext(ctx,
			"INSERT INTO expense_shares (expense_id, participant_id, share) VALUES (?, ?, ?)",
			e.ID, participantID, share.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense share: %w", err)
		}
	}
	return nil
}

// UpdateExpense applies fn to the current expense and saves it in one transaction.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, id string, fn func(e *models.Expense) error) (*models.Expense, error) {
	var updated *models.Expense
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		e, err := getExpense(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(e); err != nil {
			return err
		}
		if err := s.saveExpense(ctx, tx, e); err != nil {
			return err
		}
		updated = e
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// DeleteExpense removes an expense; its shares cascade.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	return nil
}
