// Package expense owns the trip expense ledger and derives budget summaries from it.
package expense

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
	"github.com/arkadiusoo/travelmate/internal/calculator"
	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/permission"
	"github.com/arkadiusoo/travelmate/internal/storage"
)

var (
	ErrExpenseNotFound = apperrors.NotFound("Expense not found")

	ErrInvalidAmount      = apperrors.Validation("Amount must be greater than zero")
	ErrInvalidCategory    = apperrors.Validation("Invalid category")
	ErrDescriptionTooLong = apperrors.Validation("Description must be at most %d characters", models.MaxDescriptionLength)
	ErrMissingPayer       = apperrors.Validation("Payer must be provided")
	ErrMissingDate        = apperrors.Validation("Date must be provided")

	ErrCannotAddExpense    = apperrors.PermissionDenied("You do not have permission to add expenses to this trip")
	ErrCannotDeleteExpense = apperrors.PermissionDenied("You do not have permission to delete this expense")
	ErrNotTripParticipant  = apperrors.PermissionDenied("You are not a participant of this trip")
)

// Service manages expenses of trips.
type Service struct {
	expenses storage.ExpenseStore
	perms    *permission.Engine
}

// NewService creates a Service over the given store.
func NewService(expenses storage.ExpenseStore, perms *permission.Engine) *Service {
	return &Service{expenses: expenses, perms: perms}
}

// Input carries every mutable field of an expense.
type Input struct {
	Amount      decimal.Decimal
	Category    models.Category
	Description string
	Date        time.Time
	PayerID     string
	// ParticipantShares is nil when not supplied. A non-nil mapping must sum to 1.
	ParticipantShares map[string]decimal.Decimal
}

// Patch carries the fields of a partial update. Nil fields are left unchanged.
type Patch struct {
	Amount            *decimal.Decimal
	Category          *models.Category
	Description       *string
	Date              *time.Time
	PayerID           *string
	ParticipantShares map[string]decimal.Decimal
	// SharesSet marks ParticipantShares as supplied; the mapping must then sum to 1.
	SharesSet bool
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Amount == nil && p.Category == nil && p.Description == nil &&
		p.Date == nil && p.PayerID == nil && !p.SharesSet
}

// GetExpensesByTrip lists a trip's expenses.
func (s *Service) GetExpensesByTrip(ctx context.Context, tripID, actorID string) ([]*models.Expense, error) {
	if err := s.requireAccepted(ctx, tripID, actorID); err != nil {
		return nil, err
	}
	return s.expenses.ListExpensesByTrip(ctx, tripID)
}

// GetExpense returns a single expense.
func (s *Service) GetExpense(ctx context.Context, id, actorID string) (*models.Expense, error) {
	e, err := s.getExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireAccepted(ctx, e.TripID, actorID); err != nil {
		return nil, err
	}
	return e, nil
}

// AddExpense records a new expense on tripID. The trip is always the one given here,
// never one named by the client payload.
func (s *Service) AddExpense(ctx context.Context, tripID string, in Input, actorID string) (*models.Expense, error) {
	if err := validateSupplied(in); err != nil {
		return nil, err
	}
	if err := s.requireAddExpenses(ctx, tripID, actorID); err != nil {
		return nil, err
	}

	e := &models.Expense{TripID: tripID}
	apply(e, in)
	if err := s.expenses.SaveExpense(ctx, e); err != nil {
		return nil, err
	}

	slog.Info("Expense added",
		"trip_id", tripID,
		"expense_id", e.ID,
		"amount", e.Amount.String(),
		"category", e.Category,
		"payer_id", e.PayerID,
		"added_by", actorID,
	)
	return e, nil
}

// UpdateExpense replaces every mutable field of an existing expense.
func (s *Service) UpdateExpense(ctx context.Context, id string, in Input, actorID string) (*models.Expense, error) {
	existing, err := s.getExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := validateSupplied(in); err != nil {
		return nil, err
	}
	if err := s.requireAddExpenses(ctx, existing.TripID, actorID); err != nil {
		return nil, err
	}

	e, err := s.expenses.UpdateExpense(ctx, id, func(e *models.Expense) error {
		apply(e, in)
		return nil
	})
	if err != nil {
		return nil, translateNotFound(err)
	}

	slog.Info("Expense updated", "trip_id", e.TripID, "expense_id", id, "updated_by", actorID)
	return e, nil
}

// PatchExpense applies only the supplied fields. The merged expense is validated as a whole
// before it is saved.
func (s *Service) PatchExpense(ctx context.Context, id string, patch Patch, actorID string) (*models.Expense, error) {
	existing, err := s.getExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireAddExpenses(ctx, existing.TripID, actorID); err != nil {
		return nil, err
	}
	if patch.SharesSet {
		if err := calculator.ValidateSuppliedShares(patch.ParticipantShares); err != nil {
			return nil, err
		}
	}

	e, err := s.expenses.UpdateExpense(ctx, id, func(e *models.Expense) error {
		merged := e.Clone()
		if patch.Amount != nil {
			merged.Amount = *patch.Amount
		}
		if patch.Category != nil {
			merged.Category = *patch.Category
		}
		if patch.Description != nil {
			merged.Description = *patch.Description
		}
		if patch.Date != nil {
			merged.Date = *patch.Date
		}
		if patch.PayerID != nil {
			merged.PayerID = strings.TrimSpace(*patch.PayerID)
		}
		if patch.SharesSet {
			merged.ParticipantShares = patch.ParticipantShares
		}
		if err := validateInput(inputOf(merged)); err != nil {
			return err
		}
		*e = *merged
		return nil
	})
	if err != nil {
		return nil, translateNotFound(err)
	}

	slog.Info("Expense patched", "trip_id", e.TripID, "expense_id", id, "updated_by", actorID)
	return e, nil
}

// DeleteExpense removes an expense. Deleting an expense that no longer exists succeeds.
// Organizers may delete any expense; members may delete the ones they paid.
func (s *Service) DeleteExpense(ctx context.Context, id, actorID string) error {
	existing, err := s.expenses.GetExpense(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Debug("Expense already deleted", "expense_id", id)
		return nil
	}
	if err != nil {
		return err
	}

	ok, err := s.perms.CanManageBudgetAccepted(ctx, existing.TripID, actorID)
	if err != nil {
		return err
	}
	if !ok && existing.PayerID == actorID {
		ok, err = s.perms.CanAddExpensesAccepted(ctx, existing.TripID, actorID)
		if err != nil {
			return err
		}
	}
	if !ok {
		return ErrCannotDeleteExpense
	}

	if err := s.expenses.DeleteExpense(ctx, id); err != nil {
		return err
	}

	slog.Info("Expense deleted", "trip_id", existing.TripID, "expense_id", id, "deleted_by", actorID)
	return nil
}

// GetBudgetSummary recomputes the trip's budget from its current expenses.
func (s *Service) GetBudgetSummary(ctx context.Context, tripID, actorID string) (*calculator.BudgetSummary, error) {
	if err := s.requireAccepted(ctx, tripID, actorID); err != nil {
		return nil, err
	}

	expenses, err := s.expenses.ListExpensesByTrip(ctx, tripID)
	if err != nil {
		return nil, err
	}

	input := make([]calculator.ExpenseForBudget, 0, len(expenses))
	for _, e := range expenses {
		input = append(input, calculator.ExpenseForBudget{
			Amount:  e.Amount,
			PayerID: e.PayerID,
			Shares:  e.ParticipantShares,
		})
	}
	summary := calculator.CalculateBudgetSummary(input)

	slog.Debug("Budget summary computed",
		"trip_id", tripID,
		"expenses", len(expenses),
		"total", summary.TotalTripCost.StringFixed(2),
		"settlements", len(summary.Settlements),
	)
	return &summary, nil
}

// validateSupplied validates client input, where a non-nil share mapping was sent explicitly.
func validateSupplied(in Input) error {
	if err := validateInput(in); err != nil {
		return err
	}
	if in.ParticipantShares != nil {
		return calculator.ValidateSuppliedShares(in.ParticipantShares)
	}
	return nil
}

func validateInput(in Input) error {
	if !in.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !in.Category.Valid() {
		return ErrInvalidCategory
	}
	if utf8.RuneCountInString(in.Description) > models.MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if strings.TrimSpace(in.PayerID) == "" {
		return ErrMissingPayer
	}
	if in.Date.IsZero() {
		return ErrMissingDate
	}
	return calculator.ValidateShares(in.ParticipantShares)
}

func apply(e *models.Expense, in Input) {
	e.Amount = in.Amount
	e.Category = in.Category
	e.Description = in.Description
	e.Date = in.Date
	e.PayerID = strings.TrimSpace(in.PayerID)
	e.ParticipantShares = in.ParticipantShares
}

func inputOf(e *models.Expense) Input {
	return Input{
		Amount:            e.Amount,
		Category:          e.Category,
		Description:       e.Description,
		Date:              e.Date,
		PayerID:           e.PayerID,
		ParticipantShares: e.ParticipantShares,
	}
}

func (s *Service) getExpense(ctx context.Context, id string) (*models.Expense, error) {
	e, err := s.expenses.GetExpense(ctx, id)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return e, nil
}

func (s *Service) requireAccepted(ctx context.Context, tripID, actorID string) error {
	ok, err := s.perms.IsAcceptedParticipant(ctx, tripID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotTripParticipant
	}
	return nil
}

func (s *Service) requireAddExpenses(ctx context.Context, tripID, actorID string) error {
	ok, err := s.perms.CanAddExpensesAccepted(ctx, tripID, actorID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCannotAddExpense
	}
	return nil
}

func translateNotFound(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(ErrExpenseNotFound.Kind, ErrExpenseNotFound.Message, err)
	}
	return err
}
