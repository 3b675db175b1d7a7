package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
	"github.com/arkadiusoo/travelmate/internal/expense"
	"github.com/arkadiusoo/travelmate/pkg/api"
)

// ExpenseService implements the Connect ExpenseService.
type ExpenseService struct {
	expenses *expense.Service
}

var _ api.ExpenseServiceHandler = (*ExpenseService)(nil)

// NewExpenseService creates an ExpenseService backed by the expense ledger.
func NewExpenseService(expenses *expense.Service) *ExpenseService {
	return &ExpenseService{expenses: expenses}
}

// ListExpenses lists a trip's expenses.
func (s *ExpenseService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	expenses, err := s.expenses.GetExpensesByTrip(ctx, req.Msg.TripID, actor)
	if err != nil {
		slog.Warn("ListExpenses failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("ListExpenses successful", "trip_id", req.Msg.TripID, "count", len(expenses))
	return connect.NewResponse(&api.ListExpensesResponse{Expenses: toAPIExpenses(expenses)}), nil
}

// GetExpense returns one expense.
func (s *ExpenseService) GetExpense(ctx context.Context, req *connect.Request[api.GetExpenseRequest]) (*connect.Response[api.GetExpenseResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	e, err := s.expenses.GetExpense(ctx, req.Msg.ExpenseID, actor)
	if err != nil {
		slog.Warn("GetExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.GetExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// AddExpense records an expense on the trip named by the request.
func (s *ExpenseService) AddExpense(ctx context.Context, req *connect.Request[api.AddExpenseRequest]) (*connect.Response[api.AddExpenseResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("AddExpense request received",
		"trip_id", req.Msg.TripID,
		"amount", req.Msg.Expense.Amount.String(),
		"category", req.Msg.Expense.Category,
		"shares_count", len(req.Msg.Expense.ParticipantShares),
	)

	if req.Msg.TripID == "" {
		return nil, apperrors.ToConnect(ErrTripIDRequired)
	}
	in, err := parseExpenseInput(req.Msg.Expense)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	e, err := s.expenses.AddExpense(ctx, req.Msg.TripID, in, actor)
	if err != nil {
		slog.Warn("AddExpense failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.AddExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// UpdateExpense replaces all mutable fields of an expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, req *connect.Request[api.UpdateExpenseRequest]) (*connect.Response[api.UpdateExpenseResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("UpdateExpense request received", "expense_id", req.Msg.ExpenseID)

	in, err := parseExpenseInput(req.Msg.Expense)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	e, err := s.expenses.UpdateExpense(ctx, req.Msg.ExpenseID, in, actor)
	if err != nil {
		slog.Warn("UpdateExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.UpdateExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// PatchExpense updates only the supplied fields.
func (s *ExpenseService) PatchExpense(ctx context.Context, req *connect.Request[api.PatchExpenseRequest]) (*connect.Response[api.PatchExpenseResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(req.Msg.Fields))
	for k := range req.Msg.Fields {
		keys = append(keys, k)
	}
	slog.Info("PatchExpense request received", "expense_id", req.Msg.ExpenseID, "fields", keys)

	patch, err := parsePatch(req.Msg.Fields)
	if err != nil {
		return nil, apperrors.ToConnect(err)
	}

	e, err := s.expenses.PatchExpense(ctx, req.Msg.ExpenseID, patch, actor)
	if err != nil {
		slog.Warn("PatchExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.PatchExpenseResponse{Expense: toAPIExpense(e)}), nil
}

// DeleteExpense removes an expense; repeating the call succeeds.
func (s *ExpenseService) DeleteExpense(ctx context.Context, req *connect.Request[api.DeleteExpenseRequest]) (*connect.Response[api.DeleteExpenseResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("DeleteExpense request received", "expense_id", req.Msg.ExpenseID)

	if err := s.expenses.DeleteExpense(ctx, req.Msg.ExpenseID, actor); err != nil {
		slog.Warn("DeleteExpense failed", "expense_id", req.Msg.ExpenseID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	return connect.NewResponse(&api.DeleteExpenseResponse{}), nil
}

// GetBudgetSummary computes who paid and who owes on a trip.
func (s *ExpenseService) GetBudgetSummary(ctx context.Context, req *connect.Request[api.GetBudgetSummaryRequest]) (*connect.Response[api.GetBudgetSummaryResponse], error) {
	actor, err := actorID(ctx)
	if err != nil {
		return nil, err
	}

	summary, err := s.expenses.GetBudgetSummary(ctx, req.Msg.TripID, actor)
	if err != nil {
		slog.Warn("GetBudgetSummary failed", "trip_id", req.Msg.TripID, "error", err)
		return nil, apperrors.ToConnect(err)
	}

	slog.Info("GetBudgetSummary successful",
		"trip_id", req.Msg.TripID,
		"total", summary.TotalTripCost.StringFixed(2),
		"participants", len(summary.Balance),
	)
	return connect.NewResponse(&api.GetBudgetSummaryResponse{Summary: toAPIBudget(summary)}), nil
}
