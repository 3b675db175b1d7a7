package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
	"github.com/arkadiusoo/travelmate/internal/auth"
	"github.com/arkadiusoo/travelmate/internal/calculator"
	"github.com/arkadiusoo/travelmate/internal/expense"
	"github.com/arkadiusoo/travelmate/internal/middleware"
	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/participant"
	"github.com/arkadiusoo/travelmate/pkg/api"
)

var (
	ErrInvalidDate    = apperrors.Validation("Invalid date, expected YYYY-MM-DD")
	ErrTripIDRequired = apperrors.Validation("Trip id must be provided")
)

// actorID returns the authenticated user of the request.
func actorID(ctx context.Context) (string, error) {
	userID := middleware.GetUserID(ctx)
	if userID == "" {
		return "", apperrors.ToConnect(auth.ErrMissingToken)
	}
	return userID, nil
}

func toAPIUser(u *models.User) *api.User {
	return &api.User{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		CreatedAt: time.Unix(u.CreatedAt, 0).UTC(),
	}
}

func toAPIParticipant(p *models.Participant) *api.Participant {
	return &api.Participant{
		ID:        p.ID,
		TripID:    p.TripID,
		UserID:    p.UserID,
		Email:     p.Email,
		Role:      string(p.Role),
		Status:    string(p.Status),
		JoinedAt:  p.JoinedAt,
		CreatedAt: p.CreatedAt,
	}
}

func toAPIParticipantView(v participant.View) *api.Participant {
	out := toAPIParticipant(v.Participant)
	out.Email = v.Email
	out.FirstName = v.FirstName
	out.LastName = v.LastName
	out.DisplayName = v.DisplayName()
	return out
}

func toAPIParticipantViews(views []participant.View) []*api.Participant {
	out := make([]*api.Participant, len(views))
	for i, v := range views {
		out[i] = toAPIParticipantView(v)
	}
	return out
}

func parseRole(label string) (models.Role, error) {
	if strings.TrimSpace(label) == "" {
		return "", nil
	}
	role, err := models.ParseRole(label)
	if err != nil {
		return "", participant.ErrInvalidRole
	}
	return role, nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func moneyMap(m map[string]decimal.Decimal) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = money(v)
	}
	return out
}

func toAPIExpense(e *models.Expense) *api.Expense {
	shares := make(map[string]string, len(e.ParticipantShares))
	for id, share := range e.ParticipantShares {
		shares[id] = share.String()
	}
	return &api.Expense{
		ID:                e.ID,
		TripID:            e.TripID,
		Amount:            money(e.Amount),
		Category:          string(e.Category),
		Description:       e.Description,
		Date:              e.Date.Format(api.DateLayout),
		PayerID:           e.PayerID,
		ParticipantShares: shares,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         e.UpdatedAt,
	}
}

func toAPIExpenses(expenses []*models.Expense) []*api.Expense {
	out := make([]*api.Expense, len(expenses))
	for i, e := range expenses {
		out[i] = toAPIExpense(e)
	}
	return out
}

func toAPIBudget(s *calculator.BudgetSummary) *api.BudgetSummary {
	settlements := make([]api.Settlement, len(s.Settlements))
	for i, edge := range s.Settlements {
		settlements[i] = api.Settlement{From: edge.From, To: edge.To, Amount: money(edge.Amount)}
	}
	return &api.BudgetSummary{
		TotalTripCost:    money(s.TotalTripCost),
		ParticipantShare: moneyMap(s.ParticipantShare),
		ActualPaid:       moneyMap(s.ActualPaid),
		Balance:          moneyMap(s.Balance),
		Settlements:      settlements,
	}
}

func parseDate(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(api.DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func parseCategory(label string) (models.Category, error) {
	c, err := models.ParseCategory(label)
	if err != nil {
		return "", expense.ErrInvalidCategory
	}
	return c, nil
}

func parseExpenseInput(in api.ExpenseInput) (expense.Input, error) {
	category, err := parseCategory(in.Category)
	if err != nil {
		return expense.Input{}, err
	}
	date, err := parseDate(in.Date)
	if err != nil {
		return expense.Input{}, err
	}
	return expense.Input{
		Amount:            in.Amount,
		Category:          category,
		Description:       in.Description,
		Date:              date,
		PayerID:           in.PayerID,
		ParticipantShares: in.ParticipantShares,
	}, nil
}

// parsePatch converts each supplied key on its own. Unknown keys are rejected.
func parsePatch(fields map[string]json.RawMessage) (expense.Patch, error) {
	var patch expense.Patch
	for key, raw := range fields {
		invalid := apperrors.Validation("Invalid value for field %s", key)
		switch key {
		case "amount":
			var amount decimal.Decimal
			if err := json.Unmarshal(raw, &amount); err != nil {
				return patch, invalid
			}
			patch.Amount = &amount

		case "category":
			var label string
			if err := json.Unmarshal(raw, &label); err != nil {
				return patch, invalid
			}
			category, err := parseCategory(label)
			if err != nil {
				return patch, err
			}
			patch.Category = &category

		case "description":
			var description string
			if err := json.Unmarshal(raw, &description); err != nil {
				return patch, invalid
			}
			patch.Description = &description

		case "date":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return patch, invalid
			}
			date, err := time.Parse(api.DateLayout, strings.TrimSpace(s))
			if err != nil {
				return patch, ErrInvalidDate
			}
			patch.Date = &date

		case "payerId":
			var payerID string
			if err := json.Unmarshal(raw, &payerID); err != nil {
				return patch, invalid
			}
			patch.PayerID = &payerID

		case "participantShares":
			var shares map[string]decimal.Decimal
			if err := json.Unmarshal(raw, &shares); err != nil {
				return patch, invalid
			}
			patch.ParticipantShares = shares
			patch.SharesSet = true

		default:
			return patch, apperrors.Validation("Unknown field: %s", key)
		}
	}
	return patch, nil
}
