package api

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of expense dates.
const DateLayout = "2006-01-02"

// Auth

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	CreatedAt time.Time `json:"createdAt"`
}

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type RegisterResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User      *User     `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LogoutRequest struct{}

type LogoutResponse struct{}

type GetCurrentUserRequest struct{}

type GetCurrentUserResponse struct {
	User *User `json:"user"`
}

// Participants

type Participant struct {
	ID          string     `json:"id"`
	TripID      string     `json:"tripId"`
	UserID      string     `json:"userId,omitempty"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName,omitempty"`
	LastName    string     `json:"lastName,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	JoinedAt    *time.Time `json:"joinedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// AddParticipantRequest invites a user by id, email, or both.
type AddParticipantRequest struct {
	TripID string `json:"tripId"`
	UserID string `json:"userId,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   string `json:"role,omitempty"`
}

type AddParticipantResponse struct {
	Participant *Participant `json:"participant"`
}

type UpdateParticipantRoleRequest struct {
	ParticipantID string `json:"participantId"`
	Role          string `json:"role"`
}

type UpdateParticipantRoleResponse struct {
	Participant *Participant `json:"participant"`
}

type RemoveParticipantRequest struct {
	ParticipantID string `json:"participantId"`
}

type RemoveParticipantResponse struct{}

type RemoveParticipantByEmailRequest struct {
	TripID string `json:"tripId"`
	Email  string `json:"email"`
}

type RemoveParticipantByEmailResponse struct{}

type RespondToInvitationRequest struct {
	ParticipantID string `json:"participantId"`
	Status        string `json:"status"`
}

type RespondToInvitationResponse struct {
	Participant *Participant `json:"participant"`
}

type ListParticipantsRequest struct {
	TripID string `json:"tripId"`
}

type ListParticipantsResponse struct {
	Participants []*Participant `json:"participants"`
}

type ListMyInvitationsRequest struct{}

type ListMyInvitationsResponse struct {
	Invitations []*Participant `json:"invitations"`
}

// CreateTripOrganizerRequest registers the caller as organizer of a trip with no participants yet.
type CreateTripOrganizerRequest struct {
	TripID string `json:"tripId"`
}

type CreateTripOrganizerResponse struct {
	Participant *Participant `json:"participant"`
}

// Expenses

// Expense is the read model. Money is rendered with two decimal places.
type Expense struct {
	ID                string            `json:"id"`
	TripID            string            `json:"tripId"`
	Amount            string            `json:"amount"`
	Category          string            `json:"category"`
	Description       string            `json:"description"`
	Date              string            `json:"date"`
	PayerID           string            `json:"payerId"`
	ParticipantShares map[string]string `json:"participantShares"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// ExpenseInput carries the mutable fields of an expense. Amount and shares accept
// JSON numbers or decimal strings.
type ExpenseInput struct {
	Amount            decimal.Decimal            `json:"amount"`
	Category          string                     `json:"category"`
	Description       string                     `json:"description"`
	Date              string                     `json:"date"`
	PayerID           string                     `json:"payerId"`
	ParticipantShares map[string]decimal.Decimal `json:"participantShares,omitempty"`
}

type ListExpensesRequest struct {
	TripID string `json:"tripId"`
}

type ListExpensesResponse struct {
	Expenses []*Expense `json:"expenses"`
}

type GetExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type GetExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// AddExpenseRequest adds an expense to TripID; the trip is never read from Expense.
type AddExpenseRequest struct {
	TripID  string       `json:"tripId"`
	Expense ExpenseInput `json:"expense"`
}

type AddExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type UpdateExpenseRequest struct {
	ExpenseID string       `json:"expenseId"`
	Expense   ExpenseInput `json:"expense"`
}

type UpdateExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

// PatchExpenseRequest changes only the keys present in Fields. Recognized keys are
// amount, category, description, date, payerId and participantShares.
type PatchExpenseRequest struct {
	ExpenseID string                     `json:"expenseId"`
	Fields    map[string]json.RawMessage `json:"fields"`
}

type PatchExpenseResponse struct {
	Expense *Expense `json:"expense"`
}

type DeleteExpenseRequest struct {
	ExpenseID string `json:"expenseId"`
}

type DeleteExpenseResponse struct{}

type GetBudgetSummaryRequest struct {
	TripID string `json:"tripId"`
}

type Settlement struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"`
}

type BudgetSummary struct {
	TotalTripCost    string            `json:"totalTripCost"`
	ParticipantShare map[string]string `json:"participantShare"`
	ActualPaid       map[string]string `json:"actualPaid"`
	Balance          map[string]string `json:"balance"`
	Settlements      []Settlement      `json:"settlements"`
}

type GetBudgetSummaryResponse struct {
	Summary *BudgetSummary `json:"summary"`
}
