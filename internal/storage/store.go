// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/arkadiusoo/travelmate/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when an insert collides with an existing record.
var ErrConflict = errors.New("record already exists")

// ParticipantStore persists participant records keyed by trip and user or email.
type ParticipantStore interface {
	GetParticipant(ctx context.Context, id string) (*models.Participant, error)
	ListParticipantsByTrip(ctx context.Context, tripID string) ([]*models.Participant, error)
	// FindParticipantByTripAndUser returns ErrNotFound when the user has no record on the trip.
	FindParticipantByTripAndUser(ctx context.Context, tripID, userID string) (*models.Participant, error)
	FindParticipantByTripAndEmail(ctx context.Context, tripID, email string) (*models.Participant, error)
	ExistsParticipantByTripAndUser(ctx context.Context, tripID, userID string) (bool, error)
	ExistsParticipantByTripAndEmail(ctx context.Context, tripID, email string) (bool, error)
	// ListPendingParticipantsForUser returns PENDING records addressed to the user id or email.
	ListPendingParticipantsForUser(ctx context.Context, userID, email string) ([]*models.Participant, error)

	// SaveParticipant inserts or replaces the record. ID, CreatedAt and UpdatedAt are populated by the store.
	SaveParticipant(ctx context.Context, p *models.Participant) error

	// CreateParticipant inserts a new record. It returns ErrConflict when the user
	// already has a record on the trip.
	CreateParticipant(ctx context.Context, p *models.Participant) error

	// CreateFirstParticipant inserts p only if its trip has no participants yet,
	// checking and inserting in one transaction. Otherwise it returns ErrConflict.
	CreateFirstParticipant(ctx context.Context, p *models.Participant) error

	// UpdateParticipant loads the record, applies fn and saves the result in one transaction.
	// If fn returns an error nothing is written and that error is returned.
	UpdateParticipant(ctx context.Context, id string, fn func(p *models.Participant) error) (*models.Participant, error)

	DeleteParticipant(ctx context.Context, id string) error
}

// ExpenseStore persists expense records keyed by trip.
type ExpenseStore interface {
	GetExpense(ctx context.Context, id string) (*models.Expense, error)
	ListExpensesByTrip(ctx context.Context, tripID string) ([]*models.Expense, error)

	// SaveExpense inserts or replaces the expense and its shares.
	SaveExpense(ctx context.Context, e *models.Expense) error

	// UpdateExpense loads the expense, applies fn and saves the result in one transaction.
	UpdateExpense(ctx context.Context, id string, fn func(e *models.Expense) error) (*models.Expense, error)

	// DeleteExpense removes the expense. Deleting a missing id is not an error.
	DeleteExpense(ctx context.Context, id string) error
}

// UserDirectory resolves identities of registered users.
type UserDirectory interface {
	// FindUserIDByEmail returns ErrNotFound for unregistered emails.
	FindUserIDByEmail(ctx context.Context, email string) (string, error)
	FindEmailByUserID(ctx context.Context, userID string) (string, error)
	IsRegisteredUser(ctx context.Context, email string) (bool, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUsersByIDs(ctx context.Context, ids []string) (map[string]*models.User, error)
}

// UserStore adds account persistence to the directory.
type UserStore interface {
	UserDirectory
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenStore tracks revoked session tokens.
type TokenStore interface {
	RevokeToken(ctx context.Context, token *models.RevokedToken) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
	// DeleteExpiredRevokedTokens removes tokens that expired before now and reports how many were removed.
	DeleteExpiredRevokedTokens(ctx context.Context, now time.Time) (int64, error)
}

// Store defines the full set of storage operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	ParticipantStore
	ExpenseStore
	UserStore
	TokenStore

	// Close releases any resources held by the store.
	Close() error
}
