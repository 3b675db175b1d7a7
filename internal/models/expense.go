package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category classifies an expense.
type Category string

const (
	CategoryFood          Category = "FOOD"
	CategoryAccommodation Category = "ACCOMMODATION"
	CategoryTransport     Category = "TRANSPORT"
	CategoryEntertainment Category = "ENTERTAINMENT"
	CategoryOther         Category = "OTHER"
)

// MaxDescriptionLength bounds Expense.Description, in characters.
const MaxDescriptionLength = 255

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryFood, CategoryAccommodation, CategoryTransport, CategoryEntertainment, CategoryOther:
		return true
	}
	return false
}

// ParseCategory converts a label such as "food" to a Category.
func ParseCategory(label string) (Category, error) {
	c := Category(strings.ToUpper(strings.TrimSpace(label)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown category: %q", label)
	}
	return c, nil
}

// Expense represents a shared cost on a trip.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// TripID is the trip this expense belongs to.
	// Always taken from the request route, never from the client body.
	TripID string

	// Amount is the total paid, as an exact decimal.
	Amount decimal.Decimal

	// Category classifies the expense.
	Category Category

	// Description is free text, at most MaxDescriptionLength characters.
	Description string

	// Date is the day the expense happened (time of day is ignored).
	Date time.Time

	// PayerID is the user who paid the full amount.
	PayerID string

	// ParticipantShares maps user ID to the fraction of Amount that user is responsible for.
	// Values are non-negative and sum to 1.
	ParticipantShares map[string]decimal.Decimal

	// CreatedAt and UpdatedAt are maintained by the store.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns a deep copy of the expense.
func (e *Expense) Clone() *Expense {
	c := *e
	if e.ParticipantShares != nil {
		c.ParticipantShares = make(map[string]decimal.Decimal, len(e.ParticipantShares))
		for k, v := range e.ParticipantShares {
			c.ParticipantShares[k] = v
		}
	}
	return &c
}
