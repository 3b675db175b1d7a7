package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "travelmate-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_Participants(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("SaveParticipant generates ID and timestamps", func(t *testing.T) {
		p := &models.Participant{
			TripID: "trip-1",
			UserID: "user-1",
			Email:  "Alice@Example.com ",
			Role:   models.RoleMember,
			Status: models.StatusPending,
		}
		if err := store.SaveParticipant(ctx, p); err != nil {
			t.Fatalf("SaveParticipant failed: %v", err)
		}
		if p.ID == "" {
			t.Error("Expected participant ID to be generated")
		}
		if p.CreatedAt.IsZero() || p.UpdatedAt.IsZero() {
			t.Error("Expected timestamps to be set")
		}

		got, err := store.GetParticipant(ctx, p.ID)
		if err != nil {
			t.Fatalf("GetParticipant failed: %v", err)
		}
		if got.Email != "alice@example.com" {
			t.Errorf("Email not normalized: got %q", got.Email)
		}
		if got.Role != models.RoleMember || got.Status != models.StatusPending {
			t.Errorf("Role/Status mismatch: got %s/%s", got.Role, got.Status)
		}
		if got.JoinedAt != nil {
			t.Error("Expected JoinedAt to be nil")
		}
	})

	t.Run("Lookups by trip, user and email", func(t *testing.T) {
		p, err := store.FindParticipantByTripAndUser(ctx, "trip-1", "user-1")
		if err != nil {
			t.Fatalf("FindParticipantByTripAndUser failed: %v", err)
		}
		byEmail, err := store.FindParticipantByTripAndEmail(ctx, "trip-1", "alice@example.com")
		if err != nil {
			t.Fatalf("FindParticipantByTripAndEmail failed: %v", err)
		}
		if p.ID != byEmail.ID {
			t.Errorf("Expected same participant, got %s and %s", p.ID, byEmail.ID)
		}

		exists, err := store.ExistsParticipantByTripAndUser(ctx, "trip-1", "user-1")
		if err != nil || !exists {
			t.Errorf("ExistsParticipantByTripAndUser = %v, %v; want true", exists, err)
		}
		exists, err = store.ExistsParticipantByTripAndEmail(ctx, "trip-2", "alice@example.com")
		if err != nil || exists {
			t.Errorf("ExistsParticipantByTripAndEmail on other trip = %v, %v; want false", exists, err)
		}

		_, err = store.FindParticipantByTripAndUser(ctx, "trip-1", "nobody")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("Unique trip and user", func(t *testing.T) {
		dup := &models.Participant{TripID: "trip-1", UserID: "user-1", Role: models.RoleGuest, Status: models.StatusPending}
		if err := store.SaveParticipant(ctx, dup); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("SaveParticipant duplicate = %v, want ErrConflict", err)
		}
		if err := store.CreateParticipant(ctx, &models.Participant{TripID: "trip-1", UserID: "user-1", Role: models.RoleGuest, Status: models.StatusPending}); !errors.Is(err, storage.ErrConflict) {
			t.Errorf("CreateParticipant duplicate = %v, want ErrConflict", err)
		}
	})

	t.Run("UpdateParticipant applies changes atomically", func(t *testing.T) {
		p, _ := store.FindParticipantByTripAndUser(ctx, "trip-1", "user-1")
		joined := time.Now()

		updated, err := store.UpdateParticipant(ctx, p.ID, func(p *models.Participant) error {
			p.Status = models.StatusAccepted
			p.JoinedAt = &joined
			return nil
		})
		if err != nil {
			t.Fatalf("UpdateParticipant failed: %v", err)
		}
		if updated.Status != models.StatusAccepted {
			t.Errorf("Status = %s, want ACCEPTED", updated.Status)
		}

		got, _ := store.GetParticipant(ctx, p.ID)
		if got.JoinedAt == nil || got.JoinedAt.UnixMilli() != joined.UnixMilli() {
			t.Errorf("JoinedAt not persisted: %v", got.JoinedAt)
		}
	})

	t.Run("UpdateParticipant error leaves record untouched", func(t *testing.T) {
		p, _ := store.FindParticipantByTripAndUser(ctx, "trip-1", "user-1")
		boom := errors.New("boom")

		_, err := store.UpdateParticipant(ctx, p.ID, func(p *models.Participant) error {
			p.Role = models.RoleOrganizer
			return boom
		})
		if !errors.Is(err, boom) {
			t.Fatalf("Expected fn error, got %v", err)
		}

		got, _ := store.GetParticipant(ctx, p.ID)
		if got.Role != models.RoleMember {
			t.Errorf("Role changed despite error: %s", got.Role)
		}
	})

	t.Run("Concurrent updates serialize", func(t *testing.T) {
		p := &models.Participant{TripID: "trip-3", UserID: "user-9", Role: models.RoleGuest, Status: models.StatusPending}
		if err := store.SaveParticipant(ctx, p); err != nil {
			t.Fatalf("SaveParticipant failed: %v", err)
		}

		errNotPending := errors.New("not pending")
		var (
			wg        sync.WaitGroup
			mu        sync.Mutex
			successes int
		)
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.UpdateParticipant(ctx, p.ID, func(p *models.Participant) error {
					if p.Status != models.StatusPending {
						return errNotPending
					}
					p.Status = models.StatusAccepted
					return nil
				})
				if err == nil {
					mu.Lock()
					successes++
					mu.Unlock()
				}
			}()
		}
		wg.Wait()

		if successes != 1 {
			t.Errorf("Expected exactly one successful transition, got %d", successes)
		}
	})

	t.Run("ListPendingParticipantsForUser", func(t *testing.T) {
		store.SaveParticipant(ctx, &models.Participant{TripID: "trip-4", UserID: "user-7", Role: models.RoleGuest, Status: models.StatusPending})
		store.SaveParticipant(ctx, &models.Participant{TripID: "trip-5", UserID: "user-7", Role: models.RoleGuest, Status: models.StatusDeclined})

		pending, err := store.ListPendingParticipantsForUser(ctx, "user-7", "seven@example.com")
		if err != nil {
			t.Fatalf("ListPendingParticipantsForUser failed: %v", err)
		}
		if len(pending) != 1 || pending[0].TripID != "trip-4" {
			t.Errorf("Expected one pending invitation on trip-4, got %+v", pending)
		}
	})

	t.Run("DeleteParticipant", func(t *testing.T) {
		p, _ := store.FindParticipantByTripAndUser(ctx, "trip-1", "user-1")
		if err := store.DeleteParticipant(ctx, p.ID); err != nil {
			t.Fatalf("DeleteParticipant failed: %v", err)
		}
		if _, err := store.GetParticipant(ctx, p.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
		if err := store.DeleteParticipant(ctx, p.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound deleting twice, got %v", err)
		}
	})
}

func TestSQLiteStore_CreateFirstParticipant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &models.Participant{TripID: "trip-new", UserID: "user-1", Role: models.RoleOrganizer, Status: models.StatusAccepted}
	if err := store.CreateFirstParticipant(ctx, first); err != nil {
		t.Fatalf("CreateFirstParticipant failed: %v", err)
	}
	if first.ID == "" {
		t.Error("Expected participant ID to be generated")
	}

	second := &models.Participant{TripID: "trip-new", UserID: "user-2", Role: models.RoleOrganizer, Status: models.StatusAccepted}
	if err := store.CreateFirstParticipant(ctx, second); !errors.Is(err, storage.ErrConflict) {
		t.Errorf("CreateFirstParticipant on populated trip = %v, want ErrConflict", err)
	}

	other := &models.Participant{TripID: "trip-other", UserID: "user-2", Role: models.RoleOrganizer, Status: models.StatusAccepted}
	if err := store.CreateFirstParticipant(ctx, other); err != nil {
		t.Errorf("CreateFirstParticipant on other trip failed: %v", err)
	}

	participants, err := store.ListParticipantsByTrip(ctx, "trip-new")
	if err != nil {
		t.Fatalf("ListParticipantsByTrip failed: %v", err)
	}
	if len(participants) != 1 {
		t.Errorf("Expected 1 participant on trip-new, got %d", len(participants))
	}
}

func TestSQLiteStore_Expenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	newExpense := func() *models.Expense {
		return &models.Expense{
			TripID:      "trip-1",
			Amount:      decimal.RequireFromString("123.45"),
			Category:    models.CategoryFood,
			Description: "Dinner",
			Date:        time.Date(2026, 7, 14, 0, 0, 0, 0, time.UTC),
			PayerID:     "alice",
			ParticipantShares: map[string]decimal.Decimal{
				"alice": decimal.RequireFromString("0.25"),
				"bob":   decimal.RequireFromString("0.75"),
			},
		}
	}

	t.Run("SaveExpense and GetExpense round trip", func(t *testing.T) {
		original := newExpense()
		if err := store.SaveExpense(ctx, original); err != nil {
			t.Fatalf("SaveExpense failed: %v", err)
		}
		if original.ID == "" {
			t.Error("Expected expense ID to be generated")
		}

		got, err := store.GetExpense(ctx, original.ID)
		if err != nil {
			t.Fatalf("GetExpense failed: %v", err)
		}
		if !got.Amount.Equal(original.Amount) {
			t.Errorf("Amount mismatch: got %s, want %s", got.Amount, original.Amount)
		}
		if !got.Date.Equal(original.Date) {
			t.Errorf("Date mismatch: got %v, want %v", got.Date, original.Date)
		}
		if got.Category != models.CategoryFood || got.PayerID != "alice" || got.Description != "Dinner" {
			t.Errorf("Field mismatch: %+v", got)
		}
		if len(got.ParticipantShares) != 2 || !got.ParticipantShares["bob"].Equal(decimal.RequireFromString("0.75")) {
			t.Errorf("Shares mismatch: %v", got.ParticipantShares)
		}
	})

	t.Run("GetExpense returns ErrNotFound for nonexistent expense", func(t *testing.T) {
		_, err := store.GetExpense(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListExpensesByTrip includes shares", func(t *testing.T) {
		other := newExpense()
		other.TripID = "trip-2"
		store.SaveExpense(ctx, other)
		store.SaveExpense(ctx, newExpense())

		expenses, err := store.ListExpensesByTrip(ctx, "trip-1")
		if err != nil {
			t.Fatalf("ListExpensesByTrip failed: %v", err)
		}
		if len(expenses) != 2 {
			t.Fatalf("Expected 2 expenses, got %d", len(expenses))
		}
		for _, e := range expenses {
			if len(e.ParticipantShares) != 2 {
				t.Errorf("Expense %s has %d shares, want 2", e.ID, len(e.ParticipantShares))
			}
		}
	})

	t.Run("UpdateExpense replaces shares", func(t *testing.T) {
		e := newExpense()
		store.SaveExpense(ctx, e)

		_, err := store.UpdateExpense(ctx, e.ID, func(e *models.Expense) error {
			e.ParticipantShares = map[string]decimal.Decimal{"carol": decimal.NewFromInt(1)}
			return nil
		})
		if err != nil {
			t.Fatalf("UpdateExpense failed: %v", err)
		}

		got, _ := store.GetExpense(ctx, e.ID)
		if len(got.ParticipantShares) != 1 {
			t.Errorf("Expected 1 share after update, got %v", got.ParticipantShares)
		}
		if _, ok := got.ParticipantShares["carol"]; !ok {
			t.Error("Expected carol's share")
		}
	})

	t.Run("DeleteExpense is idempotent", func(t *testing.T) {
		e := newExpense()
		store.SaveExpense(ctx, e)

		if err := store.DeleteExpense(ctx, e.ID); err != nil {
			t.Fatalf("DeleteExpense failed: %v", err)
		}
		if err := store.DeleteExpense(ctx, e.ID); err != nil {
			t.Errorf("Second DeleteExpense failed: %v", err)
		}
		if _, err := store.GetExpense(ctx, e.ID); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound after delete, got %v", err)
		}
	})
}

func TestSQLiteStore_UsersAndTokens(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.NewUser("Bob@Example.com", "Bob", "Builder", "hash")
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	t.Run("Directory lookups", func(t *testing.T) {
		id, err := store.FindUserIDByEmail(ctx, "bob@example.com")
		if err != nil || id != user.ID {
			t.Errorf("FindUserIDByEmail = %q, %v; want %q", id, err, user.ID)
		}
		email, err := store.FindEmailByUserID(ctx, user.ID)
		if err != nil || email != "bob@example.com" {
			t.Errorf("FindEmailByUserID = %q, %v", email, err)
		}
		registered, err := store.IsRegisteredUser(ctx, "BOB@example.com")
		if err != nil || !registered {
			t.Errorf("IsRegisteredUser = %v, %v; want true", registered, err)
		}
		if _, err := store.FindUserIDByEmail(ctx, "ghost@example.com"); !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound for unknown email, got %v", err)
		}

		users, err := store.GetUsersByIDs(ctx, []string{user.ID, "missing"})
		if err != nil {
			t.Fatalf("GetUsersByIDs failed: %v", err)
		}
		if len(users) != 1 || users[user.ID].FirstName != "Bob" {
			t.Errorf("GetUsersByIDs = %v", users)
		}
	})

	t.Run("Revoked tokens expire", func(t *testing.T) {
		now := time.Now()
		store.RevokeToken(ctx, &models.RevokedToken{TokenID: "old", UserID: user.ID, ExpiresAt: now.Add(-time.Minute)})
		store.RevokeToken(ctx, &models.RevokedToken{TokenID: "fresh", UserID: user.ID, ExpiresAt: now.Add(time.Hour)})

		revoked, err := store.IsTokenRevoked(ctx, "fresh")
		if err != nil || !revoked {
			t.Errorf("IsTokenRevoked(fresh) = %v, %v; want true", revoked, err)
		}

		n, err := store.DeleteExpiredRevokedTokens(ctx, now)
		if err != nil {
			t.Fatalf("DeleteExpiredRevokedTokens failed: %v", err)
		}
		if n != 1 {
			t.Errorf("Deleted %d tokens, want 1", n)
		}
		if revoked, _ := store.IsTokenRevoked(ctx, "old"); revoked {
			t.Error("Expected expired token to be removed")
		}
	})
}
