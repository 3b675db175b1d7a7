package participant

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/permission"
	"github.com/arkadiusoo/travelmate/internal/storage/sqlite"
)

const tripID = "trip-1"

type fixture struct {
	svc   *Service
	store *sqlite.SQLiteStore
	users map[string]*models.User
}

// setupService creates a Service over a temp SQLite database with four users;
// "alice" organizes tripID.
func setupService(t *testing.T) *fixture {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "travelmate-participant-*")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	users := make(map[string]*models.User)
	for _, name := range []string{"alice", "bob", "carol", "dave"} {
		u := models.NewUser(name+"@example.com", name, "Tester", "hash")
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("failed to create user %s: %v", name, err)
		}
		users[name] = u
	}

	svc := NewService(store, store, permission.NewEngine(store))
	if _, err := svc.CreateOrganizer(ctx, tripID, users["alice"].ID); err != nil {
		t.Fatalf("CreateOrganizer failed: %v", err)
	}

	return &fixture{svc: svc, store: store, users: users}
}

func (f *fixture) id(name string) string {
	return f.users[name].ID
}

// join invites name as role and accepts on their behalf.
func (f *fixture) join(t *testing.T, name string, role models.Role) *models.Participant {
	t.Helper()
	ctx := context.Background()
	p, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id(name), Role: role}, f.id("alice"))
	if err != nil {
		t.Fatalf("AddParticipant(%s) failed: %v", name, err)
	}
	p, err = f.svc.RespondToInvitation(ctx, p.ID, models.StatusAccepted, f.id(name))
	if err != nil {
		t.Fatalf("RespondToInvitation(%s) failed: %v", name, err)
	}
	return p
}

func TestAddParticipant(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	t.Run("by user id creates pending record with resolved email", func(t *testing.T) {
		p, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("bob"), Role: models.RoleGuest}, f.id("alice"))
		if err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
		if p.Status != models.StatusPending {
			t.Errorf("status = %s, want PENDING", p.Status)
		}
		if p.Email != "bob@example.com" {
			t.Errorf("email = %q, want resolved bob@example.com", p.Email)
		}
		if p.JoinedAt != nil {
			t.Error("expected JoinedAt unset")
		}
	})

	t.Run("by email resolves user id", func(t *testing.T) {
		p, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, Email: "Carol@Example.com"}, f.id("alice"))
		if err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
		if p.UserID != f.id("carol") {
			t.Errorf("user id = %q, want carol", p.UserID)
		}
		if p.Role != models.RoleMember {
			t.Errorf("default role = %s, want MEMBER", p.Role)
		}
	})

	t.Run("pending invitation is a conflict", func(t *testing.T) {
		_, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("bob")}, f.id("alice"))
		if !errors.Is(err, ErrAlreadyPending) {
			t.Errorf("expected ErrAlreadyPending, got %v", err)
		}
	})

	t.Run("accepted participant is a conflict", func(t *testing.T) {
		_, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, Email: "alice@example.com"}, f.id("alice"))
		if !errors.Is(err, ErrAlreadyParticipant) {
			t.Errorf("expected ErrAlreadyParticipant, got %v", err)
		}
	})

	t.Run("identity validation", func(t *testing.T) {
		tests := []struct {
			name string
			in   AddInput
			want error
		}{
			{name: "no hints", in: AddInput{TripID: tripID}, want: ErrMissingIdentity},
			{name: "mismatched hints", in: AddInput{TripID: tripID, UserID: f.id("dave"), Email: "bob@example.com"}, want: ErrIdentityMismatch},
			{name: "unregistered email", in: AddInput{TripID: tripID, Email: "ghost@example.com"}, want: ErrUnregisteredEmail},
			{name: "unknown user id", in: AddInput{TripID: tripID, UserID: "no-such-user"}, want: ErrUserNotFound},
			{name: "bad role", in: AddInput{TripID: tripID, UserID: f.id("dave"), Role: "CAPTAIN"}, want: ErrInvalidRole},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := f.svc.AddParticipant(ctx, tt.in, f.id("alice"))
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})

	t.Run("matching hints are accepted", func(t *testing.T) {
		p, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("dave"), Email: "dave@example.com"}, f.id("alice"))
		if err != nil {
			t.Fatalf("AddParticipant failed: %v", err)
		}
		if p.UserID != f.id("dave") {
			t.Errorf("user id = %q, want dave", p.UserID)
		}
	})
}

func TestAddParticipant_Permissions(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.join(t, "bob", models.RoleGuest)
	f.join(t, "carol", models.RoleMember)

	t.Run("guest cannot invite", func(t *testing.T) {
		_, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("dave")}, f.id("bob"))
		if !apperrors.IsPermissionDenied(err) {
			t.Errorf("expected permission denied, got %v", err)
		}
	})

	t.Run("stranger cannot invite", func(t *testing.T) {
		_, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("bob")}, "stranger")
		if !errors.Is(err, ErrCannotInvite) {
			t.Errorf("expected ErrCannotInvite, got %v", err)
		}
	})

	t.Run("member cannot invite an organizer", func(t *testing.T) {
		_, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("dave"), Role: models.RoleOrganizer}, f.id("carol"))
		if !errors.Is(err, ErrCannotAssignRole) {
			t.Errorf("expected ErrCannotAssignRole, got %v", err)
		}
		if !apperrors.IsValidation(err) {
			t.Errorf("expected validation kind, got %v", err)
		}
	})

	t.Run("member invites a guest", func(t *testing.T) {
		_, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("dave"), Role: models.RoleGuest}, f.id("carol"))
		if err != nil {
			t.Errorf("AddParticipant failed: %v", err)
		}
	})
}

func TestAddParticipant_ReinviteDeclined(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	invited, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("bob"), Role: models.RoleGuest}, f.id("alice"))
	if err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}
	if _, err := f.svc.RespondToInvitation(ctx, invited.ID, models.StatusDeclined, f.id("bob")); err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	again, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("bob"), Role: models.RoleMember}, f.id("alice"))
	if err != nil {
		t.Fatalf("re-invite failed: %v", err)
	}
	if again.ID != invited.ID {
		t.Errorf("re-invite created a new record: %s vs %s", again.ID, invited.ID)
	}
	if again.Status != models.StatusPending || again.Role != models.RoleMember {
		t.Errorf("re-invite = %s/%s, want PENDING/MEMBER", again.Status, again.Role)
	}

	all, err := f.store.ListParticipantsByTrip(ctx, tripID)
	if err != nil {
		t.Fatalf("ListParticipantsByTrip failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 participant rows (alice, bob), got %d", len(all))
	}
}

func TestRespondToInvitation(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	invite := func(name string) *models.Participant {
		p, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id(name)}, f.id("alice"))
		if err != nil {
			t.Fatalf("AddParticipant(%s) failed: %v", name, err)
		}
		return p
	}

	t.Run("accept sets joinedAt", func(t *testing.T) {
		p := invite("bob")
		got, err := f.svc.RespondToInvitation(ctx, p.ID, models.StatusAccepted, f.id("bob"))
		if err != nil {
			t.Fatalf("RespondToInvitation failed: %v", err)
		}
		if got.Status != models.StatusAccepted || got.JoinedAt == nil {
			t.Errorf("got %s joinedAt=%v, want ACCEPTED with joinedAt", got.Status, got.JoinedAt)
		}

		_, err = f.svc.RespondToInvitation(ctx, p.ID, models.StatusDeclined, f.id("bob"))
		if !errors.Is(err, ErrNotPending) {
			t.Errorf("second response: expected ErrNotPending, got %v", err)
		}
		if !apperrors.IsValidation(err) {
			t.Errorf("second response should be a validation error, got kind %s", apperrors.GetKind(err))
		}
	})

	t.Run("decline leaves joinedAt unset", func(t *testing.T) {
		p := invite("carol")
		got, err := f.svc.RespondToInvitation(ctx, p.ID, models.StatusDeclined, f.id("carol"))
		if err != nil {
			t.Fatalf("RespondToInvitation failed: %v", err)
		}
		if got.Status != models.StatusDeclined || got.JoinedAt != nil {
			t.Errorf("got %s joinedAt=%v, want DECLINED without joinedAt", got.Status, got.JoinedAt)
		}
	})

	t.Run("organizer cannot respond for someone else", func(t *testing.T) {
		p := invite("dave")
		_, err := f.svc.RespondToInvitation(ctx, p.ID, models.StatusAccepted, f.id("alice"))
		if !errors.Is(err, ErrNotOwnInvitation) {
			t.Errorf("expected ErrNotOwnInvitation, got %v", err)
		}
		still, _ := f.store.GetParticipant(ctx, p.ID)
		if still.Status != models.StatusPending {
			t.Errorf("status changed to %s", still.Status)
		}
	})

	t.Run("only accepted or declined", func(t *testing.T) {
		_, err := f.svc.RespondToInvitation(ctx, "whatever", models.StatusPending, f.id("dave"))
		if !errors.Is(err, ErrInvalidResponse) {
			t.Errorf("expected ErrInvalidResponse, got %v", err)
		}
	})

	t.Run("missing invitation", func(t *testing.T) {
		_, err := f.svc.RespondToInvitation(ctx, "missing", models.StatusAccepted, f.id("dave"))
		if !apperrors.IsNotFound(err) {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestUpdateParticipantRole(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	bob := f.join(t, "bob", models.RoleMember)
	carol := f.join(t, "carol", models.RoleMember)

	t.Run("organizer promotes member", func(t *testing.T) {
		p, err := f.svc.UpdateParticipantRole(ctx, bob.ID, models.RoleOrganizer, f.id("alice"))
		if err != nil {
			t.Fatalf("UpdateParticipantRole failed: %v", err)
		}
		if p.Role != models.RoleOrganizer {
			t.Errorf("role = %s, want ORGANIZER", p.Role)
		}
	})

	t.Run("member cannot manage others", func(t *testing.T) {
		_, err := f.svc.UpdateParticipantRole(ctx, bob.ID, models.RoleGuest, f.id("carol"))
		if !errors.Is(err, ErrCannotManage) {
			t.Errorf("expected ErrCannotManage, got %v", err)
		}
	})

	t.Run("member may demote self but not promote", func(t *testing.T) {
		_, err := f.svc.UpdateParticipantRole(ctx, carol.ID, models.RoleOrganizer, f.id("carol"))
		if !errors.Is(err, ErrCannotAssignRole) {
			t.Errorf("expected ErrCannotAssignRole, got %v", err)
		}
		p, err := f.svc.UpdateParticipantRole(ctx, carol.ID, models.RoleGuest, f.id("carol"))
		if err != nil {
			t.Fatalf("self demotion failed: %v", err)
		}
		if p.Role != models.RoleGuest {
			t.Errorf("role = %s, want GUEST", p.Role)
		}
	})

	t.Run("not found", func(t *testing.T) {
		_, err := f.svc.UpdateParticipantRole(ctx, "missing", models.RoleGuest, f.id("alice"))
		if !errors.Is(err, ErrParticipantNotFound) {
			t.Errorf("expected ErrParticipantNotFound, got %v", err)
		}
	})

	t.Run("not found before bad role", func(t *testing.T) {
		_, err := f.svc.UpdateParticipantRole(ctx, "missing", "CAPTAIN", f.id("alice"))
		if !errors.Is(err, ErrParticipantNotFound) {
			t.Errorf("expected ErrParticipantNotFound, got %v", err)
		}
	})

	t.Run("bad role on existing participant", func(t *testing.T) {
		_, err := f.svc.UpdateParticipantRole(ctx, bob.ID, "CAPTAIN", f.id("alice"))
		if !errors.Is(err, ErrInvalidRole) {
			t.Errorf("expected ErrInvalidRole, got %v", err)
		}
	})
}

func TestRemoveParticipant(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	bob := f.join(t, "bob", models.RoleMember)
	f.join(t, "carol", models.RoleMember)

	if err := f.svc.RemoveParticipant(ctx, bob.ID, f.id("carol")); !errors.Is(err, ErrCannotManage) {
		t.Errorf("expected ErrCannotManage, got %v", err)
	}
	if err := f.svc.RemoveParticipant(ctx, bob.ID, f.id("bob")); err != nil {
		t.Errorf("self removal failed: %v", err)
	}
	if err := f.svc.RemoveParticipant(ctx, bob.ID, f.id("alice")); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found after removal, got %v", err)
	}
	if err := f.svc.RemoveParticipantByEmail(ctx, tripID, "carol@example.com", f.id("alice")); err != nil {
		t.Errorf("RemoveParticipantByEmail failed: %v", err)
	}
	if err := f.svc.RemoveParticipantByEmail(ctx, tripID, "carol@example.com", f.id("alice")); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found on second removal, got %v", err)
	}
}

func TestGetParticipantsByTrip(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	f.join(t, "bob", models.RoleGuest)
	if _, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("carol")}, f.id("alice")); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	views, err := f.svc.GetParticipantsByTrip(ctx, tripID, f.id("bob"))
	if err != nil {
		t.Fatalf("GetParticipantsByTrip failed: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 participants, got %d", len(views))
	}
	for _, v := range views {
		if v.FirstName == "" || v.DisplayName() == v.Email {
			t.Errorf("participant %s not enriched: %+v", v.ID, v)
		}
	}

	_, err = f.svc.GetParticipantsByTrip(ctx, tripID, f.id("carol"))
	if !errors.Is(err, ErrNotTripParticipant) {
		t.Errorf("pending invitee should not list participants, got %v", err)
	}
}

func TestListInvitationsForUser(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	if _, err := f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("bob")}, f.id("alice")); err != nil {
		t.Fatalf("AddParticipant failed: %v", err)
	}

	views, err := f.svc.ListInvitationsForUser(ctx, f.id("bob"))
	if err != nil {
		t.Fatalf("ListInvitationsForUser failed: %v", err)
	}
	if len(views) != 1 || views[0].TripID != tripID {
		t.Errorf("expected one invitation to %s, got %+v", tripID, views)
	}
}

func TestCreateOrganizer_OnlyOnEmptyTrip(t *testing.T) {
	f := setupService(t)
	_, err := f.svc.CreateOrganizer(context.Background(), tripID, f.id("bob"))
	if !errors.Is(err, ErrTripHasOrganizer) {
		t.Errorf("expected ErrTripHasOrganizer, got %v", err)
	}
}

func TestCreateOrganizer_ConcurrentBootstrap(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()
	const fresh = "trip-fresh"

	names := []string{"bob", "carol", "dave"}
	errs := make([]error, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		wg.Add(1)
		go func(i int, userID string) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateOrganizer(ctx, fresh, userID)
		}(i, f.id(name))
	}
	wg.Wait()

	wins := 0
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrTripHasOrganizer):
		default:
			t.Errorf("%s: unexpected error %v", names[i], err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one organizer bootstrap to succeed, got %d", wins)
	}

	participants, err := f.store.ListParticipantsByTrip(ctx, fresh)
	if err != nil {
		t.Fatalf("ListParticipantsByTrip failed: %v", err)
	}
	if len(participants) != 1 || participants[0].Role != models.RoleOrganizer {
		t.Errorf("expected a single organizer on %s, got %+v", fresh, participants)
	}
}

func TestAddParticipant_ConcurrentInvites(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.AddParticipant(ctx, AddInput{TripID: tripID, UserID: f.id("bob")}, f.id("alice"))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrAlreadyPending):
		default:
			t.Errorf("unexpected error %v", err)
		}
	}
	if wins != 1 {
		t.Errorf("expected exactly one invite to succeed, got %d", wins)
	}
}
