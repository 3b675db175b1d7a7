package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/arkadiusoo/travelmate/internal/apperrors"
	"github.com/arkadiusoo/travelmate/internal/models"
	"github.com/arkadiusoo/travelmate/internal/storage"
)

type memoryUsers map[string]*models.User

func (m memoryUsers) CreateUser(_ context.Context, user *models.User) error {
	m[user.Email] = user
	return nil
}

func (m memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	if u, ok := m[strings.ToLower(email)]; ok {
		return u, nil
	}
	return nil, storage.ErrNotFound
}

func newAuthenticator() (*PasswordAuthenticator, memoryUsers) {
	users := memoryUsers{}
	return NewPasswordAuthenticator(users).WithCost(bcrypt.MinCost), users
}

func TestPasswordAuthenticator_Register(t *testing.T) {
	ctx := context.Background()
	a, users := newAuthenticator()

	user, err := a.Register(ctx, Registration{
		Email:      " Alice@Example.com ",
		FirstName:  "Alice",
		LastName:   "Smith",
		Credential: "correct horse",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q, want normalized", user.Email)
	}
	if user.PasswordHash == "correct horse" {
		t.Error("password stored in plain text")
	}
	if _, ok := users["alice@example.com"]; !ok {
		t.Error("user not persisted")
	}

	tests := []struct {
		name string
		in   Registration
		want error
	}{
		{
			name: "duplicate email",
			in:   Registration{Email: "alice@example.com", FirstName: "A", LastName: "S", Credential: "password123"},
			want: ErrEmailExists,
		},
		{
			name: "weak password",
			in:   Registration{Email: "bob@example.com", FirstName: "Bob", LastName: "Jones", Credential: "short"},
			want: ErrWeakPassword,
		},
		{
			name: "invalid email",
			in:   Registration{Email: "not-an-email", FirstName: "Bob", LastName: "Jones", Credential: "password123"},
			want: ErrInvalidEmail,
		},
		{
			name: "missing last name",
			in:   Registration{Email: "bob@example.com", FirstName: "Bob", Credential: "password123"},
			want: ErrMissingName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := a.Register(ctx, tt.in); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPasswordAuthenticator_Authenticate(t *testing.T) {
	ctx := context.Background()
	a, _ := newAuthenticator()

	registered, err := a.Register(ctx, Registration{
		Email: "carol@example.com", FirstName: "Carol", LastName: "White", Credential: "password123",
	})
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := a.Authenticate(ctx, "carol@example.com", "password123")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if user.ID != registered.ID {
		t.Errorf("authenticated %s, want %s", user.ID, registered.ID)
	}

	if _, err := a.Authenticate(ctx, "carol@example.com", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong password: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := a.Authenticate(ctx, "nobody@example.com", "password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("unknown email: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestJWTManager(t *testing.T) {
	user := models.NewUser("dave@example.com", "Dave", "Brown", "hash")
	m := NewJWTManager("test-secret", time.Hour)

	token, issued, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if issued.ID == "" {
		t.Error("expected a token id")
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID || claims.Email != user.Email || claims.ID != issued.ID {
		t.Errorf("claims = %+v", claims)
	}

	rt := claims.Revocation()
	if rt.TokenID != issued.ID || rt.UserID != user.ID || !rt.ExpiresAt.Equal(issued.ExpiresAt.Time) {
		t.Errorf("revocation = %+v", rt)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager("other-secret", time.Hour)
		if _, err := other.Validate(token); !apperrors.IsKind(err, apperrors.KindUnauthenticated) {
			t.Errorf("expected unauthenticated, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("test-secret", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		if _, err := later.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken, got %v", err)
		}
	})
}
