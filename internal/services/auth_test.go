package services_test

import (
	"errors"
	"testing"
	"time"

	"github.com/lavanya0506/task-tracker/internal/config"
	"github.com/lavanya0506/task-tracker/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func newTestAuthService(ttl time.Duration) *services.AuthServiceImpl {
	return services.NewAuthService(config.AuthConfig{
		JWTSecret:  "test-secret",
		SessionTTL: ttl,
		BCryptCost: bcrypt.MinCost,
	})
}

func TestRegisterAndLogin(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(time.Hour)

	user, err := auth.Register(db, services.RegisterRequest{
		Name:     "Alice",
		Email:    "Alice@Example.com",
		Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	if user.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %s", user.Email)
	}
	if user.Password == "hunter22" {
		t.Error("Expected password to be hashed, got plaintext")
	}

	// Login is case-insensitive on email too.
	loggedIn, err := auth.Login(db, "ALICE@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if loggedIn.ID != user.ID {
		t.Errorf("Expected login to return registered user, got %s", loggedIn.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(time.Hour)

	first := services.RegisterRequest{Name: "Alice", Email: "alice@example.com", Password: "hunter22"}
	if _, err := auth.Register(db, first); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	second := services.RegisterRequest{Name: "Imposter", Email: "ALICE@example.com", Password: "different"}
	if _, err := auth.Register(db, second); !errors.Is(err, services.ErrDuplicateEmail) {
		t.Errorf("Expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(time.Hour)

	if _, err := auth.Register(db, services.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	// Unknown email and wrong password are indistinguishable to the caller.
	if _, err := auth.Login(db, "nobody@example.com", "hunter22"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for unknown email, got %v", err)
	}
	if _, err := auth.Login(db, "alice@example.com", "wrong"); !errors.Is(err, services.ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials for wrong password, got %v", err)
	}
}

func TestIssueAndVerifyToken(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(time.Hour)

	user, err := auth.Register(db, services.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token, err := auth.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	claims, err := auth.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}

	if claims.UserID != user.ID.String() {
		t.Errorf("Expected claims for %s, got %s", user.ID, claims.UserID)
	}
	if claims.Email != "alice@example.com" {
		t.Errorf("Expected email claim, got %s", claims.Email)
	}
}

func TestVerifyToken_Garbage(t *testing.T) {
	auth := newTestAuthService(time.Hour)

	for _, tokenStr := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := auth.VerifyToken(tokenStr); !errors.Is(err, services.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for %q, got %v", tokenStr, err)
		}
	}
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	db := newTestDB(t)
	auth := newTestAuthService(time.Hour)

	user, err := auth.Register(db, services.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token, err := auth.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	other := services.NewAuthService(config.AuthConfig{
		JWTSecret:  "different-secret",
		SessionTTL: time.Hour,
		BCryptCost: bcrypt.MinCost,
	})
	if _, err := other.VerifyToken(token); !errors.Is(err, services.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for token signed with another secret, got %v", err)
	}
}

func TestVerifyToken_Expired(t *testing.T) {
	db := newTestDB(t)
	expired := newTestAuthService(-time.Minute)

	user, err := expired.Register(db, services.RegisterRequest{
		Name: "Alice", Email: "alice@example.com", Password: "hunter22",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	token, err := expired.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	if _, err := expired.VerifyToken(token); !errors.Is(err, services.ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken for expired token, got %v", err)
	}
}
