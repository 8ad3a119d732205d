package sqlite

import (
	"context"
	"errors"
	"testing"

	"fleetyard/internal/domain"
	"fleetyard/internal/repository"
)

func TestRegisterAndAuthenticate(t *testing.T) {
	srv := newTestStore(t)
	repo := NewCredentialRepository(srv)
	ctx := context.Background()

	if err := repo.Register(ctx, "alice", "s3cret", domain.RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}

	t.Run("correct pair authenticates", func(t *testing.T) {
		cred, err := repo.Authenticate(ctx, "alice", "s3cret")
		if err != nil {
			t.Fatalf("authenticate: %v", err)
		}
		if cred == nil {
			t.Fatal("expected credential, got nil")
		}
		if cred.Username != "alice" || cred.Role != domain.RoleUser {
			t.Errorf("unexpected credential: %+v", cred)
		}
		if cred.ID == 0 {
			t.Error("expected credential to carry its row id")
		}
	})

	t.Run("wrong password returns nil", func(t *testing.T) {
		cred, err := repo.Authenticate(ctx, "alice", "wrong")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cred != nil {
			t.Fatal("expected nil for wrong password")
		}
	})

	t.Run("unknown user returns nil", func(t *testing.T) {
		cred, err := repo.Authenticate(ctx, "bob", "s3cret")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cred != nil {
			t.Fatal("expected nil for unknown user")
		}
	})
}

func TestRegisterDuplicate(t *testing.T) {
	srv := newTestStore(t)
	repo := NewCredentialRepository(srv)
	ctx := context.Background()

	if err := repo.Register(ctx, "alice", "pw", domain.RoleUser); err != nil {
		t.Fatalf("first register: %v", err)
	}

	err := repo.Register(ctx, "alice", "other", domain.RoleAdmin)
	var aerr *repository.AlreadyExistsError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
	if aerr.Username != "alice" {
		t.Errorf("expected conflict on 'alice', got %q", aerr.Username)
	}

	if got := queryInt(t, srv, `SELECT COUNT(*) FROM users WHERE username = 'alice'`); got != 1 {
		t.Errorf("expected exactly one alice row, got %d", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	srv := newTestStore(t)
	repo := NewCredentialRepository(srv)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		secret   string
		role     domain.Role
	}{
		{"empty username", "  ", "pw", domain.RoleUser},
		{"empty password", "alice", "", domain.RoleUser},
		{"unknown role", "alice", "pw", domain.Role("root")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Register(ctx, tt.username, tt.secret, tt.role)
			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAuthenticateValidation(t *testing.T) {
	srv := newTestStore(t)
	repo := NewCredentialRepository(srv)

	var verr *domain.ValidationError
	if _, err := repo.Authenticate(context.Background(), "", "pw"); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty username, got %v", err)
	}
	if _, err := repo.Authenticate(context.Background(), "alice", ""); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty password, got %v", err)
	}
}

func TestSeedAccountAuthenticates(t *testing.T) {
	srv := newTestStore(t)
	repo := NewCredentialRepository(srv)

	cred, err := repo.Authenticate(context.Background(), "admin", "admin123")
	if err != nil {
		t.Fatalf("authenticate seed account: %v", err)
	}
	if cred == nil {
		t.Fatal("expected seeded admin to authenticate")
	}
	if cred.Role != domain.RoleAdmin {
		t.Errorf("expected admin role, got %s", cred.Role)
	}
}

func TestMalformedStoredHashReturnsNil(t *testing.T) {
	srv := newTestStore(t)
	repo := NewCredentialRepository(srv)

	execDirect(t, srv, `INSERT INTO users (username, password, role) VALUES ('broken', 'not-a-bcrypt-hash', 'user')`)

	cred, err := repo.Authenticate(context.Background(), "broken", "whatever")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cred != nil {
		t.Fatal("expected nil for malformed stored hash")
	}
}

func TestRegisteredUserSurvivesRestart(t *testing.T) {
	srv := newTestStore(t)
	repo := NewCredentialRepository(srv)
	ctx := context.Background()

	if err := repo.Register(ctx, "carol", "pw", domain.RoleUser); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := srv.EnsureStarted(ctx); err != nil {
		t.Fatalf("restart: %v", err)
	}

	cred, err := repo.Authenticate(ctx, "carol", "pw")
	if err != nil {
		t.Fatalf("authenticate after restart: %v", err)
	}
	if cred == nil {
		t.Fatal("expected registered user to survive restart")
	}
}
