package auth_test

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/clipqa/annotation-service/internal/auth"
	"github.com/clipqa/annotation-service/internal/domain"
	"github.com/clipqa/annotation-service/internal/repository"
)

func TestHashPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("hash must not equal the plaintext")
	}
	if !auth.CheckPassword(hash, "s3cret") {
		t.Fatal("expected password to match its hash")
	}
	if auth.CheckPassword(hash, "S3cret") {
		t.Fatal("expected wrong password to be rejected")
	}

	again, _ := auth.HashPassword("s3cret", bcrypt.MinCost)
	if again == hash {
		t.Fatal("expected salted hashes to differ")
	}
}

func TestAuthenticator(t *testing.T) {
	ctx := context.Background()
	users := repository.NewMockUserRepository()
	hash, _ := auth.HashPassword("pw", bcrypt.MinCost)
	_, _ = users.Upsert(ctx, "ann@example.com", hash)

	a := auth.NewAuthenticator(users)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"valid", "ann@example.com", "pw", nil},
		{"wrong password", "ann@example.com", "nope", domain.ErrInvalidCredentials},
		{"unknown user", "bob@example.com", "pw", domain.ErrInvalidCredentials},
		{"empty email", "", "pw", domain.ErrInvalidCredentials},
		{"empty password", "ann@example.com", "", domain.ErrInvalidCredentials},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			u, err := a.Authenticate(ctx, tc.email, tc.password)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
			if tc.wantErr == nil && u.Email != tc.email {
				t.Fatalf("expected %s, got %s", tc.email, u.Email)
			}
		})
	}
}
