package services

import (
	"errors"
	"testing"
	"time"

	"github.com/SAP-F-2025/materials-service/internal/models"
)

const (
	testTokenSecret = "test-secret-key-at-least-32-chars-long"
	testTokenExpiry = 15 * time.Minute
)

func TestTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewTokenService(testTokenSecret, testTokenExpiry)

	tests := []struct {
		name string
		user *models.User
	}{
		{"student", &models.User{ID: 1, Role: models.RoleStudent}},
		{"teacher", &models.User{ID: 42, Role: models.RoleTeacher}},
		{"admin", &models.User{ID: 999, Role: models.RoleAdmin}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := svc.Generate(tt.user)
			if err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if token == "" {
				t.Fatal("Generate() returned empty token")
			}

			claims, err := svc.Validate(token)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}

			userID, err := claims.UserID()
			if err != nil {
				t.Fatalf("UserID() error = %v", err)
			}
			if userID != tt.user.ID {
				t.Errorf("UserID() = %d, want %d", userID, tt.user.ID)
			}
			if claims.Role != tt.user.Role {
				t.Errorf("Role = %s, want %s", claims.Role, tt.user.Role)
			}
		})
	}
}

func TestTokenService_Validate_InvalidToken(t *testing.T) {
	svc := NewTokenService(testTokenSecret, testTokenExpiry)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"truncated", "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Validate(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Validate(%q) = %v, want ErrInvalidToken", tt.token, err)
			}
		})
	}
}

func TestTokenService_Validate_WrongSecret(t *testing.T) {
	signer := NewTokenService(testTokenSecret, testTokenExpiry)
	verifier := NewTokenService("a-completely-different-32-char-secret!!", testTokenExpiry)

	token, err := signer.Generate(&models.User{ID: 1, Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := verifier.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate() with wrong secret = %v, want ErrInvalidToken", err)
	}
}

func TestTokenService_Validate_Expired(t *testing.T) {
	svc := NewTokenService(testTokenSecret, -time.Minute)

	token, err := svc.Generate(&models.User{ID: 1, Role: models.RoleStudent})
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := svc.Validate(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("Validate() on expired token = %v, want ErrTokenExpired", err)
	}
}

func TestTokenService_Expiry(t *testing.T) {
	svc := NewTokenService(testTokenSecret, testTokenExpiry)
	if got := svc.Expiry(); got != testTokenExpiry {
		t.Errorf("Expiry() = %v, want %v", got, testTokenExpiry)
	}
}

func TestClaims_UserID_InvalidSubject(t *testing.T) {
	claims := &Claims{}
	claims.Subject = "not-a-number"

	if _, err := claims.UserID(); err == nil {
		t.Error("expected error for non-numeric subject")
	}
}
