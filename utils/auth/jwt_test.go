package auth

import (
	"errors"
	"testing"
	"time"
)

func testManager() *JWTManager {
	return NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "campus-portal-test",
	})
}

func testSubject() TokenSubject {
	return TokenSubject{
		UserID:       42,
		UserCode:     "STU0042",
		Email:        "student@campus.edu",
		Role:         "student",
		TokenVersion: 0,
	}
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	manager := testManager()

	token, jti, err := manager.GenerateAccessToken(testSubject())
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}
	if jti == "" {
		t.Fatal("expected a non-empty JTI")
	}

	claims, err := manager.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}

	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
	if claims.UserCode != "STU0042" {
		t.Errorf("UserCode = %q, want STU0042", claims.UserCode)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.ID != jti {
		t.Errorf("claims.ID = %q, want %q", claims.ID, jti)
	}
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	manager := testManager()
	other := NewJWTManager(JWTConfig{
		Secret:        "a-different-secret",
		Expiry:        time.Hour,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "campus-portal-test",
	})

	token, _, err := manager.GenerateAccessToken(testSubject())
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := other.ValidateToken(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("ValidateToken() error = %v, want ErrInvalidToken", err)
	}
}

func TestValidateTokenRejectsExpired(t *testing.T) {
	manager := NewJWTManager(JWTConfig{
		Secret:        "test-secret-key-for-unit-tests",
		Expiry:        -time.Minute, // already expired
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "campus-portal-test",
	})

	token, _, err := manager.GenerateAccessToken(testSubject())
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, err := manager.ValidateToken(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("ValidateToken() error = %v, want ErrExpiredToken", err)
	}
}

func TestRefreshAccessToken(t *testing.T) {
	manager := testManager()

	refreshToken, _, err := manager.GenerateRefreshToken(testSubject())
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	accessToken, _, err := manager.RefreshAccessToken(refreshToken, 0)
	if err != nil {
		t.Fatalf("RefreshAccessToken() error = %v", err)
	}

	claims, err := manager.ValidateToken(accessToken)
	if err != nil {
		t.Fatalf("ValidateToken() error = %v", err)
	}
	if claims.TokenType != "access" {
		t.Errorf("TokenType = %q, want access", claims.TokenType)
	}
	if claims.UserID != 42 {
		t.Errorf("UserID = %d, want 42", claims.UserID)
	}
}

func TestRefreshAccessTokenRejectsAccessToken(t *testing.T) {
	manager := testManager()

	accessToken, _, err := manager.GenerateAccessToken(testSubject())
	if err != nil {
		t.Fatalf("GenerateAccessToken() error = %v", err)
	}

	if _, _, err := manager.RefreshAccessToken(accessToken, 0); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("RefreshAccessToken() with access token error = %v, want ErrInvalidToken", err)
	}
}

func TestRefreshAccessTokenRejectsVersionMismatch(t *testing.T) {
	manager := testManager()

	refreshToken, _, err := manager.GenerateRefreshToken(testSubject())
	if err != nil {
		t.Fatalf("GenerateRefreshToken() error = %v", err)
	}

	// Token version bumped after deactivation or password change
	if _, _, err := manager.RefreshAccessToken(refreshToken, 1); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("RefreshAccessToken() with stale version error = %v, want ErrInvalidToken", err)
	}
}
