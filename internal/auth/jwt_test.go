package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "my_test_jwt_secret"

func TestGenerateAndParseJWT(t *testing.T) {
	userId := uint(42)
	email := "momo@example.com"

	tokenString, err := GenerateJWT(testSecret, userId, email, time.Hour)
	if err != nil {
		t.Fatalf("failed to generate JWT: %v", err)
	}
	if tokenString == "" {
		t.Fatalf("empty token string")
	}

	claims, err := ParseJWT(testSecret, tokenString)
	if err != nil {
		t.Fatalf("failed to parse JWT: %v", err)
	}
	if claims.UserID != userId {
		t.Errorf("expected userId=%d, got %d", userId, claims.UserID)
	}
	if claims.Email != email {
		t.Errorf("expected email=%s, got %s", email, claims.Email)
	}
	if claims.ExpiresAt == nil || claims.ExpiresAt.Time.Before(time.Now()) {
		t.Errorf("token should not be expired, got expiresAt=%v", claims.ExpiresAt)
	}
}

func TestParseJWT_InvalidToken(t *testing.T) {
	if _, err := ParseJWT(testSecret, "this.is.not.a.valid.jwt"); err == nil {
		t.Errorf("expected error for invalid JWT, got nil")
	}
}

func TestParseJWT_WrongSecret(t *testing.T) {
	tokenString, err := GenerateJWT(testSecret, 99, "x@example.com", time.Hour)
	if err != nil {
		t.Fatalf("failed to generate JWT: %v", err)
	}
	if _, err = ParseJWT("totally_wrong_secret", tokenString); err == nil {
		t.Errorf("expected error for wrong secret, got nil")
	}
}

func TestParseJWT_Expired(t *testing.T) {
	tokenString, _ := GenerateJWT(testSecret, 1, "x@example.com", -time.Minute)
	if _, err := ParseJWT(testSecret, tokenString); err == nil {
		t.Errorf("expected error for expired JWT, got nil")
	}
}

func TestParseJWT_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{UserID: 1})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(testSecret, s); err == nil {
		t.Errorf("expected HS512 token to be rejected")
	}
}
