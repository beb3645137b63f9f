package auth

import (
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

const secret = "test-secret"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("admin-1", "admin@example.org", secret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := ParseToken(token, secret)
	if err != nil {
		t.Fatalf("ParseToken: %v", err)
	}
	if claims.AdminID != "admin-1" {
		t.Errorf("AdminID = %q, want admin-1", claims.AdminID)
	}
	if claims.Email != "admin@example.org" {
		t.Errorf("Email = %q, want admin@example.org", claims.Email)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken("admin-1", "admin@example.org", secret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	if _, err := ParseToken(token, "other-secret"); err == nil {
		t.Fatal("token signed with a different secret was accepted")
	}
}

func TestParseTokenRejectsTampering(t *testing.T) {
	token, err := GenerateToken("admin-1", "admin@example.org", secret)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[1] = strings.Repeat("A", len(parts[1]))
	if _, err := ParseToken(strings.Join(parts, "."), secret); err == nil {
		t.Fatal("tampered token was accepted")
	}
}

func TestParseTokenRejectsNoneAlgorithm(t *testing.T) {
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{AdminID: "admin-1"})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}
	if _, err := ParseToken(token, secret); err == nil {
		t.Fatal("alg=none token was accepted")
	}
}
