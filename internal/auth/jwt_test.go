package auth

import (
	"strings"
	"testing"
)

// newTestTokenService creates a TokenService for testing.
// It uses a fixed, known secret so tests are deterministic.
func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService("test-secret-at-least-16-chars!!")
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return ts
}

// =========================================================================
// TOKEN SERVICE CONSTRUCTION TESTS
// =========================================================================

func TestNewTokenService_ShortSecret(t *testing.T) {
	_, err := NewTokenService("short")
	if err == nil {
		t.Fatal("NewTokenService() should reject secrets shorter than 16 chars")
	}
}

func TestNewTokenService_ValidSecret(t *testing.T) {
	_, err := NewTokenService("this-is-16-chars")
	if err != nil {
		t.Fatalf("NewTokenService() unexpected error for valid secret: %v", err)
	}
}

// =========================================================================
// GENERATE TESTS
// =========================================================================

func TestGenerate_ReturnsNonEmptyToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(7, "a@x.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Error("Generate() returned empty token")
	}

	// JWT tokens have 3 dot-separated parts: header.payload.signature
	if parts := strings.Split(token, "."); len(parts) != 3 {
		t.Errorf("Generate() token doesn't look like a JWT (expected 3 parts, got %d)", len(parts))
	}
}

func TestGenerate_DifferentUsersGetDifferentTokens(t *testing.T) {
	ts := newTestTokenService(t)

	token1, _ := ts.Generate(1, "first@x.com")
	token2, _ := ts.Generate(2, "second@x.com")

	if token1 == token2 {
		t.Error("Generate() returned identical tokens for different users")
	}
}

func TestGenerate_SameClaimsAreInterchangeable(t *testing.T) {
	ts := newTestTokenService(t)

	// With no expiry (and therefore no issued-at jitter), the token is a
	// pure function of the claims and the secret — two tokens for the
	// same user must validate to the same identity.
	token1, _ := ts.Generate(42, "a@x.com")
	token2, _ := ts.Generate(42, "a@x.com")

	c1, err := ts.Validate(token1)
	if err != nil {
		t.Fatalf("Validate(token1) error = %v", err)
	}
	c2, err := ts.Validate(token2)
	if err != nil {
		t.Fatalf("Validate(token2) error = %v", err)
	}
	if c1.UserID != c2.UserID || c1.Email != c2.Email {
		t.Error("tokens for identical claims validated to different identities")
	}
}

// =========================================================================
// VALIDATE TESTS
// =========================================================================

func TestValidate_RoundTrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate(123, "roundtrip@x.com")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Validate should return the exact claims we put in
	claims, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if claims.UserID != 123 {
		t.Errorf("claims.UserID = %d, want 123", claims.UserID)
	}
	if claims.Email != "roundtrip@x.com" {
		t.Errorf("claims.Email = %q, want %q", claims.Email, "roundtrip@x.com")
	}
}

func TestValidate_TamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(123, "a@x.com")

	// The final signature character is the malleable spot: it encodes
	// only two bits of signature, and a lax base64 decoder ignores the
	// unused trailing bits — so substitutions within the same high-bit
	// group decode to the identical signature. Try EVERY other alphabet
	// symbol in that position; each one must fail.
	const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"
	last := token[len(token)-1]
	for i := 0; i < len(alphabet); i++ {
		c := alphabet[i]
		if c == last {
			continue
		}
		tampered := token[:len(token)-1] + string(c)
		if _, err := ts.Validate(tampered); err == nil {
			t.Errorf("Validate() accepted token with last signature char %q replaced by %q", last, c)
		}
	}
}

func TestValidate_TamperedPayload(t *testing.T) {
	ts := newTestTokenService(t)

	token, _ := ts.Generate(123, "a@x.com")

	// A one-character change inside the payload must break the HMAC.
	pos := strings.IndexByte(token, '.') + 1 // first payload character
	replacement := byte('A')
	if token[pos] == 'A' {
		replacement = 'B'
	}
	tampered := token[:pos] + string(replacement) + token[pos+1:]

	_, err := ts.Validate(tampered)
	if err == nil {
		t.Fatal("Validate() should return an error for a tampered payload")
	}
}

func TestValidate_WrongSecret(t *testing.T) {
	ts1, _ := NewTokenService("correct-secret-32-chars-long!!!!")
	ts2, _ := NewTokenService("wrong-secret-32-chars-long!!!!!!")

	// Token signed with ts1's secret
	token, _ := ts1.Generate(123, "a@x.com")

	// Validating with ts2's (different) secret must fail
	_, err := ts2.Validate(token)
	if err == nil {
		t.Fatal("Validate() should fail when using a different secret")
	}
}

func TestValidate_EmptyToken(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Validate("")
	if err == nil {
		t.Fatal("Validate() should return an error for an empty string")
	}
}

func TestValidate_GarbageString(t *testing.T) {
	ts := newTestTokenService(t)

	_, err := ts.Validate("not.a.jwt.token")
	if err == nil {
		t.Fatal("Validate() should return an error for a garbage string")
	}
}

func TestValidate_ZeroUserID(t *testing.T) {
	ts := newTestTokenService(t)

	// A zero user ID can never identify a real account (AUTOINCREMENT
	// starts at 1), so such a token is rejected.
	token, _ := ts.Generate(0, "nobody@x.com")

	_, err := ts.Validate(token)
	if err == nil {
		t.Fatal("Validate() should reject a token with user ID 0")
	}
}
