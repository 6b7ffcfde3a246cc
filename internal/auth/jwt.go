// Package auth provides JWT session tokens, bcrypt password hashing, and
// the middleware that gates protected routes.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. Client signs up or logs in with email + password
// 2. Server verifies credentials, issues a JWT carrying {id, email}
// 3. Client stores the token and sends it on every protected request as
//    "Authorization: Bearer <token>"
// 4. Middleware validates the signature and puts the claims in the
//    request context — no database lookup needed
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't need to store
// session data. All the information needed (user ID, email) is inside the
// signed token. The signature ensures nobody can tamper with it without
// the secret key. Possession of a valid token IS authorization.
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims (data) → {"id":7,"email":"a@x.com"}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The secret
// is injected at construction (from the JWT_SECRET env var) — never a
// literal in code, so rotating it touches no call sites.
//
// KNOWN WEAKNESS — NO EXPIRY, NO REVOCATION:
// Tokens issued here carry no "exp" claim and there is no revocation list,
// so a token stays valid for as long as the secret does, even if the
// underlying user record changes. That is the current external contract;
// adding expiry would break clients that hold long-lived tokens, so it is
// flagged here rather than silently changed.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Claims is the JWT payload: the token owner's ID and email.
//
// It embeds jwt.RegisteredClaims for the standard fields (Issuer etc.);
// ExpiresAt is deliberately never set — see the TokenService doc.
type Claims struct {
	UserID int64  `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Generate creates and signs a JWT for the given user.
//
// Signing algorithm: HS256 (HMAC-SHA256)
// - Symmetric: same key for signing and verifying
// - Fast and simple — good for single-server deployments
//
// Because the claims and the secret fully determine the payload, any two
// tokens generated for the same user are interchangeable.
func (s *TokenService) Generate(userID int64, email string) (string, error) {
	c := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "image-describer",
		},
	}

	// jwt.NewWithClaims creates an unsigned token with the given algorithm.
	// SignedString(key) signs it and returns the complete JWT string.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns its claims.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Issuer matches "image-describer" (prevents tokens from other apps)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//   - Base64 segments are canonical (see WithStrictDecoding below)
//
// ALGORITHM CONFUSION ATTACK:
// Without checking the algorithm, an attacker could send a token signed with
// "none" and the library might accept it. Passing jwt.WithValidMethods prevents this.
//
// Validate never consults the database: a token remains valid even if the
// user record is later altered. Accepted trade-off of the stateless design.
func (s *TokenService) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			// Reject tokens that aren't signed with HS256
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer("image-describer"),
		// The final character of a base64url segment carries unused
		// trailing bits, and the default lax decoder ignores them — so
		// several distinct strings decode to the same signature bytes.
		// Strict decoding rejects the non-canonical spellings, making
		// every single-character change to the token fail validation.
		jwt.WithStrictDecoding(),
	)
	if err != nil {
		return nil, fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token claims")
	}

	if c.UserID == 0 {
		return nil, fmt.Errorf("auth: token has no user ID")
	}

	return c, nil
}
