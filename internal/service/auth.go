// Package service — authentication business logic.
//
// AuthService is the business logic layer for accounts and sessions. It
// sits between the HTTP handlers and the repository/auth utilities:
//
//	handlers (HTTP) → AuthService (business rules) → UserRepository (DB)
//	                ↘ PasswordService (bcrypt), TokenService (JWT)
//
// KEY RESPONSIBILITIES:
//   - Orchestrate signup: hash the password, insert, issue a token
//   - Orchestrate login: fetch by email, verify the hash, issue a token
//   - Collapse "no such user" and "wrong password" into ONE client-visible
//     outcome while logging the real cause
//   - Bound every store and hash call with a timeout so a stalled
//     dependency fails the request instead of hanging it
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sakif/image-describer/internal/apperror"
	"github.com/sakif/image-describer/internal/auth"
	"github.com/sakif/image-describer/internal/model"
	"github.com/sakif/image-describer/internal/repository"
)

// Operation deadlines.
//
// WHY TIMEOUTS HERE AND NOT IN THE REPOSITORY?
// The repository honours whatever context it's given; the BUSINESS rule is
// "a signup may spend at most this long waiting on its dependencies", and
// business rules live in the service. On expiry the caller gets a
// Dependency error, never an indefinite hang.
const (
	storeTimeout = 5 * time.Second
	hashTimeout  = 10 * time.Second
)

// AuthService handles account creation and credential verification.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// NewAuthService creates an AuthService with all required dependencies.
// Call this in server.go when wiring the dependency graph.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult is returned by SignUp and Login.
// It bundles the user record and the issued JWT together so the handler
// can build the {token, user} response in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// CheckEmail reports whether the email is free to register.
//
// ADVISORY ONLY — the answer can be stale the moment it's produced.
// Signup never trusts it; the INSERT's unique constraint is what actually
// decides. This exists so the signup form can warn the user early.
func (s *AuthService) CheckEmail(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	available, err := s.users.EmailAvailable(ctx, email)
	if err != nil {
		return false, apperror.Dependency("checking email availability", err)
	}
	return available, nil
}

// SignUp creates an account and issues a session token.
//
// THE DUPLICATE-EMAIL PATH:
// We do not pre-check availability. The repository's Create surfaces the
// store's unique-constraint rejection as ErrConflict, and we pass that
// through untouched — the handler turns it into a 409. Everything else
// that can go wrong below (hash stall, store fault) is a Dependency
// failure the client can't fix.
func (s *AuthService) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	hash, err := s.hashPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	user := &model.User{Email: email, PasswordHash: hash}

	createCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	if err := s.users.Create(createCtx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			s.logger.Info("signup rejected: email taken", slog.String("email", email))
			return nil, err
		}
		return nil, apperror.Dependency("creating user", err)
	}

	s.logger.Info("user registered",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and issues a session token.
//
// ONE FAILURE, TWO CAUSES:
// "No account with that email" and "wrong password" both return the same
// ErrUnauthorized — a caller probing the login endpoint learns nothing
// about which emails exist. The two causes ARE distinguished in the
// server log, where that information belongs.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.GetByEmail(fetchCtx, email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			s.logger.Info("login failed: unknown email", slog.String("email", email))
			return nil, apperror.Unauthorized()
		}
		return nil, apperror.Dependency("fetching user", err)
	}

	if err := s.verifyPassword(ctx, user.PasswordHash, password); err != nil {
		if errors.Is(err, apperror.ErrDependency) {
			return nil, err
		}
		s.logger.Info("login failed: wrong password",
			slog.Int64("userID", user.ID),
			slog.String("email", email),
		)
		return nil, apperror.Unauthorized()
	}

	s.logger.Info("user logged in",
		slog.Int64("userID", user.ID),
		slog.String("email", user.Email),
	)

	token, err := s.tokens.Generate(user.ID, user.Email)
	if err != nil {
		return nil, fmt.Errorf("service/auth: generating token for user %d: %w", user.ID, err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

// hashPassword runs bcrypt under a deadline.
//
// bcrypt has no context support — it's a pure CPU loop. To bound it we
// race the hash goroutine against the context: on timeout the REQUEST
// fails with Dependency while the goroutine finishes in the background
// and its result is dropped (the buffered channel keeps it from leaking).
func (s *AuthService) hashPassword(ctx context.Context, password string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, hashTimeout)
	defer cancel()

	type result struct {
		hash string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		hash, err := s.passwords.Hash(password)
		ch <- result{hash: hash, err: err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return "", apperror.ValidationFailed("password", r.err.Error())
		}
		return r.hash, nil
	case <-ctx.Done():
		return "", apperror.Dependency("hashing password", ctx.Err())
	}
}

// verifyPassword runs the bcrypt comparison under a deadline, same
// mechanism as hashPassword. A comparison failure (wrong password, or a
// hash that won't parse) comes back as a plain error for the caller to
// translate; only a timeout is a Dependency failure.
func (s *AuthService) verifyPassword(ctx context.Context, hash, password string) error {
	ctx, cancel := context.WithTimeout(ctx, hashTimeout)
	defer cancel()

	ch := make(chan error, 1)
	go func() {
		ch <- s.passwords.Verify(hash, password)
	}()

	select {
	case err := <-ch:
		return err
	case <-ctx.Done():
		return apperror.Dependency("verifying password", ctx.Err())
	}
}
