package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/image-describer/internal/apperror"
	"github.com/sakif/image-describer/internal/model"
	"github.com/sakif/image-describer/internal/service"
)

// AuthHandler exposes the account endpoints.
//
// HANDLER RESPONSIBILITIES:
//   - HandleCheckEmail → advisory availability lookup for the signup form
//   - HandleSignup     → create an account, answer with token + public user
//   - HandleLogin      → verify credentials, answer with token + public user
//
// Handlers do HTTP things only: decode the body, call the service,
// translate the outcome. All business rules (hashing, uniqueness,
// unified login failure) live in service.AuthService.
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(auth *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// credentialsRequest is the body of both signup and login requests.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authResponse is the success body of signup and login: the session token
// and the public view of the account. The password hash can never appear
// here — PublicUser doesn't carry it at all.
type authResponse struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// HandleCheckEmail reports whether an email is free to register.
//
// HTTP: POST /api/check-email
// REQUEST BODY: {"email": "a@x.com"}
// RESPONSE: {"available": true}
//
// ADVISORY ONLY — a "true" here is NOT a reservation. Signup can still
// come back 409 if someone else registers the email in between. The
// signup form uses this for early feedback, nothing more.
func (h *AuthHandler) HandleCheckEmail(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return
	}

	available, err := h.auth.CheckEmail(r.Context(), req.Email)
	if err != nil {
		h.logger.Error("check-email failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"available": available})
}

// HandleSignup registers a new account.
//
// HTTP: POST /api/signup
// REQUEST BODY: {"email": "a@x.com", "password": "secret1"}
// RESPONSE: {"token": "...", "user": {"id": 1, "email": "a@x.com"}}
//
// FAILURE MODES:
//   - missing field      → 400 (client-correctable, named in the message)
//   - email taken        → 409 (the store's constraint said so, not a pre-check)
//   - store/hash fault   → 500 (opaque)
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.auth.SignUp(r.Context(), req.Email, req.Password)
	if err != nil {
		// Conflict and Validation are expected outcomes, not server
		// problems — only log the rest as errors.
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: result.Token,
		User:  result.User.Public(),
	})
}

// HandleLogin authenticates an existing account.
//
// HTTP: POST /api/login
// REQUEST BODY: {"email": "a@x.com", "password": "secret1"}
// RESPONSE: {"token": "...", "user": {"id": 1, "email": "a@x.com"}}
//
// Every credential failure — unknown email or wrong password alike — is
// the same 401 with the same body. The distinction exists only in logs.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeCredentials(w, r)
	if !ok {
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, authResponse{
		Token: result.Token,
		User:  result.User.Public(),
	})
}

// decodeCredentials reads and validates the shared signup/login body.
// On failure it writes the error response and returns ok=false.
func decodeCredentials(w http.ResponseWriter, r *http.Request) (credentialsRequest, bool) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "invalid JSON body"))
		return req, false
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, apperror.ValidationFailed("email", "email and password are required"))
		return req, false
	}
	return req, true
}
