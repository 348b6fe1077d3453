package handlers

import (
	"errors"
	"net/http"

	"github.com/JesseBremer/journal-mate/internal/auth"
	"github.com/JesseBremer/journal-mate/internal/http/middleware"
	"github.com/JesseBremer/journal-mate/internal/logger"
	"github.com/JesseBremer/journal-mate/internal/models"
)

// RegisterHandler godoc
// @Summary Register a new user and start a session
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "username and password"
// @Success 201 {object} AuthResult
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 409 {object} ErrorResponse "User exists"
// @Failure 429 {object} ErrorResponse "Rate limited"
// @Router /api/register [post]
func (s *Server) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var creds CredentialsRequest
	if err := readJSON(w, r, &creds); err != nil {
		writeBodyError(w, r, err)
		return
	}

	user, err := s.credentials.Register(r.Context(), creds.Username, creds.Password)
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Infof("user %q registered", user.Username)

	if !s.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusCreated, AuthResult{Success: true, User: toUserResponse(user)})
}

// LoginHandler godoc
// @Summary Authenticate user and start a session
// @Description Sets an HttpOnly session cookie on success.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body CredentialsRequest true "username and password"
// @Success 200 {object} AuthResult
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Invalid credentials"
// @Failure 429 {object} ErrorResponse "Rate limited"
// @Router /api/login [post]
func (s *Server) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var creds CredentialsRequest
	if err := readJSON(w, r, &creds); err != nil {
		writeBodyError(w, r, err)
		return
	}

	user, err := s.credentials.Verify(r.Context(), creds.Username, creds.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Noticef("failed login for %q", creds.Username)
		}
		writeError(w, r, err)
		return
	}

	if !s.startSession(w, r, user) {
		return
	}
	writeJSON(w, http.StatusOK, AuthResult{Success: true, User: toUserResponse(user)})
}

func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user models.User) bool {
	token, sess, err := s.sessions.Create(r.Context(), user)
	if err != nil {
		writeError(w, r, err)
		return false
	}
	s.setSessionCookie(w, token, sess)
	return true
}

// LogoutHandler godoc
// @Summary End the current session
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResult
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 500 {object} ErrorResponse "Could not log out"
// @Router /api/logout [post]
// @Security SessionCookie
func (s *Server) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r, s.cookie.Name)
	if err := s.sessions.Destroy(r.Context(), token); err != nil {
		logger.Errorf("logout failed: %v", err)
		writeErrorMessage(w, http.StatusInternalServerError, "Could not log out")
		return
	}

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, SuccessResult{Success: true})
}

// AuthStatusHandler godoc
// @Summary Report whether the request carries a live session
// @Tags auth
// @Produce json
// @Success 200 {object} AuthStatusResult
// @Router /api/auth/status [get]
func (s *Server) AuthStatusHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Validate(r.Context(), middleware.TokenFromRequest(r, s.cookie.Name))
	if err != nil {
		if !errors.Is(err, auth.ErrUnauthenticated) {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, AuthStatusResult{Authenticated: false})
		return
	}

	writeJSON(w, http.StatusOK, AuthStatusResult{
		Authenticated: true,
		User:          &UserResponse{ID: sess.UserID, Username: sess.Username},
	})
}

// DeleteAccountHandler godoc
// @Summary Delete the current user together with all of their entries
// @Tags auth
// @Produce json
// @Success 200 {object} SuccessResult
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /api/delete-account [delete]
// @Security SessionCookie
func (s *Server) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
		return
	}

	// sessions are revoked before the account rows are removed
	if err := s.sessions.DestroyAll(r.Context(), sess.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.journal.DeleteAccount(r.Context(), sess.UserID); err != nil {
		s.clearSessionCookie(w)
		writeError(w, r, err)
		return
	}
	logger.Infof("account %q deleted", sess.Username)

	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, SuccessResult{Success: true, Message: "Account deleted successfully"})
}
