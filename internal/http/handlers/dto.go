package handlers

import (
	"github.com/JesseBremer/journal-mate/internal/models"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type AuthResult struct {
	Success bool         `json:"success"`
	User    UserResponse `json:"user"`
}

type AuthStatusResult struct {
	Authenticated bool          `json:"authenticated"`
	User          *UserResponse `json:"user,omitempty"`
}

type SuccessResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type EntryRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type EntryCreatedResult struct {
	Success bool   `json:"success"`
	ID      int    `json:"id"`
	Message string `json:"message"`
}

type ImportEntriesResult struct {
	Success  bool                    `json:"success"`
	Imported int                     `json:"imported"`
	Errors   []validation.FieldError `json:"errors"`
	// Error is set when storage failed after some rows were imported.
	Error string `json:"error,omitempty"`
}

type HealthResult struct {
	Status string `json:"status"`
}

type ErrorResponse struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func toUserResponse(u models.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}
