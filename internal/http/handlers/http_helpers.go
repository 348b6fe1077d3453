package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JesseBremer/journal-mate/internal/auth"
	"github.com/JesseBremer/journal-mate/internal/logger"
	"github.com/JesseBremer/journal-mate/internal/repo"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

const maxBodyBytes = 1 << 20 // one megabyte

// readJSON tries to read the body of a request and converts it into JSON
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	err := dec.Decode(data)
	if err != nil {
		return fmt.Errorf("failed to read JSON: %w", err)
	}

	err = dec.Decode(&struct{}{})
	if err != io.EOF {
		return errors.New("body must have only a single json value")
	}

	return nil
}

// writeJSON takes a response status code and arbitrary data and writes a json response to the client
func writeJSON(w http.ResponseWriter, status int, data any, headers ...http.Header) {
	out, err := json.Marshal(data)
	if err != nil {
		logger.Errorf("failed to encode JSON response: %v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if len(headers) > 0 {
		for key, value := range headers[0] {
			w.Header()[key] = value
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		logger.Warningf("failed to write JSON response: %v", err)
	}
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeError maps err onto a status code and JSON error body. Unknown errors
// are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	var maxBytesErr *http.MaxBytesError

	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.As(err, &maxBytesErr):
		writeErrorMessage(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeErrorMessage(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, auth.ErrUnauthenticated):
		writeErrorMessage(w, http.StatusUnauthorized, "Authentication required")
	case errors.Is(err, repo.ErrDuplicatedValueUnique):
		writeErrorMessage(w, http.StatusConflict, "Username already exists")
	case errors.Is(err, repo.ErrEntryNotFound):
		writeErrorMessage(w, http.StatusNotFound, "Entry not found")
	case errors.Is(err, repo.ErrUserNotFound):
		writeErrorMessage(w, http.StatusNotFound, "User not found")
	default:
		logger.Errorf("%s %s: %v", r.Method, r.URL.Path, err)
		writeErrorMessage(w, http.StatusInternalServerError, "Internal server error")
	}
}

// writeBodyError reports a body that could not be decoded.
func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		writeError(w, r, err)
		return
	}
	writeErrorMessage(w, http.StatusBadRequest, "Invalid JSON body")
}

func parseID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, validation.New("id", "id must be a positive integer")
	}
	return id, nil
}
