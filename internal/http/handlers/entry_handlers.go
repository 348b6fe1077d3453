package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/JesseBremer/journal-mate/internal/auth"
	"github.com/JesseBremer/journal-mate/internal/http/middleware"
	"github.com/JesseBremer/journal-mate/internal/journal"
	"github.com/JesseBremer/journal-mate/internal/repo"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

func currentSession(w http.ResponseWriter, r *http.Request) (auth.Session, bool) {
	sess, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		writeError(w, r, auth.ErrUnauthenticated)
	}
	return sess, ok
}

// GetEntriesHandler godoc
// @Summary List the current user's entries, newest first
// @Tags entries
// @Produce json
// @Param since query string false "Only entries created at or after this timestamp (RFC3339)"
// @Param until query string false "Only entries created at or before this timestamp (RFC3339)"
// @Param offset query int false "Offset for pagination"
// @Param limit query int false "Limit for pagination (max 100)"
// @Success 200 {array} models.Entry
// @Header 200 {integer} X-Total-Count "Entries matching the filter before paging"
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Router /api/entries [get]
// @Security SessionCookie
func (s *Server) GetEntriesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	filter, err := parseEntryFilter(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, total, err := s.journal.List(r.Context(), sess.UserID, filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	headers := http.Header{}
	headers.Set("X-Total-Count", strconv.Itoa(total))
	writeJSON(w, http.StatusOK, entries, headers)
}

// GetEntryHandler godoc
// @Summary Get one of the current user's entries
// @Tags entries
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} models.Entry
// @Failure 400 {object} ErrorResponse "Invalid ID"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Router /api/entries/{id} [get]
// @Security SessionCookie
func (s *Server) GetEntryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := s.journal.Get(r.Context(), sess.UserID, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// CreateEntryHandler godoc
// @Summary Create a journal entry
// @Tags entries
// @Accept json
// @Produce json
// @Param entry body EntryRequest true "Entry to create"
// @Success 201 {object} EntryCreatedResult
// @Failure 400 {object} ErrorResponse "Title and content are required"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Router /api/entries [post]
// @Security SessionCookie
func (s *Server) CreateEntryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	entry, err := s.journal.Create(r.Context(), sess.UserID, journal.EntryInput{Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, EntryCreatedResult{
		Success: true,
		ID:      entry.ID,
		Message: "Entry saved successfully",
	})
}

// UpdateEntryHandler godoc
// @Summary Replace the title and content of an entry
// @Tags entries
// @Accept json
// @Produce json
// @Param id path int true "Entry ID"
// @Param entry body EntryRequest true "New title and content"
// @Success 200 {object} SuccessResult
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Router /api/entries/{id} [put]
// @Security SessionCookie
func (s *Server) UpdateEntryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req EntryRequest
	if err := readJSON(w, r, &req); err != nil {
		writeBodyError(w, r, err)
		return
	}

	if _, err := s.journal.Update(r.Context(), sess.UserID, id, journal.EntryInput{Title: req.Title, Content: req.Content}); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResult{Success: true, Message: "Entry updated successfully"})
}

// DeleteEntryHandler godoc
// @Summary Delete an entry
// @Tags entries
// @Produce json
// @Param id path int true "Entry ID"
// @Success 200 {object} SuccessResult
// @Failure 400 {object} ErrorResponse "Invalid ID"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 404 {object} ErrorResponse "Entry not found"
// @Router /api/entries/{id} [delete]
// @Security SessionCookie
func (s *Server) DeleteEntryHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	id, err := parseID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := s.journal.Delete(r.Context(), sess.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SuccessResult{Success: true, Message: "Entry deleted successfully"})
}

func parseEntryFilter(r *http.Request) (repo.EntryFilter, error) {
	q := r.URL.Query()
	var filter repo.EntryFilter
	var fields []validation.FieldError

	parseTime := func(name string) *time.Time {
		raw := restorePlus(q.Get(name))
		if raw == "" {
			return nil
		}
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			fields = append(fields, validation.FieldError{Field: name, Description: name + " must be an RFC3339 timestamp"})
			return nil
		}
		ts = ts.UTC()
		return &ts
	}
	parseInt := func(name string, lo int) *int {
		raw := q.Get(name)
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil || v < lo {
			fields = append(fields, validation.FieldError{Field: name, Description: name + " must be an integer of at least " + strconv.Itoa(lo)})
			return nil
		}
		return &v
	}

	filter.Since = parseTime("since")
	filter.Until = parseTime("until")
	filter.Offset = parseInt("offset", 0)
	filter.Limit = parseInt("limit", 1)
	if filter.Limit != nil && *filter.Limit > repo.MaxEntryLimit {
		*filter.Limit = repo.MaxEntryLimit
	}

	if len(fields) > 0 {
		return repo.EntryFilter{}, &validation.Error{Fields: fields}
	}
	return filter, nil
}

// restorePlus undoes the query decoding of "+" into a space in timezone
// offsets such as 2025-07-03T17:44:03+02:00.
func restorePlus(s string) string {
	if len(s) == len(time.RFC3339) && s[len(s)-6] == ' ' {
		return s[:len(s)-6] + "+" + s[len(s)-5:]
	}
	return strings.TrimSpace(s)
}
