package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JesseBremer/journal-mate/internal/logger"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

const maxImportBytes = 10 << 20

// ExportEntriesHandler godoc
// @Summary Download all of the current user's entries as CSV
// @Tags import
// @Produce text/csv
// @Success 200 {string} string "CSV file"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /api/export [get]
// @Security SessionCookie
func (s *Server) ExportEntriesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := s.journal.Export(r.Context(), sess.UserID, &buf); err != nil {
		writeError(w, r, err)
		return
	}

	filename := fmt.Sprintf("journal-%s.csv", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warningf("failed to write export: %v", err)
	}
}

// ImportEntriesHandler godoc
// @Summary Import entries via CSV
// @Description The file needs a header row with title and content columns. Invalid rows are skipped and reported.
// @Tags import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} ImportEntriesResult
// @Failure 400 {object} ErrorResponse "Invalid file"
// @Failure 401 {object} ErrorResponse "Authentication required"
// @Failure 500 {object} ImportEntriesResult "Storage failed; imported counts the entries kept"
// @Router /api/import [post]
// @Security SessionCookie
func (s *Server) ImportEntriesHandler(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, validation.New("file", "missing file"))
		return
	}
	defer file.Close()

	imported, rowErrors, err := s.journal.Import(r.Context(), sess.UserID, file)
	if err != nil && imported > 0 {
		logger.Errorf("import for user %q stopped after %d entries: %v", sess.Username, imported, err)
		writeJSON(w, http.StatusInternalServerError, ImportEntriesResult{
			Imported: imported,
			Errors:   rowErrors,
			Error:    "Import stopped by a storage error; imported entries were kept",
		})
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	logger.Infof("user %q imported %d entries (%d rejected rows)", sess.Username, imported, len(rowErrors))

	writeJSON(w, http.StatusOK, ImportEntriesResult{
		Success:  true,
		Imported: imported,
		Errors:   rowErrors,
	})
}
