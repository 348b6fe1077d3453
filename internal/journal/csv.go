package journal

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/JesseBremer/journal-mate/internal/repo"
	"github.com/JesseBremer/journal-mate/internal/validation"
)

var exportHeader = []string{"id", "title", "content", "created_at", "updated_at"}

// Export writes every entry of userID as CSV, newest first.
func (s *Service) Export(ctx context.Context, userID int, w io.Writer) error {
	entries, _, err := s.entries.ListByUser(ctx, userID, repo.EntryFilter{})
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.ID),
			e.Title,
			e.Content,
			e.CreatedAt.UTC().Format(time.RFC3339Nano),
			e.UpdatedAt.UTC().Format(time.RFC3339Nano),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Import creates one entry per valid CSV row. The first row must be a header
// naming the title and content columns. Invalid rows are skipped and
// reported; a malformed file fails as a whole before anything is stored.
//
// Rows are stored one at a time, so a storage error leaves the rows before
// it in place. The returned count always reflects what was stored.
func (s *Service) Import(ctx context.Context, userID int, r io.Reader) (int, []validation.FieldError, error) {
	rows, err := parseEntriesCSV(r)
	if err != nil {
		return 0, nil, err
	}

	imported := 0
	rowErrors := []validation.FieldError{}
	for i, in := range rows {
		rowNum := i + 2 // header is row 1

		if err := validation.Struct(in); err != nil {
			var verr *validation.Error
			if !errors.As(err, &verr) {
				return imported, rowErrors, err
			}
			for _, fe := range verr.Fields {
				rowErrors = append(rowErrors, validation.FieldError{
					Field:       fe.Field,
					Description: fmt.Sprintf("row %d: %s", rowNum, fe.Description),
				})
			}
			continue
		}

		if _, err := s.Create(ctx, userID, in); err != nil {
			return imported, rowErrors, fmt.Errorf("row %d: %w", rowNum, err)
		}
		imported++
	}
	return imported, rowErrors, nil
}

func parseEntriesCSV(r io.Reader) ([]EntryInput, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, validation.New("file", "file is empty")
		}
		return nil, validation.New("file", fmt.Sprintf("invalid CSV header: %v", err))
	}

	index := map[string]int{}
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	titleCol, okTitle := index["title"]
	contentCol, okContent := index["content"]
	if !okTitle || !okContent {
		return nil, validation.New("file", "CSV header must contain title and content columns")
	}

	var rows []EntryInput
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, validation.New("file", fmt.Sprintf("CSV read error: %v", err))
		}

		rows = append(rows, EntryInput{
			Title:   column(record, titleCol),
			Content: column(record, contentCol),
		})
	}
	return rows, nil
}

func column(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
