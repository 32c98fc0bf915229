// Package export renders the review queue as a spreadsheet for the
// human review workflow.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/jbony2888/entryflow/internal/classify"
	"github.com/jbony2888/entryflow/internal/submissions"
	"github.com/jbony2888/entryflow/pkg/pagination"
)

const (
	sheetName = "Review Queue"
	pageSize  = 200
)

// Exporter builds review-queue workbooks from the submission store.
type Exporter struct {
	subs   submissions.System
	logger *slog.Logger
}

// New creates an Exporter.
func New(subs submissions.System, logger *slog.Logger) *Exporter {
	return &Exporter{
		subs:   subs,
		logger: logger.With("system", "export"),
	}
}

// ReviewQueue builds a workbook of every submission awaiting review,
// one row per record with extracted fields and their provenance.
func (e *Exporter) ReviewQueue(ctx context.Context, filters submissions.Filters) (*excelize.File, error) {
	needsReview := true
	filters.NeedsReview = &needsReview

	f := excelize.NewFile()
	f.SetSheetName("Sheet1", sheetName)

	if err := writeHeader(f); err != nil {
		return nil, err
	}

	row := 2
	for page := 1; ; page++ {
		result, err := e.subs.List(ctx, pagination.PageRequest{Page: page, PageSize: pageSize}, filters)
		if err != nil {
			return nil, fmt.Errorf("list review queue: %w", err)
		}

		for _, sub := range result.Data {
			if err := writeRow(f, row, sub); err != nil {
				return nil, err
			}
			row++
		}

		if page >= result.TotalPages || len(result.Data) == 0 {
			break
		}
	}

	e.logger.Info("review queue exported", "rows", row-2)
	return f, nil
}

func writeHeader(f *excelize.File) error {
	columns := []string{"ID", "Filename", "Owner", "Status", "Doc Type", "Reason Codes"}
	for _, key := range classify.FieldLabels {
		columns = append(columns, string(key), string(key)+" provenance")
	}
	columns = append(columns, "Created At")

	for i, name := range columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, row int, sub submissions.Submission) error {
	codes := make([]string, 0, len(sub.ReasonCodes))
	for _, code := range sub.ReasonCodes {
		codes = append(codes, string(code))
	}

	values := []any{
		sub.ID.String(),
		sub.Filename,
		sub.Owner,
		string(sub.Status),
		string(sub.DocType),
		strings.Join(codes, ", "),
	}
	for _, key := range classify.FieldLabels {
		field := sub.Fields[string(key)]
		values = append(values, field.Value, string(field.Provenance))
	}
	values = append(values, sub.CreatedAt.Format("2006-01-02 15:04:05"))

	for i, value := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, value); err != nil {
			return err
		}
	}
	return nil
}
