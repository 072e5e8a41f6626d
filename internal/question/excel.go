package question

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders the question set visible to the given email as an
// Excel workbook, one row per question.
func (s *Service) ExportXLSX(ctx context.Context, email string) ([]byte, error) {
	items, err := s.List(ctx, email)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	headers := []string{"id", "question_text", "correct_answer", "options", "subject", "difficulty", "tags", "type", "global", "assigned_to", "created_at"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, it := range items {
		row := i + 2
		values := []any{
			it.ID,
			it.QuestionText,
			it.CorrectAnswer,
			strings.Join(it.Options, "; "),
			it.Subject,
			it.Difficulty,
			strings.Join(it.Tags, "; "),
			it.Type,
			it.Global,
			strings.Join(it.AssignedToEmails, "; "),
			it.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	_ = f.SetColWidth(sheet, "A", "K", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}
