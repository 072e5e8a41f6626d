package question

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExportXLSXContainsVisibleQuestions(t *testing.T) {
	svc := testService(t, ServiceConfig{})
	ctx := context.Background()

	if _, err := svc.Create(ctx, CreateInput{QuestionText: "global q", CorrectAnswer: "g", Global: true}); err != nil {
		t.Fatalf("create global: %v", err)
	}
	if _, err := svc.Create(ctx, CreateInput{QuestionText: "hidden q", CorrectAnswer: "h", AssignedToEmails: []string{"other@x.com"}}); err != nil {
		t.Fatalf("create assigned: %v", err)
	}

	data, err := svc.ExportXLSX(ctx, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	// header plus the single global question; the assigned one is out of
	// scope for an anonymous export
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][1] != "question_text" {
		t.Fatalf("unexpected header row: %v", rows[0])
	}
	if rows[1][1] != "global q" {
		t.Fatalf("unexpected data row: %v", rows[1])
	}
}
