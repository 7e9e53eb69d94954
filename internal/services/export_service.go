package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/xuri/excelize/v2"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/models"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/repositories"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/scoring"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	summarySheet   = "Summary"
	questionsSheet = "Questions"
	historySheet   = "Results"
)

type exportService struct {
	repo   repositories.Repository
	logger *slog.Logger
}

func NewExportService(repo repositories.Repository, logger *slog.Logger) ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	return &exportService{repo: repo, logger: logger}
}

// ExportResult renders one stored result as a workbook with a summary
// sheet and a per-question sheet.
func (s *exportService) ExportResult(ctx context.Context, resultID uint) (*ExportFile, error) {
	result, err := s.repo.Result().GetByIDWithTest(ctx, resultID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrResultNotFound
		}
		return nil, fmt.Errorf("failed to get result: %w", err)
	}

	breakdown := map[string]scoring.QuestionOutcome{}
	if len(result.Breakdown) > 0 {
		if err := json.Unmarshal(result.Breakdown, &breakdown); err != nil {
			return nil, fmt.Errorf("failed to decode breakdown of result %d: %w", resultID, err)
		}
	}
	var perSection []int
	if len(result.PerSectionCorrect) > 0 {
		if err := json.Unmarshal(result.PerSectionCorrect, &perSection); err != nil {
			return nil, fmt.Errorf("failed to decode section tallies of result %d: %w", resultID, err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	summary := [][]interface{}{
		{"Result ID", result.ID},
		{"Test", result.Test.Title},
		{"Module", string(result.Module)},
		{"Student", result.StudentID},
		{"Score", fmt.Sprintf("%d/%d", result.Score, result.Total)},
		{"Band", result.Band},
		{"Submitted At", result.SubmittedAt.UTC().Format("2006-01-02 15:04:05")},
	}
	for i, correct := range perSection {
		summary = append(summary, []interface{}{sectionLabel(result.Module, i), correct})
	}
	if err := writeRows(f, summarySheet, nil, summary); err != nil {
		return nil, err
	}

	index, err := f.NewSheet(questionsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Question", "Kind", "Your Answer", "Correct Answer", "Result"}
	var rows [][]interface{}
	for _, qID := range sortedQuestionIDs(breakdown) {
		outcome := breakdown[qID]
		verdict := "Incorrect"
		if outcome.IsCorrect {
			verdict = "Correct"
		} else if outcome.UserAnswer.IsEmpty() {
			verdict = "Unanswered"
		}
		rows = append(rows, []interface{}{
			qID,
			string(outcome.Kind),
			outcome.UserAnswer.String(),
			outcome.CorrectAnswer.String(),
			verdict,
		})
	}
	if err := writeRows(f, questionsSheet, headers, rows); err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.InfoContext(ctx, "Result exported", "result_id", resultID, "questions", len(rows))

	return &ExportFile{
		FileName:    fmt.Sprintf("result_%d.xlsx", result.ID),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

// ExportStudentResults renders the result history of a student
func (s *exportService) ExportStudentResults(ctx context.Context, studentID string) (*ExportFile, error) {
	if studentID == "" {
		return nil, ValidationErrors{{Field: "student_id", Message: "is required", Rule: "required"}}
	}

	results, _, err := s.repo.Result().GetByStudent(ctx, studentID, repositories.ResultFilters{Limit: 100})
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}

	headers := []string{"Result ID", "Test ID", "Module", "Score", "Total", "Band", "Submitted At"}
	rows := make([][]interface{}, 0, len(results))
	for _, result := range results {
		rows = append(rows, []interface{}{
			result.ID,
			result.TestID,
			string(result.Module),
			result.Score,
			result.Total,
			result.Band,
			result.SubmittedAt.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	if err := writeRows(f, historySheet, headers, rows); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	return &ExportFile{
		FileName:    fmt.Sprintf("results_%s.xlsx", studentID),
		ContentType: xlsxContentType,
		Data:        buf.Bytes(),
	}, nil
}

// writeRows writes an optional header row followed by the data rows
func writeRows(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	rowIndex := 1
	if len(headers) > 0 {
		for i, header := range headers {
			cell := fmt.Sprintf("%c%d", 'A'+i, rowIndex)
			if err := f.SetCellValue(sheet, cell, header); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
		rowIndex++
	}

	for _, row := range rows {
		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("failed to write cell %s: %w", cell, err)
			}
		}
		rowIndex++
	}
	return nil
}

// sortedQuestionIDs orders ids by question number; unnumbered ids go last
func sortedQuestionIDs(breakdown map[string]scoring.QuestionOutcome) []string {
	ids := make([]string, 0, len(breakdown))
	for qID := range breakdown {
		ids = append(ids, qID)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, oki := scoring.QuestionNumber(ids[i])
		nj, okj := scoring.QuestionNumber(ids[j])
		switch {
		case oki && okj && ni != nj:
			return ni < nj
		case oki != okj:
			return oki
		}
		return ids[i] < ids[j]
	})
	return ids
}

func sectionLabel(module models.TestModule, i int) string {
	if module == models.ModuleReading {
		return fmt.Sprintf("Passage %d", i+1)
	}
	return fmt.Sprintf("Section %d", i+1)
}
