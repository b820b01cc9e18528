package httpapi

import (
	"fmt"
	"net/http"

	"github.com/xuri/excelize/v2"

	"github.com/doldm1/sai2-exam-generator/internal/exam"
	"github.com/doldm1/sai2-exam-generator/internal/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (s *Server) handleReportExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.loadSession(w, r)
	if !ok {
		return
	}
	if !sess.AllAnswered() {
		writeError(w, http.StatusConflict, "all questions must be answered before the report is available")
		return
	}

	report := s.aggregator.Aggregate(sess.Results())

	f, err := buildReportWorkbook(sess, report)
	if err != nil {
		s.logger.Error("building report workbook", "session_id", sess.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "building report")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "exam-report-"+sess.ID+".xlsx"))
	if err := f.Write(w); err != nil {
		s.logger.Error("writing report workbook", "session_id", sess.ID, "error", err)
	}
}

// buildReportWorkbook renders the performance report as a two-sheet workbook:
// a summary with topic breakdowns and a per-question answer sheet.
func buildReportWorkbook(sess *session.Session, report exam.PerformanceReport) (*excelize.File, error) {
	f := excelize.NewFile()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("rename summary sheet: %w", err)
	}

	rows := [][]any{
		{"Document", sess.DocumentName},
		{"Total questions", report.TotalQuestions},
		{"Correct", report.Correct},
		{"Score", fmt.Sprintf("%.1f%%", report.Percentage)},
		{"Recommendation", exam.Recommendation(report.Percentage)},
		{},
		{"Topic", "Accuracy", "Correct", "Total", "Assessment"},
	}
	for _, tp := range report.WeakAreas {
		rows = append(rows, []any{tp.Topic, tp.Accuracy, tp.Correct, tp.Total, "weak"})
	}
	for _, tp := range report.StrongAreas {
		rows = append(rows, []any{tp.Topic, tp.Accuracy, tp.Correct, tp.Total, "strong"})
	}
	if err := writeRows(f, summary, rows); err != nil {
		return nil, err
	}

	const answers = "Answers"
	if _, err := f.NewSheet(answers); err != nil {
		return nil, fmt.Errorf("create answers sheet: %w", err)
	}
	answerRows := [][]any{
		{"#", "Question", "Your answer", "Correct answer", "Result", "Source page"},
	}
	for i, q := range sess.Questions {
		result := sess.Answers[i]
		verdict := "incorrect"
		if result.IsCorrect {
			verdict = "correct"
		}
		answerRows = append(answerRows, []any{
			i + 1, q.Question, result.Answer, q.CorrectAnswer, verdict, q.SourcePage,
		})
	}
	if err := writeRows(f, answers, answerRows); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	return nil
}
