package httpapi

import (
	"bytes"
	"io"
	"net/http"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestReportExport_GatedUntilComplete(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)
	uploadDocument(t, ts, id, "course.pdf").Body.Close()
	postJSON(t, ts.URL+"/api/sessions/"+id+"/questions", map[string]any{"count": 2}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/sessions/" + id + "/report.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("status = %d, want 409", resp.StatusCode)
	}
}

func TestReportExport(t *testing.T) {
	ts := newTestServer(t)
	id := createSession(t, ts)
	uploadDocument(t, ts, id, "course.pdf").Body.Close()
	postJSON(t, ts.URL+"/api/sessions/"+id+"/questions", map[string]any{"count": 2}).Body.Close()
	postJSON(t, ts.URL+"/api/sessions/"+id+"/answers", map[string]any{"question_index": 0, "answer": "A"}).Body.Close()
	postJSON(t, ts.URL+"/api/sessions/"+id+"/answers", map[string]any{"question_index": 1, "answer": "C"}).Body.Close()

	resp, err := http.Get(ts.URL + "/api/sessions/" + id + "/report.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Error("missing Content-Disposition header")
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("response is not a readable workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Summary" || sheets[1] != "Answers" {
		t.Fatalf("sheets = %v, want [Summary Answers]", sheets)
	}

	total, err := f.GetCellValue("Summary", "B2")
	if err != nil {
		t.Fatal(err)
	}
	if total != "2" {
		t.Errorf("total questions cell = %q, want 2", total)
	}

	rows, err := f.GetRows("Answers")
	if err != nil {
		t.Fatal(err)
	}
	// Header plus one row per question.
	if len(rows) != 3 {
		t.Errorf("answers sheet has %d rows, want 3", len(rows))
	}
}
