package exam

import (
	"encoding/json"
	"errors"
	"testing"
)

func questionEntry(overrides map[string]any) map[string]any {
	entry := map[string]any{
		"question":       "Which strategy reduces token usage?",
		"options":        []any{"A) COMPRESS", "B) WRITE", "C) SELECT", "D) ISOLATE"},
		"correct_answer": "A",
		"explanation":    "COMPRESS summarizes context while retaining key information.",
		"source_page":    float64(5),
		"source_excerpt": "The COMPRESS strategy reduces token usage.",
	}
	for k, v := range overrides {
		if v == nil {
			delete(entry, k)
		} else {
			entry[k] = v
		}
	}
	return entry
}

func batchOf(entries ...any) map[string]any {
	return map[string]any{"questions": entries}
}

func TestValidateBatch_Accepts(t *testing.T) {
	var v Validator

	batch := batchOf(
		questionEntry(map[string]any{"question": "first question text"}),
		questionEntry(map[string]any{"question": "second question text"}),
		questionEntry(map[string]any{"question": "third question text"}),
		questionEntry(map[string]any{"question": "fourth question text"}),
		questionEntry(map[string]any{"question": "fifth question text"}),
	)

	questions, err := v.ValidateBatch(batch)
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}
	if len(questions) != 5 {
		t.Fatalf("accepted %d questions, want 5", len(questions))
	}
	if questions[0].Question != "first question text" || questions[4].Question != "fifth question text" {
		t.Error("payload order not preserved")
	}
	if questions[0].SourcePage != 5 {
		t.Errorf("SourcePage = %d, want 5", questions[0].SourcePage)
	}
	if len(questions[0].Options) != 4 {
		t.Errorf("Options = %v, want 4 entries", questions[0].Options)
	}
}

func TestValidateBatch_MissingQuestionsKey(t *testing.T) {
	var v Validator

	_, err := v.ValidateBatch(map[string]any{"items": []any{}})

	var malformed *MalformedBatchError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedBatchError", err)
	}
}

func TestValidateBatch_QuestionsNotAList(t *testing.T) {
	var v Validator

	_, err := v.ValidateBatch(map[string]any{"questions": "not a list"})

	var malformed *MalformedBatchError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedBatchError", err)
	}
}

func TestValidateBatch_FailFast(t *testing.T) {
	var v Validator

	// Entry index 2 of 5 lacks its explanation: the whole batch must be
	// rejected, not just entry 2.
	batch := batchOf(
		questionEntry(nil),
		questionEntry(nil),
		questionEntry(map[string]any{"explanation": nil}),
		questionEntry(nil),
		questionEntry(nil),
	)

	questions, err := v.ValidateBatch(batch)
	if questions != nil {
		t.Errorf("accepted %d questions from a malformed batch, want 0", len(questions))
	}

	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingFieldError", err)
	}
	if missing.Field != "explanation" {
		t.Errorf("Field = %q, want explanation", missing.Field)
	}
	if missing.Index != 2 {
		t.Errorf("Index = %d, want 2", missing.Index)
	}
}

func TestValidateBatch_NullField(t *testing.T) {
	var v Validator

	// JSON null must count as absent, not as a present value.
	raw := `{"questions":[{"question":null,"options":["A","B","C","D"],"correct_answer":"A","explanation":"e","source_page":1}]}`
	var payload map[string]any
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		t.Fatal(err)
	}

	_, err := v.ValidateBatch(payload)

	var missing *MissingFieldError
	if !errors.As(err, &missing) {
		t.Fatalf("error = %v, want *MissingFieldError", err)
	}
	if missing.Field != "question" || missing.Index != 0 {
		t.Errorf("got field %q index %d", missing.Field, missing.Index)
	}
}

func TestValidateBatch_EntryNotObject(t *testing.T) {
	var v Validator

	_, err := v.ValidateBatch(batchOf("just a string"))

	var malformed *MalformedBatchError
	if !errors.As(err, &malformed) {
		t.Fatalf("error = %v, want *MalformedBatchError", err)
	}
}

func TestValidateBatch_EmptyBatch(t *testing.T) {
	var v Validator

	questions, err := v.ValidateBatch(batchOf())
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}
	if len(questions) != 0 {
		t.Errorf("accepted %d questions, want 0", len(questions))
	}
}

func TestValidateBatch_DefaultModeTolerates(t *testing.T) {
	var v Validator

	// Default mode checks presence only: five options and an out-of-range
	// answer letter pass, preserving the observed contract.
	batch := batchOf(questionEntry(map[string]any{
		"options":        []any{"A) a", "B) b", "C) c", "D) d", "E) e"},
		"correct_answer": "E",
	}))

	if _, err := v.ValidateBatch(batch); err != nil {
		t.Errorf("ValidateBatch() error = %v, want acceptance in default mode", err)
	}
}

func TestValidateBatch_StrictOptionCount(t *testing.T) {
	v := Validator{Strict: true}

	batch := batchOf(questionEntry(map[string]any{
		"options": []any{"A) a", "B) b", "C) c"},
	}))

	_, err := v.ValidateBatch(batch)

	var schema *SchemaViolationError
	if !errors.As(err, &schema) {
		t.Fatalf("error = %v, want *SchemaViolationError", err)
	}
}

func TestValidateBatch_StrictAnswerLetter(t *testing.T) {
	v := Validator{Strict: true}

	batch := batchOf(questionEntry(map[string]any{
		"correct_answer": "E",
	}))

	_, err := v.ValidateBatch(batch)

	var schema *SchemaViolationError
	if !errors.As(err, &schema) {
		t.Fatalf("error = %v, want *SchemaViolationError", err)
	}
}

func TestValidateBatch_StrictAcceptsValid(t *testing.T) {
	v := Validator{Strict: true}

	questions, err := v.ValidateBatch(batchOf(questionEntry(nil)))
	if err != nil {
		t.Fatalf("ValidateBatch() error = %v", err)
	}
	if len(questions) != 1 {
		t.Errorf("accepted %d questions, want 1", len(questions))
	}
}
