package exam

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// requiredQuestionFields are checked per entry, in this order. The first
// absent or null field rejects the whole batch.
var requiredQuestionFields = []string{
	"question",
	"options",
	"correct_answer",
	"explanation",
	"source_page",
}

// MalformedBatchError reports a payload whose questions list is absent or has
// the wrong shape. The whole batch is rejected.
type MalformedBatchError struct {
	Reason string
}

func (e *MalformedBatchError) Error() string {
	return "malformed batch: " + e.Reason
}

// MissingFieldError reports a required field absent from one batch entry.
// Validation is fail-fast: a single missing field rejects the whole batch,
// because a batch violating the generation contract cannot be trusted
// entry by entry.
type MissingFieldError struct {
	Field string
	Index int
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("question %d missing required field %q", e.Index, e.Field)
}

// SchemaViolationError reports a strict-mode schema failure.
type SchemaViolationError struct {
	Detail string
}

func (e *SchemaViolationError) Error() string {
	return "schema violation: " + e.Detail
}

// batchSchema is the strict contract for a generated batch: exactly four
// options per question and a correct answer letter that indexes into them.
const batchSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "options", "correct_answer", "explanation", "source_page"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "options": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 4},
          "correct_answer": {"type": "string", "pattern": "^[A-D]$"},
          "explanation": {"type": "string"},
          "source_page": {"type": "integer"},
          "source_excerpt": {"type": "string"}
        }
      }
    }
  }
}`

// Validator checks raw generated-question payloads before they may enter
// session state. The zero value applies the observed contract: required
// fields must be present and non-null, nothing more. Strict additionally
// enforces the full JSON schema (option count, answer letter range), which
// changes accept/reject behavior and is therefore opt-in.
type Validator struct {
	Strict bool
}

// ValidateBatch verifies a decoded generation payload and returns the
// accepted questions in payload order. On any violation it returns no
// questions at all: *MalformedBatchError when the questions list itself is
// missing or misshapen, *MissingFieldError for the first absent required
// field, *SchemaViolationError in strict mode.
func (v Validator) ValidateBatch(payload map[string]any) ([]Question, error) {
	raw, ok := payload["questions"]
	if !ok {
		return nil, &MalformedBatchError{Reason: `payload missing "questions" list`}
	}

	entries, ok := raw.([]any)
	if !ok {
		return nil, &MalformedBatchError{Reason: `"questions" is not a list`}
	}

	questions := make([]Question, 0, len(entries))
	for i, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			return nil, &MalformedBatchError{Reason: fmt.Sprintf("question %d is not an object", i)}
		}

		for _, field := range requiredQuestionFields {
			if value, ok := entry[field]; !ok || value == nil {
				return nil, &MissingFieldError{Field: field, Index: i}
			}
		}

		questions = append(questions, buildQuestion(entry))
	}

	if v.Strict {
		if err := validateSchema(payload); err != nil {
			return nil, err
		}
	}

	return questions, nil
}

func validateSchema(payload map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(batchSchema),
		gojsonschema.NewGoLoader(payload),
	)
	if err != nil {
		return &SchemaViolationError{Detail: err.Error()}
	}
	if !result.Valid() {
		return &SchemaViolationError{Detail: result.Errors()[0].String()}
	}
	return nil
}

// buildQuestion converts a checked entry into a Question. Field types beyond
// presence are not enforced in default mode, so conversions are lenient.
func buildQuestion(entry map[string]any) Question {
	return Question{
		Question:      asString(entry["question"]),
		Options:       asStrings(entry["options"]),
		CorrectAnswer: asString(entry["correct_answer"]),
		Explanation:   asString(entry["explanation"]),
		SourcePage:    asInt(entry["source_page"]),
		SourceExcerpt: asString(entry["source_excerpt"]),
	}
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func asStrings(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, e := range list {
		out[i] = asString(e)
	}
	return out
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return 0
	}
}
