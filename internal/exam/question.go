// Package exam holds the practice-question domain: the question entities, the
// learning-objective detector, the generated-batch validator, the answer
// grader and the performance analytics. Everything here is a pure computation
// over its inputs; session state lives with the caller.
package exam

// Question is a validated multiple-choice question with source traceability.
// A Question only exists after its raw payload passed the batch validator.
type Question struct {
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Explanation   string   `json:"explanation"`
	SourcePage    int      `json:"source_page"`
	SourceExcerpt string   `json:"source_excerpt,omitempty"`
}

// AnswerResult records the outcome of grading one submitted answer.
type AnswerResult struct {
	Answer    string `json:"answer,omitempty"`
	IsCorrect bool   `json:"is_correct"`
	Feedback  string `json:"feedback"`
}
