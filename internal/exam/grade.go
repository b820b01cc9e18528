package exam

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Grade compares a learner's answer against the correct one. Both sides
// reduce to the first character of the trimmed, upper-cased string, so "b",
// "B" and "B) Second option" all grade as the letter B. An empty submission
// never matches a non-empty correct answer. Grading is purely local; no
// generative call is involved.
func Grade(correctAnswer, userAnswer, explanation string) AnswerResult {
	isCorrect := answerLetter(correctAnswer) == answerLetter(userAnswer)

	var feedback string
	if isCorrect {
		feedback = fmt.Sprintf("Correct! %s", explanation)
	} else {
		feedback = fmt.Sprintf("Incorrect. The correct answer is %s. %s", correctAnswer, explanation)
	}

	return AnswerResult{
		Answer:    userAnswer,
		IsCorrect: isCorrect,
		Feedback:  feedback,
	}
}

func answerLetter(s string) string {
	t := strings.ToUpper(strings.TrimSpace(s))
	if t == "" {
		return ""
	}
	r, _ := utf8.DecodeRuneInString(t)
	return string(r)
}
