package quiz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(i int) *int { return &i }

func questionsWithAnswer(answer int) []Question {
	qs := make([]Question, QuestionCount)
	for i := range qs {
		qs[i] = Question{
			Text:    "q",
			Options: []string{"a", "b", "c", "d"},
			Answer:  answer,
		}
	}
	return qs
}

func TestGrade_AllCorrect(t *testing.T) {
	// Stored markers are 1-based, submissions 0-based: answer=1 matches
	// a submitted 0.
	qs := questionsWithAnswer(1)
	answers := make(AnswerSet, QuestionCount)
	for i := range answers {
		answers[i] = intp(0)
	}

	assert.Equal(t, QuestionCount, Grade(qs, answers))
}

func TestGrade_AllUnanswered(t *testing.T) {
	qs := questionsWithAnswer(1)
	answers := make(AnswerSet, QuestionCount)

	assert.Equal(t, 0, Grade(qs, answers))
}

func TestGrade_Mixed(t *testing.T) {
	qs := questionsWithAnswer(3)
	answers := AnswerSet{
		intp(2), // correct
		intp(3), // wrong option
		nil,     // unanswered
		intp(2), // correct
		intp(0),
		nil,
		intp(2), // correct
		intp(1),
		intp(2), // correct
		nil,
	}

	assert.Equal(t, 4, Grade(qs, answers))
}

func TestGrade_BoundsForAnyAnswerSet(t *testing.T) {
	qs := questionsWithAnswer(2)
	for _, answers := range []AnswerSet{
		{},
		make(AnswerSet, QuestionCount),
		{intp(0), intp(1), intp(2), intp(3), nil, intp(1), intp(1), intp(1), intp(1), intp(1)},
	} {
		score := Grade(qs, answers)
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, QuestionCount)
	}
}

func TestGrade_ShortQuestionList(t *testing.T) {
	qs := questionsWithAnswer(1)[:3]
	answers := make(AnswerSet, QuestionCount)
	for i := range answers {
		answers[i] = intp(0)
	}

	assert.Equal(t, 3, Grade(qs, answers))
}

func TestGrade_OutOfRangeStoredMarkerNeverMatches(t *testing.T) {
	qs := questionsWithAnswer(7)
	answers := AnswerSet{intp(0), intp(1), intp(2), intp(3), intp(0), intp(1), intp(2), intp(3), intp(0), intp(1)}

	assert.Equal(t, 0, Grade(qs, answers))
}
