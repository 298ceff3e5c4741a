package quiz

// AnswerSet holds one submitted answer per question position. Entries are
// 0-based option indexes; nil means the position was never answered.
type AnswerSet []*int

// Grade scores a completed attempt against a question set. Position i is
// correct when the submitted 0-based index equals the stored 1-based
// marker minus one; unanswered positions contribute nothing. The result
// is always in [0, QuestionCount]; there is no partial credit and no
// negative marking. Grading is pure; recording the attempt is the
// caller's job.
func Grade(questions []Question, answers AnswerSet) int {
	score := 0
	for i := 0; i < QuestionCount; i++ {
		if i >= len(questions) || i >= len(answers) {
			break
		}
		picked := answers[i]
		if picked == nil {
			continue
		}
		if *picked == questions[i].Answer-1 {
			score++
		}
	}
	return score
}
