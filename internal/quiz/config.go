// Package quiz implements the quiz question-set codec and grader.
//
// A quiz always presents exactly QuestionCount questions of OptionCount
// options each. Persisted config blobs are untrusted: they may be absent,
// double-encoded, truncated or malformed, and decoding must still hand the
// editor a well-formed set, so a corrupt quiz remains editable.
package quiz

import (
	"encoding/json"
	"strconv"
)

const (
	// QuestionCount is the fixed size of every question set.
	QuestionCount = 10
	// OptionCount is the fixed number of options per question.
	OptionCount = 4
	// DefaultAnswer is the 1-based correct-option marker used when the
	// stored value is missing or not a number.
	DefaultAnswer = 1
)

// Question is one editable slot of a question set. Answer is 1-based
// (1..4), matching the persisted representation; submitted answers are
// 0-based (see Grade).
type Question struct {
	Text    string   `json:"text"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// Config is the canonical persisted shape of a question set.
type Config struct {
	Questions []Question `json:"questions"`
}

// BlankQuestion returns an empty question slot.
func BlankQuestion() Question {
	return Question{
		Text:    "",
		Options: make([]string, OptionCount),
		Answer:  DefaultAnswer,
	}
}

// BlankQuestions builds a question list padded with blank slots.
//
// With no existing entries it returns exactly n blanks (initial editor
// creation). With existing entries it preserves them and appends blanks
// until min(QuestionCount, n+len(existing)). That path repairs stored
// lists whose length drifted; it must never grow past QuestionCount and
// must leave an already-full list untouched.
func BlankQuestions(n int, existing []Question) []Question {
	if len(existing) == 0 {
		out := make([]Question, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, BlankQuestion())
		}
		return out
	}

	target := len(existing) + n
	if target > QuestionCount {
		target = QuestionCount
	}
	out := make([]Question, 0, target)
	out = append(out, existing...)
	for len(out) < target {
		out = append(out, BlankQuestion())
	}
	if len(out) > QuestionCount {
		out = out[:QuestionCount]
	}
	return out
}

// DecodeConfig normalizes a persisted config blob into exactly
// QuestionCount questions. It never fails: absent or unparseable input
// yields all blanks, oversized input is truncated, undersized input is
// padded, and each entry's fields are coerced to the fixed shape.
func DecodeConfig(raw []byte) []Question {
	if len(raw) == 0 {
		return BlankQuestions(QuestionCount, nil)
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return BlankQuestions(QuestionCount, nil)
	}

	// Config blobs written by older clients are double-encoded: a JSON
	// string whose contents are the real document.
	if s, ok := v.(string); ok {
		if err := json.Unmarshal([]byte(s), &v); err != nil {
			return BlankQuestions(QuestionCount, nil)
		}
	}

	list, ok := locateQuestionList(v)
	if !ok {
		return BlankQuestions(QuestionCount, nil)
	}

	if len(list) > QuestionCount {
		list = list[:QuestionCount]
	}

	out := make([]Question, 0, QuestionCount)
	for _, entry := range list {
		out = append(out, coerceQuestion(entry))
	}
	for len(out) < QuestionCount {
		out = append(out, BlankQuestion())
	}
	return out
}

// EncodeConfig produces the canonical persisted shape from an editable
// list. It processes whatever length it is given and performs no range
// or required-field validation; that happens before save.
func EncodeConfig(questions []Question) Config {
	out := make([]Question, 0, len(questions))
	for _, q := range questions {
		opts := make([]string, OptionCount)
		copy(opts, q.Options)
		answer := q.Answer
		if answer == 0 {
			answer = DefaultAnswer
		}
		out = append(out, Question{
			Text:    q.Text,
			Options: opts,
			Answer:  answer,
		})
	}
	return Config{Questions: out}
}

// MarshalConfig serializes the canonical shape for storage.
func MarshalConfig(questions []Question) ([]byte, error) {
	return json.Marshal(EncodeConfig(questions))
}

// locateQuestionList finds the entry list either at the top level or
// under a "questions" field.
func locateQuestionList(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		if qs, ok := t["questions"].([]any); ok {
			return qs, true
		}
	}
	return nil, false
}

func coerceQuestion(entry any) Question {
	m, ok := entry.(map[string]any)
	if !ok {
		return BlankQuestion()
	}

	q := BlankQuestion()
	if text, ok := m["text"].(string); ok {
		q.Text = text
	}
	if opts, ok := m["options"].([]any); ok {
		for i := 0; i < OptionCount && i < len(opts); i++ {
			if s, ok := opts[i].(string); ok {
				q.Options[i] = s
			}
		}
	}
	q.Answer = coerceAnswer(m["answer"])
	return q
}

// coerceAnswer maps the stored correct-option marker to a number,
// defaulting to 1. No range clamping: out-of-range markers round-trip
// unchanged and simply never match a submitted answer.
func coerceAnswer(v any) int {
	switch t := v.(type) {
	case float64:
		if t == 0 {
			return DefaultAnswer
		}
		return int(t)
	case string:
		if n, err := strconv.Atoi(t); err == nil && n != 0 {
			return n
		}
	}
	return DefaultAnswer
}
