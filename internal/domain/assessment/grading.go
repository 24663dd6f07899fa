package assessment

import (
	"math"
	"sort"
)

type Grade struct {
	Score    int     `json:"score"`
	MaxScore int     `json:"maxScore"`
	Percent  float64 `json:"percent"`
	Passed   bool    `json:"passed"`
}

// IsGraded reports whether the question carries a reference answer that can
// be checked automatically.
func (q Question) IsGraded() bool {
	switch q.Type {
	case TypeSingleChoice:
		s, ok := q.CorrectAnswer.(string)
		return ok && s != ""
	case TypeMultiChoice:
		return len(q.CorrectAnswers) > 0
	case TypeNumeric:
		_, ok := Number(q.CorrectAnswer)
		return ok
	}
	return false
}

// GradeAnswers scores the visible graded questions. Text and file questions
// carry no reference answer and are left for manual review.
func (e *Engine) GradeAnswers(answers Answers) Grade {
	var g Grade
	for _, q := range e.AllVisible(answers) {
		if !q.IsGraded() {
			continue
		}
		pts := q.Points
		if pts <= 0 {
			pts = 1
		}
		g.MaxScore += pts
		if isCorrect(q, answers[q.ID]) {
			g.Score += pts
		}
	}

	if g.MaxScore > 0 {
		g.Percent = math.Round(float64(g.Score)*10000/float64(g.MaxScore)) / 100
	}
	g.Passed = g.Percent >= float64(e.assessment.Settings.PassingScore)
	return g
}

func isCorrect(q Question, answer any) bool {
	switch q.Type {
	case TypeSingleChoice:
		s, ok := answer.(string)
		return ok && s == q.CorrectAnswer
	case TypeMultiChoice:
		got, ok := StringList(answer)
		if !ok {
			return false
		}
		return sameSet(got, q.CorrectAnswers)
	case TypeNumeric:
		want, _ := Number(q.CorrectAnswer)
		got, ok := Number(answer)
		return ok && math.Abs(got-want) < 1e-9
	}
	return false
}

func sameSet(a, b []string) bool {
	x := dedupe(a)
	y := dedupe(b)
	if len(x) != len(y) {
		return false
	}
	for i := range x {
		if x[i] != y[i] {
			return false
		}
	}
	return true
}

func dedupe(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
