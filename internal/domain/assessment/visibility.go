package assessment

import (
	"strconv"
)

// Engine answers visibility questions for one loaded assessment. The
// trigger -> dependents map is built once; visibility itself is evaluated
// against the answers passed on every call.
type Engine struct {
	assessment *Assessment
	byID       map[string]Question
	position   map[string]int
	dependents map[string][]string
}

func NewEngine(a *Assessment) *Engine {
	e := &Engine{
		assessment: a,
		byID:       map[string]Question{},
		position:   map[string]int{},
		dependents: map[string][]string{},
	}
	i := 0
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			e.byID[q.ID] = q
			e.position[q.ID] = i
			i++
			if q.IsConditional() && q.ConditionalLogic.TriggerQuestion != "" {
				t := q.ConditionalLogic.TriggerQuestion
				e.dependents[t] = append(e.dependents[t], q.ID)
			}
		}
	}
	return e
}

func (e *Engine) Assessment() *Assessment {
	return e.assessment
}

func (e *Engine) Question(id string) (Question, bool) {
	q, ok := e.byID[id]
	return q, ok
}

// Dependents returns the ids of questions whose visibility is driven
// directly by id.
func (e *Engine) Dependents(id string) []string {
	return append([]string(nil), e.dependents[id]...)
}

// Visible reports whether question id is shown for the given answers. A
// question whose trigger is itself hidden is hidden too.
func (e *Engine) Visible(id string, answers Answers) bool {
	return e.visible(id, answers, map[string]bool{})
}

func (e *Engine) visible(id string, answers Answers, visiting map[string]bool) bool {
	q, ok := e.byID[id]
	if !ok {
		return false
	}
	if !q.IsConditional() {
		return true
	}
	// a dependency cycle is invalid; treat it as hidden
	if visiting[id] {
		return false
	}
	visiting[id] = true
	defer delete(visiting, id)

	trigger := q.ConditionalLogic.TriggerQuestion
	if _, ok := e.byID[trigger]; !ok {
		return false
	}
	if !e.visible(trigger, answers, visiting) {
		return false
	}
	return MatchesTrigger(answers[trigger], q.ConditionalLogic.TriggerValue)
}

// VisibleInSection returns the visible questions of section index si.
func (e *Engine) VisibleInSection(si int, answers Answers) []Question {
	if si < 0 || si >= len(e.assessment.Sections) {
		return nil
	}
	out := make([]Question, 0, len(e.assessment.Sections[si].Questions))
	for _, q := range e.assessment.Sections[si].Questions {
		if e.Visible(q.ID, answers) {
			out = append(out, q)
		}
	}
	return out
}

// AllVisible returns every visible question in assessment order.
func (e *Engine) AllVisible(answers Answers) []Question {
	out := make([]Question, 0, len(e.byID))
	for si := range e.assessment.Sections {
		out = append(out, e.VisibleInSection(si, answers)...)
	}
	return out
}

// ClearDependents removes the stored answers of every question, reachable
// from changed through trigger links, that is no longer visible. It mutates
// answers and returns the cleared ids in discovery order.
func (e *Engine) ClearDependents(changed string, answers Answers) []string {
	cleared := make([]string, 0)
	seen := map[string]bool{changed: true}
	queue := append([]string(nil), e.dependents[changed]...)

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true

		if !e.Visible(id, answers) {
			if _, ok := answers[id]; ok {
				delete(answers, id)
				cleared = append(cleared, id)
			}
		}
		queue = append(queue, e.dependents[id]...)
	}
	return cleared
}

// MatchesTrigger compares an answer with a trigger value. Array answers
// match when any element matches.
func MatchesTrigger(answer any, trigger string) bool {
	switch v := answer.(type) {
	case nil:
		return false
	case []string:
		for _, it := range v {
			if it == trigger {
				return true
			}
		}
		return false
	case []any:
		for _, it := range v {
			if s, ok := scalarString(it); ok && s == trigger {
				return true
			}
		}
		return false
	default:
		s, ok := scalarString(v)
		return ok && s == trigger
	}
}

func scalarString(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}
