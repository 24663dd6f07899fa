package assessment

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Normalize trims text, assigns ids to sections and questions that have
// none and defaults points to 1.
func (a *Assessment) Normalize() {
	a.Title = strings.TrimSpace(a.Title)
	a.Description = strings.TrimSpace(a.Description)
	for si := range a.Sections {
		s := &a.Sections[si]
		if strings.TrimSpace(s.ID) == "" {
			s.ID = "section-" + uuid.NewString()
		}
		s.Title = strings.TrimSpace(s.Title)
		for qi := range s.Questions {
			normalizeQuestion(&s.Questions[qi])
		}
	}
}

func normalizeQuestion(q *Question) {
	if strings.TrimSpace(q.ID) == "" {
		q.ID = "q-" + uuid.NewString()
	}
	q.Title = strings.TrimSpace(q.Title)
	if q.Points <= 0 {
		q.Points = 1
	}
	if !q.Type.IsChoice() {
		q.Options = nil
	}
	if q.ConditionalLogic != nil {
		q.ConditionalLogic.TriggerQuestion = strings.TrimSpace(q.ConditionalLogic.TriggerQuestion)
	}
}

// Validate checks the structure of the questionnaire and returns a
// ValidationError keyed by a path such as "sections[0].questions[2].options".
func (a *Assessment) Validate() error {
	fields := map[string]string{}

	if a.Title == "" {
		fields["title"] = "Title is required"
	}
	if a.Settings.TimeLimit < 0 {
		fields["settings.timeLimit"] = "Time limit cannot be negative"
	}
	if a.Settings.PassingScore < 0 || a.Settings.PassingScore > 100 {
		fields["settings.passingScore"] = "Passing score must be between 0 and 100"
	}

	position := map[string]int{}
	idx := 0
	for si, s := range a.Sections {
		sp := fmt.Sprintf("sections[%d]", si)
		if s.Title == "" {
			fields[sp+".title"] = "Section title is required"
		}
		for qi, q := range s.Questions {
			qp := fmt.Sprintf("%s.questions[%d]", sp, qi)
			if _, dup := position[q.ID]; dup {
				fields[qp+".id"] = "Duplicate question id " + q.ID
			}
			position[q.ID] = idx
			idx++
			validateQuestion(qp, q, fields)
		}
	}

	for si, s := range a.Sections {
		for qi, q := range s.Questions {
			if !q.IsConditional() {
				continue
			}
			qp := fmt.Sprintf("sections[%d].questions[%d].conditionalLogic", si, qi)
			cl := q.ConditionalLogic
			trig, ok := position[cl.TriggerQuestion]
			switch {
			case cl.TriggerQuestion == "":
				fields[qp+".triggerQuestion"] = "Trigger question is required"
			case cl.TriggerQuestion == q.ID:
				fields[qp+".triggerQuestion"] = "A question cannot trigger itself"
			case !ok:
				fields[qp+".triggerQuestion"] = "Trigger question does not exist"
			case trig >= position[q.ID]:
				fields[qp+".triggerQuestion"] = "Trigger question must come before the dependent question"
			}
			if strings.TrimSpace(cl.TriggerValue) == "" {
				fields[qp+".triggerValue"] = "Trigger value is required"
			}
		}
	}

	if len(fields) > 0 {
		return NewValidationError(fields)
	}
	return nil
}

func validateQuestion(qp string, q Question, fields map[string]string) {
	if !q.Type.Valid() {
		fields[qp+".type"] = fmt.Sprintf("Unknown question type %q", q.Type)
		return
	}
	if q.Title == "" {
		fields[qp+".title"] = "Question title is required"
	}

	if q.Type.IsChoice() {
		if len(q.Options) < 2 {
			fields[qp+".options"] = "At least two options are required"
		}
		seen := map[string]bool{}
		for _, o := range q.Options {
			if strings.TrimSpace(o) == "" {
				fields[qp+".options"] = "Options cannot be empty"
				break
			}
			if seen[o] {
				fields[qp+".options"] = "Options must be unique"
				break
			}
			seen[o] = true
		}
	}

	switch q.Type {
	case TypeSingleChoice:
		if q.CorrectAnswer != nil {
			s, ok := q.CorrectAnswer.(string)
			if !ok || (s != "" && !containsString(q.Options, s)) {
				fields[qp+".correctAnswer"] = "Correct answer must be one of the options"
			}
		}
	case TypeMultiChoice:
		for _, c := range q.CorrectAnswers {
			if !containsString(q.Options, c) {
				fields[qp+".correctAnswers"] = "Correct answers must be among the options"
				break
			}
		}
	case TypeNumeric:
		if q.Min != nil && q.Max != nil && *q.Min > *q.Max {
			fields[qp+".min"] = "Minimum cannot exceed maximum"
		}
		if q.Step != nil && *q.Step <= 0 {
			fields[qp+".step"] = "Step must be positive"
		}
		if q.CorrectAnswer != nil {
			if _, ok := Number(q.CorrectAnswer); !ok {
				fields[qp+".correctAnswer"] = "Correct answer must be a number"
			}
		}
	case TypeShortText, TypeLongText:
		if q.MaxLength < 0 {
			fields[qp+".maxLength"] = "Maximum length cannot be negative"
		}
	case TypeFileUpload:
		if q.MaxFileSize < 0 {
			fields[qp+".maxFileSize"] = "Maximum file size cannot be negative"
		}
	}
}

func (a *Assessment) AddSection(title, description string) *Section {
	a.Sections = append(a.Sections, Section{
		ID:          "section-" + uuid.NewString(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Questions:   []Question{},
	})
	return &a.Sections[len(a.Sections)-1]
}

func (a *Assessment) sectionIndex(sectionID string) int {
	for i := range a.Sections {
		if a.Sections[i].ID == sectionID {
			return i
		}
	}
	return -1
}

func (a *Assessment) locate(questionID string) (int, int) {
	for si := range a.Sections {
		for qi := range a.Sections[si].Questions {
			if a.Sections[si].Questions[qi].ID == questionID {
				return si, qi
			}
		}
	}
	return -1, -1
}

// AddQuestion appends q to the section and returns the stored copy.
func (a *Assessment) AddQuestion(sectionID string, q Question) (Question, error) {
	si := a.sectionIndex(sectionID)
	if si < 0 {
		return Question{}, ErrSectionNotFound
	}
	normalizeQuestion(&q)
	a.Sections[si].Questions = append(a.Sections[si].Questions, q)
	return q, nil
}

func (a *Assessment) UpdateQuestion(q Question) error {
	si, qi := a.locate(q.ID)
	if si < 0 {
		return ErrQuestionNotFound
	}
	normalizeQuestion(&q)
	a.Sections[si].Questions[qi] = q
	return nil
}

// RemoveQuestion deletes the question and disables the conditional logic of
// any question that was triggered by it.
func (a *Assessment) RemoveQuestion(questionID string) error {
	si, qi := a.locate(questionID)
	if si < 0 {
		return ErrQuestionNotFound
	}
	qs := a.Sections[si].Questions
	a.Sections[si].Questions = append(qs[:qi:qi], qs[qi+1:]...)

	for s := range a.Sections {
		for i := range a.Sections[s].Questions {
			cl := a.Sections[s].Questions[i].ConditionalLogic
			if cl != nil && cl.TriggerQuestion == questionID {
				cl.Enabled = false
				cl.TriggerQuestion = ""
			}
		}
	}
	return nil
}

// MoveQuestion moves a question to index to within its section.
func (a *Assessment) MoveQuestion(questionID string, to int) error {
	si, qi := a.locate(questionID)
	if si < 0 {
		return ErrQuestionNotFound
	}
	qs := a.Sections[si].Questions
	if to < 0 || to >= len(qs) {
		return fmt.Errorf("position %d out of range", to)
	}
	q := qs[qi]
	rest := append(qs[:qi:qi], qs[qi+1:]...)
	out := make([]Question, 0, len(qs))
	out = append(out, rest[:to]...)
	out = append(out, q)
	out = append(out, rest[to:]...)
	a.Sections[si].Questions = out
	return nil
}
