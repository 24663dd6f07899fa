package session

import (
	"hireboard/internal/domain/assessment"

	"github.com/google/uuid"
)

// Progress counts visible questions across the whole assessment. Both the
// percentage and the "question x of y" label use this global count; the
// current section is reported separately in View.Section.
type Progress struct {
	Answered       int `json:"answered"`
	Total          int `json:"total"`
	Percent        int `json:"percent"`
	QuestionNumber int `json:"questionNumber"`
}

type SectionView struct {
	Index       int    `json:"index"`
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Count       int    `json:"count"`
}

type View struct {
	ID           string               `json:"id"`
	State        State                `json:"state"`
	CandidateID  uuid.UUID            `json:"candidateId"`
	AssessmentID uuid.UUID            `json:"assessmentId"`
	JobID        uuid.UUID            `json:"jobId"`
	Section      *SectionView         `json:"section"`
	Question     *assessment.Question `json:"question"`
	Answers      assessment.Answers   `json:"answers"`
	Errors       map[string]string    `json:"errors"`
	Progress     Progress             `json:"progress"`
	// TimeLeft is in seconds; nil for untimed assessments.
	TimeLeft *int                 `json:"timeLeft"`
	IsFirst  bool                 `json:"isFirst"`
	IsLast   bool                 `json:"isLast"`
	Result   *assessment.Response `json:"result,omitempty"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		ID:           s.cfg.ID,
		State:        s.state,
		CandidateID:  s.cfg.CandidateID,
		AssessmentID: s.cfg.Assessment.ID,
		JobID:        s.cfg.Assessment.JobID,
		Answers:      s.answers.Clone(),
		Errors:       make(map[string]string, len(s.errors)),
	}
	for k, e := range s.errors {
		v.Errors[k] = e
	}
	if s.result != nil {
		r := *s.result
		v.Result = &r
	}

	visible := s.engine.AllVisible(s.answers)
	v.Progress.Total = len(visible)
	for i, q := range visible {
		if assessment.IsAnswered(s.answers[q.ID]) {
			v.Progress.Answered++
		}
		if q.ID == s.current {
			v.Progress.QuestionNumber = i + 1
		}
	}
	v.Progress.Percent = percent(v.Progress.Answered, v.Progress.Total)

	if s.current != "" && s.section >= 0 {
		sec := s.cfg.Assessment.Sections[s.section]
		v.Section = &SectionView{
			Index:       s.section,
			ID:          sec.ID,
			Title:       sec.Title,
			Description: sec.Description,
			Count:       len(s.engine.VisibleInSection(s.section, s.answers)),
		}
		if q, ok := s.engine.Question(s.current); ok {
			// answer keys never reach the candidate
			q.CorrectAnswer = nil
			q.CorrectAnswers = nil
			v.Question = &q
		}
		v.IsFirst = v.Progress.QuestionNumber == 1
		v.IsLast = v.Progress.QuestionNumber == v.Progress.Total
	}

	if s.timeLimit() > 0 && s.state != StateLoading {
		left := 0
		if s.state == StateInProgress || s.state == StateSubmitting {
			if d := s.deadline.Sub(s.cfg.Clock.Now()); d > 0 {
				left = int(d.Seconds())
			}
		}
		v.TimeLeft = &left
	}
	return v
}
