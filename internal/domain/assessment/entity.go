package assessment

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound         = errors.New("assessment not found")
	ErrResponseNotFound = errors.New("assessment response not found")
	// ErrResponseCompleted is returned by stores asked to overwrite a
	// submitted response.
	ErrResponseCompleted = errors.New("assessment response already completed")
	ErrSectionNotFound   = errors.New("section not found")
	ErrQuestionNotFound  = errors.New("question not found")
)

type QuestionType string

const (
	TypeSingleChoice QuestionType = "single-choice"
	TypeMultiChoice  QuestionType = "multi-choice"
	TypeShortText    QuestionType = "short-text"
	TypeLongText     QuestionType = "long-text"
	TypeNumeric      QuestionType = "numeric"
	TypeFileUpload   QuestionType = "file-upload"
)

func (t QuestionType) Valid() bool {
	switch t {
	case TypeSingleChoice, TypeMultiChoice, TypeShortText, TypeLongText, TypeNumeric, TypeFileUpload:
		return true
	}
	return false
}

func (t QuestionType) IsChoice() bool {
	return t == TypeSingleChoice || t == TypeMultiChoice
}

const (
	DefaultShortTextMaxLength = 200
	DefaultLongTextMaxLength  = 2000
)

type Assessment struct {
	ID          uuid.UUID `json:"id"`
	JobID       uuid.UUID `json:"jobId"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Sections    []Section `json:"sections"`
	Settings    Settings  `json:"settings"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Settings struct {
	// TimeLimit is in minutes; zero means untimed.
	TimeLimit    int `json:"timeLimit"`
	PassingScore int `json:"passingScore"`
}

type Section struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"questions"`
}

type Question struct {
	ID                string            `json:"id"`
	Type              QuestionType      `json:"type"`
	Title             string            `json:"title"`
	Description       string            `json:"description,omitempty"`
	Options           []string          `json:"options,omitempty"`
	CorrectAnswer     any               `json:"correctAnswer,omitempty"`
	CorrectAnswers    []string          `json:"correctAnswers,omitempty"`
	Required          bool              `json:"required"`
	Points            int               `json:"points"`
	MaxLength         int               `json:"maxLength,omitempty"`
	Min               *float64          `json:"min,omitempty"`
	Max               *float64          `json:"max,omitempty"`
	Step              *float64          `json:"step,omitempty"`
	AcceptedFileTypes []string          `json:"acceptedFileTypes,omitempty"`
	MaxFileSize       float64           `json:"maxFileSize,omitempty"`
	ConditionalLogic  *ConditionalLogic `json:"conditionalLogic,omitempty"`
}

type ConditionalLogic struct {
	Enabled         bool   `json:"enabled"`
	TriggerQuestion string `json:"triggerQuestion"`
	TriggerValue    string `json:"triggerValue"`
}

func (q Question) IsConditional() bool {
	return q.ConditionalLogic != nil && q.ConditionalLogic.Enabled
}

// Questions returns every question in section order.
func (a *Assessment) Questions() []Question {
	out := make([]Question, 0)
	for _, s := range a.Sections {
		out = append(out, s.Questions...)
	}
	return out
}

func (a *Assessment) Question(id string) (Question, bool) {
	for _, s := range a.Sections {
		for _, q := range s.Questions {
			if q.ID == id {
				return q, true
			}
		}
	}
	return Question{}, false
}

// Answers maps question id to the raw answer value as decoded from JSON:
// string, float64, []any / []string, or a file object.
type Answers map[string]any

func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

type Response struct {
	ID           string     `json:"id"`
	CandidateID  uuid.UUID  `json:"candidateId"`
	AssessmentID uuid.UUID  `json:"assessmentId"`
	JobID        uuid.UUID  `json:"jobId"`
	Responses    Answers    `json:"responses"`
	SubmittedAt  *time.Time `json:"submittedAt"`
	IsCompleted  bool       `json:"isCompleted"`
	TimeSpent    int        `json:"timeSpent"`
	Score        int        `json:"score"`
	MaxScore     int        `json:"maxScore"`
	Passed       bool       `json:"passed"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// ResponseID is the composite key used by the client for a candidate's
// response to an assessment.
func ResponseID(candidateID, assessmentID uuid.UUID) string {
	return candidateID.String() + "_" + assessmentID.String()
}
