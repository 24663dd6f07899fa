package assessment

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fptr(f float64) *float64 { return &f }

func sampleAssessment() Assessment {
	return Assessment{
		ID:    uuid.New(),
		JobID: uuid.New(),
		Title: "Backend screening",
		Sections: []Section{
			{
				ID:    "s1",
				Title: "Basics",
				Questions: []Question{
					{ID: "q1", Type: TypeSingleChoice, Title: "Used Go before?", Options: []string{"Yes", "No"}, Required: true, CorrectAnswer: "Yes", Points: 2},
					{ID: "q2", Type: TypeShortText, Title: "Which version?", Required: true,
						ConditionalLogic: &ConditionalLogic{Enabled: true, TriggerQuestion: "q1", TriggerValue: "Yes"}},
					{ID: "q3", Type: TypeLongText, Title: "Favourite feature of that version",
						ConditionalLogic: &ConditionalLogic{Enabled: true, TriggerQuestion: "q2", TriggerValue: "1.22"}},
				},
			},
			{
				ID:    "s2",
				Title: "Skills",
				Questions: []Question{
					{ID: "q4", Type: TypeMultiChoice, Title: "Databases", Options: []string{"Postgres", "Redis", "Mongo"}, CorrectAnswers: []string{"Postgres", "Redis"}},
					{ID: "q5", Type: TypeNumeric, Title: "Years of experience", Min: fptr(0), Max: fptr(40), Step: fptr(0.5), CorrectAnswer: float64(5)},
					{ID: "q6", Type: TypeFileUpload, Title: "Resume", AcceptedFileTypes: []string{".pdf", "application/msword"}, MaxFileSize: 1},
				},
			},
		},
		Settings: Settings{TimeLimit: 30, PassingScore: 60},
	}
}

func TestEngine_ConditionalVisibility(t *testing.T) {
	a := sampleAssessment()
	e := NewEngine(&a)

	assert.False(t, e.Visible("q2", Answers{}), "hidden while unanswered")
	assert.False(t, e.Visible("q2", Answers{"q1": "No"}))
	assert.True(t, e.Visible("q2", Answers{"q1": "Yes"}))
	assert.True(t, e.Visible("q1", Answers{}))
}

func TestEngine_ArrayAnswerContainsTrigger(t *testing.T) {
	a := Assessment{Sections: []Section{{ID: "s", Questions: []Question{
		{ID: "langs", Type: TypeMultiChoice, Options: []string{"Go", "Rust"}},
		{ID: "why-go", Type: TypeShortText, ConditionalLogic: &ConditionalLogic{Enabled: true, TriggerQuestion: "langs", TriggerValue: "Go"}},
	}}}}
	e := NewEngine(&a)

	assert.True(t, e.Visible("why-go", Answers{"langs": []any{"Rust", "Go"}}))
	assert.False(t, e.Visible("why-go", Answers{"langs": []any{"Rust"}}))
}

func TestEngine_DisabledLogicIsAlwaysVisible(t *testing.T) {
	a := Assessment{Sections: []Section{{ID: "s", Questions: []Question{
		{ID: "a", Type: TypeShortText},
		{ID: "b", Type: TypeShortText, ConditionalLogic: &ConditionalLogic{Enabled: false, TriggerQuestion: "a", TriggerValue: "x"}},
	}}}}
	e := NewEngine(&a)
	assert.True(t, e.Visible("b", Answers{}))
}

func TestEngine_HiddenTriggerHidesDependent(t *testing.T) {
	a := sampleAssessment()
	e := NewEngine(&a)

	// q3 matches its own trigger but q2 is hidden because q1 says No.
	answers := Answers{"q1": "No", "q2": "1.22"}
	assert.False(t, e.Visible("q3", answers))
}

func TestEngine_ClearDependentsCascades(t *testing.T) {
	a := sampleAssessment()
	e := NewEngine(&a)

	answers := Answers{"q1": "Yes", "q2": "1.22", "q3": "generics", "q4": []any{"Redis"}}
	answers["q1"] = "No"
	cleared := e.ClearDependents("q1", answers)

	assert.Equal(t, []string{"q2", "q3"}, cleared)
	assert.NotContains(t, answers, "q2")
	assert.NotContains(t, answers, "q3")
	assert.Contains(t, answers, "q4")
}

func TestEngine_ClearDependentsKeepsVisibleAnswers(t *testing.T) {
	a := sampleAssessment()
	e := NewEngine(&a)

	answers := Answers{"q1": "Yes", "q2": "1.21"}
	cleared := e.ClearDependents("q1", answers)
	assert.Empty(t, cleared)
	assert.Equal(t, "1.21", answers["q2"])
}

func TestEngine_NumericTrigger(t *testing.T) {
	assert.True(t, MatchesTrigger(float64(3), "3"))
	assert.True(t, MatchesTrigger(2.5, "2.5"))
	assert.False(t, MatchesTrigger(nil, ""))
	assert.True(t, MatchesTrigger(true, "true"))
}

func TestEngine_VisibleInSection(t *testing.T) {
	a := sampleAssessment()
	e := NewEngine(&a)

	got := e.VisibleInSection(0, Answers{"q1": "No"})
	require.Len(t, got, 1)
	assert.Equal(t, "q1", got[0].ID)
	assert.Len(t, e.AllVisible(Answers{"q1": "Yes"}), 5)
	assert.Nil(t, e.VisibleInSection(9, nil))
	assert.Equal(t, []string{"q2"}, e.Dependents("q1"))
}

func TestValidateAnswer(t *testing.T) {
	a := sampleAssessment()
	q := func(id string) Question {
		x, ok := a.Question(id)
		require.True(t, ok)
		return x
	}

	assert.NoError(t, ValidateAnswer(q("q1"), "Yes"))
	assert.Error(t, ValidateAnswer(q("q1"), "Maybe"))
	assert.Error(t, ValidateAnswer(q("q1"), float64(1)))

	assert.NoError(t, ValidateAnswer(q("q4"), []any{"Postgres"}))
	assert.Error(t, ValidateAnswer(q("q4"), []any{"Oracle"}))

	assert.NoError(t, ValidateAnswer(q("q5"), float64(4.5)))
	assert.NoError(t, ValidateAnswer(q("q5"), "7"))
	assert.Error(t, ValidateAnswer(q("q5"), float64(4.2)))
	assert.Error(t, ValidateAnswer(q("q5"), float64(41)))
	assert.Error(t, ValidateAnswer(q("q5"), "seven"))

	long := make([]rune, DefaultShortTextMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, ValidateAnswer(q("q2"), string(long)))
	assert.NoError(t, ValidateAnswer(q("q2"), ""), "empty answers are left to required checks")

	assert.NoError(t, ValidateAnswer(q("q6"), map[string]any{"name": "cv.PDF", "size": float64(1024), "type": "application/pdf"}))
	assert.NoError(t, ValidateAnswer(q("q6"), map[string]any{"name": "cv.doc", "size": float64(10), "type": "application/msword"}))
	assert.Error(t, ValidateAnswer(q("q6"), map[string]any{"name": "cv.png", "size": float64(10), "type": "image/png"}))
	assert.Error(t, ValidateAnswer(q("q6"), map[string]any{"name": "cv.pdf", "size": float64(2 * 1024 * 1024), "type": "application/pdf"}))
}

func TestIsAnswered(t *testing.T) {
	assert.False(t, IsAnswered(nil))
	assert.False(t, IsAnswered("   "))
	assert.False(t, IsAnswered([]any{}))
	assert.True(t, IsAnswered(float64(0)))
	assert.True(t, IsAnswered([]string{"x"}))
	assert.True(t, IsAnswered(map[string]any{"name": "a.pdf"}))
}

func TestGradeAnswers(t *testing.T) {
	a := sampleAssessment()
	e := NewEngine(&a)

	g := e.GradeAnswers(Answers{"q1": "Yes", "q2": "1.22", "q4": []any{"Redis", "Postgres"}, "q5": float64(3)})
	assert.Equal(t, 4, g.MaxScore)
	assert.Equal(t, 3, g.Score)
	assert.Equal(t, 75.0, g.Percent)
	assert.True(t, g.Passed)

	g = e.GradeAnswers(Answers{"q1": "No"})
	assert.Equal(t, 0, g.Score)
	assert.False(t, g.Passed)
}

func TestValidate_Structure(t *testing.T) {
	a := sampleAssessment()
	require.NoError(t, a.Validate())

	bad := sampleAssessment()
	bad.Title = ""
	bad.Sections[0].Questions[0].Options = []string{"Yes"}
	bad.Sections[0].Questions[1].ConditionalLogic.TriggerQuestion = "q9"
	bad.Sections[1].Questions[1].Min = fptr(10)
	bad.Sections[1].Questions[1].Max = fptr(1)
	bad.Sections[1].Questions[2].ID = "q1"

	err := bad.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "title")
	assert.Contains(t, verr.Fields, "sections[0].questions[0].options")
	assert.Contains(t, verr.Fields, "sections[0].questions[1].conditionalLogic.triggerQuestion")
	assert.Contains(t, verr.Fields, "sections[1].questions[1].min")
	assert.Contains(t, verr.Fields, "sections[1].questions[2].id")
}

func TestValidate_TriggerMustPrecedeDependent(t *testing.T) {
	a := Assessment{Title: "x", Sections: []Section{{ID: "s", Title: "S", Questions: []Question{
		{ID: "a", Type: TypeShortText, Title: "A", ConditionalLogic: &ConditionalLogic{Enabled: true, TriggerQuestion: "b", TriggerValue: "x"}},
		{ID: "b", Type: TypeShortText, Title: "B"},
	}}}}
	var verr *ValidationError
	require.ErrorAs(t, a.Validate(), &verr)
	assert.Contains(t, verr.Fields, "sections[0].questions[0].conditionalLogic.triggerQuestion")
}

func TestBuilder_AddRemoveMove(t *testing.T) {
	a := sampleAssessment()
	s := a.AddSection(" Extra ", "")
	assert.Equal(t, "Extra", s.Title)

	q, err := a.AddQuestion(s.ID, Question{Type: TypeShortText, Title: "Anything else?"})
	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, 1, q.Points)

	_, err = a.AddQuestion("missing", Question{})
	assert.ErrorIs(t, err, ErrSectionNotFound)

	require.NoError(t, a.RemoveQuestion("q1"))
	_, ok := a.Question("q1")
	assert.False(t, ok)
	q2, _ := a.Question("q2")
	assert.False(t, q2.IsConditional(), "dependent logic is disabled when its trigger is removed")

	require.NoError(t, a.MoveQuestion("q6", 0))
	assert.Equal(t, "q6", a.Sections[1].Questions[0].ID)
	assert.Error(t, a.MoveQuestion("q6", 5))
	assert.ErrorIs(t, a.RemoveQuestion("nope"), ErrQuestionNotFound)

	upd := a.Sections[1].Questions[0]
	upd.Title = "CV"
	require.NoError(t, a.UpdateQuestion(upd))
	got, _ := a.Question("q6")
	assert.Equal(t, "CV", got.Title)
}

func TestAssessment_JSONRoundTrip(t *testing.T) {
	a := sampleAssessment()
	b, err := json.Marshal(a)
	require.NoError(t, err)

	var back Assessment
	require.NoError(t, json.Unmarshal(b, &back))

	assert.Equal(t, a.Sections[0].Questions[1].ConditionalLogic, back.Sections[0].Questions[1].ConditionalLogic)
	assert.Equal(t, len(a.Questions()), len(back.Questions()))
	assert.Equal(t, a.Settings, back.Settings)
}

func TestResponseID(t *testing.T) {
	c := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	a := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	assert.Equal(t, "11111111-1111-1111-1111-111111111111_22222222-2222-2222-2222-222222222222", ResponseID(c, a))
}
