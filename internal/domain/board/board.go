package board

import (
	"hireboard/internal/domain/candidate"

	"github.com/google/uuid"
)

type Card struct {
	Candidate  candidate.Candidate `json:"candidate"`
	Stage      candidate.Stage     `json:"stage"`
	Transition Transition          `json:"transition"`
}

type Column struct {
	Stage candidate.Stage `json:"stage"`
	Label string          `json:"label"`
	Cards []Card          `json:"cards"`
}

type Board struct {
	JobID   uuid.UUID `json:"jobId"`
	Columns []Column  `json:"columns"`
}

// Build groups the job's candidates into one column per stage, placing each
// card where its optimistic transition says it should be displayed.
func Build(jobID uuid.UUID, candidates []candidate.Candidate, tracker *Tracker) Board {
	stages := candidate.AllStages()
	cols := make([]Column, len(stages))
	pos := make(map[candidate.Stage]int, len(stages))
	for i, st := range stages {
		cols[i] = Column{Stage: st, Label: st.Label(), Cards: []Card{}}
		pos[st] = i
	}

	for _, c := range candidates {
		tr := Transition{CandidateID: c.ID, Status: StatusIdle}
		if tracker != nil {
			tr = tracker.Get(c.ID)
		}
		st := tr.DisplayStage(c.Stage)
		i, ok := pos[st]
		if !ok {
			i, st = pos[c.Stage], c.Stage
		}
		cols[i].Cards = append(cols[i].Cards, Card{Candidate: c, Stage: st, Transition: tr})
	}
	return Board{JobID: jobID, Columns: cols}
}
