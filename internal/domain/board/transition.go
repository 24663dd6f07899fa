package board

import (
	"errors"
	"fmt"
	"time"

	"hireboard/internal/domain/candidate"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Status is the tag of a candidate's latest optimistic stage transition.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusPending    Status = "pending"
	StatusCommitted  Status = "committed"
	StatusRolledBack Status = "rolled_back"
)

// ProvisionalPrefix marks timeline ids that were never persisted.
const ProvisionalPrefix = "tmp_"

var ErrIllegalEvent = errors.New("illegal transition event")

// Transition is the optimistic view of one candidate's stage move.
type Transition struct {
	CandidateID   uuid.UUID       `json:"candidateId"`
	Status        Status          `json:"status"`
	From          candidate.Stage `json:"from,omitempty"`
	To            candidate.Stage `json:"to,omitempty"`
	Author        string          `json:"author,omitempty"`
	ProvisionalID string          `json:"provisionalId,omitempty"`
	EntryID       *uuid.UUID      `json:"entryId,omitempty"`
	Reason        string          `json:"reason,omitempty"`
	RequestedAt   time.Time       `json:"requestedAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

type Event interface {
	apply(t Transition) (Transition, error)
}

// Requested starts a move; allowed from any state except Pending.
type Requested struct {
	From, To candidate.Stage
	Author   string
	At       time.Time
}

// Succeeded confirms the pending move with the persisted history entry id.
type Succeeded struct {
	EntryID uuid.UUID
	At      time.Time
}

// Failed abandons the pending move.
type Failed struct {
	Reason string
	At     time.Time
}

// Reduce advances t by ev. On an illegal event t is returned unchanged
// together with ErrIllegalEvent.
func Reduce(t Transition, ev Event) (Transition, error) {
	next, err := ev.apply(t)
	if err != nil {
		return t, err
	}
	return next, nil
}

func (e Requested) apply(t Transition) (Transition, error) {
	if t.Status == StatusPending {
		return t, fmt.Errorf("%w: move already pending", ErrIllegalEvent)
	}
	return Transition{
		CandidateID:   t.CandidateID,
		Status:        StatusPending,
		From:          e.From,
		To:            e.To,
		Author:        e.Author,
		ProvisionalID: NewProvisionalID(),
		RequestedAt:   e.At,
		UpdatedAt:     e.At,
	}, nil
}

func (e Succeeded) apply(t Transition) (Transition, error) {
	if t.Status != StatusPending {
		return t, fmt.Errorf("%w: succeeded while %s", ErrIllegalEvent, t.Status)
	}
	id := e.EntryID
	t.Status = StatusCommitted
	t.EntryID = &id
	t.UpdatedAt = e.At
	return t, nil
}

func (e Failed) apply(t Transition) (Transition, error) {
	if t.Status != StatusPending {
		return t, fmt.Errorf("%w: failed while %s", ErrIllegalEvent, t.Status)
	}
	t.Status = StatusRolledBack
	t.Reason = e.Reason
	t.UpdatedAt = e.At
	return t, nil
}

// DisplayStage is the stage a dashboard shows for a candidate whose stored
// stage is persisted. Only a pending move overrides the stored stage; after
// a rollback the store is authoritative again.
func (t Transition) DisplayStage(persisted candidate.Stage) candidate.Stage {
	if t.Status == StatusPending {
		return t.To
	}
	return persisted
}

func NewProvisionalID() string {
	id, err := gonanoid.New()
	if err != nil {
		id = uuid.NewString()
	}
	return ProvisionalPrefix + id
}
