package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hireboard/internal/domain/board"
	"hireboard/internal/domain/candidate"
	"hireboard/internal/domain/timeline"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	EventStagePending    = "stage.pending"
	EventStageCommitted  = "stage.committed"
	EventStageRolledBack = "stage.rolled_back"
)

const stageLockTTL = 15 * time.Second

// StageEvent is pushed to dashboards for every phase of a stage move.
type StageEvent struct {
	Type        string                  `json:"type"`
	CandidateID uuid.UUID               `json:"candidateId"`
	JobID       uuid.UUID               `json:"jobId"`
	Transition  board.Transition        `json:"transition"`
	Entry       *candidate.HistoryEntry `json:"entry,omitempty"`
	Timestamp   time.Time               `json:"timestamp"`
}

// Scope routes the event to dashboards watching the candidate's job.
func (e StageEvent) Scope() string {
	return e.JobID.String()
}

type StageChangeResult struct {
	Candidate candidate.Candidate    `json:"candidate"`
	Entry     candidate.HistoryEntry `json:"entry"`
	Timeline  []timeline.Item        `json:"timeline"`
}

type StageUsecase interface {
	ChangeStage(ctx context.Context, candidateID uuid.UUID, target candidate.Stage, author string) (StageChangeResult, error)
}

// Stages executes optimistic stage moves: the board tracker shows the move as
// pending, the move is persisted atomically with its history entry, and the
// tracker is then committed or rolled back.
type Stages struct {
	candidates candidate.Repository
	history    candidate.HistoryRepository
	notes      candidate.NoteRepository
	tracker    *board.Tracker
	locker     KeyLocker
	events     Broadcaster
	logger     logrus.FieldLogger
	now        func() time.Time
}

func NewStageUsecase(
	candidates candidate.Repository,
	history candidate.HistoryRepository,
	notes candidate.NoteRepository,
	tracker *board.Tracker,
	locker KeyLocker,
	events Broadcaster,
	logger logrus.FieldLogger,
) *Stages {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if tracker == nil {
		tracker = board.NewTracker()
	}
	return &Stages{
		candidates: candidates,
		history:    history,
		notes:      notes,
		tracker:    tracker,
		locker:     locker,
		events:     events,
		logger:     logger,
		now:        time.Now,
	}
}

func (u *Stages) ChangeStage(ctx context.Context, candidateID uuid.UUID, target candidate.Stage, author string) (StageChangeResult, error) {
	if !target.Valid() {
		return StageChangeResult{}, newValidationError(map[string]string{"stage": "Unknown stage"})
	}

	if u.locker != nil {
		unlock, ok, err := u.locker.TryLock(ctx, StageLockKey(candidateID), stageLockTTL)
		if err != nil {
			u.logger.WithError(err).Warn("stage lock unavailable")
			return StageChangeResult{}, ErrUnavailable
		}
		if !ok {
			return StageChangeResult{}, ErrStageChangeInProgress
		}
		defer unlock()
	}

	c, err := u.candidates.GetByID(ctx, candidateID)
	if err != nil {
		if errors.Is(err, candidate.ErrNotFound) {
			return StageChangeResult{}, ErrNotFound
		}
		return StageChangeResult{}, ErrInternal
	}

	from := c.Stage
	if !candidate.CanTransition(from, target) {
		return StageChangeResult{}, &TransitionError{From: from, To: target}
	}

	log := u.logger.WithFields(logrus.Fields{
		"candidate_id": c.ID,
		"from":         from,
		"to":           target,
		"author":       author,
	})

	tr, err := u.tracker.Begin(c.ID, from, target, author)
	if err != nil {
		return StageChangeResult{}, ErrStageChangeInProgress
	}
	u.publish(EventStagePending, c, tr, nil)

	entry := candidate.NewTransitionEntry(c.ID, from, target, author, u.now())
	if err := u.candidates.ApplyStageChange(ctx, entry); err != nil {
		reason := err.Error()
		rolled, rbErr := u.tracker.Rollback(c.ID, reason)
		if rbErr != nil {
			log.WithError(rbErr).Error("stage rollback")
		}
		u.publish(EventStageRolledBack, c, rolled, nil)

		switch {
		case errors.Is(err, candidate.ErrStageConflict):
			log.Warn("stage changed concurrently")
			return StageChangeResult{}, ErrStageConflict
		case errors.Is(err, candidate.ErrNotFound):
			return StageChangeResult{}, ErrNotFound
		}
		log.WithError(err).Error("stage change persist failed")
		return StageChangeResult{}, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	committed, err := u.tracker.Commit(c.ID, entry.ID)
	if err != nil {
		log.WithError(err).Error("stage commit")
	}
	c.Stage = target
	c.UpdatedAt = entry.Timestamp
	u.publish(EventStageCommitted, c, committed, &entry)
	log.Info("stage changed")

	items, err := buildTimeline(ctx, u.history, u.notes, c.ID, nil)
	if err != nil {
		log.WithError(err).Warn("timeline reload")
		items = nil
	}
	return StageChangeResult{Candidate: c, Entry: entry, Timeline: items}, nil
}

func (u *Stages) publish(kind string, c candidate.Candidate, tr board.Transition, entry *candidate.HistoryEntry) {
	if u.events == nil {
		return
	}
	u.events.BroadcastJSON(StageEvent{
		Type:        kind,
		CandidateID: c.ID,
		JobID:       c.JobID,
		Transition:  tr,
		Entry:       entry,
		Timestamp:   u.now().UTC(),
	})
}
