package board

import (
	"sync"
	"time"

	"hireboard/internal/domain/candidate"

	"github.com/google/uuid"
)

// Tracker remembers the latest optimistic transition per candidate.
type Tracker struct {
	mu    sync.RWMutex
	items map[uuid.UUID]Transition
	now   func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{items: map[uuid.UUID]Transition{}, now: time.Now}
}

func (t *Tracker) Get(candidateID uuid.UUID) Transition {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if tr, ok := t.items[candidateID]; ok {
		return tr
	}
	return Transition{CandidateID: candidateID, Status: StatusIdle}
}

// Dispatch applies ev to the candidate's transition and stores the result.
func (t *Tracker) Dispatch(candidateID uuid.UUID, ev Event) (Transition, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cur, ok := t.items[candidateID]
	if !ok {
		cur = Transition{CandidateID: candidateID, Status: StatusIdle}
	}
	next, err := Reduce(cur, ev)
	if err != nil {
		return cur, err
	}
	t.items[candidateID] = next
	return next, nil
}

// Begin records a pending move and returns it.
func (t *Tracker) Begin(candidateID uuid.UUID, from, to candidate.Stage, author string) (Transition, error) {
	return t.Dispatch(candidateID, Requested{From: from, To: to, Author: author, At: t.now().UTC()})
}

func (t *Tracker) Commit(candidateID, entryID uuid.UUID) (Transition, error) {
	return t.Dispatch(candidateID, Succeeded{EntryID: entryID, At: t.now().UTC()})
}

func (t *Tracker) Rollback(candidateID uuid.UUID, reason string) (Transition, error) {
	return t.Dispatch(candidateID, Failed{Reason: reason, At: t.now().UTC()})
}

// Pending returns the candidate's transition when it is still in flight.
func (t *Tracker) Pending(candidateID uuid.UUID) (Transition, bool) {
	tr := t.Get(candidateID)
	return tr, tr.Status == StatusPending
}
