package timeline

import (
	"sort"
	"time"

	"hireboard/internal/domain/board"
	"hireboard/internal/domain/candidate"
)

type Kind string

const (
	KindStageChange Kind = "stage_change"
	KindNote        Kind = "note"
)

// Item is one row of a candidate's activity feed.
type Item struct {
	ID          string           `json:"id"`
	Kind        Kind             `json:"kind"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Author      string           `json:"author"`
	Timestamp   time.Time        `json:"timestamp"`
	FromStage   *candidate.Stage `json:"fromStage,omitempty"`
	ToStage     *candidate.Stage `json:"toStage,omitempty"`
	Mentions    []string         `json:"mentions,omitempty"`
	Provisional bool             `json:"provisional"`
}

// Build merges history and notes oldest first. A pending transition adds a
// provisional stage item at the end until its history entry is persisted.
func Build(history []candidate.HistoryEntry, notes []candidate.Note, pending *board.Transition) []Item {
	items := make([]Item, 0, len(history)+len(notes)+1)

	for _, h := range history {
		to := h.ToStage
		items = append(items, Item{
			ID:          h.ID.String(),
			Kind:        KindStageChange,
			Title:       to.Label(),
			Description: h.Description,
			Author:      h.Author,
			Timestamp:   h.Timestamp,
			FromStage:   h.FromStage,
			ToStage:     &to,
		})
	}
	for _, n := range notes {
		items = append(items, Item{
			ID:          n.ID.String(),
			Kind:        KindNote,
			Title:       "Note",
			Description: n.Content,
			Author:      n.Author,
			Timestamp:   n.CreatedAt,
			Mentions:    n.Mentions,
		})
	}

	// stable keeps history before notes on equal timestamps
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.Before(items[j].Timestamp)
	})

	if pending != nil && pending.Status == board.StatusPending {
		from, to := pending.From, pending.To
		items = append(items, Item{
			ID:          pending.ProvisionalID,
			Kind:        KindStageChange,
			Title:       to.Label(),
			Description: candidate.TransitionDescription(from, to),
			Author:      pending.Author,
			Timestamp:   pending.RequestedAt,
			FromStage:   &from,
			ToStage:     &to,
			Provisional: true,
		})
	}
	return items
}
