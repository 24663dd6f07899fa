package job

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound     = errors.New("job not found")
	ErrSlugConflict = errors.New("job slug already exists")
)

type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

func (s Status) Valid() bool {
	return s == StatusActive || s == StatusArchived
}

type Job struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Description    string     `json:"description"`
	Role           string     `json:"role"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employmentType"`
	SalaryRange    string     `json:"salaryRange"`
	Requirements   []string   `json:"requirements"`
	Tags           []string   `json:"tags"`
	Status         Status     `json:"status"`
	Order          int        `json:"order"`
	ApplyByDate    *time.Time `json:"applyByDate"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NormalizeTags trims, drops empties and removes case-insensitive duplicates
// while keeping first-seen order and spelling.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		k := strings.ToLower(t)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, t)
	}
	return out
}

func (j Job) HasTag(tag string) bool {
	for _, t := range j.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}
