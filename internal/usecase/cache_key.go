package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"hireboard/internal/domain/job"

	"github.com/google/uuid"
)

const (
	jobsListKeyPrefix   = "jobs:list:"
	jobsListKeyPattern  = jobsListKeyPrefix + "*"
	assessmentKeyPrefix = "assessment:job:"
	stageLockKeyPrefix  = "stage:lock:"
)

type jobListCacheKeyInput struct {
	Search   string `json:"search"`
	Status   string `json:"status"`
	Sort     string `json:"sort"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
}

func normalizeSearchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

func JobsListCacheKey(f job.ListFilter) string {
	in := jobListCacheKeyInput{
		Search:   normalizeSearchValue(f.Search),
		Status:   string(f.Status),
		Sort:     f.Sort,
		Page:     f.Page,
		PageSize: f.PageSize,
	}
	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return jobsListKeyPrefix + hex.EncodeToString(sum[:])
}

func AssessmentCacheKey(jobID uuid.UUID) string {
	return assessmentKeyPrefix + jobID.String()
}

func StageLockKey(candidateID uuid.UUID) string {
	return stageLockKeyPrefix + candidateID.String()
}
