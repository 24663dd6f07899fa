package candidate

import (
	"fmt"
	"strings"
)

type Stage string

const (
	StageApplied            Stage = "applied"
	StageOnlineAssessment   Stage = "online-assessment"
	StageTechnicalInterview Stage = "technical-interview"
	StageFinalInterview     Stage = "final-interview"
	StageHired              Stage = "hired"
	StageRejected           Stage = "rejected"
)

// linearStages is the canonical hiring path. Rejected is a side branch.
var linearStages = []Stage{
	StageApplied,
	StageOnlineAssessment,
	StageTechnicalInterview,
	StageFinalInterview,
	StageHired,
}

var stageLabels = map[Stage]string{
	StageApplied:            "Applied",
	StageOnlineAssessment:   "Online Assessment",
	StageTechnicalInterview: "Technical Interview",
	StageFinalInterview:     "Final Interview",
	StageHired:              "Hired",
	StageRejected:           "Rejected",
}

// AllStages returns every stage in board column order.
func AllStages() []Stage {
	out := make([]Stage, 0, len(linearStages)+1)
	out = append(out, linearStages...)
	return append(out, StageRejected)
}

// Index returns the position on the linear path, or -1 for Rejected and
// unknown values.
func (s Stage) Index() int {
	for i, st := range linearStages {
		if st == s {
			return i
		}
	}
	return -1
}

func (s Stage) Label() string {
	if l, ok := stageLabels[s]; ok {
		return l
	}
	return string(s)
}

func (s Stage) Valid() bool {
	_, ok := stageLabels[s]
	return ok
}

// ParseStage accepts either the key ("technical-interview") or the label
// ("Technical Interview"), case-insensitively.
func ParseStage(raw string) (Stage, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", fmt.Errorf("%w: empty stage", ErrInvalidStage)
	}
	for st, label := range stageLabels {
		if string(st) == v || strings.ToLower(label) == v {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStage, raw)
}

// CanTransition reports whether a candidate may move from current to target.
//
//   - staying in place is never a transition
//   - forward moves along the linear path are allowed, skips included
//   - Rejected can be reached from any stage except Hired by the generic rule
//   - Hired and Rejected may be swapped in either direction
//   - leaving Rejected for an earlier stage re-opens the candidate
//   - every other backward move is refused
func CanTransition(current, target Stage) bool {
	if !current.Valid() || !target.Valid() {
		return false
	}
	if current == target {
		return false
	}

	if isOverride(current, target) {
		return true
	}

	if target == StageRejected {
		return current != StageHired
	}

	if current == StageRejected {
		return target.Index() < StageHired.Index()
	}

	return target.Index() > current.Index()
}

func isOverride(a, b Stage) bool {
	return (a == StageHired && b == StageRejected) || (a == StageRejected && b == StageHired)
}

// TransitionDescription is the audit text written for a stage change.
func TransitionDescription(from, to Stage) string {
	return fmt.Sprintf("Stage changed: %s → %s", from.Label(), to.Label())
}
