package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hireboard/internal/database"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrMalformedResponseID = errors.New("malformed response id")

// SplitResponseID parses a composite "{candidateId}_{assessmentId}" key.
func SplitResponseID(id string) (uuid.UUID, uuid.UUID, error) {
	left, right, ok := strings.Cut(strings.TrimSpace(id), "_")
	if !ok || left == "" || right == "" {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: %q", ErrMalformedResponseID, id)
	}
	cid, err := uuid.Parse(left)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: candidate part %q", ErrMalformedResponseID, left)
	}
	aid, err := uuid.Parse(right)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("%w: assessment part %q", ErrMalformedResponseID, right)
	}
	return cid, aid, nil
}

type BackfillReport struct {
	Scanned    int
	Updated    int
	Unresolved map[string]string
}

// BackfillResponses fills candidate_id, assessment_id and job_id on legacy
// response rows from their composite id. Rows whose id cannot be split, or
// whose halves do not reference existing rows, are recorded in
// response_backfill_issues and left untouched.
func BackfillResponses(ctx context.Context, db database.DB, logger logrus.FieldLogger) (BackfillReport, error) {
	rep := BackfillReport{Unresolved: map[string]string{}}

	rows, err := db.Query(ctx, `SELECT id FROM assessment_responses WHERE candidate_id IS NULL OR assessment_id IS NULL`)
	if err != nil {
		return rep, err
	}
	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return rep, err
		}
		ids = append(ids, id)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return rep, err
	}

	for _, id := range ids {
		rep.Scanned++
		cid, aid, err := SplitResponseID(id)
		if err != nil {
			rep.Unresolved[id] = err.Error()
			continue
		}

		var jobID uuid.UUID
		var candidateExists bool
		row := db.QueryRow(ctx,
			`SELECT a.job_id, EXISTS(SELECT 1 FROM candidates c WHERE c.id = $1)
			 FROM assessments a WHERE a.id = $2`,
			cid, aid,
		)
		if err := row.Scan(&jobID, &candidateExists); err != nil {
			rep.Unresolved[id] = "assessment not found"
			continue
		}
		if !candidateExists {
			rep.Unresolved[id] = "candidate not found"
			continue
		}

		n, err := db.Exec(ctx,
			`UPDATE assessment_responses
			 SET candidate_id = $2, assessment_id = $3, job_id = COALESCE(job_id, $4), updated_at = now()
			 WHERE id = $1`,
			id, cid, aid, jobID,
		)
		if err != nil {
			return rep, err
		}
		rep.Updated += int(n)
	}

	for id, reason := range rep.Unresolved {
		if _, err := db.Exec(ctx,
			`INSERT INTO response_backfill_issues (response_id, reason) VALUES ($1, $2)
			 ON CONFLICT (response_id) DO UPDATE SET reason = EXCLUDED.reason, detected_at = now()`,
			id, reason,
		); err != nil {
			return rep, err
		}
		if logger != nil {
			logger.WithFields(logrus.Fields{"response_id": id, "reason": reason}).Warn("response backfill unresolved")
		}
	}

	if logger != nil {
		logger.WithFields(logrus.Fields{
			"scanned":    rep.Scanned,
			"updated":    rep.Updated,
			"unresolved": len(rep.Unresolved),
		}).Info("response backfill finished")
	}
	return rep, nil
}
