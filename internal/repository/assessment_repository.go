package repository

import (
	"context"
	"encoding/json"
	"time"

	"hireboard/internal/database"
	"hireboard/internal/domain/assessment"

	"github.com/google/uuid"
)

type PostgresAssessmentRepository struct {
	db database.DB
}

func NewPostgresAssessmentRepository(db database.DB) *PostgresAssessmentRepository {
	return &PostgresAssessmentRepository{db: db}
}

const assessmentColumns = `id, job_id, title, description, sections::text, time_limit, passing_score, created_at, updated_at`

func (r *PostgresAssessmentRepository) GetByJob(ctx context.Context, jobID uuid.UUID) (assessment.Assessment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE job_id = $1`, jobID)
	return scanAssessment(row)
}

func (r *PostgresAssessmentRepository) GetByID(ctx context.Context, id uuid.UUID) (assessment.Assessment, error) {
	row := r.db.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE id = $1`, id)
	return scanAssessment(row)
}

func (r *PostgresAssessmentRepository) Save(ctx context.Context, a assessment.Assessment) error {
	sections := a.Sections
	if sections == nil {
		sections = []assessment.Section{}
	}
	b, err := json.Marshal(sections)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx,
		`INSERT INTO assessments (id, job_id, title, description, sections, time_limit, passing_score, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9)
		 ON CONFLICT (job_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			sections = EXCLUDED.sections,
			time_limit = EXCLUDED.time_limit,
			passing_score = EXCLUDED.passing_score,
			updated_at = EXCLUDED.updated_at`,
		a.ID, a.JobID, a.Title, a.Description, string(b), a.Settings.TimeLimit, a.Settings.PassingScore,
		a.CreatedAt, a.UpdatedAt,
	)
	return err
}

func scanAssessment(row database.Row) (assessment.Assessment, error) {
	var a assessment.Assessment
	var sections string
	err := row.Scan(&a.ID, &a.JobID, &a.Title, &a.Description, &sections,
		&a.Settings.TimeLimit, &a.Settings.PassingScore, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return assessment.Assessment{}, assessment.ErrNotFound
		}
		return assessment.Assessment{}, err
	}
	if err := json.Unmarshal([]byte(sections), &a.Sections); err != nil {
		return assessment.Assessment{}, err
	}
	return a, nil
}

type PostgresResponseRepository struct {
	db database.DB
}

func NewPostgresResponseRepository(db database.DB) *PostgresResponseRepository {
	return &PostgresResponseRepository{db: db}
}

const responseColumns = `id, candidate_id, assessment_id, job_id, responses::text, submitted_at,
	is_completed, time_spent, score, max_score, passed, updated_at`

func (r *PostgresResponseRepository) Get(ctx context.Context, id string) (assessment.Response, error) {
	row := r.db.QueryRow(ctx, `SELECT `+responseColumns+` FROM assessment_responses WHERE id = $1`, id)
	resp, err := scanResponse(row)
	if err != nil {
		if isNoRows(err) {
			return assessment.Response{}, assessment.ErrResponseNotFound
		}
		return assessment.Response{}, err
	}
	return resp, nil
}

func (r *PostgresResponseRepository) Save(ctx context.Context, resp assessment.Response) error {
	answers := resp.Responses
	if answers == nil {
		answers = assessment.Answers{}
	}
	b, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	updated := resp.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	n, err := r.db.Exec(ctx,
		`INSERT INTO assessment_responses (id, candidate_id, assessment_id, job_id, responses, submitted_at,
			is_completed, time_spent, score, max_score, passed, updated_at)
		 VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9, $10, $11, $12)
		 ON CONFLICT (id) DO UPDATE SET
			responses = EXCLUDED.responses,
			submitted_at = EXCLUDED.submitted_at,
			is_completed = EXCLUDED.is_completed,
			time_spent = EXCLUDED.time_spent,
			score = EXCLUDED.score,
			max_score = EXCLUDED.max_score,
			passed = EXCLUDED.passed,
			updated_at = EXCLUDED.updated_at
		 WHERE assessment_responses.is_completed = false`,
		resp.ID, resp.CandidateID, resp.AssessmentID, resp.JobID, string(b), resp.SubmittedAt,
		resp.IsCompleted, resp.TimeSpent, resp.Score, resp.MaxScore, resp.Passed, updated,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return assessment.ErrResponseCompleted
	}
	return nil
}

func (r *PostgresResponseRepository) ListByAssessment(ctx context.Context, assessmentID uuid.UUID) ([]assessment.Response, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+responseColumns+` FROM assessment_responses WHERE assessment_id = $1 ORDER BY updated_at DESC`,
		assessmentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]assessment.Response, 0)
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, resp)
	}
	return out, rows.Err()
}

func (r *PostgresResponseRepository) CountCompleted(ctx context.Context) (int, int, error) {
	var completed, passed int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(1) FILTER (WHERE is_completed), COUNT(1) FILTER (WHERE is_completed AND passed)
		 FROM assessment_responses`,
	).Scan(&completed, &passed)
	return completed, passed, err
}

func scanResponse(row database.Row) (assessment.Response, error) {
	var resp assessment.Response
	var cid, aid, jid *uuid.UUID
	var answers string
	err := row.Scan(&resp.ID, &cid, &aid, &jid, &answers, &resp.SubmittedAt, &resp.IsCompleted,
		&resp.TimeSpent, &resp.Score, &resp.MaxScore, &resp.Passed, &resp.UpdatedAt)
	if err != nil {
		return assessment.Response{}, err
	}
	if cid != nil {
		resp.CandidateID = *cid
	}
	if aid != nil {
		resp.AssessmentID = *aid
	}
	if jid != nil {
		resp.JobID = *jid
	}
	resp.Responses = assessment.Answers{}
	if err := json.Unmarshal([]byte(answers), &resp.Responses); err != nil {
		return assessment.Response{}, err
	}
	return resp, nil
}
