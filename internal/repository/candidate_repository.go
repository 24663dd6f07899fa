package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hireboard/internal/database"
	"hireboard/internal/domain/candidate"

	"github.com/google/uuid"
)

type PostgresCandidateRepository struct {
	db database.DB
}

func NewPostgresCandidateRepository(db database.DB) *PostgresCandidateRepository {
	return &PostgresCandidateRepository{db: db}
}

const candidateColumns = `id, name, email, phone, job_id, stage, created_at, updated_at`

func (r *PostgresCandidateRepository) Create(ctx context.Context, c candidate.Candidate, initial candidate.HistoryEntry) error {
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		if _, err := q.Exec(ctx,
			`INSERT INTO candidates (`+candidateColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, c.Name, c.Email, c.Phone, c.JobID, string(c.Stage), c.CreatedAt, c.UpdatedAt,
		); err != nil {
			return err
		}
		return insertHistory(ctx, q, initial)
	})
}

func (r *PostgresCandidateRepository) GetByID(ctx context.Context, id uuid.UUID) (candidate.Candidate, error) {
	row := r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id)
	c, err := scanCandidate(row)
	if err != nil {
		if isNoRows(err) {
			return candidate.Candidate{}, candidate.ErrNotFound
		}
		return candidate.Candidate{}, err
	}
	return c, nil
}

func (r *PostgresCandidateRepository) List(ctx context.Context, f candidate.ListFilter) ([]candidate.Candidate, int, error) {
	where := make([]string, 0, 3)
	args := make([]any, 0, 5)

	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf(`(name ILIKE $%d OR email ILIKE $%d)`, len(args), len(args)))
	}
	if f.Stage != "" {
		args = append(args, string(f.Stage))
		where = append(where, fmt.Sprintf(`stage = $%d`, len(args)))
	}
	if f.JobID != nil {
		args = append(args, *f.JobID)
		where = append(where, fmt.Sprintf(`job_id = $%d`, len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM candidates`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := pageBounds(f.Page, f.PageSize)
	args = append(args, limit, offset)
	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM candidates%s ORDER BY created_at DESC, id ASC LIMIT $%d OFFSET $%d`,
			candidateColumns, clause, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectCandidates(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresCandidateRepository) ListByJob(ctx context.Context, jobID uuid.UUID) ([]candidate.Candidate, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+candidateColumns+` FROM candidates WHERE job_id = $1 ORDER BY created_at ASC, id ASC`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCandidates(rows)
}

func (r *PostgresCandidateRepository) UpdateContact(ctx context.Context, c candidate.Candidate) error {
	n, err := r.db.Exec(ctx,
		`UPDATE candidates SET name = $2, email = $3, phone = $4, updated_at = $5 WHERE id = $1`,
		c.ID, c.Name, c.Email, c.Phone, c.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if n == 0 {
		return candidate.ErrNotFound
	}
	return nil
}

func (r *PostgresCandidateRepository) CountByStage(ctx context.Context) (map[candidate.Stage]int, error) {
	rows, err := r.db.Query(ctx, `SELECT stage, COUNT(1) FROM candidates GROUP BY stage`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[candidate.Stage]int, 6)
	for _, s := range candidate.AllStages() {
		out[s] = 0
	}
	for rows.Next() {
		var s string
		var c int
		if err := rows.Scan(&s, &c); err != nil {
			return nil, err
		}
		out[candidate.Stage(s)] = c
	}
	return out, rows.Err()
}

func (r *PostgresCandidateRepository) ApplyStageChange(ctx context.Context, entry candidate.HistoryEntry) error {
	if entry.FromStage == nil {
		return fmt.Errorf("stage change without from stage: %w", candidate.ErrInvalidStage)
	}

	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		n, err := q.Exec(ctx,
			`UPDATE candidates SET stage = $3, updated_at = $4 WHERE id = $1 AND stage = $2`,
			entry.CandidateID, string(*entry.FromStage), string(entry.ToStage), entry.Timestamp,
		)
		if err != nil {
			return err
		}
		if n == 0 {
			var exists bool
			if err := q.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM candidates WHERE id = $1)`, entry.CandidateID).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return candidate.ErrNotFound
			}
			return candidate.ErrStageConflict
		}
		return insertHistory(ctx, q, entry)
	})
}

func insertHistory(ctx context.Context, db database.Querier, e candidate.HistoryEntry) error {
	var from *string
	if e.FromStage != nil {
		s := string(*e.FromStage)
		from = &s
	}
	_, err := db.Exec(ctx,
		`INSERT INTO stage_history (id, candidate_id, from_stage, to_stage, author, created_at, description)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.CandidateID, from, string(e.ToStage), e.Author, e.Timestamp, e.Description,
	)
	return err
}

func scanCandidate(row database.Row) (candidate.Candidate, error) {
	var c candidate.Candidate
	var stage string
	if err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.JobID, &stage, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return candidate.Candidate{}, err
	}
	c.Stage = candidate.Stage(stage)
	return c, nil
}

func collectCandidates(rows database.Rows) ([]candidate.Candidate, error) {
	out := make([]candidate.Candidate, 0)
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type PostgresHistoryRepository struct {
	db database.DB
}

func NewPostgresHistoryRepository(db database.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

func (r *PostgresHistoryRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]candidate.HistoryEntry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, candidate_id, from_stage, to_stage, author, created_at, description
		 FROM stage_history WHERE candidate_id = $1 ORDER BY created_at ASC, id ASC`,
		candidateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]candidate.HistoryEntry, 0)
	for rows.Next() {
		var e candidate.HistoryEntry
		var from *string
		var to string
		var ts time.Time
		if err := rows.Scan(&e.ID, &e.CandidateID, &from, &to, &e.Author, &ts, &e.Description); err != nil {
			return nil, err
		}
		if from != nil {
			s := candidate.Stage(*from)
			e.FromStage = &s
		}
		e.ToStage = candidate.Stage(to)
		e.Timestamp = ts.UTC()
		out = append(out, e)
	}
	return out, rows.Err()
}

type PostgresNoteRepository struct {
	db database.DB
}

func NewPostgresNoteRepository(db database.DB) *PostgresNoteRepository {
	return &PostgresNoteRepository{db: db}
}

func (r *PostgresNoteRepository) Create(ctx context.Context, n candidate.Note) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO candidate_notes (id, candidate_id, content, author, mentions, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.ID, n.CandidateID, n.Content, n.Author, nonNil(n.Mentions), n.CreatedAt,
	)
	if isForeignKeyViolation(err) {
		return candidate.ErrNotFound
	}
	return err
}

func (r *PostgresNoteRepository) ListByCandidate(ctx context.Context, candidateID uuid.UUID) ([]candidate.Note, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, candidate_id, content, author, mentions, created_at
		 FROM candidate_notes WHERE candidate_id = $1 ORDER BY created_at ASC, id ASC`,
		candidateID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]candidate.Note, 0)
	for rows.Next() {
		var n candidate.Note
		if err := rows.Scan(&n.ID, &n.CandidateID, &n.Content, &n.Author, &n.Mentions, &n.CreatedAt); err != nil {
			return nil, err
		}
		if n.Mentions == nil {
			n.Mentions = []string{}
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
