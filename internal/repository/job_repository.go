package repository

import (
	"context"
	"fmt"
	"strings"

	"hireboard/internal/database"
	"hireboard/internal/domain/job"

	"github.com/google/uuid"
)

type PostgresJobRepository struct {
	db database.DB
}

func NewPostgresJobRepository(db database.DB) *PostgresJobRepository {
	return &PostgresJobRepository{db: db}
}

const jobColumns = `id, title, slug, description, role, location, employment_type, salary_range,
	requirements, tags, status, sort_order, apply_by_date, created_at, updated_at`

func (r *PostgresJobRepository) Create(ctx context.Context, j job.Job) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO jobs (`+jobColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		j.ID, j.Title, j.Slug, j.Description, j.Role, j.Location, j.EmploymentType, j.SalaryRange,
		nonNil(j.Requirements), nonNil(j.Tags), string(j.Status), j.Order, j.ApplyByDate, j.CreatedAt, j.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return job.ErrSlugConflict
	}
	return err
}

func (r *PostgresJobRepository) Update(ctx context.Context, j job.Job) error {
	n, err := r.db.Exec(ctx,
		`UPDATE jobs SET title = $2, slug = $3, description = $4, role = $5, location = $6,
		 employment_type = $7, salary_range = $8, requirements = $9, tags = $10, status = $11,
		 sort_order = $12, apply_by_date = $13, updated_at = $14
		 WHERE id = $1`,
		j.ID, j.Title, j.Slug, j.Description, j.Role, j.Location, j.EmploymentType, j.SalaryRange,
		nonNil(j.Requirements), nonNil(j.Tags), string(j.Status), j.Order, j.ApplyByDate, j.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return job.ErrSlugConflict
		}
		return err
	}
	if n == 0 {
		return job.ErrNotFound
	}
	return nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if err != nil {
		if isNoRows(err) {
			return job.Job{}, job.ErrNotFound
		}
		return job.Job{}, err
	}
	return j, nil
}

var jobSortColumns = map[string]string{
	job.SortOrder:     "sort_order ASC",
	job.SortTitle:     "lower(title) ASC",
	job.SortCreatedAt: "created_at DESC",
}

func (r *PostgresJobRepository) List(ctx context.Context, f job.ListFilter) ([]job.Job, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		where = append(where, fmt.Sprintf(
			`(title ILIKE $%d OR EXISTS (SELECT 1 FROM unnest(tags) t WHERE t ILIKE $%d))`, len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		where = append(where, fmt.Sprintf(`status = $%d`, len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(1) FROM jobs`+clause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	order, ok := jobSortColumns[f.Sort]
	if !ok {
		order = jobSortColumns[job.SortOrder]
	}
	limit, offset := pageBounds(f.Page, f.PageSize)
	args = append(args, limit, offset)

	rows, err := r.db.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM jobs%s ORDER BY %s, id ASC LIMIT $%d OFFSET $%d`,
			jobColumns, clause, order, len(args)-1, len(args)),
		args...,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collectJobs(rows)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *PostgresJobRepository) ListOrdered(ctx context.Context) ([]job.Job, error) {
	rows, err := r.db.Query(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY sort_order ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectJobs(rows)
}

func (r *PostgresJobRepository) UpdateOrders(ctx context.Context, jobs []job.Job) error {
	if len(jobs) == 0 {
		return nil
	}
	return database.WithTx(ctx, r.db, func(q database.Querier) error {
		for _, j := range jobs {
			n, err := q.Exec(ctx, `UPDATE jobs SET sort_order = $2, updated_at = now() WHERE id = $1`, j.ID, j.Order)
			if err != nil {
				return err
			}
			if n == 0 {
				return job.ErrNotFound
			}
		}
		return nil
	})
}

func (r *PostgresJobRepository) SlugExists(ctx context.Context, slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	row := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM jobs WHERE slug = $1 AND id <> $2)`, slug, exclude)
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *PostgresJobRepository) MaxOrder(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(MAX(sort_order), 0) FROM jobs`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *PostgresJobRepository) CountByStatus(ctx context.Context) (map[job.Status]int, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(1) FROM jobs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[job.Status]int{job.StatusActive: 0, job.StatusArchived: 0}
	for rows.Next() {
		var s string
		var c int
		if err := rows.Scan(&s, &c); err != nil {
			return nil, err
		}
		out[job.Status(s)] = c
	}
	return out, rows.Err()
}

func scanJob(row database.Row) (job.Job, error) {
	var j job.Job
	var status string
	err := row.Scan(&j.ID, &j.Title, &j.Slug, &j.Description, &j.Role, &j.Location, &j.EmploymentType,
		&j.SalaryRange, &j.Requirements, &j.Tags, &status, &j.Order, &j.ApplyByDate, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return job.Job{}, err
	}
	j.Status = job.Status(status)
	if j.Requirements == nil {
		j.Requirements = []string{}
	}
	if j.Tags == nil {
		j.Tags = []string{}
	}
	return j, nil
}

func collectJobs(rows database.Rows) ([]job.Job, error) {
	out := make([]job.Job, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
