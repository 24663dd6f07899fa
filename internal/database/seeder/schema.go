package seeder

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"hireboard/internal/database"
)

// RequiredColumns lists the columns the seeders write through the Postgres
// repositories.
var RequiredColumns = map[string][]string{
	"recruiters":    {"id", "email", "name", "password_hash"},
	"jobs":          {"id", "title", "slug", "status", "sort_order", "tags"},
	"candidates":    {"id", "name", "email", "job_id", "stage"},
	"stage_history": {"id", "candidate_id", "from_stage", "to_stage", "author", "description"},
	"assessments":   {"id", "job_id", "sections", "passing_score"},
}

// CheckSchema reads information_schema once and reports every missing
// column of want, joined into one error.
func CheckSchema(ctx context.Context, db database.Querier, want map[string][]string) error {
	if db == nil {
		return errors.New("nil db")
	}

	tables := make([]string, 0, len(want))
	for table := range want {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	rows, err := db.Query(ctx,
		`SELECT table_name, column_name FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = ANY($1)`,
		tables,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	have := map[string]bool{}
	for rows.Next() {
		var table, col string
		if err := rows.Scan(&table, &col); err != nil {
			return err
		}
		have[table+"."+col] = true
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return MissingColumns(want, have)
}

// MissingColumns compares want against the set of "table.column" names
// present in the database.
func MissingColumns(want map[string][]string, have map[string]bool) error {
	tables := make([]string, 0, len(want))
	for table := range want {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	var errs []error
	for _, table := range tables {
		for _, col := range want[table] {
			if !have[table+"."+col] {
				errs = append(errs, fmt.Errorf("schema mismatch: missing column %s.%s", table, col))
			}
		}
	}
	return errors.Join(errs...)
}
