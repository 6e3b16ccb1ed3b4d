package db

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rotisserie/eris"
)

// UpsertConfig defines a single-row INSERT ... ON CONFLICT statement.
type UpsertConfig struct {
	Table        string   // target table (e.g., "catalog.pos")
	Columns      []string // all columns being inserted, in argument order
	ConflictKeys []string // columns forming the conflict target
	UpdateCols   []string // columns to update on conflict; nil = all non-conflict columns
	// ValueExprs wraps the placeholder of a column in an SQL expression, e.g.
	// "ST_GeomFromEWKB(%s)". The %s is replaced by the column's $n.
	ValueExprs map[string]string
	// Touch lists columns set to now() on conflict instead of EXCLUDED values.
	Touch     []string
	Returning []string
}

// UpsertStatement renders cfg as
// INSERT INTO t (cols) VALUES ($1..$n) ON CONFLICT (keys) DO UPDATE SET ... [RETURNING ...].
func UpsertStatement(cfg UpsertConfig) (string, error) {
	if len(cfg.Columns) == 0 {
		return "", eris.New("db: upsert: no columns specified")
	}
	if len(cfg.ConflictKeys) == 0 {
		return "", eris.New("db: upsert: no conflict keys specified")
	}

	touch := make(map[string]bool, len(cfg.Touch))
	for _, c := range cfg.Touch {
		touch[c] = true
	}

	updateCols := cfg.UpdateCols
	if updateCols == nil {
		conflictSet := make(map[string]bool, len(cfg.ConflictKeys))
		for _, k := range cfg.ConflictKeys {
			conflictSet[k] = true
		}
		for _, c := range cfg.Columns {
			if !conflictSet[c] && !touch[c] {
				updateCols = append(updateCols, c)
			}
		}
	}

	values := make([]string, len(cfg.Columns))
	for i, col := range cfg.Columns {
		ph := fmt.Sprintf("$%d", i+1)
		if expr, ok := cfg.ValueExprs[col]; ok {
			ph = fmt.Sprintf(expr, ph)
		}
		values[i] = ph
	}

	setClauses := make([]string, 0, len(updateCols)+len(cfg.Touch))
	for _, col := range updateCols {
		id := pgx.Identifier{col}.Sanitize()
		setClauses = append(setClauses, fmt.Sprintf("%s = EXCLUDED.%s", id, id))
	}
	for _, col := range cfg.Touch {
		setClauses = append(setClauses, fmt.Sprintf("%s = now()", pgx.Identifier{col}.Sanitize()))
	}
	if len(setClauses) == 0 {
		return "", eris.New("db: upsert: nothing to update on conflict")
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		sanitizeTable(cfg.Table),
		quoteAndJoin(cfg.Columns),
		strings.Join(values, ", "),
		quoteAndJoin(cfg.ConflictKeys),
		strings.Join(setClauses, ", "),
	)
	if len(cfg.Returning) > 0 {
		stmt += " RETURNING " + quoteAndJoin(cfg.Returning)
	}
	return stmt, nil
}

// sanitizeTable handles schema-qualified table names like "catalog.pos".
func sanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// quoteAndJoin quotes each column name and joins with commas.
func quoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
