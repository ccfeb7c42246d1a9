package listing

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	_ "modernc.org/sqlite"
)

// SQLiteOptions names the manifest table and its columns.
type SQLiteOptions struct {
	Table      string
	PathColumn string
	SizeColumn string // optional
}

// DefaultSQLiteOptions matches a `files(path, size)` table.
func DefaultSQLiteOptions() SQLiteOptions {
	return SQLiteOptions{Table: "files", PathColumn: "path", SizeColumn: "size"}
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func (o SQLiteOptions) query() (string, error) {
	for _, id := range []string{o.Table, o.PathColumn} {
		if !identRe.MatchString(id) {
			return "", fmt.Errorf("invalid sqlite identifier %q", id)
		}
	}
	size := "NULL"
	if o.SizeColumn != "" {
		if !identRe.MatchString(o.SizeColumn) {
			return "", fmt.Errorf("invalid sqlite identifier %q", o.SizeColumn)
		}
		size = `"` + o.SizeColumn + `"`
	}
	return fmt.Sprintf(`SELECT "%s", %s FROM "%s" ORDER BY rowid`, o.PathColumn, size, o.Table), nil
}

// LoadSQLite reads manifest rows from a SQLite database.
func LoadSQLite(ctx context.Context, path string, opts SQLiteOptions) ([]Entry, error) {
	q, err := opts.query()
	if err != nil {
		return nil, err
	}

	// sqlite would create a missing file on open.
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open manifest database: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open manifest database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("query manifest %s: %w", path, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var p, size sql.NullString
		if err := rows.Scan(&p, &size); err != nil {
			return nil, fmt.Errorf("scan manifest row: %w", err)
		}
		if !p.Valid || p.String == "" {
			continue
		}
		entries = append(entries, NewEntry(len(entries), p.String, size.String))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return entries, nil
}
