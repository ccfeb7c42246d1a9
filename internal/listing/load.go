package listing

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Load reads a manifest, choosing the format from the file extension.
func Load(ctx context.Context, path string, opts SQLiteOptions) ([]Entry, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return LoadCSV(path)
	case ".tsv":
		return LoadTSV(path)
	case ".db", ".sqlite", ".sqlite3":
		return LoadSQLite(ctx, path, opts)
	}
	return nil, fmt.Errorf("unsupported manifest format: %s", filepath.Base(path))
}
