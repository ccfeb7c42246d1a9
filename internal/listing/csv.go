package listing

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column headers of the CSV manifest format.
const (
	PathHeader = "File Path"
	SizeHeader = "File Size (bytes)"
)

// ErrNoPathColumn is returned when a CSV manifest lacks the path header.
var ErrNoPathColumn = errors.New("manifest has no \"" + PathHeader + "\" column")

// LoadCSV reads a comma-separated manifest.
func LoadCSV(path string) ([]Entry, error) {
	return loadDelimited(path, ',')
}

// LoadTSV reads a tab-separated manifest with the same headers.
func LoadTSV(path string) ([]Entry, error) {
	return loadDelimited(path, '\t')
}

func loadDelimited(path string, comma rune) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	entries, err := ReadCSV(f, comma)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return entries, nil
}

// ReadCSV parses a manifest from r. Rows with an empty path are skipped and a
// missing size column yields empty sizes.
func ReadCSV(r io.Reader, comma rune) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.Comma = comma
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoPathColumn
	}
	if err != nil {
		return nil, err
	}

	pathCol, sizeCol := -1, -1
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		switch strings.TrimSpace(h) {
		case PathHeader:
			pathCol = i
		case SizeHeader:
			sizeCol = i
		}
	}
	if pathCol < 0 {
		return nil, ErrNoPathColumn
	}

	var entries []Entry
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if pathCol >= len(rec) {
			continue
		}
		p := strings.TrimSpace(rec[pathCol])
		if p == "" {
			continue
		}
		var size string
		if sizeCol >= 0 && sizeCol < len(rec) {
			size = rec[sizeCol]
		}
		entries = append(entries, NewEntry(len(entries), p, size))
	}
	return entries, nil
}
