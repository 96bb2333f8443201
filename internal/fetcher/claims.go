// Package fetcher reads batches of claim inputs from CSV, XLSX and JSON
// files.
package fetcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/claim-router/internal/model"
)

// TextColumn holds free text; a row with text is routed on the text path.
const TextColumn = "TEXT"

// ReadClaims loads claim inputs from path. The format follows the file
// extension: .csv, .xlsx, .json (array) or .jsonl/.ndjson.
func ReadClaims(ctx context.Context, path string) ([]model.ClaimInput, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: open csv")
		}
		defer f.Close() //nolint:errcheck

		rows, err := collect(StreamCSV(ctx, f, CSVOptions{TrimSpace: true}))
		if err != nil {
			return nil, err
		}
		return ClaimsFromRows(rows)

	case ".xlsx":
		rows, err := ReadXLSX(path, XLSXOptions{})
		if err != nil {
			return nil, err
		}
		return ClaimsFromRows(rows)

	case ".json", ".jsonl", ".ndjson":
		f, err := os.Open(path)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: open json")
		}
		defer f.Close() //nolint:errcheck

		var claims []model.ClaimInput
		outCh, errCh := DecodeJSON[model.ClaimInput](ctx, f)
		for in := range outCh {
			claims = append(claims, in)
		}
		for err := range errCh {
			if err != nil {
				return nil, err
			}
		}
		return claims, nil

	default:
		return nil, eris.Errorf("fetcher: unsupported file type %q", ext)
	}
}

// ClaimsFromRows turns a header row plus data rows into claim inputs.
// Header cells name structured fields (case-insensitive) or TEXT; other
// columns are ignored. Blank cells are left out so the field stays
// unknown. Fully blank rows are skipped.
func ClaimsFromRows(rows [][]string) ([]model.ClaimInput, error) {
	if len(rows) == 0 {
		return nil, eris.New("fetcher: no header row")
	}

	known := make(map[string]bool)
	for _, f := range model.StructuredFields() {
		known[f] = true
	}

	columns := make([]string, len(rows[0]))
	matched := 0
	for i, h := range rows[0] {
		name := strings.ToUpper(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if known[name] || name == TextColumn {
			columns[i] = name
			matched++
		}
	}
	if matched == 0 {
		return nil, eris.Errorf("fetcher: header has no recognized claim columns: %v", rows[0])
	}

	claims := make([]model.ClaimInput, 0, len(rows)-1)
	for _, row := range rows[1:] {
		in := model.ClaimInput{}
		for i, cell := range row {
			if i >= len(columns) || columns[i] == "" {
				continue
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if columns[i] == TextColumn {
				in.Text = model.Ptr(cell)
				continue
			}
			if in.StructuredData == nil {
				in.StructuredData = make(map[string]any)
			}
			in.StructuredData[columns[i]] = cell
		}
		if !in.HasText() && !in.HasStructured() {
			continue
		}
		claims = append(claims, in)
	}
	return claims, nil
}
