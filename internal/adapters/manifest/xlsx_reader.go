package manifest

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX parses an Excel manifest, reading the first sheet only.
func ReadXLSX(r io.Reader) (*LoadResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx manifest: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyManifest
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read xlsx sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyManifest
	}

	return buildRecords(rows[0], rows[1:])
}

// ReadFile loads a manifest from disk, dispatching on file extension.
func ReadFile(path string) (*LoadResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest %q: %w", path, err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(f)
	case ".xlsx":
		return ReadXLSX(f)
	case ".xls":
		// Legacy binary XLS is not parseable as an OOXML workbook.
		return nil, fmt.Errorf("manifest %q: legacy .xls is not supported, re-save as .xlsx or .csv", path)
	default:
		return nil, fmt.Errorf("manifest %q: unsupported format %q", path, filepath.Ext(path))
	}
}
