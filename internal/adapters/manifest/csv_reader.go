package manifest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

// ReadCSV parses a CSV manifest. The reader tolerates the usual export
// quirks: UTF-8 BOM, lazy quoting, and rows with a variable field count.
func ReadCSV(r io.Reader) (*LoadResult, error) {
	br := bufio.NewReader(r)

	// Strip a UTF-8 BOM (0xEF 0xBB 0xBF) so the first header cell matches.
	if lead, err := br.Peek(3); err == nil &&
		len(lead) == 3 && lead[0] == 0xEF && lead[1] == 0xBB && lead[2] == 0xBF {
		_, _ = br.Discard(3)
	}

	cr := csv.NewReader(br)
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyManifest
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest header: %w", err)
	}

	rows := make([][]string, 0, 64)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// A single broken line should not lose the manifest; it is
			// counted later as a skipped record via an empty row.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				rows = append(rows, nil)
				continue
			}
			return nil, fmt.Errorf("read manifest row: %w", err)
		}
		rows = append(rows, row)
	}

	return buildRecords(header, rows)
}
