package mapping

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

// LoadOptions controls how the CSV is interpreted. The caller declares
// whether row 1 is a header; it is never guessed from content.
type LoadOptions struct {
	HasHeader bool
}

// DefaultLoadOptions treats row 1 as a header, matching the most common
// shape of exported spreadsheets.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{HasHeader: true}
}

// Load reads a two-column CSV (original name, target name) into a Mapping.
// Columns beyond the second are ignored. Duplicate keys resolve
// last-write-wins and are recorded on the returned Mapping.
func Load(r io.Reader, opts LoadOptions) (*Mapping, error) {
	buffered := bufio.NewReader(r)

	// Spreadsheet exports often carry a UTF-8 BOM.
	leading, err := buffered.Peek(len(byteOrderMark))
	if err == nil && bytes.Equal(leading, byteOrderMark) {
		_, _ = buffered.Discard(len(byteOrderMark))
	}

	reader := csv.NewReader(buffered)
	reader.FieldsPerRecord = -1

	m := newMapping()
	row := 0

	for {
		record, readErr := reader.Read()
		if errors.Is(readErr, io.EOF) {
			break
		}
		if readErr != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, readErr)
		}

		row++
		if opts.HasHeader && row == 1 {
			continue
		}

		if len(record) < 2 {
			return nil, fmt.Errorf("%w: row %d has %d column(s), need at least 2", ErrInvalid, row, len(record))
		}

		key := strings.TrimSpace(record[0])
		target := strings.TrimSpace(record[1])
		if key == "" {
			return nil, fmt.Errorf("%w: row %d has an empty original name", ErrInvalid, row)
		}
		if target == "" {
			return nil, fmt.Errorf("%w: row %d has an empty target name", ErrInvalid, row)
		}

		m.add(key, target, row)
	}

	if m.Len() == 0 {
		return nil, ErrEmpty
	}

	return m, nil
}

// LoadFile opens and loads a mapping CSV from disk.
func LoadFile(path string, opts LoadOptions) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalid, err)
	}
	defer f.Close()

	return Load(f, opts)
}
