package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Column is a named numeric series for Write.
type Column struct {
	Name   string
	Values []float64
}

// Write encodes columns as delimited text with a header row. All columns
// must have the same length.
func Write(w io.Writer, delimiter rune, columns ...Column) error {
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0].Values)
	}
	header := make([]string, len(columns))
	for i, c := range columns {
		if len(c.Values) != rows {
			return fmt.Errorf("%w: %s has %d values, want %d", ErrColumnLength, c.Name, len(c.Values), rows)
		}
		header[i] = c.Name
	}

	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("dataset: writing header: %w", err)
	}

	record := make([]string, len(columns))
	for r := range rows {
		for i, c := range columns {
			record[i] = strconv.FormatFloat(c.Values[r], 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("dataset: writing row %d: %w", r, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("dataset: flushing: %w", err)
	}
	return nil
}

// WriteFile writes columns to a new file at path.
func WriteFile(path string, delimiter rune, columns ...Column) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("dataset: %w", err)
	}
	if err := Write(f, delimiter, columns...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("dataset: closing %s: %w", path, err)
	}
	return nil
}
