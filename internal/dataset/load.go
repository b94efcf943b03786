package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

type loadOptions struct {
	delimiter rune
	numeric   []string
	required  []string
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

// WithDelimiter sets the field separator. The default is ';'.
func WithDelimiter(r rune) LoadOption {
	return func(o *loadOptions) { o.delimiter = r }
}

// WithNumeric sets the columns parsed as float64. The default is
// RequiredColumns.
func WithNumeric(names ...string) LoadOption {
	return func(o *loadOptions) { o.numeric = slices.Clone(names) }
}

// WithRequired makes Load fail with ErrMissingColumns, before reading any
// rows, when one of names is absent from the header.
func WithRequired(names ...string) LoadOption {
	return func(o *loadOptions) { o.required = slices.Clone(names) }
}

// Load reads the chunk file at path.
func Load(path string, opts ...LoadOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dataset: %w", err)
	}
	defer f.Close()

	return Read(f, path, opts...)
}

// Read parses a chunk from r. name is used in errors and as the table path.
func Read(r io.Reader, name string, opts ...LoadOption) (*Table, error) {
	o := loadOptions{delimiter: ';', numeric: RequiredColumns}
	for _, opt := range opts {
		opt(&o)
	}

	reader := csv.NewReader(r)
	reader.Comma = o.delimiter
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("dataset: %s: %w", name, ErrNoHeader)
	}
	if err != nil {
		return nil, &ParseError{Path: name, Line: 1, Err: err}
	}
	header = slices.Clone(header)
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}
	header = dedupe(header)

	t := &Table{
		path:    name,
		header:  header,
		numeric: make(map[string][]float64),
		text:    make(map[string][]string),
	}
	if missing := t.Missing(o.required...); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s: %s", ErrMissingColumns, name, strings.Join(missing, ", "))
	}

	isNumeric := make([]bool, len(header))
	for i, col := range header {
		isNumeric[i] = slices.Contains(o.numeric, col)
		if isNumeric[i] {
			t.numeric[col] = nil
		} else {
			t.text[col] = nil
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &ParseError{Path: name, Line: pe.Line, Err: pe.Err}
			}
			return nil, fmt.Errorf("dataset: %s: %w", name, err)
		}

		line, _ := reader.FieldPos(0)
		if len(record) > len(header) {
			return nil, &ParseError{
				Path: name,
				Line: line,
				Err:  fmt.Errorf("%w: expected %d, saw %d", ErrTooManyFields, len(header), len(record)),
			}
		}

		for i, col := range header {
			field := ""
			if i < len(record) {
				field = record[i]
			}
			if !isNumeric[i] {
				t.text[col] = append(t.text[col], field)
				continue
			}
			v, err := parseField(field)
			if err != nil {
				return nil, &ParseError{Path: name, Line: line, Column: col, Value: field, Err: err}
			}
			t.numeric[col] = append(t.numeric[col], v)
		}
		t.rows++
	}

	return t, nil
}

// dedupe renames repeated column names to name.1, name.2, and so on, so
// every column keeps its own series.
func dedupe(header []string) []string {
	seen := make(map[string]int, len(header))
	for i, col := range header {
		n, dup := seen[col]
		seen[col] = n + 1
		if !dup {
			continue
		}
		for {
			candidate := col + "." + strconv.Itoa(n)
			if _, taken := seen[candidate]; !taken {
				header[i] = candidate
				seen[candidate] = 1
				break
			}
			n++
		}
	}
	return header
}

// parseField converts a numeric field. Empty fields are missing values.
func parseField(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var ne *strconv.NumError
		if errors.As(err, &ne) {
			return 0, ne.Err
		}
		return 0, err
	}
	return v, nil
}
