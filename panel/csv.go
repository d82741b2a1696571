package panel

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
)

// CSVOptions holds options for CSV loading.
type CSVOptions struct {
	IDColumn  string   // Key column name (default: "id")
	Delimiter rune     // Field delimiter (default: ',')
	SkipRows  int      // Number of rows to skip before the header
	Missing   []string // Tokens read as NaN (default: "", "NA", "NaN", "null", ".")
}

// DefaultCSVOptions returns default options for CSV loading.
func DefaultCSVOptions() *CSVOptions {
	return &CSVOptions{
		IDColumn:  "id",
		Delimiter: ',',
		Missing:   []string{"", "NA", "NaN", "null", "."},
	}
}

// Open opens a data source. Sources starting with http:// or https:// are
// fetched with a GET request; anything else is treated as a file path.
func Open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return os.Open(source)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", source, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", source, resp.Status)
	}
	return resp.Body, nil
}

// Load reads a table from a file path or URL.
func Load(ctx context.Context, source string, opts *CSVOptions) (*Table, error) {
	rc, err := Open(ctx, source)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return LoadCSVFromReader(rc, opts)
}

// LoadCSV loads a table from a CSV file.
func LoadCSV(filename string, opts *CSVOptions) (*Table, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return LoadCSVFromReader(file, opts)
}

// LoadCSVFromReader loads a table from an io.Reader.
//
// The header row is required. Every column other than the id column must be
// numeric; missing tokens become NaN.
func LoadCSVFromReader(r io.Reader, opts *CSVOptions) (*Table, error) {
	if opts == nil {
		opts = DefaultCSVOptions()
	}
	idColumn := opts.IDColumn
	if idColumn == "" {
		idColumn = "id"
	}
	missing := opts.Missing
	if missing == nil {
		missing = DefaultCSVOptions().Missing
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	for i := 0; i < opts.SkipRows; i++ {
		if _, err := reader.Read(); err != nil {
			return nil, err
		}
	}

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv has no header row")
		}
		return nil, err
	}

	idIdx := -1
	var columns []string
	var colIdx []int
	for i, h := range header {
		h = strings.TrimSpace(strings.Trim(h, "\""))
		if h == idColumn {
			idIdx = i
			continue
		}
		columns = append(columns, h)
		colIdx = append(colIdx, i)
	}
	if idIdx < 0 {
		return nil, fmt.Errorf("%w: id column %q not in header", ErrUnknownColumn, idColumn)
	}

	table := New(idColumn, columns...)
	line := 1 + opts.SkipRows
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		row := make([]float64, len(colIdx))
		for k, j := range colIdx {
			cell := strings.TrimSpace(strings.Trim(record[j], "\""))
			if isMissing(cell, missing) {
				row[k] = math.NaN()
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, columns[k], err)
			}
			row[k] = v
		}
		table.IDs = append(table.IDs, strings.TrimSpace(strings.Trim(record[idIdx], "\"")))
		table.Rows = append(table.Rows, row)
	}

	if table.Len() == 0 {
		return nil, errors.New("no data rows found in CSV")
	}

	return table, nil
}

func isMissing(cell string, tokens []string) bool {
	for _, tok := range tokens {
		if cell == tok {
			return true
		}
	}
	return false
}

// SaveCSV saves a table to a CSV file.
func SaveCSV(table *Table, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	if err := WriteCSV(writer, table); err != nil {
		return err
	}
	return writer.Flush()
}

// WriteCSV writes a table with a header row. NaN cells are written as NA.
func WriteCSV(w io.Writer, table *Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, 0, len(table.Columns)+1)
	header = append(header, table.IDColumn)
	header = append(header, table.Columns...)
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(header))
	for i, row := range table.Rows {
		record[0] = table.IDs[i]
		for j, v := range row {
			record[j+1] = FormatFloat(v)
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatFloat renders a cell the way WriteCSV does.
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return "NA"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
