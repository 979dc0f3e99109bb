package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/supercuts/supercuts/internal/models"
)

// LoadCSV reads an event file whose first row names the columns. Only the
// requested fields are parsed; with no fields every column is loaded.
// Files ending in .gz or .zst are decompressed on the fly.
func LoadCSV(path string, fields ...string) (*Columns, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}
	defer f.Close() //nolint:errcheck

	r, closeFn, err := decompress(path, f)
	if err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}
	defer closeFn()

	return readCSV(path, r, fields)
}

// LoadAll reads several event files with the same columns and concatenates
// them in the given order.
func LoadAll(paths []string, fields ...string) (*Columns, error) {
	if len(paths) == 0 {
		return nil, &models.DataSourceError{Err: errors.New("no input files")}
	}

	merged := make(map[string][]float64)
	for _, p := range paths {
		c, err := LoadCSV(p, fields...)
		if err != nil {
			return nil, err
		}
		for _, name := range c.Fields() {
			merged[name] = append(merged[name], c.cols[name]...)
		}
	}
	return NewColumns(strings.Join(paths, ","), merged)
}

func decompress(path string, f *os.File) (io.Reader, func(), error) {
	switch {
	case strings.HasSuffix(path, ".gz"):
		zr, err := gzip.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("gzip: %w", err)
		}
		return zr, func() { _ = zr.Close() }, nil
	case strings.HasSuffix(path, ".zst"):
		zr, err := zstd.NewReader(f)
		if err != nil {
			return nil, nil, fmt.Errorf("zstd: %w", err)
		}
		return zr, zr.Close, nil
	default:
		return f, func() {}, nil
	}
}

func readCSV(path string, r io.Reader, fields []string) (*Columns, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &models.DataSourceError{Source: path, Err: errors.New("empty file (no header row)")}
	}
	if err != nil {
		return nil, &models.DataSourceError{Source: path, Err: err}
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(h)] = i
	}

	if len(fields) == 0 {
		fields = make([]string, 0, len(headers))
		for _, h := range headers {
			fields = append(fields, strings.TrimSpace(h))
		}
	}
	fields = unique(fields)
	for _, field := range fields {
		if _, ok := index[field]; !ok {
			return nil, &models.DataSourceError{Source: path, Field: field, Err: ErrNoColumn}
		}
	}

	cols := make(map[string][]float64, len(fields))
	for _, field := range fields {
		cols[field] = []float64{}
	}

	for row := 2; ; row++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &models.DataSourceError{Source: path, Err: err}
		}
		for _, field := range fields {
			raw := strings.TrimSpace(record[index[field]])
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &models.DataSourceError{
					Source: path,
					Field:  field,
					Err:    fmt.Errorf("row %d: %q is not a number", row, raw),
				}
			}
			cols[field] = append(cols[field], v)
		}
	}

	return NewColumns(path, cols)
}

func unique(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := fields[:0:0]
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}
