package core

// converter.go turns CSV text into ordered records.
//
// Input is decoded as UTF-8 (a leading BOM is dropped, invalid bytes become
// U+FFFD) and parsed with standard quoting rules. The first row that is not
// blank becomes the header; every later non-blank row becomes a Record.

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ContextCheckInterval is how often (in rows) to check for cancellation.
var ContextCheckInterval = 100

// DefaultMaxFileSize is the file size cap used when none is configured (100MB).
const DefaultMaxFileSize int64 = 100 * 1024 * 1024

// Converter reads CSV files and converts them to RecordSequences.
// It holds no mutable state and is safe for concurrent use.
type Converter struct {
	maxFileSize int64 // 0 disables the cap
}

// NewConverter creates a Converter that refuses files larger than maxFileSize
// bytes. A maxFileSize of 0 disables the check.
func NewConverter(maxFileSize int64) *Converter {
	if maxFileSize < 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Converter{maxFileSize: maxFileSize}
}

// ConvertFile reads the file at path and converts it.
//
// Errors wrap ErrFileRead when the file is missing, unreadable, not a
// regular file or too large, and ErrParse when its content is not valid CSV.
func (c *Converter) ConvertFile(ctx context.Context, path string) (RecordSequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fileReadError(path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fileReadError(path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, newError(ErrFileRead, "open", path, "Not a regular file.", nil)
	}
	if c.maxFileSize > 0 && info.Size() > c.maxFileSize {
		return nil, newError(ErrFileRead, "open", path,
			fmt.Sprintf("File too large (%d bytes, limit %d).", info.Size(), c.maxFileSize), nil)
	}

	records, err := c.convert(ctx, f, path)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// Convert parses CSV text from r. It is ConvertFile without the file handling.
func (c *Converter) Convert(ctx context.Context, r io.Reader) (RecordSequence, error) {
	return c.convert(ctx, r, "")
}

func (c *Converter) convert(ctx context.Context, r io.Reader, path string) (RecordSequence, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var header []string
	records := make(RecordSequence, 0)

	for rows := 0; ; rows++ {
		if rows%ContextCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("convert %s: %w", path, err)
			}
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, parseError(path, pe.Line, pe.Column, pe.Err)
			}
			return nil, fileReadError(path, err)
		}

		cells := trimCells(row)
		if isBlankRow(cells) {
			continue
		}

		if header == nil {
			header = cells
			continue
		}
		records = append(records, NewRecord(header, cells))
	}

	return records, nil
}

// trimCells trims surrounding whitespace from every cell in place.
func trimCells(row []string) []string {
	for i, cell := range row {
		row[i] = strings.TrimSpace(cell)
	}
	return row
}

// isBlankRow reports whether the line held nothing but whitespace. A row of
// bare delimiters such as "," has several (empty) cells and is kept.
func isBlankRow(cells []string) bool {
	return len(cells) == 1 && cells[0] == ""
}

func fileReadError(path string, err error) *Error {
	msg := "Unable to read file."
	switch {
	case errors.Is(err, fs.ErrNotExist):
		msg = "File not found."
	case errors.Is(err, fs.ErrPermission):
		msg = "Permission denied."
	}
	return newError(ErrFileRead, "read", path, msg, err)
}
