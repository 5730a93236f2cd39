// Package csv turns uploaded CSV text into a header record plus the ordered,
// non-blank data records that follow it. Tokenising is quote-aware (embedded
// commas, doubled quotes and newlines inside quoted fields are handled by
// encoding/csv); byte-order marks and UTF-16 input are decoded before the
// reader sees the bytes.
package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrNoHeader is returned when the input holds no non-blank record.
var ErrNoHeader = errors.New("csv: no non-empty header record")

// SyntaxError reports a record encoding/csv could not tokenise.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("csv: line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Options configures the parser. The zero value is usable: comma delimiter,
// no trimming, strict quotes. Use DefaultOptions for upload parsing.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing white space from each field value.
	TrimSpace bool

	// LazyQuotes lets a quote appear in an unquoted field and a non-doubled
	// quote appear in a quoted field (csv.Reader.LazyQuotes).
	LazyQuotes bool
}

// DefaultOptions are the settings used for property uploads.
func DefaultOptions() Options {
	return Options{Comma: ',', TrimSpace: true, LazyQuotes: true}
}

// Line is one non-blank data record.
type Line struct {
	// Number is the 1-based physical line the record starts on.
	Number int
	Fields []string
}

// Document is a parsed CSV file.
type Document struct {
	Header     []string
	HeaderLine int
	Lines      []Line
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// Parse reads r to the end. The first non-blank record becomes the header;
// every later non-blank record becomes a Line. Blank records (every field
// empty after trimming) are dropped wherever they occur.
func (p *Parser) Parse(r io.Reader) (*Document, error) {
	cr := csv.NewReader(decodeText(r))
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = p.opt.LazyQuotes
	// Width is checked against the header by the caller, not by the reader.
	cr.FieldsPerRecord = -1

	doc := &Document{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &SyntaxError{Line: pe.StartLine, Err: pe.Err}
			}
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		if p.opt.TrimSpace {
			for i := range rec {
				rec[i] = strings.TrimSpace(rec[i])
			}
		}
		if isBlank(rec) {
			continue
		}

		if doc.Header == nil {
			doc.Header = normalizeHeaders(rec)
			doc.HeaderLine = line
			continue
		}
		doc.Lines = append(doc.Lines, Line{Number: line, Fields: rec})
	}

	if doc.Header == nil {
		return nil, ErrNoHeader
	}
	return doc, nil
}

// ParseString is a convenience wrapper for in-memory content.
func (p *Parser) ParseString(s string) (*Document, error) {
	return p.Parse(strings.NewReader(s))
}

// decodeText strips a UTF-8 BOM and transcodes BOM-marked UTF-16 to UTF-8.
// Input without a BOM is passed through as UTF-8.
func decodeText(r io.Reader) io.Reader {
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(r, dec)
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// normalizeHeaders trims header cells and applies NFC so visually identical
// names compare equal. Casing is kept for display; matching is done
// case-insensitively downstream. A leading BOM never reaches here, decodeText
// consumes it.
func normalizeHeaders(h []string) []string {
	res := make([]string, len(h))
	for i, col := range h {
		res[i] = norm.NFC.String(strings.TrimSpace(col))
	}
	return res
}
