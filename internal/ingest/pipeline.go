package ingest

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/metrics"
	pcsv "github.com/markkevins109/prop-panda-webscape-05-sub000/internal/parser/csv"
)

// Preview is the validated content of one upload, held until the user
// confirms or discards it.
type Preview struct {
	File    FileInfo      `json:"file"`
	Headers HeaderSet     `json:"-"`
	Rows    []PropertyRow `json:"rows"`

	Fingerprint uint64 `json:"-"`
}

// Parsed is the output of the parse stage.
type Parsed struct {
	File    UploadedFile
	Headers HeaderSet
	Raws    []RawRow
}

// Pipeline runs the parse and validate stages for one file at a time.
type Pipeline struct {
	Parser *pcsv.Parser
	Log    logrus.FieldLogger
	// Job labels emitted metrics.
	Job string
}

// NewPipeline returns a Pipeline with the default CSV options.
func NewPipeline(log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Pipeline{
		Parser: pcsv.NewParser(pcsv.DefaultOptions()),
		Log:    log,
		Job:    "propimport",
	}
}

// Parse tokenises f, validates its header and coerces every data record.
func (p *Pipeline) Parse(ctx context.Context, f UploadedFile) (Parsed, error) {
	start := time.Now()
	parsed, err := p.parse(ctx, f)
	metrics.RecordStep(p.Job, "parse", err, time.Since(start))
	if err != nil {
		return Parsed{}, err
	}
	metrics.RecordRow(p.Job, "parsed", int64(len(parsed.Raws)))
	return parsed, nil
}

func (p *Pipeline) parse(ctx context.Context, f UploadedFile) (Parsed, error) {
	if err := ctx.Err(); err != nil {
		return Parsed{}, err
	}
	log := p.Log.WithFields(logrus.Fields{"stage": "parse", "file": f.Name, "fingerprint": f.FingerprintHex()})

	doc, err := p.Parser.Parse(bytes.NewReader(f.Content))
	if err != nil {
		if errors.Is(err, pcsv.ErrNoHeader) {
			return Parsed{}, &EmptyFileError{Name: f.Name}
		}
		var se *pcsv.SyntaxError
		if errors.As(err, &se) {
			return Parsed{}, &RowParseError{Line: se.Line, Reason: se.Err.Error()}
		}
		return Parsed{}, err
	}

	headers, err := ValidateHeaders(doc.Header)
	if err != nil {
		log.WithError(err).Warn("header rejected")
		return Parsed{}, err
	}
	if len(doc.Lines) == 0 {
		return Parsed{}, &EmptyFileError{Name: f.Name, HeaderOnly: true}
	}

	raws, err := ParseRows(doc.Lines, headers)
	if err != nil {
		log.WithError(err).Warn("row rejected")
		return Parsed{}, err
	}
	for _, r := range raws {
		if r.Excess > 0 {
			log.WithFields(logrus.Fields{"row": r.Row, "line": r.Line, "excess": r.Excess}).
				Warn("extra trailing values ignored")
		}
	}

	log.WithFields(logrus.Fields{"rows": len(raws), "columns": headers.Len()}).Debug("parsed")
	return Parsed{File: f, Headers: headers, Raws: raws}, nil
}

// Validate turns parsed rows into a Preview, all or nothing.
func (p *Pipeline) Validate(ctx context.Context, parsed Parsed) (*Preview, error) {
	start := time.Now()
	pv, err := p.validate(ctx, parsed)
	metrics.RecordStep(p.Job, "validate", err, time.Since(start))
	if err != nil {
		metrics.RecordRow(p.Job, "rejected", int64(len(parsed.Raws)))
		return nil, err
	}
	return pv, nil
}

func (p *Pipeline) validate(ctx context.Context, parsed Parsed) (*Preview, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := ValidateRows(parsed.Raws)
	if err != nil {
		p.Log.WithFields(logrus.Fields{"stage": "validate", "file": parsed.File.Name}).
			WithError(err).Warn("validation failed")
		return nil, err
	}
	return &Preview{
		File: FileInfo{
			Name:    parsed.File.Name,
			Size:    parsed.File.Size,
			Rows:    len(rows),
			Columns: parsed.Headers.Names(),
		},
		Headers:     parsed.Headers,
		Rows:        rows,
		Fingerprint: parsed.File.Fingerprint,
	}, nil
}

// Prepare runs Parse then Validate.
func (p *Pipeline) Prepare(ctx context.Context, f UploadedFile) (*Preview, error) {
	parsed, err := p.Parse(ctx, f)
	if err != nil {
		return nil, err
	}
	return p.Validate(ctx, parsed)
}
