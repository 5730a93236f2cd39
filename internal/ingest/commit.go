package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/metrics"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/storage"
)

// CommitPolicy decides what happens after a row fails to persist.
type CommitPolicy string

const (
	// StopOnError stops at the first failed row; the rest are skipped.
	StopOnError CommitPolicy = "stop"
	// ContinueOnError attempts every row and reports each result.
	ContinueOnError CommitPolicy = "continue"
)

// ParseCommitPolicy accepts "stop" or "continue"; empty means stop.
func ParseCommitPolicy(s string) (CommitPolicy, error) {
	switch CommitPolicy(s) {
	case "", StopOnError:
		return StopOnError, nil
	case ContinueOnError:
		return ContinueOnError, nil
	}
	return "", fmt.Errorf("unknown commit policy %q (want stop or continue)", s)
}

// RowStatus is the commit result of one row.
type RowStatus string

const (
	StatusCommitted RowStatus = "committed"
	StatusFailed    RowStatus = "failed"
	StatusSkipped   RowStatus = "skipped"
)

// RowResult reports what happened to one row.
type RowResult struct {
	Row    int       `json:"row"`
	Status RowStatus `json:"status"`
	Err    error     `json:"-"`
}

// Outcome summarises a commit.
type Outcome struct {
	UploadID  uuid.UUID   `json:"upload_id"`
	OwnerID   uuid.UUID   `json:"owner_id"`
	Total     int         `json:"total"`
	Committed int         `json:"committed"`
	FirstErr  error       `json:"-"`
	Results   []RowResult `json:"results"`
}

// Failed returns the row numbers that were not committed, for a retry.
func (o Outcome) Failed() []int {
	var out []int
	for _, r := range o.Results {
		if r.Status != StatusCommitted {
			out = append(out, r.Row)
		}
	}
	return out
}

// RecordStore is the write side of storage.Store used by commit.
type RecordStore interface {
	InsertProperty(ctx context.Context, rec storage.PropertyRecord) error
}

// Committer persists validated rows one at a time, each tagged with the
// owner. Earlier writes are never rolled back.
type Committer struct {
	Store  RecordStore
	Policy CommitPolicy
	Log    logrus.FieldLogger
	Job    string

	now   func() time.Time
	newID func() uuid.UUID
}

// NewCommitter returns a Committer with the StopOnError policy.
func NewCommitter(store RecordStore, log logrus.FieldLogger) *Committer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Committer{Store: store, Policy: StopOnError, Log: log, Job: "propimport"}
}

func (c *Committer) clock() time.Time {
	if c.now != nil {
		return c.now()
	}
	return time.Now().UTC()
}

func (c *Committer) id() uuid.UUID {
	if c.newID != nil {
		return c.newID()
	}
	return uuid.New()
}

// Commit writes rows in order under ownerID. With StopOnError the first
// failure is returned as a *PersistenceError and later rows are marked
// skipped. With ContinueOnError every row is attempted and the first
// failure is still returned. A cancelled ctx skips whatever is left.
func (c *Committer) Commit(ctx context.Context, rows []PropertyRow, ownerID uuid.UUID) (Outcome, error) {
	if ownerID == uuid.Nil {
		return Outcome{}, &AuthenticationRequiredError{}
	}

	start := time.Now()
	out := Outcome{
		UploadID: c.id(),
		OwnerID:  ownerID,
		Total:    len(rows),
		Results:  make([]RowResult, len(rows)),
	}
	log := c.Log.WithFields(logrus.Fields{"stage": "commit", "owner": ownerID, "upload": out.UploadID, "rows": len(rows)})

	stopped := false
	for i, row := range rows {
		out.Results[i].Row = row.Row
		if stopped {
			out.Results[i].Status = StatusSkipped
			continue
		}
		if err := ctx.Err(); err != nil {
			out.Results[i].Status = StatusSkipped
			if out.FirstErr == nil {
				out.FirstErr = err
			}
			stopped = true
			continue
		}

		err := c.Store.InsertProperty(ctx, c.record(out.UploadID, ownerID, row))
		if err != nil {
			perr := &PersistenceError{Row: row.Row, Err: err}
			out.Results[i].Status = StatusFailed
			out.Results[i].Err = perr
			if out.FirstErr == nil {
				out.FirstErr = perr
			}
			log.WithField("row", row.Row).WithError(err).Error("row not saved")
			if c.Policy != ContinueOnError {
				stopped = true
			}
			continue
		}
		out.Results[i].Status = StatusCommitted
		out.Committed++
	}

	failed := 0
	for _, r := range out.Results {
		if r.Status == StatusFailed {
			failed++
		}
	}
	skipped := out.Total - out.Committed - failed
	metrics.RecordRow(c.Job, "committed", int64(out.Committed))
	metrics.RecordRow(c.Job, "commit_failed", int64(failed))
	metrics.RecordRow(c.Job, "skipped", int64(skipped))
	metrics.RecordStep(c.Job, "commit", out.FirstErr, time.Since(start))

	log.WithFields(logrus.Fields{"committed": out.Committed, "failed": failed, "skipped": skipped}).Info("commit finished")
	return out, out.FirstErr
}

func (c *Committer) record(uploadID, ownerID uuid.UUID, row PropertyRow) storage.PropertyRecord {
	return storage.PropertyRecord{
		ID:                   c.id(),
		UploadID:             uploadID,
		OwnerID:              ownerID,
		Address:              row.Address,
		Rent:                 row.Rent,
		PropertyType:         row.PropertyType,
		AvailableDate:        row.AvailableDate,
		PreferredNationality: row.PreferredNationality,
		PreferredProfession:  row.PreferredProfession,
		PreferredRace:        row.PreferredRace,
		PetsAllowed:          row.PetsAllowed,
		Extra:                row.Extra,
		SourceRow:            row.Row,
		CreatedAt:            c.clock(),
	}
}
