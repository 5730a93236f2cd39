package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/metrics"
)

// State is the lifecycle position of an upload session.
type State string

const (
	StateIdle         State = "idle"
	StateParsing      State = "parsing"
	StateValidating   State = "validating"
	StatePreviewReady State = "preview_ready"
	StateCommitting   State = "committing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

// validTransitions maps a state to the states reachable from it. Parsing
// is reachable from every state except Committing: selecting a new file
// replaces the previous one.
var validTransitions = map[State]map[State]bool{
	StateIdle:         {StateParsing: true},
	StateParsing:      {StateValidating: true, StateFailed: true, StateIdle: true, StateParsing: true},
	StateValidating:   {StatePreviewReady: true, StateFailed: true, StateIdle: true, StateParsing: true},
	StatePreviewReady: {StateCommitting: true, StateParsing: true, StateIdle: true},
	StateCommitting:   {StateDone: true, StateFailed: true},
	StateDone:         {StateParsing: true, StateIdle: true},
	StateFailed:       {StateParsing: true, StateIdle: true},
}

// parseFile runs the parse stage of Load. Tests replace it to hold a load
// in flight.
var parseFile = (*Pipeline).Parse

// Transition records one state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// Status is a point-in-time view of a session.
type Status struct {
	ID        uuid.UUID `json:"id"`
	State     State     `json:"state"`
	File      *FileInfo `json:"file,omitempty"`
	Outcome   *Outcome  `json:"outcome,omitempty"`
	Error     string    `json:"error,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Session drives one user's upload through parse, validate, preview and
// commit. Its methods are safe for concurrent use; the store writes of a
// commit run without holding the lock so Status stays readable.
type Session struct {
	mu      sync.RWMutex
	id      uuid.UUID
	state   State
	gen     uint64
	preview *Preview
	file    *FileInfo
	outcome *Outcome
	lastErr error
	history []Transition
	updated time.Time

	pipeline  *Pipeline
	committer *Committer
}

// NewSession returns an idle session.
func NewSession(p *Pipeline, c *Committer) *Session {
	return &Session{
		id:        uuid.New(),
		state:     StateIdle,
		updated:   time.Now(),
		pipeline:  p,
		committer: c,
	}
}

// ID identifies the session.
func (s *Session) ID() uuid.UUID { return s.id }

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// History returns the transitions so far.
func (s *Session) History() []Transition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Transition(nil), s.history...)
}

// moveLocked applies a transition. Callers hold s.mu.
func (s *Session) moveLocked(to State) error {
	if !validTransitions[s.state][to] {
		return &TransitionError{From: s.state, To: to}
	}
	now := time.Now()
	s.history = append(s.history, Transition{From: s.state, To: to, At: now})
	s.state = to
	s.updated = now
	return nil
}

func (s *Session) resetLocked() {
	s.gen++
	s.preview = nil
	s.file = nil
	s.outcome = nil
	s.lastErr = nil
}

func (s *Session) job() string {
	if s.pipeline != nil && s.pipeline.Job != "" {
		return s.pipeline.Job
	}
	return "propimport"
}

// Load replaces whatever the session held with f, then parses and
// validates it. It fails with ErrSessionBusy while a commit is running.
// A file-level error leaves the session Failed with no rows retained.
func (s *Session) Load(ctx context.Context, f UploadedFile) (*Preview, error) {
	s.mu.Lock()
	if s.state == StateCommitting {
		s.mu.Unlock()
		return nil, ErrSessionBusy
	}
	s.resetLocked()
	gen := s.gen
	if err := s.moveLocked(StateParsing); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	parsed, err := parseFile(s.pipeline, ctx, f)
	if err = s.advance(gen, StateValidating, err, nil); err != nil {
		return nil, err
	}

	pv, err := s.pipeline.Validate(ctx, parsed)
	err = s.advance(gen, StatePreviewReady, err, func() {
		s.preview = pv
		s.file = &pv.File
	})
	if err != nil {
		return nil, err
	}
	metrics.RecordUpload(s.job(), "previewed")
	return pv, nil
}

// advance moves to next when stageErr is nil and the load is still
// current, or to Failed otherwise. onSuccess runs under the lock before
// the transition.
func (s *Session) advance(gen uint64, next State, stageErr error, onSuccess func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gen != gen {
		return ErrSuperseded
	}
	if stageErr != nil {
		s.preview = nil
		s.file = nil
		s.lastErr = stageErr
		_ = s.moveLocked(StateFailed)
		metrics.RecordUpload(s.job(), "rejected")
		return stageErr
	}
	if onSuccess != nil {
		onSuccess()
	}
	return s.moveLocked(next)
}

// Preview returns the validated rows while the session awaits
// confirmation.
func (s *Session) Preview() (*Preview, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StatePreviewReady || s.preview == nil {
		return nil, false
	}
	return s.preview, true
}

// Confirm commits the previewed rows under ownerID. It is only valid from
// PreviewReady. A missing owner is rejected before any state change so the
// user can sign in and confirm again.
func (s *Session) Confirm(ctx context.Context, ownerID uuid.UUID) (Outcome, error) {
	s.mu.Lock()
	if s.state != StatePreviewReady {
		err := &TransitionError{From: s.state, To: StateCommitting}
		s.mu.Unlock()
		return Outcome{}, err
	}
	if s.preview == nil {
		s.mu.Unlock()
		return Outcome{}, ErrNoPreview
	}
	if ownerID == uuid.Nil {
		s.mu.Unlock()
		return Outcome{}, &AuthenticationRequiredError{}
	}
	rows := s.preview.Rows
	if err := s.moveLocked(StateCommitting); err != nil {
		s.mu.Unlock()
		return Outcome{}, err
	}
	s.mu.Unlock()

	out, err := s.committer.Commit(ctx, rows, ownerID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.outcome = &out
	s.lastErr = err
	s.preview = nil
	if err != nil {
		_ = s.moveLocked(StateFailed)
		metrics.RecordUpload(s.job(), "commit_failed")
	} else {
		_ = s.moveLocked(StateDone)
		metrics.RecordUpload(s.job(), "committed")
	}
	return out, err
}

// Cancel discards the file and any rows and returns to Idle. It fails with
// ErrSessionBusy while a commit is running.
func (s *Session) Cancel() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCommitting {
		return ErrSessionBusy
	}
	s.resetLocked()
	if s.state == StateIdle {
		return nil
	}
	if err := s.moveLocked(StateIdle); err != nil {
		return err
	}
	metrics.RecordUpload(s.job(), "cancelled")
	return nil
}

// Status reports the session's current view.
func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := Status{ID: s.id, State: s.state, UpdatedAt: s.updated}
	if s.file != nil {
		fi := *s.file
		st.File = &fi
	}
	if s.outcome != nil {
		o := *s.outcome
		st.Outcome = &o
	}
	if s.lastErr != nil {
		st.Error = s.lastErr.Error()
	}
	return st
}

// Err returns the error that moved the session to Failed, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
