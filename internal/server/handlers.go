package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/datasource/file"
	"github.com/markkevins109/prop-panda-webscape-05-sub000/internal/ingest"
)

// OwnerHeader carries the signed-in user's ID, set by the auth proxy in
// front of this service.
const OwnerHeader = "X-User-ID"

// multipartSlack covers multipart framing around the file part.
const multipartSlack = 64 << 10

type rowResult struct {
	Row    int              `json:"row"`
	Status ingest.RowStatus `json:"status"`
	Error  string           `json:"error,omitempty"`
}

type outcomeResponse struct {
	UploadID   uuid.UUID   `json:"upload_id"`
	OwnerID    uuid.UUID   `json:"owner_id"`
	Total      int         `json:"total"`
	Committed  int         `json:"committed"`
	FailedRows []int       `json:"failed_rows,omitempty"`
	Results    []rowResult `json:"results"`
	Error      string      `json:"error,omitempty"`
}

func newOutcomeResponse(o ingest.Outcome) *outcomeResponse {
	out := &outcomeResponse{
		UploadID:   o.UploadID,
		OwnerID:    o.OwnerID,
		Total:      o.Total,
		Committed:  o.Committed,
		FailedRows: o.Failed(),
		Results:    make([]rowResult, len(o.Results)),
	}
	for i, r := range o.Results {
		out.Results[i] = rowResult{Row: r.Row, Status: r.Status}
		if r.Err != nil {
			out.Results[i].Error = r.Err.Error()
		}
	}
	if o.FirstErr != nil {
		out.Error = o.FirstErr.Error()
	}
	return out
}

type uploadResponse struct {
	SessionID uuid.UUID            `json:"session_id"`
	State     ingest.State         `json:"state"`
	File      *ingest.FileInfo     `json:"file,omitempty"`
	Rows      []ingest.PropertyRow `json:"rows,omitempty"`
	Outcome   *outcomeResponse     `json:"outcome,omitempty"`
	Error     string               `json:"error,omitempty"`
}

func statusResponse(sess *ingest.Session) uploadResponse {
	st := sess.Status()
	resp := uploadResponse{SessionID: st.ID, State: st.State, File: st.File, Error: st.Error}
	if pv, ok := sess.Preview(); ok {
		resp.Rows = pv.Rows
	}
	if st.Outcome != nil {
		resp.Outcome = newOutcomeResponse(*st.Outcome)
	}
	return resp
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "sessions": s.sessions.len()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	upload, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err, "")
		return
	}
	sess := s.sessions.create()
	s.load(w, r, sess, upload, http.StatusCreated)
}

func (s *Server) handleReplace(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	upload, err := s.readUpload(w, r)
	if err != nil {
		writeError(w, err, sess.ID().String())
		return
	}
	s.load(w, r, sess, upload, http.StatusOK)
}

func (s *Server) load(w http.ResponseWriter, r *http.Request, sess *ingest.Session, upload ingest.UploadedFile, okStatus int) {
	log := s.log.WithField("session", sess.ID())
	if _, err := sess.Load(r.Context(), upload); err != nil {
		log.WithError(err).WithField("file", upload.Name).Warn("upload rejected")
		writeError(w, err, sess.ID().String())
		return
	}
	writeJSON(w, okStatus, statusResponse(sess))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, statusResponse(sess))
}

func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	owner := ownerFrom(r)
	out, err := sess.Confirm(r.Context(), owner)
	if err != nil {
		var persist *ingest.PersistenceError
		if errors.As(err, &persist) {
			writeJSON(w, http.StatusBadGateway, uploadResponse{
				SessionID: sess.ID(),
				State:     sess.State(),
				Outcome:   newOutcomeResponse(out),
				Error:     ingest.Describe(err),
			})
			return
		}
		writeError(w, err, sess.ID().String())
		return
	}
	writeJSON(w, http.StatusOK, uploadResponse{
		SessionID: sess.ID(),
		State:     sess.State(),
		Outcome:   newOutcomeResponse(out),
	})
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	if err := sess.Cancel(); err != nil {
		writeError(w, err, sess.ID().String())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// session resolves {id} or writes a 404.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*ingest.Session, bool) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown upload %q", raw)})
		return nil, false
	}
	sess, ok := s.sessions.get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: fmt.Sprintf("unknown upload %q", raw)})
		return nil, false
	}
	return sess, true
}

// readUpload pulls the "file" part out of a multipart body, bounded by the
// configured size cap.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (ingest.UploadedFile, error) {
	max := s.cfg.MaxUploadBytes
	r.Body = http.MaxBytesReader(w, r.Body, max+multipartSlack)
	if err := r.ParseMultipartForm(max); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return ingest.UploadedFile{}, &file.FileTooLargeError{Name: "upload", Size: -1, Max: max}
		}
		return ingest.UploadedFile{}, &file.UnsupportedFileError{Name: "upload", Reason: "expected a multipart form with a file field"}
	}
	defer r.MultipartForm.RemoveAll()

	f, fh, err := r.FormFile("file")
	if err != nil {
		return ingest.UploadedFile{}, &file.UnsupportedFileError{Name: "upload", Reason: "no file selected"}
	}
	defer f.Close()

	return file.ReadUploadFrom(r.Context(), f, fh.Filename, fh.Header.Get("Content-Type"), max)
}

// ownerFrom returns uuid.Nil when the header is absent or malformed.
func ownerFrom(r *http.Request) uuid.UUID {
	v := strings.TrimSpace(r.Header.Get(OwnerHeader))
	if v == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil
	}
	return id
}
