package adminsrv

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/AdguardTeam/golibs/errors"
	"github.com/AdguardTeam/golibs/log"
	"github.com/ameshkov/nodeadmin/internal/editor"
	"github.com/ameshkov/nodeadmin/internal/node"
	"github.com/ameshkov/nodeadmin/internal/store"
	"github.com/getsentry/sentry-go"
)

// maxBodySize is the maximum size of a request body.
const maxBodySize = 1 << 20

// routes returns the handler with all admin API routes.
func (s *Server) routes() (h http.Handler) {
	mux := http.NewServeMux()

	s.handle(mux, "GET /catalog", s.handleCatalog)
	s.handle(mux, "GET /defaults/{kind}", s.handleDefaults)
	s.handle(mux, "POST /servers/validate", s.handleValidate)
	s.handle(mux, "POST /servers", s.handleCreate)
	s.handle(mux, "GET /servers", s.handleList)
	s.handle(mux, "GET /servers/{id}", s.handleGet)
	s.handle(mux, "PUT /servers/{id}", s.handleUpdate)
	s.handle(mux, "DELETE /servers/{id}", s.handleDelete)
	s.handle(mux, "GET /health-check", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "OK")
	})

	return mux
}

// catalogValue is a legal value of an enumerated setting.
type catalogValue struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// catalogKind describes one protocol kind.
type catalogKind struct {
	Fields map[node.Field][]catalogValue `json:"fields"`
	Kind   node.Kind                     `json:"kind"`
	Label  string                        `json:"label"`
}

// handleCatalog responds with the protocol catalog.
func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	var kinds []catalogKind
	for _, k := range node.Kinds() {
		ck := catalogKind{
			Kind:   k,
			Label:  node.Label(string(k)),
			Fields: map[node.Field][]catalogValue{},
		}

		for _, f := range node.Fields() {
			for _, v := range node.LegalValues(k, f) {
				ck.Fields[f] = append(ck.Fields[f], catalogValue{Value: v, Label: node.Label(v)})
			}
		}

		kinds = append(kinds, ck)
	}

	writeJSON(w, http.StatusOK, map[string]any{"kinds": kinds})
}

// handleDefaults responds with the default slot of a protocol kind.
func (s *Server) handleDefaults(w http.ResponseWriter, r *http.Request) {
	k := node.Kind(r.PathValue("kind"))
	c := node.DefaultFor(k)
	if c == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("%w: %q", editor.ErrUnknownKind, k))

		return
	}

	writeJSON(w, http.StatusOK, &node.Slot{Config: c})
}

// handleValidate responds with the field errors of the draft in the body.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.openDraft(w, r)
	if !ok {
		return
	}
	defer sess.Abandon()

	writeJSON(w, http.StatusOK, map[string]any{"errors": sess.Validate()})
}

// handleCreate commits the draft in the body as a new server.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	s.commit(w, r, 0, http.StatusCreated)
}

// handleUpdate commits the draft in the body over an existing server.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	s.commit(w, r, id, http.StatusOK)
}

// commit decodes the draft, commits it with the given server id, and writes
// the saved id with code.
func (s *Server) commit(w http.ResponseWriter, r *http.Request, id int64, code int) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return
	}

	d.ID = id
	sess, err := editor.FromDraft(s.store, d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	savedID, err := sess.Commit(r.Context())
	if err != nil {
		s.writeCommitError(w, r, err)

		return
	}

	log.Info("adminsrv: committed server %d", savedID)

	writeJSON(w, code, map[string]int64{"id": savedID})
}

// writeCommitError maps the error of a commit to a response.
func (s *Server) writeCommitError(w http.ResponseWriter, r *http.Request, err error) {
	verr := &editor.ValidationError{}
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": verr.Errors})
	case errors.Is(err, node.ErrNoValidProtocol):
		writeError(w, http.StatusUnprocessableEntity, err)
	case errors.Is(err, editor.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		s.writeInternalError(w, r, err)
	}
}

// handleList responds with all stored servers.
func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.List(r.Context())
	if err != nil {
		s.writeInternalError(w, r, err)

		return
	}

	if recs == nil {
		recs = []*store.Record{}
	}

	writeJSON(w, http.StatusOK, map[string]any{"servers": recs})
}

// handleGet responds with the stored submission of a server.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	sub, err := s.store.Load(r.Context(), id)
	switch {
	case errors.Is(err, editor.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		s.writeInternalError(w, r, err)
	default:
		writeJSON(w, http.StatusOK, sub)
	}
}

// handleDelete removes a stored server.
func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := s.store.Delete(r.Context(), id)
	switch {
	case errors.Is(err, editor.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case err != nil:
		s.writeInternalError(w, r, err)
	default:
		log.Info("adminsrv: deleted server %d", id)

		w.WriteHeader(http.StatusNoContent)
	}
}

// openDraft decodes the draft in the request body and starts a session for
// it.  If ok is false, the error response has already been written.
func (s *Server) openDraft(w http.ResponseWriter, r *http.Request) (sess *editor.Session, ok bool) {
	d, ok := decodeDraft(w, r)
	if !ok {
		return nil, false
	}

	sess, err := editor.FromDraft(s.store, d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return nil, false
	}

	return sess, true
}

// writeInternalError logs err, reports it to Sentry, and writes a generic 500
// response.
func (s *Server) writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	log.Error("adminsrv: %s %s: %s", r.Method, r.URL.Path, err)
	sentry.CaptureException(err)

	writeError(w, http.StatusInternalServerError, errors.Error("internal server error"))
}

// decodeDraft decodes the request body.  If ok is false, the error response
// has already been written.
func decodeDraft(w http.ResponseWriter, r *http.Request) (d *editor.Draft, ok bool) {
	d = &editor.Draft{}
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decoding draft: %w", err))

		return nil, false
	}

	return d, true
}

// pathID parses the id path value.  If ok is false, the error response has
// already been written.
func pathID(w http.ResponseWriter, r *http.Request) (id int64, ok bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, fmt.Errorf("bad server id %q", r.PathValue("id")))

		return 0, false
	}

	return id, true
}

// writeError writes err as a JSON error object with code.
func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

// writeJSON writes v as JSON with code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Debug("adminsrv: writing response: %s", err)
	}
}
