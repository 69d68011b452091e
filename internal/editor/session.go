package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/AdguardTeam/golibs/container"
	"github.com/AdguardTeam/golibs/log"
	"github.com/ameshkov/nodeadmin/internal/metrics"
	"github.com/ameshkov/nodeadmin/internal/node"
)

// Session is the edit session of a single server node.  It is safe for
// concurrent use, but only one commit may be in flight at a time.
type Session struct {
	committer Committer

	node    *node.ServerNode
	enabled *container.MapSet[node.Kind]

	// id is the id of the edited server, zero for a new one.
	id int64

	// committing is true while the committer is running.
	committing bool

	// closed is true after a successful commit or Abandon.  node is nil
	// once the session is closed.
	closed bool

	// mu protects all fields above except committer.
	mu *sync.Mutex
}

// New returns a session for a new server with every protocol set to its
// defaults and none of them enabled.
func New(c Committer) (s *Session) {
	return newSession(c, 0, node.NewServerNode(), container.NewMapSet[node.Kind]())
}

// Open loads the server with the given id and returns a session editing it.
func Open(ctx context.Context, l Loader, c Committer, id int64) (s *Session, err error) {
	sub, err := l.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading server %d: %w", id, err)
	}

	n, enabled := node.FromSubmission(sub)

	log.Debug("editor: opened server %d with %d protocols", id, len(sub.Protocols))

	return newSession(c, id, n, enabled), nil
}

// FromDraft returns a session editing the state described by d.  d is not
// retained.
func FromDraft(c Committer, d *Draft) (s *Session, err error) {
	n := node.NewServerNode()
	if d.Node != nil {
		n = d.Node.Clone()
		n.Backfill()
	}

	enabled := container.NewMapSet[node.Kind]()
	for _, k := range d.Enabled {
		if !k.Known() {
			return nil, fmt.Errorf("enabled: %w: %q", ErrUnknownKind, k)
		}

		enabled.Add(k)
	}

	return newSession(c, d.ID, n, enabled), nil
}

// newSession returns a properly initialized *Session.
func newSession(
	c Committer,
	id int64,
	n *node.ServerNode,
	enabled *container.MapSet[node.Kind],
) (s *Session) {
	return &Session{
		committer: c,
		node:      n,
		enabled:   enabled,
		id:        id,
		mu:        &sync.Mutex{},
	}
}

// ID returns the id of the edited server.  It is zero until a new server is
// committed.
func (s *Session) ID() (id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.id
}

// Enable marks the protocol kind as enabled.
func (s *Session) Enable(k node.Kind) (err error) {
	return s.setEnabled(k, true)
}

// Disable marks the protocol kind as disabled.  The slot keeps its state.
func (s *Session) Disable(k node.Kind) (err error) {
	return s.setEnabled(k, false)
}

// setEnabled adds k to or removes it from the enabled set.
func (s *Session) setEnabled(k node.Kind, on bool) (err error) {
	if !k.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, k)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if on {
		s.enabled.Add(k)
	} else {
		s.enabled.Delete(k)
	}

	return nil
}

// Enabled returns the enabled protocol kinds in catalog order.
func (s *Session) Enabled() (ks []node.Kind) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, k := range node.Kinds() {
		if s.enabled.Has(k) {
			ks = append(ks, k)
		}
	}

	return ks
}

// Slot returns a copy of the slot of kind k, enabled or not.  It returns nil
// for unknown kinds and closed sessions.
func (s *Session) Slot(k node.Kind) (slot *node.Slot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.node == nil {
		return nil
	}

	orig := s.node.Protocols[k]
	if orig == nil {
		return nil
	}

	return &node.Slot{Port: orig.Port, Config: orig.Config.Clone()}
}

// Node returns a copy of the edited state or nil if the session is closed.
func (s *Session) Node() (n *node.ServerNode) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.node == nil {
		return nil
	}

	return s.node.Clone()
}

// Edit calls f with the edited state.  f must not retain n.  Slots removed or
// replaced by f are restored from the defaults afterwards.
func (s *Session) Edit(f func(n *node.ServerNode)) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	f(s.node)
	s.node.Backfill()

	return nil
}

// Validate returns the field errors of the edited state.  Disabled protocols
// are never checked.
func (s *Session) Validate() (errs node.Errors) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.node == nil {
		return nil
	}

	errs = node.Validate(s.node, s.enabled)
	if len(errs) > 0 {
		metrics.ValidationsTotal.WithLabelValues(metrics.ResultInvalid).Inc()
	} else {
		metrics.ValidationsTotal.WithLabelValues(metrics.ResultOK).Inc()
	}

	return errs
}

// Commit validates the edited state, reduces it to a submission, and hands
// it to the committer.  On success the session is closed, the edited state is
// cleared, and the id of the saved server is returned.  On any failure the
// edited state is kept.
//
// It returns a *ValidationError if any enabled protocol or node field is
// invalid and node.ErrNoValidProtocol if nothing would be submitted.
func (s *Session) Commit(ctx context.Context) (id int64, err error) {
	sub, id, err := s.startCommit()
	if err != nil {
		return 0, err
	}

	savedID, err := s.committer.Commit(ctx, id, sub)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.committing = false
	if err != nil {
		metrics.CommitsTotal.WithLabelValues(metrics.ResultError).Inc()

		return 0, fmt.Errorf("committing server: %w", err)
	}

	s.id = savedID
	s.discard()

	metrics.CommitsTotal.WithLabelValues(metrics.ResultOK).Inc()
	for _, p := range sub.Protocols {
		metrics.ProtocolsSubmittedTotal.WithLabelValues(string(p.Config.Kind())).Inc()
	}

	log.Debug("editor: committed server %d with %d protocols", savedID, len(sub.Protocols))

	return savedID, nil
}

// startCommit checks the session state, builds the submission, and sets the
// busy latch.
func (s *Session) startCommit() (sub *node.Submission, id int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, 0, ErrClosed
	}

	if s.committing {
		return nil, 0, ErrBusy
	}

	errs := node.Validate(s.node, s.enabled)
	if len(errs) > 0 {
		metrics.CommitsTotal.WithLabelValues(metrics.ResultInvalid).Inc()

		return nil, 0, &ValidationError{Errors: errs}
	}

	sub, err = node.Reduce(s.node, s.enabled)
	if err != nil {
		metrics.CommitsTotal.WithLabelValues(metrics.ResultEmpty).Inc()

		return nil, 0, err
	}

	s.committing = true

	return sub, s.id, nil
}

// Abandon closes the session and discards the edited state.  Nothing is
// persisted.
func (s *Session) Abandon() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discard()
}

// discard closes the session and drops the edited state.  s.mu must be
// locked.
func (s *Session) discard() {
	s.closed = true
	s.node = nil
	s.enabled = container.NewMapSet[node.Kind]()
}
