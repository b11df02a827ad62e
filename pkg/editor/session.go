package editor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillgraph/pkg/catalog"
	"github.com/matzehuels/skillgraph/pkg/codec"
	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/observability"
	"github.com/matzehuels/skillgraph/pkg/skill"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// Mutation names reported to hooks and logs.
const (
	OpAddNode    = "add_node"
	OpRemoveNode = "remove_node"
	OpAddEdge    = "add_edge"
	OpRemoveEdge = "remove_edge"
	OpConfigure  = "configure"
	OpRename     = "rename"
	OpMove       = "move"
	OpReplace    = "replace"
)

// TransitionFunc is called, with the session lock held, whenever the state
// changes. It must not call back into the session.
type TransitionFunc func(from, to State)

// Session is an editing session over one graph.
type Session struct {
	mu      sync.Mutex
	graph   *skill.Graph
	catalog catalog.Catalog
	logger  *log.Logger
	state   State
	result  validate.Result

	onTransition TransitionFunc
}

// Option configures a Session.
type Option func(*Session)

// WithCatalog sets the catalog used to resolve node references.
// The default is [catalog.Default].
func WithCatalog(c catalog.Catalog) Option {
	return func(s *Session) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithLogger sets the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTransition registers a state change callback.
func WithTransition(fn TransitionFunc) Option {
	return func(s *Session) { s.onTransition = fn }
}

// New starts a session on a fresh graph holding only the camera source.
func New(opts ...Option) *Session {
	s := newSession(opts)
	var ref *skill.Ref
	if e, ok := s.catalog.ByName(skill.SourceEntryName); ok {
		ref = e.Ref()
	}
	s.graph = skill.New(ref)
	s.settle()
	return s
}

// Open starts a session on an existing graph. The session takes ownership
// of g; callers must not mutate it afterwards. Opening reports no state
// transition: the session starts in the state g is already in.
func Open(g *skill.Graph, opts ...Option) *Session {
	s := newSession(opts)
	s.graph = g
	s.settle()
	return s
}

func newSession(opts []Option) *Session {
	s := &Session{catalog: catalog.Default(), logger: log.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the validation result behind the current state.
func (s *Session) Result() validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// Graph returns a copy of the session graph.
func (s *Session) Graph() *skill.Graph {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.graph.Clone()
}

// Catalog returns the catalog the session resolves references against.
func (s *Session) Catalog() catalog.Catalog { return s.catalog }

// AddNode adds a node referencing the catalog entry named entry (matched by
// name, then by catalog id). For transform and export nodes an empty entry
// defaults to the entry of the subKind; model nodes may start without one
// and get it from [Session.Configure].
func (s *Session) AddNode(ctx context.Context, kind skill.Kind, sub skill.SubKind, entry string) (string, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry == "" && sub != skill.SubKindNone {
		entry = sub.CatalogName()
	}
	var ref *skill.Ref
	if entry != "" {
		e, err := s.resolve(kind, entry)
		if err != nil {
			return "", s.state, s.done(ctx, OpAddNode, err)
		}
		ref = e.Ref()
	}

	id, err := s.graph.AddNode(kind, sub, ref)
	if err != nil {
		return "", s.state, s.done(ctx, OpAddNode, err)
	}
	s.logger.Debug("node added", "id", id, "kind", kind, "entry", entry)
	return id, s.refresh(ctx), s.done(ctx, OpAddNode, nil)
}

// RemoveNode deletes a node and every edge touching it.
func (s *Session) RemoveNode(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.RemoveNode(id); err != nil {
		return s.state, s.done(ctx, OpRemoveNode, err)
	}
	s.logger.Debug("node removed", "id", id)
	return s.refresh(ctx), s.done(ctx, OpRemoveNode, nil)
}

// AddEdge connects two nodes. A target port that is already bound rejects
// the edge with [skill.ErrConnectionRejected].
func (s *Session) AddEdge(ctx context.Context, c skill.Connection) (string, State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := s.graph.AddEdge(c)
	if err != nil {
		return "", s.state, s.done(ctx, OpAddEdge, err)
	}
	s.logger.Debug("edge added", "id", id)
	return id, s.refresh(ctx), s.done(ctx, OpAddEdge, nil)
}

// RemoveEdge deletes an edge.
func (s *Session) RemoveEdge(ctx context.Context, id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.RemoveEdge(id); err != nil {
		return s.state, s.done(ctx, OpRemoveEdge, err)
	}
	return s.refresh(ctx), s.done(ctx, OpRemoveEdge, nil)
}

// Configure stores a configuration on a node. A model configuration also
// moves the node's reference to the model it selects, which must exist in
// the catalog.
func (s *Session) Configure(ctx context.Context, id string, cfg skill.Configuration) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ref *skill.Ref
	if mc, ok := cfg.(skill.ModelConfig); ok {
		e, found := s.catalog.ByID(mc.Model.ID)
		if !found || e.Kind != skill.KindModel {
			e, found = s.catalog.ByName(mc.Model.Name)
		}
		if !found || e.Kind != skill.KindModel {
			err := errs.New(errs.ErrCodeUnresolvedReference, "model %q (id %d) not in catalog",
				mc.Model.Name, mc.Model.ID)
			return s.state, s.done(ctx, OpConfigure, err)
		}
		ref = e.Ref()
	}

	if err := s.graph.SetNodeConfiguration(id, cfg); err != nil {
		return s.state, s.done(ctx, OpConfigure, err)
	}
	if ref != nil {
		if err := s.graph.SetNodeReference(id, ref); err != nil {
			return s.state, s.done(ctx, OpConfigure, err)
		}
	}
	s.logger.Debug("node configured", "id", id, "config", cfg.SubKind())
	return s.refresh(ctx), s.done(ctx, OpConfigure, nil)
}

// Rename changes the display name of a node.
func (s *Session) Rename(ctx context.Context, id, name string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.graph.RenameNode(id, name); err != nil {
		return s.state, s.done(ctx, OpRename, err)
	}
	return s.refresh(ctx), s.done(ctx, OpRename, nil)
}

// Move sets the canvas position of a node. Positions never change the state.
func (s *Session) Move(ctx context.Context, id string, p skill.Position) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.done(ctx, OpMove, s.graph.MoveNode(id, p))
}

// Replace swaps the whole graph, as when a stored skill is loaded.
func (s *Session) Replace(ctx context.Context, g *skill.Graph) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.graph = g
	_ = s.done(ctx, OpReplace, nil)
	return s.refresh(ctx)
}

// Validate re-runs the structural validator.
func (s *Session) Validate(ctx context.Context) validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh(ctx)
	return s.result
}

// Snapshot serializes the full editor state.
func (s *Session) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return codec.MarshalSnapshot(s.graph)
}

// Commit validates the graph and encodes it for the execution engine.
// A failing validation returns an INVALID_GRAPH error and no payload.
func (s *Session) Commit(ctx context.Context) (codec.Payload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.refresh(ctx)
	if !s.result.OK() {
		return codec.Payload{}, s.result.Err()
	}
	start := time.Now()
	p, err := codec.Encode(s.graph)
	observability.Pipeline().OnEncode(ctx, s.graph.NodeCount(), time.Since(start), err)
	return p, err
}

// resolve finds the catalog entry for a new node of the given kind.
func (s *Session) resolve(kind skill.Kind, name string) (catalog.Entry, error) {
	e, ok := s.catalog.ByName(name)
	if !ok {
		e, ok = s.catalog.ByKanID(name)
	}
	if !ok {
		return catalog.Entry{}, errs.New(errs.ErrCodeUnresolvedReference, "%q not in catalog", name)
	}
	if e.Kind != kind {
		return catalog.Entry{}, errs.New(errs.ErrCodeInvalidInput, "%q is a %s entry, not %s", name, e.Kind, kind)
	}
	return e, nil
}

// settle sets the initial state without firing hooks or callbacks.
func (s *Session) settle() {
	s.result = validate.Validate(s.graph)
	s.state = StateOf(s.graph, s.result)
}

// refresh re-validates and fires the transition callback. Callers hold s.mu.
func (s *Session) refresh(ctx context.Context) State {
	start := time.Now()
	s.result = validate.Validate(s.graph)
	observability.Editor().OnValidate(ctx, string(s.result.Code), time.Since(start))

	from, to := s.state, StateOf(s.graph, s.result)
	s.state = to
	if from != to {
		s.logger.Debug("state changed", "from", from, "to", to)
		observability.Editor().OnTransition(ctx, string(from), string(to))
		if s.onTransition != nil {
			s.onTransition(from, to)
		}
	}
	return to
}

// done reports a mutation and converts graph rejections into coded errors.
func (s *Session) done(ctx context.Context, op string, err error) error {
	err = coded(err)
	observability.Editor().OnMutation(ctx, op, err)
	if err != nil {
		s.logger.Debug("mutation rejected", "op", op, "err", err)
	}
	return err
}

func coded(err error) error {
	var e *errs.Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &e):
		return err
	case errors.Is(err, skill.ErrConnectionRejected):
		return errs.Wrap(errs.ErrCodeConnectionRejected, err, "connection rejected")
	case errors.Is(err, skill.ErrUnknownNode), errors.Is(err, skill.ErrUnknownEdge):
		return errs.Wrap(errs.ErrCodeNotFound, err, "not found")
	default:
		return errs.Wrap(errs.ErrCodeMutationRejected, err, "rejected")
	}
}
