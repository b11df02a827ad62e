package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/editor"
	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/pipeline"
	"github.com/matzehuels/skillgraph/pkg/session"
	"github.com/matzehuels/skillgraph/pkg/skill"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// CreateSessionRequest starts a session, optionally from an existing
// payload or snapshot.
type CreateSessionRequest struct {
	Name     string          `json:"name,omitempty" validate:"omitempty,max=128"`
	Payload  *codec.Payload  `json:"payload,omitempty"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
	Strict   bool            `json:"strict,omitempty"`
}

// AddNodeRequest adds a node. Entry names the catalog entry: the kan_id or
// name of a model, or the catalog name of a transform or export, which
// defaults to the built-in entry of SubKind.
type AddNodeRequest struct {
	Kind    skill.Kind    `json:"type" validate:"required,oneof=model transform export"`
	SubKind skill.SubKind `json:"subKind,omitempty" validate:"omitempty,oneof=filter grpc snippet iotHub iotEdge http mqtt"`
	Entry   string        `json:"entry,omitempty"`
}

// RenameRequest renames a node.
type RenameRequest struct {
	Name string `json:"name" validate:"required,max=128"`
}

// MoveRequest moves a node on the canvas.
type MoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ConnectRequest adds an edge. Empty handles select the default ports.
type ConnectRequest struct {
	Source       string `json:"source" validate:"required"`
	SourceHandle string `json:"sourceHandle,omitempty"`
	Target       string `json:"target" validate:"required"`
	TargetHandle string `json:"targetHandle,omitempty"`
}

// SessionResponse describes a session.
type SessionResponse struct {
	ID         string             `json:"id"`
	Name       string             `json:"name,omitempty"`
	State      editor.State       `json:"state"`
	Validation validate.Result    `json:"validation"`
	Snapshot   json.RawMessage    `json:"snapshot,omitempty"`
	Unresolved []codec.Unresolved `json:"unresolved,omitempty"`
	Dropped    []skill.Connection `json:"dropped_edges,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
}

// MutationResponse is returned by every graph mutation.
type MutationResponse struct {
	State      editor.State    `json:"state"`
	Validation validate.Result `json:"validation"`
	NodeID     string          `json:"node_id,omitempty"`
	EdgeID     string          `json:"edge_id,omitempty"`
}

// CommitResponse carries the wire payload of a committed session.
type CommitResponse struct {
	Payload codec.Payload `json:"payload"`
	Hash    string        `json:"hash"`
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	list, err := s.store.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if list == nil {
		list = []session.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": list})
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req CreateSessionRequest
	if err := s.decodeBody(r, &req, true); err != nil {
		s.fail(w, r, err)
		return
	}

	var (
		g          *skill.Graph
		unresolved []codec.Unresolved
		dropped    []skill.Connection
	)
	if req.Payload != nil || len(req.Snapshot) > 0 {
		res, err := s.runner.Load(ctx, pipeline.LoadOptions{
			Payload:  req.Payload,
			Snapshot: req.Snapshot,
			Strict:   req.Strict,
			Logger:   s.logger,
		})
		if err != nil {
			s.fail(w, r, err)
			return
		}
		g, unresolved, dropped = res.Graph, res.Unresolved, res.Dropped
	}

	ed := s.editor("", g)
	snap, err := ed.Snapshot()
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "snapshot"))
		return
	}
	rec := session.New(req.Name, snap, s.cfg.SessionTTL)
	if err := s.store.Set(ctx, rec); err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "store session"))
		return
	}
	s.logger.Info("session created", "id", rec.ID, "nodes", ed.Graph().NodeCount(), "state", ed.State())

	resp := s.describe(rec, ed)
	resp.Unresolved = unresolved
	resp.Dropped = dropped
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	rec, ed, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.describe(rec, ed))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.store.Get(r.Context(), id); err != nil {
		s.fail(w, r, storeErr(id, err))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "delete session"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) validateSession(w http.ResponseWriter, r *http.Request) {
	_, ed, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	res := ed.Validate(r.Context())
	writeJSON(w, http.StatusOK, MutationResponse{State: ed.State(), Validation: res})
}

func (s *Server) commit(w http.ResponseWriter, r *http.Request) {
	_, ed, err := s.load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := ed.Commit(r.Context())
	if err != nil {
		res := ed.Result()
		s.failWith(w, r, err, &res)
		return
	}
	data, err := codec.MarshalPayload(p)
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "marshal payload"))
		return
	}
	writeJSON(w, http.StatusOK, CommitResponse{Payload: p, Hash: hashOf(data)})
}

func (s *Server) addNode(w http.ResponseWriter, r *http.Request) {
	var req AddNodeRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	s.mutate(w, r, http.StatusCreated, func(ctx context.Context, ed *editor.Session) (MutationResponse, error) {
		id, st, err := ed.AddNode(ctx, req.Kind, req.SubKind, req.Entry)
		return MutationResponse{State: st, NodeID: id}, err
	})
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Session) (MutationResponse, error) {
		st, err := ed.RemoveNode(ctx, nodeID)
		return MutationResponse{State: st}, err
	})
}

func (s *Server) configureNode(w http.ResponseWriter, r *http.Request) {
	nodeID := chi.URLParam(r, "nodeID")
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBody))
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidInput, err, "read body"))
		return
	}
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Session) (MutationResponse, error) {
		n, ok := ed.Graph().Node(nodeID)
		if !ok {
			return MutationResponse{}, errs.New(errs.ErrCodeNotFound, "node %s", nodeID)
		}
		cfg, err := codec.DecodeConfig(n.Kind, n.SubKind, data)
		if err != nil {
			return MutationResponse{}, err
		}
		st, err := ed.Configure(ctx, nodeID, cfg)
		return MutationResponse{State: st}, err
	})
}

func (s *Server) renameNode(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Session) (MutationResponse, error) {
		st, err := ed.Rename(ctx, nodeID, req.Name)
		return MutationResponse{State: st}, err
	})
}

func (s *Server) moveNode(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	nodeID := chi.URLParam(r, "nodeID")
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Session) (MutationResponse, error) {
		err := ed.Move(ctx, nodeID, skill.Position{X: req.X, Y: req.Y})
		return MutationResponse{State: ed.State()}, err
	})
}

func (s *Server) addEdge(w http.ResponseWriter, r *http.Request) {
	var req ConnectRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		s.fail(w, r, err)
		return
	}
	c := skill.Connection{
		Source:       req.Source,
		SourceHandle: req.SourceHandle,
		Target:       req.Target,
		TargetHandle: req.TargetHandle,
	}
	s.mutate(w, r, http.StatusCreated, func(ctx context.Context, ed *editor.Session) (MutationResponse, error) {
		id, st, err := ed.AddEdge(ctx, c)
		return MutationResponse{State: st, EdgeID: id}, err
	})
}

func (s *Server) removeEdge(w http.ResponseWriter, r *http.Request) {
	edgeID := chi.URLParam(r, "edgeID")
	s.mutate(w, r, http.StatusOK, func(ctx context.Context, ed *editor.Session) (MutationResponse, error) {
		st, err := ed.RemoveEdge(ctx, edgeID)
		return MutationResponse{State: st}, err
	})
}

// mutate runs fn against the session named in the URL under the session
// lock and stores the result. A rejected mutation leaves the stored
// snapshot untouched.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, status int,
	fn func(context.Context, *editor.Session) (MutationResponse, error)) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")
	unlock := s.locks.lock(id)
	defer unlock()

	rec, ed, err := s.load(ctx, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp, err := fn(ctx, ed)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	snap, err := ed.Snapshot()
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "snapshot"))
		return
	}
	rec.Touch(snap, s.cfg.SessionTTL)
	if err := s.store.Set(ctx, rec); err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "store session"))
		return
	}
	resp.State = ed.State()
	resp.Validation = ed.Result()
	writeJSON(w, status, resp)
}

// load restores the editor of session id.
func (s *Server) load(ctx context.Context, id string) (*session.Record, *editor.Session, error) {
	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, nil, storeErr(id, err)
	}
	g, err := codec.UnmarshalSnapshot(rec.Snapshot)
	if err != nil {
		return nil, nil, errs.Wrap(errs.ErrCodeInternal, err, "session %s", id)
	}
	return rec, s.editor(id, g), nil
}

// editor opens g, or a fresh graph when g is nil. State changes of stored
// session id are logged.
func (s *Server) editor(id string, g *skill.Graph) *editor.Session {
	opts := []editor.Option{editor.WithCatalog(s.catalog), editor.WithLogger(s.logger)}
	if id != "" {
		opts = append(opts, editor.WithTransition(func(from, to editor.State) {
			s.logger.Info("session state changed", "id", id, "from", from, "to", to)
		}))
	}
	if g == nil {
		return editor.New(opts...)
	}
	return editor.Open(g, opts...)
}

func (s *Server) describe(rec *session.Record, ed *editor.Session) SessionResponse {
	return SessionResponse{
		ID:         rec.ID,
		Name:       rec.Name,
		State:      ed.State(),
		Validation: ed.Result(),
		Snapshot:   rec.Snapshot,
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func storeErr(id string, err error) error {
	if errors.Is(err, session.ErrNotFound) {
		return errs.New(errs.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return errs.Wrap(errs.ErrCodeInternal, err, "load session %s", id)
}
