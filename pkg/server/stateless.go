package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/skillgraph/pkg/cache"
	"github.com/matzehuels/skillgraph/pkg/codec"
	errs "github.com/matzehuels/skillgraph/pkg/errors"
	"github.com/matzehuels/skillgraph/pkg/pipeline"
	"github.com/matzehuels/skillgraph/pkg/skill"
	"github.com/matzehuels/skillgraph/pkg/validate"
)

// GraphRequest carries a graph as a wire payload or an editor snapshot.
// The snapshot wins when both are set.
type GraphRequest struct {
	Payload  *codec.Payload  `json:"payload,omitempty" validate:"required_without=Snapshot"`
	Snapshot json.RawMessage `json:"snapshot,omitempty"`
	Strict   bool            `json:"strict,omitempty"`
}

// ValidateResponse is the result of a stateless validation.
type ValidateResponse struct {
	Validation validate.Result    `json:"validation"`
	Unresolved []codec.Unresolved `json:"unresolved,omitempty"`
	Dropped    []skill.Connection `json:"dropped_edges,omitempty"`
}

// DecodeResponse is a decoded payload, laid out, as an editor snapshot.
type DecodeResponse struct {
	Snapshot   json.RawMessage    `json:"snapshot"`
	Validation validate.Result    `json:"validation"`
	Unresolved []codec.Unresolved `json:"unresolved,omitempty"`
	Dropped    []skill.Connection `json:"dropped_edges,omitempty"`
	Hash       string             `json:"hash"`
}

func (s *Server) loadGraph(w http.ResponseWriter, r *http.Request) (*pipeline.LoadResult, bool) {
	var req GraphRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	res, err := s.runner.Load(r.Context(), pipeline.LoadOptions{
		Payload:  req.Payload,
		Snapshot: req.Snapshot,
		Strict:   req.Strict,
		Logger:   s.logger,
	})
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return res, true
}

func (s *Server) validateGraph(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadGraph(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{
		Validation: res.Validation,
		Unresolved: res.Unresolved,
		Dropped:    res.Dropped,
	})
}

func (s *Server) encode(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadGraph(w, r)
	if !ok {
		return
	}
	out, err := s.runner.Commit(r.Context(), res.Graph)
	if err != nil {
		s.failWith(w, r, err, &res.Validation)
		return
	}
	writeJSON(w, http.StatusOK, CommitResponse{Payload: out.Payload, Hash: out.Hash})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request) {
	res, ok := s.loadGraph(w, r)
	if !ok {
		return
	}
	snap, err := codec.MarshalSnapshot(res.Graph)
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "snapshot"))
		return
	}
	writeJSON(w, http.StatusOK, DecodeResponse{
		Snapshot:   snap,
		Validation: res.Validation,
		Unresolved: res.Unresolved,
		Dropped:    res.Dropped,
		Hash:       res.PayloadHash,
	})
}

func hashOf(data []byte) string { return cache.Hash(data) }
