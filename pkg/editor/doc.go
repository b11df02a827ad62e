// Package editor wraps a skill graph in an editing session.
//
// A [Session] is the single logical owner of one graph. Every mutation takes
// the session lock, applies the change through the graph model, re-runs the
// structural validator and reports the resulting [State]:
//
//	Empty ──add node──▶ PartiallyConfigured ──last check passes──▶ Valid
//	  ▲                         │    ▲                                │
//	  └──remove last node───────┘    └────────any failing check───────┘
//
// Rejected mutations leave the graph and the state untouched. Errors are
// coded (see package errors) and keep the graph model's rejection in their
// chain, so both of these work:
//
//	errors.Is(err, skill.ErrConnectionRejected)
//	errs.Is(err, errs.ErrCodeConnectionRejected)
//
// Catalog lookups happen here, not in the graph model: [Session.AddNode]
// resolves the entry a node references and [Session.Configure] swaps a model
// node's reference to the model its configuration selects.
package editor
