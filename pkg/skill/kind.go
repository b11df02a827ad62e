package skill

import "fmt"

// Kind is the closed set of node kinds.
type Kind string

const (
	KindSource    Kind = "source"
	KindModel     Kind = "model"
	KindTransform Kind = "transform"
	KindExport    Kind = "export"
)

// Kinds lists every node kind in display order.
var Kinds = []Kind{KindSource, KindModel, KindTransform, KindExport}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindSource, KindModel, KindTransform, KindExport:
		return true
	}
	return false
}

// HasSubKind reports whether nodes of this kind must carry a subKind.
func (k Kind) HasSubKind() bool {
	return k == KindTransform || k == KindExport
}

// ParseKind converts a wire string into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// SubKind selects the configuration shape of transform and export nodes.
// Source and model nodes have no subKind.
type SubKind string

const (
	SubKindNone    SubKind = ""
	SubKindFilter  SubKind = "filter"
	SubKindGrpc    SubKind = "grpc"
	SubKindSnippet SubKind = "snippet"
	SubKindIoTHub  SubKind = "iotHub"
	SubKindIoTEdge SubKind = "iotEdge"
	SubKindHTTP    SubKind = "http"
	SubKindMQTT    SubKind = "mqtt"
)

// SubKinds lists every subKind.
var SubKinds = []SubKind{
	SubKindFilter, SubKindGrpc,
	SubKindSnippet, SubKindIoTHub, SubKindIoTEdge, SubKindHTTP, SubKindMQTT,
}

// Kind returns the node kind that owns this subKind, or "" for SubKindNone
// and unknown values.
func (s SubKind) Kind() Kind {
	switch s {
	case SubKindFilter, SubKindGrpc:
		return KindTransform
	case SubKindSnippet, SubKindIoTHub, SubKindIoTEdge, SubKindHTTP, SubKindMQTT:
		return KindExport
	}
	return ""
}

// ParseSubKind converts a string into a SubKind. The empty string parses to
// SubKindNone.
func ParseSubKind(s string) (SubKind, error) {
	sk := SubKind(s)
	if sk != SubKindNone && sk.Kind() == "" {
		return "", fmt.Errorf("%w: %q", ErrUnknownSubKind, s)
	}
	return sk, nil
}

// Catalog names of the built-in transforms and exports. The execution engine
// identifies these nodes by name, so the names double as wire names.
const (
	CatalogFilterTransform = "filter_transform"
	CatalogGrpcTransform   = "grpc_transform"
	CatalogSnippetExport   = "video_snippet_export"
	CatalogIoTHubExport    = "iothub_export"
	CatalogIoTEdgeExport   = "iotedge_export"
	CatalogHTTPExport      = "http_export"
	CatalogMQTTExport      = "mqtt_export"
)

// SubKindFromCatalogName maps a catalog entry name to its subKind. Unknown
// names map to SubKindNone.
func SubKindFromCatalogName(name string) SubKind {
	switch name {
	case CatalogFilterTransform:
		return SubKindFilter
	case CatalogGrpcTransform:
		return SubKindGrpc
	case CatalogSnippetExport:
		return SubKindSnippet
	case CatalogIoTHubExport:
		return SubKindIoTHub
	case CatalogIoTEdgeExport:
		return SubKindIoTEdge
	case CatalogHTTPExport:
		return SubKindHTTP
	case CatalogMQTTExport:
		return SubKindMQTT
	}
	return SubKindNone
}

// CatalogName returns the built-in catalog name for the subKind.
func (s SubKind) CatalogName() string {
	switch s {
	case SubKindFilter:
		return CatalogFilterTransform
	case SubKindGrpc:
		return CatalogGrpcTransform
	case SubKindSnippet:
		return CatalogSnippetExport
	case SubKindIoTHub:
		return CatalogIoTHubExport
	case SubKindIoTEdge:
		return CatalogIoTEdgeExport
	case SubKindHTTP:
		return CatalogHTTPExport
	case SubKindMQTT:
		return CatalogMQTTExport
	}
	return ""
}
