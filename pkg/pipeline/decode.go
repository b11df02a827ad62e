package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/skillgraph/pkg/cache"
	"github.com/matzehuels/skillgraph/pkg/catalog"
	"github.com/matzehuels/skillgraph/pkg/codec"
	"github.com/matzehuels/skillgraph/pkg/observability"
)

// Decode decodes p against cat and returns the result with the blake3 hash
// of the canonical payload bytes.
func Decode(ctx context.Context, p codec.Payload, cat catalog.Catalog, opts codec.Options) (*codec.DecodeResult, string, error) {
	data, err := codec.MarshalPayload(p)
	if err != nil {
		return nil, "", err
	}
	hash := cache.Hash(data)

	start := time.Now()
	res, err := codec.Decode(p, cat, opts)
	unresolved := 0
	if res != nil {
		unresolved = len(res.Unresolved)
	}
	observability.Pipeline().OnDecode(ctx, len(p.Nodes), unresolved, time.Since(start), err)
	if err != nil {
		return nil, "", err
	}
	return res, hash, nil
}
