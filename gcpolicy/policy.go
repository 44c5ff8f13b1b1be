package gcpolicy

import (
	"context"

	"github.com/sarvex/mutcompact"
)

// Constant is a GCPolicy that applies the same grace period to every key,
// the common case for a single-table or single-keyspace deployment and
// useful directly in tests.
type Constant struct {
	// GracePeriodSeconds is subtracted from queryTime to produce gc_before.
	GracePeriodSeconds int64
}

// GCBeforeForKey implements mutcompact.GCPolicy.
func (c Constant) GCBeforeForKey(
	_ context.Context, _ mutcompact.Schema, _ mutcompact.DecoratedKey, queryTime mutcompact.WallTime,
) (mutcompact.WallTime, error) {
	return queryTime - mutcompact.WallTime(c.GracePeriodSeconds), nil
}

var _ mutcompact.GCPolicy = Constant{}
