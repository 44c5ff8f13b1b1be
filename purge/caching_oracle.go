// Package purge holds PurgeableOracle decorators. The oracle is an external,
// potentially expensive collaborator (it may itself scan level metadata or
// hit a manifest); CachingOracle coalesces concurrent lookups for the same
// partition the way a storage engine's file cache coalesces concurrent
// opens of the same table with singleflight.
package purge

import (
	"context"
	"encoding/binary"

	"golang.org/x/sync/singleflight"

	"github.com/sarvex/mutcompact"
)

// CachingOracle wraps a mutcompact.PurgeableOracle so that concurrent
// queries against the same partition key (from independent, concurrently
// running query-mode compactions sharing one oracle instance) collapse into
// a single upstream lookup.
type CachingOracle struct {
	underlying mutcompact.PurgeableOracle
	group      singleflight.Group
}

// NewCachingOracle wraps underlying with request coalescing.
func NewCachingOracle(underlying mutcompact.PurgeableOracle) *CachingOracle {
	return &CachingOracle{underlying: underlying}
}

// MaxPurgeableTimestamp implements mutcompact.PurgeableOracle.
func (c *CachingOracle) MaxPurgeableTimestamp(
	ctx context.Context, dk mutcompact.DecoratedKey,
) (mutcompact.Timestamp, error) {
	key := singleflightKey(dk)
	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		return c.underlying.MaxPurgeableTimestamp(ctx, dk)
	})
	if err != nil {
		return mutcompact.MissingTimestamp, err
	}
	return v.(mutcompact.Timestamp), nil
}

func singleflightKey(dk mutcompact.DecoratedKey) string {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], dk.Token)
	return string(buf[:]) + string(dk.Key)
}

var _ mutcompact.PurgeableOracle = (*CachingOracle)(nil)
