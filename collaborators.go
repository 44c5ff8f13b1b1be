package mutcompact

import "context"

// PurgeableOracle answers, for a given partition key, the highest write
// timestamp that is guaranteed to be shadowed by data held elsewhere (on
// other levels, in other sstables). Only consulted in SSTable-compaction
// mode, and at most once per partition.
type PurgeableOracle interface {
	MaxPurgeableTimestamp(ctx context.Context, dk DecoratedKey) (Timestamp, error)
}

// GCPolicy resolves gc_before for a partition key: the wall-clock cutoff
// below which a tombstone's deletion time makes it eligible for purging.
// Consulted at most once per partition, on its first static row, clustering
// row or non-empty tombstone (the schema's grace-period policy may itself be
// per-key/per-table).
type GCPolicy interface {
	GCBeforeForKey(ctx context.Context, schema Schema, dk DecoratedKey, queryTime WallTime) (WallTime, error)
}

// Logger is the ambient diagnostic sink, structurally compatible with
// gcpolicy.DefaultLogger (kept here, not imported, so this package and
// gcpolicy don't form an import cycle).
type Logger interface {
	Infof(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Infof(string, ...interface{}) {}
func (noopLogger) Fatalf(string, ...interface{}) {}

// GarbageBuffer is the single-row GC scratch buffer contract, implemented by
// gcbuffer.Buffer. It extends GarbageCollector with a start/drain lifecycle;
// kept as an interface here (rather than importing gcbuffer directly) to
// avoid a cycle, since gcbuffer imports this package for the fragment and
// row types it accumulates.
type GarbageBuffer interface {
	GarbageCollector
	StartCollectingStaticRow()
	StartCollectingClusteringRow(ClusteringKey)
	ConsumeStaticRow(sink func(StaticRowFragment))
	ConsumeClusteringRow(sink func(ClusteringRowFragment))
}
