package mutcompact

import "context"

// Mode selects between the two operating modes compact_mutation_state
// specialized on in the source system: query-time compaction (limits
// enforced, garbage never emitted) and SSTable-rewrite compaction (no
// limits, garbage forwarded to a GC consumer).
type Mode uint8

// The two compaction modes.
const (
	ModeQuery Mode = iota
	ModeCompaction
)

// sstable reports whether m is the SSTable-rewrite mode; kept as a method so
// call sites read like the source system's `if constexpr (sstable_compaction())`
// branches without actually needing compile-time specialization.
func (m Mode) sstable() bool { return m == ModeCompaction }

// QueryConfig configures a query-mode CompactorState.
type QueryConfig struct {
	Schema         Schema
	QueryTime      WallTime
	GCPolicy       GCPolicy
	Slice          PartitionSlice
	RowLimit       uint64
	PartitionLimit uint32
	Logger         Logger // optional, defaults to a no-op
}

// CompactionConfig configures a SSTable-compaction-mode CompactorState.
type CompactionConfig struct {
	Schema         Schema
	CompactionTime WallTime
	GCPolicy       GCPolicy
	Oracle         PurgeableOracle
	Collector      GarbageBuffer
	Logger         Logger // optional, defaults to a no-op
}

// CompactorState is the heart of the compactor: per-partition bookkeeping,
// the active range tombstone, emission history, limits and stats, plus the
// fragment-consume operations. It is created once and then fed a sequence
// of (PartitionStart … PartitionEnd) groups via its Consume* methods; it is
// reset per-partition by ConsumeNewPartition and per-page by StartNewPage,
// and is only valid to use via a *CompactorState — see noCopy.
type CompactorState struct {
	_ noCopy

	mode      Mode
	schema    Schema
	queryTime WallTime
	gcPolicy  GCPolicy
	oracle    PurgeableOracle // nil in query mode
	collector GarbageBuffer   // nil in query mode
	logger    Logger

	slice             PartitionSlice
	rowLimit          uint64
	partitionLimit    uint32
	partitionRowLimit uint64

	partitionTombstone Tombstone

	staticRowLive                  bool
	rowsInPartition                uint64
	currentPartitionLimit          uint64
	emptyPartition                 bool
	emptyPartitionForGC            bool
	dk                             *DecoratedKey
	lastDK                         DecoratedKey
	returnStaticContentOnEmptyRows bool

	lastStaticRow             *StaticRowFragment
	lastPos                   PositionInPartition
	effectiveRangeTombstone   Tombstone
	currentEmittedTombstone   Tombstone
	currentEmittedGCTombstone Tombstone

	maxPurgeable Timestamp
	gcBeforeSet  bool
	gcBefore     WallTime

	stats   CompactionStats
	stop    StopIteration
	faulted bool
}

// NewQueryState builds a CompactorState in query mode: limits are enforced
// and no GC consumer traffic is ever produced, though tombstones are still
// applied to shadow data.
func NewQueryState(cfg QueryConfig) *CompactorState {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &CompactorState{
		mode:              ModeQuery,
		schema:            cfg.Schema,
		queryTime:         cfg.QueryTime,
		gcPolicy:          cfg.GCPolicy,
		logger:            logger,
		slice:             cfg.Slice,
		rowLimit:          cfg.RowLimit,
		partitionLimit:    cfg.PartitionLimit,
		partitionRowLimit: cfg.Slice.partitionRowLimit(),
		lastPos:           EndOfPartition(),
	}
}

// NewCompactionState builds a CompactorState in SSTable-compaction mode:
// limits are unbounded and purged data is forwarded to cfg.Collector for
// the caller's GC consumer.
func NewCompactionState(cfg CompactionConfig) *CompactorState {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &CompactorState{
		mode:      ModeCompaction,
		schema:    cfg.Schema,
		queryTime: cfg.CompactionTime,
		gcPolicy:  cfg.GCPolicy,
		oracle:    cfg.Oracle,
		collector: cfg.Collector,
		logger:    logger,
		slice:     cfg.Schema.FullSlice(),
		lastPos:   EndOfPartition(),
	}
}

// ConsumeNewPartition resets all per-partition state. It must be called
// exactly once before any other Consume* call for a given partition.
func (s *CompactorState) ConsumeNewPartition(dk DecoratedKey) {
	assertf(s.dk == nil || s.emptyPartition || s.stop == StopNow,
		"consume_new_partition called mid-partition without a prior end-of-partition")

	s.stop = ContinueIteration
	s.dk = &dk
	ranges := s.slice.Ranges
	s.returnStaticContentOnEmptyRows = s.slice.AlwaysReturnStaticContent || !hasClusteringSelector(ranges)
	s.emptyPartition = true
	s.emptyPartitionForGC = true
	s.rowsInPartition = 0
	s.staticRowLive = false
	s.partitionTombstone = Tombstone{Timestamp: MissingTimestamp}
	if s.mode.sstable() {
		s.currentPartitionLimit = ^uint64(0)
	} else {
		s.currentPartitionLimit = minU64(s.rowLimit, s.partitionRowLimit)
	}
	s.maxPurgeable = MissingTimestamp
	s.gcBeforeSet = false
	s.lastStaticRow = nil
	s.lastPos = PartitionStart()
	s.effectiveRangeTombstone = Tombstone{Timestamp: MissingTimestamp}
	s.currentEmittedTombstone = Tombstone{Timestamp: MissingTimestamp}
	s.currentEmittedGCTombstone = Tombstone{Timestamp: MissingTimestamp}
}

// CurrentPartition returns the decorated key of the partition currently
// being compacted, or nil if compaction has not started yet.
func (s *CompactorState) CurrentPartition() *DecoratedKey { return s.dk }

// CurrentPosition returns the position last consumed within the current
// partition.
func (s *CompactorState) CurrentPosition() PositionInPartition { return s.lastPos }

// FullPosition pairs the current partition key with CurrentPosition, or
// reports ok=false if compaction has not started.
func (s *CompactorState) FullPosition() (dk DecoratedKey, pos PositionInPartition, ok bool) {
	if s.dk == nil {
		return DecoratedKey{}, PositionInPartition{}, false
	}
	return *s.dk, s.lastPos, true
}

// LimitsReached reports whether the row or partition limit is already
// exhausted, without consuming another fragment. Always false in SSTable
// mode.
func (s *CompactorState) LimitsReached() bool {
	return !s.mode.sstable() && (s.rowLimit == 0 || s.partitionLimit == 0)
}

// Stats returns the counters accumulated since the last StartNewPage (or
// construction).
func (s *CompactorState) Stats() CompactionStats { return s.stats }

func minU64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}

// partitionIsNotEmpty lazily announces the partition to consumer the first
// time a fragment survives compaction, and forwards the partition tombstone
// if it is not itself purgeable.
func (s *CompactorState) partitionIsNotEmpty(ctx context.Context, consumer MainConsumer) error {
	if !s.emptyPartition {
		return nil
	}
	s.emptyPartition = false
	s.stats.Partitions++
	if err := consumer.ConsumeNewPartition(ctx, *s.dk); err != nil {
		return faultf(err, "compactor: main consumer rejected new partition")
	}
	pt := s.partitionTombstone
	if !pt.Empty() {
		purge, err := s.canPurgeTombstone(ctx, pt)
		if err != nil {
			return err
		}
		if !purge {
			if err := consumer.ConsumePartitionTombstone(ctx, pt); err != nil {
				return faultf(err, "compactor: main consumer rejected partition tombstone")
			}
		}
	}
	return nil
}

// partitionIsNotEmptyForGC is the GC-consumer analogue of
// partitionIsNotEmpty: only ever called in SSTable mode.
func (s *CompactorState) partitionIsNotEmptyForGC(ctx context.Context, gc GCConsumer) error {
	if !s.emptyPartitionForGC {
		return nil
	}
	s.emptyPartitionForGC = false
	if err := gc.ConsumeNewPartition(ctx, *s.dk); err != nil {
		return faultf(err, "compactor: gc consumer rejected new partition")
	}
	pt := s.partitionTombstone
	if !pt.Empty() {
		purge, err := s.canPurgeTombstone(ctx, pt)
		if err != nil {
			return err
		}
		if purge {
			if err := gc.ConsumePartitionTombstone(ctx, pt); err != nil {
				return faultf(err, "compactor: gc consumer rejected partition tombstone")
			}
		}
	}
	return nil
}

// ForcePartitionNotEmpty forces the lazy partition-start announcement to
// happen immediately, even though no fragment triggered it. This is the
// escape hatch callers that need the main consumer to observe an empty
// partition reach for (e.g. for accounting).
func (s *CompactorState) ForcePartitionNotEmpty(ctx context.Context, consumer MainConsumer) error {
	return s.partitionIsNotEmpty(ctx, consumer)
}
