package mutcompact

// ColumnDefinition is the minimal piece of schema metadata the compactor and
// its garbage collector need: enough to route a purged cell back to a
// concrete column when building a synthetic dead row.
type ColumnDefinition struct {
	ID   ColumnID
	Kind ColumnKind
	Name string
}

// ClusteringRange is one contiguous span of the clustering-key selection a
// query requested. The compactor only ever needs to know whether a range is
// "full" (unrestricted); it never evaluates bounds itself.
type ClusteringRange struct {
	Full bool
}

// PartitionSlice is the query-mode selection driving row/partition limits
// and whether static content should surface for partitions with no
// clustering rows.
type PartitionSlice struct {
	// Ranges restricts which clustering rows are of interest. Only a
	// non-empty slice made up solely of Full ranges counts as "no clustering
	// selector" for the purposes of ReturnStaticContentOnEmptyRows; an empty
	// slice excludes every row and counts as a selector.
	Ranges []ClusteringRange

	// Distinct requests at most one row per partition (SELECT DISTINCT).
	Distinct bool

	// AlwaysReturnStaticContent forces static rows to surface even for a
	// partition with no clustering rows selected.
	AlwaysReturnStaticContent bool

	// PartitionRowLimit caps the number of clustering rows returned per
	// partition; ignored when Distinct is set (that implies a limit of 1).
	PartitionRowLimit uint64
}

// partitionRowLimit resolves the effective per-partition row limit. A zero
// PartitionRowLimit means "no per-partition cap was requested", not "zero
// rows", so it resolves to the maximum representable limit.
func (s PartitionSlice) partitionRowLimit() uint64 {
	if s.Distinct {
		return 1
	}
	if s.PartitionRowLimit == 0 {
		return ^uint64(0)
	}
	return s.PartitionRowLimit
}

// hasClusteringSelector reports whether ranges restricts the clustering key
// space at all. Like an empty partition-key range, an empty clustering
// range list is treated as "exclude everything" rather than "everything".
func hasClusteringSelector(ranges []ClusteringRange) bool {
	if len(ranges) == 0 {
		return true
	}
	for _, r := range ranges {
		if !r.Full {
			return true
		}
	}
	return false
}

// Schema is the external collaborator providing column metadata and the
// default (unrestricted) partition slice. It is out of scope for this
// module: production code supplies a real implementation backed by a schema
// registry.
type Schema interface {
	// ColumnAt resolves a column definition by kind and id. The compactor
	// itself only ever routes columns by ColumnID; this is exposed for
	// callers building a MainConsumer or GCConsumer that need to render a
	// compacted row back into named columns.
	ColumnAt(kind ColumnKind, id ColumnID) ColumnDefinition

	// FullSlice returns the slice used by SSTable-compaction mode, which
	// has no query-level restriction.
	FullSlice() PartitionSlice

	// CompareClustering orders two clustering keys under this schema.
	CompareClustering(a, b ClusteringKey) int
}
