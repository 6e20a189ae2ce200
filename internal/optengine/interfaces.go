package optengine

import (
	"time"

	"github.com/kkkqkx123/graphdb-optimizer/internal/gstats"
)

// SchemaManager looks up tag/edge/property metadata for the space the
// current query runs against (spec §6). The optimizer only needs to know
// that one exists on the QueryContext; it never calls it directly today,
// but IndexScanRule's candidate-index wiring and future schema-aware
// rules read through it.
type SchemaManager interface {
	TagExists(name string) bool
	EdgeTypeExists(name string) bool
}

// IndexMetadataManager lists the indexes available for a tag, and
// reports the index catalog's current version for decision-cache
// invalidation (spec §4.7).
type IndexMetadataManager interface {
	IndexesForTag(tag string) []IndexInfo
	IndexVersion() int64
}

// IndexInfo describes one index as the engine needs it to build
// rules.IndexCandidate values.
type IndexInfo struct {
	IndexID        int64
	IndexedColumns []string
	ReturnColumns  []string
}

// QueryContext is everything one optimize() call needs beyond the plan
// itself (spec §6): the target space, schema/index/statistics managers,
// and an optional deadline the engine checks between phases and between
// rule applications (spec §5).
type QueryContext interface {
	SpaceID() int64
	Schema() SchemaManager
	Indexes() IndexMetadataManager
	Stats() gstats.Reader
	Deadline() (time.Time, bool)
}
