package gstats

import "sync"

// propKey identifies a property, scoped to a tag (or "" for an edge-type
// or untagged property).
type propKey struct {
	tag  string
	prop string
}

// StatisticsManager is the catalog's statistics store. All shared mutable
// state goes through this type's RWMutex: reads are concurrent, writes are
// exclusive, matching spec §5's "write-rare, read-heavy" requirement.
type StatisticsManager struct {
	mu         sync.RWMutex
	tags       map[string]*TagStatistics
	edges      map[string]*EdgeTypeStatistics
	props      map[propKey]*PropertyStatistics
	tagIDName  map[int64]string
	edgeIDName map[int64]string
	version    int64
}

// NewStatisticsManager returns an empty manager at version 0.
func NewStatisticsManager() *StatisticsManager {
	return &StatisticsManager{
		tags:       make(map[string]*TagStatistics),
		edges:      make(map[string]*EdgeTypeStatistics),
		props:      make(map[propKey]*PropertyStatistics),
		tagIDName:  make(map[int64]string),
		edgeIDName: make(map[int64]string),
	}
}

// Version returns the current statistics version; it is bumped by every
// Refresh* call (Register* id-name mappings leave it unchanged) so the
// decision cache can detect staleness.
func (m *StatisticsManager) Version() int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version
}

// GetTagStats returns the statistics for tag, if known.
func (m *StatisticsManager) GetTagStats(tag string) (*TagStatistics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.tags[tag]
	return s, ok
}

// GetEdgeStats returns the statistics for edgeType, if known.
func (m *StatisticsManager) GetEdgeStats(edgeType string) (*EdgeTypeStatistics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.edges[edgeType]
	return s, ok
}

// GetPropertyStats returns the statistics for (tag, property); tag == ""
// looks up an edge-type-scoped property.
func (m *StatisticsManager) GetPropertyStats(tag, property string) (*PropertyStatistics, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.props[propKey{tag: tag, prop: property}]
	return s, ok
}

// TagIDToName resolves an internal tag id to its name, for leaf nodes that
// only carry the id (spec §6).
func (m *StatisticsManager) TagIDToName(id int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.tagIDName[id]
	return name, ok
}

// EdgeIDToName resolves an internal edge-type id to its name.
func (m *StatisticsManager) EdgeIDToName(id int64) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	name, ok := m.edgeIDName[id]
	return name, ok
}

// RefreshTagStats installs fresh statistics for a tag, as produced by the
// separate ANALYZE collaborator. Never called by optimizer rules.
func (m *StatisticsManager) RefreshTagStats(s TagStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags[s.Name] = &s
	m.version++
}

// RefreshEdgeStats installs fresh statistics for an edge type.
func (m *StatisticsManager) RefreshEdgeStats(s EdgeTypeStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[s.Name] = &s
	m.version++
}

// RefreshPropertyStats installs fresh statistics for a property.
func (m *StatisticsManager) RefreshPropertyStats(s PropertyStatistics) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.props[propKey{tag: s.TagName, prop: s.Property}] = &s
	m.version++
}

// RegisterTagID records the id->name mapping for a tag.
func (m *StatisticsManager) RegisterTagID(id int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tagIDName[id] = name
}

// RegisterEdgeID records the id->name mapping for an edge type.
func (m *StatisticsManager) RegisterEdgeID(id int64, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edgeIDName[id] = name
}
