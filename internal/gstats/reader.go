package gstats

// Reader is the read-only statistics surface the optimizer consults
// (spec §6). *StatisticsManager implements it directly, and the tests
// pass a populated *StatisticsManager as well.
type Reader interface {
	GetTagStats(tag string) (*TagStatistics, bool)
	GetEdgeStats(edgeType string) (*EdgeTypeStatistics, bool)
	GetPropertyStats(tag, property string) (*PropertyStatistics, bool)
	TagIDToName(id int64) (string, bool)
	Version() int64
}

var _ Reader = (*StatisticsManager)(nil)
