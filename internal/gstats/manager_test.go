package gstats

import "testing"

func TestStatisticsManagerRefreshBumpsVersion(t *testing.T) {
	m := NewStatisticsManager()
	if v := m.Version(); v != 0 {
		t.Fatalf("expected initial version 0, got %d", v)
	}

	m.RefreshTagStats(TagStatistics{Name: "person", VertexCount: 1000})

	if v := m.Version(); v != 1 {
		t.Fatalf("expected version 1 after refresh, got %d", v)
	}

	got, ok := m.GetTagStats("person")
	if !ok {
		t.Fatalf("expected tag stats for person")
	}
	if got.VertexCount != 1000 {
		t.Errorf("VertexCount = %d, want 1000", got.VertexCount)
	}
}

func TestStatisticsManagerUnknownTag(t *testing.T) {
	m := NewStatisticsManager()
	if _, ok := m.GetTagStats("missing"); ok {
		t.Fatalf("expected no stats for unregistered tag")
	}
}

func TestStatisticsManagerTagIDToName(t *testing.T) {
	m := NewStatisticsManager()
	m.RegisterTagID(7, "person")

	name, ok := m.TagIDToName(7)
	if !ok || name != "person" {
		t.Fatalf("TagIDToName(7) = (%q, %v), want (\"person\", true)", name, ok)
	}
	if _, ok := m.TagIDToName(99); ok {
		t.Fatalf("expected no name for unregistered id")
	}
}
