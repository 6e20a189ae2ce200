package costmodel

import "testing"

func TestTopNCheaperThanSortWhenKSmall(t *testing.T) {
	c := NewCalculator(Default(), nil)
	rows := 1_000_000.0
	k := 10

	topN := c.TopNCost(rows, k)
	sort := c.SortCost(rows, 1)

	if topN >= sort {
		t.Fatalf("TopNCost(%v, %d) = %v, want < SortCost = %v", rows, k, topN, sort)
	}
}

func TestHashJoinScalesLinearly(t *testing.T) {
	c := NewCalculator(Default(), nil)
	small := c.HashJoinCost(10, 10)
	large := c.HashJoinCost(1000, 1000)
	if large <= small*50 {
		t.Errorf("expected roughly linear scaling, got small=%v large=%v", small, large)
	}
}

func TestPresetsDiffer(t *testing.T) {
	d, ssd, mem := Default(), SSD(), InMemory()
	if d.RandomPageCost == ssd.RandomPageCost {
		t.Errorf("expected SSD preset to change RandomPageCost")
	}
	if d.SeqPageCost == mem.SeqPageCost {
		t.Errorf("expected in-memory preset to change SeqPageCost")
	}
}
