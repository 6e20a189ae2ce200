// Package fingerprint computes structural fingerprints of plan trees for
// use as decision-cache keys (spec §4.7, §8 "Decision cache consistency").
// Fingerprinting ignores literal values so that two queries differing only
// in constants (e.g. age > 18 vs age > 21) share a cache entry, matching
// the teacher's reuse of xxh3 for content hashing in its triple encoding
// (internal/encoding/encoder.go).
package fingerprint

import (
	"strconv"

	"github.com/zeebo/xxh3"

	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// Of returns a stable structural fingerprint of the plan rooted at n:
// operator kinds, output variable names and column lists are folded in;
// literal values inside expressions are not, so parameterized queries with
// the same shape collide intentionally.
func Of(n planir.PlanNode) uint64 {
	h := xxh3.New()
	writeNode(h, n)
	return h.Sum64()
}

// Combined folds a fingerprint together with additional key components
// (spec §4.7's decision-cache key: query_template_hash, space_id,
// statement_kind, optional_pattern_fingerprint), in the order given.
func Combined(parts ...string) uint64 {
	h := xxh3.New()
	for _, p := range parts {
		ws(h, p)
		ws(h, "\x00")
	}
	return h.Sum64()
}

// ws writes s's bytes into h, the one place this package touches the
// hasher's Write method so every other helper can stay string-oriented.
func ws(h *xxh3.Hasher, s string) { _, _ = h.Write([]byte(s)) }

func writeNode(h *xxh3.Hasher, n planir.PlanNode) {
	if n == nil {
		ws(h, "<nil>")
		return
	}
	ws(h, n.Kind().String())
	ws(h, "|")
	ws(h, n.OutputVar())
	ws(h, "|")
	for _, c := range n.ColNames() {
		ws(h, c)
		ws(h, ",")
	}
	writeExprsOf(h, n)
	for _, child := range planir.Children(n) {
		ws(h, "(")
		writeNode(h, child)
		ws(h, ")")
	}
}

// writeExprsOf folds in the shape (not the values) of any expression the
// node kind carries, so a Filter's predicate structure participates in the
// fingerprint while its literal operands do not.
func writeExprsOf(h *xxh3.Hasher, n planir.PlanNode) {
	switch v := n.(type) {
	case *planir.Filter:
		writeExpr(h, v.Condition)
	case *planir.Sort:
		writeSortItems(h, v.Items)
	case *planir.TopN:
		writeSortItems(h, v.Items)
		ws(h, "limit="+strconv.Itoa(v.Limit))
	case *planir.Limit:
		ws(h, "offset="+strconv.Itoa(v.Offset))
	case *planir.Project:
		for _, item := range v.Items {
			writeExpr(h, item.Expr)
			ws(h, item.Alias)
		}
	case *planir.Aggregate:
		for _, k := range v.GroupKeys {
			ws(h, k)
		}
	}
}

func writeSortItems(h *xxh3.Hasher, items []planir.SortItem) {
	for _, it := range items {
		ws(h, it.Column)
		if it.Desc {
			ws(h, "!desc")
		}
	}
}

func writeExpr(h *xxh3.Hasher, e planir.Expr) {
	switch n := e.(type) {
	case nil:
		return
	case *planir.ColumnRef:
		ws(h, "col:")
		ws(h, n.Name)
	case *planir.Literal:
		// Deliberately excluded: the whole point of a structural
		// fingerprint is to be value-independent.
		ws(h, "lit")
	case *planir.BinaryExpr:
		ws(h, "bin:")
		ws(h, n.Op.String())
		writeExpr(h, n.Left)
		writeExpr(h, n.Right)
	case *planir.UnaryExpr:
		ws(h, "un:")
		ws(h, strconv.Itoa(int(n.Op)))
		writeExpr(h, n.Operand)
	case *planir.FuncCall:
		ws(h, "fn:")
		ws(h, n.Name)
		for _, a := range n.Args {
			writeExpr(h, a)
		}
	}
}
