package memo

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"

	"github.com/kkkqkx123/graphdb-optimizer/internal/planir"
)

// StructuralHash returns a quick structural-equality prefilter for a
// candidate group-member: its node kind plus its dependency group ids.
// Rules use it (via OptGroup.HasMemberLike) to recognize "already produced
// this member for this group" without a full deep-equal walk over the
// wrapped plan node — the termination guarantee spec §4.5 places on every
// rule. Grounded on the teacher's xxhash/v2 closure (pulled in transitively
// by badger's internal hashing).
func StructuralHash(kind planir.Kind, deps []GroupID) uint64 {
	buf := make([]byte, 0, 8+8*len(deps))
	buf = binary.LittleEndian.AppendUint64(buf, uint64(kind))
	for _, d := range deps {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(d))
	}
	return xxhash.Sum64(buf)
}

func sameDeps(a, b []GroupID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
