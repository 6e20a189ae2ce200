package planir

// DDLPassthrough represents every DDL/DML plan variant (schema and index
// management, user management) the optimizer treats as an opaque
// passthrough: it never rewrites them, but still needs to carry them
// through the memo so a mixed DDL+query plan extracts cleanly.
type DDLPassthrough struct {
	base
	kind  Kind
	input PlanNode // nil for DDL operations with no upstream data flow
}

func NewDDLPassthrough(id int64, kind Kind, input PlanNode, colNames []string) *DDLPassthrough {
	return &DDLPassthrough{base: newBase(id, "", colNames), kind: kind, input: input}
}

func (d *DDLPassthrough) Kind() Kind { return d.kind }

// Input returns the upstream node, or nil for DDL operations with no
// upstream data flow (e.g. CreateTag). Callers must nil-check before
// treating a DDLPassthrough as a SingleInput.
func (d *DDLPassthrough) Input() PlanNode { return d.input }
