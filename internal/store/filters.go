package store

import "strings"

// WhereBuilder accumulates optional equality predicates and renders them as
// a parameterized WHERE clause. Values stay bound; nothing is interpolated.
// Placeholders use '?' and are rebound to the driver's syntax by the caller.
type WhereBuilder struct {
	conditions []string
	args       []any
}

func NewWhereBuilder() *WhereBuilder {
	return &WhereBuilder{}
}

// Add appends "column = ?" with its bound value. Empty string values are
// skipped so callers can pass optional filters straight through.
func (wb *WhereBuilder) Add(column string, value any) *WhereBuilder {
	if s, ok := value.(string); ok && s == "" {
		return wb
	}
	wb.conditions = append(wb.conditions, column+" = ?")
	wb.args = append(wb.args, value)
	return wb
}

// Build renders the clause. With no conditions it returns ("", nil) so the
// result can be concatenated onto a query unconditionally.
func (wb *WhereBuilder) Build() (string, []any) {
	if len(wb.conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(wb.conditions, " AND "), wb.args
}
