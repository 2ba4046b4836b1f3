package schema

import "strings"

// HasIndex reports whether a query filtering on exactly the given columns,
// in order, can be answered from an index on t. That holds when the columns
// are the full primary key, or a leading prefix of any secondary index.
//
// Column order matters: an index on (a, b) covers HasIndex("a") and
// HasIndex("a", "b") but not HasIndex("b").
func (t *Table) HasIndex(columns ...string) bool {
	if len(columns) == 0 {
		return false
	}
	if t.PrimaryKey != nil && equal(t.PrimaryKey.Columns, columns) {
		return true
	}
	for _, idx := range t.Indexes {
		if isPrefix(idx.Columns, columns) {
			return true
		}
	}
	return false
}

// HasUniqueIndex reports whether the given columns, in order, are
// guaranteed unique together: they are the full primary key, a unique
// constraint, or a unique index. Unlike HasIndex, a prefix is not enough:
// uniqueness of (a, b) says nothing about a alone.
func (t *Table) HasUniqueIndex(columns ...string) bool {
	if len(columns) == 0 {
		return false
	}
	if t.PrimaryKey != nil && equal(t.PrimaryKey.Columns, columns) {
		return true
	}
	for _, uq := range t.Uniques {
		if equal(uq.Columns, columns) {
			return true
		}
	}
	for _, idx := range t.Indexes {
		if idx.Unique && equal(idx.Columns, columns) {
			return true
		}
	}
	return false
}

// IsAutoAssignedDateColumn reports whether c is a date or datetime column
// whose value the server assigns on its own, through a default or an
// ON UPDATE clause. Such columns (created_at, updated_at, …) can be left
// out of INSERT statements entirely.
func IsAutoAssignedDateColumn(c *Column) bool {
	if c == nil {
		return false
	}
	return isDateType(c.DataType) && (c.Default != nil || c.OnUpdate != nil)
}

// isDateType matches the date/datetime family across dialects: date,
// datetime, datetime2, datetimeoffset, smalldatetime, timestamp, and
// timestamp with/without time zone. Plain time-of-day types do not count.
func isDateType(dataType string) bool {
	t := strings.ToLower(strings.TrimSpace(dataType))
	switch {
	case t == "date", t == "smalldatetime":
		return true
	case strings.HasPrefix(t, "datetime"), strings.HasPrefix(t, "timestamp"):
		return true
	}
	return false
}

func equal(a, b []string) bool {
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

// isPrefix reports whether want is a leading prefix of indexColumns.
func isPrefix(indexColumns, want []string) bool {
	if len(want) > len(indexColumns) {
		return false
	}
	return equal(indexColumns[:len(want)], want)
}
