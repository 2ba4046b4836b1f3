package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

// ordersTable mimics a typical orders table: composite primary key, a
// unique constraint, one composite and one single-column index.
func ordersTable() *Table {
	return &Table{
		Name: "orders",
		Columns: []*Column{
			{Name: "region", DataType: "text", IsPrimary: true},
			{Name: "order_id", DataType: "bigint", IsPrimary: true},
			{Name: "customer_id", DataType: "bigint"},
			{Name: "reference", DataType: "text", IsUnique: true},
			{Name: "status", DataType: "text"},
			{Name: "created_at", DataType: "timestamp without time zone", Default: strPtr("now()")},
		},
		PrimaryKey: &Constraint{Name: "orders_pkey", Columns: []string{"region", "order_id"}},
		Uniques: []Constraint{
			{Name: "orders_reference_key", Columns: []string{"reference"}},
		},
		Indexes: []Index{
			{Name: "ix_orders_customer_status", Columns: []string{"customer_id", "status"}},
			{Name: "ix_orders_created_at", Columns: []string{"created_at"}},
			{Name: "uq_orders_reference", Columns: []string{"reference"}, Unique: true},
		},
	}
}

func TestHasIndex(t *testing.T) {
	tbl := ordersTable()

	tests := []struct {
		name    string
		columns []string
		want    bool
	}{
		{"full primary key", []string{"region", "order_id"}, true},
		{"primary key wrong order", []string{"order_id", "region"}, false},
		{"primary key prefix alone", []string{"region"}, false},
		{"index prefix", []string{"customer_id"}, true},
		{"full index", []string{"customer_id", "status"}, true},
		{"index suffix", []string{"status"}, false},
		{"index wrong order", []string{"status", "customer_id"}, false},
		{"longer than index", []string{"customer_id", "status", "reference"}, false},
		{"single column index", []string{"created_at"}, true},
		{"unindexed column", []string{"reference", "status"}, false},
		{"unknown column", []string{"nope"}, false},
		{"no columns", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.HasIndex(tt.columns...))
		})
	}
}

func TestHasUniqueIndex(t *testing.T) {
	tbl := ordersTable()

	tests := []struct {
		name    string
		columns []string
		want    bool
	}{
		{"full primary key", []string{"region", "order_id"}, true},
		{"primary key prefix", []string{"region"}, false},
		{"unique constraint", []string{"reference"}, true},
		{"unique index", []string{"reference"}, true},
		{"non-unique index full match", []string{"customer_id", "status"}, false},
		{"non-unique index prefix", []string{"customer_id"}, false},
		{"no columns", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tbl.HasUniqueIndex(tt.columns...))
		})
	}
}

func TestHasUniqueIndexFromUniqueIndexOnly(t *testing.T) {
	// A unique index that is not registered as a constraint still counts.
	tbl := &Table{
		Name:    "events",
		Columns: []*Column{{Name: "a"}, {Name: "b"}},
		Indexes: []Index{
			{Name: "uq_events_a_b", Columns: []string{"a", "b"}, Unique: true},
		},
	}

	assert.True(t, tbl.HasUniqueIndex("a", "b"))
	assert.False(t, tbl.HasUniqueIndex("a"), "prefix of a unique index is not unique")
	assert.True(t, tbl.HasIndex("a"), "but it is still indexed")
}

func TestColumn(t *testing.T) {
	tbl := ordersTable()

	c := tbl.Column("reference")
	if assert.NotNil(t, c) {
		assert.True(t, c.IsUnique)
	}
	assert.Nil(t, tbl.Column("missing"))
}

func TestIsAutoAssignedDateColumn(t *testing.T) {
	tests := []struct {
		name   string
		column *Column
		want   bool
	}{
		{"timestamp with default", &Column{Name: "created_at", DataType: "timestamp without time zone", Default: strPtr("now()")}, true},
		{"timestamptz with default", &Column{Name: "created_at", DataType: "timestamp with time zone", Default: strPtr("CURRENT_TIMESTAMP")}, true},
		{"datetime with on update", &Column{Name: "updated_at", DataType: "datetime", OnUpdate: strPtr("CURRENT_TIMESTAMP")}, true},
		{"datetime2 with default", &Column{Name: "created_at", DataType: "datetime2", Default: strPtr("getdate()")}, true},
		{"date with default", &Column{Name: "day", DataType: "DATE", Default: strPtr("CURRENT_DATE")}, true},
		{"smalldatetime with default", &Column{Name: "seen", DataType: "smalldatetime", Default: strPtr("getdate()")}, true},
		{"timestamp without assignment", &Column{Name: "created_at", DataType: "timestamp"}, false},
		{"plain date without assignment", &Column{Name: "day", DataType: "date"}, false},
		{"time of day with default", &Column{Name: "at", DataType: "time", Default: strPtr("now()")}, false},
		{"integer with default", &Column{Name: "n", DataType: "integer", Default: strPtr("0")}, false},
		{"text with default", &Column{Name: "s", DataType: "text", Default: strPtr("'x'")}, false},
		{"nil column", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAutoAssignedDateColumn(tt.column))
		})
	}
}
