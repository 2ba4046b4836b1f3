// Package schema models introspected relational tables and answers
// index and constraint presence questions about them.
//
// Table values are produced by the introspection operations and consumed
// by the predicates:
//
//	t, err := dbadmin.InspectTable(ctx, url, "users")
//	if err != nil {
//	    return err
//	}
//	if !t.HasIndex("email") {
//	    log.Warn("users.email is unindexed")
//	}
package schema

// Column describes a single table column.
type Column struct {
	Name     string `json:"name"`
	DataType string `json:"data_type"`
	Nullable bool   `json:"nullable"`

	// Default is the server-side default expression, nil when absent.
	Default *string `json:"default,omitempty"`

	// OnUpdate is the server-side ON UPDATE expression (MySQL), nil when
	// absent.
	OnUpdate *string `json:"on_update,omitempty"`

	IsPrimary bool `json:"is_primary"`
	IsUnique  bool `json:"is_unique"`
}

// Constraint is a named, ordered set of columns: a primary key or a unique
// constraint. Name may be empty on backends that keep constraints unnamed.
type Constraint struct {
	Name    string   `json:"name,omitempty"`
	Columns []string `json:"columns"`
}

// ForeignKey describes a referential constraint to another table.
type ForeignKey struct {
	Constraint
	RefTable   string   `json:"ref_table"`
	RefColumns []string `json:"ref_columns"`
}

// Index describes a secondary index. The primary key index is reported as
// Table.PrimaryKey, not here.
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
}

// Table is the introspected shape of one relational table.
type Table struct {
	Name        string       `json:"name"`
	Columns     []*Column    `json:"columns"`
	PrimaryKey  *Constraint  `json:"primary_key,omitempty"`
	Uniques     []Constraint `json:"uniques,omitempty"`
	ForeignKeys []ForeignKey `json:"foreign_keys,omitempty"`
	Indexes     []Index      `json:"indexes,omitempty"`
}

// Column returns the column with the given name, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}
