package mssql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
	"github.com/koustreak/dbadmin/schema"
)

// --- Introspection ---

// ListTables returns the base tables in the default schema of the database
// named by u, sorted by name.
func (a *Admin) ListTables(ctx context.Context, u *dburl.URL) ([]string, error) {
	if u.Database == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	db, err := open(ctx, u)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	const q = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE' AND table_schema = SCHEMA_NAME()
		ORDER BY table_name`

	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		return nil, mapError(err, "list tables")
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, mapError(err, "scan table name")
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "list tables")
	}
	return tables, nil
}

// InspectTable describes the named table: columns, primary key, unique
// constraints, foreign keys, and secondary indexes.
func (a *Admin) InspectTable(ctx context.Context, u *dburl.URL, table string) (*schema.Table, error) {
	if u.Database == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	db, err := open(ctx, u)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	t := &schema.Table{Name: table}
	if err := fetchColumns(ctx, db, t); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %q not found", table))
	}
	if err := fetchIndexes(ctx, db, t); err != nil {
		return nil, err
	}
	if err := fetchForeignKeys(ctx, db, t); err != nil {
		return nil, err
	}
	dialect.MarkColumnFlags(t)
	return t, nil
}

func fetchColumns(ctx context.Context, db *sql.DB, t *schema.Table) error {
	const q = `
		SELECT column_name, data_type, is_nullable, column_default
		FROM information_schema.columns
		WHERE table_name = @p1 AND table_schema = SCHEMA_NAME()
		ORDER BY ordinal_position`

	rows, err := db.QueryContext(ctx, q, t.Name)
	if err != nil {
		return mapError(err, "describe columns of "+t.Name)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			col      schema.Column
			nullable string
			def      sql.NullString
		)
		if err := rows.Scan(&col.Name, &col.DataType, &nullable, &def); err != nil {
			return mapError(err, "scan column of "+t.Name)
		}
		col.Nullable = nullable == "YES"
		if def.Valid {
			col.Default = &def.String
		}
		t.Columns = append(t.Columns, &col)
	}
	return mapError(rows.Err(), "describe columns of "+t.Name)
}

// fetchIndexes reads every key of the table in one pass over sys.indexes.
// The primary key and unique constraints are split out; everything else,
// unique or not, lands in Indexes.
func fetchIndexes(ctx context.Context, db *sql.DB, t *schema.Table) error {
	const q = `
		SELECT i.name, i.is_unique, i.is_primary_key, i.is_unique_constraint, c.name
		FROM sys.indexes AS i
		JOIN sys.index_columns AS ic ON ic.object_id = i.object_id AND ic.index_id = i.index_id
		JOIN sys.columns AS c ON c.object_id = ic.object_id AND c.column_id = ic.column_id
		WHERE i.object_id = OBJECT_ID(@p1) AND ic.key_ordinal > 0
		ORDER BY i.index_id, ic.key_ordinal`

	rows, err := db.QueryContext(ctx, q, t.Name)
	if err != nil {
		return mapError(err, "describe indexes of "+t.Name)
	}
	defer rows.Close()

	type key struct {
		unique     bool
		primary    bool
		constraint bool
		columns    []string
	}
	keys := make(map[string]*key)
	var order []string

	for rows.Next() {
		var (
			name       sql.NullString
			unique     bool
			primary    bool
			constraint bool
			column     string
		)
		if err := rows.Scan(&name, &unique, &primary, &constraint, &column); err != nil {
			return mapError(err, "scan index of "+t.Name)
		}
		k, ok := keys[name.String]
		if !ok {
			k = &key{unique: unique, primary: primary, constraint: constraint}
			keys[name.String] = k
			order = append(order, name.String)
		}
		k.columns = append(k.columns, column)
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "describe indexes of "+t.Name)
	}

	for _, name := range order {
		k := keys[name]
		switch {
		case k.primary:
			t.PrimaryKey = &schema.Constraint{Name: name, Columns: k.columns}
		case k.constraint:
			t.Uniques = append(t.Uniques, schema.Constraint{Name: name, Columns: k.columns})
		default:
			t.Indexes = append(t.Indexes, schema.Index{Name: name, Columns: k.columns, Unique: k.unique})
		}
	}
	return nil
}

func fetchForeignKeys(ctx context.Context, db *sql.DB, t *schema.Table) error {
	const q = `
		SELECT fk.name, pc.name, rt.name, rc.name
		FROM sys.foreign_keys AS fk
		JOIN sys.foreign_key_columns AS fkc ON fkc.constraint_object_id = fk.object_id
		JOIN sys.columns AS pc ON pc.object_id = fkc.parent_object_id AND pc.column_id = fkc.parent_column_id
		JOIN sys.tables AS rt ON rt.object_id = fkc.referenced_object_id
		JOIN sys.columns AS rc ON rc.object_id = fkc.referenced_object_id AND rc.column_id = fkc.referenced_column_id
		WHERE fk.parent_object_id = OBJECT_ID(@p1)
		ORDER BY fk.name, fkc.constraint_column_id`

	rows, err := db.QueryContext(ctx, q, t.Name)
	if err != nil {
		return mapError(err, "describe foreign keys of "+t.Name)
	}
	defer rows.Close()

	byName := make(map[string]int)
	for rows.Next() {
		var name, column, refTable, refColumn string
		if err := rows.Scan(&name, &column, &refTable, &refColumn); err != nil {
			return mapError(err, "scan foreign key of "+t.Name)
		}
		i, ok := byName[name]
		if !ok {
			i = len(t.ForeignKeys)
			byName[name] = i
			t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{
				Constraint: schema.Constraint{Name: name},
				RefTable:   refTable,
			})
		}
		fk := &t.ForeignKeys[i]
		fk.Columns = append(fk.Columns, column)
		fk.RefColumns = append(fk.RefColumns, refColumn)
	}
	return mapError(rows.Err(), "describe foreign keys of "+t.Name)
}
