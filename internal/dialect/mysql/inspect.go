package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
	"github.com/koustreak/dbadmin/schema"
)

// ListTables returns the base tables of the schema named by u.
func (a *Admin) ListTables(ctx context.Context, u *dburl.URL) ([]string, error) {
	const q = `
		SELECT table_name
		FROM   information_schema.tables
		WHERE  table_schema = DATABASE()
		  AND  table_type   = 'BASE TABLE'
		ORDER BY table_name`

	if u.Database == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	db, err := open(ctx, u)
	if err != nil {
		return nil, err
	}
	defer db.Close()

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

// InspectTable loads the full shape of one table in the schema named by u.
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

	if t.Columns, err = fetchColumns(ctx, db, table); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %q not found", table))
	}

	if err = fetchIndexes(ctx, db, table, t); err != nil {
		return nil, err
	}
	if t.ForeignKeys, err = fetchForeignKeys(ctx, db, table); err != nil {
		return nil, err
	}

	dialect.MarkColumnFlags(t)
	return t, nil
}

// --- Catalog queries ---

func fetchColumns(ctx context.Context, db *sql.DB, table string) ([]*schema.Column, error) {
	const q = `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES',
		       column_default,
		       extra
		FROM   information_schema.columns
		WHERE  table_schema = DATABASE()
		  AND  table_name   = ?
		ORDER BY ordinal_position`

	rows, err := db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "fetch columns for "+table)
	}
	defer rows.Close()

	var cols []*schema.Column
	for rows.Next() {
		var c schema.Column
		var extra string
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.Default, &extra); err != nil {
			return nil, mapError(err, "scan column for "+table)
		}
		if clause, ok := onUpdateClause(extra); ok {
			c.OnUpdate = &clause
		}
		cols = append(cols, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "fetch columns for "+table)
	}
	return cols, nil
}

// onUpdateClause extracts the expression from an EXTRA value like
// "on update CURRENT_TIMESTAMP".
func onUpdateClause(extra string) (string, bool) {
	const marker = "on update "
	i := strings.Index(strings.ToLower(extra), marker)
	if i < 0 {
		return "", false
	}
	return strings.TrimSpace(extra[i+len(marker):]), true
}

// fetchIndexes reads information_schema.statistics and fills in the primary
// key, unique constraints, and secondary indexes. MySQL models unique
// constraints as unique indexes, so every unique index is reported in both
// lists.
func fetchIndexes(ctx context.Context, db *sql.DB, table string, t *schema.Table) error {
	const q = `
		SELECT index_name,
		       column_name,
		       non_unique = 0
		FROM   information_schema.statistics
		WHERE  table_schema = DATABASE()
		  AND  table_name   = ?
		ORDER BY index_name, seq_in_index`

	rows, err := db.QueryContext(ctx, q, table)
	if err != nil {
		return mapError(err, "fetch indexes for "+table)
	}
	defer rows.Close()

	type indexAcc struct {
		columns []string
		unique  bool
	}
	var order []string
	byName := map[string]*indexAcc{}

	for rows.Next() {
		var name, column string
		var unique bool
		if err := rows.Scan(&name, &column, &unique); err != nil {
			return mapError(err, "scan index for "+table)
		}
		acc, ok := byName[name]
		if !ok {
			acc = &indexAcc{unique: unique}
			byName[name] = acc
			order = append(order, name)
		}
		acc.columns = append(acc.columns, column)
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "fetch indexes for "+table)
	}

	for _, name := range order {
		acc := byName[name]
		if name == "PRIMARY" {
			t.PrimaryKey = &schema.Constraint{Name: name, Columns: acc.columns}
			continue
		}
		t.Indexes = append(t.Indexes, schema.Index{Name: name, Columns: acc.columns, Unique: acc.unique})
		if acc.unique {
			t.Uniques = append(t.Uniques, schema.Constraint{Name: name, Columns: acc.columns})
		}
	}
	return nil
}

func fetchForeignKeys(ctx context.Context, db *sql.DB, table string) ([]schema.ForeignKey, error) {
	const q = `
		SELECT constraint_name,
		       column_name,
		       referenced_table_name,
		       referenced_column_name
		FROM   information_schema.key_column_usage
		WHERE  table_schema           = DATABASE()
		  AND  table_name             = ?
		  AND  referenced_table_name IS NOT NULL
		ORDER BY constraint_name, ordinal_position`

	rows, err := db.QueryContext(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "fetch foreign keys for "+table)
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	byName := map[string]int{}
	for rows.Next() {
		var name, column, refTable, refColumn string
		if err := rows.Scan(&name, &column, &refTable, &refColumn); err != nil {
			return nil, mapError(err, "scan foreign key for "+table)
		}
		i, ok := byName[name]
		if !ok {
			i = len(fks)
			byName[name] = i
			fks = append(fks, schema.ForeignKey{
				Constraint: schema.Constraint{Name: name},
				RefTable:   refTable,
			})
		}
		fks[i].Columns = append(fks[i].Columns, column)
		fks[i].RefColumns = append(fks[i].RefColumns, refColumn)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "fetch foreign keys for "+table)
	}
	return fks, nil
}
