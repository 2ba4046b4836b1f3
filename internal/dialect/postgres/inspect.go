package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
	"github.com/koustreak/dbadmin/schema"
)

// ListTables returns the user tables in the public schema of the database
// named by u.
func (a *Admin) ListTables(ctx context.Context, u *dburl.URL) ([]string, error) {
	const q = `
		SELECT table_name
		FROM   information_schema.tables
		WHERE  table_schema = 'public'
		  AND  table_type   = 'BASE TABLE'
		ORDER BY table_name`

	if u.Database == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	conn, err := connect(ctx, u)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	rows, err := conn.Query(ctx, q)
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

// InspectTable loads the full shape of one table in the public schema:
// columns, primary key, unique constraints, foreign keys, and secondary
// indexes.
func (a *Admin) InspectTable(ctx context.Context, u *dburl.URL, table string) (*schema.Table, error) {
	if u.Database == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "connection URL names no database")
	}

	conn, err := connect(ctx, u)
	if err != nil {
		return nil, err
	}
	defer conn.Close(ctx)

	t := &schema.Table{Name: table}

	if t.Columns, err = fetchColumns(ctx, conn, table); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %q not found", table))
	}

	if t.PrimaryKey, err = fetchPrimaryKey(ctx, conn, table); err != nil {
		return nil, err
	}
	if t.Uniques, err = fetchUniques(ctx, conn, table); err != nil {
		return nil, err
	}
	if t.ForeignKeys, err = fetchForeignKeys(ctx, conn, table); err != nil {
		return nil, err
	}
	if t.Indexes, err = fetchIndexes(ctx, conn, table); err != nil {
		return nil, err
	}

	dialect.MarkColumnFlags(t)
	return t, nil
}

// --- Catalog queries ---

func fetchColumns(ctx context.Context, conn *pgx.Conn, table string) ([]*schema.Column, error) {
	const q = `
		SELECT column_name,
		       data_type,
		       is_nullable = 'YES',
		       column_default
		FROM   information_schema.columns
		WHERE  table_schema = 'public'
		  AND  table_name   = $1
		ORDER BY ordinal_position`

	rows, err := conn.Query(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "fetch columns for "+table)
	}
	defer rows.Close()

	var cols []*schema.Column
	for rows.Next() {
		var c schema.Column
		if err := rows.Scan(&c.Name, &c.DataType, &c.Nullable, &c.Default); err != nil {
			return nil, mapError(err, "scan column for "+table)
		}
		cols = append(cols, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "fetch columns for "+table)
	}
	return cols, nil
}

func fetchPrimaryKey(ctx context.Context, conn *pgx.Conn, table string) (*schema.Constraint, error) {
	const q = `
		SELECT tc.constraint_name,
		       kcu.column_name
		FROM   information_schema.table_constraints tc
		JOIN   information_schema.key_column_usage kcu
		  ON   tc.constraint_name = kcu.constraint_name
		 AND   tc.table_schema    = kcu.table_schema
		WHERE  tc.constraint_type = 'PRIMARY KEY'
		  AND  tc.table_schema    = 'public'
		  AND  tc.table_name      = $1
		ORDER BY kcu.ordinal_position`

	rows, err := conn.Query(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "fetch primary key for "+table)
	}
	defer rows.Close()

	var pk *schema.Constraint
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return nil, mapError(err, "scan primary key for "+table)
		}
		if pk == nil {
			pk = &schema.Constraint{Name: name}
		}
		pk.Columns = append(pk.Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "fetch primary key for "+table)
	}
	return pk, nil
}

func fetchUniques(ctx context.Context, conn *pgx.Conn, table string) ([]schema.Constraint, error) {
	const q = `
		SELECT tc.constraint_name,
		       kcu.column_name
		FROM   information_schema.table_constraints tc
		JOIN   information_schema.key_column_usage kcu
		  ON   tc.constraint_name = kcu.constraint_name
		 AND   tc.table_schema    = kcu.table_schema
		WHERE  tc.constraint_type = 'UNIQUE'
		  AND  tc.table_schema    = 'public'
		  AND  tc.table_name      = $1
		ORDER BY tc.constraint_name, kcu.ordinal_position`

	rows, err := conn.Query(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "fetch unique constraints for "+table)
	}
	defer rows.Close()

	return groupConstraints(rows, "scan unique constraint for "+table)
}

func fetchForeignKeys(ctx context.Context, conn *pgx.Conn, table string) ([]schema.ForeignKey, error) {
	const q = `
		SELECT tc.constraint_name,
		       kcu.column_name,
		       ccu.table_name  AS ref_table,
		       ccu.column_name AS ref_column
		FROM   information_schema.table_constraints tc
		JOIN   information_schema.key_column_usage kcu
		  ON   tc.constraint_name = kcu.constraint_name
		 AND   tc.table_schema    = kcu.table_schema
		JOIN   information_schema.constraint_column_usage ccu
		  ON   tc.constraint_name = ccu.constraint_name
		WHERE  tc.constraint_type = 'FOREIGN KEY'
		  AND  tc.table_schema    = 'public'
		  AND  tc.table_name      = $1
		ORDER BY tc.constraint_name, kcu.ordinal_position`

	rows, err := conn.Query(ctx, q, table)
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

func fetchIndexes(ctx context.Context, conn *pgx.Conn, table string) ([]schema.Index, error) {
	const q = `
		SELECT i.relname AS index_name,
		       a.attname AS column_name,
		       ix.indisunique
		FROM   pg_index ix
		JOIN   pg_class t     ON t.oid = ix.indrelid
		JOIN   pg_namespace n ON n.oid = t.relnamespace
		JOIN   pg_class i     ON i.oid = ix.indexrelid
		CROSS JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord)
		JOIN   pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE  n.nspname = 'public'
		  AND  t.relname = $1
		  AND  NOT ix.indisprimary
		ORDER BY i.relname, k.ord`

	rows, err := conn.Query(ctx, q, table)
	if err != nil {
		return nil, mapError(err, "fetch indexes for "+table)
	}
	defer rows.Close()

	var indexes []schema.Index
	byName := map[string]int{}
	for rows.Next() {
		var name, column string
		var unique bool
		if err := rows.Scan(&name, &column, &unique); err != nil {
			return nil, mapError(err, "scan index for "+table)
		}
		i, ok := byName[name]
		if !ok {
			i = len(indexes)
			byName[name] = i
			indexes = append(indexes, schema.Index{Name: name, Unique: unique})
		}
		indexes[i].Columns = append(indexes[i].Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "fetch indexes for "+table)
	}
	return indexes, nil
}

// groupConstraints folds (name, column) rows, ordered by name then column
// position, into constraints.
func groupConstraints(rows pgx.Rows, scanMsg string) ([]schema.Constraint, error) {
	var out []schema.Constraint
	byName := map[string]int{}
	for rows.Next() {
		var name, column string
		if err := rows.Scan(&name, &column); err != nil {
			return nil, mapError(err, scanMsg)
		}
		i, ok := byName[name]
		if !ok {
			i = len(out)
			byName[name] = i
			out = append(out, schema.Constraint{Name: name})
		}
		out[i].Columns = append(out[i].Columns, column)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, scanMsg)
	}
	return out, nil
}
