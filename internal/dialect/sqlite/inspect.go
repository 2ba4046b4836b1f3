package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
	"github.com/koustreak/dbadmin/schema"
)

// ListTables returns the user tables in the database file, skipping the
// engine's own sqlite_* bookkeeping tables.
func (a *Admin) ListTables(ctx context.Context, u *dburl.URL) ([]string, error) {
	const q = `
		SELECT name
		FROM   sqlite_master
		WHERE  type = 'table'
		  AND  name NOT LIKE 'sqlite_%'
		ORDER BY name`

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

// InspectTable loads the full shape of one table from the PRAGMA
// interface: table_info, index_list, index_info, and foreign_key_list.
func (a *Admin) InspectTable(ctx context.Context, u *dburl.URL, table string) (*schema.Table, error) {
	db, err := open(ctx, u)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	t := &schema.Table{Name: table}

	if err := fetchColumns(ctx, db, table, t); err != nil {
		return nil, err
	}
	if len(t.Columns) == 0 {
		return nil, errs.New(errs.ErrKindNotFound, fmt.Sprintf("table %q not found", table))
	}

	if err := fetchIndexes(ctx, db, table, t); err != nil {
		return nil, err
	}
	if err := fetchForeignKeys(ctx, db, table, t); err != nil {
		return nil, err
	}

	dialect.MarkColumnFlags(t)
	return t, nil
}

// --- PRAGMA queries ---

// fetchColumns reads PRAGMA table_info. The pk column carries the 1-based
// position of the column inside the primary key, zero for non-key columns.
func fetchColumns(ctx context.Context, db *sql.DB, table string, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, "PRAGMA table_info("+quoteIdent(table)+")")
	if err != nil {
		return mapError(err, "read table_info for "+table)
	}
	defer rows.Close()

	type pkColumn struct {
		name string
		ord  int
	}
	var pkColumns []pkColumn

	for rows.Next() {
		var (
			cid, notNull, pk int
			name, dataType   string
			dflt             sql.NullString
		)
		if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
			return mapError(err, "scan table_info for "+table)
		}

		col := &schema.Column{
			Name:      name,
			DataType:  dataType,
			Nullable:  notNull == 0,
			IsPrimary: pk > 0,
		}
		if dflt.Valid {
			v := dflt.String
			col.Default = &v
		}
		t.Columns = append(t.Columns, col)

		if pk > 0 {
			pkColumns = append(pkColumns, pkColumn{name: name, ord: pk})
		}
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "read table_info for "+table)
	}

	if len(pkColumns) > 0 {
		sort.Slice(pkColumns, func(i, j int) bool { return pkColumns[i].ord < pkColumns[j].ord })
		pk := &schema.Constraint{}
		for _, c := range pkColumns {
			pk.Columns = append(pk.Columns, c.name)
		}
		t.PrimaryKey = pk
	}
	return nil
}

// fetchIndexes walks PRAGMA index_list and resolves each index's columns
// through PRAGMA index_info. Indexes with origin "u" back a UNIQUE
// constraint and are reported in Uniques as well; the origin "pk" entry
// duplicates the primary key and is skipped.
func fetchIndexes(ctx context.Context, db *sql.DB, table string, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, "PRAGMA index_list("+quoteIdent(table)+")")
	if err != nil {
		return mapError(err, "read index_list for "+table)
	}

	type indexEntry struct {
		name   string
		unique bool
		origin string
	}
	var entries []indexEntry

	for rows.Next() {
		var (
			seq, unique, partial int
			name, origin         string
		)
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			rows.Close()
			return mapError(err, "scan index_list for "+table)
		}
		entries = append(entries, indexEntry{name: name, unique: unique != 0, origin: origin})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return mapError(err, "read index_list for "+table)
	}
	rows.Close()

	for _, e := range entries {
		if e.origin == "pk" {
			continue
		}
		columns, err := indexColumns(ctx, db, e.name)
		if err != nil {
			return err
		}
		t.Indexes = append(t.Indexes, schema.Index{Name: e.name, Columns: columns, Unique: e.unique})
		if e.unique && e.origin == "u" {
			t.Uniques = append(t.Uniques, schema.Constraint{Name: e.name, Columns: columns})
		}
	}
	return nil
}

// indexColumns reads PRAGMA index_info, which lists key columns in index
// order. Expression columns have no name and are skipped.
func indexColumns(ctx context.Context, db *sql.DB, index string) ([]string, error) {
	rows, err := db.QueryContext(ctx, "PRAGMA index_info("+quoteIdent(index)+")")
	if err != nil {
		return nil, mapError(err, "read index_info for "+index)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, mapError(err, "scan index_info for "+index)
		}
		if name.Valid {
			columns = append(columns, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "read index_info for "+index)
	}
	return columns, nil
}

// fetchForeignKeys reads PRAGMA foreign_key_list. SQLite keeps foreign
// keys unnamed; rows sharing an id belong to one composite key. A NULL
// "to" column means the key references the parent's primary key
// implicitly.
func fetchForeignKeys(ctx context.Context, db *sql.DB, table string, t *schema.Table) error {
	rows, err := db.QueryContext(ctx, "PRAGMA foreign_key_list("+quoteIdent(table)+")")
	if err != nil {
		return mapError(err, "read foreign_key_list for "+table)
	}
	defer rows.Close()

	byID := map[int]int{}
	for rows.Next() {
		var (
			id, seq                     int
			refTable, from              string
			to                          sql.NullString
			onUpdate, onDelete, matchBy string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &matchBy); err != nil {
			return mapError(err, "scan foreign_key_list for "+table)
		}

		i, ok := byID[id]
		if !ok {
			i = len(t.ForeignKeys)
			byID[id] = i
			t.ForeignKeys = append(t.ForeignKeys, schema.ForeignKey{RefTable: refTable})
		}
		t.ForeignKeys[i].Columns = append(t.ForeignKeys[i].Columns, from)
		if to.Valid {
			t.ForeignKeys[i].RefColumns = append(t.ForeignKeys[i].RefColumns, to.String)
		}
	}
	if err := rows.Err(); err != nil {
		return mapError(err, "read foreign_key_list for "+table)
	}
	return nil
}
