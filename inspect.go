package dbadmin

import (
	"context"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/schema"
)

// ListTables returns the user table names in the database named by rawURL,
// sorted by name. System tables are excluded.
func ListTables(ctx context.Context, rawURL string) ([]string, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return adminFor(u).ListTables(ctx, u)
}

// InspectTable loads the shape of one table: columns, primary key, unique
// constraints, foreign keys, and secondary indexes. The result feeds the
// schema package's predicates (HasIndex, HasUniqueIndex,
// IsAutoAssignedDateColumn).
func InspectTable(ctx context.Context, rawURL, table string) (*schema.Table, error) {
	u, err := dburl.Parse(rawURL)
	if err != nil {
		return nil, err
	}
	return adminFor(u).InspectTable(ctx, u, table)
}
