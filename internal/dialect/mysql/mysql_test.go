package mysql

import (
	"context"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/dbadmin/dburl"
	"github.com/koustreak/dbadmin/internal/dialect"
	"github.com/koustreak/dbadmin/internal/errs"
)

func TestCreateStatement(t *testing.T) {
	tests := []struct {
		name string
		db   string
		opts dialect.CreateOptions
		want string
	}{
		{"defaults", "appdb", dialect.DefaultCreateOptions(), "CREATE DATABASE `appdb` CHARACTER SET = 'utf8'"},
		{"custom encoding", "appdb", dialect.CreateOptions{Encoding: "utf8mb4"}, "CREATE DATABASE `appdb` CHARACTER SET = 'utf8mb4'"},
		{"zero options", "appdb", dialect.CreateOptions{}, "CREATE DATABASE `appdb` CHARACTER SET = 'utf8'"},
		{"quoted name", "we`ird", dialect.DefaultCreateOptions(), "CREATE DATABASE `we``ird` CHARACTER SET = 'utf8'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, createStatement(tt.db, tt.opts))
		})
	}
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, "`appdb`", quoteIdent("appdb"))
	assert.Equal(t, "`a``b`", quoteIdent("a`b"))
}

func TestOnUpdateClause(t *testing.T) {
	tests := []struct {
		extra  string
		want   string
		wantOK bool
	}{
		{"on update CURRENT_TIMESTAMP", "CURRENT_TIMESTAMP", true},
		{"DEFAULT_GENERATED on update CURRENT_TIMESTAMP", "CURRENT_TIMESTAMP", true},
		{"on update current_timestamp()", "current_timestamp()", true},
		{"auto_increment", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.extra, func(t *testing.T) {
			got, ok := onUpdateClause(tt.extra)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyMySQLCode(t *testing.T) {
	tests := []struct {
		code uint16
		want errs.ErrKind
	}{
		{1007, errs.ErrKindAlreadyExists},
		{1008, errs.ErrKindNotFound},
		{1049, errs.ErrKindNotFound},
		{1146, errs.ErrKindNotFound},
		{1044, errs.ErrKindPermissionDenied},
		{1045, errs.ErrKindPermissionDenied},
		{1040, errs.ErrKindConnectionFailed},
		{1064, errs.ErrKindQueryFailed},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			assert.Equal(t, tt.want, classifyMySQLCode(tt.code))
		})
	}
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError(nil, "noop"))

	err := mapError(&mysql.MySQLError{Number: 1007, Message: "Can't create database 'x'; database exists"}, "create")
	assert.True(t, errs.IsAlreadyExists(err))

	err = mapError(context.DeadlineExceeded, "slow")
	assert.True(t, errs.IsTimeout(err))
}

func TestOperationsRequireDatabase(t *testing.T) {
	a := New()
	u, err := dburl.Parse("mysql://root@localhost:3306")
	require.NoError(t, err)

	_, existsErr := a.DatabaseExists(context.Background(), u)
	assert.True(t, errs.IsInvalidInput(existsErr))

	createErr := a.CreateDatabase(context.Background(), u, dialect.DefaultCreateOptions())
	assert.True(t, errs.IsInvalidInput(createErr))

	dropErr := a.DropDatabase(context.Background(), u, dialect.DefaultDropOptions())
	assert.True(t, errs.IsInvalidInput(dropErr))

	_, listErr := a.ListTables(context.Background(), u)
	assert.True(t, errs.IsInvalidInput(listErr))
}
