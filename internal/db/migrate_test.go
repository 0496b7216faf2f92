package db

import (
	"context"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"0002_orders.up.sql":   {Data: []byte("CREATE TABLE orders (id TEXT);")},
		"0001_users.up.sql":    {Data: []byte("CREATE TABLE users (id TEXT);")},
		"0001_users.down.sql":  {Data: []byte("DROP TABLE users;")},
		"0002_orders.down.sql": {Data: []byte("DROP TABLE orders;")},
		"README.md":            {Data: []byte("not a migration")},
	}
}

func TestMigrationFiles_Order(t *testing.T) {
	up, err := MigrationFiles(testMigrations(), Up)
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_users.up.sql", "0002_orders.up.sql"}, up)

	down, err := MigrationFiles(testMigrations(), Down)
	require.NoError(t, err)
	assert.Equal(t, []string{"0002_orders.down.sql", "0001_users.down.sql"}, down)

	_, err = MigrationFiles(testMigrations(), "sideways")
	assert.Error(t, err)
}

func TestMigrate_RunsUpInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE users (id TEXT);")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE orders (id TEXT);")).WillReturnResult(sqlmock.NewResult(0, 0))

	n, err := Migrate(context.Background(), db, testMigrations(), Up)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMigrate_StopsOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("DROP TABLE orders;")).
		WillReturnError(&pq.Error{Code: "42P01", Message: "relation \"orders\" does not exist"})

	n, err := Migrate(context.Background(), db, testMigrations(), Down)
	require.Error(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, err.Error(), "42P01")
	assert.NoError(t, mock.ExpectationsWereMet())
}
