package persistence

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockDB opens gorm over sqlmock using the postgres dialector
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	mockDB, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func TestDatabase_Ping(t *testing.T) {
	t.Run("successful ping", func(t *testing.T) {
		gdb, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		db := &Database{DB: gdb}

		mock.ExpectPing()
		assert.NoError(t, db.Ping())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ping failure is returned", func(t *testing.T) {
		gdb, mock, mockDB := newMockDB(t)
		defer mockDB.Close()
		db := &Database{DB: gdb}

		mock.ExpectPing().WillReturnError(errors.New("connection refused"))
		assert.Error(t, db.Ping())
	})
}

func TestDatabase_Stats(t *testing.T) {
	gdb, _, mockDB := newMockDB(t)
	defer mockDB.Close()
	db := &Database{DB: gdb}

	stats, err := db.Stats()
	require.NoError(t, err)
	assert.GreaterOrEqual(t, stats.OpenConnections, 0)
}

func TestDatabase_Close(t *testing.T) {
	gdb, mock, mockDB := newMockDB(t)
	db := &Database{DB: gdb}

	mock.ExpectClose()
	assert.NoError(t, db.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
	_ = mockDB
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite", errors.New("UNIQUE constraint failed: businesses.name_key, businesses.island"), true},
		{"unrelated", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
