package migration

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunSQLiteCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, Run(db, "sqlite"))
	require.NoError(t, Run(db, ""))

	for _, table := range []string{"clients", "invoices", "work_items", "invoice_sequences"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}

func TestRunRejectsUnknownDialect(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	assert.ErrorIs(t, Run(db, "oracle"), ErrUnsupportedDialect)
}

func TestEmbeddedSources(t *testing.T) {
	for _, dialect := range []string{"postgres", "mysql"} {
		t.Run(dialect, func(t *testing.T) {
			src, err := Source(dialect)
			require.NoError(t, err)
			defer func() { _ = src.Close() }()

			first, err := src.First()
			require.NoError(t, err)
			assert.Equal(t, uint(1), first)

			up, name, err := src.ReadUp(first)
			require.NoError(t, err)
			defer func() { _ = up.Close() }()
			assert.Equal(t, "init", name)
		})
	}

	_, err := Source("sqlite")
	assert.ErrorIs(t, err, ErrUnsupportedDialect)
}
