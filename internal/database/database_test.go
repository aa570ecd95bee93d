package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestConnect_SQLiteMemory(t *testing.T) {
	db, err := Connect("file:database_test?mode=memory&cache=shared", zap.NewNop())
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/crm"))
	assert.True(t, IsPostgres("postgresql://localhost/crm"))
	assert.False(t, IsPostgres("crm.db"))
	assert.False(t, IsPostgres("file:crm?mode=memory"))
}
