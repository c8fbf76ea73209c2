package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"github.com/ottkit/tunerd/internal/config"
	"github.com/ottkit/tunerd/internal/models"
)

func testConfig(t *testing.T) config.DatabaseConfig {
	t.Helper()
	return config.DatabaseConfig{
		DSN:             filepath.Join(t.TempDir(), "tunerd.db"),
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute,
		LogLevel:        "silent",
	}
}

func TestNewMigratesSchema(t *testing.T) {
	db, err := New(testConfig(t), nil)
	require.NoError(t, err)
	defer db.Close()

	assert.True(t, db.Migrator().HasTable(&models.ChannelRow{}))

	require.NoError(t, db.Create(&models.ChannelRow{Data: []byte{0x01}}).Error)

	var count int64
	require.NoError(t, db.Model(&models.ChannelRow{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestPingAndClose(t *testing.T) {
	db, err := New(testConfig(t), nil)
	require.NoError(t, err)

	require.NoError(t, db.Ping(context.Background()))
	require.NoError(t, db.Close())

	assert.Error(t, db.Ping(context.Background()))
}

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t,
		"tunerd.db?_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		sqliteDSN("tunerd.db"))
	assert.Equal(t,
		"tunerd.db?cache=shared&_pragma=busy_timeout(30000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)",
		sqliteDSN("tunerd.db?cache=shared"))
}

func TestGormLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, gormLogLevel("silent"))
	assert.Equal(t, logger.Error, gormLogLevel("error"))
	assert.Equal(t, logger.Warn, gormLogLevel("warn"))
	assert.Equal(t, logger.Info, gormLogLevel("info"))
	assert.Equal(t, logger.Warn, gormLogLevel("unknown"))
}
