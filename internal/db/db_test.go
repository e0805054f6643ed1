package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quantumvision/internal/config"
	"quantumvision/internal/model"
)

func TestOpen_SQLiteMigratesSchema(t *testing.T) {
	cfg := &config.Config{
		DBDriver:    "sqlite",
		DatabaseDSN: filepath.Join(t.TempDir(), "data", "qv.db"),
	}

	gormDB, err := Open(cfg)
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	defer sqlDB.Close()

	for _, m := range model.All() {
		assert.True(t, gormDB.Migrator().HasTable(m))
	}
	assert.Same(t, gormDB, ForUpdate(gormDB))
}

func TestOpen_ResetDropsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qv.db")
	cfg := &config.Config{DBDriver: "sqlite", DatabaseDSN: path}

	gormDB, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, gormDB.Create(&model.User{Username: "ada", Email: "ada@example.com", PasswordHash: "x"}).Error)
	sqlDB, _ := gormDB.DB()
	sqlDB.Close()

	cfg.ResetDB = true
	gormDB, err = Open(cfg)
	require.NoError(t, err)
	sqlDB, _ = gormDB.DB()
	defer sqlDB.Close()

	var count int64
	require.NoError(t, gormDB.Model(&model.User{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}
