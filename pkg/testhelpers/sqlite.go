// Package testhelpers holds fixtures shared by package tests.
package testhelpers

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/kritlunkad/krishi-drishti-backend/config"
	"github.com/kritlunkad/krishi-drishti-backend/database"
	"github.com/kritlunkad/krishi-drishti-backend/entities"
)

// NewSQLite opens a migrated temp-file database that is closed with the test.
func NewSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", Path: path}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedUser inserts a user row so dependent records satisfy their foreign key.
func SeedUser(t *testing.T, db *gorm.DB, id string) {
	t.Helper()
	require.NoError(t, db.Create(&entities.User{ID: id, PasswordHash: "seeded"}).Error)
}
