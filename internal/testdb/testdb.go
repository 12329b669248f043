// Package testdb opens migrated in-memory sqlite databases for tests.
package testdb

import (
	"fmt"
	"regexp"
	"sync/atomic"
	"testing"

	"github.com/anonto42/nano-thread/backend/internal/repositories"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	unsafeChars = regexp.MustCompile(`[^A-Za-z0-9_]`)
	seq         atomic.Int64
)

// Open returns a fresh migrated database private to t. Unique indexes are enforced the
// same way as in postgres and violations surface as gorm.ErrDuplicatedKey.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared",
		unsafeChars.ReplaceAllString(t.Name(), "_"), seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, repositories.Migrate(db))
	return db
}
