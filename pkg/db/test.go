package db

import (
	"fmt"
	"sync/atomic"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// NewTest opens an isolated in-memory sqlite database for tests. Each call
// gets its own named shared-cache database so concurrent connections inside
// one test see the same data without leaking across tests.
func NewTest() (*gorm.DB, error) {
	dsn := fmt.Sprintf("file:chairbook_test_%d?mode=memory&cache=shared&_pragma=busy_timeout(5000)", testDBSeq.Add(1))
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
}
