package testsupport

import (
	"database/sql"
	"fmt"
	"sync/atomic"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var memoryDBCounter atomic.Int64

func NewSQLiteMemoryDB() (*sql.DB, error) {
	return sql.Open("sqlite3", "file::memory:?cache=shared")
}

// NewBunSQLiteDB opens an isolated in-memory sqlite database wrapped in bun.
// Each call gets its own database so tests never observe each other's rows.
func NewBunSQLiteDB() (*bun.DB, error) {
	name := fmt.Sprintf("file:cms_test_%d?mode=memory&cache=shared", memoryDBCounter.Add(1))
	sqlDB, err := sql.Open("sqlite3", name)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return bun.NewDB(sqlDB, sqlitedialect.New()), nil
}
