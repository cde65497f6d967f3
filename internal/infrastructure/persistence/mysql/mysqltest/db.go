// Package mysqltest 提供基于内存SQLite的GORM测试数据库
//
// 仓储代码只使用GORM的方言无关能力(条件UPDATE、gorm.Expr、COALESCE/SUM),
// 因此测试可以直接跑在SQLite上,不需要启动MySQL。
package mysqltest

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
)

var seq atomic.Int64

// NewDB 创建一个已迁移的独立内存数据库,测试结束自动关闭
//
// 连接池限制为1个连接:
// 1. 内存库随最后一个连接关闭而销毁
// 2. SQLite写锁是库级的,单连接让并发测试串行化而不是返回SQLITE_BUSY
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:pos_test_%d?mode=memory&cache=shared&_foreign_keys=1", seq.Add(1))
	db, err := mysql.Open(sqlite.Open(dsn), logger.Silent)
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, mysql.Migrate(db))

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	return db
}
