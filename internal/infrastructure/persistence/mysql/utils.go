package mysql

import (
	"context"
	"database/sql/driver"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// isDuplicateError 判断是否为唯一索引冲突错误
// - MySQL 1062: Duplicate entry 'xxx' for key 'yyy'
// - SQLite: UNIQUE constraint failed
func isDuplicateError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}

// isForeignKeyError 判断是否为外键约束错误
func isForeignKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	return strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// isConnectionError 判断是否为连接类错误(数据库不可达)
func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "invalid connection") ||
		strings.Contains(msg, "sql: database is closed")
}

// wrapDBError 底层错误转换为业务错误
// 连接错误单独归类为StoreUnavailable,其余为DatabaseError
func wrapDBError(err error, message string) error {
	switch {
	case isConnectionError(err):
		return apperrors.WithCause(apperrors.ErrStoreUnavailable, err)
	case isForeignKeyError(err):
		return apperrors.New(apperrors.ErrCodeConstraintViolation, "数据仍被引用")
	default:
		return apperrors.Wrap(err, message)
	}
}

// =========================================
// 泛型辅助函数(各实体仓储共用)
// =========================================

// first 查询单条记录,不存在时返回notFound
func first[M any](db *gorm.DB, notFound error, message string) (*M, error) {
	var m M
	if err := db.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, wrapDBError(err, message)
	}
	return &m, nil
}

// find 查询多条记录并转换为领域实体
func find[M any, E any](db *gorm.DB, conv func(*M) *E, message string) ([]*E, error) {
	var models []M
	if err := db.Find(&models).Error; err != nil {
		return nil, wrapDBError(err, message)
	}
	out := make([]*E, len(models))
	for i := range models {
		out[i] = conv(&models[i])
	}
	return out, nil
}

// deleteByID 按主键删除,没有行被删除时返回notFound
func deleteByID[M any](db *gorm.DB, id uint, notFound error, message string) error {
	var m M
	result := db.Delete(&m, id)
	if result.Error != nil {
		return wrapDBError(result.Error, message)
	}
	if result.RowsAffected == 0 {
		return notFound
	}
	return nil
}

// count 统计记录数
func count(db *gorm.DB, message string) (int64, error) {
	var n int64
	if err := db.Count(&n).Error; err != nil {
		return 0, wrapDBError(err, message)
	}
	return n, nil
}

// dateOnly 把日期统一成本地时区零点
// date列只存日期,查询参数和写入值必须是同一个表示(DSN中loc=Local)
func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local)
}

// uintPtr 0表示NULL
func uintPtr(v uint) *uint {
	if v == 0 {
		return nil
	}
	return &v
}

// uintVal NULL表示0
func uintVal(p *uint) uint {
	if p == nil {
		return 0
	}
	return *p
}
