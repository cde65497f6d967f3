package audit

import (
	"context"
)

// Repository 审计日志仓储接口
type Repository interface {
	// Create 追加一条日志
	Create(ctx context.Context, e *Entry) error

	// List 全部日志,最新的在前
	List(ctx context.Context) ([]*Entry, error)

	// ListByTable 某张表的日志,最新的在前
	ListByTable(ctx context.Context, table string) ([]*Entry, error)
}
