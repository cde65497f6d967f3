package stock

import (
	"context"
	"time"
)

// Repository 库存流水仓储接口
// 流水不可修改,因此没有Update/Delete
type Repository interface {
	// Create 写入流水,成功后回填ID
	Create(ctx context.Context, m *Movement) error

	// FindByID 不存在返回ErrMovementNotFound
	FindByID(ctx context.Context, id uint) (*Movement, error)

	// List 按日期倒序
	List(ctx context.Context) ([]*Movement, error)

	// ListByProduct 某商品的流水,按日期倒序
	ListByProduct(ctx context.Context, productID uint) ([]*Movement, error)

	// ListByDate 某天的流水,按ID正序
	ListByDate(ctx context.Context, date time.Time) ([]*Movement, error)
}
