package product

import (
	"context"
)

// Repository 商品仓储接口(依赖倒置原则)
// 所有方法都通过ctx参与外层事务
type Repository interface {
	// Create 创建商品,成功后回填ID
	Create(ctx context.Context, p *Product) error

	// FindByID 不存在时返回ErrProductNotFound
	FindByID(ctx context.Context, id uint) (*Product, error)

	// List 按名称排序
	List(ctx context.Context) ([]*Product, error)

	// ListByCategory 某分类下的商品,按名称排序
	ListByCategory(ctx context.Context, categoryID uint) ([]*Product, error)

	// ListLowStock 库存低于预警阈值的商品,按名称排序
	ListLowStock(ctx context.Context) ([]*Product, error)

	// Update 更新名称、分类、价格、预警阈值,不修改库存
	Update(ctx context.Context, p *Product) error

	// Delete 不存在时返回ErrProductNotFound
	Delete(ctx context.Context, id uint) error

	// Count 商品总数
	Count(ctx context.Context) (int64, error)

	// CountLowStock 低库存商品数
	CountLowStock(ctx context.Context) (int64, error)

	// AdjustStock 原子调整库存
	// UPDATE produit SET stock_actuel = stock_actuel + delta WHERE id = ? AND stock_actuel + delta >= 0
	// 商品不存在返回ErrProductNotFound,库存不足返回ErrInsufficientStock
	AdjustStock(ctx context.Context, id uint, delta int) error
}
