package category

import (
	"context"
)

// Repository 分类仓储接口(依赖倒置原则)
// 由domain层定义接口,infrastructure层实现
type Repository interface {
	// Create 创建分类,成功后回填ID
	Create(ctx context.Context, c *Category) error

	// FindByID 不存在时返回ErrCategoryNotFound
	FindByID(ctx context.Context, id uint) (*Category, error)

	// List 按名称排序
	List(ctx context.Context) ([]*Category, error)

	// Update 更新分类名称
	Update(ctx context.Context, c *Category) error

	// Delete 删除分类,不存在时返回ErrCategoryNotFound
	Delete(ctx context.Context, id uint) error

	// ExistsByLabel 名称是否已被使用
	ExistsByLabel(ctx context.Context, label string) (bool, error)

	// CountProducts 引用该分类的商品数
	CountProducts(ctx context.Context, id uint) (int64, error)
}
