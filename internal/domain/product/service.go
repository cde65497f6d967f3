package product

import (
	"context"
)

// CategoryChecker 检查分类是否存在
// 由category仓储实现,避免product包直接依赖category包
type CategoryChecker interface {
	Exists(ctx context.Context, id uint) (bool, error)
}

// Service 商品领域服务接口
type Service interface {
	Create(ctx context.Context, a Attrs) (*Product, error)
	Get(ctx context.Context, id uint) (*Product, error)
	List(ctx context.Context) ([]*Product, error)
	ListByCategory(ctx context.Context, categoryID uint) ([]*Product, error)
	ListLowStock(ctx context.Context) ([]*Product, error)
	Update(ctx context.Context, id uint, a Attrs) (*Product, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo       Repository
	categories CategoryChecker
}

// NewService 创建商品领域服务
// categories为nil时不校验分类
func NewService(repo Repository, categories CategoryChecker) Service {
	return &service{repo: repo, categories: categories}
}

// Create 创建商品
func (s *service) Create(ctx context.Context, a Attrs) (*Product, error) {
	// 1. 构造实体(字段校验+默认值)
	p, err := NewProduct(a)
	if err != nil {
		return nil, err
	}

	// 2. 分类必须存在
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}

	// 3. 持久化
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Product, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Product, error) {
	return s.repo.List(ctx)
}

func (s *service) ListByCategory(ctx context.Context, categoryID uint) ([]*Product, error) {
	return s.repo.ListByCategory(ctx, categoryID)
}

func (s *service) ListLowStock(ctx context.Context) ([]*Product, error) {
	return s.repo.ListLowStock(ctx)
}

// Update 更新商品信息
func (s *service) Update(ctx context.Context, id uint, a Attrs) (*Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := p.StockOnHand
	if err := p.Update(a); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, p.CategoryID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}

	// 库存修改走原子调整,不覆盖并发写入的库存
	if delta := p.StockOnHand - before; delta != 0 {
		if err := s.repo.AdjustStock(ctx, id, delta); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, id)
}

func (s *service) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *service) checkCategory(ctx context.Context, categoryID uint) error {
	if categoryID == 0 || s.categories == nil {
		return nil
	}
	ok, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrCategoryMissing
	}
	return nil
}
