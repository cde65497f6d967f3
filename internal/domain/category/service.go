package category

import (
	"context"
)

// Service 分类领域服务接口
// 业务规则:
// - 名称不能为空,且不能与已有分类重复
// - 删除前必须确认没有商品引用
type Service interface {
	Create(ctx context.Context, label string) (*Category, error)
	Get(ctx context.Context, id uint) (*Category, error)
	List(ctx context.Context) ([]*Category, error)
	Rename(ctx context.Context, id uint, label string) (*Category, error)
	Delete(ctx context.Context, id uint) error
}

type service struct {
	repo Repository
}

// NewService 创建分类领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create 创建分类
func (s *service) Create(ctx context.Context, label string) (*Category, error) {
	// 1. 构造实体(校验非空)
	c, err := NewCategory(label)
	if err != nil {
		return nil, err
	}

	// 2. 唯一性检查
	if err := s.ensureUnique(ctx, c.Label); err != nil {
		return nil, err
	}

	// 3. 持久化
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *service) Get(ctx context.Context, id uint) (*Category, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Category, error) {
	return s.repo.List(ctx)
}

// Rename 修改名称,名称未变化时不做唯一性检查
func (s *service) Rename(ctx context.Context, id uint, label string) (*Category, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	old := c.Label
	if err := c.Rename(label); err != nil {
		return nil, err
	}
	if c.Label != old {
		if err := s.ensureUnique(ctx, c.Label); err != nil {
			return nil, err
		}
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete 删除分类
// 有商品引用时返回ErrCategoryInUse(ConstraintViolation)
func (s *service) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	n, err := s.repo.CountProducts(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrCategoryInUse
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) ensureUnique(ctx context.Context, label string) error {
	exists, err := s.repo.ExistsByLabel(ctx, label)
	if err != nil {
		return err
	}
	if exists {
		return ErrDuplicateLabel
	}
	return nil
}
