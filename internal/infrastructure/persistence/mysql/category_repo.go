package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/category"
)

// CategoryRepository 分类仓储实现
// 同时实现category.Repository和product.CategoryChecker
type CategoryRepository struct {
	db *gorm.DB
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// Create 创建分类
func (r *CategoryRepository) Create(ctx context.Context, c *category.Category) error {
	model := &CategoryModel{Label: c.Label}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return category.ErrDuplicateLabel
		}
		return wrapDBError(err, "创建分类失败")
	}
	c.ID = model.ID
	return nil
}

// FindByID 根据ID查找分类
func (r *CategoryRepository) FindByID(ctx context.Context, id uint) (*category.Category, error) {
	model, err := first[CategoryModel](r.getDB(ctx).Where("id = ?", id), category.ErrCategoryNotFound, "查询分类失败")
	if err != nil {
		return nil, err
	}
	return toCategoryEntity(model), nil
}

// List 分类列表(按名称排序)
func (r *CategoryRepository) List(ctx context.Context) ([]*category.Category, error) {
	return find(r.getDB(ctx).Order("libelle"), toCategoryEntity, "查询分类列表失败")
}

// Update 修改分类名称
func (r *CategoryRepository) Update(ctx context.Context, c *category.Category) error {
	result := r.getDB(ctx).Model(&CategoryModel{}).Where("id = ?", c.ID).Update("libelle", c.Label)
	if result.Error != nil {
		return wrapDBError(result.Error, "更新分类失败")
	}
	if result.RowsAffected == 0 {
		// 名称未变化时RowsAffected也是0
		if _, err := r.FindByID(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除分类
func (r *CategoryRepository) Delete(ctx context.Context, id uint) error {
	if err := deleteByID[CategoryModel](r.getDB(ctx), id, category.ErrCategoryNotFound, "删除分类失败"); err != nil {
		if isForeignKeyError(err) {
			return category.ErrCategoryInUse
		}
		return err
	}
	return nil
}

// ExistsByLabel SELECT COUNT(*) FROM categorie WHERE libelle = ?
func (r *CategoryRepository) ExistsByLabel(ctx context.Context, label string) (bool, error) {
	n, err := count(r.getDB(ctx).Model(&CategoryModel{}).Where("libelle = ?", label), "查询分类失败")
	return n > 0, err
}

// Exists 分类是否存在(供商品服务校验)
func (r *CategoryRepository) Exists(ctx context.Context, id uint) (bool, error) {
	n, err := count(r.getDB(ctx).Model(&CategoryModel{}).Where("id = ?", id), "查询分类失败")
	return n > 0, err
}

// CountProducts 引用该分类的商品数
func (r *CategoryRepository) CountProducts(ctx context.Context, id uint) (int64, error) {
	return count(r.getDB(ctx).Model(&ProductModel{}).Where("categorie_id = ?", id), "统计分类商品失败")
}

func (r *CategoryRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// toCategoryEntity GORM模型 → 领域实体
func toCategoryEntity(m *CategoryModel) *category.Category {
	return &category.Category{ID: m.ID, Label: m.Label}
}
