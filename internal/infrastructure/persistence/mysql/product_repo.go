package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
)

// productRepository 商品仓储实现(MySQL)
// 设计说明:
// 1. 实现domain/product/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 库存只通过AdjustStock原子修改
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓储
func NewProductRepository(db *gorm.DB) product.Repository {
	return &productRepository{db: db}
}

// Create 创建商品
func (r *productRepository) Create(ctx context.Context, p *product.Product) error {
	// 1. 领域实体 → GORM模型
	model := toProductModel(p)

	// 2. 插入数据库
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "创建商品失败")
	}

	// 3. 回填自增ID
	p.ID = model.ID
	return nil
}

// FindByID 根据ID查找商品
func (r *productRepository) FindByID(ctx context.Context, id uint) (*product.Product, error) {
	model, err := first[ProductModel](r.getDB(ctx).Where("id = ?", id), product.ErrProductNotFound, "查询商品失败")
	if err != nil {
		return nil, err
	}
	return toProductEntity(model), nil
}

// List SELECT * FROM produit ORDER BY nom
func (r *productRepository) List(ctx context.Context) ([]*product.Product, error) {
	return find(r.getDB(ctx).Order("nom"), toProductEntity, "查询商品列表失败")
}

// ListByCategory SELECT * FROM produit WHERE categorie_id = ? ORDER BY nom
func (r *productRepository) ListByCategory(ctx context.Context, categoryID uint) ([]*product.Product, error) {
	return find(r.getDB(ctx).Where("categorie_id = ?", categoryID).Order("nom"), toProductEntity, "查询分类商品失败")
}

// ListLowStock SELECT * FROM produit WHERE stock_actuel < seuil_alerte ORDER BY nom
func (r *productRepository) ListLowStock(ctx context.Context) ([]*product.Product, error) {
	return find(r.getDB(ctx).Where("stock_actuel < seuil_alerte").Order("nom"), toProductEntity, "查询低库存商品失败")
}

// Update 更新商品属性
// 教学要点:库存不在这里写,避免覆盖并发的库存调整
func (r *productRepository) Update(ctx context.Context, p *product.Product) error {
	result := r.getDB(ctx).Model(&ProductModel{}).Where("id = ?", p.ID).Updates(map[string]interface{}{
		"nom":          p.Name,
		"categorie_id": uintPtr(p.CategoryID),
		"prix_vente":   p.UnitPrice,
		"seuil_alerte": p.AlertThreshold,
	})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新商品失败")
	}
	if result.RowsAffected == 0 {
		// MySQL在值未变化时RowsAffected也为0,再查一次区分
		if _, err := r.FindByID(ctx, p.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除商品
func (r *productRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[ProductModel](r.getDB(ctx), id, product.ErrProductNotFound, "删除商品失败")
}

// Count 商品总数
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	return count(r.getDB(ctx).Model(&ProductModel{}), "统计商品失败")
}

// CountLowStock 低库存商品数
func (r *productRepository) CountLowStock(ctx context.Context) (int64, error) {
	return count(r.getDB(ctx).Model(&ProductModel{}).Where("stock_actuel < seuil_alerte"), "统计低库存商品失败")
}

// AdjustStock 更新库存(原子操作)
func (r *productRepository) AdjustStock(ctx context.Context, id uint, delta int) error {
	// UPDATE produit SET stock_actuel = stock_actuel + delta WHERE id = ? AND stock_actuel + delta >= 0
	// 教学要点:必须使用getDB(ctx)参与事务
	db := r.getDB(ctx)
	result := db.Model(&ProductModel{}).
		Where("id = ?", id).
		Where("stock_actuel + ? >= 0", delta). // 防止库存为负
		Update("stock_actuel", gorm.Expr("stock_actuel + ?", delta))

	if result.Error != nil {
		return wrapDBError(result.Error, "更新库存失败")
	}

	if result.RowsAffected == 0 {
		// 可能是商品不存在,或者库存不足
		// 再查一次确定原因
		var model ProductModel
		if err := r.getDB(ctx).Where("id = ?", id).First(&model).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return product.ErrProductNotFound
			}
			return wrapDBError(err, "查询商品失败")
		}
		// 商品存在,说明是库存不足
		return product.ErrInsufficientStock
	}

	return nil
}

func (r *productRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toProductModel(p *product.Product) *ProductModel {
	return &ProductModel{
		ID:             p.ID,
		Name:           p.Name,
		CategoryID:     uintPtr(p.CategoryID),
		UnitPrice:      p.UnitPrice,
		StockOnHand:    p.StockOnHand,
		AlertThreshold: p.AlertThreshold,
	}
}

// toProductEntity GORM模型 → 领域实体
func toProductEntity(m *ProductModel) *product.Product {
	return &product.Product{
		ID:             m.ID,
		Name:           m.Name,
		CategoryID:     uintVal(m.CategoryID),
		UnitPrice:      m.UnitPrice,
		StockOnHand:    m.StockOnHand,
		AlertThreshold: m.AlertThreshold,
	}
}
