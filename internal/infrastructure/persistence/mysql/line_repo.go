package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
)

// lineRepository 订单明细仓储实现
type lineRepository struct {
	db *gorm.DB
}

// NewLineRepository 创建订单明细仓储
func NewLineRepository(db *gorm.DB) order.LineRepository {
	return &lineRepository{db: db}
}

// Create 写入明细(价格快照+行金额)
func (r *lineRepository) Create(ctx context.Context, l *order.Line) error {
	model := toLineModel(l)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "创建订单明细失败")
	}
	l.ID = model.ID
	return nil
}

// FindByID 根据ID查找明细
func (r *lineRepository) FindByID(ctx context.Context, id uint) (*order.Line, error) {
	model, err := first[LineModel](r.getDB(ctx).Where("id = ?", id), order.ErrLineNotFound, "查询订单明细失败")
	if err != nil {
		return nil, err
	}
	return toLineEntity(model), nil
}

// List SELECT * FROM ligne_commande ORDER BY commande_id
func (r *lineRepository) List(ctx context.Context) ([]*order.Line, error) {
	return find(r.getDB(ctx).Order("commande_id").Order("id"), toLineEntity, "查询订单明细失败")
}

// ListByOrder SELECT * FROM ligne_commande WHERE commande_id = ?
func (r *lineRepository) ListByOrder(ctx context.Context, orderID uint) ([]*order.Line, error) {
	return find(r.getDB(ctx).Where("commande_id = ?", orderID).Order("id"), toLineEntity, "查询订单明细失败")
}

// Update 更新明细
// 行金额由领域实体计算后一并写入
func (r *lineRepository) Update(ctx context.Context, l *order.Line) error {
	result := r.getDB(ctx).Model(&LineModel{}).Where("id = ?", l.ID).Updates(map[string]interface{}{
		"quantite":      l.Quantity,
		"prix_unitaire": l.UnitPrice,
		"montant_ligne": l.Amount,
	})
	if result.Error != nil {
		return wrapDBError(result.Error, "更新订单明细失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, l.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete 删除明细
func (r *lineRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[LineModel](r.getDB(ctx), id, order.ErrLineNotFound, "删除订单明细失败")
}

// DeleteByOrder DELETE FROM ligne_commande WHERE commande_id = ?
func (r *lineRepository) DeleteByOrder(ctx context.Context, orderID uint) (int64, error) {
	result := r.getDB(ctx).Where("commande_id = ?", orderID).Delete(&LineModel{})
	if result.Error != nil {
		return 0, wrapDBError(result.Error, "删除订单明细失败")
	}
	return result.RowsAffected, nil
}

func (r *lineRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

func toLineModel(l *order.Line) *LineModel {
	return &LineModel{
		ID:        l.ID,
		OrderID:   l.OrderID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		Amount:    l.Amount,
	}
}

func toLineEntity(m *LineModel) *order.Line {
	return &order.Line{
		ID:        m.ID,
		OrderID:   m.OrderID,
		ProductID: m.ProductID,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice.Round(2),
		Amount:    m.Amount.Round(2),
	}
}
