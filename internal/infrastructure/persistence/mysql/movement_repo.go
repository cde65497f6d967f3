package mysql

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/stock"
)

// movementRepository 库存流水仓储实现
// 只追加,不提供修改和删除
type movementRepository struct {
	db *gorm.DB
}

// NewMovementRepository 创建库存流水仓储
func NewMovementRepository(db *gorm.DB) stock.Repository {
	return &movementRepository{db: db}
}

// Create 写入流水
func (r *movementRepository) Create(ctx context.Context, m *stock.Movement) error {
	model := &MovementModel{
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Date:      dateOnly(m.Date),
		Reason:    m.Reason,
	}
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "写入库存流水失败")
	}
	m.ID = model.ID
	return nil
}

// FindByID 根据ID查找流水
func (r *movementRepository) FindByID(ctx context.Context, id uint) (*stock.Movement, error) {
	model, err := first[MovementModel](r.getDB(ctx).Where("id = ?", id), stock.ErrMovementNotFound, "查询库存流水失败")
	if err != nil {
		return nil, err
	}
	return toMovementEntity(model), nil
}

// List SELECT * FROM mouvement_stock ORDER BY date_mouvement DESC
func (r *movementRepository) List(ctx context.Context) ([]*stock.Movement, error) {
	return find(r.getDB(ctx).Order("date_mouvement DESC").Order("id DESC"), toMovementEntity, "查询库存流水失败")
}

// ListByProduct SELECT * FROM mouvement_stock WHERE produit_id = ? ORDER BY date_mouvement DESC
func (r *movementRepository) ListByProduct(ctx context.Context, productID uint) ([]*stock.Movement, error) {
	return find(r.getDB(ctx).Where("produit_id = ?", productID).Order("date_mouvement DESC").Order("id DESC"),
		toMovementEntity, "查询库存流水失败")
}

// ListByDate SELECT * FROM mouvement_stock WHERE date_mouvement = ? ORDER BY id
func (r *movementRepository) ListByDate(ctx context.Context, date time.Time) ([]*stock.Movement, error) {
	return find(r.getDB(ctx).Where("date_mouvement = ?", dateOnly(date)).Order("id"), toMovementEntity, "查询库存流水失败")
}

func (r *movementRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

func toMovementEntity(m *MovementModel) *stock.Movement {
	return &stock.Movement{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      stock.MovementType(m.Type),
		Quantity:  m.Quantity,
		Date:      m.Date,
		Reason:    m.Reason,
	}
}
