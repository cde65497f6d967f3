package mysql

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
)

// orderRepository 订单仓储实现(MySQL)
// 教学要点:
// 1. Order和Line分别持久化,删除订单前手动删除明细
// 2. 总金额用 total = total + ? 原子累加,状态用 WHERE etat = ? 条件更新
// 3. 事务通过context传递
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓储
func NewOrderRepository(db *gorm.DB) order.Repository {
	return &orderRepository{db: db}
}

// Create 创建订单
func (r *orderRepository) Create(ctx context.Context, o *order.Order) error {
	model := toOrderModel(o)
	if err := r.getDB(ctx).Create(model).Error; err != nil {
		return wrapDBError(err, "创建订单失败")
	}
	o.ID = model.ID
	return nil
}

// FindByID 根据ID查找订单(不含明细)
func (r *orderRepository) FindByID(ctx context.Context, id uint) (*order.Order, error) {
	model, err := first[OrderModel](r.getDB(ctx).Where("id = ?", id), order.ErrOrderNotFound, "查询订单失败")
	if err != nil {
		return nil, err
	}
	return toOrderEntity(model), nil
}

// LockByID 悲观锁查询订单
// SELECT * FROM commande WHERE id = ? FOR UPDATE
// 教学要点:
// 1. 必须在事务中调用,锁在COMMIT/ROLLBACK时释放
// 2. 加菜和结账/取消互斥:锁住订单行之后再检查状态,检查结果在事务内一直有效
// 3. SQLite不支持行锁,GORM的sqlite方言会忽略FOR UPDATE(测试时整个库串行)
func (r *orderRepository) LockByID(ctx context.Context, id uint) (*order.Order, error) {
	db := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", id)
	model, err := first[OrderModel](db, order.ErrOrderNotFound, "锁定订单失败")
	if err != nil {
		return nil, err
	}
	return toOrderEntity(model), nil
}

// List SELECT * FROM commande ORDER BY date_commande DESC
func (r *orderRepository) List(ctx context.Context) ([]*order.Order, error) {
	return find(r.getDB(ctx).Order("date_commande DESC").Order("id DESC"), toOrderEntity, "查询订单列表失败")
}

// ListByDate SELECT * FROM commande WHERE date_commande = ? ORDER BY id DESC
func (r *orderRepository) ListByDate(ctx context.Context, date time.Time) ([]*order.Order, error) {
	return find(r.getDB(ctx).Where("date_commande = ?", dateOnly(date)).Order("id DESC"), toOrderEntity, "查询订单列表失败")
}

// UpdateState 条件更新状态
// 教学要点:WHERE etat = from 保证并发下只有一个状态转换成功
func (r *orderRepository) UpdateState(ctx context.Context, id uint, from, to order.State) error {
	result := r.getDB(ctx).Model(&OrderModel{}).
		Where("id = ?", id).
		Where("etat = ?", string(from)).
		Update("etat", string(to))

	if result.Error != nil {
		return wrapDBError(result.Error, "更新订单状态失败")
	}
	if result.RowsAffected == 0 {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		// 订单存在,说明状态已被改掉
		return order.ErrInvalidStateTransition
	}
	return nil
}

// AddToTotal 原子累加订单总额
// UPDATE commande SET total = total + CAST(? AS DECIMAL(10,2)) WHERE id = ?
func (r *orderRepository) AddToTotal(ctx context.Context, id uint, delta decimal.Decimal) error {
	result := r.getDB(ctx).Model(&OrderModel{}).
		Where("id = ?", id).
		Update("total", gorm.Expr("total + CAST(? AS DECIMAL(10,2))", delta.StringFixed(2)))

	if result.Error != nil {
		return wrapDBError(result.Error, "更新订单总额失败")
	}
	if result.RowsAffected == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Delete 删除订单
func (r *orderRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[OrderModel](r.getDB(ctx), id, order.ErrOrderNotFound, "删除订单失败")
}

// Count 订单总数
func (r *orderRepository) Count(ctx context.Context) (int64, error) {
	return count(r.getDB(ctx).Model(&OrderModel{}), "统计订单失败")
}

// SumValidatedTotal 某天的营业额
// SELECT COALESCE(SUM(total), 0) FROM commande WHERE date_commande = ? AND etat = 'VALIDEE'
func (r *orderRepository) SumValidatedTotal(ctx context.Context, date time.Time) (decimal.Decimal, error) {
	return r.sumValidated(r.getDB(ctx).Where("date_commande = ?", dateOnly(date)))
}

// SumValidatedTotalBetween 日期区间的营业额(含两端)
func (r *orderRepository) SumValidatedTotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sumValidated(r.getDB(ctx).Where("date_commande BETWEEN ? AND ?", dateOnly(from), dateOnly(to)))
}

// SumAllValidatedTotal 全部已结账订单的营业额
func (r *orderRepository) SumAllValidatedTotal(ctx context.Context) (decimal.Decimal, error) {
	return r.sumValidated(r.getDB(ctx))
}

func (r *orderRepository) sumValidated(db *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.Model(&OrderModel{}).
		Select("COALESCE(SUM(total), 0)").
		Where("etat = ?", string(order.StateValidated)).
		Row().Scan(&total)
	if err != nil {
		return decimal.Zero, wrapDBError(err, "统计营业额失败")
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal.Round(2), nil
}

func (r *orderRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toOrderModel(o *order.Order) *OrderModel {
	return &OrderModel{
		ID:    o.ID,
		Date:  dateOnly(o.Date),
		State: string(o.State),
		Total: o.Total,
	}
}

// toOrderEntity GORM模型 → 领域实体
func toOrderEntity(m *OrderModel) *order.Order {
	return &order.Order{
		ID:    m.ID,
		Date:  m.Date,
		State: order.State(m.State),
		Total: m.Total.Round(2),
	}
}
