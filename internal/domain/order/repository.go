package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Repository 订单仓储接口(依赖倒置原则)
// 教学要点:
// 1. 由domain层定义接口,infrastructure层实现
// 2. 支持事务操作(通过context传递事务)
// 3. 总金额和状态都用条件UPDATE原子修改,不做"读-改-写"
type Repository interface {
	// Create 创建订单,成功后回填ID
	Create(ctx context.Context, o *Order) error

	// FindByID 查找订单(不含明细),不存在返回ErrOrderNotFound
	FindByID(ctx context.Context, id uint) (*Order, error)

	// LockByID 在事务中锁定订单行(SELECT ... FOR UPDATE)
	LockByID(ctx context.Context, id uint) (*Order, error)

	// List 按日期倒序
	List(ctx context.Context) ([]*Order, error)

	// ListByDate 某天的订单,按ID倒序
	ListByDate(ctx context.Context, date time.Time) ([]*Order, error)

	// UpdateState 条件更新状态
	// UPDATE commande SET etat = to WHERE id = ? AND etat = from
	// 没有行被更新时返回ErrInvalidStateTransition(状态已被并发修改)
	UpdateState(ctx context.Context, id uint, from, to State) error

	// AddToTotal 原子累加总金额(delta可为负)
	// UPDATE commande SET total = total + delta WHERE id = ?
	AddToTotal(ctx context.Context, id uint, delta decimal.Decimal) error

	// Delete 删除订单(明细需先删除)
	Delete(ctx context.Context, id uint) error

	// Count 订单总数
	Count(ctx context.Context) (int64, error)

	// SumValidatedTotal 某天已结账订单的营业额,无数据返回0
	SumValidatedTotal(ctx context.Context, date time.Time) (decimal.Decimal, error)

	// SumValidatedTotalBetween 日期区间(含两端)已结账订单的营业额,无数据返回0
	SumValidatedTotalBetween(ctx context.Context, from, to time.Time) (decimal.Decimal, error)

	// SumAllValidatedTotal 全部已结账订单的营业额
	SumAllValidatedTotal(ctx context.Context) (decimal.Decimal, error)
}

// LineRepository 订单明细仓储接口
type LineRepository interface {
	// Create 创建明细,成功后回填ID
	Create(ctx context.Context, l *Line) error

	// FindByID 不存在返回ErrLineNotFound
	FindByID(ctx context.Context, id uint) (*Line, error)

	// List 全部明细,按订单ID排序
	List(ctx context.Context) ([]*Line, error)

	// ListByOrder 某订单的明细
	ListByOrder(ctx context.Context, orderID uint) ([]*Line, error)

	// Update 更新数量/单价/行金额
	Update(ctx context.Context, l *Line) error

	// Delete 不存在返回ErrLineNotFound
	Delete(ctx context.Context, id uint) error

	// DeleteByOrder 删除某订单的全部明细,返回删除行数
	DeleteByOrder(ctx context.Context, orderID uint) (int64, error)
}
