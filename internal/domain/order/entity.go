package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// State 订单状态
// 教学要点:
// 1. 使用字符串存储,与旧库etat列的取值保持一致
// 2. 状态机: EN_COURS → VALIDEE → ANNULEE, EN_COURS → ANNULEE
type State string

const (
	StatePending   State = "EN_COURS" // 进行中
	StateValidated State = "VALIDEE"  // 已结账
	StateCancelled State = "ANNULEE"  // 已取消
)

// String 实现Stringer接口(方便日志输出)
func (s State) String() string {
	return string(s)
}

// Label 中文显示名
func (s State) Label() string {
	switch s {
	case StatePending:
		return "进行中"
	case StateValidated:
		return "已结账"
	case StateCancelled:
		return "已取消"
	default:
		return "未知状态"
	}
}

// Valid 是否为已知状态
func (s State) Valid() bool {
	switch s {
	case StatePending, StateValidated, StateCancelled:
		return true
	}
	return false
}

// Order 订单实体(聚合根)
// 教学要点:
// 1. Order是聚合根,Line是子实体(按OrderID一对多)
// 2. Total增量维护:每加一行就在数据库里原子地 total = total + 行金额
// 3. Date只保留日期部分,营业额按日期统计
type Order struct {
	ID    uint
	Date  time.Time       // 下单日期(date_commande)
	State State           // 订单状态(etat)
	Total decimal.Decimal // 订单总金额,冗余字段
	Lines []Line          // 订单明细(查询详情时加载)
}

// Line 订单明细
// 教学要点:
// 1. UnitPrice是加入订单时的价格快照,之后改价不影响历史订单
// 2. Amount永远由Quantity×UnitPrice计算,不能单独设置
type Line struct {
	ID        uint
	OrderID   uint
	ProductID uint
	Quantity  int
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// NewOrder 创建新订单(工厂方法)
// 初始状态为进行中,总金额为0
func NewOrder(now time.Time) *Order {
	return &Order{
		Date:  DateOf(now),
		State: StatePending,
		Total: decimal.Zero,
	}
}

// NewLine 创建订单明细
// 业务规则:数量必须大于0
func NewLine(orderID, productID uint, quantity int, unitPrice decimal.Decimal) (*Line, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	l := &Line{
		OrderID:   orderID,
		ProductID: productID,
		UnitPrice: unitPrice.Round(2),
	}
	l.setQuantity(quantity)
	return l, nil
}

// ChangeQuantity 修改数量并重算行金额
// 返回行金额的变化量(用于调整订单总额)
func (l *Line) ChangeQuantity(quantity int) (decimal.Decimal, error) {
	if quantity <= 0 {
		return decimal.Zero, ErrInvalidQuantity
	}
	before := l.Amount
	l.setQuantity(quantity)
	return l.Amount.Sub(before), nil
}

func (l *Line) setQuantity(quantity int) {
	l.Quantity = quantity
	l.Amount = l.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}

// Validate 结账
// 只有进行中的订单可以结账
func (o *Order) Validate() error {
	if o.State != StatePending {
		return ErrInvalidStateTransition
	}
	o.State = StateValidated
	return nil
}

// Cancel 取消订单
// 进行中或已结账的订单都可以取消,重复取消返回ErrAlreadyCancelled
func (o *Order) Cancel() error {
	if o.State == StateCancelled {
		return ErrAlreadyCancelled
	}
	o.State = StateCancelled
	return nil
}

// CanDelete 删除前置条件:进行中的订单必须先取消
func (o *Order) CanDelete() error {
	if o.State == StatePending {
		return ErrOrderNotDeletable
	}
	return nil
}

// CanEditLines 只有进行中的订单可以增删改明细
func (o *Order) CanEditLines() error {
	if o.State != StatePending {
		return ErrOrderNotEditable
	}
	return nil
}

// CalculateTotal 根据明细重新计算总金额
// 用于校验冗余的Total字段,业务流程中不用它覆盖Total
func (o *Order) CalculateTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range o.Lines {
		total = total.Add(l.Amount)
	}
	return total
}

// DateOf 截取日期部分(保留时区)
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
