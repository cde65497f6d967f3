package product

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultStock 创建商品时未填写库存的默认值
	DefaultStock = 0

	// DefaultAlertThreshold 创建商品时未填写预警阈值的默认值
	DefaultAlertThreshold = 10
)

// Product 商品实体(聚合根)
// 设计说明:
// 1. 价格使用decimal(保留2位小数),避免float累加误差
// 2. StockOnHand只能通过仓储的AdjustStock原子修改(防止并发读改写丢失更新)
// 3. 低库存(StockOnHand < AlertThreshold)是派生状态,不落库
type Product struct {
	ID             uint
	Name           string          // 商品名称(nom)
	CategoryID     uint            // 所属分类,0表示未分类
	UnitPrice      decimal.Decimal // 售价(prix_vente)
	StockOnHand    int             // 当前库存(stock_actuel)
	AlertThreshold int             // 预警阈值(seuil_alerte)
}

// Attrs 商品可编辑属性
// 指针字段为nil表示"未填写",创建时使用默认值
type Attrs struct {
	Name           string
	CategoryID     uint
	UnitPrice      decimal.Decimal
	StockOnHand    *int
	AlertThreshold *int
}

// NewProduct 创建商品(工厂方法)
// 业务规则:
// - 名称必填
// - 价格必须大于0
// - 库存默认0,预警阈值默认10,均不能为负数
func NewProduct(a Attrs) (*Product, error) {
	p := &Product{
		StockOnHand:    DefaultStock,
		AlertThreshold: DefaultAlertThreshold,
	}
	if err := p.apply(a); err != nil {
		return nil, err
	}
	return p, nil
}

// Update 更新商品信息(领域行为)
// 未填写的库存/阈值保持原值
func (p *Product) Update(a Attrs) error {
	next := *p
	if err := next.apply(a); err != nil {
		return err
	}
	*p = next
	return nil
}

func (p *Product) apply(a Attrs) error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrEmptyName
	}
	if !a.UnitPrice.IsPositive() {
		return ErrInvalidPrice
	}
	if a.StockOnHand != nil {
		if *a.StockOnHand < 0 {
			return ErrInvalidStock
		}
		p.StockOnHand = *a.StockOnHand
	}
	if a.AlertThreshold != nil {
		if *a.AlertThreshold < 0 {
			return ErrInvalidThreshold
		}
		p.AlertThreshold = *a.AlertThreshold
	}

	p.Name = name
	p.CategoryID = a.CategoryID
	p.UnitPrice = a.UnitPrice.Round(2)
	return nil
}

// IsLowStock 是否低库存
func (p *Product) IsLowStock() bool {
	return p.StockOnHand < p.AlertThreshold
}
