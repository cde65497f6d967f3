package stock

import (
	"strings"
	"time"
)

// MovementType 库存流水类型,取值与旧库mouvement_stock.type一致
type MovementType string

const (
	MovementIn  MovementType = "ENTREE" // 入库
	MovementOut MovementType = "SORTIE" // 出库
)

// ParseMovementType 解析类型,兼容IN/OUT写法
func ParseMovementType(s string) (MovementType, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ENTREE", "IN":
		return MovementIn, nil
	case "SORTIE", "OUT":
		return MovementOut, nil
	}
	return "", ErrInvalidMovementType
}

// Movement 库存流水
// 设计说明:
// 1. 流水一经创建不可修改(只追加)
// 2. 流水写入与库存调整在同一事务中完成,库存不足时两者都不落库
type Movement struct {
	ID        uint
	ProductID uint
	Type      MovementType
	Quantity  int
	Date      time.Time // 发生日期(date_mouvement)
	Reason    string    // 原因(motif)
}

// NewMovement 创建库存流水(工厂方法)
func NewMovement(productID uint, typ MovementType, quantity int, date time.Time, reason string) (*Movement, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if typ != MovementIn && typ != MovementOut {
		return nil, ErrInvalidMovementType
	}
	return &Movement{
		ProductID: productID,
		Type:      typ,
		Quantity:  quantity,
		Date:      dateOf(date),
		Reason:    strings.TrimSpace(reason),
	}, nil
}

// Delta 对库存的有符号影响
func (m *Movement) Delta() int {
	if m.Type == MovementOut {
		return -m.Quantity
	}
	return m.Quantity
}

func dateOf(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, t.Location())
}
