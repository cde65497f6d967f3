package stock

import (
	"context"
	"time"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/stock"
)

// ListMovementsUseCase 查询库存流水
type ListMovementsUseCase struct {
	movementRepo stock.Repository
}

// NewListMovementsUseCase 创建查询用例
func NewListMovementsUseCase(movementRepo stock.Repository) *ListMovementsUseCase {
	return &ListMovementsUseCase{movementRepo: movementRepo}
}

// ListMovementsQuery 查询条件,都为空时返回全部
// 同时给出时ProductID优先
type ListMovementsQuery struct {
	ProductID uint
	Date      *time.Time
}

// Execute 执行查询
func (uc *ListMovementsUseCase) Execute(ctx context.Context, q ListMovementsQuery) ([]*MovementResponse, error) {
	var (
		list []*stock.Movement
		err  error
	)
	switch {
	case q.ProductID != 0:
		list, err = uc.movementRepo.ListByProduct(ctx, q.ProductID)
	case q.Date != nil:
		list, err = uc.movementRepo.ListByDate(ctx, *q.Date)
	default:
		list, err = uc.movementRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*MovementResponse, len(list))
	for i, m := range list {
		out[i] = toMovementResponse(m, nil)
	}
	return out, nil
}

// =========================================
// 应用层DTO
// =========================================

// MovementResponse 库存流水
// Product只在记录流水时返回(调整后的库存)
type MovementResponse struct {
	ID        uint          `json:"id"`
	ProductID uint          `json:"product_id"`
	Type      string        `json:"type"`
	Quantity  int           `json:"quantity"`
	Date      string        `json:"date"`
	Reason    string        `json:"reason"`
	Product   *ProductStock `json:"product,omitempty"`
}

// ProductStock 商品库存快照
type ProductStock struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	StockOnHand    int    `json:"stock_on_hand"`
	AlertThreshold int    `json:"alert_threshold"`
	LowStock       bool   `json:"low_stock"`
}

func toMovementResponse(m *stock.Movement, p *product.Product) *MovementResponse {
	resp := &MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Type:      string(m.Type),
		Quantity:  m.Quantity,
		Date:      m.Date.Format("2006-01-02"),
		Reason:    m.Reason,
	}
	if p != nil {
		resp.Product = toProductStock(p)
	}
	return resp
}

func toProductStock(p *product.Product) *ProductStock {
	return &ProductStock{
		ID:             p.ID,
		Name:           p.Name,
		StockOnHand:    p.StockOnHand,
		AlertThreshold: p.AlertThreshold,
		LowStock:       p.IsLowStock(),
	}
}
