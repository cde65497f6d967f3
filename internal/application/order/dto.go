package order

import (
	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
)

// tracerName 订单用例的Tracer名称
const tracerName = "order"

// =========================================
// 应用层DTO
// =========================================
// 说明:金额统一输出为两位小数的字符串,避免前端浮点误差

// OrderResponse 订单
type OrderResponse struct {
	ID         uint           `json:"id"`
	Date       string         `json:"date"`
	State      string         `json:"state"`
	StateLabel string         `json:"state_label"`
	Total      string         `json:"total"`
	Lines      []LineResponse `json:"lines,omitempty"`
}

// LineResponse 订单明细
type LineResponse struct {
	ID        uint   `json:"id"`
	OrderID   uint   `json:"order_id"`
	ProductID uint   `json:"product_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Amount    string `json:"amount"`
}

// RevenueResponse 营业额
type RevenueResponse struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Revenue string `json:"revenue"`
}

func toOrderResponse(o *order.Order) *OrderResponse {
	resp := &OrderResponse{
		ID:         o.ID,
		Date:       o.Date.Format(dateLayout),
		State:      o.State.String(),
		StateLabel: o.State.Label(),
		Total:      o.Total.StringFixed(2),
	}
	for i := range o.Lines {
		resp.Lines = append(resp.Lines, *toLineResponse(&o.Lines[i]))
	}
	return resp
}

func toLineResponse(l *order.Line) *LineResponse {
	return &LineResponse{
		ID:        l.ID,
		OrderID:   l.OrderID,
		ProductID: l.ProductID,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice.StringFixed(2),
		Amount:    l.Amount.StringFixed(2),
	}
}

// dateLayout 日期格式
const dateLayout = "2006-01-02"
