package event

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 路由键
const (
	OrderValidated = "order.validated"
	OrderCancelled = "order.cancelled"
	StockLow       = "stock.low"
)

// Publisher 领域事件发布接口
// 发布失败由调用方记录日志,不影响主流程
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// NopPublisher 不发布任何事件(未启用消息队列时使用)
type NopPublisher struct{}

// Publish 实现Publisher
func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// OrderStateChanged 订单状态变更事件
type OrderStateChanged struct {
	OrderID    uint            `json:"order_id"`
	From       string          `json:"from"`
	To         string          `json:"to"`
	Total      decimal.Decimal `json:"total"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// StockLowAlert 低库存预警事件
type StockLowAlert struct {
	ProductID      uint      `json:"product_id"`
	Name           string    `json:"name"`
	StockOnHand    int       `json:"stock_on_hand"`
	AlertThreshold int       `json:"alert_threshold"`
	OccurredAt     time.Time `json:"occurred_at"`
}
