package order

import (
	"context"
	"time"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// CreateOrderUseCase 开单用例
// 新订单为进行中状态,总金额为0,日期取当天
type CreateOrderUseCase struct {
	orderRepo order.Repository
	now       func() time.Time
}

// NewCreateOrderUseCase 创建开单用例
func NewCreateOrderUseCase(orderRepo order.Repository) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		orderRepo: orderRepo,
		now:       time.Now,
	}
}

// WithClock 替换时钟(测试用)
func (uc *CreateOrderUseCase) WithClock(now func() time.Time) *CreateOrderUseCase {
	uc.now = now
	return uc
}

// Execute 执行开单
func (uc *CreateOrderUseCase) Execute(ctx context.Context) (*OrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CreateOrder")
	defer span.End()

	o := order.NewOrder(uc.now())
	if err := uc.orderRepo.Create(ctx, o); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return toOrderResponse(o), nil
}
