package order

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/event"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/pkg/metrics"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// maxTransitionAttempts 条件更新失败后重读状态的次数上限
const maxTransitionAttempts = 3

// transitioner 状态变更的公共流程
// 1. 读当前状态,领域对象判断能否转换
// 2. UPDATE ... WHERE etat = 当前状态(并发下只有一个成功)
// 3. 条件更新落空说明状态已被别的终端改掉,重读后再交给领域对象判断
//    (并发重复取消返回ErrAlreadyCancelled)
// 4. 发布领域事件(失败只记日志)
type transitioner struct {
	orderRepo order.Repository
	publisher event.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func (t *transitioner) apply(ctx context.Context, id uint, change func(*order.Order) error, routingKey string) (*order.Order, error) {
	var (
		o    *order.Order
		from order.State
		err  error
	)
	for attempt := 1; ; attempt++ {
		o, err = t.orderRepo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		from = o.State
		if err := change(o); err != nil {
			return nil, err
		}
		err = t.orderRepo.UpdateState(ctx, id, from, o.State)
		if err == nil {
			break
		}
		if !errors.Is(err, order.ErrInvalidStateTransition) || attempt == maxTransitionAttempts {
			return nil, err
		}
		t.log.Debug("订单状态已被并发修改,重新读取",
			zap.Uint("order_id", id),
			zap.String("expected", from.String()),
			zap.Int("attempt", attempt))
	}

	metrics.OrderTransitionsTotal.WithLabelValues(o.State.String()).Inc()

	payload := event.OrderStateChanged{
		OrderID:    o.ID,
		From:       from.String(),
		To:         o.State.String(),
		Total:      o.Total,
		OccurredAt: t.now(),
	}
	if err := t.publisher.Publish(ctx, routingKey, payload); err != nil {
		t.log.Warn("订单事件发布失败",
			zap.Uint("order_id", o.ID),
			zap.String("routing_key", routingKey),
			zap.Error(err))
	}
	return o, nil
}

// ValidateOrderUseCase 结账用例
// 只有进行中的订单可以结账,重复结账返回ErrInvalidStateTransition
type ValidateOrderUseCase struct {
	transitioner
}

// NewValidateOrderUseCase 创建结账用例
func NewValidateOrderUseCase(orderRepo order.Repository, publisher event.Publisher, log *zap.Logger) *ValidateOrderUseCase {
	return &ValidateOrderUseCase{transitioner{orderRepo: orderRepo, publisher: publisher, log: log, now: time.Now}}
}

// Execute 执行结账
func (uc *ValidateOrderUseCase) Execute(ctx context.Context, orderID uint) (*OrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ValidateOrder")
	defer span.End()

	o, err := uc.apply(ctx, orderID, (*order.Order).Validate, event.OrderValidated)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return toOrderResponse(o), nil
}

// CancelOrderUseCase 取消订单用例
// 进行中和已结账的订单都可以取消(界面上需要二次确认)
type CancelOrderUseCase struct {
	transitioner
}

// NewCancelOrderUseCase 创建取消用例
func NewCancelOrderUseCase(orderRepo order.Repository, publisher event.Publisher, log *zap.Logger) *CancelOrderUseCase {
	return &CancelOrderUseCase{transitioner{orderRepo: orderRepo, publisher: publisher, log: log, now: time.Now}}
}

// Execute 执行取消
func (uc *CancelOrderUseCase) Execute(ctx context.Context, orderID uint) (*OrderResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "CancelOrder")
	defer span.End()

	o, err := uc.apply(ctx, orderID, (*order.Order).Cancel, event.OrderCancelled)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return toOrderResponse(o), nil
}
