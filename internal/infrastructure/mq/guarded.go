package mq

import (
	"context"

	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/event"
	"github.com/iruzen-dono/RestaurantApp/pkg/circuitbreaker"
	"github.com/iruzen-dono/RestaurantApp/pkg/metrics"
)

// GuardedPublisher 带熔断的事件发布
// RabbitMQ连续失败后直接返回ErrOpenState,不再等待发布超时
type GuardedPublisher struct {
	next    event.Publisher
	breaker *circuitbreaker.CircuitBreaker
}

// NewGuardedPublisher 用熔断器包装next
// cfg.OnStateChange为空时记录日志并更新pos_circuit_breaker_state
func NewGuardedPublisher(next event.Publisher, cfg circuitbreaker.Config, log *zap.Logger) *GuardedPublisher {
	const name = "mq-publisher"
	if cfg.OnStateChange == nil {
		cfg.OnStateChange = func(name string, from, to circuitbreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			log.Warn("熔断器状态变化",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		}
	}
	metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(circuitbreaker.StateClosed))
	return &GuardedPublisher{next: next, breaker: circuitbreaker.New(name, cfg)}
}

// Publish 实现event.Publisher
func (p *GuardedPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return p.breaker.Execute(ctx, func(ctx context.Context) error {
		return p.next.Publish(ctx, routingKey, payload)
	})
}

// State 当前熔断状态
func (p *GuardedPublisher) State() circuitbreaker.State {
	return p.breaker.State()
}
