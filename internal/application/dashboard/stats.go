// Package dashboard 收银台看板统计
package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/pkg/metrics"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// Cache 看板缓存(redis.StatsCache实现)
type Cache interface {
	Get(ctx context.Context, dst any) (bool, error)
	Set(ctx context.Context, v any) error
	Invalidate(ctx context.Context) error
}

// Stats 看板数据
type Stats struct {
	TotalOrders   int64           `json:"total_orders"`
	Revenue       decimal.Decimal `json:"revenue"` // 全部已结账订单的营业额
	TotalProducts int64           `json:"total_products"`
	LowStockCount int64           `json:"low_stock_count"`
	ComputedAt    time.Time       `json:"computed_at"`
}

// StatsUseCase 看板统计用例
// 设计说明:
// 1. 四个聚合查询互不依赖,用errgroup并发执行,任一失败则整体失败
// 2. cache为nil时每次都查库;缓存读写失败只记日志
type StatsUseCase struct {
	orderRepo   order.Repository
	productRepo product.Repository
	cache       Cache
	log         *zap.Logger
	now         func() time.Time
}

// NewStatsUseCase 创建看板用例
func NewStatsUseCase(orderRepo order.Repository, productRepo product.Repository, cache Cache, log *zap.Logger) *StatsUseCase {
	return &StatsUseCase{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cache:       cache,
		log:         log,
		now:         time.Now,
	}
}

// Execute 返回看板数据,优先读缓存
func (uc *StatsUseCase) Execute(ctx context.Context) (*Stats, error) {
	ctx, span := tracing.StartSpan(ctx, "dashboard", "Stats")
	defer span.End()

	if uc.cache != nil {
		var cached Stats
		hit, err := uc.cache.Get(ctx, &cached)
		if err != nil {
			uc.log.Warn("读取看板缓存失败", zap.Error(err))
		}
		if hit {
			metrics.DashboardCacheTotal.WithLabelValues("hit").Inc()
			return &cached, nil
		}
		metrics.DashboardCacheTotal.WithLabelValues("miss").Inc()
	}

	stats, err := uc.compute(ctx)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, stats); err != nil {
			uc.log.Warn("写入看板缓存失败", zap.Error(err))
		}
	}
	return stats, nil
}

// Invalidate 订单状态变化后清除缓存
func (uc *StatsUseCase) Invalidate(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx); err != nil {
		uc.log.Warn("清除看板缓存失败", zap.Error(err))
	}
}

func (uc *StatsUseCase) compute(ctx context.Context) (*Stats, error) {
	stats := &Stats{ComputedAt: uc.now()}

	// 每个goroutine只写自己的字段,Wait之后再读
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := uc.orderRepo.Count(gctx)
		stats.TotalOrders = n
		return err
	})
	g.Go(func() error {
		sum, err := uc.orderRepo.SumAllValidatedTotal(gctx)
		stats.Revenue = sum
		return err
	})
	g.Go(func() error {
		n, err := uc.productRepo.Count(gctx)
		stats.TotalProducts = n
		return err
	})
	g.Go(func() error {
		n, err := uc.productRepo.CountLowStock(gctx)
		stats.LowStockCount = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}
