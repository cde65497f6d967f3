package order

import (
	"context"
	"time"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/order"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// GetOrderUseCase 查询订单详情(含明细)
type GetOrderUseCase struct {
	orderRepo order.Repository
	lineRepo  order.LineRepository
}

// NewGetOrderUseCase 创建查询用例
func NewGetOrderUseCase(orderRepo order.Repository, lineRepo order.LineRepository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo, lineRepo: lineRepo}
}

// Execute 执行查询
func (uc *GetOrderUseCase) Execute(ctx context.Context, orderID uint) (*OrderResponse, error) {
	o, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	lines, err := uc.lineRepo.ListByOrder(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	for _, l := range lines {
		o.Lines = append(o.Lines, *l)
	}
	return toOrderResponse(o), nil
}

// ListOrdersUseCase 订单列表
type ListOrdersUseCase struct {
	orderRepo order.Repository
}

// NewListOrdersUseCase 创建列表用例
func NewListOrdersUseCase(orderRepo order.Repository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// Execute date为nil时返回全部(按日期倒序),否则返回当天的订单
func (uc *ListOrdersUseCase) Execute(ctx context.Context, date *time.Time) ([]*OrderResponse, error) {
	var (
		orders []*order.Order
		err    error
	)
	if date != nil {
		orders, err = uc.orderRepo.ListByDate(ctx, *date)
	} else {
		orders, err = uc.orderRepo.List(ctx)
	}
	if err != nil {
		return nil, err
	}

	out := make([]*OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out, nil
}

// RevenueUseCase 营业额统计
// 只统计已结账订单,日期区间含两端,没有数据时返回0
type RevenueUseCase struct {
	orderRepo order.Repository
}

// NewRevenueUseCase 创建营业额用例
func NewRevenueUseCase(orderRepo order.Repository) *RevenueUseCase {
	return &RevenueUseCase{orderRepo: orderRepo}
}

// ComputeRevenue 某天的营业额
func (uc *RevenueUseCase) ComputeRevenue(ctx context.Context, date time.Time) (*RevenueResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ComputeRevenue")
	defer span.End()

	sum, err := uc.orderRepo.SumValidatedTotal(ctx, date)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	day := date.Format(dateLayout)
	return &RevenueResponse{From: day, To: day, Revenue: sum.StringFixed(2)}, nil
}

// ComputeRevenueBetween 日期区间的营业额,from晚于to时返回ErrInvalidDateRange
func (uc *RevenueUseCase) ComputeRevenueBetween(ctx context.Context, from, to time.Time) (*RevenueResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "ComputeRevenueBetween")
	defer span.End()

	if order.DateOf(from).After(order.DateOf(to)) {
		return nil, order.ErrInvalidDateRange
	}

	sum, err := uc.orderRepo.SumValidatedTotalBetween(ctx, from, to)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	return &RevenueResponse{
		From:    from.Format(dateLayout),
		To:      to.Format(dateLayout),
		Revenue: sum.StringFixed(2),
	}, nil
}
