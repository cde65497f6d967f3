package stock

import (
	"context"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/stock"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

// AdjustStockUseCase 直接调整库存
// 注意:这条路径不写流水也不记审计,需要留痕的场景用RecordMovementUseCase
type AdjustStockUseCase struct {
	productRepo product.Repository
}

// NewAdjustStockUseCase 创建调整库存用例
func NewAdjustStockUseCase(productRepo product.Repository) *AdjustStockUseCase {
	return &AdjustStockUseCase{productRepo: productRepo}
}

// IncreaseStock 增加库存
func (uc *AdjustStockUseCase) IncreaseStock(ctx context.Context, productID uint, quantity int) (*ProductStock, error) {
	return uc.adjust(ctx, "IncreaseStock", productID, quantity, 1)
}

// DecreaseStock 扣减库存,不足时返回ErrInsufficientStock
func (uc *AdjustStockUseCase) DecreaseStock(ctx context.Context, productID uint, quantity int) (*ProductStock, error) {
	return uc.adjust(ctx, "DecreaseStock", productID, quantity, -1)
}

func (uc *AdjustStockUseCase) adjust(ctx context.Context, op string, productID uint, quantity, sign int) (*ProductStock, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, op)
	defer span.End()

	if quantity <= 0 {
		return nil, stock.ErrInvalidQuantity
	}
	if err := uc.productRepo.AdjustStock(ctx, productID, sign*quantity); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	p, err := uc.productRepo.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	return toProductStock(p), nil
}
