package catalog

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/product"
	"github.com/iruzen-dono/RestaurantApp/internal/infrastructure/persistence/mysql"
)

// ProductRequest 创建/更新商品请求
// StockOnHand、AlertThreshold为nil表示未填写
type ProductRequest struct {
	Name           string
	CategoryID     uint
	UnitPrice      decimal.Decimal
	StockOnHand    *int
	AlertThreshold *int
}

func (r ProductRequest) attrs() product.Attrs {
	return product.Attrs{
		Name:           r.Name,
		CategoryID:     r.CategoryID,
		UnitPrice:      r.UnitPrice,
		StockOnHand:    r.StockOnHand,
		AlertThreshold: r.AlertThreshold,
	}
}

// ProductResponse 商品DTO
type ProductResponse struct {
	ID             uint   `json:"id"`
	Name           string `json:"name"`
	CategoryID     uint   `json:"category_id"`
	UnitPrice      string `json:"unit_price"` // 两位小数
	StockOnHand    int    `json:"stock_on_hand"`
	AlertThreshold int    `json:"alert_threshold"`
	LowStock       bool   `json:"low_stock"` // 派生字段:库存低于预警阈值
}

func toProductResponse(p *product.Product) *ProductResponse {
	return &ProductResponse{
		ID:             p.ID,
		Name:           p.Name,
		CategoryID:     p.CategoryID,
		UnitPrice:      p.UnitPrice.StringFixed(2),
		StockOnHand:    p.StockOnHand,
		AlertThreshold: p.AlertThreshold,
		LowStock:       p.IsLowStock(),
	}
}

func toProductResponses(list []*product.Product) []ProductResponse {
	resp := make([]ProductResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, *toProductResponse(p))
	}
	return resp
}

// CreateProductUseCase 创建商品用例
type CreateProductUseCase struct {
	productService product.Service
}

// NewCreateProductUseCase 创建用例
func NewCreateProductUseCase(productService product.Service) *CreateProductUseCase {
	return &CreateProductUseCase{productService: productService}
}

// Execute 执行创建
// 业务规则见product.NewProduct:名称必填,价格>0,库存默认0,阈值默认10
func (uc *CreateProductUseCase) Execute(ctx context.Context, req ProductRequest) (*ProductResponse, error) {
	p, err := uc.productService.Create(ctx, req.attrs())
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// UpdateProductUseCase 更新商品用例
// 属性更新和库存调整在同一事务中,库存不足时属性修改一并回滚
type UpdateProductUseCase struct {
	txManager      *mysql.TxManager
	productService product.Service
}

// NewUpdateProductUseCase 创建用例
func NewUpdateProductUseCase(txManager *mysql.TxManager, productService product.Service) *UpdateProductUseCase {
	return &UpdateProductUseCase{txManager: txManager, productService: productService}
}

// Execute 执行更新
func (uc *UpdateProductUseCase) Execute(ctx context.Context, id uint, req ProductRequest) (*ProductResponse, error) {
	var p *product.Product
	err := uc.txManager.Transaction(ctx, func(txCtx context.Context) error {
		var err error
		p, err = uc.productService.Update(txCtx, id, req.attrs())
		return err
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// DeleteProductUseCase 删除商品用例
type DeleteProductUseCase struct {
	productService product.Service
}

// NewDeleteProductUseCase 创建用例
func NewDeleteProductUseCase(productService product.Service) *DeleteProductUseCase {
	return &DeleteProductUseCase{productService: productService}
}

// Execute 执行删除
func (uc *DeleteProductUseCase) Execute(ctx context.Context, id uint) error {
	return uc.productService.Delete(ctx, id)
}

// QueryProductsUseCase 商品查询用例
type QueryProductsUseCase struct {
	productService product.Service
}

// NewQueryProductsUseCase 创建用例
func NewQueryProductsUseCase(productService product.Service) *QueryProductsUseCase {
	return &QueryProductsUseCase{productService: productService}
}

// Get 按ID查询
func (uc *QueryProductsUseCase) Get(ctx context.Context, id uint) (*ProductResponse, error) {
	p, err := uc.productService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProductResponse(p), nil
}

// List categoryID为0时返回全部商品
func (uc *QueryProductsUseCase) List(ctx context.Context, categoryID uint) ([]ProductResponse, error) {
	var (
		list []*product.Product
		err  error
	)
	if categoryID == 0 {
		list, err = uc.productService.List(ctx)
	} else {
		list, err = uc.productService.ListByCategory(ctx, categoryID)
	}
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}

// ListLowStock 低库存商品
func (uc *QueryProductsUseCase) ListLowStock(ctx context.Context) ([]ProductResponse, error) {
	list, err := uc.productService.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return toProductResponses(list), nil
}
