package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/iruzen-dono/RestaurantApp/internal/application/dashboard"
	appstock "github.com/iruzen-dono/RestaurantApp/internal/application/stock"
	"github.com/iruzen-dono/RestaurantApp/internal/domain/stock"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/dto"
	"github.com/iruzen-dono/RestaurantApp/pkg/response"
)

// StockHandler 库存
type StockHandler struct {
	record *appstock.RecordMovementUseCase
	adjust *appstock.AdjustStockUseCase
	list   *appstock.ListMovementsUseCase
	stats  *dashboard.StatsUseCase
}

// NewStockHandler 创建库存处理器
func NewStockHandler(
	record *appstock.RecordMovementUseCase,
	adjust *appstock.AdjustStockUseCase,
	list *appstock.ListMovementsUseCase,
	stats *dashboard.StatsUseCase,
) *StockHandler {
	return &StockHandler{record: record, adjust: adjust, list: list, stats: stats}
}

// RecordMovement 记录库存流水
// @Summary      记录库存流水
// @Description  写流水并原子调整库存；出库数量超过库存返回40001，且不留流水
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.MovementRequest true "流水"
// @Success      200 {object} response.Response{data=appstock.MovementResponse}
// @Failure      400 {object} response.Response "40001 库存不足"
// @Router       /stock/movements [post]
func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req dto.MovementRequest
	if !bindJSON(c, &req) {
		return
	}

	var date time.Time
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			response.Error(c, err)
			return
		}
		date = d
	}

	result, err := h.record.Execute(c.Request.Context(), appstock.RecordMovementRequest{
		ProductID: req.ProductID,
		Type:      stock.MovementType(req.Type),
		Quantity:  req.Quantity,
		Date:      date,
		Reason:    req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, result)
}

// ListMovements 流水列表
// @Summary      流水列表
// @Tags         库存
// @Produce      json
// @Security     BearerAuth
// @Param        product_id query int false "按商品过滤"
// @Param        date query string false "按日期过滤(YYYY-MM-DD)"
// @Success      200 {object} response.Response{data=[]appstock.MovementResponse}
// @Router       /stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	productID, ok := queryID(c, "product_id")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	result, err := h.list.Execute(c.Request.Context(), appstock.ListMovementsQuery{ProductID: productID, Date: date})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Increase 直接增加库存
// @Summary      直接增加库存
// @Description  不记录流水，也不写审计日志
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AdjustStockRequest true "调整"
// @Success      200 {object} response.Response{data=appstock.ProductStock}
// @Router       /stock/increase [post]
func (h *StockHandler) Increase(c *gin.Context) {
	h.applyAdjust(c, h.adjust.IncreaseStock)
}

// Decrease 直接减少库存
// @Summary      直接减少库存
// @Description  不记录流水，也不写审计日志；库存不足返回40001
// @Tags         库存
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.AdjustStockRequest true "调整"
// @Success      200 {object} response.Response{data=appstock.ProductStock}
// @Router       /stock/decrease [post]
func (h *StockHandler) Decrease(c *gin.Context) {
	h.applyAdjust(c, h.adjust.DecreaseStock)
}

func (h *StockHandler) applyAdjust(c *gin.Context, fn func(ctx context.Context, productID uint, quantity int) (*appstock.ProductStock, error)) {
	var req dto.AdjustStockRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := fn(c.Request.Context(), req.ProductID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, result)
}
