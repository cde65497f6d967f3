package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/iruzen-dono/RestaurantApp/internal/application/dashboard"
	apporder "github.com/iruzen-dono/RestaurantApp/internal/application/order"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/dto"
	"github.com/iruzen-dono/RestaurantApp/pkg/response"
)

// OrderUseCases 订单相关用例(依赖较多,打包注入)
type OrderUseCases struct {
	Create     *apporder.CreateOrderUseCase
	Get        *apporder.GetOrderUseCase
	List       *apporder.ListOrdersUseCase
	AddLine    *apporder.AddLineUseCase
	UpdateLine *apporder.UpdateLineQuantityUseCase
	RemoveLine *apporder.RemoveLineUseCase
	Validate   *apporder.ValidateOrderUseCase
	Cancel     *apporder.CancelOrderUseCase
	Delete     *apporder.DeleteOrderUseCase
	Revenue    *apporder.RevenueUseCase
}

// OrderHandler 订单HTTP处理器
// 订单状态变化(结账、取消、删除)后清除看板缓存,收银台刷新时看到最新数据
type OrderHandler struct {
	uc    OrderUseCases
	stats *dashboard.StatsUseCase
}

// NewOrderHandler 创建订单处理器
func NewOrderHandler(uc OrderUseCases, stats *dashboard.StatsUseCase) *OrderHandler {
	return &OrderHandler{uc: uc, stats: stats}
}

// Create 开单
// @Summary      开单
// @Description  创建进行中的订单，总金额为0
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Router       /orders [post]
func (h *OrderHandler) Create(c *gin.Context) {
	result, err := h.uc.Create.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, result)
}

// List 订单列表
// @Summary      订单列表
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        date query string false "按日期过滤(YYYY-MM-DD)"
// @Success      200 {object} response.Response{data=[]apporder.OrderResponse}
// @Router       /orders [get]
func (h *OrderHandler) List(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	result, err := h.uc.List.Execute(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 订单详情(含明细)
// @Summary      订单详情
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.uc.Get.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// AddLine 加菜
// @Summary      加菜
// @Description  以当前售价快照写入明细，并原子累加订单总额
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        request body dto.AddLineRequest true "明细"
// @Success      200 {object} response.Response{data=apporder.LineResponse}
// @Failure      400 {object} response.Response "40005 订单不可再修改"
// @Router       /orders/{id}/lines [post]
func (h *OrderHandler) AddLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.AddLineRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.uc.AddLine.Execute(c.Request.Context(), apporder.AddLineRequest{
		OrderID:   id,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// UpdateLine 修改明细数量
// @Summary      修改明细数量
// @Tags         订单
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        lineId path int true "明细ID"
// @Param        request body dto.UpdateLineRequest true "数量"
// @Success      200 {object} response.Response{data=apporder.LineResponse}
// @Router       /orders/{id}/lines/{lineId} [put]
func (h *OrderHandler) UpdateLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return
	}
	var req dto.UpdateLineRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.uc.UpdateLine.Execute(c.Request.Context(), apporder.UpdateLineQuantityRequest{
		OrderID:  id,
		LineID:   lineID,
		Quantity: req.Quantity,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RemoveLine 删除明细
// @Summary      删除明细
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Param        lineId path int true "明细ID"
// @Success      200 {object} response.Response
// @Router       /orders/{id}/lines/{lineId} [delete]
func (h *OrderHandler) RemoveLine(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	lineID, ok := pathID(c, "lineId")
	if !ok {
		return
	}
	if err := h.uc.RemoveLine.Execute(c.Request.Context(), id, lineID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Validate 结账
// @Summary      结账
// @Description  只有进行中的订单可以结账
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Failure      400 {object} response.Response "40002 订单状态不允许此操作"
// @Router       /orders/{id}/validate [post]
func (h *OrderHandler) Validate(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.uc.Validate.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, result)
}

// Cancel 取消订单
// @Summary      取消订单
// @Description  进行中或已结账的订单都可以取消，已取消的订单再次取消返回40003
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response{data=apporder.OrderResponse}
// @Router       /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.uc.Cancel.Execute(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, result)
}

// Delete 删除订单
// @Summary      删除订单
// @Description  进行中的订单必须先取消，删除时一并删除全部明细
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "订单ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "40004 进行中的订单不能删除"
// @Router       /orders/{id} [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.uc.Delete.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, nil)
}

// Revenue 营业额
// @Summary      营业额
// @Description  只统计已结账订单；传date查单日，传from+to查区间(含两端)，无数据返回0
// @Tags         订单
// @Produce      json
// @Security     BearerAuth
// @Param        date query string false "日期(YYYY-MM-DD)"
// @Param        from query string false "开始日期"
// @Param        to query string false "结束日期"
// @Success      200 {object} response.Response{data=apporder.RevenueResponse}
// @Router       /revenue [get]
func (h *OrderHandler) Revenue(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		result *apporder.RevenueResponse
		err    error
	)
	switch {
	case c.Query("from") != "" || c.Query("to") != "":
		from, ferr := parseDate(c.Query("from"))
		to, terr := parseDate(c.Query("to"))
		if ferr != nil || terr != nil {
			response.Error(c, errInvalidDate)
			return
		}
		result, err = h.uc.Revenue.ComputeRevenueBetween(ctx, from, to)
	default:
		date, ok := queryDate(c, "date")
		if !ok {
			return
		}
		if date == nil {
			response.Error(c, errInvalidDate)
			return
		}
		result, err = h.uc.Revenue.ComputeRevenue(ctx, *date)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
