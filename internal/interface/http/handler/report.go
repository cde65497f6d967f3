package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/gin-gonic/gin"

	appaudit "github.com/iruzen-dono/RestaurantApp/internal/application/audit"
	"github.com/iruzen-dono/RestaurantApp/internal/application/dashboard"
	"github.com/iruzen-dono/RestaurantApp/internal/application/export"
	"github.com/iruzen-dono/RestaurantApp/pkg/response"
)

// AuditHandler 审计日志查询
type AuditHandler struct {
	list *appaudit.ListEntriesUseCase
}

// NewAuditHandler 创建审计处理器
func NewAuditHandler(list *appaudit.ListEntriesUseCase) *AuditHandler {
	return &AuditHandler{list: list}
}

// List 审计日志(最新的在前)
// @Summary      审计日志
// @Tags         审计
// @Produce      json
// @Security     BearerAuth
// @Param        table query string false "按表过滤(ligne_commande/mouvement_stock)"
// @Success      200 {object} response.Response{data=[]appaudit.EntryResponse}
// @Router       /audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	result, err := h.list.Execute(c.Request.Context(), c.Query("table"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// DashboardHandler 看板
type DashboardHandler struct {
	stats *dashboard.StatsUseCase
}

// NewDashboardHandler 创建看板处理器
func NewDashboardHandler(stats *dashboard.StatsUseCase) *DashboardHandler {
	return &DashboardHandler{stats: stats}
}

// Stats 看板统计
// @Summary      看板统计
// @Description  订单总数、营业额、商品数、低库存商品数
// @Tags         看板
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dashboard.Stats}
// @Router       /dashboard [get]
func (h *DashboardHandler) Stats(c *gin.Context) {
	result, err := h.stats.Execute(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ExportHandler CSV下载
type ExportHandler struct {
	export *export.ExportUseCase
}

// NewExportHandler 创建导出处理器
func NewExportHandler(uc *export.ExportUseCase) *ExportHandler {
	return &ExportHandler{export: uc}
}

// Products 导出商品表
// @Summary      导出商品CSV
// @Tags         导出
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200 {string} string "CSV"
// @Router       /exports/products.csv [get]
func (h *ExportHandler) Products(c *gin.Context) {
	h.write(c, export.ProductsFile, h.export.ExportProducts)
}

// Orders 导出订单表
// @Summary      导出订单CSV
// @Tags         导出
// @Produce      text/csv
// @Security     BearerAuth
// @Success      200 {string} string "CSV"
// @Router       /exports/orders.csv [get]
func (h *ExportHandler) Orders(c *gin.Context) {
	h.write(c, export.OrdersFile, h.export.ExportOrders)
}

// write 先写到内存,出错时还能返回JSON错误
func (h *ExportHandler) write(c *gin.Context, filename string, fn func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(c.Request.Context(), &buf); err != nil {
		response.Error(c, err)
		return
	}
	response.CSV(c, filename, buf.Bytes())
}
