package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/iruzen-dono/RestaurantApp/internal/application/catalog"
	"github.com/iruzen-dono/RestaurantApp/internal/application/dashboard"
	"github.com/iruzen-dono/RestaurantApp/internal/interface/http/dto"
	"github.com/iruzen-dono/RestaurantApp/pkg/response"
)

// CategoryHandler 分类管理
type CategoryHandler struct {
	create *catalog.CreateCategoryUseCase
	query  *catalog.QueryCategoriesUseCase
	rename *catalog.RenameCategoryUseCase
	delete *catalog.DeleteCategoryUseCase
}

// NewCategoryHandler 创建分类处理器
func NewCategoryHandler(
	create *catalog.CreateCategoryUseCase,
	query *catalog.QueryCategoriesUseCase,
	rename *catalog.RenameCategoryUseCase,
	del *catalog.DeleteCategoryUseCase,
) *CategoryHandler {
	return &CategoryHandler{create: create, query: query, rename: rename, delete: del}
}

// Create 创建分类
// @Summary      创建分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CategoryRequest true "分类"
// @Success      200 {object} response.Response{data=catalog.CategoryResponse}
// @Failure      400 {object} response.Response "40009 分类名称已存在"
// @Router       /categories [post]
func (h *CategoryHandler) Create(c *gin.Context) {
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.create.Execute(c.Request.Context(), req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// List 分类列表
// @Summary      分类列表
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]catalog.CategoryResponse}
// @Router       /categories [get]
func (h *CategoryHandler) List(c *gin.Context) {
	result, err := h.query.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 分类详情
// @Summary      分类详情
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response{data=catalog.CategoryResponse}
// @Router       /categories/{id} [get]
func (h *CategoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update 修改分类名称
// @Summary      修改分类
// @Tags         分类
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Param        request body dto.CategoryRequest true "分类"
// @Success      200 {object} response.Response{data=catalog.CategoryResponse}
// @Router       /categories/{id} [put]
func (h *CategoryHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.rename.Execute(c.Request.Context(), id, req.Label)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Delete 删除分类
// @Summary      删除分类
// @Description  分类下仍有商品时返回40010
// @Tags         分类
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "分类ID"
// @Success      200 {object} response.Response
// @Failure      400 {object} response.Response "40010 该分类下仍有商品"
// @Router       /categories/{id} [delete]
func (h *CategoryHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.delete.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// ProductHandler 商品管理
// 商品变化会影响看板的商品数和低库存数,写操作后清除看板缓存
type ProductHandler struct {
	create *catalog.CreateProductUseCase
	update *catalog.UpdateProductUseCase
	delete *catalog.DeleteProductUseCase
	query  *catalog.QueryProductsUseCase
	stats  *dashboard.StatsUseCase
}

// NewProductHandler 创建商品处理器
func NewProductHandler(
	create *catalog.CreateProductUseCase,
	update *catalog.UpdateProductUseCase,
	del *catalog.DeleteProductUseCase,
	query *catalog.QueryProductsUseCase,
	stats *dashboard.StatsUseCase,
) *ProductHandler {
	return &ProductHandler{create: create, update: update, delete: del, query: query, stats: stats}
}

func toProductRequest(req dto.ProductRequest) catalog.ProductRequest {
	return catalog.ProductRequest{
		Name:           req.Name,
		CategoryID:     req.CategoryID,
		UnitPrice:      req.UnitPrice,
		StockOnHand:    req.StockOnHand,
		AlertThreshold: req.AlertThreshold,
	}
}

// Create 创建商品
// @Summary      创建商品
// @Description  未填写库存默认0，未填写预警阈值默认10
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.ProductRequest true "商品"
// @Success      200 {object} response.Response{data=catalog.ProductResponse}
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var req dto.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.create.Execute(c.Request.Context(), toProductRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, result)
}

// List 商品列表
// @Summary      商品列表
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        category_id query int false "按分类过滤"
// @Success      200 {object} response.Response{data=[]catalog.ProductResponse}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	categoryID, ok := queryID(c, "category_id")
	if !ok {
		return
	}
	result, err := h.query.List(c.Request.Context(), categoryID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// LowStock 低库存商品
// @Summary      低库存商品
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=[]catalog.ProductResponse}
// @Router       /products/low-stock [get]
func (h *ProductHandler) LowStock(c *gin.Context) {
	result, err := h.query.ListLowStock(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Get 商品详情
// @Summary      商品详情
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response{data=catalog.ProductResponse}
// @Router       /products/{id} [get]
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.query.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Update 修改商品
// @Summary      修改商品
// @Tags         商品
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Param        request body dto.ProductRequest true "商品"
// @Success      200 {object} response.Response{data=catalog.ProductResponse}
// @Router       /products/{id} [put]
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ProductRequest
	if !bindJSON(c, &req) {
		return
	}
	result, err := h.update.Execute(c.Request.Context(), id, toProductRequest(req))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, result)
}

// Delete 删除商品
// @Summary      删除商品
// @Tags         商品
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "商品ID"
// @Success      200 {object} response.Response
// @Router       /products/{id} [delete]
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.delete.Execute(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	h.stats.Invalidate(c.Request.Context())
	response.Success(c, nil)
}
