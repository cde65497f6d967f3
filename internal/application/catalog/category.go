package catalog

import (
	"context"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/category"
)

// CategoryResponse 分类DTO
type CategoryResponse struct {
	ID    uint   `json:"id"`
	Label string `json:"label"`
}

func toCategoryResponse(c *category.Category) *CategoryResponse {
	return &CategoryResponse{ID: c.ID, Label: c.Label}
}

// CreateCategoryUseCase 创建分类用例
type CreateCategoryUseCase struct {
	categoryService category.Service
}

// NewCreateCategoryUseCase 创建用例
func NewCreateCategoryUseCase(categoryService category.Service) *CreateCategoryUseCase {
	return &CreateCategoryUseCase{categoryService: categoryService}
}

// Execute 名称去除首尾空格后不能为空,且不能重复
func (uc *CreateCategoryUseCase) Execute(ctx context.Context, label string) (*CategoryResponse, error) {
	c, err := uc.categoryService.Create(ctx, label)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// QueryCategoriesUseCase 分类查询用例
type QueryCategoriesUseCase struct {
	categoryService category.Service
}

// NewQueryCategoriesUseCase 创建用例
func NewQueryCategoriesUseCase(categoryService category.Service) *QueryCategoriesUseCase {
	return &QueryCategoriesUseCase{categoryService: categoryService}
}

// Get 按ID查询
func (uc *QueryCategoriesUseCase) Get(ctx context.Context, id uint) (*CategoryResponse, error) {
	c, err := uc.categoryService.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// List 全部分类,按名称排序
func (uc *QueryCategoriesUseCase) List(ctx context.Context) ([]CategoryResponse, error) {
	list, err := uc.categoryService.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := make([]CategoryResponse, 0, len(list))
	for _, c := range list {
		resp = append(resp, *toCategoryResponse(c))
	}
	return resp, nil
}

// RenameCategoryUseCase 修改分类名称用例
type RenameCategoryUseCase struct {
	categoryService category.Service
}

// NewRenameCategoryUseCase 创建用例
func NewRenameCategoryUseCase(categoryService category.Service) *RenameCategoryUseCase {
	return &RenameCategoryUseCase{categoryService: categoryService}
}

// Execute 执行改名
func (uc *RenameCategoryUseCase) Execute(ctx context.Context, id uint, label string) (*CategoryResponse, error) {
	c, err := uc.categoryService.Rename(ctx, id, label)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// DeleteCategoryUseCase 删除分类用例
// 仍有商品引用时返回category.ErrCategoryInUse
type DeleteCategoryUseCase struct {
	categoryService category.Service
}

// NewDeleteCategoryUseCase 创建用例
func NewDeleteCategoryUseCase(categoryService category.Service) *DeleteCategoryUseCase {
	return &DeleteCategoryUseCase{categoryService: categoryService}
}

// Execute 执行删除
func (uc *DeleteCategoryUseCase) Execute(ctx context.Context, id uint) error {
	return uc.categoryService.Delete(ctx, id)
}
