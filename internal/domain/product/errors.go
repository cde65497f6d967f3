package product

import (
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// 商品领域错误定义
var (
	// ErrProductNotFound 商品不存在
	ErrProductNotFound = apperrors.New(apperrors.ErrCodeProductNotFound, "商品不存在")

	// ErrEmptyName 商品名称为空
	ErrEmptyName = apperrors.New(apperrors.ErrCodeInvalidParams, "商品名称不能为空")

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存不能为负数")

	// ErrInvalidThreshold 无效的预警阈值
	ErrInvalidThreshold = apperrors.New(apperrors.ErrCodeInvalidParams, "预警阈值不能为负数")

	// ErrInvalidQuantity 无效的数量
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "库存不足")
)

// ErrCategoryMissing 指定的分类不存在
var ErrCategoryMissing = apperrors.New(apperrors.ErrCodeCategoryNotFound, "分类不存在")
