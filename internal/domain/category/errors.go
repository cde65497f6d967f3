package category

import (
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// 分类领域错误定义
var (
	// ErrCategoryNotFound 分类不存在
	ErrCategoryNotFound = apperrors.New(apperrors.ErrCodeCategoryNotFound, "分类不存在")

	// ErrEmptyLabel 分类名称为空
	ErrEmptyLabel = apperrors.New(apperrors.ErrCodeInvalidParams, "分类名称不能为空")

	// ErrDuplicateLabel 分类名称已存在
	ErrDuplicateLabel = apperrors.New(apperrors.ErrCodeDuplicateEntry, "分类名称已存在")

	// ErrCategoryInUse 分类下仍有商品
	ErrCategoryInUse = apperrors.New(apperrors.ErrCodeConstraintViolation, "该分类下仍有商品,无法删除")
)
