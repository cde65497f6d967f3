package stock

import (
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrMovementNotFound 库存流水不存在
	ErrMovementNotFound = apperrors.New(apperrors.ErrCodeMovementNotFound, "库存流水不存在")

	// ErrInvalidQuantity 数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInvalidMovementType 类型不合法
	ErrInvalidMovementType = apperrors.New(apperrors.ErrCodeInvalidParams, "流水类型必须是ENTREE或SORTIE")
)
