package order

import (
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// 订单领域错误定义
var (
	// ErrOrderNotFound 订单不存在
	ErrOrderNotFound = apperrors.New(apperrors.ErrCodeOrderNotFound, "订单不存在")

	// ErrLineNotFound 订单明细不存在
	ErrLineNotFound = apperrors.New(apperrors.ErrCodeLineNotFound, "订单明细不存在")

	// ErrInvalidStateTransition 非法的状态转换(如重复结账)
	ErrInvalidStateTransition = apperrors.New(apperrors.ErrCodeInvalidStateTransition, "订单状态不允许此操作")

	// ErrAlreadyCancelled 订单已取消
	ErrAlreadyCancelled = apperrors.New(apperrors.ErrCodeAlreadyCancelled, "订单已经取消")

	// ErrOrderNotDeletable 进行中的订单不能删除
	ErrOrderNotDeletable = apperrors.New(apperrors.ErrCodeOrderNotDeletable, "进行中的订单不能删除,请先取消")

	// ErrOrderNotEditable 订单已结账或取消,不能再修改明细
	ErrOrderNotEditable = apperrors.New(apperrors.ErrCodeOrderNotEditable, "订单已结束,不能修改明细")

	// ErrInvalidQuantity 数量不合法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")

	// ErrInvalidDateRange 日期范围不合法
	ErrInvalidDateRange = apperrors.New(apperrors.ErrCodeInvalidParams, "开始日期不能晚于结束日期")
)
