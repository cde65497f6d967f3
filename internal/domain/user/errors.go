package user

import (
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// 用户领域错误定义
var (
	// ErrUserNotFound 用户不存在
	ErrUserNotFound = apperrors.New(apperrors.ErrCodeUserNotFound, "用户不存在")

	// ErrLoginDuplicate 登录名已存在
	ErrLoginDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "登录名已存在")

	// ErrEmptyCredentials 登录名或密码为空
	ErrEmptyCredentials = apperrors.New(apperrors.ErrCodeInvalidParams, "请输入登录名和密码")

	// ErrInvalidCredentials 登录名或密码错误
	// 注意:不区分"用户不存在"和"密码错误",防止枚举账号
	ErrInvalidCredentials = apperrors.ErrInvalidCredentials
)
