package user

import (
	"context"
)

// Repository 用户仓储接口
// 具体实现在infrastructure/persistence/mysql层
type Repository interface {
	// Create 创建用户
	// 登录名已存在时返回ErrLoginDuplicate
	Create(ctx context.Context, user *User) error

	// FindByID 不存在时返回ErrUserNotFound
	FindByID(ctx context.Context, id uint) (*User, error)

	// FindByLogin 不存在时返回ErrUserNotFound
	FindByLogin(ctx context.Context, login string) (*User, error)

	// List 按登录名排序
	List(ctx context.Context) ([]*User, error)

	// Update 更新用户信息
	Update(ctx context.Context, user *User) error

	// Delete 删除用户
	Delete(ctx context.Context, id uint) error

	// ExistsByLogin 登录名是否已被使用
	ExistsByLogin(ctx context.Context, login string) (bool, error)
}
