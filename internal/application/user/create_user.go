package user

import (
	"context"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/user"
)

// CreateUserUseCase 创建账号用例
// 没有开放注册接口,由cmd/useradd管理工具调用
type CreateUserUseCase struct {
	userService user.Service
}

// NewCreateUserUseCase 创建用例
func NewCreateUserUseCase(userService user.Service) *CreateUserUseCase {
	return &CreateUserUseCase{userService: userService}
}

// Execute 创建账号,密码以bcrypt哈希保存
func (uc *CreateUserUseCase) Execute(ctx context.Context, req CreateUserRequest) (*UserInfo, error) {
	u, err := uc.userService.CreateUser(ctx, req.Login, req.Password)
	if err != nil {
		return nil, err
	}
	return &UserInfo{ID: u.ID, Login: u.Login}, nil
}

// CreateUserRequest 创建账号请求
type CreateUserRequest struct {
	Login    string
	Password string
}
