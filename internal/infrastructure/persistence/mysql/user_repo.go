package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/user"
)

// userRepository 用户仓储实现（MySQL）
// 设计说明：
// 1. 实现domain/user/repository.go定义的接口
// 2. 登录名唯一性由UNIQUE索引兜底，Service层先ExistsByLogin给出友好提示
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewUserRepository(db *gorm.DB) user.Repository {
	return &userRepository{db: db}
}

// Create 创建用户
// 捕获唯一索引冲突，转换为业务错误ErrLoginDuplicate
func (r *userRepository) Create(ctx context.Context, u *user.User) error {
	model := &UserModel{
		Login:    u.Login,
		Password: u.Password,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return user.ErrLoginDuplicate
		}
		return wrapDBError(err, "创建用户失败")
	}

	u.ID = model.ID
	return nil
}

// FindByID 根据ID查找用户
func (r *userRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	model, err := first[UserModel](r.getDB(ctx).Where("id = ?", id), user.ErrUserNotFound, "查询用户失败")
	if err != nil {
		return nil, err
	}
	return toUserEntity(model), nil
}

// FindByLogin 根据登录名查找用户
func (r *userRepository) FindByLogin(ctx context.Context, login string) (*user.User, error) {
	model, err := first[UserModel](r.getDB(ctx).Where("login = ?", login), user.ErrUserNotFound, "查询用户失败")
	if err != nil {
		return nil, err
	}
	return toUserEntity(model), nil
}

// List SELECT * FROM utilisateur ORDER BY login
func (r *userRepository) List(ctx context.Context) ([]*user.User, error) {
	return find(r.getDB(ctx).Order("login"), toUserEntity, "查询用户列表失败")
}

// Update 更新登录名和密码
func (r *userRepository) Update(ctx context.Context, u *user.User) error {
	err := r.getDB(ctx).Model(&UserModel{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"login":      u.Login,
		"motDePasse": u.Password,
	}).Error
	if err != nil {
		if isDuplicateError(err) {
			return user.ErrLoginDuplicate
		}
		return wrapDBError(err, "更新用户失败")
	}
	return nil
}

// Delete 删除用户
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	return deleteByID[UserModel](r.getDB(ctx), id, user.ErrUserNotFound, "删除用户失败")
}

// ExistsByLogin SELECT COUNT(*) FROM utilisateur WHERE login = ?
func (r *userRepository) ExistsByLogin(ctx context.Context, login string) (bool, error) {
	n, err := count(r.getDB(ctx).Model(&UserModel{}).Where("login = ?", login), "查询用户失败")
	return n > 0, err
}

func (r *userRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFrom(ctx, r.db)
}

// toUserEntity GORM模型 → 领域实体
func toUserEntity(m *UserModel) *user.User {
	return &user.User{
		ID:       m.ID,
		Login:    m.Login,
		Password: m.Password,
	}
}
