package user

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
)

// DefaultCost bcrypt加密强度
const DefaultCost = 12

// Service 用户领域服务
// 设计说明:
// 1. Authenticate只在数据库故障时返回5xxxx错误,账号密码不匹配返回ErrInvalidCredentials
// 2. 密码统一bcrypt存储
type Service interface {
	// Authenticate 校验登录名和密码
	Authenticate(ctx context.Context, login, password string) (*User, error)

	// UpgradePassword 把旧明文密码改写为bcrypt哈希
	// 只对HasLegacyPassword()为true的用户生效
	UpgradePassword(ctx context.Context, u *User, password string) error

	// CreateUser 创建账号(管理工具/初始化数据使用)
	CreateUser(ctx context.Context, login, password string) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户服务
func NewService(repo Repository) Service {
	return NewServiceWithCost(repo, DefaultCost)
}

// NewServiceWithCost 指定bcrypt强度(测试中使用bcrypt.MinCost加速)
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

// Authenticate 用户登录
// 业务规则:
// 1. 登录名和密码均不能为空
// 2. 登录名不存在或密码错误都返回ErrInvalidCredentials
// 3. 旧明文密码只做比较,升级由调用方通过UpgradePassword完成
func (s *service) Authenticate(ctx context.Context, login, password string) (*User, error) {
	// 1. 参数校验
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	// 2. 根据登录名查找用户
	u, err := s.repo.FindByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. 旧数据:明文比较后升级
	if u.HasLegacyPassword() {
		if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
			return nil, ErrInvalidCredentials
		}
		return u, nil
	}

	// 4. 验证bcrypt密码
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperrors.WithCause(apperrors.ErrInternal, err)
	}
	return u, nil
}

// UpgradePassword 旧明文密码升级为bcrypt
func (s *service) UpgradePassword(ctx context.Context, u *User, password string) error {
	if !u.HasLegacyPassword() {
		return nil
	}
	hashed, err := s.hash(password)
	if err != nil {
		return err
	}
	legacy := u.Password
	u.Password = hashed
	if err := s.repo.Update(ctx, u); err != nil {
		u.Password = legacy
		return err
	}
	return nil
}

// CreateUser 创建账号
func (s *service) CreateUser(ctx context.Context, login, password string) (*User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, ErrEmptyCredentials
	}

	exists, err := s.repo.ExistsByLogin(ctx, login)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrLoginDuplicate
	}

	hashed, err := s.hash(password)
	if err != nil {
		return nil, err
	}

	u := NewUser(login, hashed)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", apperrors.WithCause(apperrors.ErrInternal, err)
	}
	return string(b), nil
}
