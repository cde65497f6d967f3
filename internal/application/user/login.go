package user

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/user"
	"github.com/iruzen-dono/RestaurantApp/pkg/jwt"
	"github.com/iruzen-dono/RestaurantApp/pkg/tracing"
)

const tracerName = "user"

// SessionStore 会话存储能力
// 生产环境由redis.SessionStore实现,未启用Redis时使用NopSessionStore
type SessionStore interface {
	SaveSession(ctx context.Context, userID uint, sessionData map[string]interface{}, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID uint) error
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// NopSessionStore 不保存会话,也不支持拉黑Token
type NopSessionStore struct{}

func (NopSessionStore) SaveSession(context.Context, uint, map[string]interface{}, time.Duration) error {
	return nil
}

func (NopSessionStore) DeleteSession(context.Context, uint) error { return nil }

func (NopSessionStore) AddToBlacklist(context.Context, string, time.Duration) error { return nil }

func (NopSessionStore) IsInBlacklist(context.Context, string) (bool, error) { return false, nil }

// LoginUseCase 收银员登录用例
// 设计说明：
// 1. 校验登录名和密码（领域服务）,旧明文密码顺带升级(失败记WARN)
// 2. 生成JWT Token对
// 3. 保存会话到Redis(失败只记日志,不影响登录)
type LoginUseCase struct {
	userService  user.Service
	jwtManager   *jwt.Manager
	sessionStore SessionStore
	log          *zap.Logger
	now          func() time.Time
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(
	userService user.Service,
	jwtManager *jwt.Manager,
	sessionStore SessionStore,
	log *zap.Logger,
) *LoginUseCase {
	return &LoginUseCase{
		userService:  userService,
		jwtManager:   jwtManager,
		sessionStore: sessionStore,
		log:          log,
		now:          time.Now,
	}
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	ctx, span := tracing.StartSpan(ctx, tracerName, "Login")
	defer span.End()

	// 1. 校验账号
	u, err := uc.userService.Authenticate(ctx, req.Login, req.Password)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	if u.HasLegacyPassword() {
		if err := uc.userService.UpgradePassword(ctx, u, req.Password); err != nil {
			uc.log.Warn("旧密码升级失败", zap.Uint("user_id", u.ID), zap.Error(err))
		}
	}

	// 2. 生成JWT Token对
	tokenPair, err := uc.jwtManager.GenerateToken(u.ID, u.Login)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	// 3. 保存会话,有效期与Refresh Token一致
	sessionData := map[string]interface{}{
		"user_id":  u.ID,
		"login":    u.Login,
		"login_at": uc.now().Unix(),
		"ip":       req.ClientIP,
	}
	if err := uc.sessionStore.SaveSession(ctx, u.ID, sessionData, uc.jwtManager.RefreshTokenExpire()); err != nil {
		uc.log.Warn("保存会话失败", zap.Uint("user_id", u.ID), zap.Error(err))
	}

	uc.log.Info("收银员登录", zap.String("login", u.Login), zap.String("ip", req.ClientIP))

	return &LoginResponse{
		User:         UserInfo{ID: u.ID, Login: u.Login},
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, nil
}

// LogoutUseCase 登出用例
type LogoutUseCase struct {
	sessionStore SessionStore
	now          func() time.Time
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(sessionStore SessionStore) *LogoutUseCase {
	return &LogoutUseCase{sessionStore: sessionStore, now: time.Now}
}

// Execute 执行登出
// 1. 删除会话
// 2. Access Token加入黑名单,TTL为剩余有效期(防止Token在过期前继续使用)
func (uc *LogoutUseCase) Execute(ctx context.Context, claims *jwt.Claims, accessToken string) error {
	if err := uc.sessionStore.DeleteSession(ctx, claims.UserID); err != nil {
		return err
	}
	return uc.sessionStore.AddToBlacklist(ctx, accessToken, claims.Remaining(uc.now()))
}

// =========================================
// 应用层DTO
// =========================================

// LoginRequest 登录请求
type LoginRequest struct {
	Login    string
	Password string
	ClientIP string
}

// LoginResponse 登录响应
type LoginResponse struct {
	User         UserInfo `json:"user"`
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int64    `json:"expires_in"` // Access Token过期时间（秒）
}

// UserInfo 用户信息(不返回密码)
type UserInfo struct {
	ID    uint   `json:"id"`
	Login string `json:"login"`
}
