package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/iruzen-dono/RestaurantApp/internal/domain/audit"
	apperrors "github.com/iruzen-dono/RestaurantApp/pkg/errors"
	"github.com/iruzen-dono/RestaurantApp/pkg/jwt"
	"github.com/iruzen-dono/RestaurantApp/pkg/response"
)

// Context中的key
const (
	keyUserID = "user_id"
	keyLogin  = "login"
	keyClaims = "claims"
	keyToken  = "token"
)

var errTokenRevoked = apperrors.New(apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录")

// TokenBlacklist 已登出Token查询(redis.SessionStore实现)
type TokenBlacklist interface {
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 检查Token黑名单
// 3. 验证Token有效性
// 4. 将收银员信息注入Context,审计日志的操作人取自这里
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. 从Header提取Token
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}
		tokenString := parts[1]

		// 2. 检查黑名单（已登出的Token）
		revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), tokenString)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}
		if revoked {
			response.Error(c, errTokenRevoked)
			c.Abort()
			return
		}

		// 3. 验证Token并解析Claims
		claims, err := m.jwtManager.ParseToken(tokenString)
		if err != nil {
			response.Error(c, err) // ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		// 4. 注入Context
		c.Set(keyUserID, claims.UserID)
		c.Set(keyLogin, claims.Login)
		c.Set(keyClaims, claims)
		c.Set(keyToken, tokenString)
		c.Request = c.Request.WithContext(audit.WithActor(c.Request.Context(), claims.Login))

		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetUserID 当前登录用户ID,未登录返回0
func GetUserID(c *gin.Context) uint {
	return c.GetUint(keyUserID)
}

// GetLogin 当前登录名
func GetLogin(c *gin.Context) string {
	return c.GetString(keyLogin)
}

// GetClaims 当前Token的Claims,未经过RequireAuth时返回nil
func GetClaims(c *gin.Context) *jwt.Claims {
	if v, ok := c.Get(keyClaims); ok {
		if claims, ok := v.(*jwt.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetToken 当前请求的Access Token
func GetToken(c *gin.Context) string {
	return c.GetString(keyToken)
}
