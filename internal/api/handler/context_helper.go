package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/jwt"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	return mustGetString(c, "user_id")
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	return mustGetString(c, "role")
}

// MustGetActor 提取当前请求的用户与角色
func MustGetActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return service.Actor{}, false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: userID, Role: role}, true
}

// MustGetIdentity 还原 Token 中携带的完整身份（档案补建时使用）
func MustGetIdentity(c *gin.Context) (jwt.Identity, bool) {
	actor, ok := MustGetActor(c)
	if !ok {
		return jwt.Identity{}, false
	}
	return jwt.Identity{
		UserID:   actor.UserID,
		Role:     actor.Role,
		Email:    c.GetString("email"),
		FullName: c.GetString("full_name"),
	}, true
}

// GetTokenMeta 返回当前 Access Token 的 jti 与过期时间
func GetTokenMeta(c *gin.Context) (string, time.Time) {
	return c.GetString("jti"), c.GetTime("token_exp")
}

func mustGetString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		response.Unauthorized(c, response.CodeUnauthenticated, "unauthenticated")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, response.CodeUnauthenticated, "unauthenticated")
		return "", false
	}
	return s, true
}
