package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthPingTimeout = 2 * time.Second

// Pinger 可做连通性检查的依赖
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse 健康检查结果
type HealthResponse struct {
	Status        string    `json:"status"` // ok | degraded
	SetupRequired bool      `json:"setup_required"`
	Database      string    `json:"database"` // up | down | unconfigured
	Redis         string    `json:"redis"`    // up | down | disabled
	Time          time.Time `json:"time"`
}

// HealthHandler 健康检查处理器
type HealthHandler struct {
	db    Pinger
	cache Pinger
}

// NewHealthHandler 创建 HealthHandler；db 为 nil 表示引导模式，cache 为 nil 表示未启用 Redis
func NewHealthHandler(db, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check GET /health
// 数据库不可达返回 503；Redis 只影响 status 字段
func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthPingTimeout)
	defer cancel()

	resp := HealthResponse{Status: "ok", Database: "up", Redis: "disabled", Time: time.Now()}
	code := http.StatusOK

	switch {
	case h.db == nil:
		resp.SetupRequired = true
		resp.Database = "unconfigured"
		resp.Status = "degraded"
	case h.db.Ping(ctx) != nil:
		resp.Database = "down"
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	if h.cache != nil {
		resp.Redis = "up"
		if err := h.cache.Ping(ctx); err != nil {
			resp.Redis = "down"
			resp.Status = "degraded"
		}
	}

	c.JSON(code, resp)
}
