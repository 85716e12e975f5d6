package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	corsAllowHeaders = "Content-Type, Authorization, X-Request-ID"
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	// Content-Disposition 供前端读取导出的出勤表文件名
	corsExposeHeaders = "Content-Disposition, Retry-After, X-Request-ID"
)

// CORS 跨域中间件。allowOrigins 含 "*" 时放行任意来源但不允许携带凭证（公开统计页嵌入场景）。
// 只有带 Access-Control-Request-Method 的 OPTIONS 才按预检处理。
func CORS(allowOrigins []string) gin.HandlerFunc {
	allowed := make(map[string]bool, len(allowOrigins))
	wildcard := false
	for _, o := range allowOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			wildcard = true
			continue
		}
		allowed[o] = true
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		c.Header("Vary", "Origin")

		switch {
		case origin == "":
		case allowed[origin]:
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
		case wildcard:
			c.Header("Access-Control-Allow-Origin", "*")
		default:
			// 非白名单来源不返回 CORS 头，由浏览器拦截
			origin = ""
		}

		preflight := c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""
		if origin != "" {
			c.Header("Access-Control-Expose-Headers", corsExposeHeaders)
			if preflight {
				c.Header("Access-Control-Allow-Headers", corsAllowHeaders)
				c.Header("Access-Control-Allow-Methods", corsAllowMethods)
				c.Header("Access-Control-Max-Age", "86400")
			}
		}

		if preflight {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
