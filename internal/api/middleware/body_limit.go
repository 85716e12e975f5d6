package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// BodyLimit 请求体大小限制。JSON 接口统一用 maxBytes；
// overrides 按路由模板（如 ICS 课表导入）放宽上限。
// 全局中间件在路由匹配后执行，c.FullPath 可用。
func BodyLimit(maxBytes int64, overrides map[string]int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := maxBytes
		if n, ok := overrides[c.FullPath()]; ok {
			limit = n
		}
		if limit <= 0 || c.Request.Body == nil {
			c.Next()
			return
		}

		// 声明了长度的请求直接拒绝，无需读取
		if c.Request.ContentLength > limit {
			response.PayloadTooLarge(c, limit)
			c.Abort()
			return
		}
		// 分块上传由 MaxBytesReader 在读取时截断，handler 绑定失败后返回 400
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

		c.Next()
	}
}
