package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// SetupGuide 引导模式下返回给前端的配置说明
type SetupGuide struct {
	SetupRequired bool     `json:"setup_required"`
	Missing       []string `json:"missing"`
	Steps         []string `json:"steps"`
}

// SetupMode 数据库未配置时所有 API 统一返回 503 与配置引导
func SetupMode(guide SetupGuide) gin.HandlerFunc {
	return func(c *gin.Context) {
		response.ErrorWithData(c, http.StatusServiceUnavailable, response.CodeSetupRequired,
			"database is not configured, server is running in setup mode", guide)
		c.Abort()
	}
}
