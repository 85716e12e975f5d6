package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/redis"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

var rateLimitedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "attendance",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Requests rejected by the rate limiter, by scope.",
}, []string{"scope"})

// RateRule 一类接口的限流规则
type RateRule struct {
	Scope  string // auth | check-in，区分 Redis 键与指标
	Limit  int
	Window time.Duration
}

// RateLimit 按 Scope 限流：已登录时以用户为主体（同一学生反复猜签到码），否则以客户端 IP 为主体（登录、注册）。
// rdb 为 nil、Limit<=0 或 Redis 出错时放行，与 JWTAuth 的降级策略一致。
func RateLimit(rdb *redis.Client, rule RateRule, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || rule.Limit <= 0 {
			c.Next()
			return
		}

		key := "rate_limit:" + rule.Scope + ":" + rateSubject(c)
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, rule.Limit, rule.Window)
		if err != nil {
			logger.Warn("限流检查失败，降级放行", zap.String("scope", rule.Scope), zap.Error(err))
			c.Next()
			return
		}
		if !allowed {
			rateLimitedTotal.WithLabelValues(rule.Scope).Inc()
			logger.Info("请求被限流",
				zap.String("scope", rule.Scope),
				zap.String("subject", rateSubject(c)),
				zap.String("request_id", c.GetString(requestIDKey)),
			)
			response.TooManyRequests(c, rule.Window)
			c.Abort()
			return
		}

		c.Next()
	}
}

func rateSubject(c *gin.Context) string {
	if uid := c.GetString("user_id"); uid != "" {
		return "user:" + uid
	}
	return "ip:" + c.ClientIP()
}
