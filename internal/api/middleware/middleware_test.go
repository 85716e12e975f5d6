package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/config"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-key-for-middleware",
		AccessTokenTTL:          time.Hour,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 7 * 24 * time.Hour,
	})
}

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	id := jwt.Identity{UserID: "u1", Role: "student", Email: "s@kku.edu.sa", FullName: "Sara"}
	access, _ := mgr.GenerateAccessToken(id)
	refresh, _ := mgr.GenerateRefreshToken(id, false)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"缺少认证头", "", http.StatusUnauthorized},
		{"格式错误", "Token " + access, http.StatusUnauthorized},
		{"无效 Token", "Bearer not-a-token", http.StatusUnauthorized},
		{"Refresh Token 不可访问", "Bearer " + refresh, http.StatusUnauthorized},
		{"合法 Access Token", "Bearer " + access, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUser, gotEmail, gotJTI string
			r := gin.New()
			r.GET("/x", JWTAuth(mgr, nil, zap.NewNop()), func(c *gin.Context) {
				gotUser = c.GetString("user_id")
				gotEmail = c.GetString("email")
				gotJTI = c.GetString("jti")
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest("GET", "/x", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.status {
				t.Fatalf("期望 HTTP %d，实际=%d", tt.status, w.Code)
			}
			if tt.status == http.StatusOK && (gotUser != "u1" || gotEmail != "s@kku.edu.sa" || gotJTI == "") {
				t.Errorf("上下文注入不完整: user=%s email=%s jti=%s", gotUser, gotEmail, gotJTI)
			}
		})
	}
}

func TestRoleAuth(t *testing.T) {
	tests := []struct {
		role   string
		status int
	}{
		{"admin", http.StatusOK},
		{"instructor", http.StatusOK},
		{"student", http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) {
				if tt.role != "" {
					c.Set("role", tt.role)
				}
			}, RoleAuth("admin", "instructor"), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
			if w.Code != tt.status {
				t.Errorf("期望 HTTP %d，实际=%d", tt.status, w.Code)
			}
		})
	}
}

func TestRateLimit_NilRedisPassesThrough(t *testing.T) {
	r := gin.New()
	rule := RateRule{Scope: "auth", Limit: 1, Window: time.Minute}
	r.POST("/login", RateLimit(nil, rule, zap.NewNop()), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("POST", "/login", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("第 %d 次请求期望放行，实际=%d", i+1, w.Code)
		}
	}
}

func TestRateSubject(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/v1/sessions/check-in", nil)
	c.Request.RemoteAddr = "10.0.0.7:5555"
	if got := rateSubject(c); got != "ip:10.0.0.7" {
		t.Errorf("未登录期望按 IP 计数，实际=%s", got)
	}
	c.Set("user_id", "s1")
	if got := rateSubject(c); got != "user:s1" {
		t.Errorf("已登录期望按学生计数，实际=%s", got)
	}
}

func TestBodyLimit(t *testing.T) {
	r := gin.New()
	r.Use(BodyLimit(8, map[string]int64{"/courses/:id/schedules/import": 32}))
	ok := func(c *gin.Context) { c.Status(http.StatusOK) }
	r.POST("/sessions", ok)
	r.POST("/courses/:id/schedules/import", ok)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/sessions", strings.NewReader("0123456789")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("期望 413，实际=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "limit is 8 bytes") {
		t.Errorf("期望返回上限说明，实际=%s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/sessions", strings.NewReader("short")))
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际=%d", w.Code)
	}

	// 课表导入路由使用放宽后的上限
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/courses/c1/schedules/import", strings.NewReader("BEGIN:VCALENDAR\r\n")))
	if w.Code != http.StatusOK {
		t.Errorf("导入路由期望 200，实际=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("POST", "/courses/c1/schedules/import", strings.NewReader(strings.Repeat("x", 33))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("导入路由超限期望 413，实际=%d", w.Code)
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/api/v1/sessions", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/sessions", nil))
	if w.Header().Get("Cache-Control") != "no-store" {
		t.Errorf("API 响应应禁止缓存，实际=%q", w.Header().Get("Cache-Control"))
	}
	if w.Header().Get("Strict-Transport-Security") != "" {
		t.Error("HTTP 请求不应带 HSTS")
	}

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Strict-Transport-Security") == "" {
		t.Error("经网关的 HTTPS 请求应带 HSTS")
	}
	if w.Header().Get("Cache-Control") != "" {
		t.Errorf("非 API 路径不设 Cache-Control，实际=%q", w.Header().Get("Cache-Control"))
	}
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.GET("/x", RequestID(), func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "abc" || w.Header().Get("X-Request-ID") != "abc" {
		t.Errorf("期望沿用传入的请求 ID，实际 body=%s", w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
	if len(w.Header().Get("X-Request-ID")) != 36 {
		t.Errorf("期望生成 UUID，实际=%s", w.Header().Get("X-Request-ID"))
	}
}

func TestSetupMode(t *testing.T) {
	r := gin.New()
	r.Use(SetupMode(SetupGuide{SetupRequired: true, Missing: []string{"db.host"}}))
	r.GET("/api/v1/courses", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/courses", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("期望 503，实际=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "db.host") {
		t.Errorf("期望返回缺失配置项，实际=%s", w.Body.String())
	}
}

func TestCORS(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"http://localhost:5173/"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("OPTIONS", "/x", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "POST")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("期望预检返回 204，实际=%d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "http://localhost:5173" {
		t.Errorf("期望放行白名单来源，实际=%s", w.Header().Get("Access-Control-Allow-Origin"))
	}

	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Error("期望非白名单来源不返回 CORS 头")
	}
}

func TestCORS_Wildcard(t *testing.T) {
	r := gin.New()
	r.Use(CORS([]string{"*"}))
	r.GET("/api/v1/stats/public", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest("GET", "/api/v1/stats/public", nil)
	req.Header.Set("Origin", "https://kku.edu.sa")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("通配来源期望 *，实际=%q", w.Header().Get("Access-Control-Allow-Origin"))
	}
	if w.Header().Get("Access-Control-Allow-Credentials") != "" {
		t.Error("通配来源不应允许携带凭证")
	}
}
