package dto

// ── 认证模块 DTO ──

// SignupRequest 注册请求
// Email 可只填用户名，由服务端补全学校域名
type SignupRequest struct {
	Email        string `json:"email"         binding:"required,max=255"`
	Password     string `json:"password"      binding:"required,min=8,max=20"`
	FullName     string `json:"full_name"     binding:"required,min=2,max=100"`
	Role         string `json:"role"          binding:"required,oneof=student instructor"`
	UniversityID string `json:"university_id" binding:"omitempty,kku_university_id"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	Email      string `json:"email"    binding:"required,max=255"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CompleteEmailRequest 邮箱补全请求
type CompleteEmailRequest struct {
	Input string `json:"input" binding:"required,max=255"`
	Role  string `json:"role"  binding:"omitempty,oneof=student instructor admin supervisor"`
}

// ── 认证模块响应 ──

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	ExpiresIn    int             `json:"expires_in"` // Access Token 有效期（秒）
	Profile      ProfileResponse `json:"profile"`
}

// SignupResponse 注册成功响应
type SignupResponse struct {
	Profile     ProfileResponse `json:"profile"`
	Enrollments int             `json:"enrollments"` // 演示数据自动选课数
}

// CompleteEmailResponse 邮箱补全响应
type CompleteEmailResponse struct {
	Email string `json:"email"`
}
