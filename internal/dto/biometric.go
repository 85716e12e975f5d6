package dto

import "time"

// ── 指纹验证 DTO ──

// BiometricVerifyRequest 指纹验证请求；带签到码时验证成功后直接签到
type BiometricVerifyRequest struct {
	SessionCode string `json:"session_code" binding:"omitempty,min=4,max=12"`
}

// BiometricVerifyResponse 指纹验证结果
type BiometricVerifyResponse struct {
	Success     bool                `json:"success"`
	State       string              `json:"state"`
	MatchScore  float64             `json:"match_score,omitempty"`
	Checks      map[string]bool     `json:"checks"`
	FailedCheck string              `json:"failed_check,omitempty"`
	Message     string              `json:"message,omitempty"`
	Timestamp   time.Time           `json:"timestamp"`
	Attendance  *AttendanceResponse `json:"attendance,omitempty"`
}

// BiometricStatusResponse 扫描器状态
type BiometricStatusResponse struct {
	State string                   `json:"state"`
	Last  *BiometricVerifyResponse `json:"last,omitempty"`
}
