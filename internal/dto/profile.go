package dto

import "time"

// ── 用户档案 DTO ──

// ProfileListRequest 档案列表查询参数
type ProfileListRequest struct {
	PaginationRequest
	Role    string `form:"role"    binding:"omitempty,oneof=student instructor admin supervisor"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// UpdateRoleRequest 修改角色请求
type UpdateRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=student instructor admin supervisor"`
}

// ProfileResponse 档案信息（脱敏）
type ProfileResponse struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	UniversityID string    `json:"university_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
