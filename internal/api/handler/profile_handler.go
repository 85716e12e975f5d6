package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/dto"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/internal/service"
	"github.com/AhmedAbdulrahmansaad/smart-attendance-system-kku-sub001/pkg/response"
)

// ProfileHandler 用户档案 HTTP 处理器
type ProfileHandler struct {
	profileSvc service.ProfileService
}

// NewProfileHandler 创建 ProfileHandler
func NewProfileHandler(profileSvc service.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileSvc: profileSvc}
}

// List 档案列表
// GET /api/v1/profiles?role=&keyword=&page=&page_size=
func (h *ProfileHandler) List(c *gin.Context) {
	var req dto.ProfileListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid query parameters")
		return
	}

	list, total, err := h.profileSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 档案详情
// GET /api/v1/profiles/:id
func (h *ProfileHandler) Get(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	profile, err := h.profileSvc.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

// UpdateRole 修改角色（管理员）
// PUT /api/v1/profiles/:id/role
func (h *ProfileHandler) UpdateRole(c *gin.Context) {
	actor, ok := MustGetActor(c)
	if !ok {
		return
	}

	var req dto.UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, response.CodeInvalidParam, "invalid role")
		return
	}

	profile, err := h.profileSvc.UpdateRole(c.Request.Context(), actor, c.Param("id"), req.Role)
	if err != nil {
		h.handleProfileError(c, err)
		return
	}

	response.OK(c, profile)
}

func (h *ProfileHandler) handleProfileError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProfileNotFound):
		response.NotFound(c, 12001, err.Error())
	case errors.Is(err, service.ErrCannotChangeOwnRole):
		response.BadRequest(c, 12002, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, response.CodeForbidden, err.Error())
	default:
		response.InternalError(c)
	}
}
