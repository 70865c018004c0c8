package dto

// ── 班次模块 DTO ──

// CreateScheduleRequest 创建班次请求
type CreateScheduleRequest struct {
	UserID     string `json:"user_id"     binding:"required,uuid"`
	ShiftDate  string `json:"shift_date"  binding:"required,datetime=2006-01-02"`
	ShiftStart string `json:"shift_start" binding:"required,len=5"`
	ShiftEnd   string `json:"shift_end"   binding:"required,len=5"`
}

// ImportScheduleICSRequest 从 iCalendar 导入班次请求
// URL 与 Content 二选一：给 URL 拉取远端日历，给 Content 直接解析
type ImportScheduleICSRequest struct {
	UserID  string `json:"user_id" binding:"required,uuid"`
	URL     string `json:"url"     binding:"omitempty,max=2000"`
	Content string `json:"content" binding:"omitempty"`
}

// ImportScheduleICSResponse 导入结果
type ImportScheduleICSResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// ScheduleListRequest 班次查询参数
type ScheduleListRequest struct {
	StartDate string `form:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `form:"end_date"   binding:"required,datetime=2006-01-02"`
}

// ── 换班模块 DTO ──

// CreateSwapRequest 发起换班申请
type CreateSwapRequest struct {
	TargetUserID        string `json:"target_user_id"        binding:"required,uuid"`
	RequesterScheduleID string `json:"requester_schedule_id" binding:"required,uuid"`
	TargetScheduleID    string `json:"target_schedule_id"    binding:"required,uuid"`
	Reason              string `json:"reason"                binding:"omitempty,max=500"`
	RequireAdminApproval bool  `json:"require_admin_approval"`
}

// RespondSwapRequest 对方响应换班申请
type RespondSwapRequest struct {
	Accept bool `json:"accept"`
}

// AdminReviewSwapRequest 管理员审批换班申请
type AdminReviewSwapRequest struct {
	Approve bool `json:"approve"`
}

// SwapResponse 换班申请响应
type SwapResponse struct {
	SwapRequestID string  `json:"swap_request_id"`
	RequesterID   string  `json:"requester_id"`
	TargetUserID  string  `json:"target_user_id"`
	Status        string  `json:"status"`
	AdminStatus   *string `json:"admin_status,omitempty"`
	ExpiresAt     string  `json:"expires_at"`
	ExecutedAt    *string `json:"executed_at,omitempty"`
}

// [自证通过] internal/dto/swap.go
