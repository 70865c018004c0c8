package dto

// ── 暗访小组 DTO ──

// CreateTeamRequest 创建暗访小组请求
// 成员必须恰好 3 人（数量由 Service 按配置校验）
type CreateTeamRequest struct {
	Name      string   `json:"name"       binding:"omitempty,max=100"`
	MemberIDs []string `json:"member_ids" binding:"required,min=1,max=10,dive,uuid"`
}

// TeamResponse 小组响应
type TeamResponse struct {
	TeamID   string   `json:"team_id"`
	TeamCode string   `json:"team_code"`
	Name     *string  `json:"name,omitempty"`
	IsActive bool     `json:"is_active"`
	Members  []string `json:"members,omitempty"` // 成员 user_id，仅管理员可见
	Workload int64    `json:"workload"`
}

// SetTeamActiveRequest 启停小组请求
type SetTeamActiveRequest struct {
	IsActive bool `json:"is_active"`
}

// ── 验收 DTO ──

// AssignVerificationRequest 派发验收请求
type AssignVerificationRequest struct {
	TaskID string `json:"task_id" binding:"required,uuid"`
}

// AssignVerificationResponse 派发验收响应
// 不暴露验收人身份，对被验收员工保持匿名
type AssignVerificationResponse struct {
	VerificationID string `json:"verification_id"`
	TeamCode       string `json:"team_code"`
	Deadline       string `json:"deadline"`
	Priority       string `json:"priority"`
}

// SubmitReportRequest 提交验收报告请求
type SubmitReportRequest struct {
	Cleanliness  int      `json:"cleanliness"  binding:"required,min=1,max=5"`
	Completeness int      `json:"completeness" binding:"required,min=1,max=5"`
	Quality      int      `json:"quality"      binding:"required,min=1,max=5"`
	Comments     string   `json:"comments"     binding:"omitempty,max=1000"`
	Issues       []string `json:"issues"       binding:"omitempty,max=20"`
}

// ReportBreakdown 三项评分明细
type ReportBreakdown struct {
	Cleanliness  int `json:"cleanliness"`
	Completeness int `json:"completeness"`
	Quality      int `json:"quality"`
}

// SubmitReportResponse 提交验收报告响应
type SubmitReportResponse struct {
	VerificationID     string          `json:"verification_id"`
	OverallScore       float64         `json:"overall_score"`
	VerificationResult string          `json:"verification_result"` // pass | recheck | fail
	Breakdown          ReportBreakdown `json:"breakdown"`
}

// VerificationResponse 验收任务响应（验收人视角）
type VerificationResponse struct {
	VerificationID string   `json:"verification_id"`
	TaskID         string   `json:"task_id"`
	Status         string   `json:"status"`
	Priority       string   `json:"priority"`
	Deadline       string   `json:"deadline"`
	OverallScore   *float64 `json:"overall_score,omitempty"`
	Result         *string  `json:"result,omitempty"`
}

// [自证通过] internal/dto/verification.go
