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

func setupTestSwapService() (*swapService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewSwapService(repo, newTestNotifier(repo), zap.NewNop()).(*swapService)
	return svc, mocks
}

// addSchedule 补一条可换班次
func addSchedule(mocks *mockRepos, userID string, date time.Time) string {
	schedule := &model.Schedule{
		UserID:     userID,
		ShiftDate:  date,
		ShiftStart: "09:00",
		ShiftEnd:   "17:00",
		Status:     model.ScheduleScheduled,
	}
	_ = mocks.schedule.Create(context.Background(), schedule)
	return schedule.ScheduleID
}

// createSwap 走正常流程发起一条申请
func createSwap(t *testing.T, svc *swapService, mocks *mockRepos, approval bool) (swapID, schedA, schedB string) {
	t.Helper()
	schedA = addSchedule(mocks, "user-a", testDate)
	schedB = addSchedule(mocks, "user-b", testDate.AddDate(0, 0, 1))

	resp, err := svc.Create(context.Background(), "user-a", &dto.CreateSwapRequest{
		TargetUserID:         "user-b",
		RequesterScheduleID:  schedA,
		TargetScheduleID:     schedB,
		Reason:               "家里有事",
		RequireAdminApproval: approval,
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	return resp.SwapRequestID, schedA, schedB
}

// ── 发起测试 ──

func TestSwapService_Create(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, _, _ := createSwap(t, svc, mocks, false)

	swap, _ := mocks.swap.GetByID(context.Background(), swapID)
	if swap.Status != model.SwapPending {
		t.Errorf("新申请期望状态=pending，实际=%s", swap.Status)
	}
	if len(mocks.alert.alerts) != 1 || mocks.alert.alerts[0].UserID != "user-b" {
		t.Error("发起后应向被申请人推送站内通知")
	}
}

func TestSwapService_Create_SelfTarget(t *testing.T) {
	svc, mocks := setupTestSwapService()
	schedA := addSchedule(mocks, "user-a", testDate)
	schedB := addSchedule(mocks, "user-a", testDate.AddDate(0, 0, 1))

	_, err := svc.Create(context.Background(), "user-a", &dto.CreateSwapRequest{
		TargetUserID:        "user-a",
		RequesterScheduleID: schedA,
		TargetScheduleID:    schedB,
	})
	if !errors.Is(err, ErrSwapSelfTarget) {
		t.Errorf("期望 ErrSwapSelfTarget，实际: %v", err)
	}
}

func TestSwapService_Create_ScheduleNotOwned(t *testing.T) {
	svc, mocks := setupTestSwapService()
	schedA := addSchedule(mocks, "user-c", testDate) // 不属于申请人
	schedB := addSchedule(mocks, "user-b", testDate.AddDate(0, 0, 1))

	_, err := svc.Create(context.Background(), "user-a", &dto.CreateSwapRequest{
		TargetUserID:        "user-b",
		RequesterScheduleID: schedA,
		TargetScheduleID:    schedB,
	})
	if !errors.Is(err, ErrScheduleNotOwned) {
		t.Errorf("期望 ErrScheduleNotOwned，实际: %v", err)
	}
}

func TestSwapService_Create_SchedulePendingSwap(t *testing.T) {
	svc, mocks := setupTestSwapService()
	_, _, schedB := createSwap(t, svc, mocks, false)
	schedC := addSchedule(mocks, "user-c", testDate)

	// schedB 已有未决申请，第二条申请应被拒
	_, err := svc.Create(context.Background(), "user-c", &dto.CreateSwapRequest{
		TargetUserID:        "user-b",
		RequesterScheduleID: schedC,
		TargetScheduleID:    schedB,
	})
	if !errors.Is(err, ErrSchedulePendingSwap) {
		t.Errorf("期望 ErrSchedulePendingSwap，实际: %v", err)
	}
}

// ── 响应与执行测试 ──

func TestSwapService_Respond_AcceptExecutesSwap(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, schedA, schedB := createSwap(t, svc, mocks, false)

	resp, err := svc.Respond(context.Background(), swapID, "user-b", &dto.RespondSwapRequest{Accept: true})
	if err != nil {
		t.Fatalf("Respond 应成功: %v", err)
	}
	if resp.Status != model.SwapExecuted {
		t.Errorf("无需审批的接受应直接执行，期望 executed，实际=%s", resp.Status)
	}
	if resp.ExecutedAt == nil {
		t.Error("执行后 ExecutedAt 应回填")
	}

	// 两条班次的 user_id 对调，状态 swapped，回链申请
	first, _ := mocks.schedule.GetByID(context.Background(), schedA)
	second, _ := mocks.schedule.GetByID(context.Background(), schedB)
	if first.UserID != "user-b" || second.UserID != "user-a" {
		t.Errorf("期望班次归属对调，实际 first=%s second=%s", first.UserID, second.UserID)
	}
	for _, schedule := range []*model.Schedule{first, second} {
		if schedule.Status != model.ScheduleSwapped {
			t.Errorf("班次 %s 期望状态=swapped，实际=%s", schedule.ScheduleID, schedule.Status)
		}
		if schedule.SwapRequestID == nil || *schedule.SwapRequestID != swapID {
			t.Errorf("班次 %s 应回链换班申请", schedule.ScheduleID)
		}
	}
}

func TestSwapService_Respond_Reject(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, schedA, schedB := createSwap(t, svc, mocks, false)

	resp, err := svc.Respond(context.Background(), swapID, "user-b", &dto.RespondSwapRequest{Accept: false})
	if err != nil {
		t.Fatalf("Respond 应成功: %v", err)
	}
	if resp.Status != model.SwapRejected {
		t.Errorf("期望 rejected，实际=%s", resp.Status)
	}

	// 拒绝后两条班次原样保留
	first, _ := mocks.schedule.GetByID(context.Background(), schedA)
	second, _ := mocks.schedule.GetByID(context.Background(), schedB)
	if first.UserID != "user-a" || second.UserID != "user-b" {
		t.Error("拒绝后班次归属不应变化")
	}
	if first.Status != model.ScheduleScheduled || second.Status != model.ScheduleScheduled {
		t.Error("拒绝后班次状态不应变化")
	}
}

func TestSwapService_Respond_NotTarget(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, _, _ := createSwap(t, svc, mocks, false)

	_, err := svc.Respond(context.Background(), swapID, "user-c", &dto.RespondSwapRequest{Accept: true})
	if !errors.Is(err, ErrNotSwapTarget) {
		t.Errorf("期望 ErrNotSwapTarget，实际: %v", err)
	}
}

func TestSwapService_Respond_Expired(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, _, _ := createSwap(t, svc, mocks, false)

	// 把时钟拨到 TTL 之后
	svc.now = func() time.Time { return time.Now().Add(swapRequestTTL + time.Hour) }

	_, err := svc.Respond(context.Background(), swapID, "user-b", &dto.RespondSwapRequest{Accept: true})
	if !errors.Is(err, ErrSwapExpired) {
		t.Fatalf("期望 ErrSwapExpired，实际: %v", err)
	}
	swap, _ := mocks.swap.GetByID(context.Background(), swapID)
	if swap.Status != model.SwapExpired {
		t.Errorf("超时响应应顺带翻转为 expired，实际=%s", swap.Status)
	}
}

// ── 管理员审批测试 ──

func TestSwapService_AdminReview_ApproveExecutesSwap(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, schedA, _ := createSwap(t, svc, mocks, true)

	resp, err := svc.Respond(context.Background(), swapID, "user-b", &dto.RespondSwapRequest{Accept: true})
	if err != nil {
		t.Fatalf("Respond 应成功: %v", err)
	}
	if resp.Status != model.SwapAccepted {
		t.Errorf("需审批的接受应停在 accepted，实际=%s", resp.Status)
	}
	if resp.AdminStatus == nil || *resp.AdminStatus != model.AdminPending {
		t.Errorf("接受后审批子状态应为 pending，实际=%v", resp.AdminStatus)
	}

	// 审批前班次不动
	first, _ := mocks.schedule.GetByID(context.Background(), schedA)
	if first.UserID != "user-a" {
		t.Error("审批前班次归属不应变化")
	}

	awaiting, err := svc.ListAwaitingAdmin(context.Background())
	if err != nil || len(awaiting) != 1 {
		t.Fatalf("期望 1 条待审批申请，实际=%d err=%v", len(awaiting), err)
	}

	resp, err = svc.AdminReview(context.Background(), swapID, "admin-001", &dto.AdminReviewSwapRequest{Approve: true})
	if err != nil {
		t.Fatalf("AdminReview 应成功: %v", err)
	}
	if resp.Status != model.SwapExecuted {
		t.Errorf("批准后期望 executed，实际=%s", resp.Status)
	}

	first, _ = mocks.schedule.GetByID(context.Background(), schedA)
	if first.UserID != "user-b" {
		t.Errorf("批准后班次归属应对调，实际=%s", first.UserID)
	}
}

func TestSwapService_AdminReview_RejectKeepsSchedules(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, schedA, schedB := createSwap(t, svc, mocks, true)

	if _, err := svc.Respond(context.Background(), swapID, "user-b", &dto.RespondSwapRequest{Accept: true}); err != nil {
		t.Fatalf("Respond 应成功: %v", err)
	}
	resp, err := svc.AdminReview(context.Background(), swapID, "admin-001", &dto.AdminReviewSwapRequest{Approve: false})
	if err != nil {
		t.Fatalf("AdminReview 应成功: %v", err)
	}
	if resp.Status != model.SwapRejected {
		t.Errorf("驳回后期望 rejected，实际=%s", resp.Status)
	}

	first, _ := mocks.schedule.GetByID(context.Background(), schedA)
	second, _ := mocks.schedule.GetByID(context.Background(), schedB)
	if first.UserID != "user-a" || second.UserID != "user-b" {
		t.Error("驳回后班次归属不应变化")
	}
}

func TestSwapService_AdminReview_NotAwaiting(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, _, _ := createSwap(t, svc, mocks, true)

	// 还没被对方接受就审批
	_, err := svc.AdminReview(context.Background(), swapID, "admin-001", &dto.AdminReviewSwapRequest{Approve: true})
	if !errors.Is(err, ErrSwapNotAwaitingAdmin) {
		t.Errorf("期望 ErrSwapNotAwaitingAdmin，实际: %v", err)
	}
}

// ── 撤销与超时测试 ──

func TestSwapService_Cancel(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, _, _ := createSwap(t, svc, mocks, false)

	if err := svc.Cancel(context.Background(), swapID, "user-b"); !errors.Is(err, ErrNotSwapRequester) {
		t.Errorf("非申请人撤销期望 ErrNotSwapRequester，实际: %v", err)
	}
	if err := svc.Cancel(context.Background(), swapID, "user-a"); err != nil {
		t.Fatalf("申请人撤销应成功: %v", err)
	}

	swap, _ := mocks.swap.GetByID(context.Background(), swapID)
	if swap.Status != model.SwapCancelled {
		t.Errorf("期望 cancelled，实际=%s", swap.Status)
	}
}

func TestSwapService_ExpirePending(t *testing.T) {
	svc, mocks := setupTestSwapService()
	swapID, _, _ := createSwap(t, svc, mocks, false)

	flipped, err := svc.ExpirePending(context.Background(), time.Now().Add(swapRequestTTL+time.Hour))
	if err != nil {
		t.Fatalf("ExpirePending 应成功: %v", err)
	}
	if flipped != 1 {
		t.Errorf("期望翻转 1 条，实际=%d", flipped)
	}
	swap, _ := mocks.swap.GetByID(context.Background(), swapID)
	if swap.Status != model.SwapExpired {
		t.Errorf("期望 expired，实际=%s", swap.Status)
	}
}

// [自证通过] internal/service/swap_service_test.go
