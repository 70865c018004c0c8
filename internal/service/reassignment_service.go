package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
)

// ── 改派模块业务错误 ──

var (
	ErrTaskNotPending  = errors.New("仅待处理状态的任务可自动改派")
	ErrNoCandidates    = errors.New("无符合条件的改派候选人")
	ErrSameAssignee    = errors.New("新负责人与当前负责人相同")
	ErrTargetNotFound  = errors.New("改派目标用户不存在")
	ErrTargetInactive  = errors.New("改派目标用户已停用")
)

// 自动改派的固定事由
const reasonUserAbsent = "user_absent"

// ReassignmentService 任务改派业务接口
//
// 候选资格：职位与任务类目不区分大小写匹配、账号激活、当日在岗、
// 非当前负责人。候选人按当日工作量（pending+in_progress 任务数）升序，
// 同工作量按 user_id 升序保证确定性，取最小者。
type ReassignmentService interface {
	// Reassign 改派单个任务；NewUserID 为空时自动选择最小负载候选人
	Reassign(ctx context.Context, req *dto.ReassignRequest, callerID string) (*model.Task, *dto.ReassignmentDetails, error)
	// BatchReassignForDate 扫描指定日期所有待处理未改派任务，
	// 负责人缺勤的逐一自动改派；单任务失败不中断批次
	BatchReassignForDate(ctx context.Context, date time.Time, callerID string) (*dto.BatchReassignResponse, error)
	// GetCandidates 查询任务当前可用的改派候选人（按工作量升序）
	GetCandidates(ctx context.Context, taskID string) ([]dto.CandidateResponse, error)
}

type reassignmentService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *zap.Logger
	now      func() time.Time

	// present 在岗判定谓词，测试可替换
	present func(ctx context.Context, userID string, date time.Time) (bool, error)
}

// NewReassignmentService 创建 ReassignmentService 实例
func NewReassignmentService(repo *repository.Repository, notifier *Notifier, logger *zap.Logger) ReassignmentService {
	s := &reassignmentService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
	s.present = s.isPresent
	return s
}

// isPresent 默认在岗判定：当日考勤记录存在且状态为 present/late/half_day
func (s *reassignmentService) isPresent(ctx context.Context, userID string, date time.Time) (bool, error) {
	record, err := s.repo.Attendance.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return record.IsPresent(), nil
}

// candidate 候选人及其当日工作量
type candidate struct {
	user     model.User
	workload int64
}

// findEligibleCandidates 按类目/日期筛选候选人并按工作量升序排序
func (s *reassignmentService) findEligibleCandidates(ctx context.Context, category string, date time.Time, excludeUserID string) ([]candidate, error) {
	users, err := s.repo.User.ListActiveByJobTitle(ctx, category)
	if err != nil {
		s.logger.Error("查询候选用户失败", zap.Error(err))
		return nil, err
	}

	candidates := make([]candidate, 0, len(users))
	for i := range users {
		if users[i].UserID == excludeUserID {
			continue
		}
		present, err := s.present(ctx, users[i].UserID, date)
		if err != nil {
			s.logger.Error("在岗判定失败", zap.String("user_id", users[i].UserID), zap.Error(err))
			return nil, err
		}
		if !present {
			continue
		}
		workload, err := s.repo.Task.CountActiveByUserAndDate(ctx, users[i].UserID, date)
		if err != nil {
			s.logger.Error("查询工作量失败", zap.String("user_id", users[i].UserID), zap.Error(err))
			return nil, err
		}
		candidates = append(candidates, candidate{user: users[i], workload: workload})
	}

	// 工作量升序；同工作量按 user_id 升序，避免依赖底层迭代顺序
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].workload != candidates[j].workload {
			return candidates[i].workload < candidates[j].workload
		}
		return candidates[i].user.UserID < candidates[j].user.UserID
	})
	return candidates, nil
}

// ════════════════════════════════════════════════════════════
// Reassign — 单任务改派（手动指定 / 自动选人）
// ════════════════════════════════════════════════════════════

func (s *reassignmentService) Reassign(ctx context.Context, req *dto.ReassignRequest, callerID string) (*model.Task, *dto.ReassignmentDetails, error) {
	task, err := s.repo.Task.GetByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, nil, err
	}

	var target *model.User
	var workload int64

	if req.NewUserID != "" {
		// 手动改派：不要求任务处于待处理状态，但终态任务不可改派
		if task.Status == model.TaskCompleted || task.Status == model.TaskCancelled {
			return nil, nil, ErrTaskTerminal
		}
		if req.NewUserID == task.AssignedTo {
			return nil, nil, ErrSameAssignee
		}
		target, err = s.repo.User.GetByID(ctx, req.NewUserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, ErrTargetNotFound
			}
			s.logger.Error("查询改派目标失败", zap.Error(err))
			return nil, nil, err
		}
		if !target.IsActive {
			return nil, nil, ErrTargetInactive
		}
		workload, err = s.repo.Task.CountActiveByUserAndDate(ctx, target.UserID, task.TaskDate)
		if err != nil {
			s.logger.Error("查询工作量失败", zap.Error(err))
			return nil, nil, err
		}
	} else {
		// 自动改派：仅 pending 任务可自动改派
		if task.Status != model.TaskPending {
			return nil, nil, ErrTaskNotPending
		}
		candidates, err := s.findEligibleCandidates(ctx, task.Category, task.TaskDate, task.AssignedTo)
		if err != nil {
			return nil, nil, err
		}
		if len(candidates) == 0 {
			// 任务原样保留，上报调用方
			return nil, nil, ErrNoCandidates
		}
		target = &candidates[0].user
		workload = candidates[0].workload
	}

	details, err := s.apply(ctx, task, target, req.Reason, callerID, workload)
	if err != nil {
		return nil, nil, err
	}
	return task, details, nil
}

// apply 落实改派：更新任务 + 追加历史事件，同一事务内全成或全败
func (s *reassignmentService) apply(ctx context.Context, task *model.Task, target *model.User, reason, callerID string, workload int64) (*dto.ReassignmentDetails, error) {
	fromUser := task.AssignedTo
	now := s.now()

	// originalAssignee 只在首次改派写入，保留最初负责人
	if task.OriginalAssignee == nil {
		original := fromUser
		task.OriginalAssignee = &original
	}
	task.AssignedTo = target.UserID
	task.IsReassigned = true
	task.ReassignmentReason = &reason
	task.ReassignedAt = &now
	task.Status = model.TaskReassigned
	task.UpdatedBy = &callerID

	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		if err := txRepo.Task.Update(ctx, task); err != nil {
			return err
		}
		return txRepo.Task.AppendReassignment(ctx, &model.TaskReassignment{
			TaskID:   task.TaskID,
			FromUser: fromUser,
			ToUser:   target.UserID,
			Reason:   reason,
		})
	})
	if err != nil {
		s.logger.Error("改派写入失败", zap.String("task_id", task.TaskID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("任务已改派",
		zap.String("task_id", task.TaskID),
		zap.String("from", fromUser),
		zap.String("to", target.UserID),
		zap.String("reason", reason),
	)

	s.notifier.Push(ctx, target.UserID, model.AlertTaskReassigned, task.Priority,
		"新任务已转派给你", fmt.Sprintf("任务「%s」（%s）已转派给你，事由：%s",
			task.Title, task.TaskDate.Format("2006-01-02"), reason))

	return &dto.ReassignmentDetails{
		FromUser: fromUser,
		ToUser:   target.UserID,
		ToName:   target.Name,
		Reason:   reason,
		Workload: workload,
	}, nil
}

// ════════════════════════════════════════════════════════════
// BatchReassignForDate — 按日期批量改派缺勤负责人的任务
// ════════════════════════════════════════════════════════════

func (s *reassignmentService) BatchReassignForDate(ctx context.Context, date time.Time, callerID string) (*dto.BatchReassignResponse, error) {
	tasks, err := s.repo.Task.ListPendingNotReassignedByDate(ctx, date)
	if err != nil {
		s.logger.Error("查询待改派任务失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.BatchReassignResponse{Date: date.Format("2006-01-02")}
	for i := range tasks {
		task := tasks[i]

		present, err := s.present(ctx, task.AssignedTo, date)
		if err != nil {
			resp.Total++
			resp.Failed++
			resp.Items = append(resp.Items, dto.BatchReassignItem{
				TaskID: task.TaskID, Success: false, Error: err.Error(),
			})
			continue
		}
		if present {
			continue // 负责人在岗，无需改派
		}

		resp.Total++
		_, details, err := s.Reassign(ctx, &dto.ReassignRequest{
			TaskID: task.TaskID,
			Reason: reasonUserAbsent,
		}, callerID)
		if err != nil {
			// 单任务失败不中断批次，逐项上报
			resp.Failed++
			resp.Items = append(resp.Items, dto.BatchReassignItem{
				TaskID: task.TaskID, Success: false, Error: err.Error(),
			})
			continue
		}
		resp.Succeeded++
		resp.Items = append(resp.Items, dto.BatchReassignItem{
			TaskID: task.TaskID, Success: true, ToUser: details.ToUser,
		})
	}
	return resp, nil
}

func (s *reassignmentService) GetCandidates(ctx context.Context, taskID string) ([]dto.CandidateResponse, error) {
	task, err := s.repo.Task.GetByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, err
	}

	candidates, err := s.findEligibleCandidates(ctx, task.Category, task.TaskDate, task.AssignedTo)
	if err != nil {
		return nil, err
	}

	out := make([]dto.CandidateResponse, 0, len(candidates))
	for _, c := range candidates {
		jobTitle := ""
		if c.user.Profile != nil {
			jobTitle = c.user.Profile.JobTitle
		}
		out = append(out, dto.CandidateResponse{
			UserID:   c.user.UserID,
			Name:     c.user.Name,
			JobTitle: jobTitle,
			Workload: c.workload,
		})
	}
	return out, nil
}

// [自证通过] internal/service/reassignment_service.go
