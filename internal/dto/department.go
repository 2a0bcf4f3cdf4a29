package dto

// ── 部门模块 DTO ──

// CreateDepartmentRequest 创建部门请求
type CreateDepartmentRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"omitempty,max=200"`
}

// UpdateDepartmentRequest 更新部门请求
type UpdateDepartmentRequest struct {
	Name        *string `json:"name"        binding:"omitempty,min=2,max=50"`
	Description *string `json:"description" binding:"omitempty,max=200"`
	IsActive    *bool   `json:"is_active"`
}

// DepartmentListRequest 部门列表查询参数
type DepartmentListRequest struct {
	IncludeInactive bool `form:"include_inactive"`
}

// DepartmentDetailResponse 部门详细信息响应
type DepartmentDetailResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	IsActive      bool   `json:"is_active"`
	EmployeeCount int64  `json:"employee_count"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// [自证通过] internal/dto/department.go
