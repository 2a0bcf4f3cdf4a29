package dto

import "time"

// ── 问卷模块 DTO ──

// CreateSurveyRequest 创建问卷请求
type CreateSurveyRequest struct {
	Name               string     `json:"name"                 binding:"required,min=2,max=200"`
	Description        string     `json:"description"          binding:"omitempty,max=2000"`
	PublishAt          time.Time  `json:"publish_at"           binding:"required"`
	DurationDays       int        `json:"duration_days"        binding:"required,min=1,max=365"`
	TargetType         string     `json:"target_type"          binding:"required,oneof=department all employees"`
	TargetDepartmentID *string    `json:"target_department_id" binding:"omitempty,uuid"`
	TargetEmployeeIDs  []string   `json:"target_employee_ids"  binding:"omitempty,dive,uuid"`
	ConsentDeadline    *time.Time `json:"consent_deadline"`
	Questions          []CreateQuestionRequest `json:"questions" binding:"omitempty,dive"`
}

// UpdateSurveyRequest 更新问卷请求（仅发布前允许）
type UpdateSurveyRequest struct {
	Name            *string    `json:"name"             binding:"omitempty,min=2,max=200"`
	Description     *string    `json:"description"      binding:"omitempty,max=2000"`
	PublishAt       *time.Time `json:"publish_at"`
	DurationDays    *int       `json:"duration_days"    binding:"omitempty,min=1,max=365"`
	ConsentDeadline *time.Time `json:"consent_deadline"`
}

// SurveyListRequest 问卷列表查询参数
type SurveyListRequest struct {
	Phase string `form:"phase" binding:"omitempty,oneof=draft pending_consent active completed archived"`
}

// TransitionSurveyRequest 手动状态流转请求（目前仅 completed → archived）
type TransitionSurveyRequest struct {
	Status string `json:"status" binding:"required,oneof=archived"`
}

// SurveyDetailResponse 问卷详细信息响应
type SurveyDetailResponse struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	Description        string   `json:"description,omitempty"`
	PublishAt          string   `json:"publish_at"`
	EndAt              string   `json:"end_at"`
	DurationDays       int      `json:"duration_days"`
	TargetType         string   `json:"target_type"`
	TargetDepartmentID *string  `json:"target_department_id,omitempty"`
	TargetEmployeeIDs  []string `json:"target_employee_ids,omitempty"`
	Phase              string   `json:"phase"`
	ConsentDeadline    string   `json:"consent_deadline"`
	QuestionCount      int      `json:"question_count"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// [自证通过] internal/dto/survey.go
