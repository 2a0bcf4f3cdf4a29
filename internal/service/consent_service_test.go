package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
)

// ── 测试辅助 ──

func setupTestConsentService() (*consentService, *mockRepoSet) {
	repo, set := newMockRepoSet()
	svc := NewConsentService(testConfig(), repo, zap.NewNop()).(*consentService)
	svc.now = func() time.Time { return testNow }
	return svc, set
}

// ── Generate 测试 ──

func TestConsentService_Generate_Success(t *testing.T) {
	svc, set := setupTestConsentService()
	seedSurvey(set, "survey-1", model.PhaseDraft, testNow.Add(48*time.Hour), 7)
	seedEmployee(set, "emp-1", "dept-1", nil)
	seedEmployee(set, "emp-2", "dept-1", nil)

	req := &dto.GenerateConsentsRequest{EmployeeIDs: []string{"emp-1", "emp-2"}}
	result, err := svc.Generate(context.Background(), "survey-1", req, "admin-001")
	if err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	if result.Created != 2 || result.Skipped != 0 {
		t.Errorf("期望 Created=2 Skipped=0，实际=%d/%d", result.Created, result.Skipped)
	}
	for _, r := range result.Recipients {
		if !strings.HasPrefix(r.ConsentURL, "https://survey.example.com/consent/") {
			t.Errorf("同意链接前缀错误: %s", r.ConsentURL)
		}
	}
	// 生成同意请求后问卷进入 pending_consent
	if set.survey.surveys["survey-1"].Status != model.PhasePendingConsent {
		t.Errorf("期望问卷状态=pending_consent，实际=%s", set.survey.surveys["survey-1"].Status)
	}
}

func TestConsentService_Generate_SkipExisting(t *testing.T) {
	svc, set := setupTestConsentService()
	seedSurvey(set, "survey-1", model.PhaseDraft, testNow.Add(48*time.Hour), 7)
	seedEmployee(set, "emp-1", "dept-1", nil)
	seedEmployee(set, "emp-2", "dept-1", nil)

	// emp-1 已有同意记录
	first := &dto.GenerateConsentsRequest{EmployeeIDs: []string{"emp-1"}}
	if _, err := svc.Generate(context.Background(), "survey-1", first, "admin-001"); err != nil {
		t.Fatalf("首次 Generate 应成功: %v", err)
	}

	// 重复生成：emp-1 跳过，emp-2 新建
	second := &dto.GenerateConsentsRequest{EmployeeIDs: []string{"emp-1", "emp-2"}}
	result, err := svc.Generate(context.Background(), "survey-1", second, "admin-001")
	if err != nil {
		t.Fatalf("重复 Generate 应成功: %v", err)
	}
	if result.Created != 1 || result.Skipped != 1 {
		t.Errorf("期望 Created=1 Skipped=1，实际=%d/%d", result.Created, result.Skipped)
	}
}

func TestConsentService_Generate_SurveyClosed(t *testing.T) {
	svc, set := setupTestConsentService()
	// 答题窗口已结束
	seedSurvey(set, "survey-1", model.PhaseActive, testNow.Add(-10*24*time.Hour), 7)
	seedEmployee(set, "emp-1", "dept-1", nil)

	req := &dto.GenerateConsentsRequest{EmployeeIDs: []string{"emp-1"}}
	_, err := svc.Generate(context.Background(), "survey-1", req, "admin-001")
	if !errors.Is(err, ErrSurveyClosed) {
		t.Errorf("期望 ErrSurveyClosed，实际: %v", err)
	}
}

func TestConsentService_Generate_EmployeeNotFound(t *testing.T) {
	svc, set := setupTestConsentService()
	seedSurvey(set, "survey-1", model.PhaseDraft, testNow.Add(48*time.Hour), 7)

	req := &dto.GenerateConsentsRequest{EmployeeIDs: []string{"ghost"}}
	_, err := svc.Generate(context.Background(), "survey-1", req, "admin-001")
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Errorf("期望 ErrEmployeeNotFound，实际: %v", err)
	}
}

// ── Verify 测试 ──

func TestConsentService_Verify_Success(t *testing.T) {
	svc, set := setupTestConsentService()
	seedSurvey(set, "survey-1", model.PhaseDraft, testNow.Add(48*time.Hour), 7)
	seedEmployee(set, "emp-1", "dept-1", nil)

	req := &dto.GenerateConsentsRequest{EmployeeIDs: []string{"emp-1"}}
	if _, err := svc.Generate(context.Background(), "survey-1", req, "admin-001"); err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}

	var token string
	for _, r := range set.consent.records {
		token = r.Token
	}

	result, err := svc.Verify(context.Background(), token)
	if err != nil {
		t.Fatalf("Verify 应成功: %v", err)
	}
	if result.SurveyID != "survey-1" || result.EmployeeID != "emp-1" {
		t.Errorf("Verify 返回归属错误: %+v", result)
	}
	if result.SurveyName == "" || result.EmployeeName == "" {
		t.Error("Verify 应带出问卷名与员工名")
	}
}

func TestConsentService_Verify_InvalidToken(t *testing.T) {
	svc, _ := setupTestConsentService()

	_, err := svc.Verify(context.Background(), "no-such-token")
	if !errors.Is(err, ErrConsentTokenInvalid) {
		t.Errorf("期望 ErrConsentTokenInvalid，实际: %v", err)
	}
}

// ── Decide 测试 ──

func TestConsentService_Decide_WriteOnce(t *testing.T) {
	svc, set := setupTestConsentService()
	seedSurvey(set, "survey-1", model.PhaseDraft, testNow.Add(48*time.Hour), 7)
	seedEmployee(set, "emp-1", "dept-1", nil)

	req := &dto.GenerateConsentsRequest{EmployeeIDs: []string{"emp-1"}}
	if _, err := svc.Generate(context.Background(), "survey-1", req, "admin-001"); err != nil {
		t.Fatalf("Generate 应成功: %v", err)
	}
	var token string
	for _, r := range set.consent.records {
		token = r.Token
	}

	// 首次决定生效
	result, err := svc.Decide(context.Background(), token, true)
	if err != nil {
		t.Fatalf("首次 Decide 应成功: %v", err)
	}
	if result.Decision != string(model.ConsentGranted) {
		t.Errorf("期望 decision=granted，实际=%s", result.Decision)
	}

	// 二次决定（即使相反）被拒绝，已有决定不变
	if _, err := svc.Decide(context.Background(), token, false); !errors.Is(err, ErrConsentAlreadyDecided) {
		t.Errorf("期望 ErrConsentAlreadyDecided，实际: %v", err)
	}
	decision, _ := svc.DecisionOf(context.Background(), "survey-1", "emp-1")
	if decision != model.ConsentGranted {
		t.Errorf("已有决定不应被覆盖，实际=%s", decision)
	}
}

func TestConsentService_Decide_InvalidToken(t *testing.T) {
	svc, _ := setupTestConsentService()

	_, err := svc.Decide(context.Background(), "no-such-token", true)
	if !errors.Is(err, ErrConsentTokenInvalid) {
		t.Errorf("期望 ErrConsentTokenInvalid，实际: %v", err)
	}
}

// ── DecisionOf 测试 ──

func TestConsentService_DecisionOf_DefaultPending(t *testing.T) {
	svc, set := setupTestConsentService()
	seedSurvey(set, "survey-1", model.PhaseDraft, testNow.Add(48*time.Hour), 7)

	// 从未生成同意请求 → 视同 pending（不实名）
	decision, err := svc.DecisionOf(context.Background(), "survey-1", "emp-1")
	if err != nil {
		t.Fatalf("DecisionOf 应成功: %v", err)
	}
	if decision != model.ConsentPending {
		t.Errorf("无记录时期望 pending，实际=%s", decision)
	}
}
