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

func setupTestTokenService() (*tokenService, *mockRepoSet) {
	repo, set := newMockRepoSet()
	svc := NewTokenService(testConfig(), repo, zap.NewNop()).(*tokenService)
	svc.now = func() time.Time { return testNow }
	return svc, set
}

// seedActiveSurvey 注入一张处于答题期的问卷，带两道题
func seedActiveSurvey(set *mockRepoSet, id string) *model.Survey {
	survey := seedSurvey(set, id, model.PhasePendingConsent, testNow.Add(-24*time.Hour), 7)
	seedQuestion(set, id+"-q1", id, 1, []string{"非常满意", "满意", "不满意"}, nil)
	seedQuestion(set, id+"-q2", id, 2, []string{"是", "否"}, nil)
	return survey
}

func intPtr(v int) *int { return &v }

// ── IssueEmployeeToken 测试 ──

func TestTokenService_IssueEmployeeToken_Success(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	token, err := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")
	if err != nil {
		t.Fatalf("IssueEmployeeToken 应成功: %v", err)
	}
	if token.Status != model.TokenIssued {
		t.Errorf("期望 status=issued，实际=%s", token.Status)
	}
	if token.EmployeeID == nil || *token.EmployeeID != "emp-1" {
		t.Error("令牌应绑定员工")
	}
}

func TestTokenService_IssueEmployeeToken_SurveyNotActive(t *testing.T) {
	svc, set := setupTestTokenService()
	// 仍在同意期
	seedSurvey(set, "survey-1", model.PhasePendingConsent, testNow.Add(48*time.Hour), 7)
	seedEmployee(set, "emp-1", "dept-1", nil)

	_, err := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")
	if !errors.Is(err, ErrSurveyNotActive) {
		t.Errorf("同意期签发应被拒，期望 ErrSurveyNotActive，实际: %v", err)
	}
}

func TestTokenService_IssueEmployeeToken_AlreadyCompleted(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	empID := "emp-1"
	set.submission.submissions["sub-1"] = &model.SurveySubmission{
		SubmissionID: "sub-1", SurveyID: "survey-1", EmployeeID: &empID, AccessTokenID: "at-x",
	}

	_, err := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("期望 ErrAlreadyCompleted，实际: %v", err)
	}
}

func TestTokenService_IssueEmployeeTokens_SkipCompleted(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)
	seedEmployee(set, "emp-2", "dept-1", nil)

	empID := "emp-1"
	set.submission.submissions["sub-1"] = &model.SurveySubmission{
		SubmissionID: "sub-1", SurveyID: "survey-1", EmployeeID: &empID, AccessTokenID: "at-x",
	}

	req := &dto.IssueTokensRequest{EmployeeIDs: []string{"emp-1", "emp-2"}}
	result, err := svc.IssueEmployeeTokens(context.Background(), "survey-1", req)
	if err != nil {
		t.Fatalf("批量签发应成功: %v", err)
	}
	if result.Issued != 1 || result.Skipped != 1 {
		t.Errorf("期望 Issued=1 Skipped=1，实际=%d/%d", result.Issued, result.Skipped)
	}
	if len(result.Links) != 1 || !strings.HasPrefix(result.Links[0].AccessURL, "https://survey.example.com/s/") {
		t.Errorf("答题链接错误: %+v", result.Links)
	}
}

func TestTokenService_IssueAnonymousToken(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")

	result, err := svc.IssueAnonymousToken(context.Background(), "survey-1")
	if err != nil {
		t.Fatalf("IssueAnonymousToken 应成功: %v", err)
	}
	if !strings.HasPrefix(result.AccessURL, "https://survey.example.com/s/") {
		t.Errorf("答题链接错误: %s", result.AccessURL)
	}
	for _, tok := range set.token.tokens {
		if tok.EmployeeID != nil {
			t.Error("匿名令牌不应绑定员工")
		}
	}
}

// ── Redeem 测试 ──

func TestTokenService_Redeem_Success(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	token, err := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")
	if err != nil {
		t.Fatalf("签发应成功: %v", err)
	}

	result, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: token.Token})
	if err != nil {
		t.Fatalf("Redeem 应成功: %v", err)
	}
	if result.AttemptToken != token.Token {
		t.Error("attempt 句柄应即令牌本身")
	}
	if len(result.Questions) != 2 {
		t.Errorf("期望返回2道题，实际=%d", len(result.Questions))
	}
	// 题目按 sort_order 排列
	if result.Questions[0].SortOrder > result.Questions[1].SortOrder {
		t.Error("题目应按 sort_order 升序")
	}
}

func TestTokenService_Redeem_InvalidToken(t *testing.T) {
	svc, _ := setupTestTokenService()

	_, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: "no-such-token"})
	if !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}

func TestTokenService_Redeem_ConcurrentOnlyOneWins(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	token, _ := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")

	// 第一次兑换成功
	if _, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: token.Token}); err != nil {
		t.Fatalf("首次 Redeem 应成功: %v", err)
	}
	// 并发第二次兑换：条件更新影响 0 行 → 冲突
	if _, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: token.Token}); !errors.Is(err, ErrTokenAlreadyUsed) {
		t.Errorf("期望 ErrTokenAlreadyUsed，实际: %v", err)
	}
}

func TestTokenService_Redeem_ExpiredSurveyMarksToken(t *testing.T) {
	svc, set := setupTestTokenService()
	survey := seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	token, _ := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")

	// 问卷结束后再兑换
	survey.PublishAt = testNow.Add(-30 * 24 * time.Hour)

	_, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: token.Token})
	if !errors.Is(err, ErrSurveyNotActive) {
		t.Errorf("期望 ErrSurveyNotActive，实际: %v", err)
	}
	// 惰性标记过期
	if set.token.tokens[token.AccessTokenID].Status != model.TokenExpired {
		t.Errorf("令牌应被标记 expired，实际=%s", set.token.tokens[token.AccessTokenID].Status)
	}
}

func TestTokenService_Redeem_EmployeeAlreadyCompleted(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	token, _ := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")

	// 员工通过另一个令牌完成了提交
	empID := "emp-1"
	set.submission.submissions["sub-1"] = &model.SurveySubmission{
		SubmissionID: "sub-1", SurveyID: "survey-1", EmployeeID: &empID, AccessTokenID: "at-other",
	}

	_, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: token.Token})
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Errorf("期望 ErrAlreadyCompleted，实际: %v", err)
	}
}

// ── FinalizeSubmission 测试 ──

func finalizeFixture(t *testing.T) (*tokenService, *mockRepoSet, string) {
	t.Helper()
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	token, err := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")
	if err != nil {
		t.Fatalf("签发应成功: %v", err)
	}
	if _, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: token.Token}); err != nil {
		t.Fatalf("兑换应成功: %v", err)
	}
	return svc, set, token.Token
}

func allAnswers() *dto.SubmitAnswersRequest {
	return &dto.SubmitAnswersRequest{Answers: []dto.AnswerItem{
		{QuestionID: "survey-1-q1", OptionIndex: intPtr(0)},
		{QuestionID: "survey-1-q2", OptionIndex: intPtr(1)},
	}}
}

func TestTokenService_Finalize_AnonymousWithoutConsent(t *testing.T) {
	svc, set, attempt := finalizeFixture(t)

	result, err := svc.FinalizeSubmission(context.Background(), attempt, allAnswers())
	if err != nil {
		t.Fatalf("Finalize 应成功: %v", err)
	}
	if result.Answered != 2 {
		t.Errorf("期望落库2条回答，实际=%d", result.Answered)
	}
	// 未授权实名 → 回答全部匿名
	for _, r := range set.response.responses {
		if r.EmployeeID != nil {
			t.Error("无同意记录时回答必须匿名")
		}
	}
	// 完成标记仍携带员工（去重用）
	sub := set.submission.submissions[result.SubmissionID]
	if sub == nil || sub.EmployeeID == nil || *sub.EmployeeID != "emp-1" {
		t.Error("完成标记应携带员工用于去重")
	}
}

func TestTokenService_Finalize_LinkedWithConsent(t *testing.T) {
	svc, set, attempt := finalizeFixture(t)

	// 同意台账 granted
	now := testNow
	set.consent.records["consent-1"] = &model.ConsentRecord{
		ConsentID: "consent-1", SurveyID: "survey-1", EmployeeID: "emp-1",
		Token: "ct-1", Decision: model.ConsentGranted, DecidedAt: &now,
	}

	if _, err := svc.FinalizeSubmission(context.Background(), attempt, allAnswers()); err != nil {
		t.Fatalf("Finalize 应成功: %v", err)
	}
	for _, r := range set.response.responses {
		if r.EmployeeID == nil || *r.EmployeeID != "emp-1" {
			t.Error("granted 后回答应实名落库")
		}
	}
}

func TestTokenService_Finalize_DeclinedStaysAnonymous(t *testing.T) {
	svc, set, attempt := finalizeFixture(t)

	now := testNow
	set.consent.records["consent-1"] = &model.ConsentRecord{
		ConsentID: "consent-1", SurveyID: "survey-1", EmployeeID: "emp-1",
		Token: "ct-1", Decision: model.ConsentDeclined, DecidedAt: &now,
	}

	if _, err := svc.FinalizeSubmission(context.Background(), attempt, allAnswers()); err != nil {
		t.Fatalf("Finalize 应成功: %v", err)
	}
	for _, r := range set.response.responses {
		if r.EmployeeID != nil {
			t.Error("declined 后回答必须匿名")
		}
	}
}

func TestTokenService_Finalize_NotRedeemed(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")
	seedEmployee(set, "emp-1", "dept-1", nil)

	token, _ := svc.IssueEmployeeToken(context.Background(), "survey-1", "emp-1")

	// 未兑换直接提交
	_, err := svc.FinalizeSubmission(context.Background(), token.Token, allAnswers())
	if !errors.Is(err, ErrAttemptNotRedeemed) {
		t.Errorf("期望 ErrAttemptNotRedeemed，实际: %v", err)
	}
}

func TestTokenService_Finalize_AnswerValidation(t *testing.T) {
	svc, _, attempt := finalizeFixture(t)

	cases := []struct {
		name    string
		answers []dto.AnswerItem
	}{
		{"未知题目", []dto.AnswerItem{{QuestionID: "ghost", OptionIndex: intPtr(0)}}},
		{"重复题目", []dto.AnswerItem{
			{QuestionID: "survey-1-q1", OptionIndex: intPtr(0)},
			{QuestionID: "survey-1-q1", OptionIndex: intPtr(1)},
		}},
		{"选项越界", []dto.AnswerItem{{QuestionID: "survey-1-q1", OptionIndex: intPtr(3)}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.FinalizeSubmission(context.Background(), attempt, &dto.SubmitAnswersRequest{Answers: c.answers})
			if !errors.Is(err, ErrAnswerInvalid) {
				t.Errorf("期望 ErrAnswerInvalid，实际: %v", err)
			}
		})
	}
}

func TestTokenService_Finalize_DuplicateSubmission(t *testing.T) {
	svc, set, attempt := finalizeFixture(t)

	// 另一个 attempt 已抢先写入完成标记
	empID := "emp-1"
	set.submission.submissions["sub-other"] = &model.SurveySubmission{
		SubmissionID: "sub-other", SurveyID: "survey-1", EmployeeID: &empID, AccessTokenID: "at-other",
	}

	_, err := svc.FinalizeSubmission(context.Background(), attempt, allAnswers())
	if !errors.Is(err, ErrDuplicateSubmission) {
		t.Errorf("期望 ErrDuplicateSubmission，实际: %v", err)
	}
	// 本次的回答不应可见
	if len(set.response.responses) != 0 {
		t.Errorf("重复提交的回答不应落库，实际=%d 条", len(set.response.responses))
	}
}

func TestTokenService_Finalize_AnonymousTokensCoexist(t *testing.T) {
	svc, set := setupTestTokenService()
	seedActiveSurvey(set, "survey-1")

	// 两个匿名令牌各自完成，互不冲突
	for i := 0; i < 2; i++ {
		anon, err := svc.IssueAnonymousToken(context.Background(), "survey-1")
		if err != nil {
			t.Fatalf("匿名签发应成功: %v", err)
		}
		token := strings.TrimPrefix(anon.AccessURL, "https://survey.example.com/s/")
		if _, err := svc.Redeem(context.Background(), &dto.RedeemTokenRequest{Token: token}); err != nil {
			t.Fatalf("匿名兑换应成功: %v", err)
		}
		if _, err := svc.FinalizeSubmission(context.Background(), token, allAnswers()); err != nil {
			t.Fatalf("匿名提交应成功: %v", err)
		}
	}
	count, _ := set.submission.CountBySurvey(context.Background(), "survey-1")
	if count != 2 {
		t.Errorf("期望2条匿名完成标记，实际=%d", count)
	}
}
