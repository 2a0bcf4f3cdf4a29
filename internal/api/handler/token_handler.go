package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/service"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/pkg/response"
)

// TokenHandler 访问令牌与答题提交 HTTP 处理器
//
// 签发接口面向管理端；兑换与提交接口面向持答题链接的员工公开。
type TokenHandler struct {
	tokenSvc service.TokenService
}

// NewTokenHandler 创建 TokenHandler
func NewTokenHandler(tokenSvc service.TokenService) *TokenHandler {
	return &TokenHandler{tokenSvc: tokenSvc}
}

// IssueTokens 批量签发员工令牌（已完成提交的员工跳过）
// POST /api/v1/surveys/:id/tokens
func (h *TokenHandler) IssueTokens(c *gin.Context) {
	var req dto.IssueTokensRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tokenSvc.IssueEmployeeTokens(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.handleTokenError(c, err)
		return
	}

	response.Created(c, result)
}

// IssueAnonymous 签发不绑定员工的匿名答题令牌
// POST /api/v1/surveys/:id/tokens/anonymous
func (h *TokenHandler) IssueAnonymous(c *gin.Context) {
	result, err := h.tokenSvc.IssueAnonymousToken(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleTokenError(c, err)
		return
	}

	response.Created(c, result)
}

// Redeem 兑换答题令牌，返回答题上下文
// POST /api/v1/attempts/redeem
func (h *TokenHandler) Redeem(c *gin.Context) {
	var req dto.RedeemTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tokenSvc.Redeem(c.Request.Context(), &req)
	if err != nil {
		h.handleTokenError(c, err)
		return
	}

	response.OK(c, result)
}

// Submit 提交全部答案并落库完成标记
// POST /api/v1/attempts/:token/submit
func (h *TokenHandler) Submit(c *gin.Context) {
	var req dto.SubmitAnswersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.tokenSvc.FinalizeSubmission(c.Request.Context(), c.Param("token"), &req)
	if err != nil {
		h.handleTokenError(c, err)
		return
	}

	response.Created(c, result)
}

func (h *TokenHandler) handleTokenError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTokenInvalid):
		response.NotFound(c, 13201, "答题令牌无效")
	case errors.Is(err, service.ErrTokenAlreadyUsed):
		response.Gone(c, 13202, "答题令牌已被使用")
	case errors.Is(err, service.ErrSurveyNotActive):
		response.Conflict(c, 13203, "问卷当前不在答题期")
	case errors.Is(err, service.ErrAlreadyCompleted):
		response.Conflict(c, 13204, "该员工已完成此问卷")
	case errors.Is(err, service.ErrAttemptNotRedeemed):
		response.Conflict(c, 13205, "请先兑换令牌再提交答案")
	case errors.Is(err, service.ErrAnswerInvalid):
		response.BadRequest(c, 13206, "答案与问卷题目不匹配")
	case errors.Is(err, service.ErrDuplicateSubmission):
		response.Conflict(c, 13207, "检测到重复提交，本次提交已丢弃")
	case errors.Is(err, service.ErrSurveyNotFound):
		response.NotFound(c, 13001, "问卷不存在")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.BadRequest(c, 13104, "员工不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/token_handler.go
