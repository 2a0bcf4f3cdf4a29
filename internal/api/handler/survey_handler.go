package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/service"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/pkg/response"
)

// SurveyHandler 问卷模块 HTTP 处理器
type SurveyHandler struct {
	surveySvc service.SurveyService
}

// NewSurveyHandler 创建 SurveyHandler
func NewSurveyHandler(surveySvc service.SurveyService) *SurveyHandler {
	return &SurveyHandler{surveySvc: surveySvc}
}

// Create 创建问卷
// POST /api/v1/surveys
func (h *SurveyHandler) Create(c *gin.Context) {
	var req dto.CreateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.surveySvc.Create(c.Request.Context(), &req, OperatorID(c))
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.Created(c, result)
}

// Get 获取问卷详情
// GET /api/v1/surveys/:id
func (h *SurveyHandler) Get(c *gin.Context) {
	result, err := h.surveySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.OK(c, result)
}

// List 按阶段过滤查询问卷列表
// GET /api/v1/surveys?phase=active
func (h *SurveyHandler) List(c *gin.Context) {
	var req dto.SurveyListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.surveySvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.OK(c, result)
}

// Update 更新问卷（仅发布前允许）
// PATCH /api/v1/surveys/:id
func (h *SurveyHandler) Update(c *gin.Context) {
	var req dto.UpdateSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.surveySvc.Update(c.Request.Context(), c.Param("id"), &req, OperatorID(c))
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.OK(c, result)
}

// Transition 手动状态流转（completed → archived）
// PATCH /api/v1/surveys/:id/status
func (h *SurveyHandler) Transition(c *gin.Context) {
	var req dto.TransitionSurveyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.surveySvc.Transition(c.Request.Context(), c.Param("id"), &req, OperatorID(c))
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.OK(c, result)
}

// Delete 删除问卷（仅当没有任何提交时允许）
// DELETE /api/v1/surveys/:id
func (h *SurveyHandler) Delete(c *gin.Context) {
	if err := h.surveySvc.Delete(c.Request.Context(), c.Param("id"), OperatorID(c)); err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.OK(c, nil)
}

// AddQuestions 追加题目（仅发布前允许）
// POST /api/v1/surveys/:id/questions
func (h *SurveyHandler) AddQuestions(c *gin.Context) {
	var reqs []dto.CreateQuestionRequest
	if err := c.ShouldBindJSON(&reqs); err != nil || len(reqs) == 0 {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.surveySvc.AddQuestions(c.Request.Context(), c.Param("id"), reqs, OperatorID(c))
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.Created(c, result)
}

// ListQuestions 查询问卷题目（按 sort_order 排序）
// GET /api/v1/surveys/:id/questions
func (h *SurveyHandler) ListQuestions(c *gin.Context) {
	result, err := h.surveySvc.ListQuestions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleSurveyError(c, err)
		return
	}

	response.OK(c, result)
}

func (h *SurveyHandler) handleSurveyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSurveyNotFound):
		response.NotFound(c, 13001, "问卷不存在")
	case errors.Is(err, service.ErrQuestionNotFound):
		response.NotFound(c, 13002, "题目不存在")
	case errors.Is(err, service.ErrPublishDateInPast):
		response.BadRequest(c, 13003, "发布时间必须晚于当前时间")
	case errors.Is(err, service.ErrConsentDeadlineInvalid):
		response.BadRequest(c, 13004, "同意截止时间不能晚于发布时间")
	case errors.Is(err, service.ErrTargetScopeInvalid):
		response.BadRequest(c, 13005, "目标范围配置不完整")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.BadRequest(c, 13006, "目标部门不存在")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.BadRequest(c, 13007, "目标员工不存在")
	case errors.Is(err, service.ErrSurveyNotEditable):
		response.Conflict(c, 13008, "问卷已发布，不可再编辑")
	case errors.Is(err, service.ErrSurveyNotCompleted):
		response.Conflict(c, 13009, "仅已结束的问卷可以归档")
	case errors.Is(err, service.ErrSurveyHasSubmissions):
		response.Conflict(c, 13010, "问卷已有提交，只能归档不能删除")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/survey_handler.go
