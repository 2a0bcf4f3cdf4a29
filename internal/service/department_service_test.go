package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
)

// ── 测试辅助 ──

func setupTestDepartmentService() (DepartmentService, *mockRepoSet) {
	repo, set := newMockRepoSet()
	svc := NewDepartmentService(repo, zap.NewNop())
	return svc, set
}

// ── Create 测试 ──

func TestDepartmentService_Create_Success(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	result, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "市场部", Description: "市场与品牌"})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "市场部" || !result.IsActive {
		t.Errorf("创建结果错误: %+v", result)
	}
}

func TestDepartmentService_Create_NameExists(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	// "研发部" 已在 mock 初始化时存在
	_, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{Name: "研发部"})
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("期望 ErrDepartmentNameExists，实际: %v", err)
	}
}

// ── List 测试 ──

func TestDepartmentService_List_EmployeeCounts(t *testing.T) {
	svc, set := setupTestDepartmentService()
	set.dept.employeeCounts["dept-1"] = 8

	result, err := svc.List(context.Background(), &dto.DepartmentListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 1 || result[0].EmployeeCount != 8 {
		t.Errorf("列表应带员工数: %+v", result)
	}
}

func TestDepartmentService_List_IncludeInactive(t *testing.T) {
	svc, set := setupTestDepartmentService()
	set.dept.departments["dept-x"] = &model.Department{DepartmentID: "dept-x", Name: "已撤销部门", IsActive: false}

	activeOnly, err := svc.List(context.Background(), &dto.DepartmentListRequest{})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	for _, d := range activeOnly {
		if d.Name == "已撤销部门" {
			t.Error("默认不应返回停用部门")
		}
	}

	all, err := svc.List(context.Background(), &dto.DepartmentListRequest{IncludeInactive: true})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("期望2个部门，实际=%d", len(all))
	}
}

// ── Update 测试 ──

func TestDepartmentService_Update_Deactivate(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	inactive := false
	result, err := svc.Update(context.Background(), "dept-1", &dto.UpdateDepartmentRequest{IsActive: &inactive})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.IsActive {
		t.Error("期望部门被停用")
	}
}

func TestDepartmentService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	name := "任意"
	_, err := svc.Update(context.Background(), "ghost", &dto.UpdateDepartmentRequest{Name: &name})
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}
