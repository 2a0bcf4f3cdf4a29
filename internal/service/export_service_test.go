package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/model"
)

// ── 测试辅助 ──

func setupTestExportService() (ExportService, *mockRepoSet) {
	repo, set := newMockRepoSet()
	report := NewReportService(testConfig(), repo, zap.NewNop())
	svc := NewExportService(report, repo, zap.NewNop())
	return svc, set
}

// ── ExportReport 测试 ──

func TestExportService_ExportReport_SurveyNotFound(t *testing.T) {
	svc, _ := setupTestExportService()

	_, _, err := svc.ExportReport(context.Background(), "nonexistent")
	if !errors.Is(err, ErrSurveyNotFound) {
		t.Errorf("期望 ErrSurveyNotFound，实际: %v", err)
	}
}

func TestExportService_ExportReport_NoQuestions(t *testing.T) {
	svc, set := setupTestExportService()
	seedSurvey(set, "survey-1", model.PhaseActive, testNow.Add(-24*time.Hour), 7)

	_, _, err := svc.ExportReport(context.Background(), "survey-1")
	if !errors.Is(err, ErrExportNoQuestions) {
		t.Errorf("期望 ErrExportNoQuestions，实际: %v", err)
	}
}

func TestExportService_ExportReport_Success(t *testing.T) {
	svc, set := setupTestExportService()
	seedSurvey(set, "survey-1", model.PhaseActive, testNow.Add(-24*time.Hour), 7)
	param := "工作环境"
	seedQuestion(set, "q-1", "survey-1", 1, []string{"好", "一般", "差"}, &param)
	seedResponses(set, "survey-1", "q-1", []int{2, 1, 0})

	buf, filename, err := svc.ExportReport(context.Background(), "survey-1")
	if err != nil {
		t.Fatalf("ExportReport 应成功: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("导出内容不应为空")
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("文件名应以 .xlsx 结尾: %s", filename)
	}

	// 回读校验 Sheet 结构与关键单元格
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("导出内容应为合法 xlsx: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := map[string]bool{"选项分布": false, "参数得分": false, "同意统计": false}
	for _, s := range sheets {
		if _, ok := want[s]; ok {
			want[s] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("缺少 Sheet: %s", name)
		}
	}

	// 选项分布首个数据块应包含题目文本
	v, _ := f.GetCellValue("选项分布", "A2")
	if v != "题目q-1" {
		t.Errorf("期望 A2=题目q-1，实际=%s", v)
	}
}
