package services

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	chewingSheetName = "Chewing Data"
	summarySheetName = "Summary"
)

// chewingExportHeader 导出表头
var chewingExportHeader = []string{"Date", "Count"}

// InterfaceExportService 咀嚼数据导出
type InterfaceExportService interface {
	ExportChewingData(ctx context.Context, query ChewingQuery) ([]byte, string, error)
}

// ExportService 把看板数据导出为 Excel
type ExportService struct {
	Chewing InterfaceChewingDataService
}

// NewExportService 创建导出服务
func NewExportService(chewing InterfaceChewingDataService) InterfaceExportService {
	return &ExportService{Chewing: chewing}
}

// 1 ExportChewingData 导出与看板相同窗口的数据，返回文件内容和文件名
func (s *ExportService) ExportChewingData(ctx context.Context, query ChewingQuery) ([]byte, string, error) {
	result, err := s.Chewing.GetChewingData(ctx, query)
	if err != nil {
		return nil, "", err
	}

	content, err := GenerateChewingWorkbook(result)
	if err != nil {
		return nil, "", err
	}

	member := result.MemberID
	if member == "" {
		member = "none"
	}
	filename := fmt.Sprintf("chewing_%s_%s_%s.xlsx", member, result.Range, result.Since)
	return content, filename, nil
}

// GenerateChewingWorkbook 生成包含明细和汇总两个工作表的 Excel 文件
func GenerateChewingWorkbook(result *ChewingResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(chewingSheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheetName); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	// 删除默认的 Sheet1
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for col, header := range chewingExportHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellValue(chewingSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("failed to set header cell %s: %w", cell, err)
		}
		if err := f.SetCellStyle(chewingSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("failed to set header style: %w", err)
		}
	}
	if err := f.SetColWidth(chewingSheetName, "A", "B", 14); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	for i, p := range result.Points {
		row := i + 2
		if err := f.SetSheetRow(chewingSheetName, fmt.Sprintf("A%d", row), &[]interface{}{p.Date, p.Count}); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", row, err)
		}
	}

	summary := [][]interface{}{
		{"Member", result.MemberID},
		{"Range", string(result.Range)},
		{"Since", result.Since},
		{"Average", result.Stats.Average},
		{"Days", result.Stats.Days},
		{"Max", result.Stats.Max},
	}
	for i, values := range summary {
		row := values
		if err := f.SetSheetRow(summarySheetName, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, fmt.Errorf("failed to write summary: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
