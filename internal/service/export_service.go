package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/DylanChiang-Dev/caicaizi-class/internal/model"
	"github.com/DylanChiang-Dev/caicaizi-class/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportWeek 导出某一周的课表为 Excel
	ExportWeek(ctx context.Context, week int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	engines *Engines
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, engines *Engines, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, engines: engines, logger: logger}
}

var weekdayNames = [...]string{"週一", "週二", "週三", "週四", "週五", "週六", "週日"}

// ═══════════════════════════════════════════════════════════
// ExportWeek 导出周课表
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "第N週"
//   - 标题行：第N週課表 (起始日 ~ 结束日)
//   - 表头：節次 | 時間 | 週一 ~ 週日
//   - 行：按配置顺序的节次；单元格：该周上课的课程名与教室
//   - 末尾：備註
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportWeek(ctx context.Context, week int) (*bytes.Buffer, string, error) {
	if week < 1 || week > s.engines.MaxWeek {
		return nil, "", ErrWeekOutOfRange
	}

	// 1. 查询数据
	courses, err := s.repo.Schedule.ListCourses(ctx)
	if err != nil {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}
	slots, err := s.repo.Schedule.ListTimeSlots(ctx)
	if err != nil {
		s.logger.Error("查询作息时间失败", zap.Error(err))
		return nil, "", err
	}
	notes, err := s.repo.Schedule.Notes(ctx)
	if err != nil {
		return nil, "", err
	}

	// 2. 构建索引: "dayOfWeek:periods" → 单元格文本
	cellIndex := make(map[string][]string)
	for _, c := range courses {
		if !ShouldShowCourse(c.WeekType, week, c.WeekRange) {
			continue
		}
		key := fmt.Sprintf("%d:%s", c.DayOfWeek, c.Periods)
		cellIndex[key] = append(cellIndex[key], courseCellText(c))
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("第%d週", week)
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "I", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
	})

	// 标题行
	cal := s.engines.Calendar
	start, end := cal.WeekDateRange(week)
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("第%d週課表 (%s ~ %s)", week, cal.FormatDate(start), cal.FormatDate(end)))
	f.MergeCell(sheetName, "A1", "I1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	row := 2
	f.SetCellValue(sheetName, cell("A", row), "節次")
	f.SetCellValue(sheetName, cell("B", row), "時間")
	for i, name := range weekdayNames {
		f.SetCellValue(sheetName, cell(colName(2+i), row), name)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell("I", row), headerStyle)

	// 数据行
	row = 3
	for _, slot := range slots {
		f.SetCellValue(sheetName, cell("A", row), slot.Period)
		f.SetCellValue(sheetName, cell("B", row), fmt.Sprintf("%s-%s", slot.StartTime, slot.EndTime))
		for day := 1; day <= 7; day++ {
			text := "-"
			if list, ok := cellIndex[fmt.Sprintf("%d:%s", day, slot.Period)]; ok {
				text = strings.Join(list, "\n\n")
			}
			f.SetCellValue(sheetName, cell(colName(1+day), row), text)
		}
		f.SetCellStyle(sheetName, cell("C", row), cell("I", row), cellStyle)
		row++
	}

	// 備註
	if len(notes) > 0 {
		row++
		f.SetCellValue(sheetName, cell("A", row), "備註")
		for _, note := range notes {
			f.SetCellValue(sheetName, cell("B", row), note)
			f.MergeCell(sheetName, cell("B", row), cell("I", row))
			row++
		}
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("課表_第%d週.xlsx", week)
	return buf, filename, nil
}

// ── 辅助函数 ──

func courseCellText(c model.Course) string {
	if c.Classroom == "" {
		return c.Name
	}
	return c.Name + "\n" + c.Classroom
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
