package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"timereport/backend/internal/model"
	"timereport/backend/internal/repository"
	"timereport/backend/pkg/timeutil"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("该月份无考勤记录")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
	ErrExportInvalidMonth = errors.New("月份格式无效")
)

// statusLabels 考勤状态中文标注（报表与日历共用）
var statusLabels = map[model.AttendanceStatus]string{
	model.StatusWork:       "工作",
	model.StatusHalfDayOff: "半天休",
	model.StatusDayOff:     "休假",
	model.StatusSickness:   "病假",
	model.StatusReserves:   "预备役",
}

// ExportService 导出业务接口
//
// 设计说明：
//   - 月度报表导出为 Excel (.xlsx)：考勤明细 + 工时明细 + 合计
//   - 日历导出为 iCalendar (RFC 5545)：考勤记录序列化为 VEVENT，
//     有起止时间的生成定时事件，无起止时间的生成全天事件
//   - 均以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入
type ExportService interface {
	// ExportMonthlyReport 导出某用户某月的考勤与工时报表，month 形如 "2026-08"
	ExportMonthlyReport(ctx context.Context, userID, month string) (*bytes.Buffer, string, error)
	// ExportCalendar 导出某用户某日期区间的考勤日历
	ExportCalendar(ctx context.Context, userID string, from, to time.Time) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportMonthlyReport — 导出月度考勤 / 工时报表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 表头: | 日期 | 状态 | 上班 | 下班 | 声明时长(分) | 工时合计(分) | 任务明细 |
//   - 行：该月每条考勤一行，按 work_date 排序
//   - 末行：声明时长与工时合计的月度总计
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportMonthlyReport(ctx context.Context, userID, month string) (*bytes.Buffer, string, error) {
	monthStart, err := time.Parse("2006-01", month)
	if err != nil {
		return nil, "", ErrExportInvalidMonth
	}
	monthEnd := monthStart.AddDate(0, 1, 0).AddDate(0, 0, -1)

	// 1. 查询用户（文件名与标题用）
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 查询当月考勤
	attendances, err := s.repo.Attendance.ListByUserAndRange(ctx, userID, monthStart, monthEnd)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(attendances) == 0 {
		return nil, "", ErrExportNoData
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "月度报表"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "D", 10)
	f.SetColWidth(sheetName, "E", "F", 14)
	f.SetColWidth(sheetName, "G", "G", 40)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — %s 考勤报表", user.Name, month))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"日期", "状态", "上班", "下班", "声明时长(分)", "工时合计(分)", "任务明细"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	// 数据行
	totalDeclared := 0
	totalLogged := 0
	row := 3
	for i := range attendances {
		att := &attendances[i]

		f.SetCellValue(sheetName, cell("A", row), att.WorkDate.Format("2006-01-02"))
		f.SetCellValue(sheetName, cell("B", row), statusLabels[att.Status])

		declared := 0
		if att.HasTimes() {
			f.SetCellValue(sheetName, cell("C", row), *att.StartTime)
			f.SetCellValue(sheetName, cell("D", row), *att.EndTime)
			start, err := timeutil.Parse(*att.StartTime)
			if err != nil {
				return nil, "", err
			}
			end, err := timeutil.Parse(*att.EndTime)
			if err != nil {
				return nil, "", err
			}
			declared = timeutil.DurationMinutes(start, end)
			f.SetCellValue(sheetName, cell("E", row), declared)
		} else {
			f.SetCellValue(sheetName, cell("C", row), "-")
			f.SetCellValue(sheetName, cell("D", row), "-")
			f.SetCellValue(sheetName, cell("E", row), "-")
		}

		logs, err := s.repo.TimeLog.ListByAttendance(ctx, att.AttendanceID)
		if err != nil {
			s.logger.Error("查询工时列表失败", zap.Error(err))
			return nil, "", err
		}

		logged := 0
		detail := ""
		for j := range logs {
			minutes, err := logs[j].Minutes()
			if err != nil {
				return nil, "", err
			}
			logged += minutes

			taskName := logs[j].TaskID
			if logs[j].Task != nil {
				taskName = logs[j].Task.Name
			}
			if detail != "" {
				detail += "; "
			}
			detail += fmt.Sprintf("%s %d分", taskName, minutes)
		}
		f.SetCellValue(sheetName, cell("F", row), logged)
		f.SetCellValue(sheetName, cell("G", row), detail)

		totalDeclared += declared
		totalLogged += logged
		row++
	}

	// 合计行
	f.SetCellValue(sheetName, cell("A", row), "合计")
	f.SetCellValue(sheetName, cell("E", row), totalDeclared)
	f.SetCellValue(sheetName, cell("F", row), totalLogged)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("考勤报表_%s_%s.xlsx", user.Name, month)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportCalendar — 导出考勤日历 (iCalendar)
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportCalendar(ctx context.Context, userID string, from, to time.Time) (*bytes.Buffer, string, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, "", err
	}

	attendances, err := s.repo.Attendance.ListByUserAndRange(ctx, userID, from, to)
	if err != nil {
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//timereport//backend//CN")
	cal.SetName(fmt.Sprintf("%s 的考勤", user.Name))

	for i := range attendances {
		att := &attendances[i]

		event := cal.AddEvent(fmt.Sprintf("%s@timereport", att.AttendanceID))
		event.SetDtStampTime(time.Now())
		event.SetSummary(statusLabels[att.Status])

		if att.HasTimes() {
			start, err := timeutil.Parse(*att.StartTime)
			if err != nil {
				return nil, "", err
			}
			end, err := timeutil.Parse(*att.EndTime)
			if err != nil {
				return nil, "", err
			}
			event.SetStartAt(atTimeOfDay(att.WorkDate, start))
			event.SetEndAt(atTimeOfDay(att.WorkDate, end))
		} else {
			event.SetAllDayStartAt(att.WorkDate)
			event.SetAllDayEndAt(att.WorkDate.AddDate(0, 0, 1))
		}
	}

	buf := bytes.NewBufferString(cal.Serialize())
	filename := fmt.Sprintf("考勤日历_%s.ics", user.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

// atTimeOfDay 将日期与当日分钟数合成具体时间点
func atTimeOfDay(date time.Time, tod timeutil.TimeOfDay) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), tod.Hour(), tod.Minute(), 0, 0, time.Local)
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
