package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"timereport/backend/internal/model"
	"timereport/backend/internal/service"
	"timereport/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportMonthlyReport 导出月度考勤报表
// GET /api/v1/export/monthly-report?month=2026-08&user_id=xxx
// worker 只能导出自己的报表；管理员可通过 user_id 导出他人的
func (h *ExportHandler) ExportMonthlyReport(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	month := c.Query("month")
	if month == "" {
		response.BadRequest(c, 10001, "month 不能为空")
		return
	}

	userID := callerID
	if target := c.Query("user_id"); target != "" && target != callerID {
		if callerRole != model.RoleAdmin {
			response.Forbidden(c, 10003, "无权限访问")
			return
		}
		userID = target
	}

	buf, filename, err := h.exportSvc.ExportMonthlyReport(c.Request.Context(), userID, month)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, xlsxContentType, filename, buf.Bytes())
}

// ExportCalendar 导出考勤日历 (iCalendar)
// GET /api/v1/export/calendar?from=2026-08-01&to=2026-08-31
func (h *ExportHandler) ExportCalendar(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		response.BadRequest(c, 10001, "from 日期格式无效")
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		response.BadRequest(c, 10001, "to 日期格式无效")
		return
	}

	buf, filename, err := h.exportSvc.ExportCalendar(c.Request.Context(), callerID, from, to)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, icsContentType, filename, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportInvalidMonth):
		response.BadRequest(c, 18001, "月份格式无效，应为 YYYY-MM")
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 18002, "该月份无考勤记录")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// writeDownload 设置文件下载响应头并写入内容
func writeDownload(c *gin.Context, contentType, filename string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
