package dto

// ── 考勤模块 DTO ──

// CreateAttendanceRequest 创建考勤记录请求
type CreateAttendanceRequest struct {
	WorkDate  string  `json:"work_date"  binding:"required,datetime=2006-01-02"`
	Status    string  `json:"status"     binding:"required,oneof=work halfDayOff dayOff sickness reserves"`
	StartTime *string `json:"start_time"` // "HH:mm"，status=work 时必填
	EndTime   *string `json:"end_time"`
}

// UpdateAttendanceRequest 更新考勤记录请求
// work_date 创建后不可变更，故无此字段。
type UpdateAttendanceRequest struct {
	Status    *string `json:"status" binding:"omitempty,oneof=work halfDayOff dayOff sickness reserves"`
	StartTime *string `json:"start_time"`
	EndTime   *string `json:"end_time"`
	ClearTimes bool   `json:"clear_times"` // true 时清空起止时间（非 work 状态）
}

// AttendanceListRequest 考勤列表查询参数
type AttendanceListRequest struct {
	UserID   string `form:"user_id" binding:"omitempty,uuid"` // 仅管理员可查他人
	DateFrom string `form:"date_from" binding:"omitempty,datetime=2006-01-02"`
	DateTo   string `form:"date_to"   binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=31" binding:"omitempty,min=1,max=100"`
}

// AttendanceResponse 考勤记录响应
type AttendanceResponse struct {
	ID              string  `json:"id"`
	UserID          string  `json:"user_id"`
	UserName        string  `json:"user_name,omitempty"`
	WorkDate        string  `json:"work_date"` // "2006-01-02"
	Status          string  `json:"status"`
	StartTime       *string `json:"start_time,omitempty"`
	EndTime         *string `json:"end_time,omitempty"`
	DurationMinutes *int    `json:"duration_minutes,omitempty"` // 由起止时间推导
}

// [自证通过] internal/dto/attendance.go
