package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/model"
	"timereport/backend/internal/repository"
	"timereport/backend/pkg/timeutil"
)

// ── 工时模块业务错误 ──

var (
	ErrTimeLogNotFound        = errors.New("工时记录不存在")
	ErrReportingFieldMismatch = errors.New("填报字段与项目上报方式不符")
	ErrAttendanceNotLoggable  = errors.New("该考勤状态不可填报工时")

	// ErrInsufficientCoverage 哨兵：覆盖不变量被破坏。
	// 具体缺口随 InsufficientCoverageError 携带。
	ErrInsufficientCoverage = errors.New("工时总和不足以覆盖考勤时长")
)

// InsufficientCoverageError 覆盖校验失败：工时总和（Have）低于考勤声明时长（Need）
type InsufficientCoverageError struct {
	Have int
	Need int
}

func (e *InsufficientCoverageError) Error() string {
	return fmt.Sprintf("工时总和不足：已填报 %d 分钟，需要 %d 分钟", e.Have, e.Need)
}

// Is 支持 errors.Is(err, ErrInsufficientCoverage)
func (e *InsufficientCoverageError) Is(target error) bool {
	return target == ErrInsufficientCoverage
}

// TimeLogService 工时业务接口
type TimeLogService interface {
	Create(ctx context.Context, req *dto.CreateTimeLogRequest, callerID, callerRole string) (*dto.TimeLogResponse, error)
	// BatchCreate 整日提交：一组工时作为整体通过覆盖校验后一次性落库
	BatchCreate(ctx context.Context, req *dto.BatchCreateTimeLogsRequest, callerID, callerRole string) ([]dto.TimeLogResponse, error)
	ListByAttendance(ctx context.Context, attendanceID string, callerID, callerRole string) ([]dto.TimeLogResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTimeLogRequest, callerID, callerRole string) (*dto.TimeLogResponse, error)
	Delete(ctx context.Context, id string, callerID, callerRole string) error
}

type timeLogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTimeLogService 创建 TimeLogService 实例
func NewTimeLogService(repo *repository.Repository, logger *zap.Logger) TimeLogService {
	return &timeLogService{repo: repo, logger: logger}
}

// ════════════════════════════════════════════════════════════
// 覆盖校验 — 工时总和 ≥ 考勤声明时长
// ════════════════════════════════════════════════════════════

// checkCoverage 以「写入后的预期总分钟数」判定覆盖不变量。
// 考勤无起止时间时无约束；否则 candidateTotal 低于声明时长即失败。
// 调用方负责在同一事务内先行求出排除 / 纳入待写记录后的预期总和，
// 使违规在提交前被拦截。
func checkCoverage(ctx context.Context, r *repository.Repository, attendanceID string, candidateTotal int) error {
	attendance, err := r.Attendance.GetByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAttendanceNotFound
		}
		return err
	}
	if !attendance.HasTimes() {
		return nil
	}

	start, err := timeutil.Parse(*attendance.StartTime)
	if err != nil {
		return err
	}
	end, err := timeutil.Parse(*attendance.EndTime)
	if err != nil {
		return err
	}

	need := timeutil.DurationMinutes(start, end)
	if candidateTotal < need {
		return &InsufficientCoverageError{Have: candidateTotal, Need: need}
	}
	return nil
}

// ════════════════════════════════════════════════════════════
// 填报字段约束 — 由项目 reporting_type 决定字段集合
// ════════════════════════════════════════════════════════════

// buildTimeLog 按任务所属项目的上报方式校验字段集合并构造记录，
// 返回记录与计入覆盖校验的分钟数。
func (s *timeLogService) buildTimeLog(ctx context.Context, r *repository.Repository, attendanceID string, entry *dto.TimeLogEntry, callerID string) (*model.TimeLog, int, error) {
	task, err := r.Task.GetByID(ctx, entry.TaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, 0, err
	}
	if !task.IsActive || task.Project == nil || !task.Project.IsActive {
		return nil, 0, ErrTaskInactive
	}

	log := &model.TimeLog{
		AttendanceID: attendanceID,
		TaskID:       entry.TaskID,
		Note:         entry.Note,
	}
	log.CreatedBy = &callerID

	var minutes int
	switch task.Project.ReportingType {
	case model.ReportingDuration:
		if entry.DurationMinutes == nil || entry.StartTime != nil || entry.EndTime != nil {
			return nil, 0, ErrReportingFieldMismatch
		}
		if *entry.DurationMinutes <= 0 {
			return nil, 0, ErrInvalidRange
		}
		log.DurationMinutes = entry.DurationMinutes
		minutes = *entry.DurationMinutes

	case model.ReportingStartEnd:
		if entry.DurationMinutes != nil || entry.StartTime == nil || entry.EndTime == nil {
			return nil, 0, ErrReportingFieldMismatch
		}
		start, err := timeutil.Parse(*entry.StartTime)
		if err != nil {
			return nil, 0, err
		}
		end, err := timeutil.Parse(*entry.EndTime)
		if err != nil {
			return nil, 0, err
		}
		d := timeutil.DurationMinutes(start, end)
		if d < 0 {
			return nil, 0, ErrMidnightCrossing
		}
		if d == 0 {
			return nil, 0, ErrInvalidRange
		}
		log.StartTime = entry.StartTime
		log.EndTime = entry.EndTime
		minutes = d

	default:
		return nil, 0, ErrInvalidReportingType
	}

	return log, minutes, nil
}

// loadOwnedAttendance 加载考勤记录并做归属检查。
// 独占状态（dayOff / sickness / reserves）的考勤不可填报工时。
func (s *timeLogService) loadOwnedAttendance(ctx context.Context, r *repository.Repository, attendanceID, callerID, callerRole string) (*model.Attendance, error) {
	attendance, err := r.Attendance.GetByID(ctx, attendanceID)
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
	if attendance.Status.Exclusive() {
		return nil, ErrAttendanceNotLoggable
	}
	return attendance, nil
}

// ════════════════════════════════════════════════════════════
// 写操作 — 每次写入都以预期总和重验覆盖不变量
// ════════════════════════════════════════════════════════════

func (s *timeLogService) Create(ctx context.Context, req *dto.CreateTimeLogRequest, callerID, callerRole string) (*dto.TimeLogResponse, error) {
	var created *model.TimeLog

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		if _, err := s.loadOwnedAttendance(ctx, r, req.AttendanceID, callerID, callerRole); err != nil {
			return err
		}

		log, minutes, err := s.buildTimeLog(ctx, r, req.AttendanceID, &req.TimeLogEntry, callerID)
		if err != nil {
			return err
		}

		current, err := r.TimeLog.SumDurations(ctx, req.AttendanceID, "")
		if err != nil {
			s.logger.Error("汇总工时失败", zap.Error(err))
			return err
		}
		if err := checkCoverage(ctx, r, req.AttendanceID, current+minutes); err != nil {
			return err
		}

		if err := r.TimeLog.Create(ctx, log); err != nil {
			return err
		}
		created = log
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp, err := toTimeLogResponse(created)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *timeLogService) BatchCreate(ctx context.Context, req *dto.BatchCreateTimeLogsRequest, callerID, callerRole string) ([]dto.TimeLogResponse, error) {
	var logs []model.TimeLog

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		if _, err := s.loadOwnedAttendance(ctx, r, req.AttendanceID, callerID, callerRole); err != nil {
			return err
		}

		logs = logs[:0]
		batchMinutes := 0
		for i := range req.Entries {
			log, minutes, err := s.buildTimeLog(ctx, r, req.AttendanceID, &req.Entries[i], callerID)
			if err != nil {
				return err
			}
			logs = append(logs, *log)
			batchMinutes += minutes
		}

		current, err := r.TimeLog.SumDurations(ctx, req.AttendanceID, "")
		if err != nil {
			s.logger.Error("汇总工时失败", zap.Error(err))
			return err
		}
		if err := checkCoverage(ctx, r, req.AttendanceID, current+batchMinutes); err != nil {
			return err
		}

		return r.TimeLog.BatchCreate(ctx, logs)
	})
	if err != nil {
		return nil, err
	}

	result := make([]dto.TimeLogResponse, 0, len(logs))
	for i := range logs {
		resp, err := toTimeLogResponse(&logs[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

func (s *timeLogService) ListByAttendance(ctx context.Context, attendanceID string, callerID, callerRole string) ([]dto.TimeLogResponse, error) {
	attendance, err := s.repo.Attendance.GetByID(ctx, attendanceID)
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

	logs, err := s.repo.TimeLog.ListByAttendance(ctx, attendanceID)
	if err != nil {
		s.logger.Error("查询工时列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TimeLogResponse, 0, len(logs))
	for i := range logs {
		resp, err := toTimeLogResponse(&logs[i])
		if err != nil {
			return nil, err
		}
		result = append(result, *resp)
	}
	return result, nil
}

func (s *timeLogService) Update(ctx context.Context, id string, req *dto.UpdateTimeLogRequest, callerID, callerRole string) (*dto.TimeLogResponse, error) {
	var updated *model.TimeLog

	err := s.repo.Transaction(ctx, func(r *repository.Repository) error {
		log, err := r.TimeLog.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTimeLogNotFound
			}
			s.logger.Error("查询工时记录失败", zap.Error(err))
			return err
		}
		if _, err := s.loadOwnedAttendance(ctx, r, log.AttendanceID, callerID, callerRole); err != nil {
			return err
		}

		// 表示方式不可切换：仅允许修改本方式内的字段
		if log.DurationMinutes != nil {
			if req.StartTime != nil || req.EndTime != nil {
				return ErrReportingFieldMismatch
			}
			if req.DurationMinutes != nil {
				if *req.DurationMinutes <= 0 {
					return ErrInvalidRange
				}
				log.DurationMinutes = req.DurationMinutes
			}
		} else {
			if req.DurationMinutes != nil {
				return ErrReportingFieldMismatch
			}
			if req.StartTime != nil {
				log.StartTime = req.StartTime
			}
			if req.EndTime != nil {
				log.EndTime = req.EndTime
			}
			start, err := timeutil.Parse(*log.StartTime)
			if err != nil {
				return err
			}
			end, err := timeutil.Parse(*log.EndTime)
			if err != nil {
				return err
			}
			d := timeutil.DurationMinutes(start, end)
			if d < 0 {
				return ErrMidnightCrossing
			}
			if d == 0 {
				return ErrInvalidRange
			}
		}
		if req.Note != nil {
			log.Note = *req.Note
		}

		minutes, err := log.Minutes()
		if err != nil {
			return err
		}
		rest, err := r.TimeLog.SumDurations(ctx, log.AttendanceID, log.TimeLogID)
		if err != nil {
			s.logger.Error("汇总工时失败", zap.Error(err))
			return err
		}
		if err := checkCoverage(ctx, r, log.AttendanceID, rest+minutes); err != nil {
			return err
		}

		log.UpdatedBy = &callerID
		if err := r.TimeLog.Update(ctx, log); err != nil {
			return err
		}
		updated = log
		return nil
	})
	if err != nil {
		return nil, err
	}

	return toTimeLogResponse(updated)
}

func (s *timeLogService) Delete(ctx context.Context, id string, callerID, callerRole string) error {
	return s.repo.Transaction(ctx, func(r *repository.Repository) error {
		log, err := r.TimeLog.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTimeLogNotFound
			}
			s.logger.Error("查询工时记录失败", zap.Error(err))
			return err
		}

		attendance, err := r.Attendance.GetByID(ctx, log.AttendanceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAttendanceNotFound
			}
			return err
		}
		if callerRole != model.RoleAdmin && attendance.UserID != callerID {
			return ErrNoPermission
		}

		// 删除后的剩余总和仍须覆盖考勤时长
		rest, err := r.TimeLog.SumDurations(ctx, log.AttendanceID, log.TimeLogID)
		if err != nil {
			s.logger.Error("汇总工时失败", zap.Error(err))
			return err
		}
		if err := checkCoverage(ctx, r, log.AttendanceID, rest); err != nil {
			return err
		}

		return r.TimeLog.Delete(ctx, id)
	})
}

// toTimeLogResponse 模型 → 响应 DTO
func toTimeLogResponse(log *model.TimeLog) (*dto.TimeLogResponse, error) {
	minutes, err := log.Minutes()
	if err != nil {
		return nil, err
	}

	resp := &dto.TimeLogResponse{
		ID:              log.TimeLogID,
		AttendanceID:    log.AttendanceID,
		TaskID:          log.TaskID,
		DurationMinutes: log.DurationMinutes,
		StartTime:       log.StartTime,
		EndTime:         log.EndTime,
		Minutes:         minutes,
		Note:            log.Note,
	}
	if log.Task != nil {
		resp.Task = &dto.TaskBrief{
			ID:   log.Task.TaskID,
			Name: log.Task.Name,
		}
		if log.Task.Project != nil {
			resp.Task.ProjectName = log.Task.Project.Name
		}
	}
	return resp, nil
}
