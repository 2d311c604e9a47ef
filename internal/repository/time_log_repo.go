package repository

import (
	"context"

	"gorm.io/gorm"

	"timereport/backend/internal/model"
)

// TimeLogRepository 工时数据访问接口
// SumDurations 是覆盖校验的求和协作方：返回某考勤记录下全部工时的分钟总和。
type TimeLogRepository interface {
	Create(ctx context.Context, log *model.TimeLog) error
	BatchCreate(ctx context.Context, logs []model.TimeLog) error
	GetByID(ctx context.Context, id string) (*model.TimeLog, error)
	ListByAttendance(ctx context.Context, attendanceID string) ([]model.TimeLog, error)
	// SumDurations 求和；excludeID 非空时排除该条（更新 / 删除场景）
	SumDurations(ctx context.Context, attendanceID string, excludeID string) (int, error)
	CountByAttendance(ctx context.Context, attendanceID string) (int64, error)
	// CountByProject 统计项目下（经由任务）已存在的工时条数，用于上报方式锁定判断
	CountByProject(ctx context.Context, projectID string) (int64, error)
	Update(ctx context.Context, log *model.TimeLog) error
	Delete(ctx context.Context, id string) error
}

type timeLogRepo struct {
	db *gorm.DB
}

// NewTimeLogRepo 创建 TimeLogRepository 实例
func NewTimeLogRepo(db *gorm.DB) TimeLogRepository {
	return &timeLogRepo{db: db}
}

func (r *timeLogRepo) Create(ctx context.Context, log *model.TimeLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *timeLogRepo) BatchCreate(ctx context.Context, logs []model.TimeLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&logs).Error
}

func (r *timeLogRepo) GetByID(ctx context.Context, id string) (*model.TimeLog, error) {
	var log model.TimeLog
	err := r.db.WithContext(ctx).
		Preload("Task").Preload("Task.Project").
		Preload("Attendance").
		Where("time_log_id = ?", id).
		First(&log).Error
	if err != nil {
		return nil, err
	}
	return &log, nil
}

func (r *timeLogRepo) ListByAttendance(ctx context.Context, attendanceID string) ([]model.TimeLog, error) {
	var logs []model.TimeLog
	err := r.db.WithContext(ctx).
		Preload("Task").Preload("Task.Project").
		Where("attendance_id = ?", attendanceID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}

func (r *timeLogRepo) SumDurations(ctx context.Context, attendanceID string, excludeID string) (int, error) {
	var logs []model.TimeLog
	db := r.db.WithContext(ctx).Where("attendance_id = ?", attendanceID)
	if excludeID != "" {
		db = db.Where("time_log_id != ?", excludeID)
	}
	if err := db.Find(&logs).Error; err != nil {
		return 0, err
	}

	total := 0
	for i := range logs {
		minutes, err := logs[i].Minutes()
		if err != nil {
			return 0, err
		}
		total += minutes
	}
	return total, nil
}

func (r *timeLogRepo) CountByAttendance(ctx context.Context, attendanceID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TimeLog{}).
		Where("attendance_id = ?", attendanceID).
		Count(&count).Error
	return count, err
}

func (r *timeLogRepo) CountByProject(ctx context.Context, projectID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.TimeLog{}).
		Joins("JOIN tasks ON tasks.task_id = time_logs.task_id").
		Where("tasks.project_id = ?", projectID).
		Count(&count).Error
	return count, err
}

func (r *timeLogRepo) Update(ctx context.Context, log *model.TimeLog) error {
	return r.db.WithContext(ctx).
		Model(log).
		Where("time_log_id = ?", log.TimeLogID).
		Updates(map[string]interface{}{
			"duration_minutes": log.DurationMinutes,
			"start_time":       log.StartTime,
			"end_time":         log.EndTime,
			"note":             log.Note,
			"updated_by":       log.UpdatedBy,
		}).Error
}

func (r *timeLogRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("time_log_id = ?", id).
		Delete(&model.TimeLog{}).Error
}
