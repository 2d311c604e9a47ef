package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"timereport/backend/internal/model"
	pkgerrors "timereport/backend/pkg/errors"
)

// AttendanceRepository 考勤数据访问接口
// 这是校验引擎的「同级记录查询协作方」：
// ListByUserAndDate 返回同一用户同一天的全部其他考勤记录。
type AttendanceRepository interface {
	Create(ctx context.Context, attendance *model.Attendance) error
	GetByID(ctx context.Context, id string) (*model.Attendance, error)
	// ListByUserAndDate 查询用户某天的考勤记录；excludeID 非空时排除该条（更新场景下不与自身冲突）
	ListByUserAndDate(ctx context.Context, userID string, date time.Time, excludeID string) ([]model.Attendance, error)
	// ListByUserAndRange 查询用户某日期区间内的考勤记录（报表与日历导出）
	ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]model.Attendance, error)
	List(ctx context.Context, userID string, from, to *time.Time, offset, limit int) ([]model.Attendance, int64, error)
	Update(ctx context.Context, attendance *model.Attendance) error
}

type attendanceRepo struct {
	db *gorm.DB
}

// NewAttendanceRepo 创建 AttendanceRepository 实例
func NewAttendanceRepo(db *gorm.DB) AttendanceRepository {
	return &attendanceRepo{db: db}
}

func (r *attendanceRepo) Create(ctx context.Context, attendance *model.Attendance) error {
	return r.db.WithContext(ctx).Create(attendance).Error
}

func (r *attendanceRepo) GetByID(ctx context.Context, id string) (*model.Attendance, error) {
	var attendance model.Attendance
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("attendance_id = ?", id).
		First(&attendance).Error
	if err != nil {
		return nil, err
	}
	return &attendance, nil
}

func (r *attendanceRepo) ListByUserAndDate(ctx context.Context, userID string, date time.Time, excludeID string) ([]model.Attendance, error) {
	var records []model.Attendance
	db := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date = ?", userID, date.Format("2006-01-02"))
	if excludeID != "" {
		db = db.Where("attendance_id != ?", excludeID)
	}
	err := db.Order("created_at ASC").Find(&records).Error
	return records, err
}

func (r *attendanceRepo) ListByUserAndRange(ctx context.Context, userID string, from, to time.Time) ([]model.Attendance, error) {
	var records []model.Attendance
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND work_date >= ? AND work_date <= ?",
			userID, from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("work_date ASC, start_time ASC").
		Find(&records).Error
	return records, err
}

func (r *attendanceRepo) List(ctx context.Context, userID string, from, to *time.Time, offset, limit int) ([]model.Attendance, int64, error) {
	var records []model.Attendance
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Attendance{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	if from != nil {
		db = db.Where("work_date >= ?", from.Format("2006-01-02"))
	}
	if to != nil {
		db = db.Where("work_date <= ?", to.Format("2006-01-02"))
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("User").
		Order("work_date DESC, created_at ASC").
		Offset(offset).Limit(limit).
		Find(&records).Error
	return records, total, err
}

func (r *attendanceRepo) Update(ctx context.Context, attendance *model.Attendance) error {
	// work_date 不在更新列中：创建后不可变更
	oldVersion := attendance.Version
	result := r.db.WithContext(ctx).
		Model(attendance).
		Where("attendance_id = ? AND version = ?", attendance.AttendanceID, oldVersion).
		Updates(map[string]interface{}{
			"status":     attendance.Status,
			"start_time": attendance.StartTime,
			"end_time":   attendance.EndTime,
			"updated_by": attendance.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	attendance.Version = oldVersion + 1
	return nil
}
