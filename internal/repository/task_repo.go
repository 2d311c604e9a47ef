package repository

import (
	"context"

	"gorm.io/gorm"

	"timereport/backend/internal/model"
	pkgerrors "timereport/backend/pkg/errors"
)

// TaskRepository 任务数据访问接口
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	List(ctx context.Context, projectID string, includeInactive bool) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo 创建 TaskRepository 实例
func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Preload("Project").Preload("Project.Client").
		Where("task_id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) List(ctx context.Context, projectID string, includeInactive bool) ([]model.Task, error) {
	var tasks []model.Task
	db := r.db.WithContext(ctx)
	if projectID != "" {
		db = db.Where("project_id = ?", projectID)
	}
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Preload("Project").
		Order("name ASC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) Update(ctx context.Context, task *model.Task) error {
	oldVersion := task.Version
	result := r.db.WithContext(ctx).
		Model(task).
		Where("task_id = ? AND version = ?", task.TaskID, oldVersion).
		Updates(map[string]interface{}{
			"name":       task.Name,
			"is_active":  task.IsActive,
			"updated_by": task.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	task.Version = oldVersion + 1
	return nil
}

func (r *taskRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Task{}).
		Where("task_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
