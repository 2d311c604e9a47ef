package repository

import (
	"context"

	"gorm.io/gorm"

	"timereport/backend/internal/model"
	pkgerrors "timereport/backend/pkg/errors"
)

// ProjectRepository 项目数据访问接口
type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	GetByID(ctx context.Context, id string) (*model.Project, error)
	List(ctx context.Context, clientID string, includeInactive bool) ([]model.Project, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type projectRepo struct {
	db *gorm.DB
}

// NewProjectRepo 创建 ProjectRepository 实例
func NewProjectRepo(db *gorm.DB) ProjectRepository {
	return &projectRepo{db: db}
}

func (r *projectRepo) Create(ctx context.Context, project *model.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*model.Project, error) {
	var project model.Project
	err := r.db.WithContext(ctx).
		Preload("Client").
		Where("project_id = ?", id).
		First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepo) List(ctx context.Context, clientID string, includeInactive bool) ([]model.Project, error) {
	var projects []model.Project
	db := r.db.WithContext(ctx)
	if clientID != "" {
		db = db.Where("client_id = ?", clientID)
	}
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Preload("Client").
		Order("name ASC").
		Find(&projects).Error
	return projects, err
}

func (r *projectRepo) Update(ctx context.Context, project *model.Project) error {
	oldVersion := project.Version
	result := r.db.WithContext(ctx).
		Model(project).
		Where("project_id = ? AND version = ?", project.ProjectID, oldVersion).
		Updates(map[string]interface{}{
			"name":           project.Name,
			"reporting_type": project.ReportingType,
			"is_active":      project.IsActive,
			"updated_by":     project.UpdatedBy,
			"version":        oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	project.Version = oldVersion + 1
	return nil
}

func (r *projectRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Project{}).
		Where("project_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
