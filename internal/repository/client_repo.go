package repository

import (
	"context"

	"gorm.io/gorm"

	"timereport/backend/internal/model"
	pkgerrors "timereport/backend/pkg/errors"
)

// ClientRepository 客户数据访问接口
type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	GetByID(ctx context.Context, id string) (*model.Client, error)
	List(ctx context.Context, includeInactive bool) ([]model.Client, error)
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

type clientRepo struct {
	db *gorm.DB
}

// NewClientRepo 创建 ClientRepository 实例
func NewClientRepo(db *gorm.DB) ClientRepository {
	return &clientRepo{db: db}
}

func (r *clientRepo) Create(ctx context.Context, client *model.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (*model.Client, error) {
	var client model.Client
	err := r.db.WithContext(ctx).
		Where("client_id = ?", id).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *clientRepo) List(ctx context.Context, includeInactive bool) ([]model.Client, error) {
	var clients []model.Client
	db := r.db.WithContext(ctx)
	if !includeInactive {
		db = db.Where("is_active = ?", true)
	}
	err := db.Order("name ASC").Find(&clients).Error
	return clients, err
}

func (r *clientRepo) Update(ctx context.Context, client *model.Client) error {
	oldVersion := client.Version
	result := r.db.WithContext(ctx).
		Model(client).
		Where("client_id = ? AND version = ?", client.ClientID, oldVersion).
		Updates(map[string]interface{}{
			"name":          client.Name,
			"contact_email": client.ContactEmail,
			"is_active":     client.IsActive,
			"updated_by":    client.UpdatedBy,
			"version":       oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	client.Version = oldVersion + 1
	return nil
}

func (r *clientRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Client{}).
		Where("client_id = ?", id).
		Updates(map[string]interface{}{
			"is_active":  false,
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
