package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"timereport/backend/internal/dto"
	"timereport/backend/internal/model"
	"timereport/backend/internal/repository"
)

// ── 客户模块业务错误 ──

var ErrClientNotFound = errors.New("客户不存在")

// ClientService 客户业务接口
type ClientService interface {
	Create(ctx context.Context, req *dto.CreateClientRequest, callerID string) (*dto.ClientResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ClientResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.ClientResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateClientRequest, callerID string) (*dto.ClientResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type clientService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewClientService 创建 ClientService 实例
func NewClientService(repo *repository.Repository, logger *zap.Logger) ClientService {
	return &clientService{repo: repo, logger: logger}
}

func (s *clientService) Create(ctx context.Context, req *dto.CreateClientRequest, callerID string) (*dto.ClientResponse, error) {
	client := &model.Client{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		IsActive:     true,
	}
	client.CreatedBy = &callerID

	if err := s.repo.Client.Create(ctx, client); err != nil {
		s.logger.Error("创建客户失败", zap.Error(err))
		return nil, err
	}

	resp := toClientResponse(client)
	return &resp, nil
}

func (s *clientService) GetByID(ctx context.Context, id string) (*dto.ClientResponse, error) {
	client, err := s.repo.Client.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		s.logger.Error("查询客户失败", zap.Error(err))
		return nil, err
	}
	resp := toClientResponse(client)
	return &resp, nil
}

func (s *clientService) List(ctx context.Context, includeInactive bool) ([]dto.ClientResponse, error) {
	clients, err := s.repo.Client.List(ctx, includeInactive)
	if err != nil {
		s.logger.Error("查询客户列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ClientResponse, 0, len(clients))
	for i := range clients {
		result = append(result, toClientResponse(&clients[i]))
	}
	return result, nil
}

func (s *clientService) Update(ctx context.Context, id string, req *dto.UpdateClientRequest, callerID string) (*dto.ClientResponse, error) {
	client, err := s.repo.Client.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		s.logger.Error("查询客户失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		client.Name = *req.Name
	}
	if req.ContactEmail != nil {
		client.ContactEmail = *req.ContactEmail
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}

	client.UpdatedBy = &callerID
	if err := s.repo.Client.Update(ctx, client); err != nil {
		s.logger.Error("更新客户失败", zap.Error(err))
		return nil, err
	}

	resp := toClientResponse(client)
	return &resp, nil
}

func (s *clientService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Client.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrClientNotFound
		}
		return err
	}

	if err := s.repo.Client.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除客户失败", zap.Error(err))
		return err
	}
	return nil
}

// toClientResponse 模型 → 响应 DTO
func toClientResponse(client *model.Client) dto.ClientResponse {
	return dto.ClientResponse{
		ID:           client.ClientID,
		Name:         client.Name,
		ContactEmail: client.ContactEmail,
		IsActive:     client.IsActive,
	}
}
