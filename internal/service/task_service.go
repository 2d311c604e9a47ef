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

// ── 任务模块业务错误 ──

var (
	ErrTaskNotFound = errors.New("任务不存在")
	ErrTaskInactive = errors.New("任务已停用")
)

// TaskService 任务业务接口
type TaskService interface {
	Create(ctx context.Context, req *dto.CreateTaskRequest, callerID string) (*dto.TaskResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TaskResponse, error)
	List(ctx context.Context, req *dto.TaskListRequest) ([]dto.TaskResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTaskRequest, callerID string) (*dto.TaskResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type taskService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(repo *repository.Repository, logger *zap.Logger) TaskService {
	return &taskService{repo: repo, logger: logger}
}

func (s *taskService) Create(ctx context.Context, req *dto.CreateTaskRequest, callerID string) (*dto.TaskResponse, error) {
	if _, err := s.repo.Project.GetByID(ctx, req.ProjectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	task := &model.Task{
		ProjectID: req.ProjectID,
		Name:      req.Name,
		IsActive:  true,
	}
	task.CreatedBy = &callerID

	if err := s.repo.Task.Create(ctx, task); err != nil {
		s.logger.Error("创建任务失败", zap.Error(err))
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) GetByID(ctx context.Context, id string) (*dto.TaskResponse, error) {
	task, err := s.repo.Task.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, err
	}
	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) List(ctx context.Context, req *dto.TaskListRequest) ([]dto.TaskResponse, error) {
	tasks, err := s.repo.Task.List(ctx, req.ProjectID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("查询任务列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, toTaskResponse(&tasks[i]))
	}
	return result, nil
}

func (s *taskService) Update(ctx context.Context, id string, req *dto.UpdateTaskRequest, callerID string) (*dto.TaskResponse, error) {
	task, err := s.repo.Task.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		task.Name = *req.Name
	}
	if req.IsActive != nil {
		task.IsActive = *req.IsActive
	}

	task.UpdatedBy = &callerID
	if err := s.repo.Task.Update(ctx, task); err != nil {
		s.logger.Error("更新任务失败", zap.Error(err))
		return nil, err
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Task.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	if err := s.repo.Task.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除任务失败", zap.Error(err))
		return err
	}
	return nil
}

// toTaskResponse 模型 → 响应 DTO
func toTaskResponse(task *model.Task) dto.TaskResponse {
	resp := dto.TaskResponse{
		ID:        task.TaskID,
		ProjectID: task.ProjectID,
		Name:      task.Name,
		IsActive:  task.IsActive,
	}
	if task.Project != nil {
		resp.Project = &dto.ProjectBrief{
			ID:            task.Project.ProjectID,
			Name:          task.Project.Name,
			ReportingType: string(task.Project.ReportingType),
		}
	}
	return resp
}
