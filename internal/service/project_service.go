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

// ── 项目模块业务错误 ──

var (
	ErrProjectNotFound      = errors.New("项目不存在")
	ErrInvalidReportingType = errors.New("上报方式无效")
	ErrReportingTypeLocked  = errors.New("项目下已存在工时记录，上报方式不可变更")
)

// ProjectService 项目业务接口
type ProjectService interface {
	Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error)
	List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type projectService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProjectService 创建 ProjectService 实例
func NewProjectService(repo *repository.Repository, logger *zap.Logger) ProjectService {
	return &projectService{repo: repo, logger: logger}
}

func (s *projectService) Create(ctx context.Context, req *dto.CreateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	reportingType := model.ReportingType(req.ReportingType)
	if !reportingType.Valid() {
		return nil, ErrInvalidReportingType
	}

	if _, err := s.repo.Client.GetByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClientNotFound
		}
		s.logger.Error("查询客户失败", zap.Error(err))
		return nil, err
	}

	project := &model.Project{
		ClientID:      req.ClientID,
		Name:          req.Name,
		ReportingType: reportingType,
		IsActive:      true,
	}
	project.CreatedBy = &callerID

	if err := s.repo.Project.Create(ctx, project); err != nil {
		s.logger.Error("创建项目失败", zap.Error(err))
		return nil, err
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) GetByID(ctx context.Context, id string) (*dto.ProjectResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}
	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) List(ctx context.Context, req *dto.ProjectListRequest) ([]dto.ProjectResponse, error) {
	projects, err := s.repo.Project.List(ctx, req.ClientID, req.IncludeInactive)
	if err != nil {
		s.logger.Error("查询项目列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ProjectResponse, 0, len(projects))
	for i := range projects {
		result = append(result, toProjectResponse(&projects[i]))
	}
	return result, nil
}

func (s *projectService) Update(ctx context.Context, id string, req *dto.UpdateProjectRequest, callerID string) (*dto.ProjectResponse, error) {
	project, err := s.repo.Project.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		project.Name = *req.Name
	}
	if req.ReportingType != nil {
		newType := model.ReportingType(*req.ReportingType)
		if !newType.Valid() {
			return nil, ErrInvalidReportingType
		}
		// 已产生工时的项目不可切换上报方式：历史记录的字段集合与方式绑定
		if newType != project.ReportingType {
			count, err := s.repo.TimeLog.CountByProject(ctx, id)
			if err != nil {
				s.logger.Error("统计项目工时失败", zap.Error(err))
				return nil, err
			}
			if count > 0 {
				return nil, ErrReportingTypeLocked
			}
			project.ReportingType = newType
		}
	}
	if req.IsActive != nil {
		project.IsActive = *req.IsActive
	}

	project.UpdatedBy = &callerID
	if err := s.repo.Project.Update(ctx, project); err != nil {
		s.logger.Error("更新项目失败", zap.Error(err))
		return nil, err
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.Project.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return err
	}

	if err := s.repo.Project.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除项目失败", zap.Error(err))
		return err
	}
	return nil
}

// toProjectResponse 模型 → 响应 DTO
func toProjectResponse(project *model.Project) dto.ProjectResponse {
	resp := dto.ProjectResponse{
		ID:            project.ProjectID,
		ClientID:      project.ClientID,
		Name:          project.Name,
		ReportingType: string(project.ReportingType),
		IsActive:      project.IsActive,
	}
	if project.Client != nil {
		resp.Client = &dto.ClientBrief{
			ID:   project.Client.ClientID,
			Name: project.Client.Name,
		}
	}
	return resp
}
