package service

import (
	"go.uber.org/zap"

	"timereport/backend/config"
	"timereport/backend/internal/repository"
	"timereport/backend/pkg/jwt"
	"timereport/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth       AuthService
	User       UserService
	Client     ClientService
	Project    ProjectService
	Task       TaskService
	Attendance AttendanceService
	TimeLog    TimeLogService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:       NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:       NewUserService(repo, logger),
		Client:     NewClientService(repo, logger),
		Project:    NewProjectService(repo, logger),
		Task:       NewTaskService(repo, logger),
		Attendance: NewAttendanceService(repo, logger),
		TimeLog:    NewTimeLogService(repo, logger),
		Export:     NewExportService(repo, logger),
	}
}
